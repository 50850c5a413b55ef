// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package atomicfile writes files via a temp-file-then-rename sequence so
// a reader never observes a partially written file.
package atomicfile

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Write serializes store through encode and atomically replaces path,
// using owner + a uuid-derived salt in the temp file's name so that two
// distinct owners writing concurrently never collide on the same
// temporary path (the race a shared "<file>.tmp" name would invite).
func Write(path, owner string, encode func(w *bufio.Writer) error) error {
	salt := uuid.New().String()[:8]
	tmp := filepath.Join(filepath.Dir(path), filepath.Base(path)+"."+owner+"."+salt+".tmp")

	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}

	w := bufio.NewWriter(f)
	if err := encode(w); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "encoding")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "flushing buffer")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "rename")
	}
	return nil
}

// Read decodes path via decode. It returns ok=false, with no error, if
// path does not exist.
func Read(path string, decode func(r *os.File) error) (ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "open file")
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return false, errors.Wrap(err, "decoding")
	}
	return true, nil
}
