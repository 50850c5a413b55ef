// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package atomicfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")

	require.NoError(t, Write(path, "owner", func(w *bufio.Writer) error {
		_, err := w.WriteString("payload")
		return err
	}))

	var got []byte
	ok, err := Read(path, func(f *os.File) error {
		var err error
		got, err = io.ReadAll(f)
		return err
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))
}

func TestReadMissingFileIsNotAnError(t *testing.T) {
	ok, err := Read(filepath.Join(t.TempDir(), "absent"), func(*os.File) error { return nil })
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")

	require.NoError(t, Write(path, "owner", func(w *bufio.Writer) error {
		return w.WriteByte(1)
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.bin", entries[0].Name())
}

// Two owners writing the same path concurrently never collide on a temp
// name; the surviving content is one of the two complete payloads, never a
// torn mix.
func TestConcurrentWritersDistinctOwners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")

	var wg sync.WaitGroup
	for _, owner := range []string{"first", "second"} {
		owner := owner
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, Write(path, owner, func(w *bufio.Writer) error {
					_, err := w.WriteString(owner)
					return err
				}))
			}
		}()
	}
	wg.Wait()

	var got []byte
	ok, err := Read(path, func(f *os.File) error {
		var err error
		got, err = io.ReadAll(f)
		return err
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, []string{"first", "second"}, string(got))
}
