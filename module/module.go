// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package module implements the module lifecycle supervisor and the
// shutdown signal protocol modules use to coordinate a graceful,
// reverse-insertion-order teardown.
package module

import (
	"context"
	"reflect"
)

// Module is implemented by every long-running component the supervisor
// manages. A module is built by its own constructor, which binds it to the
// bus; Run executes its event loop until it returns (on its own, on error,
// or on a shutdown signal); Persist flushes any in-memory state the module
// wants durable across restarts.
type Module interface {
	Run(ctx context.Context) error
	Persist(ctx context.Context) error
}

// Name returns the fully-qualified type name the supervisor uses as a
// module's identity on the bus, mirroring Rust's type_name::<M>().
func Name(m Module) string {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
