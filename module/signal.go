// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/hyle-network/hyle-node/bus"
)

// ErrShutdownReceived is returned by ShutdownAware and ShutdownAwareTimeout
// when the awaited future was cancelled by a shutdown signal rather than
// completing.
var ErrShutdownReceived = errors.New("module: shutdown received")

// ErrShutdownTimeout is returned by ShutdownAwareTimeout when duration
// elapses before the future completes or a shutdown signal arrives.
var ErrShutdownTimeout = errors.New("module: shutdown timeout reached")

// PersistModule instructs every module to flush its state to disk.
type PersistModule struct {
	bus.DefaultCapacity
}

// ShutdownModule targets a single module (identified by its fully-qualified
// type name, see Name) for graceful shutdown.
type ShutdownModule struct {
	bus.DefaultCapacity
	Module string
}

// ShutdownCompleted is emitted by the supervisor on a module's behalf once
// the module's run loop has returned (cleanly, with an error, or by
// panicking) or its shutdown timeout has expired.
type ShutdownCompleted struct {
	bus.DefaultCapacity
	Module string
}

// ShutdownAware runs fn to completion unless a ShutdownModule signal
// targeting name (or the broadcast empty name, used to mean "every
// module") arrives first, in which case it returns ErrShutdownReceived
// and abandons fn's result.
func ShutdownAware[T any](ctx context.Context, r *bus.Receiver[ShutdownModule], name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	resultCh := make(chan result[T], 1)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		v, err := fn(runCtx)
		resultCh <- result[T]{v, err}
	}()

	for {
		select {
		case res := <-resultCh:
			return res.value, res.err
		default:
		}

		select {
		case res := <-resultCh:
			return res.value, res.err
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-waitForShutdown(ctx, r, name):
			return zero, ErrShutdownReceived
		}
	}
}

// ShutdownAwareTimeout behaves like ShutdownAware but additionally aborts
// with ErrShutdownTimeout once duration elapses.
func ShutdownAwareTimeout[T any](ctx context.Context, r *bus.Receiver[ShutdownModule], name string, duration time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	resultCh := make(chan result[T], 1)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		v, err := fn(runCtx)
		resultCh <- result[T]{v, err}
	}()

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-timer.C:
		return zero, ErrShutdownTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-waitForShutdown(ctx, r, name):
		return zero, ErrShutdownReceived
	}
}

type result[T any] struct {
	value T
	err   error
}

// waitForShutdown returns a channel that closes once a ShutdownModule
// event targeting name, or the wildcard empty name, is received.
func waitForShutdown(ctx context.Context, r *bus.Receiver[ShutdownModule], name string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := r.Recv(ctx)
			if err != nil {
				if _, ok := err.(*bus.Lagged); ok {
					continue
				}
				return
			}
			if msg.Module == "" || msg.Module == name {
				return
			}
		}
	}()
	return done
}
