// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/luxfi/log"

	"github.com/hyle-network/hyle-node/bus"
)

// moduleShutdownTimeout is how long a module gets to exit on its own once
// it receives a ShutdownModule signal before the supervisor declares it
// unresponsive and moves on regardless.
const moduleShutdownTimeout = 5 * time.Second

// safetyTimeout re-triggers the next shutdown in the chain if a module's
// ShutdownCompleted was lost (module crashed before emitting it, or never
// subscribed in the first place).
const safetyTimeout = moduleShutdownTimeout + time.Second

type moduleStarter struct {
	name       string
	shortLived bool
	run        func(ctx context.Context) error
}

// ModuleOption configures how AddModule tracks a module's lifecycle.
type ModuleOption func(*moduleStarter)

// ShortLived excludes a module from the supervisor's started/shut
// bookkeeping and shutdown-chain ordering. Use it for modules that run to
// completion on their own (a bootstrap step, a one-shot migration) rather
// than staying up for the node's lifetime.
func ShortLived() ModuleOption {
	return func(s *moduleStarter) { s.shortLived = true }
}

// Handler supervises a set of modules: it starts each on its own goroutine,
// tracks which are still running, and on request shuts them down one at a
// time in reverse start order, waiting for each to confirm before moving to
// the next.
type Handler struct {
	bus     *bus.Bus
	log     log.Logger
	metrics *Metrics

	shutdownSender  *bus.Sender[ShutdownModule]
	completedSender *bus.Sender[ShutdownCompleted]
	// completedRecv is subscribed at construction so a module that exits
	// the moment it starts cannot slip its ShutdownCompleted past the
	// shutdown loop before the loop begins listening.
	completedRecv *bus.Receiver[ShutdownCompleted]

	mu             sync.Mutex
	running        bool
	pending        []moduleStarter
	tracked        map[string]bool
	startedModules []string
	shutModules    []string
	wg             sync.WaitGroup
}

// NewHandler builds a Handler bound to b. metrics and logger may be nil.
func NewHandler(b *bus.Bus, logger log.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Handler{
		bus:             b,
		log:             logger,
		metrics:         metrics,
		shutdownSender:  bus.SenderFor[ShutdownModule](b, "module.Handler"),
		completedSender: bus.SenderFor[ShutdownCompleted](b, "module.Handler"),
		completedRecv:   bus.ReceiverFor[ShutdownCompleted](b, "module.Handler"),
		tracked:         make(map[string]bool),
	}
}

// AddModule registers m to be started by the next call to StartModules.
func (h *Handler) AddModule(m Module, opts ...ModuleOption) error {
	name := Name(m)
	s := moduleStarter{
		name: name,
		run: func(ctx context.Context) error {
			if err := m.Run(ctx); err != nil {
				return err
			}
			return m.Persist(ctx)
		},
	}
	for _, opt := range opts {
		opt(&s)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return errors.New("module: cannot add a module once modules have started")
	}
	for _, p := range h.pending {
		if p.name == name {
			return errors.Newf("module: %s is already registered", name)
		}
	}
	h.pending = append(h.pending, s)
	return nil
}

// StartModules launches every registered module on its own goroutine. It
// fails if modules are already running.
func (h *Handler) StartModules(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return errors.New("module: modules are already running")
	}
	pending := h.pending
	h.pending = nil
	h.running = true
	for _, s := range pending {
		if !s.shortLived {
			h.tracked[s.name] = true
			h.startedModules = append(h.startedModules, s.name)
		}
	}
	h.mu.Unlock()

	for _, s := range pending {
		s := s
		h.metrics.recordStarted(s.name)
		h.log.Debug("starting module", "module", s.name)
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.runModuleTask(ctx, s)
		}()
	}
	return nil
}

// Wait blocks until every started module's goroutine has returned.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) runModuleTask(ctx context.Context, s moduleStarter) {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- runCatchingPanic(ctx, s.run)
	}()

	shutdownRecv := bus.ReceiverFor[ShutdownModule](h.bus, s.name)
	defer shutdownRecv.Close()
	timeoutCh := make(chan struct{})
	go func() {
		for {
			msg, err := shutdownRecv.Recv(taskCtx)
			if err != nil {
				if _, ok := err.(*bus.Lagged); ok {
					continue
				}
				return
			}
			if msg.Module == s.name || msg.Module == "" {
				select {
				case <-time.After(moduleShutdownTimeout):
					close(timeoutCh)
				case <-taskCtx.Done():
				}
				return
			}
		}
	}()

	start := time.Now()
	var runErr error
	select {
	case runErr = <-doneCh:
	case <-timeoutCh:
		runErr = errors.Newf("module %s: shutdown timeout reached", s.name)
	}
	h.metrics.recordShutdown(s.name, time.Since(start))

	switch {
	case runErr == nil:
		h.log.Warn("module exited with no error", "module", s.name)
	default:
		h.metrics.recordCrash(s.name)
		h.log.Error("module exited with error", "module", s.name, "error", runErr)
	}

	if err := h.completedSender.Send(ShutdownCompleted{Module: s.name}); err != nil {
		h.log.Error("sending ShutdownCompleted", "module", s.name, "error", err)
	}
}

func runCatchingPanic(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("module panicked: %v", r)
		}
	}()
	return run(ctx)
}

// ShutdownLoop waits for modules to report completion, driving the
// reverse-start-order shutdown chain as each ShutdownCompleted arrives, and
// re-triggering the next module in the chain if the safety window elapses
// without one (a module that crashed silently, or never acknowledged).
func (h *Handler) ShutdownLoop(ctx context.Context) error {
	h.mu.Lock()
	empty := len(h.startedModules) == 0
	h.mu.Unlock()
	if empty {
		return nil
	}

	for {
		recvCtx, cancel := context.WithTimeout(ctx, safetyTimeout)
		msg, err := h.completedRecv.Recv(recvCtx)
		cancel()
		if err != nil {
			if _, ok := err.(*bus.Lagged); ok {
				continue
			}
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				// Safety window elapsed mid-cascade with no completion: the
				// signaled module crashed without emitting anything. Move
				// the chain along regardless. Before the cascade has begun,
				// the elapsed window means nothing and the loop keeps
				// waiting.
				h.mu.Lock()
				haveShutSome := len(h.shutModules) > 0
				h.mu.Unlock()
				if haveShutSome {
					_ = h.shutdownNextModule()
				}
				continue
			}
			return err
		}

		h.mu.Lock()
		alreadyShut := containsString(h.shutModules, msg.Module)
		if !h.tracked[msg.Module] || alreadyShut {
			h.mu.Unlock()
			continue
		}
		h.startedModules = removeString(h.startedModules, msg.Module)
		h.shutModules = append(h.shutModules, msg.Module)
		done := len(h.startedModules) == 0
		h.mu.Unlock()
		if done {
			return nil
		}
		_ = h.shutdownNextModule()
	}
}

// shutdownNextModule pops the most recently started module still pending
// shutdown and signals it, preserving reverse-insertion order.
func (h *Handler) shutdownNextModule() error {
	h.mu.Lock()
	if len(h.startedModules) == 0 {
		h.mu.Unlock()
		return nil
	}
	name := h.startedModules[len(h.startedModules)-1]
	h.startedModules = h.startedModules[:len(h.startedModules)-1]
	alreadyShut := containsString(h.shutModules, name)
	h.mu.Unlock()

	if alreadyShut {
		h.log.Debug("not shutting down already shut module", "module", name)
		return nil
	}
	return h.shutdownSender.Send(ShutdownModule{Module: name})
}

// ShutdownModules signals the first module in the chain and drives the
// rest of the teardown to completion.
func (h *Handler) ShutdownModules(ctx context.Context) error {
	if err := h.shutdownNextModule(); err != nil {
		return err
	}
	return h.ShutdownLoop(ctx)
}

// ExitLoop waits for any module's self-initiated shutdown to propagate
// through the chain, then ensures every remaining module is also shut down.
func (h *Handler) ExitLoop(ctx context.Context) error {
	if err := h.ShutdownLoop(ctx); err != nil {
		h.log.Error("shutdown loop triggered", "error", err)
	}
	return h.ShutdownModules(ctx)
}

// ExitProcess runs ShutdownLoop until either it returns on its own or the
// process receives SIGINT/SIGTERM, then shuts down every remaining module
// and waits for all module goroutines to return.
func (h *Handler) ExitProcess(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- h.ShutdownLoop(loopCtx) }()

	select {
	case err := <-loopDone:
		if err != nil {
			h.log.Error("shutdown loop triggered", "error", err)
		}
	case sig := <-sigCh:
		h.log.Info("signal received, shutting down", "signal", sig.String())
		cancelLoop()
		<-loopDone
	}

	if err := h.ShutdownModules(ctx); err != nil {
		return err
	}
	h.Wait()
	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func removeString(haystack []string, needle string) []string {
	out := haystack[:0]
	for _, s := range haystack {
		if s != needle {
			out = append(out, s)
		}
	}
	return out
}
