// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import "context"

// Checker is implemented by components an external admin surface can poll
// for liveness, mirroring the node's wider health-check convention.
type Checker interface {
	HealthCheck(context.Context) (Report, error)
}

// Report summarizes the supervisor's module bookkeeping at a point in time.
type Report struct {
	Healthy        bool     `json:"healthy"`
	StartedModules []string `json:"started_modules"`
	ShutModules    []string `json:"shut_modules"`
}

// HealthCheck reports which modules are currently started versus shut
// down. Healthy is always true: the report does not judge the handler's
// state from these lists.
func (h *Handler) HealthCheck(ctx context.Context) (Report, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	started := append([]string(nil), h.startedModules...)
	shut := append([]string(nil), h.shutModules...)
	return Report{
		Healthy:        true,
		StartedModules: started,
		ShutModules:    shut,
	}, nil
}
