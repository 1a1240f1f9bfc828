// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-quorum.
//
// go-quorum is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


// Package health reports custodian node health for the /healthz probes.
// A node is live while the process runs, started between Start and
// Shutdown, and ready when it is started and every registered check passes.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is the outcome of a probe.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// CheckFunc performs a readiness check.
type CheckFunc func(ctx context.Context) CheckResult

// Checker holds a node's started flag and its readiness checks.
type Checker struct {
	mu        sync.RWMutex
	started   bool
	startTime time.Time
	checks    map[string]CheckFunc
}

func NewChecker() *Checker {
	return &Checker{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
	}
}

// RegisterCheck adds a readiness check, replacing any check with the same
// name. A nil check is ignored.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// MarkStarted is called once the node is serving.
func (c *Checker) MarkStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
}

// MarkNotStarted is called when the node begins shutting down.
func (c *Checker) MarkNotStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
}

// Live never fails.
func (c *Checker) Live(ctx context.Context) CheckResult {
	return CheckResult{Name: "liveness", Status: StatusHealthy, Message: "Node is alive"}
}

// Ready runs the registered checks in name order. A node that has not
// started, or is shutting down, gets an extra unhealthy "node" result first.
func (c *Checker) Ready(ctx context.Context) []CheckResult {
	c.mu.RLock()
	started := c.started
	names := make([]string, 0, len(c.checks))
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		names = append(names, name)
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make([]CheckResult, 0, len(names)+1)
	if !started {
		results = append(results, CheckResult{
			Name:    "node",
			Status:  StatusUnhealthy,
			Message: "Node is not serving",
		})
	}

	sort.Strings(names)
	for _, name := range names {
		start := time.Now()
		result := checks[name](ctx)
		result.Latency = time.Since(start)
		if result.Name == "" {
			result.Name = name
		}
		results = append(results, result)
	}
	return results
}

// Startup fails until MarkStarted is called.
func (c *Checker) Startup(ctx context.Context) CheckResult {
	if !c.IsStarted() {
		return CheckResult{Name: "startup", Status: StatusUnhealthy, Message: "Node initialization not complete"}
	}
	return CheckResult{
		Name:    "startup",
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Node serving (uptime: %s)", c.Uptime().Round(time.Second)),
	}
}

// GetAllChecks returns the registered check names in sorted order.
func (c *Checker) GetAllChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) IsHealthy(ctx context.Context) bool {
	return AggregateStatus(c.Ready(ctx)) == StatusHealthy
}

func (c *Checker) IsStarted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Uptime is measured from NewChecker.
func (c *Checker) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// AggregateStatus is unhealthy if any result is unhealthy.
func AggregateStatus(results []CheckResult) Status {
	for _, result := range results {
		if result.Status != StatusHealthy {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}

// WithTimeout adapts fn into a CheckFunc that reports unhealthy when fn
// returns an error or does not finish within timeout.
func WithTimeout(name string, timeout time.Duration, fn func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) CheckResult {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- fn(checkCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				return CheckResult{
					Name:    name,
					Status:  StatusUnhealthy,
					Message: fmt.Sprintf("%s check failed", name),
					Error:   err.Error(),
				}
			}
			return CheckResult{Name: name, Status: StatusHealthy}
		case <-checkCtx.Done():
			return CheckResult{
				Name:    name,
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s check timed out", name),
				Error:   "timeout",
			}
		}
	}
}
