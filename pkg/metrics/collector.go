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

package metrics

import (
	"context"
	"runtime"
	"time"
)

// ResourceCollector periodically samples runtime gauges and the number of
// shares a node holds.
type ResourceCollector struct {
	ctx        context.Context
	cancel     context.CancelFunc
	interval   time.Duration
	started    time.Time
	sharesHeld func() int
}

// NewResourceCollector creates a collector that samples every interval.
// sharesHeld may be nil.
//
//	collector := metrics.NewResourceCollector(ctx, 15*time.Second, store.Len)
//	go collector.Start()
//	defer collector.Stop()
func NewResourceCollector(ctx context.Context, interval time.Duration, sharesHeld func() int) *ResourceCollector {
	collectorCtx, cancel := context.WithCancel(ctx)
	return &ResourceCollector{
		ctx:        collectorCtx,
		cancel:     cancel,
		interval:   interval,
		started:    time.Now(),
		sharesHeld: sharesHeld,
	}
}

// Start collects immediately and then on every tick until Stop is called
// or the parent context is cancelled. It blocks.
func (rc *ResourceCollector) Start() {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	rc.collect()
	for {
		select {
		case <-rc.ctx.Done():
			return
		case <-ticker.C:
			rc.collect()
		}
	}
}

// Stop halts the collector.
func (rc *ResourceCollector) Stop() {
	rc.cancel()
}

func (rc *ResourceCollector) collect() {
	if !IsEnabled() {
		return
	}

	Goroutines.Set(float64(runtime.NumGoroutine()))

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	MemoryAllocBytes.Set(float64(memStats.Alloc))

	ServerUptime.Set(time.Since(rc.started).Seconds())

	if rc.sharesHeld != nil {
		SetSharesHeld(rc.sharesHeld())
	}
}

// StartResourceCollector creates a collector and runs it in the background.
func StartResourceCollector(ctx context.Context, interval time.Duration, sharesHeld func() int) *ResourceCollector {
	collector := NewResourceCollector(ctx, interval, sharesHeld)
	go collector.Start()
	return collector
}
