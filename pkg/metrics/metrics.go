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

// Package metrics provides Prometheus instrumentation for custodian nodes
// and ceremonies: share operations, ceremony outcomes, request counters and
// resource gauges.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all go-quorum metrics
	Namespace = "quorum"

	// Label names
	LabelOperation  = "operation"
	LabelField      = "field"
	LabelStatus     = "status"
	LabelErrorType  = "error_type"
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Ceremony outcomes
	CeremonyVerified = "verified"
	CeremonyMismatch = "mismatch"
	CeremonyFailed   = "failed"

	// Operation names
	OpJoin     = "join"
	OpStore    = "store"
	OpRetrieve = "retrieve"
	OpSplit    = "split"
	OpRecover  = "recover"
)

var (
	// ShareOperationsTotal tracks custodian and sharing operations by type,
	// field and status. Use RecordOperation to increment it.
	ShareOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "share_operations_total",
			Help:      "Total number of share operations by type, field, and status",
		},
		[]string{LabelOperation, LabelField, LabelStatus},
	)

	// ShareOperationDuration tracks the duration of share operations in seconds.
	ShareOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "share_operation_duration_seconds",
			Help:      "Duration of share operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{LabelOperation, LabelField},
	)

	// ErrorsTotal tracks errors by operation and error type
	// (e.g. "not_found", "invalid_argument", "malformed_scalar").
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// CeremoniesTotal tracks coordinator ceremony outcomes.
	CeremoniesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ceremonies_total",
			Help:      "Total number of ceremonies by outcome",
		},
		[]string{LabelStatus},
	)

	// CeremonyDuration tracks end-to-end ceremony duration in seconds.
	CeremonyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ceremony_duration_seconds",
			Help:      "Duration of coordinator ceremonies in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SharesHeld is the number of ceremonies this node holds a share for.
	SharesHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "shares_held",
			Help:      "Number of ceremonies with a share held by this node",
		},
	)

	// GRPCInFlight is the number of custodian RPCs being handled.
	GRPCInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "in_flight_requests",
			Help:      "Number of gRPC requests currently being handled by method",
		},
		[]string{LabelMethod},
	)

	// HTTPRequestsTotal counts scrapes and probes on the metrics listener.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of metrics and health requests by route and status code",
		},
		[]string{LabelRoute, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of metrics and health requests in seconds by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelRoute},
	)

	// GRPCRequestsTotal tracks the total number of gRPC requests by method and status code.
	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of gRPC requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// GRPCRequestDuration tracks the duration of gRPC requests in seconds.
	GRPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of gRPC requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// Goroutines tracks the current number of goroutines.
	// Updated periodically by the resource collector.
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	// MemoryAllocBytes tracks the current bytes of allocated heap objects.
	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	// ServerUptime tracks the node uptime in seconds since startup.
	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records a share operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	err := store.Store(id, share)
//	RecordOperation(OpStore, "secp256k1", statusOf(err), time.Since(start).Seconds())
func RecordOperation(operation, field, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	ShareOperationsTotal.WithLabelValues(operation, field, status).Inc()
	ShareOperationDuration.WithLabelValues(operation, field).Observe(duration)
}

// RecordError records an error event with the operation it occurred in.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordCeremony records a finished ceremony and its outcome.
func RecordCeremony(outcome string, duration float64) {
	if !enabled.Load() {
		return
	}
	CeremoniesTotal.WithLabelValues(outcome).Inc()
	CeremonyDuration.Observe(duration)
}

// SetSharesHeld sets the shares-held gauge.
func SetSharesHeld(count int) {
	if !enabled.Load() {
		return
	}
	SharesHeld.Set(float64(count))
}

// RecordHTTPRequest records a request to the metrics listener. route is
// the matched route pattern.
func RecordHTTPRequest(route, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration)
}

// RecordGRPCRequest records a gRPC request with its duration and status.
//
//   - method: the full gRPC method name (e.g. "/custodian.Custodian/StoreShare")
//   - statusCode: the gRPC status code as a string
func RecordGRPCRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	GRPCRequestsTotal.WithLabelValues(method, statusCode).Inc()
	GRPCRequestDuration.WithLabelValues(method).Observe(duration)
}

// StatusOf maps an error to StatusSuccess or StatusError.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
