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

// Package correlation carries request correlation IDs through contexts,
// gRPC metadata and HTTP headers so that a ceremony can be followed across
// the coordinator and every custodian node in the logs.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const (
	// CorrelationIDKey is the context key for storing correlation IDs
	CorrelationIDKey contextKey = "correlation-id"

	// CorrelationIDHeader is the HTTP header for correlation IDs
	CorrelationIDHeader = "X-Correlation-ID"

	// GRPCCorrelationIDKey is the gRPC metadata key for correlation IDs
	GRPCCorrelationIDKey = "x-correlation-id"

	// GRPCRequestIDKey is the gRPC metadata key for request IDs
	GRPCRequestIDKey = "x-request-id"
)

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
// Returns an empty string if no correlation ID is found.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4 correlation ID.
func NewID() string {
	return uuid.New().String()
}

// GetOrGenerate retrieves an existing correlation ID from context
// or generates a new one if none exists.
func GetOrGenerate(ctx context.Context) string {
	if id := GetCorrelationID(ctx); id != "" {
		return id
	}
	return NewID()
}

// FromMetadata returns the correlation ID in md, falling back to the
// request ID key. Returns an empty string when neither is present.
func FromMetadata(md metadata.MD) string {
	if values := md.Get(GRPCCorrelationIDKey); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	if values := md.Get(GRPCRequestIDKey); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return ""
}

// OutgoingContext attaches the context's correlation ID, generating one
// if needed, to the outgoing gRPC metadata. The returned context also
// carries the ID as a value.
func OutgoingContext(ctx context.Context) context.Context {
	id := GetOrGenerate(ctx)
	ctx = WithCorrelationID(ctx, id)
	return metadata.AppendToOutgoingContext(ctx, GRPCCorrelationIDKey, id)
}

// Middleware propagates the X-Correlation-ID header into the request
// context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = NewID()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}
