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
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// HTTPMiddleware records requests to the metrics and health listener by
// chi route pattern. It must be installed on a chi router.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		RecordHTTPRequest(routePattern(r), strconv.Itoa(code), time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// GRPCUnaryServerInterceptor records custodian RPC counts, durations and
// in-flight requests.
func GRPCUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var resp interface{}
		err := observeRPC(info.FullMethod, func() error {
			var err error
			resp, err = handler(ctx, req)
			return err
		})
		return resp, err
	}
}

// GRPCStreamServerInterceptor is the streaming counterpart of
// GRPCUnaryServerInterceptor. Only the health Watch RPC streams.
func GRPCStreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return observeRPC(info.FullMethod, func() error {
			return handler(srv, ss)
		})
	}
}

func observeRPC(method string, call func() error) error {
	if !IsEnabled() {
		return call()
	}

	inFlight := GRPCInFlight.WithLabelValues(method)
	inFlight.Inc()
	defer inFlight.Dec()

	start := time.Now()
	err := call()
	RecordGRPCRequest(method, status.Code(err).String(), time.Since(start).Seconds())
	return err
}
