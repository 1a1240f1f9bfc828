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

package grpc

import (
	"context"
	"time"

	"github.com/jeremyhahn/go-quorum/pkg/correlation"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// correlationUnaryInterceptor extracts the correlation ID from the
// x-correlation-id or x-request-id metadata keys, generating one if
// neither is present, and echoes it in the response header.
func (s *Server) correlationUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	ctx = s.withCorrelationID(ctx)

	outMD := metadata.Pairs(correlation.GRPCCorrelationIDKey, correlation.GetCorrelationID(ctx))
	if err := grpc.SetHeader(ctx, outMD); err != nil {
		s.logger.Warn("Failed to set correlation ID in response metadata")
	}

	return handler(ctx, req)
}

// correlationStreamInterceptor is the streaming counterpart of
// correlationUnaryInterceptor.
func (s *Server) correlationStreamInterceptor(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	ctx := s.withCorrelationID(ss.Context())

	outMD := metadata.Pairs(correlation.GRPCCorrelationIDKey, correlation.GetCorrelationID(ctx))
	if err := ss.SetHeader(outMD); err != nil {
		s.logger.Warn("Failed to set correlation ID in stream response metadata")
	}

	return handler(srv, &contextServerStream{ServerStream: ss, ctx: ctx})
}

func (s *Server) withCorrelationID(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.MD{}
	}
	id := correlation.FromMetadata(md)
	if id == "" {
		id = correlation.NewID()
	}
	return correlation.WithCorrelationID(ctx, id)
}

// contextServerStream overrides the context of a ServerStream.
type contextServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextServerStream) Context() context.Context {
	return s.ctx
}

// loggingUnaryInterceptor logs the start and outcome of every unary call.
func (s *Server) loggingUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	logging.DebugContext(ctx, s.logger, "RPC started",
		logging.String("method", info.FullMethod))

	resp, err := handler(ctx, req)

	logging.InfoContext(ctx, s.logger, "RPC completed",
		logging.String("method", info.FullMethod),
		logging.String("duration", time.Since(start).String()),
		logging.String("code", status.Code(err).String()))

	return resp, err
}

// loggingStreamInterceptor logs the start and outcome of every stream.
func (s *Server) loggingStreamInterceptor(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	start := time.Now()
	ctx := ss.Context()

	logging.DebugContext(ctx, s.logger, "Stream started",
		logging.String("method", info.FullMethod))

	err := handler(srv, ss)

	logging.InfoContext(ctx, s.logger, "Stream completed",
		logging.String("method", info.FullMethod),
		logging.String("duration", time.Since(start).String()),
		logging.String("code", status.Code(err).String()))

	return err
}

// recoveryUnaryInterceptor converts panics in handlers into Internal errors.
func (s *Server) recoveryUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorContext(ctx, s.logger, "Recovered from panic",
				logging.String("method", info.FullMethod),
				logging.Any("panic", r))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// recoveryStreamInterceptor converts panics in stream handlers into
// Internal errors.
func (s *Server) recoveryStreamInterceptor(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered from panic in stream",
				logging.String("method", info.FullMethod),
				logging.Any("panic", r))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(srv, ss)
}

// errorHandlingUnaryInterceptor converts non-status errors into Internal.
func errorHandlingUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	resp, err := handler(ctx, req)
	return resp, normalizeError(err)
}

// errorHandlingStreamInterceptor converts non-status errors into Internal.
func errorHandlingStreamInterceptor(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	return normalizeError(handler(srv, ss))
}

func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); !ok {
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
	return err
}
