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

// Package grpc implements the custodian node's gRPC surface.
//
// A custodian holds at most one share per ceremony in memory and serves the
// custodian.Custodian service defined in api/proto/custodianv1:
//
//   - JoinCeremony acknowledges a participating node
//   - StoreShare decodes and stores (or overwrites) the share for a ceremony
//   - RetrieveShare returns the stored share, or NotFound
//
// The standard grpc.health.v1 service is registered alongside it. Every
// call passes through correlation, metrics, rate limiting, logging, panic
// recovery and error normalisation interceptors.
//
// Example usage:
//
//	store := storage.NewShareStore()
//	server, _ := grpc.NewServer(&grpc.ServerConfig{
//	    Port:           50051,
//	    NodeID:         "node-50051",
//	    Store:          store,
//	    EnableLogging:  true,
//	    EnableRecovery: true,
//	})
//
//	// Start server (blocks until stopped)
//	if err := server.Start(); err != nil {
//	    log.Fatal(err)
//	}
package grpc
