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

// Package client provides a client for a single custodian node. It hides
// the wire encoding and returns typed shares.
package client

import (
	"errors"
	"strings"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"google.golang.org/grpc"
)

// DefaultAddress is used when Config.Address is empty.
const DefaultAddress = "localhost:50051"

var (
	// ErrConnectionFailed is returned when the connection to the node fails
	ErrConnectionFailed = errors.New("connection failed")
	// ErrNotConnected is returned when trying to use a client that is not connected
	ErrNotConnected = errors.New("client not connected")
)

// Config configures a custodian client.
type Config struct {
	// Address of the node. Accepts host:port and grpc:// or http:// URLs.
	Address string

	// Field used to decode retrieved shares. Defaults to field.Default().
	Field field.Field

	// DialOptions are appended to the client's own options. Transport
	// credentials default to insecure when none are given.
	DialOptions []grpc.DialOption

	// SkipHealthCheck connects without probing grpc.health.v1 first.
	SkipHealthCheck bool

	Logger logging.Logger
}

// New creates a client. Call Connect before use.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	c := *cfg
	c.Address = NormalizeAddress(c.Address)
	if c.Field == nil {
		c.Field = field.Default()
	}
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}

	return &Client{config: &c}
}

// NormalizeAddress strips http:// and grpc:// scheme prefixes so endpoints
// can be given as URLs. An empty address yields DefaultAddress.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return DefaultAddress
	}
	for _, prefix := range []string{"http://", "grpc://"} {
		if strings.HasPrefix(address, prefix) {
			address = strings.TrimPrefix(address, prefix)
			break
		}
	}
	return strings.TrimSuffix(address, "/")
}

// JoinResponse is the node's reply to a join request.
type JoinResponse struct {
	Success       bool   `json:"success"`
	AssignedIndex uint32 `json:"assigned_index"`
	Message       string `json:"message"`
}
