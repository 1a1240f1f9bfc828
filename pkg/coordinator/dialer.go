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

package coordinator

import (
	"context"

	"github.com/jeremyhahn/go-quorum/pkg/client"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"google.golang.org/grpc"
)

// Custodian is the subset of a node connection the coordinator needs.
type Custodian interface {
	StoreShare(ctx context.Context, ceremonyID string, share secretsharing.Share) error
	RetrieveShare(ctx context.Context, ceremonyID string) (secretsharing.Share, error)
	Close() error
}

// Dialer opens a connection to a custodian endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Custodian, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, endpoint string) (Custodian, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Custodian, error) {
	return f(ctx, endpoint)
}

// GRPCDialer connects to custodians with pkg/client.
type GRPCDialer struct {
	Field       field.Field
	DialOptions []grpc.DialOption
	Logger      logging.Logger
}

// Dial connects and health-checks the node at endpoint.
func (d *GRPCDialer) Dial(ctx context.Context, endpoint string) (Custodian, error) {
	c := client.New(&client.Config{
		Address:     endpoint,
		Field:       d.Field,
		DialOptions: d.DialOptions,
		Logger:      d.Logger,
	})
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
