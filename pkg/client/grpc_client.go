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

package client

import (
	"context"
	"fmt"
	"sync"

	pb "github.com/jeremyhahn/go-quorum/api/proto/custodianv1"
	"github.com/jeremyhahn/go-quorum/pkg/correlation"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Client talks to one custodian node over gRPC.
type Client struct {
	config *Config

	mu     sync.RWMutex
	conn   *grpc.ClientConn
	client pb.CustodianClient
}

// Address returns the normalized node address.
func (c *Client) Address() string {
	return c.config.Address
}

// Connect establishes a connection to the node and, unless disabled,
// verifies it with a health check.
func (c *Client) Connect(ctx context.Context) error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(correlationUnaryClientInterceptor),
	}
	opts = append(opts, c.config.DialOptions...)

	conn, err := grpc.NewClient(c.config.Address, opts...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConnectionFailed, c.config.Address, err)
	}

	if !c.config.SkipHealthCheck {
		if _, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{}); err != nil {
			if closeErr := conn.Close(); closeErr != nil {
				c.config.Logger.Warn("Failed to close connection after health check failure",
					logging.String("address", c.config.Address),
					logging.Error(closeErr))
			}
			return fmt.Errorf("%w: %s: %v", ErrConnectionFailed, c.config.Address, err)
		}
	}

	c.mu.Lock()
	c.conn = conn
	c.client = pb.NewCustodianClient(conn)
	c.mu.Unlock()

	c.config.Logger.Debug("Connected to custodian",
		logging.String("address", c.config.Address))
	return nil
}

// Close closes the connection. It is safe to call on an unconnected client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.client = nil
	return err
}

func (c *Client) custodian() (pb.CustodianClient, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, ErrNotConnected
	}
	return c.client, nil
}

// JoinCeremony announces nodeID to the node.
func (c *Client) JoinCeremony(ctx context.Context, nodeID string) (*JoinResponse, error) {
	cc, err := c.custodian()
	if err != nil {
		return nil, err
	}

	resp, err := cc.JoinCeremony(ctx, &pb.JoinRequest{NodeId: nodeID})
	if err != nil {
		return nil, err
	}

	return &JoinResponse{
		Success:       resp.GetSuccess(),
		AssignedIndex: resp.GetAssignedIndex(),
		Message:       resp.GetMessage(),
	}, nil
}

// StoreShare sends share to the node under ceremonyID.
func (c *Client) StoreShare(ctx context.Context, ceremonyID string, share secretsharing.Share) error {
	cc, err := c.custodian()
	if err != nil {
		return err
	}

	x, y := share.Encode()
	resp, err := cc.StoreShare(ctx, &pb.ShareData{
		CeremonyId: ceremonyID,
		X:          x,
		Y:          y,
	})
	if err != nil {
		return err
	}
	if !resp.GetSuccess() {
		return fmt.Errorf("store rejected by %s: %s", c.config.Address, resp.GetMessage())
	}
	return nil
}

// RetrieveShare fetches the share held for ceremonyID. A node without one
// yields an error matching storage.ErrShareNotFound.
func (c *Client) RetrieveShare(ctx context.Context, ceremonyID string) (secretsharing.Share, error) {
	cc, err := c.custodian()
	if err != nil {
		return secretsharing.Share{}, err
	}

	resp, err := cc.RetrieveShare(ctx, &pb.RetrieveRequest{CeremonyId: ceremonyID})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return secretsharing.Share{}, fmt.Errorf("%w: %s", storage.ErrShareNotFound, status.Convert(err).Message())
		}
		return secretsharing.Share{}, err
	}

	share, err := secretsharing.DecodeShare(c.config.Field, resp.GetX(), resp.GetY(), false)
	if err != nil {
		return secretsharing.Share{}, fmt.Errorf("malformed share from %s: %w", c.config.Address, err)
	}
	return share, nil
}

// correlationUnaryClientInterceptor propagates the context's correlation
// ID to the node.
func correlationUnaryClientInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(correlation.OutgoingContext(ctx), method, req, reply, cc, opts...)
}
