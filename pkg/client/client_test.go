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
	"net"
	"testing"
	"time"

	custodian "github.com/jeremyhahn/go-quorum/internal/grpc"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// newBufconnClient starts a custodian node in memory and returns a client
// configured to reach it.
func newBufconnClient(t *testing.T, f field.Field) (*Client, *storage.ShareStore) {
	t.Helper()

	store := storage.NewShareStore()
	srv, err := custodian.NewServer(&custodian.ServerConfig{
		NodeID: "node-test",
		Field:  f,
		Store:  store,
		Logger: logging.Nop(),
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()

	c := New(&Config{
		Address: "passthrough:///bufnet",
		Field:   f,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})

	t.Cleanup(func() {
		_ = c.Close()
		_ = srv.Stop()
	})
	return c, store
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultAddress},
		{"  ", DefaultAddress},
		{"localhost:50051", "localhost:50051"},
		{"http://127.0.0.1:50052", "127.0.0.1:50052"},
		{"grpc://node-3:50053/", "node-3:50053"},
		{"passthrough:///bufnet", "passthrough:///bufnet"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
		})
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, DefaultAddress, c.Address())
	assert.Equal(t, field.Default().Name(), c.config.Field.Name())
}

func TestNotConnected(t *testing.T) {
	c := New(&Config{Address: "localhost:1"})
	ctx := context.Background()

	_, err := c.JoinCeremony(ctx, "n")
	assert.ErrorIs(t, err, ErrNotConnected)

	err = c.StoreShare(ctx, "c", secretsharing.Share{X: field.Secp256k1.One(), Y: field.Secp256k1.One()})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = c.RetrieveShare(ctx, "c")
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.NoError(t, c.Close())
}

func TestConnectFailsWithoutNode(t *testing.T) {
	lis := bufconn.Listen(1024)
	require.NoError(t, lis.Close())

	c := New(&Config{
		Address: "passthrough:///closed",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestShareRoundTrip(t *testing.T) {
	for _, f := range []field.Field{field.Secp256k1, field.Ed25519, field.BN254} {
		t.Run(f.Name(), func(t *testing.T) {
			c, store := newBufconnClient(t, f)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			require.NoError(t, c.Connect(ctx))

			join, err := c.JoinCeremony(ctx, "coordinator")
			require.NoError(t, err)
			assert.True(t, join.Success)
			assert.Equal(t, uint32(0), join.AssignedIndex)

			secret, err := f.Random(nil)
			require.NoError(t, err)
			share := secretsharing.Share{X: f.FromUint64(4), Y: secret}

			require.NoError(t, c.StoreShare(ctx, "ceremony-rt", share))
			assert.Equal(t, 1, store.Len())

			got, err := c.RetrieveShare(ctx, "ceremony-rt")
			require.NoError(t, err)
			assert.True(t, share.X.Equal(got.X))
			assert.True(t, share.Y.Equal(got.Y))
		})
	}
}

func TestRetrieveMissingShare(t *testing.T) {
	c, _ := newBufconnClient(t, field.Secp256k1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx))

	_, err := c.RetrieveShare(ctx, "never-stored")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrShareNotFound)
	assert.Contains(t, err.Error(), "never-stored")
}
