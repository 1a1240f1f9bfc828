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

//go:build integration

package ceremony

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeremyhahn/go-quorum/internal/config"
	"github.com/jeremyhahn/go-quorum/internal/server"
	"github.com/jeremyhahn/go-quorum/pkg/client"
	"github.com/jeremyhahn/go-quorum/pkg/coordinator"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// startNodes starts n custodian nodes on ephemeral ports.
func startNodes(t *testing.T, n int, fieldName string, mutate func(*config.Config)) []*server.Server {
	t.Helper()

	nodes := make([]*server.Server, n)
	for i := range nodes {
		cfg := config.Default()
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = 0
		cfg.Server.NodeID = fmt.Sprintf("custodian-%d", i)
		cfg.Custody.Field = fieldName
		cfg.Metrics.Port = 0
		if mutate != nil {
			mutate(cfg)
		}

		srv, err := server.New(cfg, server.WithLogger(logging.Nop()))
		require.NoError(t, err)
		require.NoError(t, srv.Start())
		t.Cleanup(func() { _ = srv.Shutdown() })
		nodes[i] = srv
	}
	return nodes
}

func addrs(nodes []*server.Server) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.GRPCAddr()
	}
	return out
}

// TestCeremonyAcrossNodes runs full ceremonies against real node processes
// for every supported field.
func TestCeremonyAcrossNodes(t *testing.T) {
	for _, name := range field.Names() {
		t.Run(name, func(t *testing.T) {
			nodes := startNodes(t, 5, name, nil)

			coord, err := coordinator.New(&coordinator.Config{
				Endpoints:   addrs(nodes),
				Threshold:   3,
				TotalShares: 5,
				Field:       name,
			})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			report, err := coord.Run(ctx)
			require.NoError(t, err)
			assert.True(t, report.Verified)
			assert.Equal(t, report.Secret, report.Recovered)

			for i, node := range nodes {
				assert.Equal(t, 1, node.Store().Len(), "node %d holds one share", i)
				assert.True(t, node.Store().Exists(coord.CeremonyID()))
			}
		})
	}
}

// TestNodeHoldsSharesForManyCeremonies checks isolation between
// concurrent ceremonies sharing the same nodes.
func TestNodeHoldsSharesForManyCeremonies(t *testing.T) {
	nodes := startNodes(t, 3, "", nil)
	endpoints := addrs(nodes)

	const ceremonies = 8
	var wg sync.WaitGroup
	errs := make(chan error, ceremonies)
	for i := 0; i < ceremonies; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coord, err := coordinator.New(&coordinator.Config{
				Endpoints:   endpoints,
				Threshold:   2,
				TotalShares: 3,
				CeremonyID:  fmt.Sprintf("ceremony-%03d", i),
			})
			if err != nil {
				errs <- err
				return
			}
			if _, err := coord.Run(context.Background()); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	for _, node := range nodes {
		assert.Equal(t, ceremonies, node.Store().Len())
	}
}

// TestRecoveryFailsWhenCustodianStops stops a node between distribution
// and recovery.
func TestRecoveryFailsWhenCustodianStops(t *testing.T) {
	nodes := startNodes(t, 3, "", nil)

	coord, err := coordinator.New(&coordinator.Config{
		Endpoints:   addrs(nodes),
		Threshold:   2,
		TotalShares: 3,
		Logger:      logging.Nop(),
	})
	require.NoError(t, err)
	defer coord.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := field.Default()
	secret, err := f.Random(nil)
	require.NoError(t, err)
	_, err = coord.Distribute(ctx, secret)
	require.NoError(t, err)

	require.NoError(t, nodes[1].Shutdown())

	_, err = coord.Recover(ctx)
	require.Error(t, err)

	var nodeErr *coordinator.NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, 1, nodeErr.Index)
	assert.Equal(t, coordinator.StateRetrieved, nodeErr.Step)

	report := coord.Report()
	assert.Equal(t, coordinator.StateFailed, report.Nodes[1].State)
	assert.False(t, report.Verified)
}

// TestStrictNodeRoundTrip stores and retrieves on a node running with
// strict scalars.
func TestStrictNodeRoundTrip(t *testing.T) {
	nodes := startNodes(t, 1, "ed25519", func(c *config.Config) {
		c.Custody.StrictScalars = true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := client.New(&client.Config{Address: nodes[0].GRPCAddr(), Field: field.Ed25519})
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	f := field.Ed25519
	ok := secretsharing.Share{X: f.FromUint64(1), Y: f.FromUint64(99)}
	require.NoError(t, c.StoreShare(ctx, "strict", ok))

	got, err := c.RetrieveShare(ctx, "strict")
	require.NoError(t, err)
	assert.True(t, ok.Y.Equal(got.Y))

	_, err = c.RetrieveShare(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrShareNotFound)
}

// TestRateLimitedNode checks that a node with a tiny budget rejects bursts
// with ResourceExhausted.
func TestRateLimitedNode(t *testing.T) {
	nodes := startNodes(t, 1, "", func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerMin = 1
		c.RateLimit.Burst = 2
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := client.New(&client.Config{Address: nodes[0].GRPCAddr(), SkipHealthCheck: true})
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	var limited bool
	for i := 0; i < 5; i++ {
		_, err := c.JoinCeremony(ctx, "burst")
		if status.Code(err) == codes.ResourceExhausted {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

// TestMetricsReflectCeremonies scrapes a node after a ceremony.
func TestMetricsReflectCeremonies(t *testing.T) {
	nodes := startNodes(t, 2, "", func(c *config.Config) {
		c.Metrics.Enabled = true
	})

	coord, err := coordinator.New(&coordinator.Config{
		Endpoints:   addrs(nodes),
		Threshold:   2,
		TotalShares: 2,
	})
	require.NoError(t, err)
	_, err = coord.Run(context.Background())
	require.NoError(t, err)

	resp, err := http.Get("http://" + nodes[0].HTTPAddr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	metricsText := string(body)
	assert.True(t, strings.Contains(metricsText, "quorum_share_operations_total"))
	assert.True(t, strings.Contains(metricsText, "quorum_shares_held"))
}
