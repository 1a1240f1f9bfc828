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

// Package coordinator drives a custody ceremony across custodian nodes:
// split a secret, store share i on endpoint i, retrieve from the first
// threshold endpoints, recover and verify.
//
// Steps run sequentially. The first failure aborts the ceremony without
// rollback or retry and is reported as a *NodeError.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/metrics"
	"github.com/jeremyhahn/go-quorum/pkg/validation"
)

var (
	// ErrInsufficientEndpoints is returned when fewer endpoints than
	// shares are configured.
	ErrInsufficientEndpoints = errors.New("coordinator: insufficient endpoints")

	// ErrVerificationFailed is returned when the recovered secret differs
	// from the one that was split.
	ErrVerificationFailed = errors.New("coordinator: recovered secret does not match")

	// ErrNotDistributed is returned by Recover before a successful Distribute.
	ErrNotDistributed = errors.New("coordinator: shares have not been distributed")
)

// Config configures a ceremony.
type Config struct {
	// Endpoints of the custodians. Share i goes to Endpoints[i]; endpoints
	// beyond TotalShares are not used.
	Endpoints []string

	Threshold   int
	TotalShares int

	// CeremonyID names the ceremony on every node. A random UUID is used
	// when empty.
	CeremonyID string

	// Field is the registry name of the scalar field. Empty selects the
	// default field.
	Field string

	// Dialer connects to endpoints. Defaults to a GRPCDialer.
	Dialer Dialer

	// Rand is the randomness source for the secret and polynomial.
	// Nil selects crypto/rand.
	Rand io.Reader

	Logger logging.Logger
}

// Report summarises a ceremony.
type Report struct {
	CeremonyID  string       `json:"ceremony_id"`
	Field       string       `json:"field"`
	Threshold   int          `json:"threshold"`
	TotalShares int          `json:"total_shares"`
	Nodes       []NodeStatus `json:"nodes"`
	Secret      string       `json:"secret,omitempty"`
	Recovered   string       `json:"recovered,omitempty"`
	Verified    bool         `json:"verified"`
	Duration    string       `json:"duration,omitempty"`
}

// Coordinator runs one ceremony. It is safe for concurrent use, but its
// operations serialise on an internal lock.
type Coordinator struct {
	config *Config
	field  field.Field
	shamir *secretsharing.Shamir
	dialer Dialer
	logger logging.Logger

	mu          sync.Mutex
	nodes       []NodeStatus
	conns       map[int]Custodian
	secret      field.Scalar
	recovered   field.Scalar
	distributed bool
	verified    bool
	duration    time.Duration
}

// New validates cfg and creates a coordinator.
func New(cfg *Config) (*Coordinator, error) {
	if cfg == nil {
		return nil, errors.New("coordinator: config is required")
	}

	f := field.Default()
	if cfg.Field != "" {
		var err error
		if f, err = field.Lookup(cfg.Field); err != nil {
			return nil, err
		}
	}

	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
		Threshold:   cfg.Threshold,
		TotalShares: cfg.TotalShares,
		Field:       f,
		Rand:        cfg.Rand,
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.Endpoints) < cfg.TotalShares {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientEndpoints, cfg.TotalShares, len(cfg.Endpoints))
	}

	c := *cfg
	if c.CeremonyID == "" {
		c.CeremonyID = uuid.NewString()
	}
	if err := validation.ValidateCeremonyID(c.CeremonyID); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}
	dialer := c.Dialer
	if dialer == nil {
		dialer = &GRPCDialer{Field: f, Logger: c.Logger}
	}

	nodes := make([]NodeStatus, c.TotalShares)
	for i := range nodes {
		nodes[i] = NodeStatus{Index: i, Endpoint: c.Endpoints[i], State: StatePending}
	}

	return &Coordinator{
		config: &c,
		field:  f,
		shamir: shamir,
		dialer: dialer,
		logger: c.Logger.With(logging.String("ceremony_id", c.CeremonyID)),
		nodes:  nodes,
		conns:  make(map[int]Custodian),
	}, nil
}

// CeremonyID returns the ceremony identifier used on every node.
func (c *Coordinator) CeremonyID() string {
	return c.config.CeremonyID
}

// Field returns the field the ceremony runs in.
func (c *Coordinator) Field() field.Field {
	return c.field
}

// Run performs a complete ceremony with a freshly generated secret and
// returns the report. The report is returned alongside any error.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer c.closeConnections()

	secret, err := c.field.Random(c.config.Rand)
	if err != nil {
		return c.finish(start, metrics.CeremonyFailed), fmt.Errorf("failed to generate secret: %w", err)
	}

	c.logger.Info("Starting ceremony",
		logging.String("field", c.field.Name()),
		logging.Int("threshold", c.config.Threshold),
		logging.Int("total_shares", c.config.TotalShares))

	if _, err := c.Distribute(ctx, secret); err != nil {
		return c.finish(start, metrics.CeremonyFailed), err
	}

	recovered, err := c.Recover(ctx)
	if err != nil {
		return c.finish(start, metrics.CeremonyFailed), err
	}

	c.mu.Lock()
	c.verified = recovered.Equal(secret)
	verified := c.verified
	c.mu.Unlock()

	if !verified {
		c.logger.Error("Recovered secret does not match original")
		return c.finish(start, metrics.CeremonyMismatch), ErrVerificationFailed
	}

	c.logger.Info("Ceremony verified", logging.String("duration", time.Since(start).String()))
	return c.finish(start, metrics.CeremonyVerified), nil
}

// Distribute splits secret and stores share i on endpoint i, in order.
// It returns the shares that were produced.
func (c *Coordinator) Distribute(ctx context.Context, secret field.Scalar) ([]secretsharing.Share, error) {
	start := time.Now()

	shares, err := c.shamir.Split(secret)
	metrics.RecordOperation(metrics.OpSplit, c.field.Name(), metrics.StatusOf(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.secret = secret
	c.distributed = false

	for i, share := range shares {
		conn, err := c.connectLocked(ctx, i)
		if err != nil {
			return nil, err
		}

		if err := conn.StoreShare(ctx, c.config.CeremonyID, share); err != nil {
			return nil, c.failLocked(i, StateStored, err)
		}
		c.nodes[i].State = StateStored

		c.logger.Info("Stored share on custodian",
			logging.Int("node", i+1),
			logging.String("endpoint", c.nodes[i].Endpoint))
	}

	c.distributed = true
	return shares, nil
}

// Recover retrieves shares from the first threshold endpoints and
// reconstructs the secret.
func (c *Coordinator) Recover(ctx context.Context) (field.Scalar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.distributed {
		return nil, ErrNotDistributed
	}

	shares := make([]secretsharing.Share, 0, c.config.Threshold)
	for i := 0; i < c.config.Threshold; i++ {
		conn, err := c.connectLocked(ctx, i)
		if err != nil {
			return nil, err
		}

		share, err := conn.RetrieveShare(ctx, c.config.CeremonyID)
		if err != nil {
			return nil, c.failLocked(i, StateRetrieved, err)
		}
		c.nodes[i].State = StateRetrieved
		shares = append(shares, share)

		c.logger.Info("Retrieved share from custodian",
			logging.Int("node", i+1),
			logging.String("endpoint", c.nodes[i].Endpoint))
	}

	start := time.Now()
	recovered, err := c.shamir.Combine(shares)
	metrics.RecordOperation(metrics.OpRecover, c.field.Name(), metrics.StatusOf(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	c.recovered = recovered
	return recovered, nil
}

// Report returns a snapshot of the ceremony state.
func (c *Coordinator) Report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportLocked()
}

// Close closes any open custodian connections.
func (c *Coordinator) Close() error {
	return c.closeConnections()
}

func (c *Coordinator) reportLocked() *Report {
	nodes := make([]NodeStatus, len(c.nodes))
	copy(nodes, c.nodes)

	r := &Report{
		CeremonyID:  c.config.CeremonyID,
		Field:       c.field.Name(),
		Threshold:   c.config.Threshold,
		TotalShares: c.config.TotalShares,
		Nodes:       nodes,
		Verified:    c.verified,
	}
	if c.secret != nil {
		r.Secret = c.secret.String()
	}
	if c.recovered != nil {
		r.Recovered = c.recovered.String()
	}
	if c.duration > 0 {
		r.Duration = c.duration.String()
	}
	return r
}

func (c *Coordinator) finish(start time.Time, outcome string) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.duration = time.Since(start)
	metrics.RecordCeremony(outcome, c.duration.Seconds())
	return c.reportLocked()
}

// connectLocked returns the open connection to node i, dialing it first
// if needed. Callers must hold c.mu.
func (c *Coordinator) connectLocked(ctx context.Context, i int) (Custodian, error) {
	if conn, ok := c.conns[i]; ok {
		return conn, nil
	}

	endpoint := c.nodes[i].Endpoint
	conn, err := c.dialer.Dial(ctx, endpoint)
	if err != nil {
		return nil, c.failLocked(i, StateConnected, err)
	}

	c.conns[i] = conn
	c.nodes[i].State = StateConnected
	c.logger.Debug("Connected to custodian",
		logging.Int("node", i+1),
		logging.String("endpoint", endpoint))
	return conn, nil
}

// failLocked marks node i failed and builds the NodeError. Callers must
// hold c.mu.
func (c *Coordinator) failLocked(i int, step NodeState, err error) error {
	c.nodes[i].State = StateFailed
	c.nodes[i].Error = err.Error()

	c.logger.Error("Custodian step failed",
		logging.Int("node", i+1),
		logging.String("endpoint", c.nodes[i].Endpoint),
		logging.String("step", stepName(step)),
		logging.Error(err))

	return &NodeError{Index: i, Endpoint: c.nodes[i].Endpoint, Step: step, Err: err}
}

func (c *Coordinator) closeConnections() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i, conn := range c.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.nodes[i].Endpoint, err))
		}
		delete(c.conns, i)
	}
	return errors.Join(errs...)
}
