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
	"errors"
	"fmt"
	"time"

	pb "github.com/jeremyhahn/go-quorum/api/proto/custodianv1"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/metrics"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"github.com/jeremyhahn/go-quorum/pkg/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service implements the Custodian gRPC interface on top of a ShareStore.
type Service struct {
	pb.UnimplementedCustodianServer

	nodeID        string
	field         field.Field
	strictScalars bool
	store         *storage.ShareStore
	logger        logging.Logger
}

// ServiceConfig configures a custodian Service.
type ServiceConfig struct {
	// NodeID identifies this node in log lines.
	NodeID string

	// Field is the scalar field shares are decoded into. Defaults to
	// field.Default().
	Field field.Field

	// StrictScalars rejects coordinates that are not less than the field
	// order instead of reducing them.
	StrictScalars bool

	// Store holds the shares. A new empty store is created when nil.
	Store *storage.ShareStore

	Logger logging.Logger
}

// NewService creates a custodian service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	f := cfg.Field
	if f == nil {
		f = field.Default()
	}

	store := cfg.Store
	if store == nil {
		store = storage.NewShareStore()
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Service{
		nodeID:        cfg.NodeID,
		field:         f,
		strictScalars: cfg.StrictScalars,
		store:         store,
		logger:        log.With(logging.String("node_id", cfg.NodeID)),
	}
}

// Store returns the share store backing the service.
func (s *Service) Store() *storage.ShareStore {
	return s.store
}

// JoinCeremony acknowledges a node joining a ceremony. Joining is
// bookkeeping only; the assigned index is always 0.
func (s *Service) JoinCeremony(ctx context.Context, req *pb.JoinRequest) (*pb.JoinResponse, error) {
	start := time.Now()

	logging.InfoContext(ctx, s.logger, "Node joined ceremony",
		logging.String("joining_node", validation.SanitizeForLog(req.GetNodeId())))

	metrics.RecordOperation(metrics.OpJoin, s.field.Name(), metrics.StatusSuccess, time.Since(start).Seconds())

	return &pb.JoinResponse{
		Success:       true,
		AssignedIndex: 0,
		Message:       fmt.Sprintf("welcome to the ceremony, %s", req.GetNodeId()),
	}, nil
}

// StoreShare decodes and stores the share for a ceremony, overwriting any
// share already held for it.
func (s *Service) StoreShare(ctx context.Context, req *pb.ShareData) (*pb.StoreResponse, error) {
	start := time.Now()
	ceremonyID := req.GetCeremonyId()

	share, err := s.decodeShare(req)
	if err != nil {
		metrics.RecordOperation(metrics.OpStore, s.field.Name(), metrics.StatusError, time.Since(start).Seconds())
		logging.WarnContext(ctx, s.logger, "Rejected share",
			logging.String("ceremony_id", validation.SanitizeForLog(ceremonyID)),
			logging.Error(err))
		return nil, err
	}

	if err := s.store.Store(ceremonyID, share); err != nil {
		metrics.RecordOperation(metrics.OpStore, s.field.Name(), metrics.StatusError, time.Since(start).Seconds())
		return nil, status.Errorf(codes.InvalidArgument, "failed to store share: %v", err)
	}

	metrics.RecordOperation(metrics.OpStore, s.field.Name(), metrics.StatusSuccess, time.Since(start).Seconds())
	metrics.SetSharesHeld(s.store.Len())

	logging.InfoContext(ctx, s.logger, "Stored share",
		logging.String("ceremony_id", ceremonyID))

	return &pb.StoreResponse{
		Success: true,
		Message: "share stored successfully",
	}, nil
}

// RetrieveShare returns the share held for a ceremony, or NotFound.
func (s *Service) RetrieveShare(ctx context.Context, req *pb.RetrieveRequest) (*pb.ShareData, error) {
	start := time.Now()
	ceremonyID := req.GetCeremonyId()

	if err := validation.ValidateCeremonyID(ceremonyID); err != nil {
		metrics.RecordError(metrics.OpRetrieve, "invalid_argument")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	share, err := s.store.Get(ceremonyID)
	if err != nil {
		metrics.RecordOperation(metrics.OpRetrieve, s.field.Name(), metrics.StatusError, time.Since(start).Seconds())
		metrics.RecordError(metrics.OpRetrieve, "not_found")
		logging.WarnContext(ctx, s.logger, "No share for ceremony",
			logging.String("ceremony_id", ceremonyID))
		return nil, status.Errorf(codes.NotFound, "no share found for ceremony '%s'", ceremonyID)
	}

	x, y := share.Encode()

	metrics.RecordOperation(metrics.OpRetrieve, s.field.Name(), metrics.StatusSuccess, time.Since(start).Seconds())
	logging.InfoContext(ctx, s.logger, "Retrieved share",
		logging.String("ceremony_id", ceremonyID))

	return &pb.ShareData{
		CeremonyId: ceremonyID,
		X:          x,
		Y:          y,
	}, nil
}

// decodeShare validates a ShareData message and converts it to a Share.
// Validation failures are returned as InvalidArgument status errors.
func (s *Service) decodeShare(req *pb.ShareData) (secretsharing.Share, error) {
	if err := validation.ValidateCeremonyID(req.GetCeremonyId()); err != nil {
		metrics.RecordError(metrics.OpStore, "invalid_argument")
		return secretsharing.Share{}, status.Error(codes.InvalidArgument, err.Error())
	}

	share, err := secretsharing.DecodeShare(s.field, req.GetX(), req.GetY(), s.strictScalars)
	if err != nil {
		errType := "invalid_argument"
		if errors.Is(err, field.ErrMalformedScalar) {
			errType = "malformed_scalar"
		}
		metrics.RecordError(metrics.OpStore, errType)
		return secretsharing.Share{}, status.Errorf(codes.InvalidArgument, "invalid share: %v", err)
	}
	return share, nil
}
