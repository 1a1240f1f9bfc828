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
	"bytes"
	"context"
	"testing"

	pb "github.com/jeremyhahn/go-quorum/api/proto/custodianv1"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func scalarBytes(v uint64) []byte {
	return field.Secp256k1.FromUint64(v).Bytes()
}

func TestJoinCeremony(t *testing.T) {
	svc := NewService(&ServiceConfig{NodeID: "node-50051"})

	resp, err := svc.JoinCeremony(context.Background(), &pb.JoinRequest{NodeId: "coordinator"})
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	assert.Equal(t, uint32(0), resp.GetAssignedIndex())
	assert.Equal(t, "welcome to the ceremony, coordinator", resp.GetMessage())
}

func TestStoreAndRetrieveShare(t *testing.T) {
	store := storage.NewShareStore()
	svc := NewService(&ServiceConfig{NodeID: "node-1", Store: store})
	ctx := context.Background()

	resp, err := svc.StoreShare(ctx, &pb.ShareData{
		CeremonyId: "ceremony-1",
		X:          scalarBytes(1),
		Y:          scalarBytes(49),
	})
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	assert.Equal(t, "share stored successfully", resp.GetMessage())
	assert.True(t, store.Exists("ceremony-1"))

	got, err := svc.RetrieveShare(ctx, &pb.RetrieveRequest{CeremonyId: "ceremony-1"})
	require.NoError(t, err)
	assert.Equal(t, "ceremony-1", got.GetCeremonyId())
	assert.Equal(t, scalarBytes(1), got.GetX())
	assert.Equal(t, scalarBytes(49), got.GetY())
}

func TestStoreShareOverwrites(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.StoreShare(ctx, &pb.ShareData{CeremonyId: "c", X: scalarBytes(1), Y: scalarBytes(10)})
	require.NoError(t, err)
	_, err = svc.StoreShare(ctx, &pb.ShareData{CeremonyId: "c", X: scalarBytes(2), Y: scalarBytes(20)})
	require.NoError(t, err)

	got, err := svc.RetrieveShare(ctx, &pb.RetrieveRequest{CeremonyId: "c"})
	require.NoError(t, err)
	assert.Equal(t, scalarBytes(2), got.GetX())
	assert.Equal(t, scalarBytes(20), got.GetY())
	assert.Equal(t, 1, svc.Store().Len())
}

func TestRetrieveUnknownCeremony(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.RetrieveShare(context.Background(), &pb.RetrieveRequest{CeremonyId: "missing"})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "no share found for ceremony 'missing'", st.Message())
}

func TestStoreShareValidation(t *testing.T) {
	overflow := bytes.Repeat([]byte{0xff}, field.ScalarSize)

	tests := []struct {
		name   string
		strict bool
		req    *pb.ShareData
		code   codes.Code
	}{
		{
			name: "empty ceremony id",
			req:  &pb.ShareData{X: scalarBytes(1), Y: scalarBytes(2)},
			code: codes.InvalidArgument,
		},
		{
			name: "control characters in ceremony id",
			req:  &pb.ShareData{CeremonyId: "c\nforged", X: scalarBytes(1), Y: scalarBytes(2)},
			code: codes.InvalidArgument,
		},
		{
			name: "short x",
			req:  &pb.ShareData{CeremonyId: "c", X: []byte{1}, Y: scalarBytes(2)},
			code: codes.InvalidArgument,
		},
		{
			name: "missing y",
			req:  &pb.ShareData{CeremonyId: "c", X: scalarBytes(1)},
			code: codes.InvalidArgument,
		},
		{
			name: "long y",
			req:  &pb.ShareData{CeremonyId: "c", X: scalarBytes(1), Y: make([]byte, 33)},
			code: codes.InvalidArgument,
		},
		{
			name:   "out of range in strict mode",
			strict: true,
			req:    &pb.ShareData{CeremonyId: "c", X: scalarBytes(1), Y: overflow},
			code:   codes.InvalidArgument,
		},
		{
			name: "out of range is reduced by default",
			req:  &pb.ShareData{CeremonyId: "c", X: scalarBytes(1), Y: overflow},
			code: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&ServiceConfig{StrictScalars: tt.strict})
			_, err := svc.StoreShare(context.Background(), tt.req)
			assert.Equal(t, tt.code, status.Code(err))
			assert.Equal(t, tt.code == codes.OK, svc.Store().Exists("c"))
		})
	}
}

func TestStrictModeReportsMalformedScalar(t *testing.T) {
	svc := NewService(&ServiceConfig{StrictScalars: true})
	_, err := svc.StoreShare(context.Background(), &pb.ShareData{
		CeremonyId: "c",
		X:          scalarBytes(1),
		Y:          bytes.Repeat([]byte{0xff}, field.ScalarSize),
	})
	require.Error(t, err)
	assert.Contains(t, status.Convert(err).Message(), field.ErrMalformedScalar.Error())
}

func TestRetrieveShareRequiresID(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.RetrieveShare(context.Background(), &pb.RetrieveRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServiceUsesConfiguredField(t *testing.T) {
	svc := NewService(&ServiceConfig{Field: field.Ed25519})
	ctx := context.Background()

	order := field.Ed25519.Order().FillBytes(make([]byte, field.ScalarSize))
	_, err := svc.StoreShare(ctx, &pb.ShareData{CeremonyId: "c", X: scalarBytes(1), Y: order})
	require.NoError(t, err)

	got, err := svc.RetrieveShare(ctx, &pb.RetrieveRequest{CeremonyId: "c"})
	require.NoError(t, err)
	// The order reduces to zero.
	assert.Equal(t, make([]byte, field.ScalarSize), got.GetY())
}
