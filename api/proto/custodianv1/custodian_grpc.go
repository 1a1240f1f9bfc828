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

package custodianv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Custodian_JoinCeremony_FullMethodName  = "/custodian.Custodian/JoinCeremony"
	Custodian_StoreShare_FullMethodName    = "/custodian.Custodian/StoreShare"
	Custodian_RetrieveShare_FullMethodName = "/custodian.Custodian/RetrieveShare"
)

// CustodianClient is the client API for the Custodian service.
type CustodianClient interface {
	JoinCeremony(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*JoinResponse, error)
	StoreShare(ctx context.Context, in *ShareData, opts ...grpc.CallOption) (*StoreResponse, error)
	RetrieveShare(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*ShareData, error)
}

type custodianClient struct {
	cc grpc.ClientConnInterface
}

// NewCustodianClient returns a client that encodes messages with Codec.
func NewCustodianClient(cc grpc.ClientConnInterface) CustodianClient {
	return &custodianClient{cc}
}

func (c *custodianClient) JoinCeremony(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*JoinResponse, error) {
	out := new(JoinResponse)
	if err := c.cc.Invoke(ctx, Custodian_JoinCeremony_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *custodianClient) StoreShare(ctx context.Context, in *ShareData, opts ...grpc.CallOption) (*StoreResponse, error) {
	out := new(StoreResponse)
	if err := c.cc.Invoke(ctx, Custodian_StoreShare_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *custodianClient) RetrieveShare(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*ShareData, error) {
	out := new(ShareData)
	if err := c.cc.Invoke(ctx, Custodian_RetrieveShare_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
}

// CustodianServer is the server API for the Custodian service.
// Implementations must embed UnimplementedCustodianServer.
type CustodianServer interface {
	JoinCeremony(context.Context, *JoinRequest) (*JoinResponse, error)
	StoreShare(context.Context, *ShareData) (*StoreResponse, error)
	RetrieveShare(context.Context, *RetrieveRequest) (*ShareData, error)
	mustEmbedUnimplementedCustodianServer()
}

// UnimplementedCustodianServer returns Unimplemented for every method.
type UnimplementedCustodianServer struct{}

func (UnimplementedCustodianServer) JoinCeremony(context.Context, *JoinRequest) (*JoinResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method JoinCeremony not implemented")
}

func (UnimplementedCustodianServer) StoreShare(context.Context, *ShareData) (*StoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StoreShare not implemented")
}

func (UnimplementedCustodianServer) RetrieveShare(context.Context, *RetrieveRequest) (*ShareData, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RetrieveShare not implemented")
}

func (UnimplementedCustodianServer) mustEmbedUnimplementedCustodianServer() {}

// RegisterCustodianServer registers srv with s. The grpc.Server must be
// created with grpc.ForceServerCodec(Codec()).
func RegisterCustodianServer(s grpc.ServiceRegistrar, srv CustodianServer) {
	s.RegisterService(&Custodian_ServiceDesc, srv)
}

func _Custodian_JoinCeremony_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(JoinRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustodianServer).JoinCeremony(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Custodian_JoinCeremony_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustodianServer).JoinCeremony(ctx, req.(*JoinRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Custodian_StoreShare_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ShareData)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustodianServer).StoreShare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Custodian_StoreShare_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustodianServer).StoreShare(ctx, req.(*ShareData))
	}
	return interceptor(ctx, in, info, handler)
}

func _Custodian_RetrieveShare_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RetrieveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustodianServer).RetrieveShare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Custodian_RetrieveShare_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustodianServer).RetrieveShare(ctx, req.(*RetrieveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Custodian_ServiceDesc is the grpc.ServiceDesc for the Custodian service.
var Custodian_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "custodian.Custodian",
	HandlerType: (*CustodianServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "JoinCeremony",
			Handler:    _Custodian_JoinCeremony_Handler,
		},
		{
			MethodName: "StoreShare",
			Handler:    _Custodian_StoreShare_Handler,
		},
		{
			MethodName: "RetrieveShare",
			Handler:    _Custodian_RetrieveShare_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "custodian.proto",
}
