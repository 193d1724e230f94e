// Package grpcstore exposes an envelope store over gRPC so parties can
// exchange reconstruction recipes without moving data.
package grpcstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// EnvelopeStoreServer is the server API for the EnvelopeStore gRPC service.
//
// Protobuf well-known wrapper types are used throughout so this package does
// not require a protoc/codegen toolchain.
type EnvelopeStoreServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// UnimplementedEnvelopeStoreServer can be embedded for forward-compatible
// implementations.
type UnimplementedEnvelopeStoreServer struct{}

func (UnimplementedEnvelopeStoreServer) Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}
func (UnimplementedEnvelopeStoreServer) Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedEnvelopeStoreServer) Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Has not implemented")
}

// RegisterEnvelopeStoreServer registers the service on a gRPC server.
func RegisterEnvelopeStoreServer(s grpc.ServiceRegistrar, srv EnvelopeStoreServer) {
	s.RegisterService(&EnvelopeStore_ServiceDesc, srv)
}

// EnvelopeStoreClient is the client API for the EnvelopeStore gRPC service.
type EnvelopeStoreClient interface {
	Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type envelopeStoreClient struct{ cc grpc.ClientConnInterface }

func NewEnvelopeStoreClient(cc grpc.ClientConnInterface) EnvelopeStoreClient {
	return &envelopeStoreClient{cc: cc}
}

func (c *envelopeStoreClient) Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/gqs.store.v1.EnvelopeStore/Put", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *envelopeStoreClient) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/gqs.store.v1.EnvelopeStore/Get", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *envelopeStoreClient) Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	err := c.cc.Invoke(ctx, "/gqs.store.v1.EnvelopeStore/Has", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _EnvelopeStore_Put_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnvelopeStoreServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gqs.store.v1.EnvelopeStore/Put"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnvelopeStoreServer).Put(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _EnvelopeStore_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnvelopeStoreServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gqs.store.v1.EnvelopeStore/Get"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnvelopeStoreServer).Get(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _EnvelopeStore_Has_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnvelopeStoreServer).Has(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gqs.store.v1.EnvelopeStore/Has"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnvelopeStoreServer).Has(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// EnvelopeStore_ServiceDesc is the grpc.ServiceDesc for the EnvelopeStore
// service.
var EnvelopeStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "gqs.store.v1.EnvelopeStore",
	HandlerType: (*EnvelopeStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: _EnvelopeStore_Put_Handler},
		{MethodName: "Get", Handler: _EnvelopeStore_Get_Handler},
		{MethodName: "Has", Handler: _EnvelopeStore_Has_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "envelopestore.proto",
}
