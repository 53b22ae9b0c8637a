package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "layoutverify.v1.Verifier"

// VerifierServer is the server API for layoutverify.v1.Verifier. Requests and responses are
// google.protobuf.Struct documents so clients need no generated stubs.
type VerifierServer interface {
	VerifyBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifySingle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterVerifierServer(s grpc.ServiceRegistrar, srv VerifierServer) {
	s.RegisterService(&Verifier_ServiceDesc, srv)
}

var Verifier_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VerifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "VerifyBatch", Handler: unaryHandler(VerifierServer.VerifyBatch, "VerifyBatch")},
		{MethodName: "VerifySingle", Handler: unaryHandler(VerifierServer.VerifySingle, "VerifySingle")},
		{MethodName: "ListRuns", Handler: unaryHandler(VerifierServer.ListRuns, "ListRuns")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "layoutverify/v1/verifier.proto",
}

type unaryMethod func(VerifierServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(m unaryMethod, name string) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(VerifierServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return m(srv.(VerifierServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls layoutverify.v1.Verifier over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifyBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "VerifyBatch", in, opts...)
}

func (c *Client) VerifySingle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "VerifySingle", in, opts...)
}

func (c *Client) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ListRuns", in, opts...)
}
