// Package proto describes the admin gRPC service. Every request and response
// is a google.protobuf.Struct, so the service needs no generated message
// types; the descriptor below plays the role of protoc-gen-go-grpc output.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "securelogin.admin.AdminService"

const (
	AdminService_Authenticate_FullMethodName      = "/" + ServiceName + "/Authenticate"
	AdminService_SecurityReport_FullMethodName    = "/" + ServiceName + "/SecurityReport"
	AdminService_UnlockAccount_FullMethodName     = "/" + ServiceName + "/UnlockAccount"
	AdminService_ActivateAccount_FullMethodName   = "/" + ServiceName + "/ActivateAccount"
	AdminService_DeactivateAccount_FullMethodName = "/" + ServiceName + "/DeactivateAccount"
	AdminService_RecentFailures_FullMethodName    = "/" + ServiceName + "/RecentFailures"
)

// AdminServiceServer is implemented by the server side of the admin API.
type AdminServiceServer interface {
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SecurityReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UnlockAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ActivateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecentFailures(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

type methodCall func(AdminServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts one server method to grpc.MethodHandler, running the
// interceptor chain the same way generated code does.
func unaryHandler(fullMethod string, call methodCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdminServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AdminServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authenticate", Handler: unaryHandler(AdminService_Authenticate_FullMethodName, AdminServiceServer.Authenticate)},
		{MethodName: "SecurityReport", Handler: unaryHandler(AdminService_SecurityReport_FullMethodName, AdminServiceServer.SecurityReport)},
		{MethodName: "UnlockAccount", Handler: unaryHandler(AdminService_UnlockAccount_FullMethodName, AdminServiceServer.UnlockAccount)},
		{MethodName: "ActivateAccount", Handler: unaryHandler(AdminService_ActivateAccount_FullMethodName, AdminServiceServer.ActivateAccount)},
		{MethodName: "DeactivateAccount", Handler: unaryHandler(AdminService_DeactivateAccount_FullMethodName, AdminServiceServer.DeactivateAccount)},
		{MethodName: "RecentFailures", Handler: unaryHandler(AdminService_RecentFailures_FullMethodName, AdminServiceServer.RecentFailures)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securelogin/admin.proto",
}

// AdminServiceClient is the client side of the admin API.
type AdminServiceClient interface {
	Authenticate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SecurityReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UnlockAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ActivateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeactivateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RecentFailures(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc}
}

func (c *adminServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *adminServiceClient) Authenticate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_Authenticate_FullMethodName, in, opts)
}

func (c *adminServiceClient) SecurityReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_SecurityReport_FullMethodName, in, opts)
}

func (c *adminServiceClient) UnlockAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_UnlockAccount_FullMethodName, in, opts)
}

func (c *adminServiceClient) ActivateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_ActivateAccount_FullMethodName, in, opts)
}

func (c *adminServiceClient) DeactivateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_DeactivateAccount_FullMethodName, in, opts)
}

func (c *adminServiceClient) RecentFailures(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_RecentFailures_FullMethodName, in, opts)
}
