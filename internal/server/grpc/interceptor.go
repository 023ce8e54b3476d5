package grpc

import (
	"context"

	"github.com/dmitrijs2005/securelogin/internal/common"
	pb "github.com/dmitrijs2005/securelogin/internal/proto"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicMethods are callable without an access token.
var publicMethods = map[string]bool{
	pb.AdminService_Authenticate_FullMethodName: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	principal, err := s.auth.Verify(ctx, accessToken)
	if err != nil {
		s.logger.Warn(ctx, "token rejected", "method", info.FullMethod, "err", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	if !principal.HasRole(models.RoleAdmin) {
		s.logger.Warn(ctx, "access denied", "method", info.FullMethod, "username", principal.Username)
		return nil, status.Error(codes.PermissionDenied, "access denied")
	}

	ctx = context.WithValue(ctx, principalKey, principal)

	return handler(ctx, req)
}

func principalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}
