// Package grpc serves the admin API used by the operator console.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/securelogin/internal/logging"
	pb "github.com/dmitrijs2005/securelogin/internal/proto"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	accounts *services.AccountService
	attempts *services.AttemptService
	auth     *services.AuthService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, accounts *services.AccountService,
	attempts *services.AttemptService, auth *services.AuthService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		attempts: attempts,
		auth:     auth,
	}
}

// register builds a grpc.Server with the access interceptor and the admin
// service attached.
func (s *GRPCServer) register() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterAdminServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.register()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
