package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/client/models"
	"github.com/dmitrijs2005/securelogin/internal/common"
	pb "github.com/dmitrijs2005/securelogin/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AdminServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" && method != pb.AdminService_Authenticate_FullMethodName {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewAdminClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAdminServiceClient(conn)
	return nil
}

func (s *GRPCClient) Authenticate(ctx context.Context, username string, password []byte) error {
	req, err := structpb.NewStruct(map[string]any{
		"username": username,
		"password": string(password),
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Authenticate(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.accessToken = resp.GetFields()["access_token"].GetStringValue()
	return nil
}

// Logout forgets the access token.
func (s *GRPCClient) Logout() {
	s.accessToken = ""
}

func (s *GRPCClient) SecurityReport(ctx context.Context) (*models.Report, error) {
	resp, err := s.client.SecurityReport(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	period, _ := time.Parse(time.RFC3339, f["report_period"].GetStringValue())
	return &models.Report{
		TotalAttempts:      int64(f["total_attempts"].GetNumberValue()),
		SuccessfulAttempts: int64(f["successful_attempts"].GetNumberValue()),
		FailedAttempts:     int64(f["failed_attempts"].GetNumberValue()),
		SuccessRate:        f["success_rate"].GetNumberValue(),
		FailureRate:        f["failure_rate"].GetNumberValue(),
		ReportPeriod:       period,
	}, nil
}

type accountCall func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func (s *GRPCClient) UnlockAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accountByID(ctx, id, s.client.UnlockAccount)
}

func (s *GRPCClient) ActivateAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accountByID(ctx, id, s.client.ActivateAccount)
}

func (s *GRPCClient) DeactivateAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accountByID(ctx, id, s.client.DeactivateAccount)
}

func (s *GRPCClient) accountByID(ctx context.Context, id string, call accountCall) (*models.Account, error) {
	req, err := structpb.NewStruct(map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	resp, err := call(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	var roles []string
	for _, v := range f["roles"].GetListValue().GetValues() {
		roles = append(roles, v.GetStringValue())
	}
	return &models.Account{
		ID:                    f["id"].GetStringValue(),
		Username:              f["username"].GetStringValue(),
		Email:                 f["email"].GetStringValue(),
		FullName:              f["full_name"].GetStringValue(),
		Active:                f["active"].GetBoolValue(),
		AccountNonLocked:      f["account_non_locked"].GetBoolValue(),
		AccountNonExpired:     f["account_non_expired"].GetBoolValue(),
		CredentialsNonExpired: f["credentials_non_expired"].GetBoolValue(),
		Roles:                 roles,
	}, nil
}

func (s *GRPCClient) RecentFailures(ctx context.Context, address string, hours int) ([]*models.Attempt, error) {
	req, err := structpb.NewStruct(map[string]any{
		"address": address,
		"hours":   hours,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.RecentFailures(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	values := resp.GetFields()["attempts"].GetListValue().GetValues()
	list := make([]*models.Attempt, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		at, _ := time.Parse(time.RFC3339, f["attempt_time"].GetStringValue())
		list = append(list, &models.Attempt{
			Username:      f["username"].GetStringValue(),
			IPAddress:     f["ip_address"].GetStringValue(),
			AttemptTime:   at,
			UserAgent:     f["user_agent"].GetStringValue(),
			FailureReason: f["failure_reason"].GetStringValue(),
		})
	}
	return list, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %s", st.Message())
	}
}
