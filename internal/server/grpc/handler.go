package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors to gRPC status codes. Store details stay in
// the log.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrorAccountInactive),
		errors.Is(err, common.ErrorAccountLocked),
		errors.Is(err, common.ErrorAccountExpired),
		errors.Is(err, common.ErrorCredentialsExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorStoreUnavailable):
		s.logger.Error(ctx, "store unavailable", "err", err)
		return status.Error(codes.Unavailable, "store unavailable")
	default:
		s.logger.Error(ctx, "request failed", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func peerAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

func userAgent(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("user-agent"); len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func stringField(req *structpb.Struct, name string) string {
	if v, ok := req.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func requireString(req *structpb.Struct, name string) (string, error) {
	v := stringField(req, name)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v, nil
}

func accountStruct(a *models.Account) (*structpb.Struct, error) {
	roles := make([]any, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, r)
	}
	return structpb.NewStruct(map[string]any{
		"id":                      a.ID,
		"username":                a.Username,
		"email":                   a.Email,
		"full_name":               a.FullName,
		"active":                  a.Active,
		"account_non_locked":      a.AccountNonLocked,
		"account_non_expired":     a.AccountNonExpired,
		"credentials_non_expired": a.CredentialsNonExpired,
		"roles":                   roles,
	})
}

// Authenticate issues an access token for an administrator. Accounts
// without the admin role get PermissionDenied even with valid credentials.
func (s *GRPCServer) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, err := requireString(req, "username")
	if err != nil {
		return nil, err
	}
	password, err := requireString(req, "password")
	if err != nil {
		return nil, err
	}

	session, err := s.auth.Authenticate(ctx, services.LoginRequest{
		Username:  username,
		Password:  password,
		Address:   peerAddress(ctx),
		UserAgent: userAgent(ctx),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if !session.Principal.HasRole(models.RoleAdmin) {
		if err := s.auth.Logout(ctx, session.Token); err != nil {
			s.logger.Warn(ctx, "session not revoked", "username", username, "err", err)
		}
		return nil, status.Error(codes.PermissionDenied, "access denied")
	}

	s.logger.Info(ctx, "admin authenticated", "username", username)
	return structpb.NewStruct(map[string]any{
		"access_token": session.Token,
		"expires_at":   session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *GRPCServer) SecurityReport(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	report, err := s.attempts.GenerateSecurityReport(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return structpb.NewStruct(map[string]any{
		"total_attempts":      float64(report.TotalAttempts),
		"successful_attempts": float64(report.SuccessfulAttempts),
		"failed_attempts":     float64(report.FailedAttempts),
		"success_rate":        report.SuccessRate(),
		"failure_rate":        report.FailureRate(),
		"report_period":       report.ReportPeriod.UTC().Format(time.RFC3339),
	})
}

func (s *GRPCServer) UnlockAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.accounts.UnlockAccount)
}

func (s *GRPCServer) ActivateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.accounts.ActivateAccount)
}

func (s *GRPCServer) DeactivateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.accounts.DeactivateAccount)
}

func (s *GRPCServer) transition(ctx context.Context, req *structpb.Struct,
	apply func(context.Context, string) (*models.Account, error)) (*structpb.Struct, error) {
	id, err := requireString(req, "id")
	if err != nil {
		return nil, err
	}
	account, err := apply(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if p := principalFromContext(ctx); p != nil {
		s.logger.Info(ctx, "account changed over admin API", "account_id", id, "by", p.Username)
	}
	return accountStruct(account)
}

// RecentFailures lists failed attempts from an address. hours defaults to
// the report window.
func (s *GRPCServer) RecentFailures(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	address, err := requireString(req, "address")
	if err != nil {
		return nil, err
	}
	hours := int(services.ReportWindow.Hours())
	if v, ok := req.GetFields()["hours"]; ok {
		n := v.GetNumberValue()
		// NaN and infinities are rejected too.
		if n != math.Trunc(n) || n < 1 || n > services.MaxHoursBack {
			return nil, s.toStatus(ctx, common.NewValidationError("hours",
				fmt.Sprintf("must be a whole number between 1 and %d", services.MaxHoursBack)))
		}
		hours = int(n)
	}

	list, err := s.attempts.RecentFailuresByAddress(ctx, address, hours)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	items := make([]any, 0, len(list))
	for _, a := range list {
		items = append(items, map[string]any{
			"username":       a.Username,
			"ip_address":     a.IPAddress,
			"attempt_time":   a.AttemptTime.UTC().Format(time.RFC3339),
			"user_agent":     a.UserAgent,
			"failure_reason": a.FailureReason,
		})
	}
	return structpb.NewStruct(map[string]any{"attempts": items})
}
