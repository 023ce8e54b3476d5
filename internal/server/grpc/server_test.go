package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	pb "github.com/dmitrijs2005/securelogin/internal/proto"
	"github.com/dmitrijs2005/securelogin/internal/server/auth"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securelogin/internal/server/security"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/dmitrijs2005/securelogin/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testSecret = "grpc-test-secret"

type harness struct {
	server   *GRPCServer
	client   pb.AdminServiceClient
	accounts *services.AccountService
	auth     *services.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                    testSecret,
		SessionTokenValidityDuration: time.Hour,
		DefaultAdminPassword:         "admin123",
	}
	log := logging.Nop{}
	manager := repomanager.NewMemoryRepositoryManager()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	accounts := services.NewAccountService(manager, hasher, log, cfg)
	attempts := services.NewAttemptService(manager, log)
	authService := services.NewAuthService(accounts, attempts, hasher, sessions.NewMemoryStore(), log, cfg)

	s := NewGRPCServer("bufnet", log, accounts, attempts, authService)

	lis := bufconn.Listen(1 << 20)
	srv := s.register()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{
		server:   s,
		client:   pb.NewAdminServiceClient(conn),
		accounts: accounts,
		auth:     authService,
	}
}

func (h *harness) createAccount(t *testing.T, username string, roles ...string) *models.Account {
	t.Helper()
	a, err := h.accounts.CreateAccount(context.Background(), models.NewAccount{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
		FullName: "Test " + username,
		Roles:    roles,
	})
	require.NoError(t, err)
	return a
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func (h *harness) adminContext(t *testing.T) context.Context {
	t.Helper()
	h.createAccount(t, "root", models.RoleAdmin)
	resp, err := h.client.Authenticate(context.Background(),
		mustStruct(t, map[string]any{"username": "root", "password": "secret1"}))
	require.NoError(t, err)
	token := resp.GetFields()["access_token"].GetStringValue()
	require.NotEmpty(t, token)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	h.createAccount(t, "root", models.RoleAdmin)
	h.createAccount(t, "alice")

	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{"admin", map[string]any{"username": "root", "password": "secret1"}, codes.OK},
		{"not an admin", map[string]any{"username": "alice", "password": "secret1"}, codes.PermissionDenied},
		{"wrong password", map[string]any{"username": "root", "password": "nope"}, codes.Unauthenticated},
		{"unknown user", map[string]any{"username": "ghost", "password": "secret1"}, codes.Unauthenticated},
		{"missing username", map[string]any{"password": "secret1"}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.Authenticate(context.Background(), mustStruct(t, tt.req))
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestInterceptor_RejectsMissingAndForeignTokens(t *testing.T) {
	h := newHarness(t)
	alice := h.createAccount(t, "alice")

	_, err := h.client.SecurityReport(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "not-a-jwt")
	_, err = h.client.SecurityReport(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	userToken, err := auth.GenerateToken(models.Identity{
		AccountID:   alice.ID,
		Username:    "alice",
		Authorities: []string{models.Authority(models.RoleUser)},
	}, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	ctx = metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, userToken.Value)
	_, err = h.client.SecurityReport(ctx, &structpb.Struct{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestInterceptor_RejectsRevokedToken(t *testing.T) {
	h := newHarness(t)
	ctx := h.adminContext(t)

	md, _ := metadata.FromOutgoingContext(ctx)
	require.NoError(t, h.auth.Logout(context.Background(), md.Get(common.AccessTokenHeaderName)[0]))

	_, err := h.client.SecurityReport(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_FollowsAccountChanges(t *testing.T) {
	h := newHarness(t)
	ctx := h.adminContext(t)
	root, err := h.accounts.FindByUsername(context.Background(), "root")
	require.NoError(t, err)

	_, err = h.client.SecurityReport(ctx, &structpb.Struct{})
	require.NoError(t, err)

	_, err = h.accounts.UpdateAccount(context.Background(), root.ID, models.AccountPatch{Roles: []string{models.RoleUser}})
	require.NoError(t, err)
	_, err = h.client.SecurityReport(ctx, &structpb.Struct{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.accounts.DeactivateAccount(context.Background(), root.ID)
	require.NoError(t, err)
	_, err = h.client.SecurityReport(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSecurityReport(t *testing.T) {
	h := newHarness(t)
	ctx := h.adminContext(t)
	_, _ = h.client.Authenticate(context.Background(),
		mustStruct(t, map[string]any{"username": "root", "password": "bad"}))

	resp, err := h.client.SecurityReport(ctx, &structpb.Struct{})
	require.NoError(t, err)
	f := resp.GetFields()
	assert.Equal(t, 2.0, f["total_attempts"].GetNumberValue())
	assert.Equal(t, 1.0, f["failed_attempts"].GetNumberValue())
	assert.Equal(t, 50.0, f["success_rate"].GetNumberValue())
	assert.NotEmpty(t, f["report_period"].GetStringValue())
}

func TestAccountTransitions(t *testing.T) {
	h := newHarness(t)
	ctx := h.adminContext(t)
	alice := h.createAccount(t, "alice")
	byID := mustStruct(t, map[string]any{"id": alice.ID})

	resp, err := h.client.DeactivateAccount(ctx, byID)
	require.NoError(t, err)
	assert.False(t, resp.GetFields()["active"].GetBoolValue())

	resp, err = h.client.ActivateAccount(ctx, byID)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["active"].GetBoolValue())

	resp, err = h.client.UnlockAccount(ctx, byID)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["account_non_locked"].GetBoolValue())
	assert.Equal(t, "alice", resp.GetFields()["username"].GetStringValue())

	_, err = h.client.UnlockAccount(ctx, mustStruct(t, map[string]any{"id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.UnlockAccount(ctx, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecentFailures(t *testing.T) {
	h := newHarness(t)
	ctx := h.adminContext(t)
	h.createAccount(t, "alice")
	for range 2 {
		_, _ = h.client.Authenticate(context.Background(),
			mustStruct(t, map[string]any{"username": "alice", "password": "bad"}))
	}

	// bufconn peers have no host:port address, so the attempts carry the raw
	// peer string; look it up through the recorded attempts.
	failed, err := h.server.attempts.FailedAttemptsFor(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, failed, 2)
	address := failed[0].IPAddress

	resp, err := h.client.RecentFailures(ctx, mustStruct(t, map[string]any{"address": address}))
	require.NoError(t, err)
	list := resp.GetFields()["attempts"].GetListValue().GetValues()
	require.Len(t, list, 2)
	assert.Equal(t, "invalid_credentials",
		list[0].GetStructValue().GetFields()["failure_reason"].GetStringValue())

	for _, hours := range []any{0, 1.5, 3_000_000, 1e300} {
		_, err = h.client.RecentFailures(ctx, mustStruct(t, map[string]any{"address": address, "hours": hours}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), hours)
	}

	_, err = h.client.RecentFailures(ctx, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, nil, nil, nil)
	require.Error(t, srv.Run(context.Background()))
}
