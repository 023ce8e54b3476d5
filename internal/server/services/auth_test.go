package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/auth"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(username, password string) LoginRequest {
	return LoginRequest{Username: username, Password: password, Address: "192.0.2.10", UserAgent: "test-agent"}
}

func (f *fixture) attemptsOf(t *testing.T, username string) []*models.LoginAttempt {
	t.Helper()
	list, err := f.manager.attempts.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return list
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "password", "ADMIN", "USER")

	session, err := f.auth.Authenticate(ctx, login("alice", "password"))
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, alice.ID, session.Principal.AccountID)
	assert.ElementsMatch(t, []string{"ROLE_ADMIN", "ROLE_USER"}, session.Principal.Authorities)

	principal, err := f.auth.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.True(t, principal.HasRole(models.RoleAdmin))

	recorded := f.attemptsOf(t, "alice")
	require.Len(t, recorded, 1)
	assert.True(t, recorded[0].Success)
	assert.Equal(t, "192.0.2.10", recorded[0].IPAddress)
	assert.Equal(t, "test-agent", recorded[0].UserAgent)

	stored, _ := f.accounts.FindByID(ctx, alice.ID)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, f.now, *stored.LastLogin)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*models.Account)
		password string
		wantErr  error
		reason   string
	}{
		{name: "wrong password", password: "nope", wantErr: common.ErrorInvalidCredentials, reason: ReasonInvalidCredentials},
		{name: "inactive", setup: func(a *models.Account) { a.Active = false },
			password: "password", wantErr: common.ErrorAccountInactive, reason: ReasonAccountDisabled},
		{name: "locked is checked before password", setup: func(a *models.Account) { a.AccountNonLocked = false },
			password: "nope", wantErr: common.ErrorAccountLocked, reason: ReasonAccountLocked},
		{name: "expired account", setup: func(a *models.Account) { a.AccountNonExpired = false },
			password: "password", wantErr: common.ErrorAccountExpired, reason: ReasonAccountExpired},
		{name: "expired credentials", setup: func(a *models.Account) { a.CredentialsNonExpired = false },
			password: "password", wantErr: common.ErrorCredentialsExpired, reason: ReasonCredentialsExpired},
		{name: "expired credentials with wrong password", setup: func(a *models.Account) { a.CredentialsNonExpired = false },
			password: "nope", wantErr: common.ErrorInvalidCredentials, reason: ReasonInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			alice := f.register(t, "alice", "password")
			if tt.setup != nil {
				f.mutate(t, alice.ID, tt.setup)
			}

			_, err := f.auth.Authenticate(context.Background(), login("alice", tt.password))
			assert.ErrorIs(t, err, tt.wantErr)

			recorded := f.attemptsOf(t, "alice")
			require.Len(t, recorded, 1, "each outcome is recorded once")
			assert.False(t, recorded[0].Success)
			assert.Equal(t, tt.reason, recorded[0].FailureReason)

			stored, _ := f.accounts.FindByID(context.Background(), alice.ID)
			assert.Nil(t, stored.LastLogin)
		})
	}
}

func TestAuthenticate_UnknownUserIsRecorded(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate(context.Background(), login("ghost", "whatever"))
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)

	recorded := f.attemptsOf(t, "ghost")
	require.Len(t, recorded, 1)
	assert.Equal(t, ReasonUserNotFound, recorded[0].FailureReason)
}

func TestAuthenticate_StoreOutage(t *testing.T) {
	f := newFixture(t)
	f.manager.accounts = brokenAccounts{}

	_, err := f.auth.Authenticate(context.Background(), login("alice", "password"))
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)

	recorded := f.attemptsOf(t, "alice")
	require.Len(t, recorded, 1)
	assert.Equal(t, ReasonAuthenticationError, recorded[0].FailureReason)
}

func TestAuthenticate_RecordingFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	f.manager.attempts = brokenAttempts{}

	session, err := f.auth.Authenticate(context.Background(), login("alice", "password"))
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = f.auth.Authenticate(context.Background(), login("alice", "wrong"))
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "password")

	session, err := f.auth.Authenticate(ctx, login("alice", "password"))
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, session.Token))

	_, err = f.auth.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	assert.NoError(t, f.auth.Logout(ctx, "not-a-token"))
}

func TestVerify_RejectsForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "password")
	session, err := f.auth.Authenticate(ctx, login("alice", "password"))
	require.NoError(t, err)

	cfg := testConfig()
	cfg.SecretKey = "other-secret"
	other := NewAuthService(f.accounts, f.attempts, f.hasher, f.revoked, logging.Nop{}, cfg)

	_, err = other.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = f.auth.Verify(ctx, session.Token+"x")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_FollowsAccountState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "password")
	session, err := f.auth.Authenticate(ctx, login("alice", "password"))
	require.NoError(t, err)

	_, err = f.accounts.UpdateAccount(ctx, alice.ID, models.AccountPatch{Roles: []string{"admin", "user"}})
	require.NoError(t, err)
	p, err := f.auth.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, p.HasRole(models.RoleAdmin))

	_, err = f.accounts.DeactivateAccount(ctx, alice.ID)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = f.accounts.ActivateAccount(ctx, alice.ID)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, session.Token)
	require.NoError(t, err)

	f.mutate(t, alice.ID, func(a *models.Account) { a.AccountNonLocked = false })
	_, err = f.auth.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	token, err := auth.GenerateToken(models.Identity{AccountID: "gone", Username: "ghost"}, []byte(testConfig().SecretKey), time.Hour)
	require.NoError(t, err)

	_, err = f.auth.Verify(context.Background(), token.Value)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
