package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/securelogin/internal/server/security"
	"github.com/dmitrijs2005/securelogin/internal/server/sessions"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("connection refused")

// fakeManager hands out whatever repositories a test wires in.
type fakeManager struct {
	accounts accounts.Repository
	attempts attempts.Repository
}

func (m *fakeManager) Accounts() accounts.Repository       { return m.accounts }
func (m *fakeManager) Attempts() attempts.Repository       { return m.attempts }
func (m *fakeManager) RunMigrations(context.Context) error { return nil }
func (m *fakeManager) Close(context.Context) error         { return nil }

// spyAccounts counts writes to the wrapped repository.
type spyAccounts struct {
	accounts.Repository
	saves int
}

func (s *spyAccounts) Save(ctx context.Context, a *models.Account) (*models.Account, error) {
	s.saves++
	return s.Repository.Save(ctx, a)
}

// brokenAccounts fails every call.
type brokenAccounts struct{ accounts.Repository }

func (brokenAccounts) FindByID(context.Context, string) (*models.Account, error) {
	return nil, errStoreDown
}
func (brokenAccounts) FindByUsername(context.Context, string) (*models.Account, error) {
	return nil, errStoreDown
}
func (brokenAccounts) ExistsByUsername(context.Context, string) (bool, error) {
	return false, errStoreDown
}
func (brokenAccounts) FindAll(context.Context) ([]*models.Account, error) {
	return nil, errStoreDown
}

// brokenAttempts fails every call.
type brokenAttempts struct{ attempts.Repository }

func (brokenAttempts) Save(context.Context, *models.LoginAttempt) (*models.LoginAttempt, error) {
	return nil, errStoreDown
}
func (brokenAttempts) FindSince(context.Context, time.Time) ([]*models.LoginAttempt, error) {
	return nil, errStoreDown
}

type fixture struct {
	manager  *fakeManager
	spy      *spyAccounts
	accounts *AccountService
	attempts *AttemptService
	auth     *AuthService
	revoked  *sessions.MemoryStore
	hasher   *security.BcryptHasher
	now      time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		SessionTokenValidityDuration: time.Hour,
		DefaultAdminPassword:         "admin123",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		spy:     &spyAccounts{Repository: accounts.NewMemoryRepository()},
		revoked: sessions.NewMemoryStore(),
		hasher:  security.NewBcryptHasher(bcrypt.MinCost),
		now:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.manager = &fakeManager{accounts: f.spy, attempts: attempts.NewMemoryRepository()}

	cfg := testConfig()
	log := logging.Nop{}
	clock := func() time.Time { return f.now }

	f.accounts = NewAccountService(f.manager, f.hasher, log, cfg)
	f.accounts.now = clock
	f.attempts = NewAttemptService(f.manager, log)
	f.attempts.now = clock
	f.auth = NewAuthService(f.accounts, f.attempts, f.hasher, f.revoked, log, cfg)
	return f
}

func (f *fixture) register(t *testing.T, username, password string, roles ...string) *models.Account {
	t.Helper()
	a, err := f.accounts.CreateAccount(context.Background(), models.NewAccount{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		FullName: "Test " + username,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return a
}

// mutate rewrites stored flags behind the service's back.
func (f *fixture) mutate(t *testing.T, id string, fn func(*models.Account)) {
	t.Helper()
	ctx := context.Background()
	a, err := f.spy.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find %s: %v", id, err)
	}
	fn(a)
	if _, err := f.spy.Repository.Save(ctx, a); err != nil {
		t.Fatalf("save %s: %v", id, err)
	}
}
