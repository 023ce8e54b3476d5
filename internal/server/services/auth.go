package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/auth"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/sessions"
)

// Failure reasons stored on failed attempts. They double as the error codes
// shown on the login page.
const (
	ReasonUserNotFound        = "user_not_found"
	ReasonAccountDisabled     = "account_disabled"
	ReasonAccountLocked       = "account_locked"
	ReasonAccountExpired      = "account_expired"
	ReasonInvalidCredentials  = "invalid_credentials"
	ReasonCredentialsExpired  = "credentials_expired"
	ReasonAuthenticationError = "authentication_error"
)

// LoginRequest is one credential check together with where it came from.
type LoginRequest struct {
	Username  string
	Password  string
	Address   string
	UserAgent string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal models.Principal
}

// AuthService checks credentials, records every outcome and issues and
// revokes session tokens.
type AuthService struct {
	accounts    *AccountService
	attempts    *AttemptService
	hasher      PasswordHasher
	revocations sessions.RevocationStore
	log         logging.Logger

	jwtSecret                    []byte
	sessionTokenValidityDuration time.Duration
}

func NewAuthService(accounts *AccountService, attempts *AttemptService, hasher PasswordHasher,
	revocations sessions.RevocationStore, log logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		accounts:                     accounts,
		attempts:                     attempts,
		hasher:                       hasher,
		revocations:                  revocations,
		log:                          log.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

// Authenticate runs the credential check. The checks run in a fixed order
// (existence, active, locked, expired, password, credentials expired) and the
// outcome is recorded exactly once. A failure to record is logged and does
// not change the result.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) (*Session, error) {
	account, err := s.accounts.ResolveForAuthentication(ctx, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			s.recordFailure(ctx, req, ReasonUserNotFound)
			return nil, common.ErrorInvalidCredentials
		case errors.Is(err, common.ErrorAccountInactive):
			s.recordFailure(ctx, req, ReasonAccountDisabled)
			return nil, common.ErrorAccountInactive
		default:
			s.log.Error(ctx, "resolve account failed", "username", req.Username, "err", err)
			s.recordFailure(ctx, req, ReasonAuthenticationError)
			return nil, err
		}
	}

	id := account.Identity()

	if !id.AccountNonLocked {
		s.recordFailure(ctx, req, ReasonAccountLocked)
		return nil, common.ErrorAccountLocked
	}
	if !id.AccountNonExpired {
		s.recordFailure(ctx, req, ReasonAccountExpired)
		return nil, common.ErrorAccountExpired
	}

	ok, err := s.hasher.Matches(id.PasswordHash, req.Password)
	if err != nil {
		s.log.Error(ctx, "password comparison failed", "username", req.Username, "err", err)
		s.recordFailure(ctx, req, ReasonAuthenticationError)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !ok {
		s.recordFailure(ctx, req, ReasonInvalidCredentials)
		return nil, common.ErrorInvalidCredentials
	}

	if !id.CredentialsNonExpired {
		s.recordFailure(ctx, req, ReasonCredentialsExpired)
		return nil, common.ErrorCredentialsExpired
	}

	token, err := auth.GenerateToken(id, s.jwtSecret, s.sessionTokenValidityDuration)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "username", req.Username, "err", err)
		s.recordFailure(ctx, req, ReasonAuthenticationError)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.record(ctx, req, true, "")

	if err := s.accounts.TouchLastLogin(ctx, id.AccountID); err != nil {
		s.log.Warn(ctx, "last login not updated", "account_id", id.AccountID, "err", err)
	}

	s.log.Info(ctx, "login succeeded", "username", id.Username, "address", req.Address)

	return &Session{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		Principal: models.Principal{
			AccountID:   id.AccountID,
			Username:    id.Username,
			Authorities: id.Authorities,
			TokenID:     token.ID,
		},
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, req LoginRequest, reason string) {
	s.log.Warn(ctx, "login failed", "username", req.Username, "address", req.Address, "reason", reason)
	s.record(ctx, req, false, reason)
}

func (s *AuthService) record(ctx context.Context, req LoginRequest, success bool, reason string) {
	if _, err := s.attempts.Record(ctx, req.Username, req.Address, success, req.UserAgent, reason); err != nil {
		s.log.Error(ctx, "login attempt not recorded", "username", req.Username, "err", err)
	}
}

// Verify parses a session token and rejects revoked ones. The account is
// reloaded on every call: a session dies with its account being deactivated,
// locked, expired or removed, and the authorities follow the current roles.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Principal, error) {
	principal, _, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		s.log.Error(ctx, "revocation lookup failed", "err", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}

	account, err := s.accounts.FindByID(ctx, principal.AccountID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrInvalidToken
	case err != nil:
		return nil, err
	}
	id := account.Identity()
	if !id.Enabled || !id.AccountNonLocked || !id.AccountNonExpired {
		s.log.Info(ctx, "session of unusable account rejected", "account_id", id.AccountID)
		return nil, common.ErrInvalidToken
	}

	principal.Username = id.Username
	principal.Authorities = id.Authorities
	return principal, nil
}

// Logout revokes the token until it expires. Tokens that no longer verify
// have nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	principal, expires, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, principal.TokenID, expires); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
	}
	s.log.Info(ctx, "logged out", "username", principal.Username)
	return nil
}
