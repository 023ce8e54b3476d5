// Package services contains server-side business logic: the account
// lifecycle, the login-attempt audit trail, the credential check that ties
// them together, and the export of security reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/metrics"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/repomanager"
)

// Bootstrap admin account. Its password comes from config and is meant to be
// changed right after the first start.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@securelogin.com"
	DefaultAdminFullName = "System Administrator"
)

// MaxPasswordBytes is the longest secret bcrypt will hash.
const MaxPasswordBytes = 72

func checkPassword(plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return common.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// PasswordHasher is the one-way secret hashing collaborator. Plaintext is
// never compared directly.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Matches(hash, plaintext string) (bool, error)
}

// AccountService owns the account lifecycle and resolves accounts for
// authentication.
type AccountService struct {
	repomanager   repomanager.RepositoryManager
	hasher        PasswordHasher
	log           logging.Logger
	adminPassword string
	now           func() time.Time
}

func NewAccountService(m repomanager.RepositoryManager, hasher PasswordHasher, log logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		repomanager:   m,
		hasher:        hasher,
		log:           log.With("module", "accounts"),
		adminPassword: cfg.DefaultAdminPassword,
		now:           time.Now,
	}
}

// storeError keeps typed repository failures and marks anything else as a
// store outage.
func storeError(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorDuplicateUsername),
		errors.Is(err, common.ErrorDuplicateEmail):
		return err
	default:
		return fmt.Errorf("%w: %w", common.ErrorStoreUnavailable, err)
	}
}

// ResolveForAuthentication returns the full account for username. It fails
// with ErrorNotFound when there is none and ErrorAccountInactive when the
// account is disabled. The password is not checked here.
func (s *AccountService) ResolveForAuthentication(ctx context.Context, username string) (*models.Account, error) {
	a, err := s.repomanager.Accounts().FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err)
	}
	if !a.Active {
		return nil, common.ErrorAccountInactive
	}
	return a, nil
}

// CreateAccount registers a new account. Uniqueness is checked before any
// write; an empty role set becomes {USER}.
func (s *AccountService) CreateAccount(ctx context.Context, candidate models.NewAccount) (*models.Account, error) {
	if err := checkPassword(candidate.Password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts()

	taken, err := repo.ExistsByUsername(ctx, candidate.Username)
	if err != nil {
		return nil, storeError(err)
	}
	if taken {
		return nil, common.ErrorDuplicateUsername
	}

	taken, err = repo.ExistsByEmail(ctx, candidate.Email)
	if err != nil {
		return nil, storeError(err)
	}
	if taken {
		return nil, common.ErrorDuplicateEmail
	}

	roles := models.RoleSet(candidate.Roles...)
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}

	hash, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	now := s.now()
	saved, err := repo.Save(ctx, &models.Account{
		Username:              candidate.Username,
		Email:                 candidate.Email,
		PasswordHash:          hash,
		FullName:              candidate.FullName,
		Active:                true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		Roles:                 roles,
		CreatedAt:             now,
		UpdatedAt:             now,
	})
	if err != nil {
		return nil, storeError(err)
	}

	metrics.AccountsCreatedTotal.Inc()
	s.log.Info(ctx, "account created", "account_id", saved.ID, "username", saved.Username, "roles", saved.Roles)
	return saved, nil
}

// UpdateAccount applies the non-nil fields of patch. A new email must not
// belong to another account; an empty password leaves the hash untouched.
// Concurrent updates are not versioned: the last write wins.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	if patch.Password != nil {
		if err := checkPassword(*patch.Password); err != nil {
			return nil, err
		}
	}

	repo := s.repomanager.Accounts()

	a, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if patch.FullName != nil {
		a.FullName = *patch.FullName
	}

	if patch.Email != nil && *patch.Email != a.Email {
		other, err := repo.FindByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != a.ID:
			return nil, common.ErrorDuplicateEmail
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return nil, storeError(err)
		}
		a.Email = *patch.Email
	}

	if patch.Password != nil && *patch.Password != "" {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
		}
		a.PasswordHash = hash
	}

	if patch.Roles != nil {
		roles := models.RoleSet(patch.Roles...)
		if len(roles) == 0 {
			return nil, common.NewValidationError("roles", "at least one role is required")
		}
		a.Roles = roles
	}

	a.UpdatedAt = s.now()

	saved, err := repo.Save(ctx, a)
	if err != nil {
		return nil, storeError(err)
	}
	s.log.Info(ctx, "account updated", "account_id", saved.ID)
	return saved, nil
}

func (s *AccountService) ActivateAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.transition(ctx, id, "account activated", func(a *models.Account) { a.Active = true })
}

func (s *AccountService) DeactivateAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.transition(ctx, id, "account deactivated", func(a *models.Account) { a.Active = false })
}

func (s *AccountService) UnlockAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.transition(ctx, id, "account unlocked", func(a *models.Account) { a.AccountNonLocked = true })
}

func (s *AccountService) transition(ctx context.Context, id, msg string, apply func(*models.Account)) (*models.Account, error) {
	repo := s.repomanager.Accounts()

	a, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	apply(a)
	a.UpdatedAt = s.now()

	saved, err := repo.Save(ctx, a)
	if err != nil {
		return nil, storeError(err)
	}
	s.log.Info(ctx, msg, "account_id", id)
	return saved, nil
}

// HasRole is false for unknown usernames.
func (s *AccountService) HasRole(ctx context.Context, username, role string) bool {
	a, err := s.repomanager.Accounts().FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "role lookup failed", "username", username, "err", err)
		}
		return false
	}
	return a.HasRole(role)
}

// EnsureDefaultAdmin creates the bootstrap admin account unless an account
// named "admin" exists. It reports whether an account was created.
func (s *AccountService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	exists, err := s.repomanager.Accounts().ExistsByUsername(ctx, DefaultAdminUsername)
	if err != nil {
		return false, storeError(err)
	}
	if exists {
		return false, nil
	}

	_, err = s.CreateAccount(ctx, models.NewAccount{
		Username: DefaultAdminUsername,
		Email:    DefaultAdminEmail,
		Password: s.adminPassword,
		FullName: DefaultAdminFullName,
		Roles:    []string{models.RoleAdmin, models.RoleUser},
	})
	if err != nil {
		return false, err
	}
	s.log.Warn(ctx, "default admin account created; change its password", "username", DefaultAdminUsername)
	return true, nil
}

// TouchLastLogin stamps the account's last successful login.
func (s *AccountService) TouchLastLogin(ctx context.Context, id string) error {
	repo := s.repomanager.Accounts()

	a, err := repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	now := s.now()
	a.LastLogin = &now
	if _, err := repo.Save(ctx, a); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *AccountService) FindByID(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.repomanager.Accounts().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return a, nil
}

func (s *AccountService) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	a, err := s.repomanager.Accounts().FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err)
	}
	return a, nil
}

func (s *AccountService) FindAll(ctx context.Context) ([]*models.Account, error) {
	list, err := s.repomanager.Accounts().FindAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

func (s *AccountService) FindActive(ctx context.Context) ([]*models.Account, error) {
	list, err := s.repomanager.Accounts().FindActive(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

func (s *AccountService) FindByRole(ctx context.Context, role string) ([]*models.Account, error) {
	roles := models.RoleSet(role)
	if len(roles) == 0 {
		return nil, common.NewValidationError("role", "role is required")
	}
	list, err := s.repomanager.Accounts().FindByRole(ctx, roles[0])
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}
