package accounts

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It enforces the same
// uniqueness rules as the database-backed stores and never hands out
// pointers into its own state.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	order    []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*models.Account)}
}

func clone(a *models.Account) *models.Account {
	c := *a
	c.Roles = slices.Clone(a.Roles)
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	return r.first(func(a *models.Account) bool { return a.Username == username })
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.first(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *MemoryRepository) FindAll(context.Context) ([]*models.Account, error) {
	return r.filter(func(*models.Account) bool { return true }), nil
}

func (r *MemoryRepository) FindActive(context.Context) ([]*models.Account, error) {
	return r.filter(func(a *models.Account) bool { return a.Active }), nil
}

func (r *MemoryRepository) FindByRole(_ context.Context, role string) ([]*models.Account, error) {
	return r.filter(func(a *models.Account) bool { return a.HasRole(role) }), nil
}

func (r *MemoryRepository) Save(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := clone(account)
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	} else if _, ok := r.accounts[saved.ID]; !ok {
		return nil, common.ErrorNotFound
	}

	for id, other := range r.accounts {
		if id == saved.ID {
			continue
		}
		if other.Username == saved.Username {
			return nil, common.ErrorDuplicateUsername
		}
		if other.Email == saved.Email {
			return nil, common.ErrorDuplicateEmail
		}
	}

	if _, ok := r.accounts[saved.ID]; !ok {
		r.order = append(r.order, saved.ID)
	}
	r.accounts[saved.ID] = saved
	return clone(saved), nil
}

func (r *MemoryRepository) first(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if a := r.accounts[id]; match(a) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) filter(match func(*models.Account) bool) []*models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Account, 0)
	for _, id := range r.order {
		if a := r.accounts[id]; match(a) {
			result = append(result, clone(a))
		}
	}
	return result
}
