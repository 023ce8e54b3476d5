package attempts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	attempts []models.LoginAttempt
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	saved := *attempt
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}

	r.mu.Lock()
	r.attempts = append(r.attempts, saved)
	r.mu.Unlock()

	return &saved, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) ([]*models.LoginAttempt, error) {
	return r.filter(func(a *models.LoginAttempt) bool { return a.Username == username }), nil
}

func (r *MemoryRepository) FindByUsernameAndSuccess(_ context.Context, username string, success bool) ([]*models.LoginAttempt, error) {
	return r.filter(func(a *models.LoginAttempt) bool {
		return a.Username == username && a.Success == success
	}), nil
}

func (r *MemoryRepository) FindSince(_ context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.filter(func(a *models.LoginAttempt) bool { return !a.AttemptTime.Before(since) }), nil
}

func (r *MemoryRepository) FindFailedSince(_ context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.filter(func(a *models.LoginAttempt) bool {
		return !a.Success && !a.AttemptTime.Before(since)
	}), nil
}

func (r *MemoryRepository) FindFailedByAddressSince(_ context.Context, address string, since time.Time) ([]*models.LoginAttempt, error) {
	return r.filter(func(a *models.LoginAttempt) bool {
		return a.IPAddress == address && !a.Success && !a.AttemptTime.Before(since)
	}), nil
}

func (r *MemoryRepository) filter(match func(*models.LoginAttempt) bool) []*models.LoginAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.LoginAttempt, 0)
	for i := range r.attempts {
		if match(&r.attempts[i]) {
			a := r.attempts[i]
			result = append(result, &a)
		}
	}
	slices.SortStableFunc(result, func(a, b *models.LoginAttempt) int {
		return b.AttemptTime.Compare(a.AttemptTime)
	})
	return result
}
