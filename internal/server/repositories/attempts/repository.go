// Package attempts is the append-only store of login attempts. Every list
// query returns records most-recent-first.
package attempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error)
	FindByUsername(ctx context.Context, username string) ([]*models.LoginAttempt, error)
	FindByUsernameAndSuccess(ctx context.Context, username string, success bool) ([]*models.LoginAttempt, error)
	FindSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error)
	FindFailedSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error)
	FindFailedByAddressSince(ctx context.Context, address string, since time.Time) ([]*models.LoginAttempt, error)
}
