package client

import (
	"context"

	"github.com/dmitrijs2005/securelogin/internal/client/models"
)

// Client is the admin API as seen by the console.
type Client interface {
	Authenticate(ctx context.Context, username string, password []byte) error
	SecurityReport(ctx context.Context) (*models.Report, error)
	UnlockAccount(ctx context.Context, id string) (*models.Account, error)
	ActivateAccount(ctx context.Context, id string) (*models.Account, error)
	DeactivateAccount(ctx context.Context, id string) (*models.Account, error)
	RecentFailures(ctx context.Context, address string, hours int) ([]*models.Attempt, error)
	Logout()
	Close() error
}
