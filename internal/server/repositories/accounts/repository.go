// Package accounts is the credential store: persistence of Account records.
//
// Implementations report absence with common.ErrorNotFound and unique-key
// collisions with common.ErrorDuplicateUsername / common.ErrorDuplicateEmail.
// Every other failure is a wrapped driver error.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]*models.Account, error)
	FindActive(ctx context.Context) ([]*models.Account, error)
	FindByRole(ctx context.Context, role string) ([]*models.Account, error)
	// Save inserts the account when its ID is empty (assigning one) and
	// replaces the stored record otherwise.
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
}
