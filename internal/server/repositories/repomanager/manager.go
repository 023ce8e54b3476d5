package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securelogin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/attempts"
)

// Store drivers accepted by Open.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// RepositoryManager owns the connection to one backing store and vends the
// credential and attempt repositories bound to it.
type RepositoryManager interface {
	Accounts() accounts.Repository
	Attempts() attempts.Repository
	// RunMigrations prepares the schema: goose migrations for PostgreSQL,
	// index creation for MongoDB. It is safe to call on every start.
	RunMigrations(ctx context.Context) error
	Close(ctx context.Context) error
}
