package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securelogin/internal/server/migrations"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/attempts"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// connection pool.
type PostgresRepositoryManager struct {
	db       *sql.DB
	accounts *accounts.PostgresRepository
	attempts *attempts.PostgresRepository
}

var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newPostgresRepositoryManager(db), nil
}

func newPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:       db,
		accounts: accounts.NewPostgresRepository(db),
		attempts: attempts.NewPostgresRepository(db),
	}
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *PostgresRepositoryManager) Attempts() attempts.Repository { return m.attempts }

// RunMigrations sets up goose with the embedded migrations and runs them
// against the pool.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
