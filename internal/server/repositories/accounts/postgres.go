package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/dbx"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation        = "23505"
	usernameConstraintName = "accounts_username_key"
	emailConstraintName    = "accounts_email_key"
)

const selectAccount = `
	SELECT a.id, a.username, a.email, a.password_hash, a.full_name,
	       a.is_active, a.is_account_non_expired, a.is_account_non_locked, a.is_credentials_non_expired,
	       a.created_at, a.updated_at, a.last_login,
	       COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
	FROM accounts a
	LEFT JOIN account_roles r ON r.account_id = a.id
`

// PostgresRepository stores accounts in the accounts table and their role
// sets in account_roles. Writes touching both run in one transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, `WHERE a.id = $1`, id)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, `WHERE a.username = $1`, username)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, `WHERE a.email = $1`, email)
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]*models.Account, error) {
	return r.findMany(ctx, ``)
}

func (r *PostgresRepository) FindActive(ctx context.Context) ([]*models.Account, error) {
	return r.findMany(ctx, `WHERE a.is_active`)
}

func (r *PostgresRepository) FindByRole(ctx context.Context, role string) ([]*models.Account, error) {
	return r.findMany(ctx, `WHERE a.id IN (SELECT account_id FROM account_roles WHERE role = $1)`, role)
}

func (r *PostgresRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	insert := account.ID == ""
	saved := *account
	if insert {
		saved.ID = uuid.NewString()
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if insert {
			if err := insertAccount(ctx, tx, &saved); err != nil {
				return err
			}
		} else {
			if err := updateAccount(ctx, tx, &saved); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = $1`, saved.ID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		for _, role := range saved.Roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO account_roles (account_id, role) VALUES ($1, $2)`, saved.ID, role); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func insertAccount(ctx context.Context, tx dbx.DBTX, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_hash, full_name,
		                      is_active, is_account_non_expired, is_account_non_locked, is_credentials_non_expired,
		                      created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FullName,
		a.Active, a.AccountNonExpired, a.AccountNonLocked, a.CredentialsNonExpired,
		a.CreatedAt, a.UpdatedAt, a.LastLogin)
	return translateWriteError(err)
}

func updateAccount(ctx context.Context, tx dbx.DBTX, a *models.Account) error {
	query := `
		UPDATE accounts SET username = $2, email = $3, password_hash = $4, full_name = $5,
		       is_active = $6, is_account_non_expired = $7, is_account_non_locked = $8, is_credentials_non_expired = $9,
		       updated_at = $10, last_login = $11
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FullName,
		a.Active, a.AccountNonExpired, a.AccountNonLocked, a.CredentialsNonExpired,
		a.UpdatedAt, a.LastLogin)
	if err != nil {
		return translateWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraintName:
			return common.ErrorDuplicateUsername
		case emailConstraintName:
			return common.ErrorDuplicateEmail
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg string) (*models.Account, error) {
	query := selectAccount + where + ` GROUP BY a.id`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) findMany(ctx context.Context, where string, args ...any) ([]*models.Account, error) {
	query := selectAccount + where + ` GROUP BY a.id ORDER BY a.created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	var (
		a         models.Account
		lastLogin sql.NullTime
		roles     string
	)
	err := s.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FullName,
		&a.Active, &a.AccountNonExpired, &a.AccountNonLocked, &a.CredentialsNonExpired,
		&a.CreatedAt, &a.UpdatedAt, &lastLogin, &roles)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	if roles != "" {
		a.Roles = strings.Split(roles, ",")
	}
	return &a, nil
}
