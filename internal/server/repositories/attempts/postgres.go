package attempts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
)

const selectAttempt = `
	SELECT id, username, ip_address, success, attempt_time, user_agent, failure_reason
	FROM login_attempts
`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	saved := *attempt
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}

	query := `
		INSERT INTO login_attempts (id, username, ip_address, success, attempt_time, user_agent, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.Username, saved.IPAddress, saved.Success, saved.AttemptTime,
		saved.UserAgent, saved.FailureReason)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, `WHERE username = $1`, username)
}

func (r *PostgresRepository) FindByUsernameAndSuccess(ctx context.Context, username string, success bool) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, `WHERE username = $1 AND success = $2`, username, success)
}

func (r *PostgresRepository) FindSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, `WHERE attempt_time >= $1`, since)
}

func (r *PostgresRepository) FindFailedSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, `WHERE NOT success AND attempt_time >= $1`, since)
}

func (r *PostgresRepository) FindFailedByAddressSince(ctx context.Context, address string, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, `WHERE ip_address = $1 AND NOT success AND attempt_time >= $2`, address, since)
}

func (r *PostgresRepository) findMany(ctx context.Context, where string, args ...any) ([]*models.LoginAttempt, error) {
	query := selectAttempt + where + ` ORDER BY attempt_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		var a models.LoginAttempt
		if err := rows.Scan(&a.ID, &a.Username, &a.IPAddress, &a.Success, &a.AttemptTime,
			&a.UserAgent, &a.FailureReason); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
