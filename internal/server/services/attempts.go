package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/metrics"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/repomanager"
)

// ReportWindow is the trailing window covered by a security report.
const ReportWindow = 24 * time.Hour

// MaxHoursBack caps the look-back of RecentFailuresByAddress at ten years.
const MaxHoursBack = 10 * 365 * 24

// OutcomeSuccess labels successful attempts in metrics.
const OutcomeSuccess = "success"

// AttemptService appends login attempts to the audit trail and aggregates
// them.
type AttemptService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewAttemptService(m repomanager.RepositoryManager, log logging.Logger) *AttemptService {
	return &AttemptService{
		repomanager: m,
		log:         log.With("module", "attempts"),
		now:         time.Now,
	}
}

// Record appends one attempt stamped with the current time. Only store
// errors are returned; callers in the middle of a login decide what to do
// with them.
func (s *AttemptService) Record(ctx context.Context, username, address string, success bool, userAgent, failureReason string) (*models.LoginAttempt, error) {
	outcome := OutcomeSuccess
	if !success {
		outcome = failureReason
		if outcome == "" {
			outcome = "failure"
		}
	}
	metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()

	saved, err := s.repomanager.Attempts().Save(ctx, &models.LoginAttempt{
		Username:      username,
		IPAddress:     address,
		Success:       success,
		AttemptTime:   s.now(),
		UserAgent:     userAgent,
		FailureReason: failureReason,
	})
	if err != nil {
		return nil, storeError(err)
	}
	s.log.Debug(ctx, "login attempt recorded", "username", username, "address", address, "outcome", outcome)
	return saved, nil
}

// AttemptsFor lists every attempt for username, most recent first.
func (s *AttemptService) AttemptsFor(ctx context.Context, username string) ([]*models.LoginAttempt, error) {
	list, err := s.repomanager.Attempts().FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

func (s *AttemptService) SuccessfulAttemptsFor(ctx context.Context, username string) ([]*models.LoginAttempt, error) {
	return s.bySuccess(ctx, username, true)
}

func (s *AttemptService) FailedAttemptsFor(ctx context.Context, username string) ([]*models.LoginAttempt, error) {
	return s.bySuccess(ctx, username, false)
}

// RecentSuccessfulLogins returns at most limit successful attempts.
func (s *AttemptService) RecentSuccessfulLogins(ctx context.Context, username string, limit int) ([]*models.LoginAttempt, error) {
	list, err := s.bySuccess(ctx, username, true)
	if err != nil {
		return nil, err
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *AttemptService) bySuccess(ctx context.Context, username string, success bool) ([]*models.LoginAttempt, error) {
	list, err := s.repomanager.Attempts().FindByUsernameAndSuccess(ctx, username, success)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// RecentFailuresByAddress lists failed attempts from address within the last
// hoursBack hours, most recent first.
func (s *AttemptService) RecentFailuresByAddress(ctx context.Context, address string, hoursBack int) ([]*models.LoginAttempt, error) {
	if hoursBack <= 0 || hoursBack > MaxHoursBack {
		return nil, common.NewValidationError("hours", fmt.Sprintf("must be between 1 and %d", MaxHoursBack))
	}
	since := s.now().Add(-time.Duration(hoursBack) * time.Hour)
	list, err := s.repomanager.Attempts().FindFailedByAddressSince(ctx, address, since)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// GenerateSecurityReport counts the attempts of the last 24 hours. The two
// window queries are not taken from one snapshot, so under concurrent logins
// the counts may be off by the attempts recorded in between. The failed
// count is never allowed to exceed the total.
func (s *AttemptService) GenerateSecurityReport(ctx context.Context) (models.SecurityReport, error) {
	since := s.now().Add(-ReportWindow)
	repo := s.repomanager.Attempts()

	all, err := repo.FindSince(ctx, since)
	if err != nil {
		return models.SecurityReport{}, storeError(err)
	}
	failed, err := repo.FindFailedSince(ctx, since)
	if err != nil {
		return models.SecurityReport{}, storeError(err)
	}

	total, failedCount := int64(len(all)), int64(len(failed))
	if failedCount > total {
		total = failedCount
	}
	return models.NewSecurityReport(total, failedCount, since), nil
}
