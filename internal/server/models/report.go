package models

import (
	"encoding/json"
	"time"
)

// SecurityReport aggregates attempts over a trailing window starting at
// ReportPeriod. SuccessfulAttempts is always TotalAttempts-FailedAttempts.
type SecurityReport struct {
	TotalAttempts      int64
	SuccessfulAttempts int64
	FailedAttempts     int64
	ReportPeriod       time.Time
}

// NewSecurityReport derives the successful count from total and failed.
func NewSecurityReport(total, failed int64, since time.Time) SecurityReport {
	return SecurityReport{
		TotalAttempts:      total,
		SuccessfulAttempts: total - failed,
		FailedAttempts:     failed,
		ReportPeriod:       since,
	}
}

// SuccessRate is a percentage of the total, 0 when there were no attempts.
func (r SecurityReport) SuccessRate() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return float64(r.SuccessfulAttempts) / float64(r.TotalAttempts) * 100
}

// FailureRate is a percentage of the total, 0 when there were no attempts.
func (r SecurityReport) FailureRate() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return float64(r.FailedAttempts) / float64(r.TotalAttempts) * 100
}

func (r SecurityReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalAttempts      int64     `json:"total_attempts"`
		SuccessfulAttempts int64     `json:"successful_attempts"`
		FailedAttempts     int64     `json:"failed_attempts"`
		SuccessRate        float64   `json:"success_rate"`
		FailureRate        float64   `json:"failure_rate"`
		ReportPeriod       time.Time `json:"report_period"`
	}{
		TotalAttempts:      r.TotalAttempts,
		SuccessfulAttempts: r.SuccessfulAttempts,
		FailedAttempts:     r.FailedAttempts,
		SuccessRate:        r.SuccessRate(),
		FailureRate:        r.FailureRate(),
		ReportPeriod:       r.ReportPeriod,
	})
}
