// Package models holds the console's view of admin API responses.
package models

import "time"

type Account struct {
	ID                    string
	Username              string
	Email                 string
	FullName              string
	Active                bool
	AccountNonLocked      bool
	AccountNonExpired     bool
	CredentialsNonExpired bool
	Roles                 []string
}

type Report struct {
	TotalAttempts      int64
	SuccessfulAttempts int64
	FailedAttempts     int64
	SuccessRate        float64
	FailureRate        float64
	ReportPeriod       time.Time
}

type Attempt struct {
	Username      string
	IPAddress     string
	AttemptTime   time.Time
	UserAgent     string
	FailureReason string
}
