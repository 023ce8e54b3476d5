package models

import "time"

// LoginAttempt is one immutable audit record of a login try. Username is
// free text and need not name an existing account.
type LoginAttempt struct {
	ID            string    `bson:"_id" json:"id"`
	Username      string    `bson:"username" json:"username"`
	IPAddress     string    `bson:"ip_address" json:"ip_address"`
	Success       bool      `bson:"success" json:"success"`
	AttemptTime   time.Time `bson:"attempt_time" json:"attempt_time"`
	UserAgent     string    `bson:"user_agent" json:"user_agent"`
	FailureReason string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
}
