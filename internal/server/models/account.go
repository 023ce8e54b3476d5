// Package models holds the persisted and derived records of securelogin:
// accounts, login attempts and the security report.
package models

import (
	"slices"
	"strings"
	"time"
)

// Role names known to the access policy.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthorityPrefix turns a role name into an access-control label.
const AuthorityPrefix = "ROLE_"

// Account is a registered identity. The four status flags are independent:
// an account can be active and locked at the same time.
type Account struct {
	ID                    string     `bson:"_id" json:"id"`
	Username              string     `bson:"username" json:"username"`
	Email                 string     `bson:"email" json:"email"`
	PasswordHash          string     `bson:"password" json:"-"`
	FullName              string     `bson:"full_name" json:"full_name"`
	Active                bool       `bson:"is_active" json:"active"`
	AccountNonExpired     bool       `bson:"is_account_non_expired" json:"account_non_expired"`
	AccountNonLocked      bool       `bson:"is_account_non_locked" json:"account_non_locked"`
	CredentialsNonExpired bool       `bson:"is_credentials_non_expired" json:"credentials_non_expired"`
	Roles                 []string   `bson:"roles" json:"roles"`
	CreatedAt             time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `bson:"updated_at" json:"updated_at"`
	LastLogin             *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

// HasRole reports whether role is in the account's role set.
func (a *Account) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// Identity builds the authenticatable view of the account.
func (a *Account) Identity() Identity {
	authorities := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		authorities = append(authorities, Authority(r))
	}
	return Identity{
		AccountID:             a.ID,
		Username:              a.Username,
		PasswordHash:          a.PasswordHash,
		Authorities:           authorities,
		Enabled:               a.Active,
		AccountNonExpired:     a.AccountNonExpired,
		AccountNonLocked:      a.AccountNonLocked,
		CredentialsNonExpired: a.CredentialsNonExpired,
	}
}

// NewAccount is a registration candidate. Password is plaintext and never
// leaves the account service.
type NewAccount struct {
	Username string
	Email    string
	Password string
	FullName string
	Roles    []string
}

// AccountPatch carries the fields of an update; nil means "leave as is".
type AccountPatch struct {
	FullName *string
	Email    *string
	Password *string
	Roles    []string
}

// RoleSet normalises role names into a sorted set without blanks.
func RoleSet(roles ...string) []string {
	set := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" || slices.Contains(set, r) {
			continue
		}
		set = append(set, r)
	}
	slices.Sort(set)
	return set
}

// Authority maps a role to its access-control label: "ADMIN" -> "ROLE_ADMIN".
func Authority(role string) string {
	return AuthorityPrefix + role
}
