package models

import "slices"

// Identity is the credential-verification view of an Account, built on
// demand by Account.Identity. It is never persisted.
type Identity struct {
	AccountID             string
	Username              string
	PasswordHash          string
	Authorities           []string
	Enabled               bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool
}

// Principal is an authenticated caller as carried by a session token. It is
// passed explicitly to every operation that needs to know who is asking.
type Principal struct {
	AccountID   string
	Username    string
	Authorities []string
	TokenID     string
}

// HasRole checks the principal's authorities for the given role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Authorities, Authority(role))
}
