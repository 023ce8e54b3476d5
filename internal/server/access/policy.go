// Package access decides whether a request path may be served to a caller.
// The policy is an ordered table evaluated first-match; it holds no state.
package access

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
)

// Decision is the outcome of evaluating the policy.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// Unauthenticated means the path needs an identity and there is none.
	Unauthenticated
	// Forbidden means the caller is known but lacks every required role.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Rule binds path patterns to a requirement. Public rules need no identity;
// otherwise any one of Roles is enough, and no Roles means "any identity".
type Rule struct {
	Patterns []string
	Public   bool
	Roles    []string
}

// Policy is evaluated top to bottom; the first matching rule decides.
type Policy []Rule

// DefaultPolicy is the route policy of the web application.
var DefaultPolicy = Policy{
	{Public: true, Patterns: []string{
		"/", "/login", "/logout", "/register", "/register/**",
		"/css/**", "/js/**", "/images/**", "/favicon.ico", "/error",
		"/healthz", "/metrics",
	}},
	{Patterns: []string{"/admin/**"}, Roles: []string{models.RoleAdmin}},
	{Patterns: []string{"/dashboard/**", "/profile/**"}, Roles: []string{models.RoleUser, models.RoleAdmin}},
	{Patterns: []string{"/api/public/**"}, Public: true},
	{Patterns: []string{"/api/**"}, Roles: []string{models.RoleUser, models.RoleAdmin}},
	{Patterns: []string{"/**"}},
}

// Decide evaluates the policy for path. authorities are the caller's
// authority labels ("ROLE_USER"); nil means an anonymous caller.
func (p Policy) Decide(path string, authorities []string) Decision {
	for _, rule := range p {
		if !rule.matches(path) {
			continue
		}
		if rule.Public {
			return Allow
		}
		if authorities == nil {
			return Unauthenticated
		}
		if len(rule.Roles) == 0 {
			return Allow
		}
		for _, role := range rule.Roles {
			if slices.Contains(authorities, models.Authority(role)) {
				return Allow
			}
		}
		return Forbidden
	}
	// an empty or non-exhaustive policy fails closed
	if authorities == nil {
		return Unauthenticated
	}
	return Forbidden
}

// Decide evaluates DefaultPolicy.
func Decide(path string, authorities []string) Decision {
	return DefaultPolicy.Decide(path, authorities)
}

func (r Rule) matches(path string) bool {
	for _, pattern := range r.Patterns {
		if Match(pattern, path) {
			return true
		}
	}
	return false
}

// Match implements the pattern syntax of the policy: an exact path, or a
// prefix ending in "/**" that matches the prefix itself and everything
// below it.
func Match(pattern, path string) bool {
	if path == "" {
		path = "/"
	}
	prefix, ok := strings.CutSuffix(pattern, "/**")
	if !ok {
		return pattern == path
	}
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
