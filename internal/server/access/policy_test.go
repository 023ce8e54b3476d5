package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = []string(nil)
	user      = []string{"ROLE_USER"}
	admin     = []string{"ROLE_ADMIN", "ROLE_USER"}
	adminOnly = []string{"ROLE_ADMIN"}
	auditor   = []string{"ROLE_AUDITOR"}
)

func TestDecide_DefaultPolicy(t *testing.T) {
	tests := []struct {
		path        string
		authorities []string
		want        Decision
	}{
		{"/", anonymous, Allow},
		{"/login", anonymous, Allow},
		{"/register", anonymous, Allow},
		{"/register/confirm", anonymous, Allow},
		{"/css/app.css", anonymous, Allow},
		{"/js/script.js", anonymous, Allow},
		{"/images/logo.png", anonymous, Allow},
		{"/favicon.ico", anonymous, Allow},
		{"/error", anonymous, Allow},

		{"/admin", anonymous, Unauthenticated},
		{"/admin/users", user, Forbidden},
		{"/admin/users", adminOnly, Allow},
		{"/administrator", user, Allow},

		{"/dashboard", anonymous, Unauthenticated},
		{"/dashboard", user, Allow},
		{"/dashboard/profile", adminOnly, Allow},
		{"/profile", auditor, Forbidden},

		{"/api/public/status", anonymous, Allow},
		{"/api/reports", anonymous, Unauthenticated},
		{"/api/reports", user, Allow},
		{"/api/reports", auditor, Forbidden},

		{"/access-denied", anonymous, Unauthenticated},
		{"/access-denied", auditor, Allow},
		{"/anything/else", admin, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.path, tt.authorities), "authorities=%v", tt.authorities)
		})
	}
}

func TestDecide_FirstMatchWins(t *testing.T) {
	p := Policy{
		{Patterns: []string{"/reports/public"}, Public: true},
		{Patterns: []string{"/reports/**"}, Roles: []string{"ADMIN"}},
	}

	assert.Equal(t, Allow, p.Decide("/reports/public", nil))
	assert.Equal(t, Unauthenticated, p.Decide("/reports/daily", nil))
	assert.Equal(t, Forbidden, p.Decide("/reports/daily", user))
}

func TestDecide_NoMatchFailsClosed(t *testing.T) {
	p := Policy{{Patterns: []string{"/only"}, Public: true}}

	assert.Equal(t, Unauthenticated, p.Decide("/other", nil))
	assert.Equal(t, Forbidden, p.Decide("/other", admin))
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("/", ""))
	assert.True(t, Match("/admin/**", "/admin"))
	assert.True(t, Match("/admin/**", "/admin/users/1"))
	assert.False(t, Match("/admin/**", "/adminx"))
	assert.True(t, Match("/**", "/whatever"))
	assert.False(t, Match("/login", "/login/extra"))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
