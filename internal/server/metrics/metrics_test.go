package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExported(t *testing.T) {
	before := testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("account_locked"))
	LoginAttemptsTotal.WithLabelValues("account_locked").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("account_locked")))

	AccountsCreatedTotal.Inc()
	HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `securelogin_login_attempts_total{outcome="account_locked"}`)
	assert.Contains(t, body, "securelogin_accounts_created_total")
	assert.Contains(t, body, `securelogin_http_requests_total{method="GET",route="/healthz",status="200"}`)
}
