package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securelogin/internal/server/security"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/dmitrijs2005/securelogin/internal/server/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  string              `json:"status"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []common.FieldError `json:"fields"`
	Data    json.RawMessage     `json:"data"`
}

type fakeExporter struct {
	key string
	err error
}

func (f *fakeExporter) Export(context.Context) (string, error) { return f.key, f.err }

type testServer struct {
	router   http.Handler
	handler  *Handler
	manager  *repomanager.MemoryRepositoryManager
	accounts *services.AccountService
	exporter *fakeExporter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                    "http-test-secret",
		SessionTokenValidityDuration: time.Hour,
		DefaultAdminPassword:         "admin123",
	}
	log := logging.Nop{}
	manager := repomanager.NewMemoryRepositoryManager()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	accounts := services.NewAccountService(manager, hasher, log, cfg)
	attempts := services.NewAttemptService(manager, log)
	auth := services.NewAuthService(accounts, attempts, hasher, sessions.NewMemoryStore(), log, cfg)
	exporter := &fakeExporter{key: "reports/2026/06/01/x.json"}

	h := NewHandler(accounts, attempts, auth, exporter, nil, log)
	return &testServer{
		router:   NewRouter(h),
		handler:  h,
		manager:  manager,
		accounts: accounts,
		exporter: exporter,
	}
}

func (s *testServer) createAccount(t *testing.T, username, password string, roles ...string) *models.Account {
	t.Helper()
	a, err := s.accounts.CreateAccount(context.Background(), models.NewAccount{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		FullName: "Test " + username,
		Roles:    roles,
	})
	require.NoError(t, err)
	return a
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(t *testing.T, method, path string, body any, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.Token
}
