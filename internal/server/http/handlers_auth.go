package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/dmitrijs2005/securelogin/internal/server/validation"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if principalFromContext(r.Context()) != nil {
		writeSuccess(w, http.StatusOK, map[string]string{"redirect": "/dashboard"})
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

// loginPage resolves the query flags a browser lands with after a login
// round-trip into a user-facing message.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if principalFromContext(r.Context()) != nil {
		writeSuccess(w, http.StatusOK, map[string]string{"redirect": "/dashboard"})
		return
	}

	q := r.URL.Query()
	resp := map[string]string{}
	if q.Has("error") {
		resp["error_message"] = LoginMessage(q.Get("error"))
	}
	if q.Has("logout") {
		resp["success_message"] = "You have been logged out."
	}
	if q.Has("expired") {
		resp["error_message"] = "Your session has expired. Log in again."
	}
	writeSuccess(w, http.StatusOK, resp)
}

// readCredentials accepts both a JSON body and a classic login form.
func readCredentials(r *http.Request) (loginRequest, error) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, common.NewValidationError("body", "malformed form")
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, nil
	}
	err := decodeBody(r, &req)
	return req, err
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "validation failed",
			common.FieldError{Field: "username", Message: "username and password are required"})
		return
	}

	session, err := h.auth.Authenticate(r.Context(), services.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		Address:   h.clientAddress(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		status, code := loginFailure(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "login failed", "request_id", requestIDFromContext(r.Context()), "err", err)
		}
		writeError(w, status, code, LoginMessage(code))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	roles := make([]string, 0, len(session.Principal.Authorities))
	for _, a := range session.Principal.Authorities {
		roles = append(roles, strings.TrimPrefix(a, models.AuthorityPrefix))
	}
	writeSuccess(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Username:  session.Principal.Username,
		Roles:     roles,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	if token == "" {
		token = sessionToken(r)
	}
	if token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "You have been logged out.")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form validation.Registration
	if err := decodeBody(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validation.ValidateRegistration(form); err != nil {
		h.log.Warn(r.Context(), "registration rejected", "err", err)
		h.fail(w, r, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), models.NewAccount{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Roles:    []string{models.RoleUser},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info(r.Context(), "account registered", "username", account.Username)
	writeSuccess(w, http.StatusCreated, account)
}

func (h *Handler) errorPage(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred. Try again later.")
}

func (h *Handler) accessDenied(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "You do not have permission to access this resource."}
	if p := principalFromContext(r.Context()); p != nil {
		resp["username"] = p.Username
	}
	writeJSON(w, http.StatusForbidden, map[string]any{
		"status": "error",
		"code":   CodeAccessDenied,
		"data":   resp,
	})
}
