package http

import (
	"net/http"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/validation"
)

// recentLoginsShown is how many successful logins the dashboard lists.
const recentLoginsShown = 5

type dashboardResponse struct {
	User           *models.Account        `json:"user"`
	RecentLogins   []*models.LoginAttempt `json:"recent_logins"`
	SecurityReport models.SecurityReport  `json:"security_report"`
}

func (h *Handler) currentAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	p := principalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, LoginMessage(CodeUnauthorized))
		return nil, false
	}
	account, err := h.accounts.FindByID(r.Context(), p.AccountID)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return account, true
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	recent, err := h.attempts.RecentSuccessfulLogins(r.Context(), account.Username, recentLoginsShown)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	report, err := h.attempts.GenerateSecurityReport(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, dashboardResponse{
		User:           account,
		RecentLogins:   recent,
		SecurityReport: report,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, account)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	var form validation.ProfileUpdate
	if err := decodeBody(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validation.Struct(form); err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateAccount(r.Context(), account.ID, models.AccountPatch{
		FullName: form.FullName,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, updated)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	writeSuccess(w, http.StatusOK, map[string]any{
		"id":          p.AccountID,
		"username":    p.Username,
		"authorities": p.Authorities,
	})
}
