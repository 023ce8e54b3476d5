package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/dmitrijs2005/securelogin/internal/server/validation"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		list []*models.Account
		err  error
	)
	switch {
	case q.Get("active") == "true":
		list, err = h.accounts.FindActive(r.Context())
	case q.Has("role"):
		list, err = h.accounts.FindByRole(r.Context(), q.Get("role"))
	default:
		list, err = h.accounts.FindAll(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, account)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var form validation.AccountUpdate
	if err := decodeBody(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validation.Struct(form); err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateAccount(r.Context(), chi.URLParam(r, "id"), models.AccountPatch{
		FullName: form.FullName,
		Email:    form.Email,
		Password: form.Password,
		Roles:    form.Roles,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, updated)
}

func (h *Handler) activateUser(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accounts.ActivateAccount)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accounts.DeactivateAccount)
}

func (h *Handler) unlockUser(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accounts.UnlockAccount)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id string) (*models.Account, error)) {
	account, err := apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info(r.Context(), "account status changed",
		"path", r.URL.Path,
		"by", principalFromContext(r.Context()).Username,
	)
	writeSuccess(w, http.StatusOK, account)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := q.Get("username")
	if username == "" {
		h.fail(w, r, common.NewValidationError("username", "is required"))
		return
	}

	var (
		list []*models.LoginAttempt
		err  error
	)
	switch q.Get("success") {
	case "":
		list, err = h.attempts.AttemptsFor(r.Context(), username)
	case "true":
		list, err = h.attempts.SuccessfulAttemptsFor(r.Context(), username)
	case "false":
		list, err = h.attempts.FailedAttemptsFor(r.Context(), username)
	default:
		err = common.NewValidationError("success", "must be true or false")
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) failuresByAddress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := q.Get("address")
	if address == "" {
		h.fail(w, r, common.NewValidationError("address", "is required"))
		return
	}

	hours := int(services.ReportWindow.Hours())
	if raw := q.Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, common.NewValidationError("hours", "must be a number"))
			return
		}
		hours = n
	}

	list, err := h.attempts.RecentFailuresByAddress(r.Context(), address, hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.attempts.GenerateSecurityReport(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, report)
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, CodeInternal, "report export is not configured")
		return
	}
	key, err := h.exporter.Export(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]string{"key": key})
}
