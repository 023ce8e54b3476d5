package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
)

// Error codes that are not login failure reasons.
const (
	CodeUnauthorized      = "unauthorized"
	CodeAccessDenied      = "access_denied"
	CodeValidationFailed  = "validation_failed"
	CodeDuplicateUsername = "duplicate_username"
	CodeDuplicateEmail    = "duplicate_email"
	CodeNotFound          = "not_found"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal_error"
)

var loginMessages = map[string]string{
	services.ReasonInvalidCredentials:  "Invalid username or password.",
	services.ReasonUserNotFound:        "User not found.",
	services.ReasonAccountExpired:      "Your account has expired. Contact the administrator.",
	services.ReasonAccountLocked:       "Your account is locked. Try again later.",
	services.ReasonAccountDisabled:     "Your account is disabled. Contact the administrator.",
	services.ReasonCredentialsExpired:  "Your credentials have expired. Change your password.",
	CodeUnauthorized:                   "You need to log in to access this page.",
	services.ReasonAuthenticationError: "Authentication error. Try again.",
}

// LoginMessage turns a login error code into the text shown to the user.
// Unknown codes get a generic message.
func LoginMessage(code string) string {
	if msg, ok := loginMessages[code]; ok {
		return msg
	}
	return "Login error. Try again."
}

// loginFailure maps an Authenticate error to a status and a login error code.
func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, services.ReasonInvalidCredentials
	case errors.Is(err, common.ErrorAccountInactive):
		return http.StatusUnauthorized, services.ReasonAccountDisabled
	case errors.Is(err, common.ErrorAccountLocked):
		return http.StatusUnauthorized, services.ReasonAccountLocked
	case errors.Is(err, common.ErrorAccountExpired):
		return http.StatusUnauthorized, services.ReasonAccountExpired
	case errors.Is(err, common.ErrorCredentialsExpired):
		return http.StatusUnauthorized, services.ReasonCredentialsExpired
	default:
		return http.StatusInternalServerError, services.ReasonAuthenticationError
	}
}

// mapError maps service errors to a response. Store and internal failures
// are reported generically; the caller logs the detail.
func mapError(err error) (int, string, string, []common.FieldError) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeValidationFailed, "validation failed", verr.Fields
	case errors.Is(err, common.ErrorDuplicateUsername):
		return http.StatusConflict, CodeDuplicateUsername, err.Error(),
			[]common.FieldError{{Field: "username", Message: err.Error()}}
	case errors.Is(err, common.ErrorDuplicateEmail):
		return http.StatusConflict, CodeDuplicateEmail, err.Error(),
			[]common.FieldError{{Field: "email", Message: err.Error()}}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, CodeNotFound, "resource not found", nil
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, LoginMessage(CodeUnauthorized), nil
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, CodeAccessDenied, "access denied", nil
	default:
		return http.StatusInternalServerError, CodeInternal, common.ErrorInternal.Error(), nil
	}
}
