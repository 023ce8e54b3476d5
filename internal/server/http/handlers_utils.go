package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/securelogin/internal/common"
)

const maxBodyBytes = 1 << 20

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("body", "request body is empty")
		}
		return common.NewValidationError("body", fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

// fail logs unexpected errors and writes the mapped response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, fields := mapError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeError(w, status, code, message, fields...)
}
