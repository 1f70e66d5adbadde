package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"formbox/internal/model"
	"formbox/internal/service"
	"formbox/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, resp model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, model.APIResponse{Success: false, Message: message, Errors: errs})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors become a generic failure envelope; their text is
// carried only in the errors list, never as the primary message.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeFailure(w, http.StatusBadRequest, verr.Message)
		return
	}

	var rerr *service.RateLimitError
	if errors.As(err, &rerr) {
		writeFailure(w, http.StatusTooManyRequests, rerr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		writeFailure(w, http.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrDraftNotFound):
		writeFailure(w, http.StatusNotFound, "draft not found")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// clientIP extracts the originating address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
