package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/ledger"
)

// apiError is the JSON error envelope. Retryable marks failures the
// client may resolve by trying again, as opposed to bad credentials
// or bad input.
type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeAPIError(w http.ResponseWriter, status int, code, message string, retryable bool) {
	s.writeJSON(w, status, errorEnvelope{Error: apiError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}})
}

// writeError maps domain errors onto HTTP statuses. Expired and
// invalid credentials are the caller's problem; upstream failures are
// retryable.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		s.writeAPIError(w, http.StatusUnauthorized, "token_expired", "session expired, sign in again", false)
	case errors.Is(err, auth.ErrInvalidToken):
		s.writeAPIError(w, http.StatusUnauthorized, "invalid_token", "credentials are missing or malformed", false)
	default:
		var fetchErr *ledger.FetchError
		if errors.As(err, &fetchErr) {
			s.logger.ErrorContext(r.Context(), "Upstream ledger error",
				"error", err,
				"upstream_status", fetchErr.Status,
				"path", r.URL.Path)
			s.writeAPIError(w, http.StatusBadGateway, "upstream_error", "ledger service unavailable", true)
			return
		}
		s.logger.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		s.writeAPIError(w, http.StatusInternalServerError, "internal_error", "internal server error", false)
	}
}
