package http

import (
	"errors"
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/slogx"
)

// MessageResponse is the success envelope shared by all endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// TwoFactorResponse is returned by login when a second factor is required.
type TwoFactorResponse struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

const malformedBodyMessage = "Malformed request body"

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a server fault; its cause is logged but never
// echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrIncorrectCredentials):
		status, message = http.StatusUnauthorized, "Incorrect credentials"
	case errors.Is(err, domain.ErrMissingToken):
		status, message = http.StatusBadRequest, "Missing auth token"
	case errors.Is(err, domain.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "Invalid auth token"
	case errors.Is(err, domain.ErrMalformedToken):
		status, message = http.StatusUnprocessableEntity, "Malformed auth token"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status, message = http.StatusConflict, "User already exists"
	default:
		status, message = http.StatusInternalServerError, "Unexpected error"
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}

	httpx.WriteJSON(w, status, ErrorResponse{Error: message})
}

func writeMalformedBody(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: malformedBodyMessage})
}
