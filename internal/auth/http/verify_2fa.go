package http

import (
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
)

// Verify2FAHandler serves POST /verify-2fa, the second half of a 2FA login.
type Verify2FAHandler struct {
	AuthService *service.AuthService
}

type verify2FARequest struct {
	Email          string `json:"email"`
	LoginAttemptID string `json:"loginAttemptId"`
	TwoFACode      string `json:"2FACode"`
}

// ServeHTTP godoc
//
//	@Summary		Complete a two-factor login
//	@Description	Consumes the emailed code for the given login attempt and sets the session cookie. Codes are single use; a second attempt with the same code fails.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verify2FARequest	true	"Verification payload"
//	@Success		200		{object}	MessageResponse	"Session cookie set"
//	@Failure		400		{object}	ErrorResponse	"Invalid email"
//	@Failure		401		{object}	ErrorResponse	"Wrong, expired, or already-used code"
//	@Failure		422		{object}	ErrorResponse	"Malformed request body"
//	@Router			/verify-2fa [post].
func (h *Verify2FAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verify2FARequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		writeMalformedBody(w)
		return
	}

	token, err := h.AuthService.Verify2FA(ctx, req.Email, req.LoginAttemptID, req.TwoFACode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, jwtx.NewSessionCookie(token))
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
}
