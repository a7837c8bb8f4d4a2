package http

import (
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
)

// VerifyTokenHandler serves POST /verify-token, the introspection endpoint
// other services call to check a session token they received.
type VerifyTokenHandler struct {
	SessionService *service.SessionService
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

// ServeHTTP godoc
//
//	@Summary		Check a session token
//	@Description	Validates structure, revocation status, signature, and expiry of the given token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyTokenRequest	true	"Token payload"
//	@Success		200		{object}	MessageResponse	"Token is valid"
//	@Failure		400		{object}	ErrorResponse	"Empty token"
//	@Failure		401		{object}	ErrorResponse	"Revoked, expired, or forged token"
//	@Failure		422		{object}	ErrorResponse	"Structurally invalid token"
//	@Router			/verify-token [post].
func (h *VerifyTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyTokenRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		writeMalformedBody(w)
		return
	}

	if req.Token == "" {
		writeError(w, r, domain.ErrMissingToken)
		return
	}

	if _, err := h.SessionService.Validate(ctx, req.Token); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Token is valid"})
}
