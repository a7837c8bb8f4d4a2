package http

import (
	"errors"
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
	"github.com/vitalstudio/auth-service/pkg/slogx"
)

// LogoutHandler serves POST /logout. The session token comes from the cookie,
// is validated, then registered in the revocation registry for the remainder
// of its lifetime. The cookie is cleared only on success.
type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		End the current session
//	@Description	Revokes the session token carried by the cookie and clears the cookie. The token stays rejected until its natural expiry.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	ErrorResponse	"No session cookie"
//	@Failure		401	{object}	ErrorResponse	"Malformed, invalid, or already-revoked token"
//	@Router			/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cookie, err := r.Cookie(jwtx.SessionCookieName)
	if err != nil {
		writeError(w, r, domain.ErrMissingToken)
		return
	}

	if err := h.SessionService.Revoke(ctx, cookie.Value); err != nil {
		// A cookie that is not even token-shaped gets the same rejection as
		// a forged or revoked one.
		if errors.Is(err, domain.ErrMalformedToken) {
			err = domain.ErrInvalidToken
		}
		writeError(w, r, err)
		return
	}

	log.Info("session revoked")
	http.SetCookie(w, jwtx.ClearSessionCookie())
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
}
