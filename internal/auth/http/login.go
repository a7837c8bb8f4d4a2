package http

import (
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
)

// LoginHandler serves POST /login. A successful password check either sets
// the session cookie immediately or, for 2FA accounts, answers 206 with the
// attempt ID the client must echo back to /verify-2fa.
type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Authenticate with email and password
//	@Description	Verifies the credentials. Without 2FA the session cookie is set directly; with 2FA a challenge code is emailed and 206 is returned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Login payload"
//	@Success		200		{object}	MessageResponse		"Session cookie set"
//	@Success		206		{object}	TwoFactorResponse	"Second factor required"
//	@Failure		400		{object}	ErrorResponse		"Malformed input or unknown account"
//	@Failure		401		{object}	ErrorResponse		"Wrong password"
//	@Failure		422		{object}	ErrorResponse		"Malformed request body"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		writeMalformedBody(w)
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.TwoFactorRequired {
		httpx.WriteJSON(w, http.StatusPartialContent, TwoFactorResponse{
			Message:        "2FA required",
			LoginAttemptID: string(result.AttemptID),
		})
		return
	}

	http.SetCookie(w, jwtx.NewSessionCookie(result.Token))
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
}
