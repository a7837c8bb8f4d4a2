package http

import (
	"net/http"

	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/slogx"
)

// SignupHandler serves POST /signup.
type SignupHandler struct {
	AuthService *service.AuthService
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Requires2FA bool   `json:"requires2FA"`
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user with the given email and password. The password is hashed with Argon2id before storage.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest	true	"Signup payload"
//	@Success		201		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse	"Invalid email or password"
//	@Failure		409		{object}	ErrorResponse	"Email already registered"
//	@Failure		422		{object}	ErrorResponse	"Malformed request body"
//	@Router			/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		writeMalformedBody(w)
		return
	}

	if err := h.AuthService.Signup(ctx, req.Email, req.Password, req.Requires2FA); err != nil {
		writeError(w, r, err)
		return
	}

	log.Info("signup completed")
	httpx.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User created successfully!"})
}
