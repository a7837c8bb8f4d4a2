package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/internal/auth/store/drivers/memory"
	"github.com/vitalstudio/auth-service/pkg/cryptox"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
)

var cheapParams = cryptox.Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type capturingNotifier struct {
	mu   sync.Mutex
	last string
}

func (n *capturingNotifier) Send(_ context.Context, _ domain.Email, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = body
	return nil
}

type testServer struct {
	router   *Router
	notifier *capturingNotifier
	codes    *memory.TwoFactorStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	signer, err := jwtx.NewSigner([]byte("test-secret"), jwtx.DefaultSessionTTL)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := &service.SessionService{
		Signer: signer,
		Banned: memory.NewBannedTokenStore(),
	}
	notifier := &capturingNotifier{}
	codes := memory.NewTwoFactorStore(10 * time.Minute)

	router := NewRouter("test", nil, logger)
	router.AuthService = &service.AuthService{
		Users:          memory.NewUserStore(),
		TwoFactorCodes: codes,
		Passwords:      cryptox.NewPool(cryptox.NewHasherWithParams("", cheapParams), 0),
		Sessions:       sessions,
		Notifier:       notifier,
		Logger:         logger,
	}
	router.SessionService = sessions
	router.ApplyRoutes()

	return &testServer{router: router, notifier: notifier, codes: codes}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == jwtx.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignup(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/signup", map[string]any{
		"email":       "alice@example.com",
		"password":    "password123",
		"requires2FA": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "User created successfully!", decodeBody(t, rec)["message"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	payload := map[string]any{"email": "alice@example.com", "password": "password123"}

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/signup", payload).Code)

	rec := s.do(t, http.MethodPost, "/signup", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "User already exists", decodeBody(t, rec)["error"])
}

func TestSignupInvalidInput(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	for name, payload := range map[string]map[string]any{
		"bad email":      {"email": "not-an-email", "password": "password123"},
		"short password": {"email": "alice@example.com", "password": "short"},
	} {
		rec := s.do(t, http.MethodPost, "/signup", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
		require.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"], name)
	}
}

func TestSignupMalformedBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{"email": "alice@example.com", "password": "password123"})

	rec := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
}

func TestLoginRejections(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{"email": "alice@example.com", "password": "password123"})

	rec := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Incorrect credentials", decodeBody(t, rec)["error"])

	// Unknown account answers like malformed input.
	rec = s.do(t, http.MethodPost, "/login", map[string]any{"email": "nobody@example.com", "password": "password123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", map[string]any{"email": "not-an-email", "password": "password123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTwoFactorLoginFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{
		"email":       "alice@example.com",
		"password":    "password123",
		"requires2FA": true,
	})

	rec := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusPartialContent, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "2FA required", body["message"])
	attemptID := body["loginAttemptId"]
	require.NotEmpty(t, attemptID)

	challenge, err := s.codes.GetCode(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Contains(t, s.notifier.last, string(challenge.Code))

	rec = s.do(t, http.MethodPost, "/verify-2fa", map[string]any{
		"email":          "alice@example.com",
		"loginAttemptId": attemptID,
		"2FACode":        string(challenge.Code),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, sessionCookie(t, rec).Value)

	// The code is single use.
	rec = s.do(t, http.MethodPost, "/verify-2fa", map[string]any{
		"email":          "alice@example.com",
		"loginAttemptId": attemptID,
		"2FACode":        string(challenge.Code),
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerify2FAWrongCode(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{
		"email":       "alice@example.com",
		"password":    "password123",
		"requires2FA": true,
	})
	rec := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "password123"})
	attemptID := decodeBody(t, rec)["loginAttemptId"]

	challenge, err := s.codes.GetCode(context.Background(), "alice@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if string(challenge.Code) == wrong {
		wrong = "000001"
	}
	rec = s.do(t, http.MethodPost, "/verify-2fa", map[string]any{
		"email":          "alice@example.com",
		"loginAttemptId": attemptID,
		"2FACode":        wrong,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{"email": "alice@example.com", "password": "password123"})
	login := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "password123"})
	cookie := sessionCookie(t, login)

	rec := s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	// The revoked token fails introspection until it expires.
	rec = s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": cookie.Value})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// And cannot be used to log out twice.
	rec = s.do(t, http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithoutCookie(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing auth token", decodeBody(t, rec)["error"])
}

func TestLogoutMalformedCookie(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	// Any cookie value short of a validly signed token is a 401, whether it
	// has zero, two, or three segments.
	for _, value := range []string{"invalid", "aaa.bbb", "aaa.bbb.ccc"} {
		rec := s.do(t, http.MethodPost, "/logout", nil, &http.Cookie{Name: jwtx.SessionCookieName, Value: value})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid auth token", decodeBody(t, rec)["error"])
	}
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.do(t, http.MethodPost, "/signup", map[string]any{"email": "alice@example.com", "password": "password123"})
	login := s.do(t, http.MethodPost, "/login", map[string]any{"email": "alice@example.com", "password": "password123"})
	token := sessionCookie(t, login).Value

	rec := s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Token is valid", decodeBody(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": "not.a-real"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/verify-token", map[string]any{"token": token + "tampered"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = s.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ready HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	require.Equal(t, "ok", ready.Status)
}

func TestLoginRateLimited(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	payload := map[string]any{"email": "alice@example.com", "password": "password123"}

	var last *httptest.ResponseRecorder
	for range 6 {
		last = s.do(t, http.MethodPost, "/login", payload)
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
}
