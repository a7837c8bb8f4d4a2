// Package service implements the authentication flows on top of the domain
// types and store contracts. Handlers translate these results to HTTP;
// nothing in here knows about requests or responses.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
	"github.com/vitalstudio/auth-service/internal/auth/notify"
	"github.com/vitalstudio/auth-service/internal/auth/store"
	"github.com/vitalstudio/auth-service/pkg/cryptox"
)

const (
	twoFactorSubject  = "2FA Code"
	twoFactorBodyTmpl = "Your 2FA code is: %s"
)

// LoginResult is the outcome of a successful password check. Either Token is
// set, or TwoFactorRequired is true and AttemptID identifies the pending
// challenge.
type LoginResult struct {
	Token             string
	TwoFactorRequired bool
	AttemptID         domain.LoginAttemptID
}

type AuthService struct {
	Users          store.Users
	TwoFactorCodes store.TwoFactorCodes
	Passwords      *cryptox.Pool
	Sessions       *SessionService
	Notifier       notify.Notifier
	Logger         *slog.Logger

	// Overridable for deterministic tests.
	NewAttemptID func() domain.LoginAttemptID
	NewCode      func() (domain.TwoFactorCode, error)
}

func (s *AuthService) attemptID() domain.LoginAttemptID {
	if s.NewAttemptID != nil {
		return s.NewAttemptID()
	}
	return domain.NewLoginAttemptID()
}

func (s *AuthService) code() (domain.TwoFactorCode, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return domain.NewTwoFactorCode()
}

// Signup registers a new account. The password is hashed before the user
// record ever exists, so a failed hash leaves no trace.
func (s *AuthService) Signup(ctx context.Context, email, password string, requires2FA bool) error {
	parsedEmail, err := domain.ParseEmail(email)
	if err != nil {
		return err
	}
	parsedPassword, err := domain.ParsePassword(password)
	if err != nil {
		return err
	}

	hash, err := s.Passwords.Hash(ctx, string(parsedPassword))
	if err != nil {
		return fmt.Errorf("%w: hash password: %w", domain.ErrUnexpected, err)
	}

	err = s.Users.AddUser(ctx, domain.User{
		Email:        parsedEmail,
		PasswordHash: hash,
		Requires2FA:  requires2FA,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("%w: add user: %w", domain.ErrUnexpected, err)
	}

	s.Logger.InfoContext(ctx, "user registered", slog.Bool("requires_2fa", requires2FA))
	return nil
}

// Login checks the password and either mints a session token or, for
// accounts with 2FA enabled, stores a fresh challenge and emails the code.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	parsedEmail, err := domain.ParseEmail(email)
	if err != nil {
		return LoginResult{}, err
	}
	parsedPassword, err := domain.ParsePassword(password)
	if err != nil {
		return LoginResult{}, err
	}

	// Unknown accounts are reported exactly like malformed input so login
	// cannot be used to probe for registered emails.
	user, err := s.Users.GetUser(ctx, parsedEmail)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: get user: %w", domain.ErrUnexpected, err)
	}

	err = s.Passwords.Verify(ctx, string(parsedPassword), user.PasswordHash)
	if errors.Is(err, cryptox.ErrMismatch) {
		return LoginResult{}, domain.ErrIncorrectCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: verify password: %w", domain.ErrUnexpected, err)
	}

	if user.Requires2FA {
		return s.startTwoFactor(ctx, parsedEmail)
	}

	token, err := s.Sessions.Generate(ctx, parsedEmail)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token}, nil
}

// startTwoFactor stores a fresh challenge before the code is sent. The write
// happens first so a delivered code is always verifiable; an undelivered code
// simply expires.
func (s *AuthService) startTwoFactor(ctx context.Context, email domain.Email) (LoginResult, error) {
	attemptID := s.attemptID()
	code, err := s.code()
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: generate code: %w", domain.ErrUnexpected, err)
	}

	challenge := domain.TwoFactorChallenge{AttemptID: attemptID, Code: code}
	if err := s.TwoFactorCodes.AddCode(ctx, email, challenge); err != nil {
		return LoginResult{}, fmt.Errorf("%w: store challenge: %w", domain.ErrUnexpected, err)
	}

	body := fmt.Sprintf(twoFactorBodyTmpl, code)
	if err := s.Notifier.Send(ctx, email, twoFactorSubject, body); err != nil {
		return LoginResult{}, fmt.Errorf("%w: send code: %w", domain.ErrUnexpected, err)
	}

	s.Logger.InfoContext(ctx, "two-factor challenge issued")
	return LoginResult{TwoFactorRequired: true, AttemptID: attemptID}, nil
}

// Verify2FA consumes the pending challenge and mints a session token. The
// consume is atomic, so a code can only ever log in once.
func (s *AuthService) Verify2FA(ctx context.Context, email, attemptID, code string) (string, error) {
	parsedEmail, err := domain.ParseEmail(email)
	if err != nil {
		return "", err
	}
	parsedAttemptID, err := domain.ParseLoginAttemptID(attemptID)
	if err != nil {
		return "", err
	}
	parsedCode, err := domain.ParseTwoFactorCode(code)
	if err != nil {
		return "", err
	}

	challenge := domain.TwoFactorChallenge{AttemptID: parsedAttemptID, Code: parsedCode}
	err = s.TwoFactorCodes.ConsumeCode(ctx, parsedEmail, challenge)
	if errors.Is(err, store.ErrNotFound) {
		return "", domain.ErrIncorrectCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%w: consume challenge: %w", domain.ErrUnexpected, err)
	}

	return s.Sessions.Generate(ctx, parsedEmail)
}
