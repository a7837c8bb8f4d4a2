package jwtx

import "net/http"

// SessionCookieName is the fixed name of the session cookie.
const SessionCookieName = "jwt"

// NewSessionCookie wraps a signed token in the session cookie descriptor:
// HttpOnly, SameSite=Lax, Path=/.
func NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns a cookie that instructs the browser to drop the
// session cookie immediately.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
