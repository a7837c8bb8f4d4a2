package domain

// User is an account record keyed by email. Users are created at signup and
// immutable afterwards; the password hash is produced exclusively by the
// password hasher and is opaque to everything else.
type User struct {
	Email        Email
	PasswordHash string // argon2id PHC blob
	Requires2FA  bool
}
