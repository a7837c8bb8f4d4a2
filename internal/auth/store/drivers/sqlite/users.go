package sqlite

import (
	"context"
	"database/sql"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) AddUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES (?, ?, ?)`,
		string(u.Email), u.PasswordHash, u.Requires2FA,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *usersRepo) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, password_hash, requires_2fa FROM users WHERE email = ?`,
		string(email),
	)

	var u domain.User
	if err := row.Scan(&u.Email, &u.PasswordHash, &u.Requires2FA); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}
