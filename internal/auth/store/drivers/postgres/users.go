package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

type usersRepo struct {
	pool *pgxpool.Pool
}

func (r *usersRepo) AddUser(ctx context.Context, u domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)`,
		string(u.Email), u.PasswordHash, u.Requires2FA,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *usersRepo) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT email, password_hash, requires_2fa FROM users WHERE email = $1`,
		string(email),
	)

	var u domain.User
	if err := row.Scan(&u.Email, &u.PasswordHash, &u.Requires2FA); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}
