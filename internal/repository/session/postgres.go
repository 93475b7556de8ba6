package session

import (
	"context"
	"errors"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) (*domain.Session, error) {
	const q = `
INSERT INTO sessions (id, token, role, user_id, first_name, last_name, email, contact_number, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at
`
	if err := r.pool.QueryRow(ctx, q,
		s.ID,
		s.Token,
		string(s.Role),
		s.UserID,
		s.FirstName,
		s.LastName,
		s.Email,
		s.ContactNumber,
		s.ExpiresAt,
	).Scan(&s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	const q = `
SELECT id::text, token, role, user_id, first_name, last_name, email, contact_number, expires_at, created_at
FROM sessions
WHERE id = $1
`
	var s domain.Session
	var role string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID,
		&s.Token,
		&role,
		&s.UserID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.ContactNumber,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Role = domain.Role(role)
	return &s, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
