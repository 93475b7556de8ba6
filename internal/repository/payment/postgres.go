package payment

import (
	"context"

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

func (r *postgresRepo) Create(ctx context.Context, a domain.PaymentAttempt) (*domain.PaymentAttempt, error) {
	const q = `
INSERT INTO payment_attempts (id, session_id, user_id, order_ids, ewallet_type, status)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)
RETURNING created_at, updated_at
`
	if err := r.pool.QueryRow(ctx, q,
		a.ID,
		a.SessionID,
		a.UserID,
		a.OrderIDs,
		string(a.EWalletType),
		string(a.Status),
	).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepo) Update(ctx context.Context, a domain.PaymentAttempt) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE payment_attempts
SET intent_id = $2,
    method_id = $3,
    step = $4,
    status = $5,
    error = $6,
    updated_at = now()
WHERE id = $1
`, a.ID, a.IntentID, a.MethodID, string(a.Step), string(a.Status), a.Error)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkSucceededByIntent settles a redirected attempt once its owner returns.
func (r *postgresRepo) MarkSucceededByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner) error {
	return r.settle(ctx, intentID, owner, domain.PaymentAttemptSucceeded, "")
}

// MarkFailedByIntent records a wallet-side failure reported on return.
func (r *postgresRepo) MarkFailedByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner, reason string) error {
	return r.settle(ctx, intentID, owner, domain.PaymentAttemptFailed, reason)
}

// settle only touches redirected attempts owned by the same user, or by the
// same session when the attempt carries no user id.
func (r *postgresRepo) settle(ctx context.Context, intentID string, owner domain.PaymentOwner, status domain.PaymentAttemptStatus, reason string) error {
	if intentID == "" || (owner.UserID == "" && owner.SessionID == "") {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE payment_attempts
SET status = $4,
    error = CASE WHEN $5 = '' THEN error ELSE $5 END,
    updated_at = now()
WHERE intent_id = $1
  AND status = 'redirected'
  AND ((user_id <> '' AND user_id = $2)
       OR (user_id = '' AND session_id = NULLIF($3, '')::uuid))
`, intentID, owner.UserID, owner.SessionID, string(status), reason)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context, status domain.PaymentAttemptStatus, limit int) ([]domain.PaymentAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	const base = `
SELECT id::text, COALESCE(session_id::text, ''), user_id, order_ids, ewallet_type, intent_id, method_id, step, status, error, created_at, updated_at
FROM payment_attempts
`
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx, base+`ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx, base+`WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, string(status), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PaymentAttempt{}
	for rows.Next() {
		var (
			a                   domain.PaymentAttempt
			wallet, step, state string
		)
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.UserID,
			&a.OrderIDs,
			&wallet,
			&a.IntentID,
			&a.MethodID,
			&step,
			&state,
			&a.Error,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.EWalletType = domain.EWalletType(wallet)
		a.Step = domain.PaymentStep(step)
		a.Status = domain.PaymentAttemptStatus(state)
		out = append(out, a)
	}
	return out, rows.Err()
}
