package selection

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT line_item_id
FROM cart_selections
WHERE session_id = $1
ORDER BY created_at ASC, line_item_id ASC
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, sessionID string, lineItemIDs ...string) error {
	if len(lineItemIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_selections (session_id, line_item_id)
SELECT $1, unnest($2::text[])
ON CONFLICT (session_id, line_item_id) DO NOTHING
`, sessionID, lineItemIDs)
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, sessionID string, lineItemIDs ...string) error {
	if len(lineItemIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
DELETE FROM cart_selections
WHERE session_id = $1 AND line_item_id = ANY($2::text[])
`, sessionID, lineItemIDs)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_selections WHERE session_id = $1`, sessionID)
	return err
}
