package selection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedSession(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO sessions (id, token, role, expires_at) VALUES ($1, 't', 'customer', $2)`, id, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestPostgres_AddRemoveClear(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool)
	sid := seedSession(ctx, t, pool)

	if err := repo.Add(ctx, sid, "a", "b", "c"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, sid, "a"); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	ids, err := repo.List(ctx, sid)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 selected ids, got %v", ids)
	}

	if err := repo.Remove(ctx, sid, "b", "missing"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ids, _ = repo.List(ctx, sid)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids after remove, got %v", ids)
	}

	if err := repo.Clear(ctx, sid); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	ids, _ = repo.List(ctx, sid)
	if len(ids) != 0 {
		t.Fatalf("expected empty selection, got %v", ids)
	}
}

func TestPostgres_SessionDeleteCascades(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool)
	sid := seedSession(ctx, t, pool)

	if err := repo.Add(ctx, sid, "a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sid); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	ids, err := repo.List(ctx, sid)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected selections to cascade, got %v", ids)
	}
}
