package notification

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"artpay-checkout/internal/migrate"
	"artpay-checkout/internal/notify"
)

func TestPostgres_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_notifications`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	ledger := NewPostgres(pool, nil)
	first, err := ledger.Claim(ctx, 42, notify.KindOrderCompleted)
	if err != nil || !first {
		t.Fatalf("first claim: claimed=%v err=%v", first, err)
	}
	second, err := ledger.Claim(ctx, 42, notify.KindOrderCompleted)
	if err != nil || second {
		t.Fatalf("second claim: claimed=%v err=%v", second, err)
	}
	other, err := ledger.Claim(ctx, 43, notify.KindOrderCompleted)
	if err != nil || !other {
		t.Fatalf("other order: claimed=%v err=%v", other, err)
	}

	if err := ledger.Release(ctx, 42, notify.KindOrderCompleted); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := ledger.Claim(ctx, 42, notify.KindOrderCompleted)
	if err != nil || !again {
		t.Fatalf("claim after release: claimed=%v err=%v", again, err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}
