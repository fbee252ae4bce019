package favourite

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/migrate"
)

func TestPostgres_AddListRemove(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE favourites`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	exerciseRepository(ctx, t, NewPostgres(pool, nil))
}

func TestMemory_AddListRemove(t *testing.T) {
	exerciseRepository(context.Background(), t, NewMemory())
}

func exerciseRepository(ctx context.Context, t *testing.T, repo Repository) {
	t.Helper()
	fav := domain.Favourite{UserID: 7, Kind: domain.FavouriteArtwork, EntityID: 900}
	first, err := repo.Add(ctx, fav)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	again, err := repo.Add(ctx, fav)
	if err != nil {
		t.Fatalf("Add twice: %v", err)
	}
	if !again.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("second add changed created_at: %v vs %v", first.CreatedAt, again.CreatedAt)
	}
	if _, err := repo.Add(ctx, domain.Favourite{UserID: 7, Kind: domain.FavouriteGallery, EntityID: 31}); err != nil {
		t.Fatalf("Add gallery: %v", err)
	}
	if _, err := repo.Add(ctx, domain.Favourite{UserID: 8, Kind: domain.FavouriteArtist, EntityID: 5}); err != nil {
		t.Fatalf("Add other user: %v", err)
	}

	list, err := repo.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 favourites, got %+v", list)
	}

	if err := repo.Remove(ctx, 7, domain.FavouriteArtwork, 900); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := repo.Remove(ctx, 7, domain.FavouriteArtwork, 900); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, err = repo.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].Kind != domain.FavouriteGallery {
		t.Fatalf("unexpected favourites after remove %+v", list)
	}
	empty, err := repo.ListByUser(ctx, 99)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v err=%v", empty, err)
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
