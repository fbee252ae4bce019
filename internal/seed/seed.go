package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"artpay-checkout/internal/domain"
)

// DemoSessionID is the fixed id of the seeded checkout session.
const DemoSessionID = "01J0000000DEMO0SESS1ON0000"

// DemoUserID is the commerce customer the seed data belongs to.
const DemoUserID int64 = 7

type favouriteSeed struct {
	Kind     domain.FavouriteKind
	EntityID int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureSession(ctx, pool, DemoSessionID, DemoUserID); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	favourites := []favouriteSeed{
		{Kind: domain.FavouriteArtwork, EntityID: 900},
		{Kind: domain.FavouriteArtist, EntityID: 5},
		{Kind: domain.FavouriteGallery, EntityID: 31},
	}
	for _, f := range favourites {
		if err := upsertFavourite(ctx, pool, DemoUserID, f); err != nil {
			return fmt.Errorf("upsert favourite %s/%d: %w", f.Kind, f.EntityID, err)
		}
	}

	return nil
}

// ensureSession resets the demo session to idle so it can be replayed.
func ensureSession(ctx context.Context, pool *pgxpool.Pool, id string, userID int64) error {
	const q = `
INSERT INTO checkout_sessions (id, user_id, phase, state)
VALUES ($1, $2, 'idle', '{}'::jsonb)
ON CONFLICT (id) DO UPDATE
SET user_id = EXCLUDED.user_id,
    phase = 'idle',
    state = '{}'::jsonb,
    show_checkout = FALSE,
    redirect_external = FALSE,
    cds_order = 0,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, id, userID)
	return err
}

func upsertFavourite(ctx context.Context, pool *pgxpool.Pool, userID int64, f favouriteSeed) error {
	const q = `
INSERT INTO favourites (user_id, kind, entity_id)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, kind, entity_id) DO NOTHING
`
	_, err := pool.Exec(ctx, q, userID, string(f.Kind), f.EntityID)
	return err
}
