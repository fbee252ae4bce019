package favourite

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Add(ctx context.Context, f domain.Favourite) (*domain.Favourite, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	const q = `
INSERT INTO favourites (user_id, kind, entity_id)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, kind, entity_id) DO UPDATE SET kind = EXCLUDED.kind
RETURNING user_id, kind, entity_id, created_at
`
	var out domain.Favourite
	var kind string
	err := r.pool.QueryRow(ctx, q, f.UserID, string(f.Kind), f.EntityID).
		Scan(&out.UserID, &kind, &out.EntityID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("favourite repo: add", zap.Int64("user_id", f.UserID), zap.Error(err))
		return nil, err
	}
	out.Kind = domain.FavouriteKind(kind)
	return &out, nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) error {
	const q = `DELETE FROM favourites WHERE user_id = $1 AND kind = $2 AND entity_id = $3`
	tag, err := r.pool.Exec(ctx, q, userID, string(kind), entityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Favourite, error) {
	const q = `
SELECT user_id, kind, entity_id, created_at
FROM favourites
WHERE user_id = $1
ORDER BY created_at DESC, kind, entity_id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Favourite, 0)
	for rows.Next() {
		var f domain.Favourite
		var kind string
		if err := rows.Scan(&f.UserID, &kind, &f.EntityID, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Kind = domain.FavouriteKind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}
