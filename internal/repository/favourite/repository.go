package favourite

import (
	"context"

	"artpay-checkout/internal/domain"
)

// Repository persists the artworks, artists and galleries a user follows.
type Repository interface {
	// Add is idempotent; adding an existing favourite returns it unchanged.
	Add(ctx context.Context, f domain.Favourite) (*domain.Favourite, error)
	Remove(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Favourite, error)
}
