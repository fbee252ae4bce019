package session

import "context"

// Repository persists session state.
type Repository interface {
	Create(ctx context.Context, st State) (*State, error)
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, st State) error
	SaveFlags(ctx context.Context, id string, flags Flags) error
	Delete(ctx context.Context, id string) error
}
