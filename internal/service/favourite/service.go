package favourite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
	favrepo "artpay-checkout/internal/repository/favourite"
)

// Service manages favourites and announces every change on the Hub.
type Service struct {
	repo   favrepo.Repository
	hub    *Hub
	logger *zap.Logger
}

func New(repo favrepo.Repository, hub *Hub, logger *zap.Logger) *Service {
	if hub == nil {
		hub = NewHub()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, hub: hub, logger: logger}
}

func (s *Service) Hub() *Hub {
	return s.hub
}

// Subscribe streams the changes to userID's favourites until cancel is called.
func (s *Service) Subscribe(userID int64) (<-chan Event, func()) {
	return s.hub.Subscribe(userID)
}

func (s *Service) Add(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) (*domain.Favourite, error) {
	kind, err := validate(userID, kind, entityID)
	if err != nil {
		return nil, err
	}
	fav, err := s.repo.Add(ctx, domain.Favourite{UserID: userID, Kind: kind, EntityID: entityID})
	if err != nil {
		return nil, err
	}
	s.publish(Event{Type: EventAdded, Favourite: *fav})
	return fav, nil
}

func (s *Service) Remove(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) error {
	kind, err := validate(userID, kind, entityID)
	if err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, userID, kind, entityID); err != nil {
		return err
	}
	s.publish(Event{Type: EventRemoved, Favourite: domain.Favourite{UserID: userID, Kind: kind, EntityID: entityID}})
	return nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Favourite, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", domain.ErrInvalidFavourite)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) publish(ev Event) {
	n := s.hub.Publish(ev)
	s.logger.Debug("favourite event",
		zap.String("type", string(ev.Type)),
		zap.Int64("user_id", ev.Favourite.UserID),
		zap.Int("delivered", n),
	)
}

func validate(userID int64, kind domain.FavouriteKind, entityID int64) (domain.FavouriteKind, error) {
	if userID <= 0 || entityID <= 0 {
		return "", fmt.Errorf("%w: user and entity ids must be positive", domain.ErrInvalidFavourite)
	}
	return domain.ParseFavouriteKind(string(kind))
}
