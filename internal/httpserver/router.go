package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/observability"
	"artpay-checkout/internal/service/checkout"
	"artpay-checkout/internal/service/favourite"
	"artpay-checkout/internal/session"
)

type sessionService interface {
	Create(ctx context.Context, userID int64) (*session.State, error)
	Get(ctx context.Context, id string) (*session.State, error)
	Reset(ctx context.Context, id string) (*session.State, error)
	Delete(ctx context.Context, id string) error
}

type checkoutService interface {
	Run(ctx context.Context, sessionID string, p checkout.Params) (*checkout.Result, error)
}

type favouriteService interface {
	Add(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) (*domain.Favourite, error)
	Remove(ctx context.Context, userID int64, kind domain.FavouriteKind, entityID int64) error
	List(ctx context.Context, userID int64) ([]domain.Favourite, error)
	Subscribe(userID int64) (<-chan favourite.Event, func())
}

// Deps holds the services the router dispatches to.
type Deps struct {
	Sessions    sessionService
	Checkout    checkoutService
	Favourites  favouriteService
	CORSOrigins []string
	// Heartbeat is the keep-alive interval of favourite streams. Zero means 25s.
	Heartbeat time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Checkout == nil || deps.Favourites == nil {
		return nil, errors.New("httpserver: sessions, checkout and favourites services are required")
	}
	logger = observability.OrNop(logger)

	router := gin.New()
	router.Use(observability.RequestLogger(logger), observability.Recovery(logger))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}
	if h.deps.Heartbeat <= 0 {
		h.deps.Heartbeat = 25 * time.Second
	}

	sessions := router.Group("/sessions")
	sessions.POST("", h.createSession)
	sessions.GET("/:sessionID", h.getSession)
	sessions.POST("/:sessionID/checkout", h.runCheckout)
	sessions.POST("/:sessionID/reset", h.resetSession)
	sessions.DELETE("/:sessionID", h.deleteSession)

	favs := router.Group("/users/:userID/favourites")
	favs.GET("", h.listFavourites)
	favs.GET("/stream", h.streamFavourites)
	favs.PUT("/:kind/:entityID", h.addFavourite)
	favs.DELETE("/:kind/:entityID", h.removeFavourite)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
