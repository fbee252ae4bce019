package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"artpay-checkout/internal/commerce"
	"artpay-checkout/internal/config"
	"artpay-checkout/internal/db"
	"artpay-checkout/internal/notify"
	"artpay-checkout/internal/payments"
	favrepo "artpay-checkout/internal/repository/favourite"
	notificationrepo "artpay-checkout/internal/repository/notification"
	sessionrepo "artpay-checkout/internal/repository/session"
	"artpay-checkout/internal/service/checkout"
	favouritesvc "artpay-checkout/internal/service/favourite"
	"artpay-checkout/internal/session"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	ProviderBackend = "backend"
	ProviderStripe  = "stripe"
)

// App is the wired object graph shared by the binaries.
type App struct {
	DB         *pgxpool.Pool
	Commerce   *commerce.Client
	Sessions   *session.Store
	Checkout   *checkout.Service
	Favourites *favouritesvc.Service
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Build connects the collaborators named by cfg. With the memory store no
// database connection is opened.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := commerce.New(commerce.Options{
		BaseURL:        cfg.Commerce.BaseURL,
		ConsumerKey:    cfg.Commerce.ConsumerKey,
		ConsumerSecret: cfg.Commerce.ConsumerSecret,
		Timeout:        cfg.Commerce.Timeout,
		Logger:         logger.Named("commerce"),
	})
	if err != nil {
		return nil, fmt.Errorf("commerce client: %w", err)
	}

	gateway, err := newGateway(cfg.Payments, client, logger.Named("payments"))
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg.Notify, logger.Named("notify"))
	if err != nil {
		return nil, err
	}

	a := &App{Commerce: client}
	var (
		sessions   session.Repository
		ledger     notify.Ledger
		favourites favrepo.Repository
	)
	switch strings.ToLower(strings.TrimSpace(cfg.SessionStore)) {
	case StoreMemory:
		sessions = session.NewMemoryRepository()
		ledger = notify.NewMemoryLedger()
		favourites = favrepo.NewMemory()
	case StorePostgres, "":
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		a.DB = pool
		sessions = sessionrepo.NewPostgres(pool, logger)
		ledger = notificationrepo.NewPostgres(pool, logger)
		favourites = favrepo.NewPostgres(pool, logger)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}

	a.Sessions = session.NewStore(sessions, logger.Named("session"))
	flowLogger := logger.Named("checkout")
	a.Checkout = checkout.New(checkout.Deps{
		Store:    a.Sessions,
		Orders:   client,
		Profiles: client,
		Vendors:  client,
		Locator:  checkout.NewLocator(client, flowLogger),
		Intents: checkout.NewIntentFactory(gateway, checkout.IntentConfig{
			DeferredMethod: cfg.Payments.DeferredMethod,
			FallbackMethod: cfg.Payments.FallbackMethod,
		}),
		Outcomes: checkout.NewOutcomeHandler(checkout.OutcomeDeps{
			Orders:   client,
			Vendors:  client,
			Notifier: notifier,
			Ledger:   ledger,
			Flags:    a.Sessions,
			Logger:   flowLogger,
		}),
		Logger: flowLogger,
	})
	a.Favourites = favouritesvc.New(favourites, favouritesvc.NewHub(), logger.Named("favourites"))
	return a, nil
}

func newGateway(cfg config.PaymentsConfig, client *commerce.Client, logger *zap.Logger) (payments.Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderBackend, "":
		return payments.NewBackendGateway(client, logger)
	case ProviderStripe:
		return payments.NewStripeGateway(payments.StripeConfig{
			APIKey:             cfg.StripeAPIKey,
			AccountID:          cfg.StripeAccountID,
			DownPaymentPercent: cfg.DownPaymentPercent,
			Logger:             logger,
		})
	default:
		return nil, fmt.Errorf("unknown payments provider %q", cfg.Provider)
	}
}

func newNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notify.Notifier, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		logger.Info("vendor notifications disabled")
		return notify.Nop{}, nil
	}
	return notify.NewHTTPNotifier(cfg.URL, cfg.Timeout, logger)
}
