package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeConfig configures a StripeGateway.
type StripeConfig struct {
	APIKey             string
	AccountID          string
	DownPaymentPercent int64
	Backends           *stripe.Backends
	Logger             *zap.Logger

	intents stripeIntentAPI
	newKey  func() string
}

// StripeGateway creates PaymentIntents directly against Stripe. Block intents
// authorise DownPaymentPercent of the order total with manual capture.
type StripeGateway struct {
	api         stripeIntentAPI
	account     string
	downPayment int64
	newKey      func() string
	logger      *zap.Logger
}

func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	api := cfg.intents
	if api == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		api = client.New(apiKey, cfg.Backends).PaymentIntents
	}
	pct := cfg.DownPaymentPercent
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("stripe: down payment percent must be within 1..100, got %d", pct)
	}
	newKey := cfg.newKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{
		api:         api,
		account:     strings.TrimSpace(cfg.AccountID),
		downPayment: pct,
		newKey:      newKey,
		logger:      logger,
	}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	return g.create(ctx, domain.IntentKindPayment, req, req.AmountCents)
}

func (g *StripeGateway) CreateBlockIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	amount := req.AmountCents * g.downPayment / 100
	if amount < 1 {
		amount = 1
	}
	return g.create(ctx, domain.IntentKindBlock, req, amount)
}

func (g *StripeGateway) CreateRedeemIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	return g.create(ctx, domain.IntentKindRedeem, req, req.AmountCents)
}

func (g *StripeGateway) create(ctx context.Context, kind domain.IntentKind, req IntentRequest, amount int64) (domain.PaymentIntent, error) {
	if strings.TrimSpace(req.OrderKey) == "" {
		return domain.PaymentIntent{}, errors.New("stripe: order key is required")
	}
	if amount <= 0 {
		return domain.PaymentIntent{}, fmt.Errorf("stripe: order %d has no payable amount", req.OrderID)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return domain.PaymentIntent{}, fmt.Errorf("stripe: order %d has no currency", req.OrderID)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(g.newKey())
	if g.account != "" {
		params.SetStripeAccount(g.account)
	}
	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		params.PaymentMethodTypes = stripe.StringSlice([]string{method})
	}
	if kind == domain.IntentKindBlock {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	params.AddMetadata("order_id", strconv.FormatInt(req.OrderID, 10))
	params.AddMetadata("order_key", req.OrderKey)
	params.AddMetadata("intent_kind", string(kind))

	pi, err := g.api.New(params)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("stripe: create %s intent: %w", kind, err)
	}

	g.logger.Info("payments: stripe intent created",
		zap.String("kind", string(kind)),
		zap.Int64("order_id", req.OrderID),
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", pi.Amount),
	)
	return domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Kind:         kind,
	}, nil
}
