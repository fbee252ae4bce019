package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

const (
	paymentIntentPath = "/wp-json/wc/v3/stripe/payment_intent"
	blockIntentPath   = "/wp-json/wc/v3/stripe/block_intent"
	redeemIntentPath  = "/wp-json/wc/v3/stripe/redeem_intent"
)

// Poster is the slice of the commerce client the backend gateway needs.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// BackendGateway delegates intent creation to the commerce backend, which holds
// the processor credentials and ties each intent to the order.
type BackendGateway struct {
	api    Poster
	logger *zap.Logger
}

func NewBackendGateway(api Poster, logger *zap.Logger) (*BackendGateway, error) {
	if api == nil {
		return nil, errors.New("payments: backend client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendGateway{api: api, logger: logger}, nil
}

type backendIntentRequest struct {
	OrderKey      string `json:"wc_order_key"`
	PaymentMethod string `json:"payment_method"`
}

type backendIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (g *BackendGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	return g.create(ctx, paymentIntentPath, domain.IntentKindPayment, req)
}

func (g *BackendGateway) CreateBlockIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	return g.create(ctx, blockIntentPath, domain.IntentKindBlock, req)
}

func (g *BackendGateway) CreateRedeemIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error) {
	return g.create(ctx, redeemIntentPath, domain.IntentKindRedeem, req)
}

func (g *BackendGateway) create(ctx context.Context, path string, kind domain.IntentKind, req IntentRequest) (domain.PaymentIntent, error) {
	if strings.TrimSpace(req.OrderKey) == "" {
		return domain.PaymentIntent{}, errors.New("payments: order key is required")
	}
	var out backendIntentResponse
	err := g.api.Post(ctx, path, backendIntentRequest{
		OrderKey:      req.OrderKey,
		PaymentMethod: req.PaymentMethod,
	}, &out)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("payments: create %s intent: %w", kind, err)
	}
	g.logger.Info("payments: intent created",
		zap.String("kind", string(kind)),
		zap.Int64("order_id", req.OrderID),
		zap.String("intent_id", out.ID),
		zap.String("payment_method", req.PaymentMethod),
	)
	return domain.PaymentIntent{
		ID:           out.ID,
		ClientSecret: out.ClientSecret,
		Status:       out.Status,
		AmountCents:  out.Amount,
		Currency:     strings.ToUpper(out.Currency),
		Kind:         kind,
	}, nil
}
