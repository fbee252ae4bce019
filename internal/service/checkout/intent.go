package checkout

import (
	"context"
	"fmt"
	"strings"

	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/payments"
)

// IntentConfig names the platform's own deferred-payment method and the method
// used in its place when such an order is redeemed.
type IntentConfig struct {
	DeferredMethod string
	FallbackMethod string
}

// IntentFactory requests the payment intent matching a purchase mode.
type IntentFactory struct {
	gateway  payments.Gateway
	deferred string
	fallback string
}

func NewIntentFactory(gateway payments.Gateway, cfg IntentConfig) *IntentFactory {
	return &IntentFactory{
		gateway:  gateway,
		deferred: strings.TrimSpace(cfg.DeferredMethod),
		fallback: strings.TrimSpace(cfg.FallbackMethod),
	}
}

// Method resolves the payment method sent with the intent: the override when
// given, else the order's own method, else card.
func (f *IntentFactory) Method(order domain.Order, override string) string {
	if m := strings.TrimSpace(override); m != "" {
		return m
	}
	if m := strings.TrimSpace(order.PaymentMethod); m != "" {
		return m
	}
	return domain.PaymentMethodCard
}

// Create requests a new intent on every call; nothing is cached.
func (f *IntentFactory) Create(ctx context.Context, order domain.Order, mode domain.PurchaseMode, override string) (domain.PaymentIntent, string, error) {
	method := f.Method(order, override)

	switch mode {
	case domain.PurchaseModeRedeem:
		if f.deferred != "" && order.PaymentMethod == f.deferred {
			method = f.fallback
			if method == "" {
				method = domain.PaymentMethodCard
			}
		}
		intent, err := f.gateway.CreateRedeemIntent(ctx, payments.NewIntentRequest(order, method))
		return intent, method, err
	case domain.PurchaseModeLoan:
		intent, err := f.gateway.CreateBlockIntent(ctx, payments.NewIntentRequest(order, method))
		return intent, method, err
	case domain.PurchaseModeStandard, "":
		intent, err := f.gateway.CreatePaymentIntent(ctx, payments.NewIntentRequest(order, method))
		return intent, method, err
	default:
		return domain.PaymentIntent{}, "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
}
