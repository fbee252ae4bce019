package payments

import (
	"context"

	"artpay-checkout/internal/domain"
)

// IntentRequest describes the order an intent is created for.
type IntentRequest struct {
	OrderID       int64
	OrderKey      string
	AmountCents   int64
	Currency      string
	PaymentMethod string
}

func NewIntentRequest(order domain.Order, method string) IntentRequest {
	return IntentRequest{
		OrderID:       order.ID,
		OrderKey:      order.Key,
		AmountCents:   order.TotalCents,
		Currency:      order.Currency,
		PaymentMethod: method,
	}
}

// Gateway creates the three kinds of payment intent the storefront needs.
type Gateway interface {
	// CreatePaymentIntent authorises the full order amount.
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error)
	// CreateBlockIntent authorises a down payment that reserves the artwork.
	CreateBlockIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error)
	// CreateRedeemIntent finalises a previously reserved or financed purchase.
	CreateRedeemIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error)
}
