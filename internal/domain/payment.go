package domain

import (
	"fmt"
	"strings"
)

// PurchaseMode selects which payment endpoint applies to an order. It comes from
// the storefront route the buyer entered through and is not stored on the order.
type PurchaseMode string

const (
	PurchaseModeStandard PurchaseMode = "standard"
	PurchaseModeLoan     PurchaseMode = "loan"
	PurchaseModeRedeem   PurchaseMode = "redeem"
)

// ParsePurchaseMode maps a raw value onto a PurchaseMode. Empty means standard.
func ParsePurchaseMode(raw string) (PurchaseMode, error) {
	switch PurchaseMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PurchaseModeStandard:
		return PurchaseModeStandard, nil
	case PurchaseModeLoan:
		return PurchaseModeLoan, nil
	case PurchaseModeRedeem:
		return PurchaseModeRedeem, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// IntentKind records which payment endpoint produced an intent.
type IntentKind string

const (
	IntentKindPayment IntentKind = "payment"
	IntentKindBlock   IntentKind = "block"
	IntentKindRedeem  IntentKind = "redeem"
)

// PaymentIntent is owned by the payment processor and only lives for the current checkout.
type PaymentIntent struct {
	ID           string     `json:"id"`
	ClientSecret string     `json:"clientSecret,omitempty"`
	Status       string     `json:"status"`
	AmountCents  int64      `json:"amountCents"`
	Currency     string     `json:"currency,omitempty"`
	Kind         IntentKind `json:"kind"`
}

// RedirectStatus is the outcome reported by the hosted payment page.
type RedirectStatus string

const (
	RedirectSucceeded RedirectStatus = "succeeded"
	RedirectFailed    RedirectStatus = "failed"
)

// PaymentMethodCard is used when neither the caller nor the order names a method.
const PaymentMethodCard = "card"
