package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"

	"artpay-checkout/internal/domain"
)

type stubPoster struct {
	lastPath string
	lastBody any
	resp     backendIntentResponse
	err      error
}

func (s *stubPoster) Post(_ context.Context, path string, body, out any) error {
	s.lastPath = path
	s.lastBody = body
	if s.err != nil {
		return s.err
	}
	*(out.(*backendIntentResponse)) = s.resp
	return nil
}

func TestBackendGatewayRoutesByKind(t *testing.T) {
	api := &stubPoster{resp: backendIntentResponse{ID: "pi_1", ClientSecret: "secret", Status: "requires_payment_method", Amount: 100, Currency: "eur"}}
	gw, err := NewBackendGateway(api, nil)
	require.NoError(t, err)
	req := IntentRequest{OrderID: 42, OrderKey: "wc_order_abc", PaymentMethod: "card"}

	intent, err := gw.CreatePaymentIntent(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, paymentIntentPath, api.lastPath)
	require.Equal(t, domain.IntentKindPayment, intent.Kind)
	require.Equal(t, "EUR", intent.Currency)
	require.Equal(t, backendIntentRequest{OrderKey: "wc_order_abc", PaymentMethod: "card"}, api.lastBody)

	intent, err = gw.CreateBlockIntent(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, blockIntentPath, api.lastPath)
	require.Equal(t, domain.IntentKindBlock, intent.Kind)

	intent, err = gw.CreateRedeemIntent(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, redeemIntentPath, api.lastPath)
	require.Equal(t, domain.IntentKindRedeem, intent.Kind)
}

func TestBackendGatewayErrors(t *testing.T) {
	_, err := NewBackendGateway(nil, nil)
	require.Error(t, err)

	api := &stubPoster{err: errors.New("boom")}
	gw, err := NewBackendGateway(api, nil)
	require.NoError(t, err)

	_, err = gw.CreatePaymentIntent(context.Background(), IntentRequest{OrderKey: "k"})
	require.ErrorContains(t, err, "boom")

	_, err = gw.CreatePaymentIntent(context.Background(), IntentRequest{})
	require.ErrorContains(t, err, "order key is required")
}

type stubStripeIntents struct {
	params *stripe.PaymentIntentParams
	err    error
}

func (s *stubStripeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.PaymentIntent{
		ID:           "pi_stripe",
		ClientSecret: "pi_stripe_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       *params.Amount,
		Currency:     stripe.Currency(*params.Currency),
	}, nil
}

func newStubStripe(t *testing.T, api *stubStripeIntents) *StripeGateway {
	t.Helper()
	gw, err := NewStripeGateway(StripeConfig{
		DownPaymentPercent: 10,
		AccountID:          "acct_gallery",
		intents:            api,
		newKey:             func() string { return "idem-1" },
	})
	require.NoError(t, err)
	return gw
}

func TestStripeGatewayPaymentIntent(t *testing.T) {
	api := &stubStripeIntents{}
	gw := newStubStripe(t, api)

	intent, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{
		OrderID: 42, OrderKey: "wc_order_abc", AmountCents: 125050, Currency: "EUR", PaymentMethod: "card",
	})
	require.NoError(t, err)
	require.Equal(t, "pi_stripe", intent.ID)
	require.Equal(t, int64(125050), intent.AmountCents)
	require.Equal(t, "EUR", intent.Currency)
	require.Equal(t, "eur", *api.params.Currency)
	require.Equal(t, "idem-1", *api.params.IdempotencyKey)
	require.Equal(t, "acct_gallery", *api.params.StripeAccount)
	require.Equal(t, "wc_order_abc", api.params.Metadata["order_key"])
	require.Equal(t, "payment", api.params.Metadata["intent_kind"])
	require.Nil(t, api.params.CaptureMethod)
	require.Len(t, api.params.PaymentMethodTypes, 1)
	require.Equal(t, "card", *api.params.PaymentMethodTypes[0])
}

func TestStripeGatewayBlockIntentUsesDownPayment(t *testing.T) {
	api := &stubStripeIntents{}
	gw := newStubStripe(t, api)

	intent, err := gw.CreateBlockIntent(context.Background(), IntentRequest{
		OrderID: 42, OrderKey: "wc_order_abc", AmountCents: 100000, Currency: "EUR",
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), intent.AmountCents)
	require.Equal(t, domain.IntentKindBlock, intent.Kind)
	require.Equal(t, string(stripe.PaymentIntentCaptureMethodManual), *api.params.CaptureMethod)
	require.Empty(t, api.params.PaymentMethodTypes)
}

func TestStripeGatewayValidation(t *testing.T) {
	api := &stubStripeIntents{}
	gw := newStubStripe(t, api)

	_, err := gw.CreateRedeemIntent(context.Background(), IntentRequest{OrderKey: "k", Currency: "EUR"})
	require.ErrorContains(t, err, "no payable amount")
	_, err = gw.CreateRedeemIntent(context.Background(), IntentRequest{OrderKey: "k", AmountCents: 10})
	require.ErrorContains(t, err, "no currency")
	require.Nil(t, api.params)

	_, err = NewStripeGateway(StripeConfig{DownPaymentPercent: 10})
	require.ErrorContains(t, err, "api key is required")
	_, err = NewStripeGateway(StripeConfig{APIKey: "sk_test", DownPaymentPercent: 0})
	require.Error(t, err)
}

func TestStripeGatewayPropagatesErrors(t *testing.T) {
	api := &stubStripeIntents{err: errors.New("card_declined")}
	gw := newStubStripe(t, api)
	_, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{OrderKey: "k", AmountCents: 10, Currency: "EUR"})
	require.ErrorContains(t, err, "card_declined")
}
