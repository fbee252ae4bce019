package checkout

import (
	"context"
	"errors"
	"sync"

	"artpay-checkout/internal/commerce"
	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/payments"
)

// fakeCommerce is an in-memory stand-in for the commerce backend.
type fakeCommerce struct {
	mu sync.Mutex

	orders     map[int64]*domain.Order
	onHold     *domain.Order
	processing *domain.Order
	pending    *domain.Order
	terminal   []domain.Order
	profile    *domain.UserProfile
	vendor     *domain.Vendor

	failLookups map[string]error
	failList    error
	failStatus  error
	failUpdate  error

	calls        []string
	statusWrites []domain.OrderStatus
	updates      []commerce.OrderUpdate
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		orders:      make(map[int64]*domain.Order),
		failLookups: make(map[string]error),
	}
}

func (f *fakeCommerce) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failLookups[call]
}

func found(o *domain.Order) (*domain.Order, error) {
	if o == nil {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeCommerce) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	if err := f.record("order"); err != nil {
		return nil, err
	}
	return found(f.orders[id])
}

func (f *fakeCommerce) GetOnHoldOrder(context.Context, int64) (*domain.Order, error) {
	if err := f.record("on-hold"); err != nil {
		return nil, err
	}
	return found(f.onHold)
}

func (f *fakeCommerce) GetProcessingOrder(context.Context, int64) (*domain.Order, error) {
	if err := f.record("processing"); err != nil {
		return nil, err
	}
	return found(f.processing)
}

func (f *fakeCommerce) GetPendingOrder(context.Context, int64) (*domain.Order, error) {
	if err := f.record("pending"); err != nil {
		return nil, err
	}
	return found(f.pending)
}

func (f *fakeCommerce) ListOrders(context.Context, int64, []domain.OrderStatus) ([]domain.Order, error) {
	f.record("terminal")
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]domain.Order(nil), f.terminal...), nil
}

func (f *fakeCommerce) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatus != nil {
		return nil, f.failStatus
	}
	f.statusWrites = append(f.statusWrites, status)
	o := f.lookup(id)
	o.Status = status
	cp := *o
	return &cp, nil
}

func (f *fakeCommerce) UpdateOrder(_ context.Context, id int64, upd commerce.OrderUpdate) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	f.updates = append(f.updates, upd)
	o := f.lookup(id)
	if upd.PaymentMethod != nil {
		o.PaymentMethod = *upd.PaymentMethod
	}
	if upd.Billing != nil {
		o.Billing = *upd.Billing
	}
	if upd.Shipping != nil {
		o.Shipping = *upd.Shipping
	}
	cp := *o
	return &cp, nil
}

// lookup finds the stored order by id wherever the test put it.
func (f *fakeCommerce) lookup(id int64) *domain.Order {
	for _, o := range []*domain.Order{f.orders[id], f.onHold, f.processing, f.pending} {
		if o != nil && o.ID == id {
			return o
		}
	}
	for i := range f.terminal {
		if f.terminal[i].ID == id {
			return &f.terminal[i]
		}
	}
	o := &domain.Order{ID: id}
	f.orders[id] = o
	return o
}

func (f *fakeCommerce) GetCustomer(context.Context, int64) (*domain.UserProfile, error) {
	if f.profile == nil {
		return nil, domain.ErrNotFound
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeCommerce) GetVendorForOrder(context.Context, domain.Order) (*domain.Vendor, error) {
	if f.vendor == nil {
		return nil, domain.ErrNotFound
	}
	cp := *f.vendor
	return &cp, nil
}

type gatewayCall struct {
	kind domain.IntentKind
	req  payments.IntentRequest
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []gatewayCall
	err   error
}

func (g *fakeGateway) create(kind domain.IntentKind, req payments.IntentRequest) (domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{kind: kind, req: req})
	if g.err != nil {
		return domain.PaymentIntent{}, g.err
	}
	return domain.PaymentIntent{
		ID:           "pi_" + string(kind),
		ClientSecret: "pi_" + string(kind) + "_secret",
		Status:       "requires_payment_method",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Kind:         kind,
	}, nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, req payments.IntentRequest) (domain.PaymentIntent, error) {
	return g.create(domain.IntentKindPayment, req)
}

func (g *fakeGateway) CreateBlockIntent(_ context.Context, req payments.IntentRequest) (domain.PaymentIntent, error) {
	return g.create(domain.IntentKindBlock, req)
}

func (g *fakeGateway) CreateRedeemIntent(_ context.Context, req payments.IntentRequest) (domain.PaymentIntent, error) {
	return g.create(domain.IntentKindRedeem, req)
}

type sentNotification struct {
	vendor domain.Vendor
	order  domain.Order
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) OrderCompleted(_ context.Context, vendor domain.Vendor, order domain.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{vendor: vendor, order: order})
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

var errBackendDown = errors.New("backend unavailable")
