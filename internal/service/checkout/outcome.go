package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"artpay-checkout/internal/commerce"
	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/notify"
	"artpay-checkout/internal/session"
)

type orderWriter interface {
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id int64, upd commerce.OrderUpdate) (*domain.Order, error)
}

type vendorFinder interface {
	GetVendorForOrder(ctx context.Context, order domain.Order) (*domain.Vendor, error)
}

type flagClearer interface {
	ClearFlags(ctx context.Context, st *session.State)
}

// OutcomeHandler applies the result of a hosted payment page redirect to the order.
type OutcomeHandler struct {
	orders   orderWriter
	vendors  vendorFinder
	notifier notify.Notifier
	ledger   notify.Ledger
	flags    flagClearer
	logger   *zap.Logger
}

type OutcomeDeps struct {
	Orders   orderWriter
	Vendors  vendorFinder
	Notifier notify.Notifier
	Ledger   notify.Ledger
	Flags    flagClearer
	Logger   *zap.Logger
}

func NewOutcomeHandler(deps OutcomeDeps) *OutcomeHandler {
	h := &OutcomeHandler{
		orders:   deps.Orders,
		vendors:  deps.Vendors,
		notifier: deps.Notifier,
		ledger:   deps.Ledger,
		flags:    deps.Flags,
		logger:   deps.Logger,
	}
	if h.notifier == nil {
		h.notifier = notify.Nop{}
	}
	if h.ledger == nil {
		h.ledger = notify.NewMemoryLedger()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.flags == nil {
		h.flags = memoryFlags{}
	}
	return h
}

// memoryFlags clears flags on the in-memory state only.
type memoryFlags struct{}

func (memoryFlags) ClearFlags(_ context.Context, st *session.State) {
	st.Flags = session.Flags{}
}

// Handle moves the order to completed or failed according to status. Any
// other status returns the order unchanged. When the status write fails the
// error is returned and the session flags are left alone.
func (h *OutcomeHandler) Handle(ctx context.Context, st *session.State, order domain.Order, status domain.RedirectStatus) (*domain.Order, error) {
	switch status {
	case domain.RedirectSucceeded:
		return h.succeeded(ctx, st, order)
	case domain.RedirectFailed:
		return h.failed(ctx, st, order)
	default:
		return &order, nil
	}
}

func (h *OutcomeHandler) succeeded(ctx context.Context, st *session.State, order domain.Order) (*domain.Order, error) {
	updated := &order
	if order.Status != domain.OrderStatusCompleted {
		var err error
		updated, err = h.orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusCompleted)
		if err != nil {
			return nil, fmt.Errorf("complete order %d: %w", order.ID, err)
		}
	}

	if st.Profile != nil && st.Profile.InvoiceType == domain.InvoiceTypeReceipt {
		billing, shipping := st.Profile.Billing, st.Profile.Shipping
		withAddresses, err := h.orders.UpdateOrder(ctx, order.ID, commerce.OrderUpdate{
			Billing:  &billing,
			Shipping: &shipping,
		})
		if err != nil {
			h.logger.Warn("copy profile addresses onto order",
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
		} else {
			updated = withAddresses
		}
	}

	h.notifyVendor(ctx, st, *updated)
	h.flags.ClearFlags(ctx, st)
	return updated, nil
}

func (h *OutcomeHandler) failed(ctx context.Context, st *session.State, order domain.Order) (*domain.Order, error) {
	updated := &order
	if order.Status != domain.OrderStatusFailed {
		var err error
		updated, err = h.orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusFailed)
		if err != nil {
			return nil, fmt.Errorf("fail order %d: %w", order.ID, err)
		}
	}
	h.flags.ClearFlags(ctx, st)
	return updated, nil
}

// notifyVendor sends the completed-order notification at most once per order.
// Every failure here is logged and swallowed.
func (h *OutcomeHandler) notifyVendor(ctx context.Context, st *session.State, order domain.Order) {
	log := h.logger.With(zap.Int64("order_id", order.ID))

	claimed, err := h.ledger.Claim(ctx, order.ID, notify.KindOrderCompleted)
	if err != nil {
		log.Warn("claim order notification", zap.Error(err))
		return
	}
	if !claimed {
		log.Debug("order notification already sent")
		return
	}

	vendor, err := h.vendorFor(ctx, st, order)
	if err == nil {
		err = h.notifier.OrderCompleted(ctx, *vendor, order)
	}
	if err != nil {
		log.Warn("notify vendor", zap.Error(err))
		if relErr := h.ledger.Release(ctx, order.ID, notify.KindOrderCompleted); relErr != nil {
			log.Warn("release order notification claim", zap.Error(relErr))
		}
	}
}

func (h *OutcomeHandler) vendorFor(ctx context.Context, st *session.State, order domain.Order) (*domain.Vendor, error) {
	if st.Vendor != nil {
		return st.Vendor, nil
	}
	if h.vendors == nil {
		return nil, fmt.Errorf("no vendor for order %d", order.ID)
	}
	vendor, err := h.vendors.GetVendorForOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	st.Vendor = vendor
	return vendor, nil
}
