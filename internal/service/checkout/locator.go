package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

type orderFinder interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	GetOnHoldOrder(ctx context.Context, customerID int64) (*domain.Order, error)
	GetProcessingOrder(ctx context.Context, customerID int64) (*domain.Order, error)
	GetPendingOrder(ctx context.Context, customerID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, customerID int64, statuses []domain.OrderStatus) ([]domain.Order, error)
}

// Step names the lookup that produced the active order.
type Step int

const (
	StepNone Step = iota
	StepOrderRef
	StepOnHold
	StepProcessing
	StepPending
	StepTerminal
)

func (s Step) String() string {
	switch s {
	case StepOrderRef:
		return "order_ref"
	case StepOnHold:
		return "on_hold"
	case StepProcessing:
		return "processing"
	case StepPending:
		return "pending"
	case StepTerminal:
		return "terminal"
	default:
		return "none"
	}
}

type LocateInput struct {
	OrderRef string
	UserID   int64
}

// Located is the outcome of a lookup. Order is nil when nothing matched.
type Located struct {
	Order    *domain.Order
	Redirect bool
	Step     Step
}

func (l Located) Found() bool {
	return l.Order != nil
}

// Locator picks the single active order for a session.
type Locator struct {
	orders orderFinder
	logger *zap.Logger
}

func NewLocator(orders orderFinder, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{orders: orders, logger: logger}
}

// Locate probes, in priority order, the order named by the caller, then the
// user's on-hold, processing and pending orders, and finally the user's
// terminal orders. The first hit wins. Failures of the single-order lookups
// count as "not found"; a failure listing terminal orders is returned.
func (l *Locator) Locate(ctx context.Context, in LocateInput) (Located, error) {
	if ref := strings.TrimSpace(in.OrderRef); ref != "" {
		if order := l.byRef(ctx, ref); order != nil {
			return Located{Order: order, Redirect: true, Step: StepOrderRef}, nil
		}
	}

	if in.UserID == 0 {
		return Located{}, nil
	}

	probes := []struct {
		step     Step
		redirect bool
		find     func(context.Context, int64) (*domain.Order, error)
	}{
		{StepOnHold, true, l.orders.GetOnHoldOrder},
		{StepProcessing, false, l.orders.GetProcessingOrder},
		{StepPending, false, l.orders.GetPendingOrder},
	}
	for _, p := range probes {
		order, err := p.find(ctx, in.UserID)
		if err != nil {
			l.miss(p.step, in.UserID, err)
			continue
		}
		if order != nil {
			return Located{Order: order, Redirect: p.redirect, Step: p.step}, nil
		}
	}

	orders, err := l.orders.ListOrders(ctx, in.UserID, domain.TerminalStatuses())
	if err != nil {
		return Located{}, fmt.Errorf("list terminal orders: %w", err)
	}
	if len(orders) == 0 {
		return Located{}, nil
	}
	// Ties are left to the backend's default list ordering.
	order := orders[0]
	return Located{Order: &order, Step: StepTerminal}, nil
}

func (l *Locator) byRef(ctx context.Context, ref string) *domain.Order {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		l.logger.Debug("ignoring malformed order reference", zap.String("order_ref", ref))
		return nil
	}
	order, err := l.orders.GetOrder(ctx, id)
	if err != nil {
		l.miss(StepOrderRef, 0, err)
		return nil
	}
	return order
}

func (l *Locator) miss(step Step, userID int64, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	l.logger.Warn("order lookup failed",
		zap.String("step", step.String()),
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
}
