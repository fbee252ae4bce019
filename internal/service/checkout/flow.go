package checkout

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"artpay-checkout/internal/commerce"
	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/session"
)

var tracer = otel.Tracer("artpay-checkout/internal/service/checkout")

// HomeLocation is where a buyer with nothing to pay is sent.
const HomeLocation = "/"

type sessionStore interface {
	Begin(ctx context.Context, id string) (*session.State, error)
	Release(id string)
	Save(ctx context.Context, st *session.State) error
	ClearFlags(ctx context.Context, st *session.State)
}

type profileFinder interface {
	GetCustomer(ctx context.Context, id int64) (*domain.UserProfile, error)
}

// Action tells the storefront what to do with the result of a run.
type Action string

const (
	// ActionReconciled means a payment redirect was applied to the order.
	ActionReconciled Action = "reconciled"
	// ActionRedirect means there is nothing to pay; go to Location.
	ActionRedirect Action = "redirect"
	// ActionClosed means the most recent order is already finished; the buyer
	// goes to Location like ActionRedirect.
	ActionClosed Action = "closed"
	// ActionAwaitPayment means an intent was created and the buyer should pay it.
	ActionAwaitPayment Action = "await_payment"
)

// Params are the inputs of one checkout run, as read from the payment page URL.
type Params struct {
	OrderRef       string
	PaymentIntent  string
	RedirectStatus domain.RedirectStatus
	Mode           domain.PurchaseMode
	PaymentMethod  string
}

func (p Params) returningFromPayment() bool {
	return strings.TrimSpace(p.PaymentIntent) != "" && strings.TrimSpace(string(p.RedirectStatus)) != ""
}

type Result struct {
	Action   Action                `json:"action"`
	Location string                `json:"location,omitempty"`
	Step     string                `json:"step"`
	Order    *domain.Order         `json:"order,omitempty"`
	Intent   *domain.PaymentIntent `json:"intent,omitempty"`
	Session  *session.State        `json:"session"`
}

type Deps struct {
	Store    sessionStore
	Orders   orderWriter
	Profiles profileFinder
	Vendors  vendorFinder
	Locator  *Locator
	Intents  *IntentFactory
	Outcomes *OutcomeHandler
	Logger   *zap.Logger
}

// Service runs order-to-payment reconciliation for one session at a time.
type Service struct {
	store    sessionStore
	orders   orderWriter
	profiles profileFinder
	vendors  vendorFinder
	locator  *Locator
	intents  *IntentFactory
	outcomes *OutcomeHandler
	logger   *zap.Logger
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		orders:   deps.Orders,
		profiles: deps.Profiles,
		vendors:  deps.Vendors,
		locator:  deps.Locator,
		intents:  deps.Intents,
		outcomes: deps.Outcomes,
		logger:   logger,
	}
}

// Run locates the session's active order and then either applies a payment
// redirect to it, reports it closed, or creates the intent the buyer pays.
// A second Run for the same session while one is in flight returns
// domain.ErrAlreadyProcessing.
func (s *Service) Run(ctx context.Context, sessionID string, p Params) (*Result, error) {
	ctx, span := tracer.Start(ctx, "checkout.run", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("checkout.mode", string(p.Mode)),
	))
	defer span.End()

	res, err := s.run(ctx, sessionID, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("checkout.action", string(res.Action)))
	return res, nil
}

func (s *Service) run(ctx context.Context, sessionID string, p Params) (*Result, error) {
	st, err := s.store.Begin(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.store.Release(sessionID)

	log := s.logger.With(zap.String("session_id", sessionID), zap.Int64("user_id", st.UserID))

	s.loadProfile(ctx, st, log)

	located, err := s.locate(ctx, st, p)
	if err != nil {
		s.abort(ctx, st, log)
		return nil, err
	}

	if !located.Found() {
		if p.returningFromPayment() {
			log.Warn("payment redirect without an active order", zap.String("payment_intent", p.PaymentIntent))
		}
		st.ClearOrder()
		if err := s.transition(ctx, st, session.PhaseIdle); err != nil {
			return nil, err
		}
		return &Result{Action: ActionRedirect, Location: HomeLocation, Step: located.Step.String(), Session: st}, nil
	}

	order := located.Order
	log = log.With(zap.Int64("order_id", order.ID), zap.String("step", located.Step.String()))
	st.Order = order
	st.Flags.ShowCheckout = true
	st.Flags.CdsOrder = order.ID
	if located.Redirect {
		st.Flags.RedirectToExternal = true
	}
	s.loadVendor(ctx, st, log)

	switch {
	case p.returningFromPayment():
		return s.reconcile(ctx, st, *order, located.Step, p, log)
	case located.Step == StepTerminal || order.Status.IsTerminal():
		s.store.ClearFlags(ctx, st)
		if err := st.Transition(session.PhaseTerminal); err != nil {
			return nil, err
		}
		st.ClearOrder()
		if err := s.transition(ctx, st, session.PhaseIdle); err != nil {
			return nil, err
		}
		return &Result{Action: ActionClosed, Location: HomeLocation, Step: located.Step.String(), Order: order, Session: st}, nil
	default:
		return s.awaitPayment(ctx, st, *order, located.Step, p, log)
	}
}

func (s *Service) locate(ctx context.Context, st *session.State, p Params) (Located, error) {
	ctx, span := tracer.Start(ctx, "checkout.locate")
	defer span.End()

	located, err := s.locator.Locate(ctx, LocateInput{OrderRef: p.OrderRef, UserID: st.UserID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Located{}, err
	}
	span.SetAttributes(attribute.String("checkout.step", located.Step.String()))
	return located, nil
}

func (s *Service) reconcile(ctx context.Context, st *session.State, order domain.Order, step Step, p Params, log *zap.Logger) (*Result, error) {
	ctx, span := tracer.Start(ctx, "checkout.reconcile", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("payment.redirect_status", string(p.RedirectStatus)),
	))
	defer span.End()

	if err := s.transition(ctx, st, session.PhaseReconciling); err != nil {
		return nil, err
	}

	updated, err := s.outcomes.Handle(ctx, st, order, p.RedirectStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("apply payment redirect", zap.Error(err))
		s.abort(ctx, st, log)
		return nil, err
	}

	log.Info("payment redirect applied",
		zap.String("payment_intent", p.PaymentIntent),
		zap.String("redirect_status", string(p.RedirectStatus)),
		zap.String("order_status", string(updated.Status)),
	)

	if updated.Status.IsTerminal() {
		if err := st.Transition(session.PhaseTerminal); err != nil {
			return nil, err
		}
		st.ClearOrder()
	} else {
		st.Order = updated
	}
	if err := s.transition(ctx, st, session.PhaseIdle); err != nil {
		return nil, err
	}
	return &Result{Action: ActionReconciled, Step: step.String(), Order: updated, Session: st}, nil
}

func (s *Service) awaitPayment(ctx context.Context, st *session.State, order domain.Order, step Step, p Params, log *zap.Logger) (*Result, error) {
	ctx, span := tracer.Start(ctx, "checkout.intent", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("checkout.mode", string(p.Mode)),
	))
	defer span.End()

	intent, method, err := s.intents.Create(ctx, order, p.Mode, p.PaymentMethod)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("create payment intent", zap.Error(err))
		s.abort(ctx, st, log)
		return nil, err
	}

	if updated := s.writeBackMethod(ctx, order, method, log); updated != nil {
		order = *updated
		st.Order = updated
	}
	st.Intent = &intent
	st.PaymentMethod = method
	if err := s.transition(ctx, st, session.PhaseAwaitingPayment); err != nil {
		return nil, err
	}
	log.Info("payment intent created",
		zap.String("intent_kind", string(intent.Kind)),
		zap.String("payment_method", method),
	)
	return &Result{Action: ActionAwaitPayment, Step: step.String(), Order: &order, Intent: &intent, Session: st}, nil
}

// writeBackMethod records the method the intent was created with on the order
// when it differs from the stored one. Failure is logged; the intent stands.
func (s *Service) writeBackMethod(ctx context.Context, order domain.Order, method string, log *zap.Logger) *domain.Order {
	if s.orders == nil || method == "" || method == order.PaymentMethod {
		return nil
	}
	updated, err := s.orders.UpdateOrder(ctx, order.ID, commerce.OrderUpdate{PaymentMethod: &method})
	if err != nil {
		log.Warn("write payment method back to order",
			zap.String("payment_method", method),
			zap.Error(err),
		)
		return nil
	}
	return updated
}

func (s *Service) loadProfile(ctx context.Context, st *session.State, log *zap.Logger) {
	if st.UserID == 0 || s.profiles == nil {
		return
	}
	profile, err := s.profiles.GetCustomer(ctx, st.UserID)
	if err != nil {
		log.Warn("load user profile", zap.Error(err))
		return
	}
	st.Profile = profile
}

func (s *Service) loadVendor(ctx context.Context, st *session.State, log *zap.Logger) {
	st.Vendor = nil
	if s.vendors == nil {
		return
	}
	vendor, err := s.vendors.GetVendorForOrder(ctx, *st.Order)
	if err != nil {
		log.Warn("load vendor", zap.Error(err))
		return
	}
	st.Vendor = vendor
}

// transition moves st to next and persists it.
func (s *Service) transition(ctx context.Context, st *session.State, next session.Phase) error {
	if err := st.Transition(next); err != nil {
		return err
	}
	if err := s.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// abort returns the session to idle after a failed run. Flags are kept so the
// next load retries the same order.
func (s *Service) abort(ctx context.Context, st *session.State, log *zap.Logger) {
	if err := st.Transition(session.PhaseIdle); err != nil {
		log.Warn("reset session after failure", zap.Error(err))
		return
	}
	if err := s.store.Save(ctx, st); err != nil {
		log.Warn("save session after failure", zap.Error(err))
	}
}
