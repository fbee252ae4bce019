package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"artpay-checkout/internal/domain"
	favrepo "artpay-checkout/internal/repository/favourite"
	"artpay-checkout/internal/service/checkout"
	favouritesvc "artpay-checkout/internal/service/favourite"
	"artpay-checkout/internal/session"
)

type stubCheckout struct {
	result *checkout.Result
	err    error
	got    checkout.Params
	gotID  string
}

func (s *stubCheckout) Run(_ context.Context, id string, p checkout.Params) (*checkout.Result, error) {
	s.gotID = id
	s.got = p
	return s.result, s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testEnv struct {
	router   *gin.Engine
	sessions *session.Store
	checkout *stubCheckout
	favs     *favouritesvc.Service
}

func newTestEnv(t *testing.T, db Pinger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		sessions: session.NewStore(session.NewMemoryRepository(), nil),
		checkout: &stubCheckout{},
		favs:     favouritesvc.New(favrepo.NewMemory(), nil, nil),
	}
	router, err := buildRouter(nil, db, Deps{
		Sessions:    env.sessions,
		Checkout:    env.checkout,
		Favourites:  env.favs,
		CORSOrigins: []string{"https://artpay.art"},
	})
	require.NoError(t, err)
	env.router = router
	return env
}

func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "").Code)
	rec := env.do(http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"db":"disabled"`)

	down := newTestEnv(t, stubPinger{err: errors.New("refused")})
	require.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/readyz", "").Code)
	up := newTestEnv(t, stubPinger{})
	require.Equal(t, http.StatusOK, up.do(http.MethodGet, "/readyz", "").Code)
}

func TestBuildRouterRequiresServices(t *testing.T) {
	_, err := buildRouter(nil, nil, Deps{})
	require.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sessions", `{"userId":7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(7), created.UserID)
	require.Equal(t, session.PhaseIdle, created.Phase)
	require.False(t, created.Loading)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = env.do(http.MethodGet, "/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/sessions/"+created.ID+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/sessions/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/sessions/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, http.StatusNotFound, body.StatusCode)
	require.Equal(t, "ResourceNotFound", body.Errors[0].Code)
}

func TestCreateAnonymousSessionWithoutBody(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/sessions", `{"userId":-4}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodPost, "/sessions", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutPassesQueryParameters(t *testing.T) {
	env := newTestEnv(t, nil)
	st := &session.State{ID: "s1", Phase: session.PhaseIdle}
	env.checkout.result = &checkout.Result{
		Action:  checkout.ActionReconciled,
		Step:    "on_hold",
		Order:   &domain.Order{ID: 42, Status: domain.OrderStatusCompleted},
		Session: st,
	}

	rec := env.do(http.MethodPost, "/sessions/s1/checkout?payment_intent=pi_123&redirect_status=succeeded&mode=loan&order=42&payment_method=card", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "s1", env.checkout.gotID)
	require.Equal(t, checkout.Params{
		OrderRef:       "42",
		PaymentIntent:  "pi_123",
		RedirectStatus: domain.RedirectSucceeded,
		Mode:           domain.PurchaseModeLoan,
		PaymentMethod:  "card",
	}, env.checkout.got)

	var body checkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, checkout.ActionReconciled, body.Action)
	require.Equal(t, domain.OrderStatusCompleted, body.Order.Status)
}

func TestCheckoutRedirectAction(t *testing.T) {
	env := newTestEnv(t, nil)
	env.checkout.result = &checkout.Result{
		Action:   checkout.ActionRedirect,
		Location: checkout.HomeLocation,
		Step:     "none",
		Session:  &session.State{ID: "s1", Phase: session.PhaseIdle},
	}
	rec := env.do(http.MethodPost, "/sessions/s1/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"location":"/"`)
	require.Equal(t, domain.PurchaseModeStandard, env.checkout.got.Mode)
}

func TestCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrAlreadyProcessing, http.StatusConflict},
		{errors.New("commerce: 500 internal_error"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		env := newTestEnv(t, nil)
		env.checkout.err = tc.err
		rec := env.do(http.MethodPost, "/sessions/s1/checkout", "")
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
		require.Equal(t, tc.code, decodeError(t, rec).StatusCode)
	}

	env := newTestEnv(t, nil)
	rec := env.do(http.MethodPost, "/sessions/s1/checkout?mode=layaway", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, env.checkout.gotID, "invalid mode must not reach the flow")
}

func TestBadGatewayHidesCollaboratorDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.checkout.err = errors.New("stripe: card_declined secret detail")
	rec := env.do(http.MethodPost, "/sessions/s1/checkout", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret detail")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://artpay.art")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, "https://artpay.art", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCollaboratorFailureLogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	checkoutStub := &stubCheckout{err: errors.New("commerce: 500 internal_error")}
	router, err := buildRouter(zap.New(core), nil, Deps{
		Sessions:   session.NewStore(session.NewMemoryRepository(), nil),
		Checkout:   checkoutStub,
		Favourites: favouritesvc.New(favrepo.NewMemory(), nil, nil),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/checkout", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	failures := logs.FilterMessage("request failed").All()
	require.Len(t, failures, 1)
	require.Equal(t, "req-42", failures[0].ContextMap()["request_id"])
}
