package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

const defaultTimeout = 5 * time.Second

// Notifier tells a gallery that one of its orders has been paid.
type Notifier interface {
	OrderCompleted(ctx context.Context, vendor domain.Vendor, order domain.Order) error
}

// Nop drops every notification. Used when no endpoint is configured.
type Nop struct{}

func (Nop) OrderCompleted(context.Context, domain.Vendor, domain.Order) error { return nil }

// HTTPNotifier POSTs a JSON payload to a fixed endpoint.
type HTTPNotifier struct {
	url    string
	http   *http.Client
	policy *bluemonday.Policy
	logger *zap.Logger
}

func NewHTTPNotifier(url string, timeout time.Duration, logger *zap.Logger) (*HTTPNotifier, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("notify: url is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPNotifier{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}, nil
}

type payload struct {
	Event  string        `json:"event"`
	Vendor domain.Vendor `json:"vendor"`
	Order  orderPayload  `json:"order"`
}

type orderPayload struct {
	ID           int64               `json:"id"`
	Status       domain.OrderStatus  `json:"status"`
	Channel      domain.OrderChannel `json:"channel"`
	Currency     string              `json:"currency"`
	TotalCents   int64               `json:"totalCents"`
	CustomerNote string              `json:"customerNote,omitempty"`
	LineItems    []domain.LineItem   `json:"lineItems"`
	Billing      domain.Address      `json:"billing"`
}

func (n *HTTPNotifier) OrderCompleted(ctx context.Context, vendor domain.Vendor, order domain.Order) error {
	body, err := json.Marshal(payload{
		Event:  "order.completed",
		Vendor: vendor,
		Order: orderPayload{
			ID:           order.ID,
			Status:       order.Status,
			Channel:      order.Channel,
			Currency:     order.Currency,
			TotalCents:   order.TotalCents,
			CustomerNote: strings.TrimSpace(n.policy.Sanitize(order.CustomerNote)),
			LineItems:    order.LineItems,
			Billing:      order.Billing,
		},
	})
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: unexpected status %d", resp.StatusCode)
	}
	n.logger.Info("notify: vendor notified", zap.Int64("order_id", order.ID), zap.Int64("vendor_id", vendor.ID))
	return nil
}
