package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

const (
	apiPath        = "/wp-json/wc/v3"
	vendorAPIPath  = "/wp-json/mvx/v1"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// APIError is a non-2xx answer from the commerce backend other than 404.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("commerce api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("commerce api: status %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Client talks to the WooCommerce-style REST API that owns orders, customers and vendors.
type Client struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
	logger  *zap.Logger
}

// OrderUpdate carries the order fields this service is allowed to change. Nil fields are left alone.
type OrderUpdate struct {
	Status        *domain.OrderStatus
	PaymentMethod *string
	Billing       *domain.Address
	Shipping      *domain.Address
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("commerce: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("commerce: parse base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		key:     opts.ConsumerKey,
		secret:  opts.ConsumerSecret,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var out wcOrder
	if err := c.do(ctx, http.MethodGet, apiPath+"/orders/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	order := toDomainOrder(out)
	return &order, nil
}

func (c *Client) GetOnHoldOrder(ctx context.Context, customerID int64) (*domain.Order, error) {
	return c.firstOrder(ctx, customerID, domain.OrderStatusOnHold)
}

func (c *Client) GetProcessingOrder(ctx context.Context, customerID int64) (*domain.Order, error) {
	return c.firstOrder(ctx, customerID, domain.OrderStatusProcessing)
}

func (c *Client) GetPendingOrder(ctx context.Context, customerID int64) (*domain.Order, error) {
	return c.firstOrder(ctx, customerID, domain.OrderStatusPending)
}

// ListOrders returns the customer's orders in any of the given statuses, in the
// backend's default order. An empty result is not an error.
func (c *Client) ListOrders(ctx context.Context, customerID int64, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return c.listOrders(ctx, customerID, statuses, 0)
}

// UpdateOrderStatus moves an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	return c.UpdateOrder(ctx, id, OrderUpdate{Status: &status})
}

// UpdateOrder writes the non-nil fields of upd onto the order.
func (c *Client) UpdateOrder(ctx context.Context, id int64, upd OrderUpdate) (*domain.Order, error) {
	body := map[string]any{}
	if upd.Status != nil {
		body["status"] = string(*upd.Status)
	}
	if upd.PaymentMethod != nil {
		body["payment_method"] = *upd.PaymentMethod
	}
	if upd.Billing != nil {
		body["billing"] = fromDomainAddress(*upd.Billing)
	}
	if upd.Shipping != nil {
		body["shipping"] = fromDomainAddress(*upd.Shipping)
	}
	if len(body) == 0 {
		return nil, errors.New("commerce: empty order update")
	}
	var out wcOrder
	if err := c.do(ctx, http.MethodPut, apiPath+"/orders/"+strconv.FormatInt(id, 10), nil, body, &out); err != nil {
		return nil, err
	}
	order := toDomainOrder(out)
	c.logger.Info("commerce: order updated", zap.Int64("order_id", id), zap.String("status", string(order.Status)))
	return &order, nil
}

// GetCustomer fetches the buyer profile, including the invoice_type preference.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*domain.UserProfile, error) {
	var out wcCustomer
	if err := c.do(ctx, http.MethodGet, apiPath+"/customers/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	p := toDomainProfile(out)
	return &p, nil
}

// GetVendorForOrder resolves the gallery selling the order's first artwork.
func (c *Client) GetVendorForOrder(ctx context.Context, order domain.Order) (*domain.Vendor, error) {
	if len(order.LineItems) == 0 {
		return nil, domain.ErrNotFound
	}
	var product wcProduct
	path := apiPath + "/products/" + strconv.FormatInt(order.LineItems[0].ProductID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &product); err != nil {
		return nil, err
	}
	id := vendorID(product.Vendor)
	if id == 0 {
		return nil, domain.ErrNotFound
	}
	var v wcVendor
	if err := c.do(ctx, http.MethodGet, vendorAPIPath+"/vendors/"+strconv.FormatInt(id, 10), nil, nil, &v); err != nil {
		return nil, err
	}
	if v.ID == 0 {
		v.ID = id
	}
	return &domain.Vendor{ID: v.ID, Name: v.Name, Email: v.Email, Slug: v.Slug}, nil
}

// Post sends a JSON body to an arbitrary backend path. The payment gateway uses it
// for the backend's intent endpoints.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) firstOrder(ctx context.Context, customerID int64, status domain.OrderStatus) (*domain.Order, error) {
	orders, err := c.listOrders(ctx, customerID, []domain.OrderStatus{status}, 1)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (c *Client) listOrders(ctx context.Context, customerID int64, statuses []domain.OrderStatus, limit int) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("customer", strconv.FormatInt(customerID, 10))
	if len(statuses) > 0 {
		parts := make([]string, 0, len(statuses))
		for _, s := range statuses {
			parts = append(parts, string(s))
		}
		q.Set("status", strings.Join(parts, ","))
	}
	if limit > 0 {
		q.Set("per_page", strconv.Itoa(limit))
	}
	var out []wcOrder
	if err := c.do(ctx, http.MethodGet, apiPath+"/orders", q, nil, &out); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(out))
	for _, o := range out {
		orders = append(orders, toDomainOrder(o))
	}
	c.logger.Debug("commerce: list orders",
		zap.Int64("customer_id", customerID),
		zap.String("status", q.Get("status")),
		zap.Int("count", len(orders)),
	)
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("commerce: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.SetBasicAuth(c.key, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("commerce: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
