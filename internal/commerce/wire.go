package commerce

import (
	"strconv"
	"strings"
	"time"

	"artpay-checkout/internal/domain"
)

// wcOrder mirrors the subset of the WooCommerce v3 order resource used here.
type wcOrder struct {
	ID                 int64        `json:"id"`
	OrderKey           string       `json:"order_key"`
	Status             string       `json:"status"`
	Currency           string       `json:"currency"`
	Total              string       `json:"total"`
	CustomerID         int64        `json:"customer_id"`
	CustomerNote       string       `json:"customer_note"`
	CreatedVia         string       `json:"created_via"`
	PaymentMethod      string       `json:"payment_method"`
	PaymentMethodTitle string       `json:"payment_method_title"`
	DateCreatedGMT     string       `json:"date_created_gmt"`
	Billing            wcAddress    `json:"billing"`
	Shipping           wcAddress    `json:"shipping"`
	LineItems          []wcLineItem `json:"line_items"`
}

type wcLineItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Total     string `json:"total"`
}

type wcAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type wcMeta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type wcCustomer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Billing   wcAddress `json:"billing"`
	Shipping  wcAddress `json:"shipping"`
	MetaData  []wcMeta  `json:"meta_data"`
}

type wcProduct struct {
	ID     int64 `json:"id"`
	Vendor any   `json:"vendor"`
}

type wcVendor struct {
	ID    int64  `json:"id"`
	Name  string `json:"display_name"`
	Email string `json:"email"`
	Slug  string `json:"shop_slug"`
}

const auctionChannel = "gallery_auction"

func toDomainOrder(o wcOrder) domain.Order {
	channel := domain.OrderChannelGallery
	if strings.EqualFold(strings.TrimSpace(o.CreatedVia), auctionChannel) {
		channel = domain.OrderChannelAuction
	}
	items := make([]domain.LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, domain.LineItem{
			ID:            li.ID,
			ProductID:     li.ProductID,
			Name:          li.Name,
			Quantity:      li.Quantity,
			SubtotalCents: parseCents(li.Subtotal),
			TotalCents:    parseCents(li.Total),
		})
	}
	var created time.Time
	if o.DateCreatedGMT != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", o.DateCreatedGMT); err == nil {
			created = t.UTC()
		}
	}
	return domain.Order{
		ID:                 o.ID,
		Key:                o.OrderKey,
		Status:             domain.OrderStatus(o.Status),
		PaymentMethod:      o.PaymentMethod,
		PaymentMethodTitle: o.PaymentMethodTitle,
		CustomerID:         o.CustomerID,
		LineItems:          items,
		CustomerNote:       o.CustomerNote,
		Channel:            channel,
		Currency:           o.Currency,
		TotalCents:         parseCents(o.Total),
		Billing:            toDomainAddress(o.Billing),
		Shipping:           toDomainAddress(o.Shipping),
		CreatedAt:          created,
	}
}

func toDomainAddress(a wcAddress) domain.Address {
	return domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

func fromDomainAddress(a domain.Address) wcAddress {
	return wcAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

func toDomainProfile(c wcCustomer) domain.UserProfile {
	p := domain.UserProfile{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Billing:   toDomainAddress(c.Billing),
		Shipping:  toDomainAddress(c.Shipping),
	}
	for _, m := range c.MetaData {
		if m.Key != "invoice_type" {
			continue
		}
		if v, ok := m.Value.(string); ok {
			p.InvoiceType = domain.InvoiceType(strings.ToLower(strings.TrimSpace(v)))
		}
	}
	return p
}

// vendorID reads the product's vendor reference, which the marketplace plugin
// returns either as a bare id or as an object with an id field.
func vendorID(raw any) int64 {
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	case map[string]any:
		return vendorID(v["id"])
	}
	return 0
}

// parseCents converts a decimal money string such as "1250.5" to cents.
func parseCents(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	frac = (frac + "00")[:2]
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0
	}
	total := units*100 + cents
	if neg {
		return -total
	}
	return total
}
