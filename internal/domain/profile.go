package domain

type InvoiceType string

const (
	InvoiceTypeReceipt InvoiceType = "receipt"
	InvoiceTypeInvoice InvoiceType = "invoice"
)

// UserProfile is the buyer's account as known to the commerce backend.
type UserProfile struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName,omitempty"`
	LastName    string      `json:"lastName,omitempty"`
	Billing     Address     `json:"billing"`
	Shipping    Address     `json:"shipping"`
	InvoiceType InvoiceType `json:"invoiceType,omitempty"`
}

// Vendor is the gallery or auction house selling an order's artworks.
type Vendor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Slug  string `json:"slug,omitempty"`
}
