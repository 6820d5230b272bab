package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "UNPAID"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

// InvoiceItem is structurally a LineItem without job grouping; invoices keep a
// flat item list because downstream PDF/payment collaborators depend on it.
type InvoiceItem struct {
	ItemType    ItemType        `json:"item_type"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Taxable     bool            `json:"taxable"`
	LineTotal   decimal.Decimal `json:"line_total"`
	SortOrder   int             `json:"sort_order"`
}

// Invoice is an independent billing document. When created by conversion it
// keeps a non-owning back-reference to the source estimate and is never
// re-derived if that estimate changes afterward.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (token-index): token
type Invoice struct {
	ID         string          `json:"id"`
	EstimateID string          `json:"estimate_id,omitempty"`
	CustomerID string          `json:"customer_id"`
	InvoiceNo  string          `json:"invoice_no"`
	Status     InvoiceStatus   `json:"status"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	Token      string          `json:"token"`

	Items []InvoiceItem `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
