package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimateStatus represents the lifecycle of a repair estimate.
//
// Domain notes:
//   - DRAFT -> SENT -> APPROVED -> {DECLINED, EXPIRED} via normal flow.
//   - APPROVED -> NEEDS_REAPPROVAL is system-driven: a material (amount-affecting)
//     edit after approval revokes the customer's prior approval.
//   - DECLINED and EXPIRED are terminal for automated transitions; an operator
//     override can still force APPROVED/DECLINED/EXPIRED from any state.
type EstimateStatus string

const (
	EstimateStatusDraft           EstimateStatus = "DRAFT"
	EstimateStatusSent            EstimateStatus = "SENT"
	EstimateStatusApproved        EstimateStatus = "APPROVED"
	EstimateStatusDeclined        EstimateStatus = "DECLINED"
	EstimateStatusExpired         EstimateStatus = "EXPIRED"
	EstimateStatusNeedsReapproval EstimateStatus = "NEEDS_REAPPROVAL"
)

// TaxApplyMode decides which line items feed the taxable base.
type TaxApplyMode string

const (
	// TaxApplyPartsLabor taxes every taxable line plus call-out/mileage fees.
	TaxApplyPartsLabor TaxApplyMode = "parts_labor"
	// TaxApplyPartsOnly taxes taxable PART lines only; fees never contribute.
	TaxApplyPartsOnly TaxApplyMode = "parts_only"
)

// ItemType tags a billable/discountable row. LABOR/PART/FEE/DISCOUNT are the
// operator-facing kinds; MILEAGE and CALLOUT are synthesized during invoice
// conversion for fees the estimate keeps as header fields.
type ItemType string

const (
	ItemTypeLabor    ItemType = "LABOR"
	ItemTypePart     ItemType = "PART"
	ItemTypeFee      ItemType = "FEE"
	ItemTypeDiscount ItemType = "DISCOUNT"
	ItemTypeMileage  ItemType = "MILEAGE"
	ItemTypeCallout  ItemType = "CALLOUT"
)

// JobStatus tracks per-job customer acceptance.
type JobStatus string

const (
	JobStatusPending  JobStatus = "PENDING"
	JobStatusApproved JobStatus = "APPROVED"
	JobStatusRejected JobStatus = "REJECTED"
)

// Job groups line items so the customer can accept or reject them independently.
type Job struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsOptional bool      `json:"is_optional"`
	Status     JobStatus `json:"status"`
	SortOrder  int       `json:"sort_order"`
}

// LineItem is one billable row of an estimate. LineTotal is qty*unit_price,
// negated for DISCOUNT lines.
type LineItem struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id,omitempty"`
	ItemType    ItemType        `json:"item_type"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Taxable     bool            `json:"taxable"`
	LineTotal   decimal.Decimal `json:"line_total"`
	SortOrder   int             `json:"sort_order"`
}

// Estimate is the priced, versioned proposal sent to a customer for approval.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (token-index): token
//
// Jobs and Items are embedded in the estimate document, so every save replaces
// the whole child collection in one atomic put.
//
// Monetary representation:
//   - decimal.Decimal everywhere, rounded to 2 places on persist.
//   - CalloutFee and mileage live on the header; they only become explicit line
//     items when the estimate is converted to an invoice.
type Estimate struct {
	ID          string          `json:"id"`
	EstimateNo  string          `json:"estimate_no"`
	CustomerID  string          `json:"customer_id"`
	Status      EstimateStatus  `json:"status"`
	Version     int             `json:"version"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	SignatureID string          `json:"signature_id,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`

	CalloutFee   decimal.Decimal `json:"callout_fee"`
	MileageMiles decimal.Decimal `json:"mileage_miles"`
	MileageRate  decimal.Decimal `json:"mileage_rate"`
	MileageTotal decimal.Decimal `json:"mileage_total"`

	Notes     string `json:"notes,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Token     string `json:"token"`

	Jobs  []Job      `json:"jobs"`
	Items []LineItem `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
