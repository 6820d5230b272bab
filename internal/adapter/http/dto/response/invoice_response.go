package response

import (
	"time"

	"arm_backoffice/internal/domain/entities"
)

type InvoiceItemResponse struct {
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	Taxable     bool   `json:"taxable"`
	LineTotal   string `json:"line_total"`
	SortOrder   int    `json:"sort_order"`
}

type InvoiceResponse struct {
	ID         string `json:"id"`
	EstimateID string `json:"estimate_id,omitempty"`
	CustomerID string `json:"customer_id"`
	InvoiceNo  string `json:"invoice_no"`
	Status     string `json:"status"`

	Subtotal  string `json:"subtotal"`
	TaxRate   string `json:"tax_rate"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`

	Notes string `json:"notes,omitempty"`
	Token string `json:"token"`

	Items []InvoiceItemResponse `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromInvoice(inv entities.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = InvoiceItemResponse{
			ItemType:    string(li.ItemType),
			Description: li.Description,
			Qty:         li.Qty.String(),
			UnitPrice:   li.UnitPrice.StringFixed(2),
			Taxable:     li.Taxable,
			LineTotal:   li.LineTotal.StringFixed(2),
			SortOrder:   li.SortOrder,
		}
	}

	return InvoiceResponse{
		ID:         inv.ID,
		EstimateID: inv.EstimateID,
		CustomerID: inv.CustomerID,
		InvoiceNo:  inv.InvoiceNo,
		Status:     string(inv.Status),
		Subtotal:   inv.Subtotal.StringFixed(2),
		TaxRate:    inv.TaxRate.String(),
		TaxAmount:  inv.TaxAmount.StringFixed(2),
		Total:      inv.Total.StringFixed(2),
		Notes:      inv.Notes,
		Token:      inv.Token,
		Items:      items,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}
