package request

import (
	"arm_backoffice/internal/usecase"

	"github.com/shopspring/decimal"
)

type InvoiceItemRequest struct {
	Type    string           `json:"type"`
	Desc    string           `json:"desc"`
	Qty     *decimal.Decimal `json:"qty"`
	Price   *decimal.Decimal `json:"price"`
	Taxable bool             `json:"taxable"`
}

// SaveInvoiceRequest creates or updates a standalone invoice. Invoices built
// by estimate conversion never pass through this payload.
type SaveInvoiceRequest struct {
	InvoiceID  string               `json:"invoice_id"`
	CustomerID string               `json:"customer_id"`
	InvoiceNo  string               `json:"invoice_no"`
	TaxRate    decimal.Decimal      `json:"tax_rate"`
	Notes      string               `json:"notes"`
	Items      []InvoiceItemRequest `json:"items"`
}

func (r SaveInvoiceRequest) ToCommand() usecase.SaveInvoiceCommand {
	items := make([]usecase.InvoiceItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = usecase.InvoiceItemInput{
			Type:    it.Type,
			Desc:    it.Desc,
			Qty:     it.Qty,
			Price:   it.Price,
			Taxable: it.Taxable,
		}
	}

	return usecase.SaveInvoiceCommand{
		InvoiceID:  r.InvoiceID,
		CustomerID: r.CustomerID,
		InvoiceNo:  r.InvoiceNo,
		TaxRate:    r.TaxRate,
		Notes:      r.Notes,
		Items:      items,
	}
}

// MarkInvoiceStatusRequest is the invoice status override payload.
type MarkInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
