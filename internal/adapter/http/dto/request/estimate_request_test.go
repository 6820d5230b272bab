package request

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaveEstimateRequest_ToCommand(t *testing.T) {
	qty := decimal.NewFromInt(2)
	price := decimal.NewFromInt(60)

	r := SaveEstimateRequest{
		EstimateID: "est-1",
		EstimateNo: "EST-20260801-1234",
		Customer:   CustomerRequest{ID: "cust-1", FirstName: "Ada"},
		TaxRate:    decimal.NewFromInt(8),
		TaxApply:   "parts_only",
		Notes:      "rear brakes",
		Jobs: []JobRequest{
			{Title: "Brakes", IsOptional: true, Items: []LineItemRequest{
				{Type: "LABOR", Desc: "Install", Qty: &qty, Price: &price, Taxable: true},
			}},
		},
	}

	cmd := r.ToCommand()
	if cmd.EstimateID != "est-1" || cmd.Customer.ID != "cust-1" {
		t.Fatalf("unexpected command identity: %+v", cmd)
	}
	if cmd.Header.EstimateNo != "EST-20260801-1234" || string(cmd.Header.TaxApply) != "parts_only" {
		t.Fatalf("unexpected header: %+v", cmd.Header)
	}
	if len(cmd.Jobs) != 1 || !cmd.Jobs[0].IsOptional || len(cmd.Jobs[0].Items) != 1 {
		t.Fatalf("unexpected jobs: %+v", cmd.Jobs)
	}
	item := cmd.Jobs[0].Items[0]
	if item.Qty == nil || !item.Qty.Equal(qty) || item.Price == nil || !item.Price.Equal(price) {
		t.Fatalf("unexpected item: %+v", item)
	}
	if !item.Taxable || item.Type != "LABOR" {
		t.Fatalf("unexpected item flags: %+v", item)
	}
}

func TestSaveEstimateRequest_ToCommandAbsentQtyPrice(t *testing.T) {
	r := SaveEstimateRequest{
		Jobs: []JobRequest{
			{Items: []LineItemRequest{{Type: "PART", Desc: "Pads"}}},
		},
	}

	cmd := r.ToCommand()
	item := cmd.Jobs[0].Items[0]
	if item.Qty != nil || item.Price != nil {
		t.Fatalf("expected absent qty/price preserved as nil, got %+v", item)
	}
}

func TestSaveInvoiceRequest_ToCommand(t *testing.T) {
	price := decimal.NewFromInt(20)

	r := SaveInvoiceRequest{
		InvoiceID:  "inv-1",
		CustomerID: "cust-1",
		TaxRate:    decimal.NewFromInt(8),
		Items: []InvoiceItemRequest{
			{Type: "DISCOUNT", Desc: "Loyalty", Price: &price, Taxable: true},
		},
	}

	cmd := r.ToCommand()
	if cmd.InvoiceID != "inv-1" || cmd.CustomerID != "cust-1" {
		t.Fatalf("unexpected command identity: %+v", cmd)
	}
	if len(cmd.Items) != 1 || cmd.Items[0].Type != "DISCOUNT" || cmd.Items[0].Qty != nil {
		t.Fatalf("unexpected items: %+v", cmd.Items)
	}
}
