package usecase

import (
	"context"
	"errors"
	"testing"

	"arm_backoffice/internal/domain/entities"
	mock_interfaces "arm_backoffice/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func approvedEstimate(t *testing.T) entities.Estimate {
	t.Helper()
	return entities.Estimate{
		ID:         "est-1",
		EstimateNo: "EST-20260801-1234",
		CustomerID: "cust-1",
		Status:     entities.EstimateStatusApproved,
		Subtotal:     dec(t, "271.95"),
		TaxRate:      dec(t, "8"),
		TaxAmount:    dec(t, "8.00"),
		Total:        dec(t, "279.95"),
		Notes:        "rear brakes",
		CalloutFee:   dec(t, "50.00"),
		MileageMiles: dec(t, "3.33"),
		MileageRate:  dec(t, "0.585"),
		MileageTotal: dec(t, "1.95"),
		Items: []entities.LineItem{
			{ID: "li-1", JobID: "job-1", ItemType: entities.ItemTypePart, Description: "Pads", Qty: dec(t, "1"), UnitPrice: dec(t, "100"), Taxable: true, LineTotal: dec(t, "100.00"), SortOrder: 0},
			{ID: "li-2", JobID: "job-1", ItemType: entities.ItemTypeLabor, Description: "Install", Qty: dec(t, "2"), UnitPrice: dec(t, "60"), Taxable: false, LineTotal: dec(t, "120.00"), SortOrder: 1},
		},
	}
}

func TestInvoiceUseCase_ConvertFromEstimate(t *testing.T) {
	t.Run("invalid estimate id", func(t *testing.T) {
		uc := NewInvoiceUseCase(nil, nil, nil)
		_, err := uc.ConvertFromEstimate(context.Background(), "  ")
		if !errors.Is(err, ErrInvalidEstimateID) {
			t.Fatalf("expected ErrInvalidEstimateID, got %v", err)
		}
	})

	t.Run("estimate not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		estimates := mock_interfaces.NewMockIEstimateRepository(ctrl)
		uc := NewInvoiceUseCase(nil, estimates, nil)
		estimates.EXPECT().GetByID(gomock.Any(), "est-1").Return(entities.Estimate{}, nil)

		_, err := uc.ConvertFromEstimate(context.Background(), "est-1")
		if !errors.Is(err, ErrEstimateNotFound) {
			t.Fatalf("expected ErrEstimateNotFound, got %v", err)
		}
	})

	t.Run("rejects non-approved estimates", func(t *testing.T) {
		for _, status := range []entities.EstimateStatus{
			entities.EstimateStatusDraft,
			entities.EstimateStatusSent,
			entities.EstimateStatusDeclined,
			entities.EstimateStatusNeedsReapproval,
		} {
			ctrl := gomock.NewController(t)
			estimates := mock_interfaces.NewMockIEstimateRepository(ctrl)
			uc := NewInvoiceUseCase(nil, estimates, nil)
			e := approvedEstimate(t)
			e.Status = status
			estimates.EXPECT().GetByID(gomock.Any(), "est-1").Return(e, nil)
			// No invoice repo expectations: conversion must stop cold.

			_, err := uc.ConvertFromEstimate(context.Background(), "est-1")
			if !errors.Is(err, ErrEstimateNotApproved) {
				t.Fatalf("status %s: expected ErrEstimateNotApproved, got %v", status, err)
			}
			ctrl.Finish()
		}
	})

	t.Run("copies money verbatim and synthesizes fee items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		estimates := mock_interfaces.NewMockIEstimateRepository(ctrl)
		audit := mock_interfaces.NewMockIAuditSink(ctrl)
		uc := NewInvoiceUseCase(repo, estimates, audit)

		e := approvedEstimate(t)
		estimates.EXPECT().GetByID(gomock.Any(), "est-1").Return(e, nil)

		var created entities.Invoice
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv entities.Invoice) (entities.Invoice, error) {
				created = inv
				return inv, nil
			},
		)
		audit.EXPECT().Record(gomock.Any(), "estimate", "est-1", "converted_to_invoice", "admin", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _, _, _ string, meta map[string]any) error {
				if meta["invoice_id"] == "" || meta["extras"] != 2 {
					t.Fatalf("unexpected audit meta: %+v", meta)
				}
				return nil
			},
		)

		res, err := uc.ConvertFromEstimate(context.Background(), "est-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ID == "" || res.Status != entities.InvoiceStatusUnpaid {
			t.Fatalf("unexpected invoice: %+v", res)
		}
		if created.EstimateID != "est-1" || created.CustomerID != "cust-1" {
			t.Fatalf("expected estimate back-reference, got %+v", created)
		}
		if !created.Subtotal.Equal(e.Subtotal) || !created.TaxAmount.Equal(e.TaxAmount) || !created.Total.Equal(e.Total) {
			t.Fatalf("expected money copied verbatim, got %+v", created)
		}
		if len(created.Items) != 4 {
			t.Fatalf("expected 2 copied + 2 synthesized items, got %d", len(created.Items))
		}
		callout := created.Items[2]
		if callout.ItemType != entities.ItemTypeCallout || callout.Description != "Call-out Fee" || !callout.Qty.Equal(dec(t, "1")) || callout.Taxable {
			t.Fatalf("unexpected callout item: %+v", callout)
		}
		mileage := created.Items[3]
		if mileage.ItemType != entities.ItemTypeMileage || mileage.Description != "Mileage (3.33 mi @ 0.59/mi)" {
			t.Fatalf("unexpected mileage item: %+v", mileage)
		}
		if !mileage.Qty.Equal(e.MileageMiles) || !mileage.UnitPrice.Equal(e.MileageRate) || !mileage.LineTotal.Equal(e.MileageTotal) {
			t.Fatalf("unexpected mileage amounts: %+v", mileage)
		}
		if len(created.Token) != 32 {
			t.Fatalf("expected fresh 32-char token, got %q", created.Token)
		}
	})

	t.Run("zero fees produce no extra items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		estimates := mock_interfaces.NewMockIEstimateRepository(ctrl)
		uc := NewInvoiceUseCase(repo, estimates, nil)

		e := approvedEstimate(t)
		e.CalloutFee = dec(t, "0")
		e.MileageMiles = dec(t, "0")
		e.MileageRate = dec(t, "0")
		e.MileageTotal = dec(t, "0")
		estimates.EXPECT().GetByID(gomock.Any(), "est-1").Return(e, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv entities.Invoice) (entities.Invoice, error) {
				if len(inv.Items) != 2 {
					t.Fatalf("expected items copied only, got %d", len(inv.Items))
				}
				return inv, nil
			},
		)

		if _, err := uc.ConvertFromEstimate(context.Background(), "est-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestInvoiceUseCase_Save(t *testing.T) {
	t.Run("customer required", func(t *testing.T) {
		uc := NewInvoiceUseCase(nil, nil, nil)
		_, err := uc.Save(context.Background(), SaveInvoiceCommand{})
		if !errors.Is(err, ErrCustomerRequired) {
			t.Fatalf("expected ErrCustomerRequired, got %v", err)
		}
	})

	t.Run("create computes signed totals", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv entities.Invoice) (entities.Invoice, error) {
				if inv.Status != entities.InvoiceStatusUnpaid || inv.InvoiceNo == "" || len(inv.Token) != 32 {
					t.Fatalf("unexpected invoice: %+v", inv)
				}
				// 100 + 120 - 20 = 200 subtotal; taxable base 100 - 20 = 80 -> 6.40 tax.
				if !inv.Subtotal.Equal(dec(t, "200.00")) {
					t.Fatalf("expected subtotal 200.00, got %s", inv.Subtotal)
				}
				if !inv.TaxAmount.Equal(dec(t, "6.40")) {
					t.Fatalf("expected tax 6.40, got %s", inv.TaxAmount)
				}
				if !inv.Total.Equal(dec(t, "206.40")) {
					t.Fatalf("expected total 206.40, got %s", inv.Total)
				}
				if inv.Items[2].ItemType != entities.ItemTypeDiscount || !inv.Items[2].LineTotal.Equal(dec(t, "-20.00")) {
					t.Fatalf("expected discount forced negative, got %+v", inv.Items[2])
				}
				return inv, nil
			},
		)

		_, err := uc.Save(context.Background(), SaveInvoiceCommand{
			CustomerID: "cust-1",
			TaxRate:    dec(t, "8"),
			Items: []InvoiceItemInput{
				{Type: "PART", Desc: "Pads", Qty: decPtr(t, "1"), Price: decPtr(t, "100"), Taxable: true},
				{Type: "LABOR", Desc: "Install", Qty: decPtr(t, "2"), Price: decPtr(t, "60")},
				{Type: "DISCOUNT", Desc: "Loyalty", Qty: decPtr(t, "1"), Price: decPtr(t, "20"), Taxable: true},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update preserves identity fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)

		prev := entities.Invoice{
			ID:         "inv-1",
			EstimateID: "est-1",
			CustomerID: "cust-1",
			InvoiceNo:  "INV-20260801-4821",
			Status:     entities.InvoiceStatusPaid,
			Token:      "tok-inv",
		}
		repo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(prev, nil)
		repo.EXPECT().Replace(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv entities.Invoice) (entities.Invoice, error) {
				if inv.ID != "inv-1" || inv.EstimateID != "est-1" || inv.Token != "tok-inv" {
					t.Fatalf("expected identity preserved, got %+v", inv)
				}
				if inv.Status != entities.InvoiceStatusPaid {
					t.Fatalf("expected status preserved, got %s", inv.Status)
				}
				if inv.InvoiceNo != "INV-20260801-4821" {
					t.Fatalf("expected invoice number carried, got %q", inv.InvoiceNo)
				}
				return inv, nil
			},
		)

		_, err := uc.Save(context.Background(), SaveInvoiceCommand{
			InvoiceID:  "inv-1",
			CustomerID: "cust-1",
			TaxRate:    dec(t, "8"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update unknown invoice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)
		repo.EXPECT().GetByID(gomock.Any(), "inv-missing").Return(entities.Invoice{}, nil)

		_, err := uc.Save(context.Background(), SaveInvoiceCommand{InvoiceID: "inv-missing", CustomerID: "cust-1"})
		if !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})
}

func TestInvoiceUseCase_MarkStatus(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		uc := NewInvoiceUseCase(nil, nil, nil)
		_, err := uc.MarkStatus(context.Background(), " ", entities.InvoiceStatusPaid)
		if !errors.Is(err, ErrInvalidInvoiceID) {
			t.Fatalf("expected ErrInvalidInvoiceID, got %v", err)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		uc := NewInvoiceUseCase(nil, nil, nil)
		_, err := uc.MarkStatus(context.Background(), "inv-1", "APPROVED")
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		for _, status := range []entities.InvoiceStatus{entities.InvoiceStatusUnpaid, entities.InvoiceStatusPaid, entities.InvoiceStatusVoid} {
			ctrl := gomock.NewController(t)
			repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
			uc := NewInvoiceUseCase(repo, nil, nil)
			repo.EXPECT().UpdateStatus(gomock.Any(), "inv-1", status).Return(entities.Invoice{ID: "inv-1", Status: status}, nil)

			res, err := uc.MarkStatus(context.Background(), "inv-1", status)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Status != status {
				t.Fatalf("expected %s, got %s", status, res.Status)
			}
			ctrl.Finish()
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "inv-1", entities.InvoiceStatusPaid).Return(entities.Invoice{}, nil)

		_, err := uc.MarkStatus(context.Background(), "inv-1", entities.InvoiceStatusPaid)
		if !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})
}

func TestInvoiceUseCase_Getters(t *testing.T) {
	t.Run("GetByID success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)
		repo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(entities.Invoice{ID: "inv-1"}, nil)

		res, err := uc.GetByID(context.Background(), " inv-1 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ID != "inv-1" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("GetByToken not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIInvoiceRepository(ctrl)
		uc := NewInvoiceUseCase(repo, nil, nil)
		repo.EXPECT().GetByToken(gomock.Any(), "tok").Return(entities.Invoice{}, nil)

		_, err := uc.GetByToken(context.Background(), "tok")
		if !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
		}
	})
}
