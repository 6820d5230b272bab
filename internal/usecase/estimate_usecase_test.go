package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/domain/pricing"
	"arm_backoffice/internal/usecase/interfaces"
	mock_interfaces "arm_backoffice/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestEstimateUseCase_SaveCreate(t *testing.T) {
	t.Run("customer required", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		_, err := uc.Save(context.Background(), SaveEstimateCommand{})
		if !errors.Is(err, ErrCustomerRequired) {
			t.Fatalf("expected ErrCustomerRequired, got %v", err)
		}
	})

	t.Run("create success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, nil, entities.TaxApplyPartsLabor, "https://shop.example.com")

		customers.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Customer{})).DoAndReturn(
			func(_ context.Context, c entities.Customer) (entities.Customer, error) {
				if c.ID == "" || c.FirstName != "Ada" {
					t.Fatalf("unexpected customer: %+v", c)
				}
				return c, nil
			},
		)
		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Estimate{})).DoAndReturn(
			func(_ context.Context, e entities.Estimate) (entities.Estimate, error) {
				if e.ID == "" || e.Status != entities.EstimateStatusDraft || e.Version != 1 {
					t.Fatalf("unexpected estimate: %+v", e)
				}
				if len(e.Token) != 32 {
					t.Fatalf("expected 32-char token, got %q", e.Token)
				}
				if e.EstimateNo == "" {
					t.Fatalf("expected generated estimate number")
				}
				if !e.Total.Equal(dec(t, "108.00")) {
					t.Fatalf("expected total 108.00, got %s", e.Total)
				}
				if len(e.Jobs) != 1 || len(e.Items) != 1 {
					t.Fatalf("expected 1 job and 1 item, got %+v", e)
				}
				if e.Items[0].JobID != e.Jobs[0].ID {
					t.Fatalf("item not linked to its job")
				}
				return e, nil
			},
		)

		res, err := uc.Save(context.Background(), SaveEstimateCommand{
			Customer: CustomerInput{FirstName: "Ada"},
			Header:   EstimateHeader{TaxRate: dec(t, "8")},
			Jobs: []pricing.JobInput{
				{Title: "Brakes", Items: []pricing.ItemInput{
					{Type: "PART", Desc: "Pads", Qty: decPtr(t, "1"), Price: decPtr(t, "100"), Taxable: true},
				}},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ID == "" {
			t.Fatalf("expected generated id")
		}
	})

	t.Run("existing customer by id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, nil, entities.TaxApplyPartsLabor, "")

		customers.EXPECT().Update(gomock.Any(), gomock.AssignableToTypeOf(entities.Customer{})).DoAndReturn(
			func(_ context.Context, c entities.Customer) (entities.Customer, error) {
				if c.ID != "cust-1" {
					t.Fatalf("expected cust-1, got %q", c.ID)
				}
				return c, nil
			},
		)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e entities.Estimate) (entities.Estimate, error) {
				if e.CustomerID != "cust-1" {
					t.Fatalf("expected customer id carried, got %q", e.CustomerID)
				}
				return e, nil
			},
		)

		_, err := uc.Save(context.Background(), SaveEstimateCommand{Customer: CustomerInput{ID: "cust-1"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update unknown estimate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, nil, entities.TaxApplyPartsLabor, "")

		customers.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Customer{ID: "cust-1"}, nil)
		repo.EXPECT().GetByID(gomock.Any(), "est-missing").Return(entities.Estimate{}, nil)

		_, err := uc.Save(context.Background(), SaveEstimateCommand{
			EstimateID: "est-missing",
			Customer:   CustomerInput{ID: "cust-1"},
		})
		if !errors.Is(err, ErrEstimateNotFound) {
			t.Fatalf("expected ErrEstimateNotFound, got %v", err)
		}
	})
}

func TestEstimateUseCase_SaveRevocation(t *testing.T) {
	approvedAt := time.Now().Add(-30 * time.Minute)
	prev := entities.Estimate{
		ID:          "est-1",
		EstimateNo:  "EST-20260801-1234",
		CustomerID:  "cust-1",
		Status:      entities.EstimateStatusApproved,
		Version:     3,
		ApprovedAt:  &approvedAt,
		SignatureID: "sig-1",
		Subtotal:    dec(t, "100.00"),
		TaxRate:     dec(t, "8"),
		TaxAmount:   dec(t, "8.00"),
		Total:       dec(t, "108.00"),
		Token:       "tok",
		CreatedAt:   time.Now().Add(-time.Hour),
	}

	jobs := func(price string) []pricing.JobInput {
		return []pricing.JobInput{
			{Title: "Brakes", Items: []pricing.ItemInput{
				{Type: "PART", Desc: "Pads", Qty: decPtr(t, "1"), Price: decPtr(t, price), Taxable: true},
			}},
		}
	}

	t.Run("material edit revokes approval", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		audit := mock_interfaces.NewMockIAuditSink(ctrl)
		uc := NewEstimateUseCase(repo, customers, audit, nil, entities.TaxApplyPartsLabor, "")

		customers.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Customer{ID: "cust-1"}, nil)
		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(prev, nil)

		var saved entities.Estimate
		repo.EXPECT().Replace(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e entities.Estimate) (entities.Estimate, error) {
				saved = e
				return e, nil
			},
		)
		audit.EXPECT().Record(gomock.Any(), "estimate", "est-1", "approval_revoked", "admin", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _, _, _ string, meta map[string]any) error {
				if meta["reason"] != "edited" || meta["prev_status"] != "APPROVED" {
					t.Fatalf("unexpected audit meta: %+v", meta)
				}
				return nil
			},
		)

		_, err := uc.Save(context.Background(), SaveEstimateCommand{
			EstimateID: "est-1",
			Customer:   CustomerInput{ID: "cust-1"},
			Header:     EstimateHeader{TaxRate: dec(t, "8")},
			Jobs:       jobs("150"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Status != entities.EstimateStatusNeedsReapproval {
			t.Fatalf("expected NEEDS_REAPPROVAL, got %s", saved.Status)
		}
		if saved.Version != 4 {
			t.Fatalf("expected version 4, got %d", saved.Version)
		}
		if saved.ApprovedAt != nil || saved.SignatureID != "" {
			t.Fatalf("expected approval evidence cleared: %+v", saved)
		}
	})

	t.Run("cosmetic edit keeps approval", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		audit := mock_interfaces.NewMockIAuditSink(ctrl)
		uc := NewEstimateUseCase(repo, customers, audit, nil, entities.TaxApplyPartsLabor, "")

		customers.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Customer{ID: "cust-1"}, nil)
		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(prev, nil)

		var saved entities.Estimate
		repo.EXPECT().Replace(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e entities.Estimate) (entities.Estimate, error) {
				saved = e
				return e, nil
			},
		)
		// No audit expectation: unchanged totals must not revoke.

		_, err := uc.Save(context.Background(), SaveEstimateCommand{
			EstimateID: "est-1",
			Customer:   CustomerInput{ID: "cust-1"},
			Header:     EstimateHeader{TaxRate: dec(t, "8"), Notes: "call before arriving"},
			Jobs:       jobs("100"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Status != entities.EstimateStatusApproved {
			t.Fatalf("expected APPROVED preserved, got %s", saved.Status)
		}
		if saved.Version != 3 {
			t.Fatalf("expected version 3, got %d", saved.Version)
		}
		if saved.ApprovedAt == nil || saved.SignatureID != "sig-1" {
			t.Fatalf("expected approval evidence preserved: %+v", saved)
		}
	})
}

func TestEstimateUseCase_Send(t *testing.T) {
	estimate := entities.Estimate{
		ID:         "est-1",
		EstimateNo: "EST-20260801-1234",
		CustomerID: "cust-1",
		Status:     entities.EstimateStatusDraft,
		Total:      dec(t, "228.00"),
		Token:      "abc123",
	}

	t.Run("invalid id", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		_, err := uc.Send(context.Background(), "  ")
		if !errors.Is(err, ErrInvalidEstimateID) {
			t.Fatalf("expected ErrInvalidEstimateID, got %v", err)
		}
	})

	t.Run("customer without phone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, nil, entities.TaxApplyPartsLabor, "")

		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(estimate, nil)
		customers.EXPECT().GetByID(gomock.Any(), "cust-1").Return(entities.Customer{ID: "cust-1"}, nil)

		_, err := uc.Send(context.Background(), "est-1")
		if !errors.Is(err, ErrCustomerContactMissing) {
			t.Fatalf("expected ErrCustomerContactMissing, got %v", err)
		}
	})

	t.Run("draft promoted to sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationDispatcher(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, notifier, entities.TaxApplyPartsLabor, "https://shop.example.com/")

		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(estimate, nil)
		customers.EXPECT().GetByID(gomock.Any(), "cust-1").Return(entities.Customer{ID: "cust-1", Phone: "+15555550100"}, nil)
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n interfaces.Notification) error {
				if n.Recipient != "+15555550100" || n.DocumentNo != "EST-20260801-1234" {
					t.Fatalf("unexpected notification: %+v", n)
				}
				if n.PublicLink != "https://shop.example.com/estimates/abc123" {
					t.Fatalf("unexpected public link: %q", n.PublicLink)
				}
				if n.Total != "228.00" {
					t.Fatalf("unexpected total: %q", n.Total)
				}
				return nil
			},
		)
		sent := estimate
		sent.Status = entities.EstimateStatusSent
		repo.EXPECT().UpdateStatus(gomock.Any(), "est-1", entities.EstimateStatusSent).Return(sent, nil)

		res, err := uc.Send(context.Background(), "est-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != entities.EstimateStatusSent {
			t.Fatalf("expected SENT, got %s", res.Status)
		}
	})

	t.Run("resend keeps status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationDispatcher(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, notifier, entities.TaxApplyPartsLabor, "https://shop.example.com")

		already := estimate
		already.Status = entities.EstimateStatusSent
		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(already, nil)
		customers.EXPECT().GetByID(gomock.Any(), "cust-1").Return(entities.Customer{ID: "cust-1", Phone: "+15555550100"}, nil)
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
		// No UpdateStatus expectation: resend must not touch the status.

		res, err := uc.Send(context.Background(), "est-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != entities.EstimateStatusSent {
			t.Fatalf("expected SENT, got %s", res.Status)
		}
	})

	t.Run("delivery failure still promotes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		notifier := mock_interfaces.NewMockINotificationDispatcher(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, notifier, entities.TaxApplyPartsLabor, "https://shop.example.com")

		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(estimate, nil)
		customers.EXPECT().GetByID(gomock.Any(), "cust-1").Return(entities.Customer{ID: "cust-1", Phone: "+15555550100"}, nil)
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("sms down"))
		sent := estimate
		sent.Status = entities.EstimateStatusSent
		repo.EXPECT().UpdateStatus(gomock.Any(), "est-1", entities.EstimateStatusSent).Return(sent, nil)

		res, err := uc.Send(context.Background(), "est-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != entities.EstimateStatusSent {
			t.Fatalf("expected SENT, got %s", res.Status)
		}
	})

	t.Run("notifier not configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(repo, customers, nil, nil, entities.TaxApplyPartsLabor, "")

		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(estimate, nil)
		customers.EXPECT().GetByID(gomock.Any(), "cust-1").Return(entities.Customer{ID: "cust-1", Phone: "+15555550100"}, nil)

		_, err := uc.Send(context.Background(), "est-1")
		if !errors.Is(err, ErrNotifierNotConfigured) {
			t.Fatalf("expected ErrNotifierNotConfigured, got %v", err)
		}
	})
}

func TestEstimateUseCase_MarkStatus(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		_, err := uc.MarkStatus(context.Background(), "", entities.EstimateStatusApproved)
		if !errors.Is(err, ErrInvalidEstimateID) {
			t.Fatalf("expected ErrInvalidEstimateID, got %v", err)
		}
	})

	t.Run("rejects non-override statuses", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		for _, status := range []entities.EstimateStatus{entities.EstimateStatusDraft, entities.EstimateStatusSent, entities.EstimateStatusNeedsReapproval, "PAID"} {
			_, err := uc.MarkStatus(context.Background(), "est-1", status)
			if !errors.Is(err, ErrInvalidStatus) {
				t.Fatalf("status %s: expected ErrInvalidStatus, got %v", status, err)
			}
		}
	})

	t.Run("override succeeds", func(t *testing.T) {
		for _, status := range []entities.EstimateStatus{entities.EstimateStatusApproved, entities.EstimateStatusDeclined, entities.EstimateStatusExpired} {
			ctrl := gomock.NewController(t)
			repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
			uc := NewEstimateUseCase(repo, nil, nil, nil, "", "")
			repo.EXPECT().UpdateStatus(gomock.Any(), "est-1", status).Return(entities.Estimate{ID: "est-1", Status: status}, nil)

			res, err := uc.MarkStatus(context.Background(), " est-1 ", status)
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
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		uc := NewEstimateUseCase(repo, nil, nil, nil, "", "")
		repo.EXPECT().UpdateStatus(gomock.Any(), "est-1", entities.EstimateStatusApproved).Return(entities.Estimate{}, nil)

		_, err := uc.MarkStatus(context.Background(), "est-1", entities.EstimateStatusApproved)
		if !errors.Is(err, ErrEstimateNotFound) {
			t.Fatalf("expected ErrEstimateNotFound, got %v", err)
		}
	})
}

func TestEstimateUseCase_Getters(t *testing.T) {
	t.Run("GetByID not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		uc := NewEstimateUseCase(repo, nil, nil, nil, "", "")
		repo.EXPECT().GetByID(gomock.Any(), "est-1").Return(entities.Estimate{}, nil)

		_, err := uc.GetByID(context.Background(), "est-1")
		if !errors.Is(err, ErrEstimateNotFound) {
			t.Fatalf("expected ErrEstimateNotFound, got %v", err)
		}
	})

	t.Run("GetByID invalid", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		_, err := uc.GetByID(context.Background(), " ")
		if !errors.Is(err, ErrInvalidEstimateID) {
			t.Fatalf("expected ErrInvalidEstimateID, got %v", err)
		}
	})

	t.Run("GetByToken success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIEstimateRepository(ctrl)
		uc := NewEstimateUseCase(repo, nil, nil, nil, "", "")
		repo.EXPECT().GetByToken(gomock.Any(), "abc123").Return(entities.Estimate{ID: "est-1", Token: "abc123"}, nil)

		res, err := uc.GetByToken(context.Background(), " abc123 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ID != "est-1" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("GetByToken invalid", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		_, err := uc.GetByToken(context.Background(), "")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestEstimateUseCase_SearchCustomers(t *testing.T) {
	t.Run("blank query returns empty", func(t *testing.T) {
		uc := NewEstimateUseCase(nil, nil, nil, nil, "", "")
		res, err := uc.SearchCustomers(context.Background(), "   ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 0 {
			t.Fatalf("expected empty result, got %+v", res)
		}
	})

	t.Run("delegates to repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		customers := mock_interfaces.NewMockICustomerRepository(ctrl)
		uc := NewEstimateUseCase(nil, customers, nil, nil, "", "")
		customers.EXPECT().Search(gomock.Any(), "ada").Return([]entities.Customer{{ID: "cust-1"}}, nil)

		res, err := uc.SearchCustomers(context.Background(), " ada ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 1 || res[0].ID != "cust-1" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}
