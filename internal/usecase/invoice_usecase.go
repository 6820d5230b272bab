package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvalidInvoiceID    = errors.New("invalid invoice id")
	ErrEstimateNotApproved = errors.New("estimate must be approved before conversion")
)

// InvoiceItemInput is one raw invoice row. Unlike estimate rows, invoices
// accept all six item types directly.
type InvoiceItemInput struct {
	Type    string           `json:"type"`
	Desc    string           `json:"desc"`
	Qty     *decimal.Decimal `json:"qty"`
	Price   *decimal.Decimal `json:"price"`
	Taxable bool             `json:"taxable"`
}

// SaveInvoiceCommand creates or updates a standalone invoice. An empty
// InvoiceID creates; otherwise the invoice is replaced in place.
type SaveInvoiceCommand struct {
	InvoiceID  string
	CustomerID string
	InvoiceNo  string
	TaxRate    decimal.Decimal
	Notes      string
	Items      []InvoiceItemInput
}

// IInvoiceUseCase exposes invoice operations.
//
// ConvertFromEstimate snapshots an APPROVED estimate into a new invoice; the
// invoice is independent from then on and never re-derived. Save handles
// standalone invoices with their own, simpler pricing rules: signed taxable
// base, no clamping, no tax-apply mode.
type IInvoiceUseCase interface {
	ConvertFromEstimate(ctx context.Context, estimateID string) (entities.Invoice, error)
	Save(ctx context.Context, cmd SaveInvoiceCommand) (entities.Invoice, error)
	MarkStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	GetByToken(ctx context.Context, token string) (entities.Invoice, error)
}

type InvoiceUseCase struct {
	repo      interfaces.IInvoiceRepository
	estimates interfaces.IEstimateRepository
	audit     interfaces.IAuditSink
}

var _ IInvoiceUseCase = (*InvoiceUseCase)(nil)

func NewInvoiceUseCase(
	repo interfaces.IInvoiceRepository,
	estimates interfaces.IEstimateRepository,
	audit interfaces.IAuditSink,
) *InvoiceUseCase {
	return &InvoiceUseCase{repo: repo, estimates: estimates, audit: audit}
}

// ConvertFromEstimate copies an APPROVED estimate's money fields and items
// verbatim into a new UNPAID invoice. Header fees become explicit items so the
// invoice's item list fully explains its subtotal. Totals are copied, never
// recomputed, so invoice and estimate always show the same amounts.
func (u *InvoiceUseCase) ConvertFromEstimate(ctx context.Context, estimateID string) (entities.Invoice, error) {
	estimateID = strings.TrimSpace(estimateID)
	if estimateID == "" {
		return entities.Invoice{}, ErrInvalidEstimateID
	}

	e, err := u.estimates.GetByID(ctx, estimateID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if e.ID == "" {
		return entities.Invoice{}, ErrEstimateNotFound
	}
	if e.Status != entities.EstimateStatusApproved {
		return entities.Invoice{}, ErrEstimateNotApproved
	}

	items := make([]entities.InvoiceItem, 0, len(e.Items)+2)
	for _, it := range e.Items {
		items = append(items, entities.InvoiceItem{
			ItemType:    it.ItemType,
			Description: it.Description,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			Taxable:     it.Taxable,
			LineTotal:   it.LineTotal,
			SortOrder:   len(items),
		})
	}

	extras := 0
	if e.CalloutFee.IsPositive() {
		items = append(items, entities.InvoiceItem{
			ItemType:    entities.ItemTypeCallout,
			Description: "Call-out Fee",
			Qty:         decimal.NewFromInt(1),
			UnitPrice:   e.CalloutFee,
			Taxable:     false,
			LineTotal:   e.CalloutFee,
			SortOrder:   len(items),
		})
		extras++
	}
	if e.MileageTotal.IsPositive() {
		items = append(items, entities.InvoiceItem{
			ItemType:    entities.ItemTypeMileage,
			Description: fmt.Sprintf("Mileage (%s mi @ %s/mi)", e.MileageMiles.StringFixed(2), e.MileageRate.StringFixed(2)),
			Qty:         e.MileageMiles,
			UnitPrice:   e.MileageRate,
			Taxable:     false,
			LineTotal:   e.MileageTotal,
			SortOrder:   len(items),
		})
		extras++
	}

	now := time.Now().UTC()
	inv := entities.Invoice{
		ID:         uuid.NewString(),
		EstimateID: e.ID,
		CustomerID: e.CustomerID,
		InvoiceNo:  generateInvoiceNo(),
		Status:     entities.InvoiceStatusUnpaid,
		Subtotal:   e.Subtotal,
		TaxRate:    e.TaxRate,
		TaxAmount:  e.TaxAmount,
		Total:      e.Total,
		Notes:      e.Notes,
		Token:      generateToken(),
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := u.repo.Create(ctx, inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	log.Printf("[invoice][usecase] converted estimate_id=%s invoice_id=%s invoice_no=%s", e.ID, created.ID, created.InvoiceNo)
	u.recordAudit(ctx, "estimate", e.ID, "converted_to_invoice", map[string]any{
		"invoice_id": created.ID,
		"extras":     extras,
	})
	return created, nil
}

// Save creates or replaces a standalone invoice. Invoice pricing differs from
// estimate pricing: all six item types are accepted, DISCOUNT totals are
// forced negative, and the taxable base is the signed sum of taxable lines
// with no clamping and no tax-apply mode.
func (u *InvoiceUseCase) Save(ctx context.Context, cmd SaveInvoiceCommand) (entities.Invoice, error) {
	cmd.CustomerID = strings.TrimSpace(cmd.CustomerID)
	if cmd.CustomerID == "" {
		return entities.Invoice{}, ErrCustomerRequired
	}

	var prev entities.Invoice
	updating := strings.TrimSpace(cmd.InvoiceID) != ""
	if updating {
		var err error
		prev, err = u.repo.GetByID(ctx, strings.TrimSpace(cmd.InvoiceID))
		if err != nil {
			return entities.Invoice{}, err
		}
		if prev.ID == "" {
			return entities.Invoice{}, ErrInvoiceNotFound
		}
	}

	items, subtotal, taxableBase := normalizeInvoiceItems(cmd.Items)
	taxAmount := taxableBase.Mul(cmd.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(taxAmount).Round(2)

	now := time.Now().UTC()
	inv := entities.Invoice{
		CustomerID: cmd.CustomerID,
		InvoiceNo:  strings.TrimSpace(cmd.InvoiceNo),
		Subtotal:   subtotal,
		TaxRate:    cmd.TaxRate.Round(2),
		TaxAmount:  taxAmount,
		Total:      total,
		Notes:      cmd.Notes,
		Items:      items,
		UpdatedAt:  now,
	}

	if !updating {
		inv.ID = uuid.NewString()
		inv.Status = entities.InvoiceStatusUnpaid
		inv.Token = generateToken()
		inv.CreatedAt = now
		if inv.InvoiceNo == "" {
			inv.InvoiceNo = generateInvoiceNo()
		}
		created, err := u.repo.Create(ctx, inv)
		if err != nil {
			return entities.Invoice{}, err
		}
		log.Printf("[invoice][usecase] created invoice_id=%s invoice_no=%s total=%s", created.ID, created.InvoiceNo, created.Total.StringFixed(2))
		return created, nil
	}

	inv.ID = prev.ID
	inv.EstimateID = prev.EstimateID
	inv.Status = prev.Status
	inv.Token = prev.Token
	inv.CreatedAt = prev.CreatedAt
	if inv.InvoiceNo == "" {
		inv.InvoiceNo = prev.InvoiceNo
	}
	return u.repo.Replace(ctx, inv)
}

// normalizeInvoiceItems mirrors estimate normalization but accepts every item
// type and computes the invoice's signed taxable base alongside.
func normalizeInvoiceItems(rows []InvoiceItemInput) ([]entities.InvoiceItem, decimal.Decimal, decimal.Decimal) {
	items := make([]entities.InvoiceItem, 0, len(rows))
	subtotal := decimal.Zero
	taxableBase := decimal.Zero

	for _, row := range rows {
		desc := strings.TrimSpace(row.Desc)
		if desc == "" {
			continue
		}
		itemType := normalizeInvoiceItemType(row.Type)
		qty := decimal.NewFromInt(1)
		if row.Qty != nil {
			qty = *row.Qty
		}
		price := decimal.Zero
		if row.Price != nil {
			price = *row.Price
		}
		lineTotal := qty.Mul(price).Round(2)
		if itemType == entities.ItemTypeDiscount {
			lineTotal = lineTotal.Abs().Neg()
		}

		items = append(items, entities.InvoiceItem{
			ItemType:    itemType,
			Description: desc,
			Qty:         qty,
			UnitPrice:   price,
			Taxable:     row.Taxable,
			LineTotal:   lineTotal,
			SortOrder:   len(items),
		})
		subtotal = subtotal.Add(lineTotal)
		if row.Taxable {
			taxableBase = taxableBase.Add(lineTotal)
		}
	}
	return items, subtotal.Round(2), taxableBase.Round(2)
}

var invoiceItemTypes = map[entities.ItemType]bool{
	entities.ItemTypeLabor:    true,
	entities.ItemTypePart:     true,
	entities.ItemTypeFee:      true,
	entities.ItemTypeDiscount: true,
	entities.ItemTypeMileage:  true,
	entities.ItemTypeCallout:  true,
}

func normalizeInvoiceItemType(raw string) entities.ItemType {
	t := entities.ItemType(strings.ToUpper(strings.TrimSpace(raw)))
	if !invoiceItemTypes[t] {
		return entities.ItemTypeLabor
	}
	return t
}

// invoiceStatuses are the values accepted by the operator status override.
var invoiceStatuses = map[entities.InvoiceStatus]bool{
	entities.InvoiceStatusUnpaid: true,
	entities.InvoiceStatusPaid:   true,
	entities.InvoiceStatusVoid:   true,
}

func (u *InvoiceUseCase) MarkStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Invoice{}, ErrInvalidInvoiceID
	}
	if !invoiceStatuses[status] {
		return entities.Invoice{}, ErrInvalidStatus
	}

	updated, err := u.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return entities.Invoice{}, err
	}
	if updated.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return updated, nil
}

func (u *InvoiceUseCase) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Invoice{}, ErrInvalidInvoiceID
	}

	inv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (u *InvoiceUseCase) GetByToken(ctx context.Context, token string) (entities.Invoice, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Invoice{}, ErrInvalidToken
	}

	inv, err := u.repo.GetByToken(ctx, token)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (u *InvoiceUseCase) recordAudit(ctx context.Context, entity, entityID, action string, meta map[string]any) {
	if u.audit == nil {
		return
	}
	if err := u.audit.Record(ctx, entity, entityID, action, auditActor, meta); err != nil {
		log.Printf("[invoice][usecase] audit record failed entity=%s id=%s action=%s err=%v", entity, entityID, action, err)
	}
}
