package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/domain/pricing"
	"arm_backoffice/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEstimateNotFound       = errors.New("estimate not found")
	ErrInvalidEstimateID      = errors.New("invalid estimate id")
	ErrInvalidToken           = errors.New("invalid token")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrCustomerRequired       = errors.New("select or create a customer")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrCustomerContactMissing = errors.New("customer phone missing")
	ErrNotifierNotConfigured  = errors.New("notification dispatcher not configured")
)

// materialChangeThreshold is the cent-level tolerance for the revocation rule:
// an edit only revokes a prior approval when subtotal, tax or total move by
// more than this.
var materialChangeThreshold = decimal.NewFromFloat(0.009)

// auditActor attributes events until operator identity is threaded through.
const auditActor = "admin"

// CustomerInput identifies an existing customer by ID or carries the fields to
// create/update one during an estimate save.
type CustomerInput struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Zip       string
}

// EstimateHeader carries the non-line-item fields of a save.
type EstimateHeader struct {
	EstimateNo   string
	TaxRate      decimal.Decimal
	TaxApply     entities.TaxApplyMode // empty = service default
	CalloutFee   decimal.Decimal
	MileageMiles decimal.Decimal
	MileageRate  decimal.Decimal
	Notes        string
	ExpiresAt    string
}

// SaveEstimateCommand is the full save payload. An empty EstimateID creates a
// new DRAFT estimate; otherwise the existing one is updated in place with all
// jobs/items replaced.
type SaveEstimateCommand struct {
	EstimateID string
	Customer   CustomerInput
	Header     EstimateHeader
	Jobs       []pricing.JobInput
}

// IEstimateUseCase exposes the estimate lifecycle operations.
//
//   - Save recomputes totals on every call and applies the approval-revocation
//     rule when a material change lands on an APPROVED estimate.
//   - Send dispatches the public link and promotes DRAFT to SENT.
//   - MarkStatus is the unconditional operator override; it deliberately
//     bypasses the revocation check.
type IEstimateUseCase interface {
	Save(ctx context.Context, cmd SaveEstimateCommand) (entities.Estimate, error)
	Send(ctx context.Context, id string) (entities.Estimate, error)
	MarkStatus(ctx context.Context, id string, status entities.EstimateStatus) (entities.Estimate, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	GetByToken(ctx context.Context, token string) (entities.Estimate, error)
	SearchCustomers(ctx context.Context, query string) ([]entities.Customer, error)
}

type EstimateUseCase struct {
	repo          interfaces.IEstimateRepository
	customers     interfaces.ICustomerRepository
	audit         interfaces.IAuditSink
	notifier      interfaces.INotificationDispatcher
	taxApply      entities.TaxApplyMode
	publicBaseURL string
}

var _ IEstimateUseCase = (*EstimateUseCase)(nil)

func NewEstimateUseCase(
	repo interfaces.IEstimateRepository,
	customers interfaces.ICustomerRepository,
	audit interfaces.IAuditSink,
	notifier interfaces.INotificationDispatcher,
	taxApply entities.TaxApplyMode,
	publicBaseURL string,
) *EstimateUseCase {
	if taxApply != entities.TaxApplyPartsOnly {
		taxApply = entities.TaxApplyPartsLabor
	}
	return &EstimateUseCase{
		repo:          repo,
		customers:     customers,
		audit:         audit,
		notifier:      notifier,
		taxApply:      taxApply,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (u *EstimateUseCase) Save(ctx context.Context, cmd SaveEstimateCommand) (entities.Estimate, error) {
	now := time.Now().UTC()

	customerID, err := u.resolveCustomer(ctx, cmd.Customer, now)
	if err != nil {
		return entities.Estimate{}, err
	}

	var prev entities.Estimate
	updating := strings.TrimSpace(cmd.EstimateID) != ""
	if updating {
		prev, err = u.repo.GetByID(ctx, strings.TrimSpace(cmd.EstimateID))
		if err != nil {
			return entities.Estimate{}, err
		}
		if prev.ID == "" {
			return entities.Estimate{}, ErrEstimateNotFound
		}
	}

	jobSpecs, normalized := pricing.NormalizeJobs(cmd.Jobs)

	taxApply := cmd.Header.TaxApply
	if taxApply != entities.TaxApplyPartsLabor && taxApply != entities.TaxApplyPartsOnly {
		taxApply = u.taxApply
	}
	totals := pricing.Compute(normalized, cmd.Header.TaxRate, taxApply,
		cmd.Header.CalloutFee, cmd.Header.MileageMiles, cmd.Header.MileageRate)

	jobs := make([]entities.Job, len(jobSpecs))
	for i, js := range jobSpecs {
		jobs[i] = entities.Job{
			ID:         uuid.NewString(),
			Title:      js.Title,
			IsOptional: js.IsOptional,
			Status:     entities.JobStatusPending,
			SortOrder:  js.SortOrder,
		}
	}
	items := make([]entities.LineItem, len(normalized))
	for i, it := range normalized {
		items[i] = entities.LineItem{
			ID:          uuid.NewString(),
			JobID:       jobs[it.JobIndex].ID,
			ItemType:    it.ItemType,
			Description: it.Description,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			Taxable:     it.Taxable,
			LineTotal:   it.LineTotal,
			SortOrder:   it.SortOrder,
		}
	}

	e := entities.Estimate{
		EstimateNo:   strings.TrimSpace(cmd.Header.EstimateNo),
		CustomerID:   customerID,
		Subtotal:     totals.Subtotal,
		TaxRate:      cmd.Header.TaxRate.Round(2),
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		CalloutFee:   cmd.Header.CalloutFee.Round(2),
		MileageMiles: cmd.Header.MileageMiles.Round(2),
		MileageRate:  cmd.Header.MileageRate.Round(2),
		MileageTotal: totals.MileageTotal,
		Notes:        cmd.Header.Notes,
		ExpiresAt:    cmd.Header.ExpiresAt,
		Jobs:         jobs,
		Items:        items,
		UpdatedAt:    now,
	}

	if !updating {
		e.ID = uuid.NewString()
		e.Status = entities.EstimateStatusDraft
		e.Version = 1
		e.Token = generateToken()
		e.CreatedAt = now
		if e.EstimateNo == "" {
			e.EstimateNo = generateEstimateNo()
		}
		created, err := u.repo.Create(ctx, e)
		if err != nil {
			return entities.Estimate{}, err
		}
		log.Printf("[estimate][usecase] created estimate_id=%s estimate_no=%s total=%s", created.ID, created.EstimateNo, created.Total.StringFixed(2))
		return created, nil
	}

	e.ID = prev.ID
	e.Token = prev.Token
	e.CreatedAt = prev.CreatedAt
	e.Status = prev.Status
	e.Version = prev.Version
	e.ApprovedAt = prev.ApprovedAt
	e.SignatureID = prev.SignatureID
	if e.EstimateNo == "" {
		e.EstimateNo = prev.EstimateNo
	}

	revoked := prev.Status == entities.EstimateStatusApproved && materiallyChanged(prev, totals)
	if revoked {
		e.Status = entities.EstimateStatusNeedsReapproval
		e.Version = prev.Version + 1
		e.ApprovedAt = nil
		e.SignatureID = ""
	}

	saved, err := u.repo.Replace(ctx, e)
	if err != nil {
		return entities.Estimate{}, err
	}
	if revoked {
		log.Printf("[estimate][usecase] approval revoked estimate_id=%s version=%d", saved.ID, saved.Version)
		u.recordAudit(ctx, "estimate", saved.ID, "approval_revoked", map[string]any{
			"reason":      "edited",
			"prev_status": string(prev.Status),
		})
	}
	return saved, nil
}

// materiallyChanged reports whether any persisted money field moved by more
// than the cent-level threshold.
func materiallyChanged(prev entities.Estimate, totals pricing.Totals) bool {
	return prev.Subtotal.Sub(totals.Subtotal).Abs().GreaterThan(materialChangeThreshold) ||
		prev.TaxAmount.Sub(totals.TaxAmount).Abs().GreaterThan(materialChangeThreshold) ||
		prev.Total.Sub(totals.Total).Abs().GreaterThan(materialChangeThreshold)
}

// resolveCustomer applies the save-time upsert rule: create when no id and at
// least one identifying field is present, update in place when an id is given,
// fail otherwise.
func (u *EstimateUseCase) resolveCustomer(ctx context.Context, in CustomerInput, now time.Time) (string, error) {
	c := entities.Customer{
		ID:        strings.TrimSpace(in.ID),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Zip:       strings.TrimSpace(in.Zip),
		UpdatedAt: now,
	}

	if c.ID == "" {
		if !c.HasIdentity() {
			return "", ErrCustomerRequired
		}
		c.ID = uuid.NewString()
		c.CreatedAt = now
		created, err := u.customers.Create(ctx, c)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}

	if _, err := u.customers.Update(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (u *EstimateUseCase) Send(ctx context.Context, id string) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}

	cust, err := u.customers.GetByID(ctx, e.CustomerID)
	if err != nil {
		return entities.Estimate{}, err
	}
	if cust.ID == "" {
		return entities.Estimate{}, ErrCustomerNotFound
	}
	if cust.Phone == "" {
		return entities.Estimate{}, ErrCustomerContactMissing
	}
	if u.notifier == nil {
		return entities.Estimate{}, ErrNotifierNotConfigured
	}

	n := interfaces.Notification{
		Recipient:  cust.Phone,
		DocumentNo: e.EstimateNo,
		Total:      e.Total.StringFixed(2),
		PublicLink: fmt.Sprintf("%s/estimates/%s", u.publicBaseURL, e.Token),
	}
	// Fire-and-forget: delivery failures are logged, never surfaced.
	if err := u.notifier.Notify(ctx, n); err != nil {
		log.Printf("[estimate][usecase] notification failed estimate_id=%s err=%v", e.ID, err)
	}

	if e.Status != entities.EstimateStatusDraft {
		return e, nil
	}
	updated, err := u.repo.UpdateStatus(ctx, e.ID, entities.EstimateStatusSent)
	if err != nil {
		return entities.Estimate{}, err
	}
	if updated.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return updated, nil
}

// estimateOverrideStatuses are the only values accepted by the operator
// override.
var estimateOverrideStatuses = map[entities.EstimateStatus]bool{
	entities.EstimateStatusApproved: true,
	entities.EstimateStatusDeclined: true,
	entities.EstimateStatusExpired:  true,
}

func (u *EstimateUseCase) MarkStatus(ctx context.Context, id string, status entities.EstimateStatus) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}
	if !estimateOverrideStatuses[status] {
		return entities.Estimate{}, ErrInvalidStatus
	}

	updated, err := u.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return entities.Estimate{}, err
	}
	if updated.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return updated, nil
}

func (u *EstimateUseCase) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Estimate{}, ErrInvalidEstimateID
	}

	e, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return e, nil
}

func (u *EstimateUseCase) GetByToken(ctx context.Context, token string) (entities.Estimate, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Estimate{}, ErrInvalidToken
	}

	e, err := u.repo.GetByToken(ctx, token)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}
	return e, nil
}

func (u *EstimateUseCase) SearchCustomers(ctx context.Context, query string) ([]entities.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.Customer{}, nil
	}
	return u.customers.Search(ctx, query)
}

// recordAudit writes a best-effort audit event; failures must never fail the
// primary operation.
func (u *EstimateUseCase) recordAudit(ctx context.Context, entity, entityID, action string, meta map[string]any) {
	if u.audit == nil {
		return
	}
	if err := u.audit.Record(ctx, entity, entityID, action, auditActor, meta); err != nil {
		log.Printf("[estimate][usecase] audit record failed entity=%s id=%s action=%s err=%v", entity, entityID, action, err)
	}
}
