package request

import (
	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/domain/pricing"
	"arm_backoffice/internal/usecase"

	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

// LineItemRequest is one raw row of the estimate builder. Qty and Price are
// pointers so the pricing layer can tell "absent" apart from zero.
type LineItemRequest struct {
	Type    string           `json:"type"`
	Desc    string           `json:"desc"`
	Qty     *decimal.Decimal `json:"qty"`
	Price   *decimal.Decimal `json:"price"`
	Taxable bool             `json:"taxable"`
}

type JobRequest struct {
	Title      string            `json:"title"`
	IsOptional bool              `json:"is_optional"`
	Items      []LineItemRequest `json:"items"`
}

// SaveEstimateRequest is the full create/update payload. An empty estimate_id
// creates a new draft; otherwise the identified estimate is replaced.
type SaveEstimateRequest struct {
	EstimateID   string          `json:"estimate_id"`
	EstimateNo   string          `json:"estimate_no"`
	Customer     CustomerRequest `json:"customer"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxApply     string          `json:"tax_apply"`
	CalloutFee   decimal.Decimal `json:"callout_fee"`
	MileageMiles decimal.Decimal `json:"mileage_miles"`
	MileageRate  decimal.Decimal `json:"mileage_rate"`
	Notes        string          `json:"notes"`
	ExpiresAt    string          `json:"expires_at"`
	Jobs         []JobRequest    `json:"jobs"`
}

func (r SaveEstimateRequest) ToCommand() usecase.SaveEstimateCommand {
	jobs := make([]pricing.JobInput, len(r.Jobs))
	for i, j := range r.Jobs {
		items := make([]pricing.ItemInput, len(j.Items))
		for k, it := range j.Items {
			items[k] = pricing.ItemInput{
				Type:    it.Type,
				Desc:    it.Desc,
				Qty:     it.Qty,
				Price:   it.Price,
				Taxable: it.Taxable,
			}
		}
		jobs[i] = pricing.JobInput{Title: j.Title, IsOptional: j.IsOptional, Items: items}
	}

	return usecase.SaveEstimateCommand{
		EstimateID: r.EstimateID,
		Customer: usecase.CustomerInput{
			ID:        r.Customer.ID,
			FirstName: r.Customer.FirstName,
			LastName:  r.Customer.LastName,
			Email:     r.Customer.Email,
			Phone:     r.Customer.Phone,
			Address:   r.Customer.Address,
			City:      r.Customer.City,
			Zip:       r.Customer.Zip,
		},
		Header: usecase.EstimateHeader{
			EstimateNo:   r.EstimateNo,
			TaxRate:      r.TaxRate,
			TaxApply:     entities.TaxApplyMode(r.TaxApply),
			CalloutFee:   r.CalloutFee,
			MileageMiles: r.MileageMiles,
			MileageRate:  r.MileageRate,
			Notes:        r.Notes,
			ExpiresAt:    r.ExpiresAt,
		},
		Jobs: jobs,
	}
}

// MarkEstimateStatusRequest is the operator status override payload.
type MarkEstimateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
