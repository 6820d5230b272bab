package response

import (
	"time"

	"arm_backoffice/internal/domain/entities"
)

type JobResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	IsOptional bool   `json:"is_optional"`
	Status     string `json:"status"`
	SortOrder  int    `json:"sort_order"`
}

type LineItemResponse struct {
	ID          string `json:"id"`
	JobID       string `json:"job_id,omitempty"`
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	Taxable     bool   `json:"taxable"`
	LineTotal   string `json:"line_total"`
	SortOrder   int    `json:"sort_order"`
}

// EstimateResponse renders money fields as fixed two-decimal strings so
// clients never re-round amounts.
type EstimateResponse struct {
	ID          string     `json:"id"`
	EstimateNo  string     `json:"estimate_no"`
	CustomerID  string     `json:"customer_id"`
	Status      string     `json:"status"`
	Version     int        `json:"version"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SignatureID string     `json:"signature_id,omitempty"`

	Subtotal  string `json:"subtotal"`
	TaxRate   string `json:"tax_rate"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`

	CalloutFee   string `json:"callout_fee"`
	MileageMiles string `json:"mileage_miles"`
	MileageRate  string `json:"mileage_rate"`
	MileageTotal string `json:"mileage_total"`

	Notes     string `json:"notes,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Token     string `json:"token"`

	Jobs  []JobResponse      `json:"jobs"`
	Items []LineItemResponse `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromEstimate(e entities.Estimate) EstimateResponse {
	jobs := make([]JobResponse, len(e.Jobs))
	for i, j := range e.Jobs {
		jobs[i] = JobResponse{
			ID:         j.ID,
			Title:      j.Title,
			IsOptional: j.IsOptional,
			Status:     string(j.Status),
			SortOrder:  j.SortOrder,
		}
	}
	items := make([]LineItemResponse, len(e.Items))
	for i, li := range e.Items {
		items[i] = LineItemResponse{
			ID:          li.ID,
			JobID:       li.JobID,
			ItemType:    string(li.ItemType),
			Description: li.Description,
			Qty:         li.Qty.String(),
			UnitPrice:   li.UnitPrice.StringFixed(2),
			Taxable:     li.Taxable,
			LineTotal:   li.LineTotal.StringFixed(2),
			SortOrder:   li.SortOrder,
		}
	}

	return EstimateResponse{
		ID:           e.ID,
		EstimateNo:   e.EstimateNo,
		CustomerID:   e.CustomerID,
		Status:       string(e.Status),
		Version:      e.Version,
		ApprovedAt:   e.ApprovedAt,
		SignatureID:  e.SignatureID,
		Subtotal:     e.Subtotal.StringFixed(2),
		TaxRate:      e.TaxRate.String(),
		TaxAmount:    e.TaxAmount.StringFixed(2),
		Total:        e.Total.StringFixed(2),
		CalloutFee:   e.CalloutFee.StringFixed(2),
		MileageMiles: e.MileageMiles.String(),
		MileageRate:  e.MileageRate.String(),
		MileageTotal: e.MileageTotal.StringFixed(2),
		Notes:        e.Notes,
		ExpiresAt:    e.ExpiresAt,
		Token:        e.Token,
		Jobs:         jobs,
		Items:        items,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type CustomerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Zip       string `json:"zip,omitempty"`
}

func FromCustomer(c entities.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		Zip:       c.Zip,
	}
}

func FromCustomers(cs []entities.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(cs))
	for i, c := range cs {
		out[i] = FromCustomer(c)
	}
	return out
}
