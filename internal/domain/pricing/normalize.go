package pricing

import (
	"fmt"
	"strings"

	"arm_backoffice/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// ItemInput is one raw line row as submitted by the estimate builder.
// Qty and Price are pointers so "field absent" can be told apart from zero.
type ItemInput struct {
	Type    string           `json:"type"`
	Desc    string           `json:"desc"`
	Qty     *decimal.Decimal `json:"qty"`
	Price   *decimal.Decimal `json:"price"`
	Taxable bool             `json:"taxable"`
}

// JobInput is a raw job block: a title, an optional flag and its rows.
type JobInput struct {
	Title      string      `json:"title"`
	IsOptional bool        `json:"is_optional"`
	Items      []ItemInput `json:"items"`
}

// JobSpec is a normalized job descriptor ready to persist.
type JobSpec struct {
	Title      string
	IsOptional bool
	SortOrder  int
}

// NormalizedItem is a typed line item tagged with the index of its owning job.
type NormalizedItem struct {
	JobIndex    int
	ItemType    entities.ItemType
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Taxable     bool
	LineTotal   decimal.Decimal
	SortOrder   int
}

var defaultQty = decimal.NewFromInt(1)

// estimateItemTypes are the operator-facing kinds; anything else falls back to
// LABOR. MILEAGE/CALLOUT exist only on invoices.
var estimateItemTypes = map[entities.ItemType]bool{
	entities.ItemTypeLabor:    true,
	entities.ItemTypePart:     true,
	entities.ItemTypeFee:      true,
	entities.ItemTypeDiscount: true,
}

// NormalizeJobs validates and normalizes raw job/line input. Rows with a blank
// description are dropped silently. Untitled jobs get a synthesized
// "Job {n}" title. No I/O.
func NormalizeJobs(jobs []JobInput) ([]JobSpec, []NormalizedItem) {
	specs := make([]JobSpec, 0, len(jobs))
	items := make([]NormalizedItem, 0)

	sort := 0
	for jobIdx, job := range jobs {
		title := strings.TrimSpace(job.Title)
		if title == "" {
			title = fmt.Sprintf("Job %d", jobIdx+1)
		}
		specs = append(specs, JobSpec{Title: title, IsOptional: job.IsOptional, SortOrder: jobIdx})

		for _, row := range job.Items {
			desc := strings.TrimSpace(row.Desc)
			if desc == "" {
				continue
			}
			items = append(items, NormalizedItem{
				JobIndex:    jobIdx,
				ItemType:    normalizeItemType(row.Type),
				Description: desc,
				Qty:         valueOr(row.Qty, defaultQty),
				UnitPrice:   valueOr(row.Price, decimal.Zero),
				Taxable:     row.Taxable,
				LineTotal:   LineTotal(normalizeItemType(row.Type), valueOr(row.Qty, defaultQty), valueOr(row.Price, decimal.Zero)),
				SortOrder:   sort,
			})
			sort++
		}
	}
	return specs, items
}

// LineTotal computes the signed total of one row: qty*price, negated for
// DISCOUNT so discounts never increase the subtotal. Rounded to 2 places.
func LineTotal(itemType entities.ItemType, qty, price decimal.Decimal) decimal.Decimal {
	total := qty.Mul(price)
	if itemType == entities.ItemTypeDiscount {
		total = total.Neg()
	}
	return total.Round(2)
}

func normalizeItemType(raw string) entities.ItemType {
	t := entities.ItemType(strings.ToUpper(strings.TrimSpace(raw)))
	if !estimateItemTypes[t] {
		return entities.ItemTypeLabor
	}
	return t
}

func valueOr(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}
