package pricing

import (
	"arm_backoffice/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the result of a pricing run. All amounts are rounded to 2 places.
type Totals struct {
	Subtotal     decimal.Decimal
	TaxableBase  decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	MileageTotal decimal.Decimal
}

// Compute derives estimate totals from normalized line items plus header fees.
//
// Rules:
//   - subtotal is the sum of signed line totals, plus the call-out fee and
//     mileage total when each is positive.
//   - a line feeds the taxable base only when marked taxable and, under
//     parts_only, only when it is a PART. Contributions are clamped at zero so
//     discounts never subtract tax base.
//   - call-out and mileage fees are taxed like lines under parts_labor and
//     never under parts_only.
//
// Pure function; unit-testable with literal inputs.
func Compute(items []NormalizedItem, taxRate decimal.Decimal, taxApply entities.TaxApplyMode, calloutFee, mileageMiles, mileageRate decimal.Decimal) Totals {
	mileageTotal := mileageMiles.Mul(mileageRate).Round(2)

	subtotal := decimal.Zero
	taxableBase := decimal.Zero

	for _, it := range items {
		line := LineTotal(it.ItemType, it.Qty, it.UnitPrice)
		subtotal = subtotal.Add(line)
		if lineIsTaxable(it, taxApply) && line.IsPositive() {
			taxableBase = taxableBase.Add(line)
		}
	}

	if calloutFee.IsPositive() {
		subtotal = subtotal.Add(calloutFee)
		if taxApply == entities.TaxApplyPartsLabor {
			taxableBase = taxableBase.Add(calloutFee)
		}
	}
	if mileageTotal.IsPositive() {
		subtotal = subtotal.Add(mileageTotal)
		if taxApply == entities.TaxApplyPartsLabor {
			taxableBase = taxableBase.Add(mileageTotal)
		}
	}

	taxAmount := taxableBase.Mul(taxRate).Div(oneHundred).Round(2)
	total := subtotal.Add(taxAmount).Round(2)

	return Totals{
		Subtotal:     subtotal.Round(2),
		TaxableBase:  taxableBase.Round(2),
		TaxAmount:    taxAmount,
		Total:        total,
		MileageTotal: mileageTotal,
	}
}

func lineIsTaxable(it NormalizedItem, taxApply entities.TaxApplyMode) bool {
	if !it.Taxable {
		return false
	}
	if taxApply == entities.TaxApplyPartsOnly {
		return it.ItemType == entities.ItemTypePart
	}
	return true
}
