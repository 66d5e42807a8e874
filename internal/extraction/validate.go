package extraction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference, in currency units, between a computed
// and an extracted amount that is still considered consistent. It absorbs a
// misread final digit.
var Tolerance = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// Validate checks a line item's arithmetic. The computed total with tax must
// be within Tolerance of totalWithTax and, when taxAmount is non-nil, the
// computed tax within Tolerance of it.
func Validate(quantity, unitPrice, taxRate decimal.Decimal, taxAmount *decimal.Decimal, totalWithTax decimal.Decimal) Validation {
	base := quantity.Mul(unitPrice)
	rate := taxRate.Div(hundred)
	expectedTax := base.Mul(rate).Round(2)
	expectedTotal := base.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)

	var problems []string
	if expectedTotal.Sub(totalWithTax).Abs().GreaterThan(Tolerance) {
		problems = append(problems, fmt.Sprintf("total with tax: expected %s, extracted %s",
			expectedTotal.StringFixed(2), totalWithTax.StringFixed(2)))
	}
	if taxAmount != nil && expectedTax.Sub(*taxAmount).Abs().GreaterThan(Tolerance) {
		problems = append(problems, fmt.Sprintf("tax amount: expected %s, extracted %s",
			expectedTax.StringFixed(2), taxAmount.StringFixed(2)))
	}

	if len(problems) > 0 {
		return warning(strings.Join(problems, "; "))
	}
	return validated()
}

// withinTolerance reports whether a and b differ by at most Tolerance.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
