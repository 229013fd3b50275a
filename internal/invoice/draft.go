package invoice

import (
	"fmt"

	"github.com/diewo77/bill-ease/validation"
)

// Validate checks the draft before submission. Unknown product references are
// not an error here; they are priced at zero by ComputeTotals.
func (d Draft) Validate() validation.Violations {
	v := validation.Violations{}
	for i, item := range d.Items {
		validation.MinInt(fmt.Sprintf("items[%d].quantity", i), item.Quantity, 1, v)
	}
	if validation.Amount("charges.hypothecation", d.Charges.Hypothecation, v) {
		validation.NonNegativeDecimal("charges.hypothecation", d.Charges.Hypothecation, v)
	}
	if validation.Amount("charges.rto", d.Charges.Registration, v) {
		validation.NonNegativeDecimal("charges.rto", d.Charges.Registration, v)
	}
	return v
}
