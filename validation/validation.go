package validation

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// Money inputs carry at most two decimal places and stay below 10^12.
const (
	amountPlaces        = 2
	amountIntegerDigits = 12
)

// Amount records "out_of_range" or "too_many_decimals" when val is outside
// the money range and reports whether it passed. Only the coefficient and
// exponent are inspected, so values like 1e300000000 are rejected without
// being expanded.
func Amount(field string, val decimal.Decimal, v Violations) bool {
	if val.IsZero() {
		return true
	}
	digits := strings.TrimLeft(val.Coefficient().String(), "-")
	significant := strings.TrimRight(digits, "0")
	exp := int64(val.Exponent()) + int64(len(digits)-len(significant))
	if int64(len(significant))+exp > amountIntegerDigits {
		v[field] = "out_of_range"
		return false
	}
	if exp < -amountPlaces {
		v[field] = "too_many_decimals"
		return false
	}
	return true
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "out_of_range"
	}
}

// ParseDecimal parses raw into a decimal, recording "must_be_numeric" on failure.
// The zero value is returned when raw is not a number.
func ParseDecimal(field, raw string, v Violations) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		v[field] = "must_be_numeric"
		return decimal.Zero
	}
	return d
}

// ParseInt parses raw as a whole number, recording "must_be_integer" on failure.
func ParseInt(field, raw string, v Violations) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v[field] = "must_be_integer"
		return 0
	}
	return n
}
