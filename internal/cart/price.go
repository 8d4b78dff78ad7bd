package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56"
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	return sign + "R$ " + sb.String() + "," + frac
}
