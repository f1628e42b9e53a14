package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with comma thousand separators, dropping
// the fraction when it is zero: 250000 -> "250,000", 1234.5 -> "1,234.50".
func FormatAmount(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole := amount.Truncate(0)
	frac := ""
	if !amount.Equal(whole) {
		s := amount.StringFixed(2)
		frac = s[strings.IndexByte(s, '.'):]
	}
	return sign + formatThousand(whole.String()) + frac
}

func formatThousand(digits string) string {
	var out strings.Builder
	for i, c := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
