package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatReais renders an amount as "R$ 1.234,56".
func FormatReais(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	return fmt.Sprintf("%sR$ %s,%02d", sign, formatThousand(cents/100), cents%100)
}

// FormatNumber renders a quantity with thousand separators and up to two decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		if v < 0 {
			return "-" + formatThousand(int64(-v))
		}
		return formatThousand(int64(v))
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return strings.Replace(s, ".", ",", 1)
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1) + "%"
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
