package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads an amount written with "." as thousands separator and
// "," as decimal separator, e.g. "-1.234,56". A leading currency sign and
// surrounding spaces are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "$")
	v = strings.TrimSpace(v)
	negative := false
	if strings.HasPrefix(v, "-") {
		negative = true
		v = strings.TrimSpace(v[1:])
		v = strings.TrimSpace(strings.TrimPrefix(v, "$"))
	}
	if v == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	v = strings.ReplaceAll(v, ".", "")
	v = strings.Replace(v, ",", ".", 1)
	if strings.ContainsAny(v, ",-+ ") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
