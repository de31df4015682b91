package validate

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Currency accepts ISO 4217 codes in any case.
func Currency(field, raw string) (currency.Unit, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return currency.Unit{}, fail(field, UnsupportedCurrency, raw, "")
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fail(field, UnsupportedCurrency, raw, err.Error())
	}
	return unit, nil
}

// Scale returns the number of minor-unit digits of unit.
func Scale(unit currency.Unit) int {
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Amount rejects negative minor-unit amounts.
func Amount(field string, minor int64) (int64, error) {
	if minor < 0 {
		return 0, fail(field, NegativeAmount, strconv.FormatInt(minor, 10), "")
	}
	return minor, nil
}

// ParseAmount reads a decimal string ("12.5") into minor units of unit.
// More fraction digits than the currency allows is malformed, not rounded.
func ParseAmount(field, raw string, unit currency.Unit) (int64, error) {
	value := strings.TrimSpace(raw)
	if strings.HasPrefix(value, "-") {
		return 0, fail(field, NegativeAmount, raw, "")
	}
	value = strings.TrimPrefix(value, "+")
	whole, frac, hasFrac := strings.Cut(value, ".")
	if whole == "" || (hasFrac && frac == "") || !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fail(field, MalformedAmount, raw, "not a decimal amount")
	}
	scale := Scale(unit)
	if len(frac) > scale {
		return 0, fail(field, MalformedAmount, raw, "too many fraction digits for "+unit.String())
	}
	digits := whole + frac + strings.Repeat("0", scale-len(frac))
	minor, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fail(field, MalformedAmount, raw, err.Error())
	}
	return minor, nil
}

// FormatAmount renders minor units as a plain decimal with the currency scale.
func FormatAmount(minor int64, unit currency.Unit) string {
	scale := Scale(unit)
	digits := strconv.FormatInt(minor, 10)
	if scale == 0 {
		return digits
	}
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	cut := len(digits) - scale
	return digits[:cut] + "." + digits[cut:]
}

func digitsOnly(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
