package validate

import (
	"errors"
	"testing"

	"golang.org/x/text/currency"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	unit, err := Currency("priceCurrency", " eur ")
	if err != nil {
		t.Fatalf("Currency error = %v", err)
	}
	if unit != currency.EUR {
		t.Fatalf("unit = %v, want EUR", unit)
	}

	for _, raw := range []string{"", "EURO", "ZZZ", "€"} {
		_, err := Currency("priceCurrency", raw)
		var verr *Error
		if !errors.As(err, &verr) || verr.Reason != UnsupportedCurrency {
			t.Fatalf("Currency(%q) error = %v, want UnsupportedCurrency", raw, err)
		}
	}
}

func TestAmount(t *testing.T) {
	t.Parallel()

	if got, err := Amount("price", 0); err != nil || got != 0 {
		t.Fatalf("Amount(0) = %d, %v", got, err)
	}
	_, err := Amount("price", -1)
	var verr *Error
	if !errors.As(err, &verr) || verr.Reason != NegativeAmount {
		t.Fatalf("Amount(-1) error = %v, want NegativeAmount", err)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		unit currency.Unit
		want int64
	}{
		{raw: "12", unit: currency.EUR, want: 1200},
		{raw: "12.5", unit: currency.EUR, want: 1250},
		{raw: " 0.05 ", unit: currency.EUR, want: 5},
		{raw: "+3.10", unit: currency.USD, want: 310},
		{raw: "1500", unit: currency.JPY, want: 1500},
	}
	for _, tt := range tests {
		got, err := ParseAmount("price", tt.raw, tt.unit)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseAmountRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		unit   currency.Unit
		reason Reason
	}{
		{raw: "-1", unit: currency.EUR, reason: NegativeAmount},
		{raw: "12.345", unit: currency.EUR, reason: MalformedAmount},
		{raw: "1.5", unit: currency.JPY, reason: MalformedAmount},
		{raw: "12,50", unit: currency.EUR, reason: MalformedAmount},
		{raw: ".5", unit: currency.EUR, reason: MalformedAmount},
		{raw: "5.", unit: currency.EUR, reason: MalformedAmount},
		{raw: "", unit: currency.EUR, reason: MalformedAmount},
		{raw: "1e3", unit: currency.EUR, reason: MalformedAmount},
	}
	for _, tt := range tests {
		_, err := ParseAmount("price", tt.raw, tt.unit)
		var verr *Error
		if !errors.As(err, &verr) || verr.Reason != tt.reason {
			t.Fatalf("ParseAmount(%q) error = %v, want %s", tt.raw, err, tt.reason)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minor int64
		unit  currency.Unit
		want  string
	}{
		{minor: 1250, unit: currency.EUR, want: "12.50"},
		{minor: 5, unit: currency.EUR, want: "0.05"},
		{minor: 0, unit: currency.USD, want: "0.00"},
		{minor: 1500, unit: currency.JPY, want: "1500"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.minor, tt.unit); got != tt.want {
			t.Fatalf("FormatAmount(%d, %v) = %q, want %q", tt.minor, tt.unit, got, tt.want)
		}
	}
}
