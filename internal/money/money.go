package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCurrency is assumed when the caller does not supply a code.
// Shoptok prices carry no machine-readable currency, only the "€" glyph.
const DefaultCurrency = "EUR"

// ErrNegativeAmount is returned when constructing Money from a negative value.
var ErrNegativeAmount = errors.New("money: amount cannot be negative")

// ParseError indicates that a raw price string contained no usable digits.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("money: cannot parse price from %q", e.Raw)
}

// Money is an immutable amount in minor currency units (cents).
// Storing cents as an integer avoids floating-point drift when prices
// are compared during upserts.
type Money struct {
	amountInCents int64
	currency      string
}

// nonPriceChars matches everything that is not a digit or a separator.
// Stripping these discards currency glyphs, whitespace and trailing shop
// annotations like "in shoptok".
var nonPriceChars = regexp.MustCompile(`[^0-9,.]`)

// FromCents constructs Money from an integer cent amount.
func FromCents(amountInCents int64, currency string) (Money, error) {
	if amountInCents < 0 {
		return Money{}, ErrNegativeAmount
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amountInCents: amountInCents, currency: strings.ToUpper(currency)}, nil
}

// Parse converts a localized price string such as "€1.499,00" or "329.00"
// into Money. When a comma is present it is taken as the decimal separator
// and any periods are treated as thousands separators; otherwise the period
// is the decimal separator.
func Parse(raw string, currency string) (Money, error) {
	normalized := nonPriceChars.ReplaceAllString(strings.TrimSpace(raw), "")
	if normalized == "" {
		return Money{}, &ParseError{Raw: raw}
	}

	if strings.Contains(normalized, ",") {
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return Money{}, &ParseError{Raw: raw}
	}

	return FromCents(int64(math.Round(value*100)), currency)
}

// AmountInCents returns the amount in minor units.
func (m Money) AmountInCents() int64 {
	return m.amountInCents
}

// Currency returns the uppercased 3-letter code.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether m is the zero value (no currency set).
func (m Money) IsZero() bool {
	return m == Money{}
}

// Formatted renders the amount with a comma decimal separator and period
// thousands separators, e.g. "1.499,00 EUR".
func (m Money) Formatted() string {
	units := m.amountInCents / 100
	cents := m.amountInCents % 100
	return fmt.Sprintf("%s,%02d %s", groupThousands(units), cents, m.currency)
}

// groupThousands inserts a period every three digits, right to left.
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
