// Package formatting provides the display helpers shared by every view:
// currency, percentages, signs and placeholders.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Placeholder is rendered for any field whose value is unknown
const Placeholder = "--"

// Change classes used by the stylesheet
const (
	ClassUp      = "up"
	ClassDown    = "down"
	ClassNeutral = "neutral"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Currency formats an amount as US dollars with thousands separators ("$1,234.50", "-$12.00").
// The amount is rounded half away from zero to whole cents.
func Currency(amount float64) string {
	if !finite(amount) {
		return Placeholder
	}
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// Percentage formats a percentage with an explicit sign for non-negative values ("+1.50%")
func Percentage(value float64) string {
	if !finite(value) {
		return Placeholder
	}
	sign := ""
	if value >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// ChangeClass returns the css class for a signed change
func ChangeClass(value float64) string {
	switch {
	case value > 0:
		return ClassUp
	case value < 0:
		return ClassDown
	default:
		return ClassNeutral
	}
}

// Price formats a quote with two decimals ("$123.40")
func Price(value float64) string {
	if !finite(value) {
		return Placeholder
	}
	return fmt.Sprintf("$%.2f", value)
}

// Dollar formats a number with the shortest exact representation ("$123.4", "$100")
func Dollar(value float64) string {
	if !finite(value) {
		return Placeholder
	}
	return "$" + strconv.FormatFloat(value, 'f', -1, 64)
}

// SignedFixed formats a change with two decimals and a leading "+" for gains
func SignedFixed(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f", sign, value)
}

// Volume formats a traded volume with thousands separators ("1,234,567")
func Volume(value float64) string {
	if !finite(value) {
		return Placeholder
	}
	if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
		return humanize.Comma(int64(value))
	}
	return humanize.CommafWithDigits(value, 3)
}

// Shares formats a held quantity ("10.00 shares")
func Shares(quantity float64) string {
	return fmt.Sprintf("%.2f shares", quantity)
}

// Capitalize upper-cases the first letter of s
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// OptionalPrice is Price for an optional value; nil and zero render the placeholder
func OptionalPrice(value *float64) string {
	if value == nil || *value == 0 {
		return Placeholder
	}
	return Price(*value)
}

// OptionalDollar is Dollar for an optional value; nil renders the placeholder
func OptionalDollar(value *float64) string {
	if value == nil {
		return Placeholder
	}
	return Dollar(*value)
}

// OptionalVolume is Volume for an optional value; nil renders the placeholder
func OptionalVolume(value *float64) string {
	if value == nil {
		return Placeholder
	}
	return Volume(*value)
}
