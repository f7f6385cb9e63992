package format

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"

	currency "github.com/malusev998/trip-currency"
)

const (
	minorUnits = 2
	// Rates below one are shown with this many significant digits.
	rateSignificantDigits = 4
	maxRatePrecision      = 8
)

// Amount renders an amount for display: fractionless currencies as a grouped
// integer ("Rp 1.575.000"), everything else with exactly two decimals ("$12.50").
func Amount(c currency.Currency, amount float64) string {
	return render(c, amount, precision(c))
}

// Rate renders a conversion rate expressed in c. Rates below one keep enough
// decimals to stay readable ("$0.00006349").
func Rate(c currency.Currency, rate float64) string {
	p := precision(c)

	if rate > 0 && rate < 1 {
		p = max(p, min(leadingZeros(rate)+rateSignificantDigits, maxRatePrecision))
	}

	return render(c, rate, p)
}

// leadingZeros counts the zeros between the decimal point and the first
// significant digit of a value below one.
func leadingZeros(value float64) int {
	d := decimal.NewFromFloat(value)

	return -int(d.Exponent()) - d.NumDigits()
}

func precision(c currency.Currency) int {
	if c.Fractionless {
		return 0
	}

	return minorUnits
}

func render(c currency.Currency, value float64, precision int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return c.Symbol + strconv.FormatFloat(value, 'f', -1, 64)
	}

	ac := accounting.Accounting{
		Symbol:    c.Symbol,
		Precision: precision,
		Thousand:  thousand(c),
		Decimal:   decimalSeparator(c),
		Format:    layout(c),
	}

	return ac.FormatMoneyDecimal(decimal.NewFromFloat(value).Round(int32(precision)))
}

func thousand(c currency.Currency) string {
	if c.Thousand == "" {
		return ","
	}

	return c.Thousand
}

func decimalSeparator(c currency.Currency) string {
	if thousand(c) == "." {
		return ","
	}

	return "."
}

// Alphabetic symbols such as "Rp" or "RM" are separated from the number.
func layout(c currency.Currency) string {
	last, _ := utf8.DecodeLastRuneInString(c.Symbol)

	if unicode.IsLetter(last) {
		return "%s %v"
	}

	return "%s%v"
}
