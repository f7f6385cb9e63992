package currency

import (
	"fmt"
	"strings"
)

// BaseCurrency is the currency every rate table is expressed against.
const BaseCurrency = "USD"

type (
	// Currency describes one supported currency and how its amounts are displayed.
	Currency struct {
		Code   string
		Symbol string
		Name   string
		// Fractionless currencies are displayed as grouped integers.
		Fractionless bool
		// Thousand is the grouping separator used when displaying amounts.
		Thousand string
	}

	// Registry is the fixed set of supported currencies. It never changes after
	// construction.
	Registry struct {
		base       string
		currencies []Currency
		index      map[string]Currency
	}
)

var defaultCurrencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Thousand: ","},
	{Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", Fractionless: true, Thousand: "."},
	{Code: "EUR", Symbol: "€", Name: "Euro", Thousand: ","},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Thousand: ","},
	{Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", Thousand: ","},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Fractionless: true, Thousand: ","},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Thousand: ","},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Thousand: ","},
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NewRegistry(base string, currencies ...Currency) (*Registry, error) {
	r := &Registry{
		base:       NormalizeCode(base),
		currencies: make([]Currency, 0, len(currencies)),
		index:      make(map[string]Currency, len(currencies)),
	}

	for _, c := range currencies {
		c.Code = NormalizeCode(c.Code)

		if c.Code == "" {
			return nil, fmt.Errorf("currency with symbol %q has no code", c.Symbol)
		}

		if _, exists := r.index[c.Code]; exists {
			return nil, fmt.Errorf("currency %s registered twice", c.Code)
		}

		r.index[c.Code] = c
		r.currencies = append(r.currencies, c)
	}

	if _, ok := r.index[r.base]; !ok {
		return nil, fmt.Errorf("base currency %s is not in the supported set", r.base)
	}

	return r, nil
}

// DefaultRegistry returns the compiled-in set of currencies the app supports.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BaseCurrency, defaultCurrencies...)
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) Base() string {
	return r.base
}

// Lookup returns the currency for code, ignoring case and surrounding spaces.
func (r *Registry) Lookup(code string) (Currency, error) {
	normalized := NormalizeCode(code)
	c, ok := r.index[normalized]

	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}

	return c, nil
}

func (r *Registry) Supports(code string) bool {
	_, ok := r.index[NormalizeCode(code)]
	return ok
}

// Codes returns the supported codes in registration order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.currencies))

	for _, c := range r.currencies {
		codes = append(codes, c.Code)
	}

	return codes
}

func (r *Registry) Currencies() []Currency {
	currencies := make([]Currency, len(r.currencies))
	copy(currencies, r.currencies)

	return currencies
}
