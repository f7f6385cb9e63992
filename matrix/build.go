// Package matrix derives any-to-any conversion rates from a single-base rate table.
package matrix

import (
	"fmt"
	"math"

	currency "github.com/malusev998/trip-currency"
)

// Build derives the full conversion matrix for the supported codes from a
// table expressed against base. It has no side effects and the same input
// always yields the same matrix.
func Build(table currency.BaseRateTable, base string, supported []string) (currency.Matrix, error) {
	baseIncluded := false

	for _, code := range supported {
		if code == base {
			baseIncluded = true
			continue
		}

		rate, ok := table[code]
		if !ok {
			return nil, fmt.Errorf("%w: missing rate for %s", currency.ErrMalformedRateTable, code)
		}

		if !validRate(rate) {
			return nil, fmt.Errorf("%w: invalid rate %v for %s", currency.ErrMalformedRateTable, rate, code)
		}
	}

	if !baseIncluded {
		return nil, fmt.Errorf("%w: base %s is not among the supported currencies", currency.ErrMalformedRateTable, base)
	}

	m := make(currency.Matrix, len(supported)*len(supported))

	for _, from := range supported {
		for _, to := range supported {
			var rate float64

			switch {
			case from == to:
				rate = 1
			case from == base:
				rate = table[to]
			case to == base:
				rate = 1 / table[from]
			default:
				rate = table[to] / table[from]
			}

			m[currency.Pair{From: from, To: to}] = rate
		}
	}

	return m, nil
}

// FromRegistry builds the matrix for every currency of the registry.
func FromRegistry(table currency.BaseRateTable, registry *currency.Registry) (currency.Matrix, error) {
	return Build(table, registry.Base(), registry.Codes())
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
