package currency

import "context"

type (
	// RateSource produces base rate tables. Fetch fails with ErrSourceUnavailable
	// on network errors, timeouts and malformed payloads; Fallback never fails.
	RateSource interface {
		Fetch(ctx context.Context) (BaseRateTable, error)
		Fallback() BaseRateTable
	}
)

// Bundled rates against USD, used until a live table has been fetched.
var fallbackRates = BaseRateTable{
	"IDR": 15750,
	"EUR": 0.85,
	"SGD": 1.34,
	"MYR": 4.47,
	"JPY": 149.5,
	"AUD": 1.52,
	"GBP": 0.79,
}

// FallbackRates returns a copy of the bundled static rate table.
func FallbackRates() BaseRateTable {
	return fallbackRates.Clone()
}
