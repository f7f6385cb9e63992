package fetchers

import (
	"context"

	currency "github.com/malusev998/trip-currency"
)

// StaticFetcher is the offline provider: it only ever serves the bundled table
// through Fallback, so the data is never reported as live.
type StaticFetcher struct{}

var _ currency.RateSource = StaticFetcher{}

func (StaticFetcher) Fetch(context.Context) (currency.BaseRateTable, error) {
	return nil, unavailable(ErrOffline)
}

func (StaticFetcher) Fallback() currency.BaseRateTable {
	return currency.FallbackRates()
}
