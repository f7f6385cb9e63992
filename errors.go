package currency

import "errors"

var (
	ErrSourceUnavailable   = errors.New("rate source unavailable")
	ErrMalformedPayload    = errors.New("malformed rate payload")
	ErrMalformedRateTable  = errors.New("malformed rate table")
	ErrInvalidAmount       = errors.New("amount must be a finite positive number")
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	ErrRateUnavailable     = errors.New("rate is not available for the currency pair")
)
