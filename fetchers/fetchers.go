package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	currency "github.com/malusev998/trip-currency"
)

const (
	ExchangeRateAPIURL = "https://open.er-api.com/v6/latest/USD"
	DefaultTimeout     = 5 * time.Second

	maxPayloadSize = 1 << 20
)

var (
	ErrClient           = errors.New("client error")
	ErrServer           = errors.New("server error")
	ErrUnknown          = errors.New("unknown error")
	ErrOffline          = errors.New("offline provider does not fetch rates")
	ErrProviderNotFound = errors.New("provider is not found")
)

func getData(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Add("Accept", "application/json")

	return req, nil
}

func handleHTTPStatusCodeError(res *http.Response) error {
	if res.StatusCode == http.StatusOK {
		return nil
	}

	switch {
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrClient, res.StatusCode)
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrServer, res.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUnknown, res.StatusCode)
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", currency.ErrSourceUnavailable, err)
}

func malformed(format string, args ...interface{}) error {
	return unavailable(fmt.Errorf("%w: %s", currency.ErrMalformedPayload, fmt.Sprintf(format, args...)))
}
