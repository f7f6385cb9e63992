package fetchers

import (
	"fmt"
	"net/http"
	"time"

	currency "github.com/malusev998/trip-currency"
)

type (
	BaseConfig struct {
		Registry *currency.Registry
	}
	ExchangeRateAPIConfig struct {
		BaseConfig
		URL     string
		Timeout time.Duration
		Client  *http.Client
	}
	StaticConfig struct {
		BaseConfig
	}
)

func NewRateSource(provider currency.Provider, config interface{}) (currency.RateSource, error) {
	switch provider {
	case currency.ExchangeRateAPIProvider:
		c, ok := config.(ExchangeRateAPIConfig)
		if !ok {
			return nil, fmt.Errorf("provider %s expects ExchangeRateAPIConfig, got %T", provider, config)
		}

		return ExchangeRateAPIFetcher{
			Client:   c.Client,
			URL:      c.URL,
			Timeout:  c.Timeout,
			Registry: c.Registry,
		}, nil
	case currency.StaticProvider:
		return StaticFetcher{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, provider)
}
