package fetchers

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	currency "github.com/malusev998/trip-currency"
)

type (
	// ExchangeRateAPIFetcher reads the latest USD based rates from an
	// open.er-api.com compatible endpoint.
	ExchangeRateAPIFetcher struct {
		Client   *http.Client
		URL      string
		Timeout  time.Duration
		Registry *currency.Registry
	}
)

var _ currency.RateSource = ExchangeRateAPIFetcher{}

func (e ExchangeRateAPIFetcher) Fetch(ctx context.Context) (currency.BaseRateTable, error) {
	url := e.URL

	if url == "" {
		url = ExchangeRateAPIURL
	}

	timeout := e.Timeout

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := getData(ctx, url)

	if err != nil {
		return nil, unavailable(err)
	}

	client := e.Client

	if client == nil {
		client = &http.Client{}
	}

	res, err := client.Do(req)

	if err != nil {
		return nil, unavailable(err)
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return nil, unavailable(err)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPayloadSize))

	if err != nil {
		return nil, unavailable(err)
	}

	return e.parse(body)
}

func (e ExchangeRateAPIFetcher) Fallback() currency.BaseRateTable {
	return currency.FallbackRates()
}

func (e ExchangeRateAPIFetcher) registry() *currency.Registry {
	if e.Registry == nil {
		return currency.DefaultRegistry()
	}

	return e.Registry
}

// parse keeps only the supported currencies and rejects the whole payload when
// any of them is missing or unusable.
func (e ExchangeRateAPIFetcher) parse(body []byte) (currency.BaseRateTable, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed("payload is not valid JSON")
	}

	registry := e.registry()
	doc := gjson.ParseBytes(body)

	if result := doc.Get("result"); result.Exists() && result.String() != "success" {
		return nil, malformed("provider returned %q (%s)", result.String(), doc.Get("error-type").String())
	}

	base := doc.Get("base_code")

	if !base.Exists() {
		base = doc.Get("base")
	}

	if base.Exists() && currency.NormalizeCode(base.String()) != registry.Base() {
		return nil, malformed("rates are based on %s, expected %s", base.String(), registry.Base())
	}

	rates := doc.Get("rates")

	if !rates.IsObject() {
		return nil, malformed("rates object is missing")
	}

	table := make(currency.BaseRateTable, len(registry.Codes()))

	for _, code := range registry.Codes() {
		if code == registry.Base() {
			continue
		}

		value := rates.Get(code)

		if !value.Exists() {
			return nil, malformed("missing rate for %s", code)
		}

		if value.Type != gjson.Number {
			return nil, malformed("rate for %s is not a number", code)
		}

		rate := value.Float()

		if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
			return nil, malformed("rate for %s is %v", code, rate)
		}

		table[code] = rate
	}

	return table, nil
}
