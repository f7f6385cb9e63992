package currency

import (
	"fmt"
	"strings"
)

type Provider string

const (
	ExchangeRateAPIProvider Provider = "ExchangeRateAPI"
	StaticProvider          Provider = "Static"
	EmptyProvider           Provider = ""
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "exchangerateapi", "open.er-api.com":
		return ExchangeRateAPIProvider, nil
	case "static", "offline":
		return StaticProvider, nil
	}

	return EmptyProvider, fmt.Errorf("value %s is not valid Provider", str)
}

func (p *Provider) UnmarshalText(text []byte) error {
	provider, err := ConvertToProviderFromString(string(text))
	if err != nil {
		return err
	}

	*p = provider

	return nil
}

func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p), nil
}
