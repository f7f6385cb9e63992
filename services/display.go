package services

import (
	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/format"
)

type (
	SnapshotProvider interface {
		Current() *currency.Snapshot
	}

	// DisplayService answers the UI layer with display-ready strings.
	DisplayService struct {
		Snapshots  SnapshotProvider
		Conversion ConversionService
	}

	FormattedConversion struct {
		From   string
		To     string
		Result currency.ConversionResult
	}
)

// DisplayMatrix formats the rate of one unit of base into every supported
// currency, keyed by currency code.
func (d DisplayService) DisplayMatrix(base string) (map[string]string, error) {
	return d.DisplayMatrixFor(base, d.Snapshots.Current())
}

// DisplayMatrixFor is DisplayMatrix against a snapshot the caller already holds,
// so formatted and raw values can come from the same snapshot.
func (d DisplayService) DisplayMatrixFor(base string, snapshot *currency.Snapshot) (map[string]string, error) {
	registry := d.Conversion.registry()

	from, err := registry.Lookup(base)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]string, len(registry.Codes()))

	for _, to := range registry.Currencies() {
		result, err := d.Conversion.convert(currency.ConversionRequest{Amount: 1, From: from.Code, To: to.Code}, snapshot)
		if err != nil {
			return nil, err
		}

		rates[to.Code] = format.Rate(to, result.Rate)
	}

	return rates, nil
}

// ConvertAndFormat parses the user's amount, converts it with the current
// snapshot and formats both sides.
func (d DisplayService) ConvertAndFormat(amount, from, to string) (FormattedConversion, error) {
	return d.ConvertAndFormatFor(amount, from, to, d.Snapshots.Current())
}

func (d DisplayService) ConvertAndFormatFor(amount, from, to string, snapshot *currency.Snapshot) (FormattedConversion, error) {
	value, err := currency.ParseAmount(amount)
	if err != nil {
		return FormattedConversion{}, err
	}

	result, err := d.Conversion.Convert(currency.ConversionRequest{Amount: value, From: from, To: to}, snapshot)
	if err != nil {
		return FormattedConversion{}, err
	}

	registry := d.Conversion.registry()
	fromCurrency, _ := registry.Lookup(result.From)
	toCurrency, _ := registry.Lookup(result.To)

	return FormattedConversion{
		From:   format.Amount(fromCurrency, result.Amount),
		To:     format.Amount(toCurrency, result.ConvertedAmount),
		Result: result,
	}, nil
}
