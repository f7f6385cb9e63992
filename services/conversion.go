package services

import (
	"fmt"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/metrics"
)

type (
	ConversionService struct {
		Registry *currency.Registry
	}
)

// Convert converts the request against the given snapshot. The result is not
// rounded; rounding belongs to display formatting.
func (c ConversionService) Convert(req currency.ConversionRequest, snapshot *currency.Snapshot) (currency.ConversionResult, error) {
	result, err := c.convert(req, snapshot)

	if err != nil {
		metrics.RecordConversion(metrics.OutcomeFailure)
		return currency.ConversionResult{}, err
	}

	metrics.RecordConversion(metrics.OutcomeSuccess)

	return result, nil
}

func (c ConversionService) convert(req currency.ConversionRequest, snapshot *currency.Snapshot) (currency.ConversionResult, error) {
	if err := currency.ValidateAmount(req.Amount); err != nil {
		return currency.ConversionResult{}, err
	}

	registry := c.registry()

	from, err := registry.Lookup(req.From)
	if err != nil {
		return currency.ConversionResult{}, err
	}

	to, err := registry.Lookup(req.To)
	if err != nil {
		return currency.ConversionResult{}, err
	}

	if snapshot == nil {
		return currency.ConversionResult{}, fmt.Errorf("%w: no snapshot installed", currency.ErrRateUnavailable)
	}

	rate, ok := snapshot.Matrix.Rate(from.Code, to.Code)
	if !ok {
		return currency.ConversionResult{}, fmt.Errorf("%w: %s to %s", currency.ErrRateUnavailable, from.Code, to.Code)
	}

	return currency.ConversionResult{
		Amount:          req.Amount,
		From:            from.Code,
		To:              to.Code,
		ConvertedAmount: req.Amount * rate,
		Rate:            rate,
		SnapshotID:      snapshot.ID,
		Origin:          snapshot.Origin,
	}, nil
}

func (c ConversionService) registry() *currency.Registry {
	if c.Registry == nil {
		return currency.DefaultRegistry()
	}

	return c.Registry
}
