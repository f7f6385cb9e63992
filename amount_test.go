package currency_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/trip-currency"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	valid := []struct {
		text     string
		expected float64
	}{
		{"100", 100},
		{" 12.5 ", 12.5},
		{"0.01", 0.01},
		{"1e3", 1000},
	}

	for _, v := range valid {
		amount, err := currency.ParseAmount(v.text)
		assert.NoError(err, v.text)
		assert.Equal(v.expected, amount)
	}

	invalid := []string{"", "   ", "-5", "0", "abc", "NaN", "Inf", "+Inf", "1,000", "1_000", "0x10", "12.3.4", "1e400"}

	for _, text := range invalid {
		_, err := currency.ParseAmount(text)
		assert.Error(err, text)
		assert.True(errors.Is(err, currency.ErrInvalidAmount), text)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	assert.NoError(currency.ValidateAmount(0.5))

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.True(errors.Is(currency.ValidateAmount(amount), currency.ErrInvalidAmount))
	}
}
