package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount turns user input into an amount. Only plain decimal numbers are
// accepted; the result is always finite and positive.
func ParseAmount(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	for _, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' && r != 'e' && r != 'E' {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
		}
	}

	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}

	if err := ValidateAmount(amount); err != nil {
		return 0, err
	}

	return amount, nil
}

func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	if amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	return nil
}
