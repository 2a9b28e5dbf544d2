package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

// Amount is a non-fractional amount in paise.
type Amount int64

// FromRupees converts a rupee value (like 12.34) to paise.
// Use ONLY when parsing decimal rupees from configuration or user input.
func FromRupees(rupees float64) (Amount, error) {
	if math.IsNaN(rupees) || math.IsInf(rupees, 0) {
		return 0, ErrInvalidMoney
	}
	if rupees < 0 {
		return 0, ErrInvalidMoney
	}
	// int64 max ~9e18 => rupees max ~9e16
	if rupees > 9e16 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return Amount(math.Round(rupees * 100.0)), nil
}

// Rupees builds an Amount from whole rupees.
func Rupees(r int64) Amount {
	return Amount(r * 100)
}

func (a Amount) Paise() int64 {
	return int64(a)
}

// Times multiplies the amount by n.
func (a Amount) Times(n int64) Amount {
	return Amount(int64(a) * n)
}

// String renders the amount as rupees with two decimals, e.g. "123.45".
func (a Amount) String() string {
	paise := int64(a)
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
