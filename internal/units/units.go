// Package units converts between human-entered decimal amounts and the integer
// base units a token contract works in.
//
// All arithmetic is exact. An amount that cannot be represented at the token's
// precision is rejected instead of being rounded.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest precision an ERC-20 decimals() can report (uint8).
const MaxDecimals = 255

// maxDigits is the number of decimal digits of 2^256-1.
const maxDigits = 78

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPrecision = errors.New("invalid precision")
	ErrAmountOverflow   = errors.New("amount overflows uint256")
)

// ToBaseUnits scales a decimal string by 10^decimals.
//
// "1.5" at 6 decimals is 1500000. "1.5" at 0 decimals fails with
// ErrInvalidPrecision, as does any value with more significant fractional
// digits than decimals allows. Trailing zeros ("1.50" at 1 decimal) are fine.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	if err := checkDecimals(decimals); err != nil {
		return nil, err
	}

	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	// Cheap bounds before doing any big-number work on exponent-notation input.
	exp := int(d.Exponent())
	if d.NumDigits()+exp+decimals > maxDigits {
		return nil, fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}
	if exp < -4*MaxDecimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidPrecision, amount, decimals)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidPrecision, amount, decimals)
	}

	raw := scaled.BigInt()
	if _, overflow := uint256.FromBig(raw); overflow {
		return nil, fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}
	return raw, nil
}

// FromBaseUnits renders raw as a decimal string with the given precision.
// Trailing fractional zeros are trimmed: 1500000 at 6 decimals is "1.5" and
// 1000000 is "1".
func FromBaseUnits(raw *big.Int, decimals int) (string, error) {
	if err := checkDecimals(decimals); err != nil {
		return "", err
	}
	if raw == nil {
		return "", fmt.Errorf("%w: nil", ErrInvalidAmount)
	}
	if raw.Sign() < 0 {
		return "", fmt.Errorf("%w: %s is negative", ErrInvalidAmount, raw)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String(), nil
}

// MustFromBaseUnits is FromBaseUnits for display paths that already hold a
// valid amount. Invalid input renders as the raw integer.
func MustFromBaseUnits(raw *big.Int, decimals int) string {
	s, err := FromBaseUnits(raw, decimals)
	if err != nil {
		if raw == nil {
			return "0"
		}
		return raw.String()
	}
	return s
}

func checkDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxDecimals {
		return fmt.Errorf("%w: decimals %d outside [0,%d]", ErrInvalidPrecision, decimals, MaxDecimals)
	}
	return nil
}
