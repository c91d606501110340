// Package units converts token amounts between on-chain base units and
// human readable decimal strings.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the precision used when a token does not say otherwise
const DefaultDecimals int32 = 18

// ErrInvalidAmount is returned when a decimal amount cannot be represented in base units
var ErrInvalidAmount = errors.New("invalid amount")

var amountPattern = regexp.MustCompile(`^(\d+)(\.(\d+))?$|^\.(\d+)$`)

// ToDecimal divides a base-unit amount by 10^decimals.
// The result always carries a fractional part, so zero is "0.0".
func ToDecimal(amount *big.Int, decimals int32) string {
	if amount == nil {
		amount = new(big.Int)
	}

	s := decimal.NewFromBigInt(amount, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ToBaseUnits parses a decimal string and multiplies it by 10^decimals
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)

	m := amountPattern.FindStringSubmatch(amount)
	if m == nil {
		return nil, fmt.Errorf("%w: %q is not a non-negative decimal number", ErrInvalidAmount, amount)
	}

	fraction := m[3]
	if m[4] != "" {
		fraction = m[4]
	}
	// trailing zeros carry no precision: "1.0" is valid for a zero-decimal token
	fraction = strings.TrimRight(fraction, "0")
	if int32(len(fraction)) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, amount, decimals)
	}

	if strings.HasPrefix(amount, ".") {
		amount = "0" + amount
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return d.Shift(decimals).BigInt(), nil
}

// MustBaseUnits is ToBaseUnits for constants known to be valid
func MustBaseUnits(amount string, decimals int32) *big.Int {
	v, err := ToBaseUnits(amount, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse returns the decimal value of a display amount
func Parse(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// FormatAmount truncates a decimal string to the given number of fractional digits.
// Input that is not a number is returned unchanged.
func FormatAmount(amount string, places int32) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return amount
	}
	if places < 0 {
		places = 0
	}
	return d.Truncate(places).String()
}

// FormatTimestamp renders a unix timestamp the way the dashboard shows it
func FormatTimestamp(unix uint64) string {
	return time.Unix(int64(unix), 0).UTC().Format("01/02/2006, 15:04:05")
}
