package ledger

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUnits renders a base-unit amount as a decimal string using the mint's decimals.
func FormatUnits(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}

// ParseUnits converts a decimal string such as "12.5" into base units. More fractional
// digits than the mint supports is an invalid amount, not a rounding.
func ParseUnits(value string, decimals uint8) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, Wrap(CodeInvalidAmount, "malformed amount", err)
	}
	if d.Sign() < 0 {
		return 0, ErrInvalidAmount
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, Newf(CodeInvalidAmount, "amount has more than %d decimals", decimals)
	}
	bi := scaled.BigInt()
	if !bi.IsUint64() || bi.Uint64() > MaxAmount {
		return 0, ErrArithmeticOverflow
	}
	return bi.Uint64(), nil
}
