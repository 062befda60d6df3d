package ledger

import (
	"math"
	"math/big"
	"time"
)

// MaxAmount is the largest representable token amount. Amounts are stored in signed
// 64-bit columns, so the usable range is [0, 2^63-1].
const MaxAmount uint64 = math.MaxInt64

const (
	BpsDenominator = 10_000
	SecondsPerYear = 31_536_000

	// DefaultMaxRewardAPYBps is 1000% a year.
	DefaultMaxRewardAPYBps = 100_000
)

func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a || sum > MaxAmount {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmeticOverflow
	}
	return a - b, nil
}

// MulDiv returns floor(a*b/den) computed without intermediate overflow.
func MulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrArithmeticOverflow
	}
	n := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	n.Quo(n, new(big.Int).SetUint64(den))
	if !n.IsUint64() || n.Uint64() > MaxAmount {
		return 0, ErrArithmeticOverflow
	}
	return n.Uint64(), nil
}

// AccruedYield is principal * apyBps * elapsedSeconds / (10000 * 31536000), floored.
// Negative elapsed time accrues nothing.
func AccruedYield(principal, apyBps uint64, elapsed time.Duration) (uint64, error) {
	if principal == 0 || apyBps == 0 || elapsed <= 0 {
		return 0, nil
	}
	secs := uint64(elapsed / time.Second)
	if secs == 0 {
		return 0, nil
	}
	n := new(big.Int).SetUint64(principal)
	n.Mul(n, new(big.Int).SetUint64(apyBps))
	n.Mul(n, new(big.Int).SetUint64(secs))
	n.Quo(n, big.NewInt(BpsDenominator*SecondsPerYear))
	if !n.IsUint64() || n.Uint64() > MaxAmount {
		return 0, ErrArithmeticOverflow
	}
	return n.Uint64(), nil
}

func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
