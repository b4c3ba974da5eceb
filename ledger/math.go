package ledger

import "math"

// AddAmount returns a+b and ErrOverflow if the sum doesn't fit uint64.
func AddAmount(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// SubAmount returns a-b and ErrInsufficientFunds if b exceeds a.
func SubAmount(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrInsufficientFunds
	}
	return a - b, nil
}
