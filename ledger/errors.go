package ledger

import "errors"

var (
	// ErrUnauthorized is returned when the caller is not the record owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoStakedAmount is returned on Unstake from an empty record.
	ErrNoStakedAmount = errors.New("no staked amount")
	// ErrInvalidAmount is returned on Stake with zero amount.
	ErrInvalidAmount = errors.New("non-positive amount")
	// ErrOverflow is returned when a balance or a record amount would
	// exceed its numeric range.
	ErrOverflow = errors.New("amount overflow")

	// ErrInsufficientFunds must be returned by Session.Transfer when the
	// debited counter can't cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrRecordExists must be returned by Session.CreateRecord when the
	// owner already has a record.
	ErrRecordExists = errors.New("record already exists")
	// ErrRecordNotFound must be returned by Session.Record when the owner
	// has no record.
	ErrRecordNotFound = errors.New("record not found")
)
