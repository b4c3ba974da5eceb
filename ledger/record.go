package ledger

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// State is a position of the Record in its lifecycle.
type State uint8

const (
	// StateEmpty is a state of initialized record with nothing staked.
	StateEmpty State = iota
	// StateFunded is a state of record with positive staked amount.
	StateFunded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFunded:
		return "funded"
	default:
		return "unknown"
	}
}

// Record is a stake account of a single owner.
type Record struct {
	// Account allowed to stake and unstake. Never changes after creation.
	Owner util.Uint160
	// Value held in the custody pool on behalf of the owner.
	Amount uint64
}

// State returns current lifecycle state of the record.
func (r Record) State() State {
	if r.Amount == 0 {
		return StateEmpty
	}
	return StateFunded
}
