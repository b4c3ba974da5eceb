package ledger

import "github.com/nspcc-dev/neo-go/pkg/util"

// Host provides storage and balance services the Ledger works on.
type Host interface {
	// Begin opens new Session. Sessions touching the same record must not
	// interleave: Begin blocks or fails until the previous one is finished.
	Begin() (Session, error)
}

// Session is a unit of work on the Host state. Changes made within the Session
// become visible only after Commit. Discard drops all uncommitted changes, it
// must be safe to call after Commit.
type Session interface {
	// Record returns record of the given owner. Returns ErrRecordNotFound if
	// there is no such record.
	Record(owner util.Uint160) (Record, error)

	// CreateRecord saves new record. Returns ErrRecordExists if owner already
	// has one.
	CreateRecord(Record) error

	// PutRecord overwrites existing record.
	PutRecord(Record) error

	// Transfer debits from and credits to by amount. Returns
	// ErrInsufficientFunds if from balance is less than amount and ErrOverflow
	// if to balance can't hold the result.
	Transfer(from, to util.Uint160, amount uint64) error

	// Commit applies all changes made within the Session atomically.
	Commit() error

	// Discard drops all uncommitted changes and releases the Session.
	Discard()
}
