package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Prm groups parameters of the Ledger.
type Prm struct {
	// Storage and balances. Required.
	Host Host

	// Account of the custody pool shared by all records.
	Pool util.Uint160

	// Receives audit events. Optional.
	Sink Sink

	// Writes progress into the log. Optional.
	Logger *zap.Logger
}

// Ledger applies stake operations to the records and balances of the Host.
//
// Ledger instances must be constructed using New.
type Ledger struct {
	host Host
	pool util.Uint160
	sink Sink
	log  *zap.Logger
}

// New constructs Ledger from the given parameters.
func New(prm Prm) (*Ledger, error) {
	if prm.Host == nil {
		return nil, errors.New("missing host")
	}

	res := &Ledger{
		host: prm.Host,
		pool: prm.Pool,
		sink: prm.Sink,
		log:  prm.Logger,
	}

	if res.sink == nil {
		res.sink = nopSink{}
	}

	if res.log == nil {
		res.log = zap.NewNop()
	}

	return res, nil
}

// Pool returns account of the custody pool.
func (x *Ledger) Pool() util.Uint160 {
	return x.pool
}

// Initialize creates empty record bound to the owner. Returns ErrRecordExists
// if the owner already has a record.
func (x *Ledger) Initialize(owner util.Uint160) (Record, error) {
	s, err := x.host.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin session: %w", err)
	}

	defer s.Discard()

	rec := Record{Owner: owner}

	err = s.CreateRecord(rec)
	if err != nil {
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	err = s.Commit()
	if err != nil {
		return Record{}, fmt.Errorf("commit session: %w", err)
	}

	x.log.Debug("stake record initialized", zap.Stringer("owner", addr(owner)))
	x.notify(KindInitialized, owner, 0)

	return rec, nil
}

// StakePrm groups parameters of Ledger.Stake.
type StakePrm struct {
	// Owner of the record to stake to.
	Owner util.Uint160

	// Authenticated identity of the caller. Its external holding is debited.
	Caller util.Uint160

	// Positive amount to move into the custody pool.
	Amount uint64
}

// Stake moves prm.Amount from the external holding of the caller into the
// custody pool and increases the record amount by the same value.
//
// Returns:
//   - ErrInvalidAmount if prm.Amount is zero;
//   - ErrRecordNotFound if prm.Owner has no record;
//   - ErrUnauthorized if prm.Caller is not the record owner;
//   - ErrOverflow if the record amount or the pool balance overflows;
//   - ErrInsufficientFunds if the holding can't cover prm.Amount.
//
// Nothing is changed on error.
func (x *Ledger) Stake(prm StakePrm) error {
	if prm.Amount == 0 {
		return ErrInvalidAmount
	}

	s, err := x.host.Begin()
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	defer s.Discard()

	rec, err := s.Record(prm.Owner)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	if !prm.Caller.Equals(rec.Owner) {
		return ErrUnauthorized
	}

	staked, err := AddAmount(rec.Amount, prm.Amount)
	if err != nil {
		return fmt.Errorf("increase staked amount: %w", err)
	}

	err = s.Transfer(prm.Caller, x.pool, prm.Amount)
	if err != nil {
		return fmt.Errorf("transfer to custody pool: %w", err)
	}

	rec.Amount = staked

	err = s.PutRecord(rec)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	err = s.Commit()
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	x.log.Info("staked",
		zap.Stringer("owner", addr(rec.Owner)),
		zap.Uint64("amount", prm.Amount),
		zap.Uint64("total", rec.Amount),
	)
	x.notify(KindStaked, rec.Owner, prm.Amount)

	return nil
}

// UnstakePrm groups parameters of Ledger.Unstake.
type UnstakePrm struct {
	// Owner of the record to unstake from.
	Owner util.Uint160

	// Authenticated identity of the caller. Its external holding is credited.
	Caller util.Uint160
}

// Unstake moves the whole staked amount from the custody pool back to the
// external holding of the caller, resets the record and returns the withdrawn amount.
//
// Returns:
//   - ErrRecordNotFound if prm.Owner has no record;
//   - ErrUnauthorized if prm.Caller is not the record owner;
//   - ErrNoStakedAmount if the record is empty;
//   - errors of the Host transfer.
//
// Nothing is changed on error.
func (x *Ledger) Unstake(prm UnstakePrm) (uint64, error) {
	s, err := x.host.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin session: %w", err)
	}

	defer s.Discard()

	rec, err := s.Record(prm.Owner)
	if err != nil {
		return 0, fmt.Errorf("read record: %w", err)
	}

	if !prm.Caller.Equals(rec.Owner) {
		return 0, ErrUnauthorized
	}

	amount := rec.Amount
	if amount == 0 {
		return 0, ErrNoStakedAmount
	}

	err = s.Transfer(x.pool, prm.Caller, amount)
	if err != nil {
		return 0, fmt.Errorf("transfer from custody pool: %w", err)
	}

	rec.Amount = 0

	err = s.PutRecord(rec)
	if err != nil {
		return 0, fmt.Errorf("update record: %w", err)
	}

	err = s.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit session: %w", err)
	}

	x.log.Info("unstaked",
		zap.Stringer("owner", addr(rec.Owner)),
		zap.Uint64("amount", amount),
	)
	x.notify(KindUnstaked, rec.Owner, amount)

	return amount, nil
}

// Record reads current record of the owner.
func (x *Ledger) Record(owner util.Uint160) (Record, error) {
	s, err := x.host.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin session: %w", err)
	}

	defer s.Discard()

	return s.Record(owner)
}

func (x *Ledger) notify(kind Kind, owner util.Uint160, amount uint64) {
	x.sink.Notify(Event{
		ID:     uuid.New(),
		Kind:   kind,
		Owner:  owner,
		Amount: amount,
	})
}

// addr prints the account as Neo address.
type addr util.Uint160

func (a addr) String() string {
	return address.Uint160ToString(util.Uint160(a))
}
