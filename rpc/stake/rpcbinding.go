// Package stake contains RPC wrappers for Stake contract.
package stake

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// StakeRecord is a contract-specific stake.Record type used by its methods.
type StakeRecord struct {
	Owner util.Uint160
	Amount *big.Int
}

// InitializedEvent represents "Initialized" event emitted by the contract.
type InitializedEvent struct {
	Owner util.Uint160
}

// StakedEvent represents "Staked" event emitted by the contract.
type StakedEvent struct {
	Owner util.Uint160
	Amount *big.Int
}

// UnstakedEvent represents "Unstaked" event emitted by the contract.
type UnstakedEvent struct {
	Owner util.Uint160
	Amount *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	nep17.Actor

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	gas *nep17.Token
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, gas.New(actor), hash}
}

// StakeOf invokes `stakeOf` method of contract.
func (c *ContractReader) StakeOf(owner util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "stakeOf", owner))
}

// RecordOf invokes `recordOf` method of contract.
func (c *ContractReader) RecordOf(owner util.Uint160) (*StakeRecord, error) {
	return itemToStakeRecord(unwrap.Item(c.invoker.Call(c.hash, "recordOf", owner)))
}

// TotalStaked invokes `totalStaked` method of contract.
func (c *ContractReader) TotalStaked() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "totalStaked"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// Initialize creates a transaction invoking `initialize` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Initialize(owner util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "initialize", owner)
}

// InitializeTransaction creates a transaction invoking `initialize` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) InitializeTransaction(owner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "initialize", owner)
}

// InitializeUnsigned creates a transaction invoking `initialize` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) InitializeUnsigned(owner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "initialize", nil, owner)
}

// Stake creates a transaction transferring amount of GAS from the sender to
// the contract and staking it to the owner record.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Stake(from util.Uint160, owner util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.gas.Transfer(from, c.hash, amount, owner)
}

// StakeTransaction creates a transaction transferring amount of GAS from the
// sender to the contract and staking it to the owner record.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) StakeTransaction(from util.Uint160, owner util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.gas.TransferTransaction(from, c.hash, amount, owner)
}

// StakeUnsigned creates a transaction transferring amount of GAS from the
// sender to the contract and staking it to the owner record.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) StakeUnsigned(from util.Uint160, owner util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.gas.TransferUnsigned(from, c.hash, amount, owner)
}

// Unstake creates a transaction invoking `unstake` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Unstake(owner util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "unstake", owner)
}

// UnstakeTransaction creates a transaction invoking `unstake` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UnstakeTransaction(owner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "unstake", owner)
}

// UnstakeUnsigned creates a transaction invoking `unstake` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UnstakeUnsigned(owner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "unstake", nil, owner)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// itemToStakeRecord converts stack item into *StakeRecord.
func itemToStakeRecord(item stackitem.Item, err error) (*StakeRecord, error) {
	if err != nil {
		return nil, err
	}
	var res = new(StakeRecord)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of StakeRecord from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *StakeRecord) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	res.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// InitializedEventsFromApplicationLog retrieves a set of all emitted events
// with "Initialized" name from the provided [result.ApplicationLog].
func InitializedEventsFromApplicationLog(log *result.ApplicationLog) ([]*InitializedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*InitializedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Initialized" {
				continue
			}
			event := new(InitializedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize InitializedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to InitializedEvent or
// returns an error if it's not possible to do to so.
func (e *InitializedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Owner, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	return nil
}

// StakedEventsFromApplicationLog retrieves a set of all emitted events
// with "Staked" name from the provided [result.ApplicationLog].
func StakedEventsFromApplicationLog(log *result.ApplicationLog) ([]*StakedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*StakedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Staked" {
				continue
			}
			event := new(StakedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize StakedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to StakedEvent or
// returns an error if it's not possible to do to so.
func (e *StakedEvent) FromStackItem(item *stackitem.Array) error {
	owner, amount, err := ownerAmountFromStackItem(item)
	if err != nil {
		return err
	}
	e.Owner, e.Amount = owner, amount
	return nil
}

// UnstakedEventsFromApplicationLog retrieves a set of all emitted events
// with "Unstaked" name from the provided [result.ApplicationLog].
func UnstakedEventsFromApplicationLog(log *result.ApplicationLog) ([]*UnstakedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UnstakedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Unstaked" {
				continue
			}
			event := new(UnstakedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize UnstakedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to UnstakedEvent or
// returns an error if it's not possible to do to so.
func (e *UnstakedEvent) FromStackItem(item *stackitem.Array) error {
	owner, amount, err := ownerAmountFromStackItem(item)
	if err != nil {
		return err
	}
	e.Owner, e.Amount = owner, amount
	return nil
}

func ownerAmountFromStackItem(item *stackitem.Array) (util.Uint160, *big.Int, error) {
	if item == nil {
		return util.Uint160{}, nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return util.Uint160{}, nil, errors.New("not an array")
	}
	if len(arr) != 2 {
		return util.Uint160{}, nil, errors.New("wrong number of structure elements")
	}

	owner, err := itemToUint160(arr[0])
	if err != nil {
		return util.Uint160{}, nil, fmt.Errorf("field Owner: %w", err)
	}

	amount, err := arr[1].TryInteger()
	if err != nil {
		return util.Uint160{}, nil, fmt.Errorf("field Amount: %w", err)
	}

	return owner, amount, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
