package stake

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/stake-contract/common"
)

// Record structure stores stake account of a single owner.
type Record struct {
	// Account allowed to stake and unstake
	Owner interop.Hash160
	// GAS held in custody for the owner
	Amount int
}

const (
	recordPrefix = 'r'
	totalKey     = 't'

	// Serialized item type prefixes accepted as owner in the transfer data.
	byteStringType = 0x28
	bufferType     = 0x30

	// maxStakeAmount limits staked amount of a single record.
	maxStakeAmount = 1<<63 - 1
)

// Exceptions thrown by the contract methods.
const (
	ErrUnauthorized    = "unauthorized"
	ErrNoStakedAmount  = "no staked amount"
	ErrRecordExists    = "record already exists"
	ErrRecordNotFound  = "record not found"
	ErrInvalidAmount   = "non-positive amount"
	ErrOverflow        = "staked amount overflow"
	ErrInvalidOwner    = "invalid owner"
	ErrGASOnly         = "only GAS can be staked"
	ErrTransferFailure = "failed to transfer funds"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("stake contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic(common.ErrUpdateAccess)
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("stake contract updated")
}

// Initialize creates empty stake record of the owner. It must be signed by
// the owner and can be called only once per owner.
//
// Produces Initialized notification.
func Initialize(owner interop.Hash160) {
	if !common.IsHash160(owner) {
		panic("initialize: " + ErrInvalidOwner)
	}

	if !runtime.CheckWitness(owner) {
		panic("initialize: " + ErrUnauthorized)
	}

	ctx := storage.GetContext()
	if storage.Get(ctx, recordKey(owner)) != nil {
		panic("initialize: " + ErrRecordExists)
	}

	putRecord(ctx, Record{Owner: owner, Amount: 0})

	runtime.Notify("Initialized", owner)
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Transferring GAS to the contract stakes it: data must contain the owner of
// the record to stake to (or be empty to stake to the sender's own record),
// and the sender must be that owner. The whole transfer fails otherwise.
//
// Produces Staked notification.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	if !runtime.GetCallingScriptHash().Equals(gas.Hash) {
		panic("stake: " + ErrGASOnly)
	}

	if !common.IsHash160(from) {
		panic("stake: " + ErrUnauthorized)
	}

	if amount <= 0 {
		panic("stake: " + ErrInvalidAmount)
	}

	owner := from
	if data != nil {
		owner = ownerFromData(data)
	}

	ctx := storage.GetContext()
	rec := getRecord(ctx, owner, "stake")

	if !rec.Owner.Equals(from) {
		panic("stake: " + ErrUnauthorized)
	}

	if amount > maxStakeAmount-rec.Amount {
		panic("stake: " + ErrOverflow)
	}

	rec.Amount += amount
	putRecord(ctx, rec)
	storage.Put(ctx, totalKey, common.GetInt(ctx, totalKey)+amount)

	runtime.Log("stake: funds have been staked")
	runtime.Notify("Staked", owner, amount)
}

// Unstake transfers the whole staked GAS back to the owner and resets the
// record. It must be signed by the owner. Returns the withdrawn amount.
//
// Produces Unstaked notification.
func Unstake(owner interop.Hash160) int {
	ctx := storage.GetContext()
	rec := getRecord(ctx, owner, "unstake")

	if !runtime.CheckWitness(rec.Owner) {
		panic("unstake: " + ErrUnauthorized)
	}

	amount := rec.Amount
	if amount == 0 {
		panic("unstake: " + ErrNoStakedAmount)
	}

	rec.Amount = 0
	putRecord(ctx, rec)
	storage.Put(ctx, totalKey, common.GetInt(ctx, totalKey)-amount)

	if !gas.Transfer(runtime.GetExecutingScriptHash(), rec.Owner, amount, nil) {
		panic("unstake: " + ErrTransferFailure)
	}

	runtime.Log("unstake: funds have been returned")
	runtime.Notify("Unstaked", rec.Owner, amount)

	return amount
}

// StakeOf returns amount staked by the owner. Returns 0 if the owner has no
// record.
func StakeOf(owner interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, recordKey(owner))
	if data == nil {
		return 0
	}

	rec := std.Deserialize(data.([]byte)).(Record)

	return rec.Amount
}

// RecordOf returns stake record of the owner. Panics if the owner has no
// record.
func RecordOf(owner interop.Hash160) Record {
	ctx := storage.GetReadOnlyContext()
	return getRecord(ctx, owner, "recordOf")
}

// TotalStaked returns sum of all staked amounts. Contract GAS balance is never
// less than that.
func TotalStaked() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, totalKey)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// ownerFromData accepts only 20-byte byte strings (or buffers) as owner.
func ownerFromData(data any) interop.Hash160 {
	raw := std.Serialize(data)
	if len(raw) != 2+interop.Hash160Len || raw[1] != interop.Hash160Len ||
		(raw[0] != byteStringType && raw[0] != bufferType) {
		panic("stake: " + ErrInvalidOwner)
	}

	return raw[2:]
}

func recordKey(owner interop.Hash160) []byte {
	return append([]byte{recordPrefix}, owner...)
}

func getRecord(ctx storage.Context, owner interop.Hash160, method string) Record {
	data := storage.Get(ctx, recordKey(owner))
	if data == nil {
		panic(method + ": " + ErrRecordNotFound)
	}

	return std.Deserialize(data.([]byte)).(Record)
}

func putRecord(ctx storage.Context, rec Record) {
	common.SetSerialized(ctx, recordKey(rec.Owner), rec)
}
