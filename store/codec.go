package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/stake-contract/ledger"
)

func recordKey(owner util.Uint160) []byte {
	return append([]byte{recordPrefix}, owner.BytesBE()...)
}

func balanceKey(account util.Uint160) []byte {
	return append([]byte{balancePrefix}, account.BytesBE()...)
}

func encodeRecord(rec ledger.Record) ([]byte, error) {
	return stackitem.Serialize(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(rec.Owner.BytesBE()),
		stackitem.NewBigInteger(new(big.Int).SetUint64(rec.Amount)),
	}))
}

func decodeRecord(data []byte) (ledger.Record, error) {
	item, err := stackitem.Deserialize(data)
	if err != nil {
		return ledger.Record{}, err
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return ledger.Record{}, errors.New("not a struct")
	}
	if len(arr) != 2 {
		return ledger.Record{}, errors.New("wrong number of structure elements")
	}

	var res ledger.Record

	b, err := arr[0].TryBytes()
	if err != nil {
		return res, fmt.Errorf("field Owner: %w", err)
	}

	res.Owner, err = util.Uint160DecodeBytesBE(b)
	if err != nil {
		return res, fmt.Errorf("field Owner: %w", err)
	}

	n, err := arr[1].TryInteger()
	if err != nil {
		return res, fmt.Errorf("field Amount: %w", err)
	}
	if !n.IsUint64() {
		return res, fmt.Errorf("field Amount: %s is out of range", n)
	}

	res.Amount = n.Uint64()

	return res, nil
}

func encodeBalance(b uint64) []byte {
	res := make([]byte, 8)
	binary.BigEndian.PutUint64(res, b)
	return res
}

func decodeBalance(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid balance length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
