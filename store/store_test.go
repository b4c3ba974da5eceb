package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/stake-contract/ledger"
	"github.com/stretchr/testify/require"
)

var (
	acc1 = util.Uint160{1}
	acc2 = util.Uint160{2}
)

func TestSession_Discard(t *testing.T) {
	st := NewMemory()

	s, err := st.Begin()
	require.NoError(t, err)

	require.NoError(t, s.CreateRecord(ledger.Record{Owner: acc1, Amount: 3}))
	require.NoError(t, s.(*session).credit(acc1, 10))

	rec, err := s.Record(acc1)
	require.NoError(t, err)
	require.EqualValues(t, 3, rec.Amount)

	s.Discard()
	s.Discard()

	s, err = st.Begin()
	require.NoError(t, err)
	defer s.Discard()

	_, err = s.Record(acc1)
	require.ErrorIs(t, err, ledger.ErrRecordNotFound)

	b, err := st.Balance(acc1)
	require.NoError(t, err)
	require.Zero(t, b)
}

func TestSession_Commit(t *testing.T) {
	st := NewMemory()

	s, err := st.Begin()
	require.NoError(t, err)

	require.NoError(t, s.CreateRecord(ledger.Record{Owner: acc1}))
	require.ErrorIs(t, s.CreateRecord(ledger.Record{Owner: acc1}), ledger.ErrRecordExists)
	require.NoError(t, s.Commit())

	require.ErrorIs(t, s.Commit(), errSessionFinished)
	require.ErrorIs(t, s.PutRecord(ledger.Record{Owner: acc2}), errSessionFinished)
	s.Discard()

	s, err = st.Begin()
	require.NoError(t, err)
	defer s.Discard()

	require.ErrorIs(t, s.CreateRecord(ledger.Record{Owner: acc1}), ledger.ErrRecordExists)

	rec, err := s.Record(acc1)
	require.NoError(t, err)
	require.Equal(t, ledger.Record{Owner: acc1}, rec)
}

func TestSession_Transfer(t *testing.T) {
	st := NewMemory()
	require.NoError(t, st.Mint(acc1, 10))

	s, err := st.Begin()
	require.NoError(t, err)

	require.ErrorIs(t, s.Transfer(acc1, acc2, 11), ledger.ErrInsufficientFunds)
	require.NoError(t, s.Transfer(acc1, acc2, 4))
	require.NoError(t, s.Transfer(acc2, acc2, 4))
	require.NoError(t, s.Commit())

	b1, err := st.Balance(acc1)
	require.NoError(t, err)
	require.EqualValues(t, 6, b1)

	b2, err := st.Balance(acc2)
	require.NoError(t, err)
	require.EqualValues(t, 4, b2)

	require.NoError(t, st.Mint(acc2, math.MaxUint64-4))
	require.ErrorIs(t, st.Mint(acc2, 1), ledger.ErrOverflow)

	s, err = st.Begin()
	require.NoError(t, err)
	defer s.Discard()

	require.ErrorIs(t, s.Transfer(acc1, acc2, 1), ledger.ErrOverflow)
}

func TestStore_IterateRecords(t *testing.T) {
	st := NewMemory()

	s, err := st.Begin()
	require.NoError(t, err)
	require.NoError(t, s.CreateRecord(ledger.Record{Owner: acc1, Amount: 1}))
	require.NoError(t, s.CreateRecord(ledger.Record{Owner: acc2, Amount: 2}))
	require.NoError(t, s.(*session).credit(acc1, 100))
	require.NoError(t, s.Commit())

	got := make(map[util.Uint160]uint64)
	require.NoError(t, st.IterateRecords(func(rec ledger.Record) bool {
		got[rec.Owner] = rec.Amount
		return true
	}))
	require.Equal(t, map[util.Uint160]uint64{acc1: 1, acc2: 2}, got)

	var n int
	require.NoError(t, st.IterateRecords(func(ledger.Record) bool {
		n++
		return false
	}))
	require.Equal(t, 1, n)

	report, err := st.Audit(acc1)
	require.NoError(t, err)
	require.Equal(t, AuditReport{Records: 2, Staked: 3, Pool: 100}, report)
	require.True(t, report.Consistent())

	report, err = st.Audit(acc2)
	require.NoError(t, err)
	require.False(t, report.Consistent())
}

func TestStore_CorruptedRecord(t *testing.T) {
	st := NewMemory()

	s, err := st.Begin()
	require.NoError(t, err)
	s.(*session).cache.Put(recordKey(acc1), []byte("garbage"))
	require.NoError(t, s.Commit())

	s, err = st.Begin()
	require.NoError(t, err)
	_, err = s.Record(acc1)
	require.Error(t, err)
	s.Discard()

	require.Error(t, st.IterateRecords(func(ledger.Record) bool { return true }))
}

func TestOpen(t *testing.T) {
	cfg := dbconfig.DBConfiguration{
		Type: "boltdb",
		BoltDBOptions: dbconfig.BoltDBOptions{
			FilePath: filepath.Join(t.TempDir(), "stake.bolt"),
		},
	}

	st, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, st.Mint(acc1, 42))
	require.NoError(t, st.Close())

	st, err = Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	b, err := st.Balance(acc1)
	require.NoError(t, err)
	require.EqualValues(t, 42, b)

	_, err = Open(dbconfig.DBConfiguration{Type: "unknown"})
	require.Error(t, err)
}
