/*
Package store implements ledger.Host on top of the Neo key-value storage.

Records and balances live in a single storage.Store. Each ledger.Session works
on a storage.MemCachedStore layered over it: nothing reaches the underlying
store until Commit, and Discard simply drops the layer.

Storage layout:

	'r' + owner (20 bytes) -> record serialized as stack item struct [owner, amount]
	'b' + account (20 bytes) -> balance as 8-byte big-endian unsigned integer

Sessions are serialized per Store.
*/
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/stake-contract/ledger"
)

const (
	recordPrefix  = 'r'
	balancePrefix = 'b'
)

// Store is a ledger.Host keeping its state in the storage.Store.
//
// Store instances must be constructed using New, NewMemory or Open.
type Store struct {
	mtx sync.Mutex
	db  storage.Store
}

// New returns Store working on the given storage.Store.
func New(db storage.Store) *Store {
	return &Store{db: db}
}

// NewMemory returns Store working in memory.
func NewMemory() *Store {
	return New(storage.NewMemoryStore())
}

// Open opens storage.Store described by cfg and returns Store working on it.
// Resulting Store should be closed when finished working with it.
func Open(cfg dbconfig.DBConfiguration) (*Store, error) {
	db, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
	}

	return New(db), nil
}

// Close closes the underlying storage.
func (x *Store) Close() error {
	return x.db.Close()
}

// Begin implements ledger.Host. Begin blocks until the previous session is
// committed or discarded.
func (x *Store) Begin() (ledger.Session, error) {
	x.mtx.Lock()

	return &session{
		st:    x,
		cache: storage.NewMemCachedStore(x.db),
	}, nil
}

// Mint credits account with amount out of thin air. Used to fund external
// holdings.
func (x *Store) Mint(account util.Uint160, amount uint64) error {
	s, err := x.Begin()
	if err != nil {
		return err
	}

	defer s.Discard()

	ss := s.(*session)

	err = ss.credit(account, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account.StringLE(), err)
	}

	return ss.Commit()
}

// Balance returns committed balance of the account. Missing accounts have zero
// balance.
func (x *Store) Balance(account util.Uint160) (uint64, error) {
	return readBalance(x.db, account)
}

// IterateRecords passes all committed records to f until it returns false.
func (x *Store) IterateRecords(f func(ledger.Record) bool) error {
	var err error

	x.db.Seek(storage.SeekRange{Prefix: []byte{recordPrefix}}, func(_, v []byte) bool {
		var rec ledger.Record

		rec, err = decodeRecord(v)
		if err != nil {
			err = fmt.Errorf("invalid record: %w", err)
			return false
		}

		return f(rec)
	})

	return err
}

// AuditReport is a result of Store.Audit.
type AuditReport struct {
	// Number of records.
	Records int
	// Sum of all record amounts.
	Staked uint64
	// Balance of the custody pool.
	Pool uint64
}

// Consistent checks that the custody pool covers all staked amounts. The pool
// may hold more than staked since it can receive unrelated funds.
func (r AuditReport) Consistent() bool {
	return r.Pool >= r.Staked
}

// Audit sums all committed records and compares it with the pool balance.
func (x *Store) Audit(pool util.Uint160) (AuditReport, error) {
	var (
		res    AuditReport
		sumErr error
	)

	err := x.IterateRecords(func(rec ledger.Record) bool {
		res.Records++
		res.Staked, sumErr = ledger.AddAmount(res.Staked, rec.Amount)
		return sumErr == nil
	})
	if err == nil {
		err = sumErr
	}
	if err != nil {
		return res, fmt.Errorf("sum records: %w", err)
	}

	res.Pool, err = x.Balance(pool)
	if err != nil {
		return res, fmt.Errorf("read pool balance: %w", err)
	}

	return res, nil
}

var errSessionFinished = errors.New("session is already finished")

type session struct {
	st    *Store
	cache *storage.MemCachedStore
	done  bool
}

func (s *session) Record(owner util.Uint160) (ledger.Record, error) {
	v, err := s.cache.Get(recordKey(owner))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return ledger.Record{}, ledger.ErrRecordNotFound
		}
		return ledger.Record{}, err
	}

	return decodeRecord(v)
}

func (s *session) CreateRecord(rec ledger.Record) error {
	_, err := s.cache.Get(recordKey(rec.Owner))
	if err == nil {
		return ledger.ErrRecordExists
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return err
	}

	return s.PutRecord(rec)
}

func (s *session) PutRecord(rec ledger.Record) error {
	if s.done {
		return errSessionFinished
	}

	v, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.cache.Put(recordKey(rec.Owner), v)

	return nil
}

func (s *session) Transfer(from, to util.Uint160, amount uint64) error {
	err := s.debit(from, amount)
	if err != nil {
		return err
	}

	return s.credit(to, amount)
}

func (s *session) debit(account util.Uint160, amount uint64) error {
	b, err := readBalance(s.cache, account)
	if err != nil {
		return err
	}

	b, err = ledger.SubAmount(b, amount)
	if err != nil {
		return err
	}

	return s.putBalance(account, b)
}

func (s *session) credit(account util.Uint160, amount uint64) error {
	b, err := readBalance(s.cache, account)
	if err != nil {
		return err
	}

	b, err = ledger.AddAmount(b, amount)
	if err != nil {
		return err
	}

	return s.putBalance(account, b)
}

func (s *session) putBalance(account util.Uint160, b uint64) error {
	if s.done {
		return errSessionFinished
	}

	s.cache.Put(balanceKey(account), encodeBalance(b))

	return nil
}

func (s *session) Commit() error {
	if s.done {
		return errSessionFinished
	}

	defer s.release()

	_, err := s.cache.PersistSync()
	if err != nil {
		return fmt.Errorf("persist changes: %w", err)
	}

	return nil
}

func (s *session) Discard() {
	if !s.done {
		s.release()
	}
}

func (s *session) release() {
	s.done = true
	s.st.mtx.Unlock()
}

type getter interface {
	Get([]byte) ([]byte, error)
}

func readBalance(g getter, account util.Uint160) (uint64, error) {
	v, err := g.Get(balanceKey(account))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return decodeBalance(v)
}
