package state

import (
	"errors"
	"fmt"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"rewardledger/core/types"
	"rewardledger/storage"
)

// ErrTxClosed is returned when a committed or discarded transaction is used.
var ErrTxClosed = errors.New("state: transaction closed")

// kvStore is the raw key space the Manager reads and writes. Missing keys
// return a nil slice and no error.
type kvStore interface {
	get(key []byte) ([]byte, error)
	put(key, value []byte) error
	delete(key []byte) error
}

// Manager provides typed access to ledger state. A Manager returned by
// NewManager reads and writes the database directly; the Manager embedded in a
// Tx buffers writes until Commit.
type Manager struct {
	kv      kvStore
	pending []*types.Event
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{kv: dbStore{db: db}}
}

// Begin opens a write-buffered transaction over the database. Reads observe the
// transaction's own writes first.
func Begin(db storage.Database) *Tx {
	ov := &overlay{
		parent:  db,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
	return &Tx{Manager: &Manager{kv: ov}, overlay: ov}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 so callers can compose arbitrary-length keys.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.kv.put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.kv.get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under the key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.kv.delete(kvKey(key))
}

func (m *Manager) loadUint64(key []byte) (uint64, error) {
	var value uint64
	if _, err := m.KVGet(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (m *Manager) writeUint64(key []byte, value uint64) error {
	return m.KVPut(key, value)
}

// AppendEvent records the event in the persisted event log and keeps it for
// delivery to sinks once the surrounding transaction commits.
func (m *Manager) AppendEvent(evt *types.Event) error {
	if evt == nil {
		return nil
	}
	seq, err := m.appendEventLog(evt)
	if err != nil {
		return err
	}
	clone := *evt
	clone.Sequence = seq
	m.pending = append(m.pending, &clone)
	return nil
}

// Tx is a state transaction. All writes stay in memory until Commit applies
// them as a single storage batch.
type Tx struct {
	*Manager
	overlay *overlay
	closed  bool
}

// Commit atomically writes the buffered changes and returns the events appended
// during the transaction.
func (tx *Tx) Commit() ([]*types.Event, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	tx.closed = true
	if err := tx.overlay.flush(); err != nil {
		return nil, fmt.Errorf("state: commit: %w", err)
	}
	events := tx.pending
	tx.pending = nil
	return events, nil
}

// Discard drops every buffered change. Discarding a committed transaction is a
// no-op, which lets callers defer Discard unconditionally.
func (tx *Tx) Discard() {
	if tx.closed {
		return
	}
	tx.closed = true
	tx.overlay.writes = nil
	tx.overlay.deletes = nil
	tx.pending = nil
}

type dbStore struct {
	db storage.Database
}

func (s dbStore) get(key []byte) ([]byte, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (s dbStore) put(key, value []byte) error { return s.db.Put(key, value) }

func (s dbStore) delete(key []byte) error { return s.db.Delete(key) }

type overlay struct {
	parent  storage.Database
	writes  map[string][]byte
	deletes map[string]struct{}
}

func (o *overlay) get(key []byte) ([]byte, error) {
	if o.writes == nil {
		return nil, ErrTxClosed
	}
	k := string(key)
	if value, ok := o.writes[k]; ok {
		return append([]byte(nil), value...), nil
	}
	if _, ok := o.deletes[k]; ok {
		return nil, nil
	}
	return dbStore{db: o.parent}.get(key)
}

func (o *overlay) put(key, value []byte) error {
	if o.writes == nil {
		return ErrTxClosed
	}
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *overlay) delete(key []byte) error {
	if o.writes == nil {
		return ErrTxClosed
	}
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

func (o *overlay) flush() error {
	if len(o.writes) == 0 && len(o.deletes) == 0 {
		return nil
	}
	batch := o.parent.NewBatch()
	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		batch.Put([]byte(k), o.writes[k])
	}
	for k := range o.deletes {
		batch.Delete([]byte(k))
	}
	return batch.Write()
}
