package state

import (
	"sync"

	"rewardledger/core/events"
	"rewardledger/storage"
)

// Store serialises every state transition over a database. Update runs one
// transaction at a time; View reads committed state and never observes a
// partially applied Update.
type Store struct {
	db      storage.Database
	mu      sync.RWMutex
	emitter events.Emitter
}

// NewStore wraps db. Committed events are discarded until SetEmitter is called.
func NewStore(db storage.Database) *Store {
	return &Store{db: db, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the sink that receives events after each commit.
func (s *Store) SetEmitter(emitter events.Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	s.emitter = emitter
}

// Update runs fn inside a transaction. When fn returns an error nothing is
// written; otherwise the transaction is committed atomically and its events
// are delivered to the emitter in sequence order before Update returns.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := Begin(s.db)
	defer tx.Discard()
	if err := fn(tx); err != nil {
		return err
	}
	committed, err := tx.Commit()
	if err != nil {
		return err
	}
	for _, evt := range committed {
		s.emitter.Emit(events.Record{Payload: evt})
	}
	return nil
}

// View runs fn against committed state.
func (s *Store) View(fn func(m *Manager) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(NewManager(s.db))
}
