// ABOUTME: In-memory session store: id -> session map guarded by a short-held
// ABOUTME: RWMutex, plus a per-session turn mutex so one turn never interleaves with another.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formpilot/formpilot-ai/formcontext"
	"github.com/formpilot/formpilot-ai/metrics"
)

// DefaultTTL is the default expiry window for an idle session.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned by Get and Delete for an unknown id, including one
// already removed by SweepExpired; Get does not itself check expiry.
var ErrNotFound = errors.New("session: not found")

// entry bundles a session with the mutex that serializes turns against it.
// The turn mutex is acquired by the caller (the HTTP chat handler) for the
// duration of one turn; the store itself never holds it.
type entry struct {
	turnMu  sync.Mutex
	session *Session
}

// Store is an in-memory, process-local map of conversation id to Session.
// Persistent storage is out of scope; state does not survive a restart.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration

	// Metrics is optional; a nil Metrics disables all instrumentation.
	Metrics *metrics.Metrics
}

// NewStore builds an empty Store. A zero ttl uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Create parses formContextMD once to populate RequiredFields and
// FieldTypes, then stores a new Session. If id is empty a uuid v4 string is
// generated.
func (st *Store) Create(formContextMD string, id string) (*Session, error) {
	form, err := formcontext.Parse(formContextMD)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}

	s := newSession(id, formContextMD, form)

	st.mu.Lock()
	st.entries[id] = &entry{session: s}
	st.mu.Unlock()

	if st.Metrics != nil {
		st.Metrics.SessionCreated()
	}

	return s, nil
}

// Get returns the session for id and touches LastAccessed. Returns
// ErrNotFound if id is unknown.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	e, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e.session.LastAccessed = time.Now()
	return e.session, nil
}

// Delete removes a session unconditionally. Returns ErrNotFound if id is
// unknown.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.entries[id]; !ok {
		return ErrNotFound
	}
	delete(st.entries, id)
	if st.Metrics != nil {
		st.Metrics.SessionClosed(false)
	}
	return nil
}

// Lock acquires the per-session turn mutex for id, blocking until available.
// The returned unlock function must be called exactly once, typically via
// defer, before the turn's result is returned to the caller.
func (st *Store) Lock(id string) (unlock func(), err error) {
	st.mu.RLock()
	e, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e.turnMu.Lock()
	return e.turnMu.Unlock, nil
}

// SweepExpired deletes every session whose LastAccessed is older than the
// store's ttl, skipping any session whose turn mutex is currently held (a
// non-blocking TryLock) so a turn in progress is never interrupted; that
// session is picked up on the next sweep instead.
func (st *Store) SweepExpired(now time.Time) (deleted []string) {
	st.mu.RLock()
	var candidates []string
	for id, e := range st.entries {
		if now.Sub(e.session.LastAccessed) > st.ttl {
			candidates = append(candidates, id)
		}
	}
	st.mu.RUnlock()

	for _, id := range candidates {
		st.mu.RLock()
		e, ok := st.entries[id]
		st.mu.RUnlock()
		if !ok {
			continue
		}
		if !e.turnMu.TryLock() {
			continue
		}
		st.mu.Lock()
		delete(st.entries, id)
		st.mu.Unlock()
		e.turnMu.Unlock()
		deleted = append(deleted, id)
		if st.Metrics != nil {
			st.Metrics.SessionClosed(true)
		}
	}
	return deleted
}

// Len reports the number of live sessions, for metrics gauges.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}
