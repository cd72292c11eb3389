package tablet

import (
	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

// session pins the snapshot an isolated scan reads across its round trips.
type session struct {
	id       string
	table    string
	snap     *pebble.Snapshot
	lastUsed time.Time
	// busy is held while a request reads the snapshot.
	busy sync.Mutex
}

type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[string]*session)}
}

// open pins a snapshot of db and returns its session, already acquired.
func (s *sessions) open(table string, db *pebble.DB, now time.Time) *session {
	sess := &session{
		id:       uuid.NewString(),
		table:    table,
		snap:     db.NewSnapshot(),
		lastUsed: now,
	}
	sess.busy.Lock()

	s.mu.Lock()
	s.byID[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// acquire returns the session for a follow-up request, or false when it is gone.
func (s *sessions) acquire(id, table string, now time.Time) (*session, bool) {
	s.mu.Lock()
	sess, ok := s.byID[id]
	s.mu.Unlock()
	if !ok || sess.table != table {
		return nil, false
	}

	sess.busy.Lock()
	// the session may have been closed while we waited
	s.mu.Lock()
	_, ok = s.byID[id]
	s.mu.Unlock()
	if !ok {
		sess.busy.Unlock()
		return nil, false
	}
	sess.lastUsed = now
	return sess, true
}

func (s *sessions) release(sess *session) {
	sess.busy.Unlock()
}

// finish closes an acquired session once its scan is complete.
func (s *sessions) finish(sess *session) {
	s.mu.Lock()
	delete(s.byID, sess.id)
	s.mu.Unlock()
	s.closeSnapshot(sess)
	sess.busy.Unlock()
}

// expire closes idle sessions last used before cutoff and returns how many it closed. Sessions
// serving a request are left alone.
func (s *sessions) expire(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0
	for id, sess := range s.byID {
		if !sess.busy.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			delete(s.byID, id)
			s.closeSnapshot(sess)
			closed++
		}
		sess.busy.Unlock()
	}
	return closed
}

func (s *sessions) dropTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.byID {
		if sess.table != table {
			continue
		}
		delete(s.byID, id)
		s.closeSnapshot(sess)
	}
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.byID {
		delete(s.byID, id)
		s.closeSnapshot(sess)
	}
}

func (s *sessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *sessions) closeSnapshot(sess *session) {
	if err := sess.snap.Close(); err != nil {
		log.Warn().Err(err).Str("session", sess.id).Msg("failed to close snapshot")
	}
}
