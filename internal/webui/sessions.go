package webui

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
)

// errSessionsFull is returned when every session slot holds a submission
// in flight.
var errSessionsFull = errors.New("too many active sessions")

type session struct {
	form     *factcheck.Form
	lastSeen time.Time
}

// sessions maps cookie ids to forms. Each browser session owns one form.
type sessions struct {
	mu      sync.Mutex
	byID    map[string]*session
	max     int
	newForm func() *factcheck.Form
}

func newSessions(max int, newForm func() *factcheck.Form) *sessions {
	return &sessions{byID: make(map[string]*session), max: max, newForm: newForm}
}

// lookup returns the form of an existing session, or nil.
func (s *sessions) lookup(id string) *factcheck.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil
	}
	sess.lastSeen = time.Now()
	return sess.form
}

// get returns the form for id, creating a session with a fresh id when id
// is empty, malformed or unknown. At capacity the least recently seen idle
// session is closed to make room.
func (s *sessions) get(id string) (string, *factcheck.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	sess, ok := s.byID[id]
	if !ok {
		if s.max > 0 && len(s.byID) >= s.max && !s.evictOldest() {
			return "", nil, errSessionsFull
		}
		sess = &session{form: s.newForm()}
		s.byID[id] = sess
	}
	sess.lastSeen = time.Now()
	return id, sess.form, nil
}

// evictOldest closes the least recently seen session that is not loading.
// Callers hold mu.
func (s *sessions) evictOldest() bool {
	var (
		oldestID string
		oldest   *session
	)
	for id, sess := range s.byID {
		if sess.form.Snapshot().Loading {
			continue
		}
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest == nil {
		return false
	}
	oldest.form.Close()
	delete(s.byID, oldestID)
	return true
}

// expire closes and drops sessions idle for longer than ttl. Sessions with
// a submission in flight are kept.
func (s *sessions) expire(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	n := 0
	for id, sess := range s.byID {
		if sess.lastSeen.After(cutoff) || sess.form.Snapshot().Loading {
			continue
		}
		sess.form.Close()
		delete(s.byID, id)
		n++
	}
	return n
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.byID {
		sess.form.Close()
		delete(s.byID, id)
	}
}
