package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrfusion/internal/metrics"
)

// Store keeps sessions in memory and evicts the ones idle longer than ttl.
type Store struct {
	ttl time.Duration
	log *zap.SugaredLogger
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewStore creates a store. With a positive ttl a janitor sweeps idle
// sessions until Close is called.
func NewStore(ttl time.Duration, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	st := &Store{
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		go st.janitor(sweepInterval(ttl))
	} else {
		close(st.done)
	}
	return st
}

func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	return iv
}

// Get returns the session with id, refreshing its idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// Create starts a session from the default settings.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.log, st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	st.log.Debugw("session created", "session", s.ID)
	return s
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Create(), true
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	if removed > 0 {
		metrics.SessionsActive.Set(float64(n))
		st.log.Debugw("sessions expired", "removed", removed, "active", n)
	}
	return removed
}

func (st *Store) janitor(every time.Duration) {
	defer close(st.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-st.stop:
			return
		case <-t.C:
			st.Sweep()
		}
	}
}

// Close stops the janitor and waits for it to exit.
func (st *Store) Close() {
	st.once.Do(func() { close(st.stop) })
	<-st.done
}
