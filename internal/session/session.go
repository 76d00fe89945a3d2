// Package session owns the settings of each configurator session. All
// changes go through a Session so every update replaces the whole snapshot
// in one step.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrfusion/internal/logo"
	"github.com/cristianadrielbraun/qrfusion/internal/metrics"
	"github.com/cristianadrielbraun/qrfusion/internal/render"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

// ErrSuperseded is reported by a logo load that finished after a newer logo
// change (upload, removal or reset) had already been applied.
var ErrSuperseded = errors.New("logo change superseded")

// LogoResult is the outcome of an asynchronous logo load.
type LogoResult struct {
	Settings settings.Settings
	Err      error
}

// Session is one user's configurator state.
type Session struct {
	ID string

	log *zap.SugaredLogger

	mu       sync.Mutex
	current  settings.Settings
	logoGen  uint64
	preview  *render.Preview
	lastSeen time.Time
}

func newSession(id string, log *zap.SugaredLogger, now time.Time) *Session {
	return &Session{
		ID:       id,
		log:      log,
		current:  settings.Default(),
		lastSeen: now,
	}
}

// Settings returns the current snapshot.
func (s *Session) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Apply replaces the snapshot with one that has u applied and returns it.
func (s *Session) Apply(u settings.Update) settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.With(u)
	return s.current
}

// Reset restores the default snapshot in a single transition. A logo load
// still in flight will not be applied afterwards.
func (s *Session) Reset() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoGen++
	s.current = settings.Default()
	return s.current
}

// RemoveLogo clears the logo payload, keeping logo sizing and excavation.
func (s *Session) RemoveLogo() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoGen++
	s.current = s.current.WithLogo("")
	return s.current
}

// LoadLogo reads a logo file in the background. Until it completes the
// previous logo stays in effect; on success the payload is applied atomically.
// The returned channel receives exactly one result and is then closed.
func (s *Session) LoadLogo(r io.Reader, maxBytes int64) <-chan LogoResult {
	s.mu.Lock()
	s.logoGen++
	gen := s.logoGen
	s.mu.Unlock()

	out := make(chan LogoResult, 1)
	go func() {
		defer close(out)
		src, err := logo.Read(r, maxBytes)
		if err != nil {
			metrics.LogoUploads.WithLabelValues(metrics.ResultRejected).Inc()
			s.log.Infow("logo rejected", "session", s.ID, "error", err)
			out <- LogoResult{Settings: s.Settings(), Err: err}
			return
		}

		s.mu.Lock()
		if gen != s.logoGen {
			cur := s.current
			s.mu.Unlock()
			s.log.Debugw("logo load superseded", "session", s.ID)
			out <- LogoResult{Settings: cur, Err: ErrSuperseded}
			return
		}
		s.current = s.current.WithLogo(src)
		cur := s.current
		s.mu.Unlock()

		metrics.LogoUploads.WithLabelValues(metrics.ResultOK).Inc()
		s.log.Debugw("logo applied", "session", s.ID, "bytes", len(src))
		out <- LogoResult{Settings: cur}
	}()
	return out
}

// Preview composes the current snapshot, reusing the previous composition
// when nothing changed. The surface it holds is what Export draws from.
func (s *Session) Preview() (*render.Preview, error) {
	s.mu.Lock()
	snap := s.current
	if s.preview != nil && s.preview.Settings == snap {
		p := s.preview
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	p, err := render.Compose(snap)
	if err != nil {
		metrics.Renders.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("compose preview: %w", err)
	}
	metrics.Renders.WithLabelValues(metrics.ResultOK).Inc()

	s.mu.Lock()
	if s.current == snap {
		s.preview = p
	}
	s.mu.Unlock()
	return p, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
