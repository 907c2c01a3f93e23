package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"campus_map/internal/adapters/observability"
	"campus_map/internal/domain"
)

// Renderer turns a session's view into something the page can draw.
type Renderer interface {
	Render() any
}

// NewSession is what the page hands over when it opens.
type NewSession struct {
	Host     domain.HostConfig
	Geo      *domain.LatLng // nil when the browser denied or lacks geolocation
	Upstream string         // backend session cookie forwarded on API calls
}

// Factory builds a controller and its renderer for one page.
type Factory func(ns NewSession) (*Controller, Renderer)

// SessionState is the persisted part of a page session, enough to rebuild
// the controller on another instance or after a restart.
type SessionState struct {
	ID       string            `json:"id"`
	Host     domain.HostConfig `json:"host"`
	Geo      *domain.LatLng    `json:"geo,omitempty"`
	Upstream string            `json:"upstream,omitempty"`
	Lang     domain.Lang       `json:"lang"`
	Category string            `json:"category"`
	Query    string            `json:"query"`
	StartID  *int64            `json:"start_id,omitempty"`
	EndID    *int64            `json:"end_id,omitempty"`
}

type Session struct {
	ID         string
	Controller *Controller
	View       Renderer

	base    SessionState
	touched atomic.Int64
}

func (s *Session) touch(now time.Time) { s.touched.Store(now.UnixNano()) }

// SessionService keeps one live controller per page session and mirrors its
// state into the StateStore.
type SessionService struct {
	store domain.StateStore
	build Factory
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.RWMutex
	live  map[string]*Session
	group singleflight.Group
}

func NewSessionService(store domain.StateStore, build Factory, ttl time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		store: store,
		build: build,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
		live:  map[string]*Session{},
	}
}

func stateKey(id string) string { return "view:" + id }

// Create opens a session and bootstraps its map. A failed initial load is
// already reported on the page and does not fail the session.
func (s *SessionService) Create(ctx context.Context, ns NewSession) (*Session, error) {
	ns.Host.Lang = domain.ParseLang(string(ns.Host.Lang))
	sess := s.newSession(SessionState{
		ID:       uuid.NewString(),
		Host:     ns.Host,
		Geo:      ns.Geo,
		Upstream: ns.Upstream,
		Lang:     ns.Host.Lang,
	})
	if err := sess.Controller.Bootstrap(ctx); err != nil {
		s.log.Warn().Err(err).Str("session", sess.ID).Msg("initial facility load failed")
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	s.remember(sess)
	s.log.Info().Str("session", sess.ID).Str("lang", string(ns.Host.Lang)).Bool("guest", ns.Host.IsGuest).Msg("view session created")
	return sess, nil
}

func (s *SessionService) newSession(st SessionState) *Session {
	c, view := s.build(NewSession{Host: st.Host, Geo: st.Geo, Upstream: st.Upstream})
	sess := &Session{ID: st.ID, Controller: c, View: view, base: st}
	sess.touch(s.now())
	return sess
}

func (s *SessionService) remember(sess *Session) {
	s.mu.Lock()
	s.live[sess.ID] = sess
	n := len(s.live)
	s.mu.Unlock()
	observability.LiveSessions.Set(float64(n))
}

// Get returns the live session, rebuilding it from the store when this
// instance does not hold it. Unknown ids give domain.ErrNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.live[id]
	s.mu.RUnlock()
	if ok {
		sess.touch(s.now())
		return sess, nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		s.mu.RLock()
		existing, ok := s.live[id]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}
		return s.rehydrate(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (s *SessionService) rehydrate(ctx context.Context, id string) (*Session, error) {
	var st SessionState
	found, err := s.store.Load(ctx, stateKey(id), &st)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	sess := s.newSession(st)
	c := sess.Controller
	c.d.Page.SetValue(domain.ElCategorySelect, st.Category)
	c.d.Page.SetValue(domain.ElSearchInput, st.Query)
	c.SetLanguage(domain.ParseLang(string(st.Lang)))
	if err := c.Bootstrap(ctx); err != nil {
		s.log.Warn().Err(err).Str("session", id).Msg("facility load failed while restoring session")
	}
	if st.StartID != nil || st.EndID != nil {
		if err := c.RestoreRoute(ctx, st.StartID, st.EndID); err != nil {
			s.log.Warn().Err(err).Str("session", id).Msg("route restore failed")
		}
	}
	s.remember(sess)
	s.log.Info().Str("session", id).Msg("view session restored")
	return sess, nil
}

// Dispatch forwards a page event and saves the resulting state. The
// dispatch error is returned alongside the session so callers can still
// render the page.
func (s *SessionService) Dispatch(ctx context.Context, id string, ev domain.Event) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	derr := sess.Controller.Dispatch(ctx, ev)
	if err := s.persist(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("session save failed")
	}
	return sess, derr
}

func (s *SessionService) persist(ctx context.Context, sess *Session) error {
	c := sess.Controller
	st := sess.base
	st.Lang = c.Lang()
	q := c.Filters()
	st.Category, st.Query = q.Category, q.Q
	st.StartID, st.EndID = nil, nil
	start, end, _ := c.Route()
	if start != nil {
		st.StartID = &start.ID
	}
	if end != nil {
		st.EndID = &end.ID
	}
	if err := s.store.Save(ctx, stateKey(sess.ID), st, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SessionService) Drop(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.live, id)
	n := len(s.live)
	s.mu.Unlock()
	observability.LiveSessions.Set(float64(n))
	return s.store.Delete(ctx, stateKey(id))
}

// Sweep forgets in-memory sessions idle for longer than idle. Their stored
// state stays until the TTL expires, so they can still be restored.
func (s *SessionService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.live {
		if sess.touched.Load() < cutoff {
			delete(s.live, id)
			n++
		}
	}
	observability.LiveSessions.Set(float64(len(s.live)))
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, every, idle time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Sweep(idle); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("idle view sessions evicted")
			}
		}
	}
}
