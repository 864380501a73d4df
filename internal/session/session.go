// Package session keeps the open annotation shells of an HTTP host. Each
// session owns its own surface and history and is serialized by its own
// mutex, so sessions never interfere with one another.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/dialog"
	"github.com/example/playtestshot/internal/sse"
	"github.com/example/playtestshot/internal/surface"
)

// Session is one open annotation shell.
type Session struct {
	ID string

	mu     sync.Mutex
	shell  *dialog.Shell
	broker *sse.Broker
}

// Do runs fn with exclusive access to the shell and publishes the resulting
// toolbar state.
func (s *Session) Do(fn func(*dialog.Shell) error) (dialog.Toolbar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shell.IsOpen() {
		return s.shell.Toolbar(), fmt.Errorf("session %s: %w", s.ID, apperr.ErrNotFound)
	}
	err := fn(s.shell)
	tb := s.shell.Toolbar()
	s.publish(tb)
	return tb, err
}

// Toolbar returns the current control state.
func (s *Session) Toolbar() dialog.Toolbar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shell.Toolbar()
}

// Export encodes the current buffer.
func (s *Session) Export() (surface.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shell.Export()
}

// Events streams toolbar changes.
func (s *Session) Events() http.Handler { return s.broker }

func (s *Session) publish(tb dialog.Toolbar) {
	s.broker.Publish(sse.Event{Type: sse.EventToolbar, Data: tb})
}

// Option configures a Manager.
type Option func(*Manager)

// WithShellOptions applies opts to every shell the manager opens.
func WithShellOptions(opts ...dialog.Option) Option {
	return func(m *Manager) {
		m.shellOpts = append(m.shellOpts, opts...)
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen comments.IDGenerator) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// Manager is the registry of open sessions.
type Manager struct {
	host      dialog.Host
	resolver  surface.Resolver
	shellOpts []dialog.Option
	newID     comments.IDGenerator
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty registry.
func NewManager(host dialog.Host, resolver surface.Resolver, opts ...Option) *Manager {
	m := &Manager{
		host:     host,
		resolver: resolver,
		newID:    comments.UUIDv7,
		log:      slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open resolves ref into a new session. Nothing is registered when loading
// fails.
func (m *Manager) Open(ctx context.Context, ref string) (*Session, error) {
	opts := append([]dialog.Option{dialog.WithLogger(m.log)}, m.shellOpts...)
	shell := dialog.New(m.host, m.resolver, opts...)
	if err := shell.Open(ctx, ref); err != nil {
		return nil, err
	}
	s := &Session{
		ID:     m.newID(),
		shell:  shell,
		broker: sse.NewBroker(),
	}
	s.publish(shell.Toolbar())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Info("session opened", slog.String("session", s.ID))
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return s, nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Save submits the session through its comment panel. A duplicate submit
// fails with apperr.ErrSaveInFlight and leaves the session alone; any other
// outcome, including a host failure, closes it.
func (m *Manager) Save(ctx context.Context, id, comment string) (comments.Record, error) {
	s, err := m.Get(id)
	if err != nil {
		return comments.Record{}, err
	}
	panel := s.shell.Panel()
	rec, err := panel.Submit(ctx, func(ctx context.Context, _ string) (comments.Record, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		panel.SetText(comment)
		s.publish(s.shell.Toolbar())
		return s.shell.Save(ctx, comment)
	})
	if errors.Is(err, apperr.ErrSaveInFlight) {
		return rec, err
	}
	m.remove(s)
	return rec, err
}

// Cancel discards the session without exporting.
func (m *Manager) Cancel(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	err = s.shell.Cancel()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	m.remove(s)
	return nil
}

// Close cancels every open session.
func (m *Manager) Close() {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()
	for _, s := range open {
		s.mu.Lock()
		if err := s.shell.Cancel(); err != nil {
			m.log.Warn("cancel on close", slog.String("session", s.ID), slog.String("error", err.Error()))
		}
		s.mu.Unlock()
		m.remove(s)
	}
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.ID]
	delete(m.sessions, s.ID)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.publish(s.shell.Toolbar())
	s.mu.Unlock()
	s.broker.Publish(sse.Event{Type: sse.EventClosed, Data: map[string]string{"session": s.ID}})
	s.broker.Close()
	m.log.Info("session closed", slog.String("session", s.ID))
}
