package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
)

// ErrNotFound is returned for unknown document ids.
var ErrNotFound = errors.New("session: document not found")

// Saver persists document snapshots.
type Saver interface {
	Save(ctx context.Context, doc document.Document) error
}

// Notifier tells the counterparty a document is waiting for them.
type Notifier interface {
	Notify(ctx context.Context, doc document.Document) error
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithSaver persists documents on send and completion.
func WithSaver(saver Saver) ManagerOption {
	return func(m *Manager) {
		m.saver = saver
	}
}

// WithNotifier notifies the counterparty after a document is sent.
func WithNotifier(notifier Notifier) ManagerOption {
	return func(m *Manager) {
		m.notifier = notifier
	}
}

// WithSessionOptions applies opts to every session the manager starts.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOptions = append(m.sessionOptions, opts...)
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager keeps open sessions in memory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	orchestrator   *orchestrator.Orchestrator
	saver          Saver
	notifier       Notifier
	sessionOptions []Option
	logger         *zap.Logger
}

// NewManager returns a Manager that prepares templates through orch.
func NewManager(orch *orchestrator.Orchestrator, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		orchestrator: orch,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Start prepares templateID and opens a new draft.
func (m *Manager) Start(ctx context.Context, templateID, lang string, values document.Values) (*Session, error) {
	if m.orchestrator == nil {
		return nil, errors.New("session: orchestrator is nil")
	}
	prepared, err := m.orchestrator.Prepare(ctx, templateID, lang)
	if err != nil {
		return nil, err
	}

	opts := append([]Option{WithLogger(m.logger)}, m.sessionOptions...)
	s, err := New(ctx, prepared, opts...)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		edits := make([]Edit, 0, len(values))
		for _, name := range sortedNames(values) {
			edits = append(edits, Edit{Field: name, Value: values[name]})
		}
		if _, err := s.Apply(ctx, edits...); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Info("document started",
		zap.String("document", s.ID()),
		zap.String("template", prepared.Template.ID),
	)
	return s, nil
}

// Get returns the open session for id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// List returns snapshots of every open document ordered by id.
func (m *Manager) List() []document.Document {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		if s, err := m.Get(id); err == nil {
			out = append(out, s.Snapshot())
		}
	}
	return out
}

// Close drops the session for id.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Send marks the document sent, saves it and notifies the counterparty.
func (m *Manager) Send(ctx context.Context, id string) (document.Document, error) {
	s, err := m.Get(id)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := s.MarkSent(ctx)
	if err != nil {
		return doc, err
	}
	if err := m.save(ctx, doc); err != nil {
		return doc, err
	}
	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, doc); err != nil {
			return doc, fmt.Errorf("session: notify: %w", err)
		}
	}
	return doc, nil
}

// Complete finalises the document and saves it.
func (m *Manager) Complete(ctx context.Context, id string) (document.Document, error) {
	s, err := m.Get(id)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := s.MarkCompleted(ctx)
	if err != nil {
		return doc, err
	}
	return doc, m.save(ctx, doc)
}

func (m *Manager) save(ctx context.Context, doc document.Document) error {
	if m.saver == nil {
		return nil
	}
	if err := m.saver.Save(ctx, doc); err != nil {
		m.logger.Warn("document save failed", zap.String("document", doc.ID), zap.Error(err))
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func sortedNames(values document.Values) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
