package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/pkg/completion"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

var (
	ErrUnknownField = errors.New("session: unknown field")
	ErrStaleEdit    = errors.New("session: edit is based on an older revision")
	ErrLocked       = errors.New("session: document is completed")
)

// FieldError rejects a single edit.
type FieldError struct {
	Field   fields.Name
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("session: %s: %s", e.Field, e.Message)
}

// ValidationError rejects a lifecycle transition.
type ValidationError struct {
	Role   validation.Role
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session: %d field(s) invalid for %s", len(e.Result.Errors), e.Role)
}

// Edit is a single field assignment. A non-zero Revision must match the
// session revision when the edit is applied.
type Edit struct {
	Field    fields.Name
	Value    document.Value
	Revision uint64
}

// Update is the state after an edit has been applied.
type Update struct {
	Revision   uint64            `json:"revision"`
	Rendered   string            `json:"renderedContent"`
	Completion completion.Status `json:"completion"`
	Changed    bool              `json:"changed"`
}

// Option customises a Session.
type Option func(*Session)

// WithRenderer sets the renderer used for RenderedContent.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Session) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithRenderOptions sets the render options passed on every re-render.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(s *Session) {
		s.renderOptions = options
	}
}

// WithFormatter sets the formatter that canonicalises accepted values.
func WithFormatter(formatter *format.Formatter) Option {
	return func(s *Session) {
		if formatter != nil {
			s.formatter = formatter
		}
	}
}

// WithValues seeds initial values. Seeds skip validation.
func WithValues(values document.Values) Option {
	return func(s *Session) {
		s.doc.Values = values.Clone()
	}
}

// WithID overrides the generated document id.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.doc.ID = id
		}
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session owns one in-progress document. Edits are applied one at a time in
// arrival order; each accepted edit bumps the revision and re-renders.
type Session struct {
	mu sync.Mutex

	prepared      orchestrator.Prepared
	validator     *validation.Validator
	formatter     *format.Formatter
	renderer      render.Renderer
	renderOptions render.RenderOptions
	now           func() time.Time
	logger        *zap.Logger

	doc    document.Document
	status completion.Status
}

// New starts a draft for prepared and renders it once.
func New(ctx context.Context, prepared orchestrator.Prepared, opts ...Option) (*Session, error) {
	s := &Session{
		prepared:  prepared,
		validator: prepared.Validator(),
		formatter: format.New(),
		renderer:  render.NewFragment(),
		now:       time.Now,
		logger:    zap.NewNop(),
		doc: document.Document{
			ID:         uuid.NewString(),
			TemplateID: prepared.Template.ID,
			Language:   prepared.Template.Language,
			Values:     document.Values{},
			Status:     document.StatusDraft,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.doc.Values == nil {
		s.doc.Values = document.Values{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the document id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ID
}

// Prepared returns the template the session was started from.
func (s *Session) Prepared() orchestrator.Prepared {
	return s.prepared
}

// Set assigns a single field.
func (s *Session) Set(ctx context.Context, name fields.Name, value document.Value) (Update, error) {
	return s.Apply(ctx, Edit{Field: name, Value: value})
}

// Apply applies edits in order under one lock. It stops at the first
// rejected edit; edits before it stay applied.
func (s *Session) Apply(ctx context.Context, edits ...Edit) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, edit := range edits {
		ok, err := s.apply(edit)
		if err != nil {
			if changed {
				if rerr := s.refresh(ctx); rerr != nil {
					return s.update(false), rerr
				}
			}
			return s.update(changed), err
		}
		changed = changed || ok
	}
	if changed {
		if err := s.refresh(ctx); err != nil {
			return s.update(true), err
		}
	}
	return s.update(changed), nil
}

func (s *Session) apply(edit Edit) (bool, error) {
	if s.doc.Status == document.StatusCompleted {
		return false, ErrLocked
	}
	if edit.Revision != 0 && edit.Revision != s.doc.Revision {
		return false, fmt.Errorf("%w: have %d, edit based on %d", ErrStaleEdit, s.doc.Revision, edit.Revision)
	}
	def, ok := s.prepared.Definition(edit.Field)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, edit.Field)
	}
	if err := s.validator.ValidateField(def, edit.Value); err != nil {
		return false, &FieldError{Field: edit.Field, Message: err.Error()}
	}
	value, err := s.formatter.Value(def, edit.Value)
	if err != nil {
		return false, &FieldError{Field: edit.Field, Message: err.Error()}
	}

	current, exists := s.doc.Values[edit.Field]
	if value.IsEmpty() {
		if !exists {
			return false, nil
		}
		delete(s.doc.Values, edit.Field)
	} else {
		if exists && current.Equal(value) {
			return false, nil
		}
		s.doc.Values[edit.Field] = value
	}

	s.doc.Revision++
	s.doc.UpdatedAt = s.now()
	s.logger.Debug("field updated",
		zap.String("document", s.doc.ID),
		zap.String("field", edit.Field),
		zap.Uint64("revision", s.doc.Revision),
	)
	return true, nil
}

// refresh re-renders and recomputes completion. Callers hold s.mu.
func (s *Session) refresh(ctx context.Context) error {
	out, err := s.renderer.Render(ctx, s.prepared.Document(s.doc.Values, s.doc.Status), s.renderOptions)
	if err != nil {
		return fmt.Errorf("session: render: %w", err)
	}
	s.doc.RenderedContent = string(out)
	s.status = s.prepared.Completion(s.doc.Values)
	return nil
}

func (s *Session) update(changed bool) Update {
	return Update{
		Revision:   s.doc.Revision,
		Rendered:   s.doc.RenderedContent,
		Completion: s.status,
		Changed:    changed,
	}
}

// Validate checks the current values for role.
func (s *Session) Validate(role validation.Role) validation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validator.Validate(s.prepared.Definitions, s.doc.Values, role)
}

// Completion returns the current section completion.
func (s *Session) Completion() completion.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a copy of the document.
func (s *Session) Snapshot() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// MarkSent validates for sending and moves the draft to pending_signature.
func (s *Session) MarkSent(ctx context.Context) (document.Document, error) {
	return s.transition(ctx, validation.RoleSend, document.StatusPendingSignature)
}

// MarkCompleted validates every required field and completes the document.
func (s *Session) MarkCompleted(ctx context.Context) (document.Document, error) {
	return s.transition(ctx, validation.RoleFinalize, document.StatusCompleted)
}

func (s *Session) transition(ctx context.Context, role validation.Role, to document.Status) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !document.CanTransition(s.doc.Status, to) {
		return s.doc.Clone(), fmt.Errorf("session: cannot move from %s to %s", s.doc.Status, to)
	}
	result := s.validator.Validate(s.prepared.Definitions, s.doc.Values, role)
	if !result.Valid {
		return s.doc.Clone(), &ValidationError{Role: role, Result: result}
	}
	if err := s.doc.Transition(to); err != nil {
		return s.doc.Clone(), err
	}
	s.doc.Revision++
	s.doc.UpdatedAt = s.now()
	if err := s.refresh(ctx); err != nil {
		return s.doc.Clone(), err
	}
	return s.doc.Clone(), nil
}
