package persistence

import (
	"context"
	"sync"

	"github.com/goliatone/go-doctemplate/pkg/document"
)

// Memory keeps saved documents and sent notifications in process. It is used
// when no backend is configured.
type Memory struct {
	mu            sync.RWMutex
	documents     map[string]document.Document
	notifications []Notification
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{documents: make(map[string]document.Document)}
}

// Save stores a copy of doc, replacing any earlier snapshot.
func (m *Memory) Save(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.documents[doc.ID] = doc.Clone()
	m.mu.Unlock()
	return nil
}

// Notify records the notification for doc.
func (m *Memory) Notify(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.notifications = append(m.notifications, NotificationFor(doc))
	m.mu.Unlock()
	return nil
}

// Document returns the last saved snapshot of id.
func (m *Memory) Document(id string) (document.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return document.Document{}, false
	}
	return doc.Clone(), true
}

// Notifications returns the recorded notifications in send order.
func (m *Memory) Notifications() []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Notification(nil), m.notifications...)
}
