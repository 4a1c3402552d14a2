package document

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingSignature Status = "pending_signature"
	StatusCompleted        Status = "completed"
)

var transitions = map[Status][]Status{
	StatusDraft:            {StatusDraft, StatusPendingSignature, StatusCompleted},
	StatusPendingSignature: {StatusPendingSignature, StatusCompleted},
	StatusCompleted:        {StatusCompleted},
}

// CanTransition reports whether a document may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Document is an in-progress or finalised document built from a template.
type Document struct {
	ID              string    `json:"id"`
	TemplateID      string    `json:"templateId"`
	Language        string    `json:"language"`
	Values          Values    `json:"fieldValues"`
	RenderedContent string    `json:"renderedContent"`
	Status          Status    `json:"status"`
	Revision        uint64    `json:"revision"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Transition moves the document to status when allowed.
func (d *Document) Transition(to Status) error {
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("document: cannot move from %s to %s", d.Status, to)
	}
	d.Status = to
	return nil
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	d.Values = d.Values.Clone()
	return d
}
