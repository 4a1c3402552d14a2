package persistence

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/internal/apispec"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
)

const (
	OperationSave   = "saveDocument"
	OperationNotify = "notifyCounterparty"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

//go:embed api/persistence.yaml
var specFS embed.FS

// Spec returns the bundled OpenAPI description of the persistence backend.
func Spec() []byte {
	data, err := specFS.ReadFile("api/persistence.yaml")
	if err != nil {
		panic(fmt.Sprintf("persistence: bundled spec missing: %v", err))
	}
	return data
}

// StatusError reports an undocumented response from the backend.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("persistence: %s returned %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("persistence: %s returned %d: %s", e.Operation, e.Code, e.Body)
}

// Notification is the payload sent to the counterparty notification endpoint.
type Notification struct {
	DocumentID string `json:"documentId"`
	TemplateID string `json:"templateId"`
	Role       string `json:"role"`
	Recipient  string `json:"recipient,omitempty"`
}

// NotificationFor builds the notification for doc's counterparty.
func NotificationFor(doc document.Document) Notification {
	profile := fields.ProfileFor(doc.TemplateID)
	return Notification{
		DocumentID: doc.ID,
		TemplateID: doc.TemplateID,
		Role:       profile.Counterparty,
		Recipient:  strings.TrimSpace(doc.Values.Get(profile.Counterparty + "_email").Text),
	}
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient injects the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithSpec replaces the bundled OpenAPI description.
func WithSpec(raw []byte) Option {
	return func(c *Client) {
		c.spec = raw
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client saves documents and sends notifications through an HTTP backend
// whose routes are resolved from an OpenAPI description.
type Client struct {
	base       *url.URL
	http       *http.Client
	spec       []byte
	headers    http.Header
	operations map[string]apispec.Operation
	logger     *zap.Logger
}

// New resolves the saveDocument and notifyCounterparty operations and returns
// a client rooted at baseURL.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("persistence: invalid base url %q", baseURL)
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: defaultTimeout},
		headers: make(http.Header),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if len(c.spec) == 0 {
		c.spec = Spec()
	}

	c.operations, err = apispec.Parse(ctx, c.spec, apispec.Options{
		Validate: true,
		Required: []string{OperationSave, OperationNotify},
	})
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}
	return c, nil
}

// Save stores a document snapshot.
func (c *Client) Save(ctx context.Context, doc document.Document) error {
	if doc.ID == "" {
		return errors.New("persistence: document id is required")
	}
	return c.call(ctx, OperationSave, map[string]string{"documentId": doc.ID}, doc)
}

// Notify tells the counterparty the document is waiting for them.
func (c *Client) Notify(ctx context.Context, doc document.Document) error {
	if doc.ID == "" {
		return errors.New("persistence: document id is required")
	}
	return c.call(ctx, OperationNotify, map[string]string{"documentId": doc.ID}, NotificationFor(doc))
}

func (c *Client) call(ctx context.Context, operationID string, params map[string]string, payload any) error {
	op, ok := c.operations[operationID]
	if !ok {
		return fmt.Errorf("persistence: operation %s not described", operationID)
	}
	path, err := op.Expand(params)
	if err != nil {
		return fmt.Errorf("persistence: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", operationID, err)
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("persistence: encode %s: %w", operationID, err)
	}
	if err := op.ValidateRequest(decoded); err != nil {
		return fmt.Errorf("persistence: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, c.base.String()+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("persistence: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("persistence: %s: %w", operationID, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("persistence call",
		zap.String("operation", operationID),
		zap.String("method", op.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if op.Accepts(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Operation: operationID, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}
