package apispec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Options tunes Parse.
type Options struct {
	// Validate runs the kin-openapi document validator after loading.
	Validate bool
	// Required lists operation ids that must be present.
	Required []string
}

// Operation is a single HTTP operation taken from an OpenAPI document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	// Request is the JSON request body schema, nil when the operation has none.
	Request   *openapi3.Schema
	Responses []string
}

// Parse loads raw and returns its operations keyed by operationId.
func Parse(ctx context.Context, raw []byte, options Options) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("apispec: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("apispec: load document: %w", err)
	}
	if options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("apispec: validate: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("apispec: document does not contain any paths")
	}

	operations := make(map[string]Operation)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			collect(operations, method, path, op)
		}
	}

	var missing []string
	for _, id := range options.Required {
		if _, ok := operations[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("apispec: missing operations: %s", strings.Join(missing, ", "))
	}
	return operations, nil
}

func collect(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = Operation{
		ID:        id,
		Method:    strings.ToUpper(method),
		Path:      path,
		Summary:   operation.Summary,
		Request:   requestSchema(operation.RequestBody),
		Responses: responseCodes(operation.Responses),
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	mt := body.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

func responseCodes(responses *openapi3.Responses) []string {
	if responses == nil {
		return nil
	}
	codes := make([]string, 0, responses.Len())
	for code := range responses.Map() {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Expand substitutes {name} path parameters, escaping each value.
func (op Operation) Expand(params map[string]string) (string, error) {
	path := op.Path
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	if strings.ContainsAny(path, "{}") {
		return "", fmt.Errorf("apispec: %s: unresolved path parameters in %s", op.ID, path)
	}
	return path, nil
}

// ValidateRequest checks a JSON-decoded payload against the request schema.
func (op Operation) ValidateRequest(payload any) error {
	if op.Request == nil {
		return nil
	}
	if err := op.Request.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("apispec: %s request: %w", op.ID, err)
	}
	return nil
}

// Accepts reports whether code is a documented response status.
func (op Operation) Accepts(code int) bool {
	status := fmt.Sprintf("%d", code)
	class := status[:1] + "XX"
	for _, documented := range op.Responses {
		if documented == status || strings.EqualFold(documented, class) {
			return true
		}
	}
	return false
}
