// Package orchestrator wires the template store, field extractor,
// classifier and renderer registry into a single pipeline: Prepare resolves a
// template and derives its editable fields, Render substitutes values through
// a named renderer.
package orchestrator
