// Package engine is the boundary to the external generative model. The
// composer produces chat messages plus a JSON Schema response contract;
// anything that can turn those into a conforming JSON document can back
// the draft pipeline.
package engine

import "context"

type Message struct {
	Role    string
	Content string
}

type JSONSchema struct {
	Name   string
	Schema map[string]any
	Strict bool
}

type GenerateOptions struct {
	Temperature float64
	JSONSchema  *JSONSchema
}

type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}
