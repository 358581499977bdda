// Package mock fabricates deterministic schema-conforming drafts so the
// draft pipeline can run end to end without a model backend.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/notegen-backend/internal/inference/engine"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// GenerateText walks the response schema and fabricates a minimal
// conforming value: every declared property populated, arrays with one
// element, enums pinned to their first member. Same schema, same output.
func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	_ = ctx
	_ = model
	_ = e

	if opts.JSONSchema == nil || opts.JSONSchema.Schema == nil {
		var user string
		for i := len(messages) - 1; i >= 0; i-- {
			if strings.EqualFold(messages[i].Role, "user") {
				user = messages[i].Content
				break
			}
		}
		if strings.TrimSpace(user) == "" {
			return "mock: ok", nil
		}
		return fmt.Sprintf("mock: %s", user), nil
	}

	b, err := json.Marshal(skeleton(opts.JSONSchema.Schema, ""))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func skeleton(node map[string]any, field string) any {
	if enum, ok := node["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch typeOf(node) {
	case "object":
		props, _ := node["properties"].(map[string]any)
		out := make(map[string]any, len(props))
		for _, key := range sortedKeys(props) {
			child, _ := props[key].(map[string]any)
			out[key] = skeleton(child, key)
		}
		return out
	case "array":
		items, _ := node["items"].(map[string]any)
		return []any{skeleton(items, field)}
	case "number", "integer":
		if min, ok := floatOf(node["minimum"]); ok {
			return min
		}
		return float64(0)
	case "boolean":
		return false
	default:
		if field != "" {
			return fmt.Sprintf("[draft %s]", field)
		}
		return "[draft]"
	}
}

func typeOf(node map[string]any) string {
	t, _ := node["type"].(string)
	return t
}

func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
