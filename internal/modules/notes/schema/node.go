package schema

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Node types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Node is one JSON Schema node. Exactly one shape is populated per Type:
// objects own properties/required/additionalProperties, arrays own items,
// strings may carry enum/pattern and word/sentence bounds, numbers may carry
// minimum/maximum. Nodes are never mutated after derivation; the merger
// builds wholly new nodes.
type Node struct {
	Type                 string           `json:"type"`
	Description          string           `json:"description,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	Enum                 []string         `json:"enum,omitempty"`
	Pattern              string           `json:"pattern,omitempty"`
	MinWords             *int             `json:"x-minWords,omitempty"`
	MaxWords             *int             `json:"x-maxWords,omitempty"`
	MinSentences         *int             `json:"x-minSentences,omitempty"`
	MaxSentences         *int             `json:"x-maxSentences,omitempty"`
	Minimum              *float64         `json:"minimum,omitempty"`
	Maximum              *float64         `json:"maximum,omitempty"`
}

// ObjectNode returns a closed object node. Everything this system derives is
// closed unless explicitly marked open.
func ObjectNode() *Node {
	return &Node{Type: TypeObject, Properties: map[string]*Node{}, AdditionalProperties: boolPtr(false)}
}

// OpenObjectNode returns an open object node, used only for computed fields
// typed "object" as an escape hatch.
func OpenObjectNode() *Node {
	return &Node{Type: TypeObject, Properties: map[string]*Node{}, AdditionalProperties: boolPtr(true)}
}

// ArrayNode returns an array node owning exactly one items node.
func ArrayNode(items *Node) *Node {
	return &Node{Type: TypeArray, Items: items}
}

// StringNode returns a string node carrying the item's enum/pattern and
// word/sentence bounds 1:1. Constraint values are copied, never aliased.
func StringNode(c *template.Constraints) *Node {
	n := &Node{Type: TypeString}
	if c == nil {
		return n
	}
	if len(c.Enum) > 0 {
		n.Enum = append([]string(nil), c.Enum...)
	}
	n.Pattern = c.Pattern
	n.MinWords = copyIntPtr(c.MinWords)
	n.MaxWords = copyIntPtr(c.MaxWords)
	n.MinSentences = copyIntPtr(c.MinSentences)
	n.MaxSentences = copyIntPtr(c.MaxSentences)
	return n
}

// NumberNode returns a number node carrying the item's minimum/maximum.
func NumberNode(c *template.Constraints) *Node {
	n := &Node{Type: TypeNumber}
	if c == nil {
		return n
	}
	n.Minimum = copyFloatPtr(c.Minimum)
	n.Maximum = copyFloatPtr(c.Maximum)
	return n
}

// BooleanNode returns a boolean node.
func BooleanNode() *Node {
	return &Node{Type: TypeBoolean}
}

// PropertyOptions carries the bookkeeping AddProperty needs for duplicate
// reporting and required tracking.
type PropertyOptions struct {
	Required bool
	Path     string
	SourceID string
}

// AddProperty attaches a child under name. It fails with *DuplicatePathError
// when the name is already taken on this node; the derivers rely on this to
// catch two leaves mapping to one output location.
func (n *Node) AddProperty(name string, child *Node, opts PropertyOptions) error {
	if n.Type != TypeObject {
		return fmt.Errorf("add property %q: node is %s, not object", name, n.Type)
	}
	if _, exists := n.Properties[name]; exists {
		return &DuplicatePathError{Path: opts.Path, SourceID: opts.SourceID, Property: name}
	}
	n.Properties[name] = child
	if opts.Required {
		n.Required = append(n.Required, name)
	}
	return nil
}

// closed reports the effective additionalProperties flag; absent means
// closed, the system default.
func (n *Node) closed() bool {
	return n.AdditionalProperties == nil || !*n.AdditionalProperties
}

func boolPtr(b bool) *bool { return &b }

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
