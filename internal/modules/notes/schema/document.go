package schema

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
)

// SchemaDraft is the JSON Schema meta-schema every produced document
// declares.
const SchemaDraft = "https://json-schema.org/draft/2020-12/schema"

const idBase = "https://schemas.notegen.dev"

// Kind distinguishes the three schema variants a template compiles to.
type Kind string

const (
	KindModel    Kind = "ais" // model-generated fields
	KindSnapshot Kind = "nas" // resolved non-model fields
	KindMerged   Kind = "rps" // full note payload
)

// Document is a complete JSON Schema draft 2020-12 document. The root is
// always a closed object.
type Document struct {
	ID                   string           `json:"$id"`
	Schema               string           `json:"$schema"`
	Title                string           `json:"title"`
	Description          string           `json:"description,omitempty"`
	Type                 string           `json:"type"`
	Properties           map[string]*Node `json:"properties"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties bool             `json:"additionalProperties"`
}

// DocumentID builds the canonical $id for one schema variant.
func DocumentID(kind Kind, templateID, version string) string {
	return fmt.Sprintf("%s/%s/%s@%s.json", idBase, kind, templateID, version)
}

func kindTitle(kind Kind) string {
	switch kind {
	case KindModel:
		return "model fields"
	case KindSnapshot:
		return "resolved fields"
	case KindMerged:
		return "note payload"
	}
	return string(kind)
}

// NodeAt resolves a parsed path through the document's property tree,
// descending into array items transparently. The returned node is the one
// the path addresses: an array-marker segment lands on the element node.
func (d *Document) NodeAt(segs []fieldpath.Segment) (*Node, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	props := d.Properties
	var node *Node
	for i, seg := range segs {
		n, ok := props[seg.Name]
		if !ok || n == nil {
			return nil, false
		}
		if seg.IsArray {
			if n.Type != TypeArray || n.Items == nil {
				return nil, false
			}
			n = n.Items
		}
		node = n
		if i == len(segs)-1 {
			break
		}
		for node.Type == TypeArray && node.Items != nil {
			node = node.Items
		}
		if node.Type != TypeObject {
			return nil, false
		}
		props = node.Properties
	}
	return node, true
}
