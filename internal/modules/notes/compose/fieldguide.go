// Package compose assembles the instruction bundle for the external model
// call: a field guide describing every model-generated field, a context
// slice holding only the resolved data those fields depend on, and the
// chat messages that carry both. A semantic linter checks the assembled
// bundle before it ships.
package compose

import (
	"fmt"
	"strings"

	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Dependency scopes. A path with a leading "source" segment reads the raw
// source document; every other path reads the resolved snapshot.
const (
	ScopeSource = "source"
	ScopeNAS    = "nas"
)

// Dependency names one piece of data a model field is grounded on.
type Dependency struct {
	Scope string `json:"scope"`
	Path  string `json:"path"`
}

// GuideEntry describes one model-generated field for the prompt's field
// guide section.
type GuideEntry struct {
	Path         string                `json:"path"`
	Description  string                `json:"description,omitempty"`
	Guidance     []string              `json:"guidance,omitempty"`
	Dependencies []Dependency          `json:"dependencies"`
	Constraints  *template.Constraints `json:"constraints,omitempty"`
	Style        *template.Style       `json:"style,omitempty"`
}

// GuideError is an authoring failure severe enough to abort composition.
type GuideError struct {
	Check   string
	Path    string
	Message string
}

func (e *GuideError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Check, e.Path, e.Message)
}

// BuildFieldGuide collects one entry per model-slot leaf in canonical
// traversal order, nested list and table leaves included. Dependencies
// come from aiDeps when declared, else from source; a model leaf with no
// dependencies at all is an authoring error, since the model would have
// nothing to ground the field on.
func BuildFieldGuide(tpl *template.Template) ([]GuideEntry, error) {
	var entries []GuideEntry
	var firstErr error
	template.WalkItems(tpl, func(_ *template.Component, item *template.ContentItem) {
		if firstErr != nil || item.Slot != template.SlotModel || !item.IsLeaf() {
			return
		}
		deps := dependenciesOf(item)
		if len(deps) == 0 {
			firstErr = &GuideError{
				Check:   "field-guide.dependencies",
				Path:    template.ItemPath(item),
				Message: "model field declares no aiDeps and no source paths",
			}
			return
		}
		entries = append(entries, GuideEntry{
			Path:         template.ItemPath(item),
			Description:  item.Description,
			Guidance:     item.Guidance,
			Dependencies: deps,
			Constraints:  item.Constraints,
			Style:        item.Style,
		})
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return entries, nil
}

func dependenciesOf(item *template.ContentItem) []Dependency {
	paths := item.AIDeps
	if len(paths) == 0 {
		paths = item.Source
	}
	var deps []Dependency
	seen := map[Dependency]bool{}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d := Dependency{Scope: scopeOf(p), Path: p}
		if seen[d] {
			continue
		}
		seen[d] = true
		deps = append(deps, d)
	}
	return deps
}

func scopeOf(path string) string {
	if path == ScopeSource || strings.HasPrefix(path, "source.") {
		return ScopeSource
	}
	return ScopeNAS
}
