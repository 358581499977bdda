package schema

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// DeriveModel builds the schema covering model-slot leaves only: every leaf
// is a string (wrapped in an array when the final segment is an array
// marker) carrying the item's constraints.
func DeriveModel(tpl *template.Template) (*Document, error) {
	return derive(tpl, KindModel, func(it *template.ContentItem) bool {
		return it.Slot == template.SlotModel && it.OutputPath != ""
	})
}

// DeriveSnapshot builds the schema covering non-model leaves: lookup/static
// default to string, computed honors its resultType hint, verbatim yields a
// closed {text, ref} object.
func DeriveSnapshot(tpl *template.Template) (*Document, error) {
	return derive(tpl, KindSnapshot, func(it *template.ContentItem) bool {
		return it.Slot != template.SlotModel && it.TargetPath != ""
	})
}

func derive(tpl *template.Template, kind Kind, pred func(*template.ContentItem) bool) (*Document, error) {
	d := &deriver{
		root:      ObjectNode(),
		nodes:     map[string]*Node{},
		leafSeen:  map[string]bool{},
		leafCanon: map[string]bool{},
		lastIndex: map[string]int{},
	}
	var derr error
	template.WalkItems(tpl, func(_ *template.Component, it *template.ContentItem) {
		if derr != nil || !pred(it) {
			return
		}
		if err := d.addLeaf(it); err != nil {
			derr = err
		}
	})
	if derr != nil {
		return nil, derr
	}
	return &Document{
		ID:                   DocumentID(kind, tpl.ID, tpl.Version),
		Schema:               SchemaDraft,
		Title:                fmt.Sprintf("%s (%s)", tpl.Name, kindTitle(kind)),
		Description:          tpl.Purpose,
		Type:                 TypeObject,
		Properties:           d.root.Properties,
		Required:             d.root.Required,
		AdditionalProperties: false,
	}, nil
}

type deriver struct {
	root *Node
	// nodes caches the object node reachable at each canonical prefix, so
	// repeated prefixes (two leaves under plan.homework[]) reuse one
	// array-items node instead of creating siblings.
	nodes     map[string]*Node
	leafSeen  map[string]bool
	leafCanon map[string]bool
	lastIndex map[string]int
}

func (d *deriver) addLeaf(it *template.ContentItem) error {
	path := template.ItemPath(it)
	segs, err := fieldpath.Parse(path)
	if err != nil {
		return err
	}
	current := d.root
	for i := 0; i < len(segs)-1; i++ {
		seg := segs[i]
		if err := d.checkIndex(segs[:i+1]); err != nil {
			return err
		}
		key := fieldpath.Key(segs[:i+1])
		if cached, ok := d.nodes[key]; ok {
			current = cached
			continue
		}
		var attach, next *Node
		if seg.IsArray {
			items := ObjectNode()
			attach, next = ArrayNode(items), items
		} else {
			obj := ObjectNode()
			attach, next = obj, obj
		}
		if err := current.AddProperty(seg.Name, attach, PropertyOptions{Path: path, SourceID: it.ID}); err != nil {
			return err
		}
		d.nodes[key] = next
		current = next
	}

	last := segs[len(segs)-1]
	if err := d.checkIndex(segs); err != nil {
		return err
	}
	if d.leafSeen[path] {
		return &DuplicatePathError{Path: path, SourceID: it.ID, Property: last.Name}
	}
	d.leafSeen[path] = true
	canon := fieldpath.Key(segs)
	if _, exists := current.Properties[last.Name]; exists {
		if d.leafCanon[canon] {
			// An indexed sibling (meds[0].name after meds[1].name) lands on
			// the same items node; the schema already describes it.
			return nil
		}
		return &DuplicatePathError{Path: path, SourceID: it.ID, Property: last.Name}
	}
	leaf := leafNode(it)
	if last.IsArray {
		leaf = ArrayNode(leaf)
	}
	if err := current.AddProperty(last.Name, leaf, PropertyOptions{Required: it.IsRequired(), Path: path, SourceID: it.ID}); err != nil {
		return err
	}
	d.leafCanon[canon] = true
	return nil
}

// checkIndex enforces sequential explicit indices per array path: in
// traversal order each explicit index must equal the previous one or extend
// the run by exactly one, starting at 0.
func (d *deriver) checkIndex(prefix []fieldpath.Segment) error {
	seg := prefix[len(prefix)-1]
	if !seg.IsArray || seg.Index == fieldpath.NoIndex {
		return nil
	}
	key := fieldpath.Key(prefix)
	last, seen := d.lastIndex[key]
	if !seen {
		last = -1
	}
	if seg.Index != last && seg.Index != last+1 {
		return &SequentialIndexError{Path: key, Index: seg.Index, Expected: last + 1}
	}
	if seg.Index > last {
		d.lastIndex[key] = seg.Index
	}
	return nil
}

func leafNode(it *template.ContentItem) *Node {
	if it.Slot == template.SlotModel {
		return StringNode(it.Constraints)
	}
	switch it.Slot {
	case template.SlotComputed:
		switch it.ResultType {
		case template.ResultNumber:
			return NumberNode(it.Constraints)
		case template.ResultBoolean:
			return BooleanNode()
		case template.ResultObject:
			return OpenObjectNode()
		case template.ResultStringArray:
			return ArrayNode(StringNode(nil))
		}
		return StringNode(it.Constraints)
	case template.SlotVerbatim:
		obj := ObjectNode()
		obj.AddProperty("text", &Node{Type: TypeString}, PropertyOptions{Required: true})
		obj.AddProperty("ref", &Node{Type: TypeString}, PropertyOptions{Required: true})
		return obj
	}
	return StringNode(it.Constraints)
}
