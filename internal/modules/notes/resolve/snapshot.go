package resolve

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
)

// ValueAt reads a parsed path out of nested maps and slices. An explicit
// index addresses one element; a wildcard as the final segment returns the
// slice itself (ok only when non-empty); a wildcard mid-path descends into
// the first element, acting as a shape probe.
func ValueAt(root map[string]any, segs []fieldpath.Segment) (any, bool) {
	var cur any = root
	for i, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg.Name]
		if !ok {
			return nil, false
		}
		if !seg.IsArray {
			continue
		}
		arr, ok := cur.([]any)
		if !ok {
			return nil, false
		}
		if seg.Index != fieldpath.NoIndex {
			if seg.Index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.Index]
			continue
		}
		if len(arr) == 0 {
			return nil, false
		}
		if i == len(segs)-1 {
			return arr, true
		}
		cur = arr[0]
	}
	return cur, true
}

// setPath writes value at the parsed path, creating intermediate objects and
// arrays on demand. Explicit indices extend slices with nils as needed;
// wildcard segments append, one element per write, in traversal order.
func setPath(root map[string]any, segs []fieldpath.Segment, value any) error {
	return setInMap(root, segs, segs, value)
}

func setInMap(m map[string]any, full, rest []fieldpath.Segment, value any) error {
	seg := rest[0]
	last := len(rest) == 1

	if !seg.IsArray {
		if last {
			m[seg.Name] = value
			return nil
		}
		child, ok := m[seg.Name]
		if !ok || child == nil {
			childMap := map[string]any{}
			m[seg.Name] = childMap
			return setInMap(childMap, full, rest[1:], value)
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("path %q: segment %q already holds a non-object value", fieldpath.Join(full), seg.Name)
		}
		return setInMap(childMap, full, rest[1:], value)
	}

	var arr []any
	if existing, ok := m[seg.Name]; ok && existing != nil {
		arr, ok = existing.([]any)
		if !ok {
			return fmt.Errorf("path %q: segment %q already holds a non-array value", fieldpath.Join(full), seg.Name)
		}
	}

	if seg.Index == fieldpath.NoIndex {
		if last {
			m[seg.Name] = append(arr, value)
			return nil
		}
		elem := map[string]any{}
		m[seg.Name] = append(arr, elem)
		return setInMap(elem, full, rest[1:], value)
	}

	for len(arr) <= seg.Index {
		arr = append(arr, nil)
	}
	m[seg.Name] = arr
	if last {
		arr[seg.Index] = value
		return nil
	}
	elem, ok := arr[seg.Index].(map[string]any)
	if !ok {
		if arr[seg.Index] != nil {
			return fmt.Errorf("path %q: index %d already holds a non-object value", fieldpath.Join(full), seg.Index)
		}
		elem = map[string]any{}
		arr[seg.Index] = elem
	}
	return setInMap(elem, full, rest[1:], value)
}
