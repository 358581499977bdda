package template

import "sort"

// WalkItems visits every content item depth-first in canonical order: per
// component, the declared items in order (each item before its listItems,
// then its tableMap values in sorted key order), then the child components.
// Every subsystem that traverses a template goes through this function, so
// traversal order is a single fact. tableMap values are visited in sorted
// key order because source documents carry them as unordered maps and
// traversal order is part of the determinism contract.
func WalkItems(t *Template, fn func(c *Component, item *ContentItem)) {
	for _, c := range t.Components {
		walkComponent(c, fn)
	}
}

func walkComponent(c *Component, fn func(*Component, *ContentItem)) {
	for _, it := range c.Items {
		walkItem(c, it, fn)
	}
	for _, child := range c.Children {
		walkComponent(child, fn)
	}
}

func walkItem(c *Component, it *ContentItem, fn func(*Component, *ContentItem)) {
	fn(c, it)
	for _, li := range it.ListItems {
		walkItem(c, li, fn)
	}
	if len(it.TableMap) > 0 {
		keys := make([]string, 0, len(it.TableMap))
		for k := range it.TableMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkItem(c, it.TableMap[k], fn)
		}
	}
}
