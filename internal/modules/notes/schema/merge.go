package schema

import (
	"sort"
)

// Merge deep-merges the model and snapshot schemas into the full payload
// schema. Inputs are never mutated; every merged node is freshly built.
// Conflicts are fatal: there is no partial merge.
func Merge(model, snapshot *Document, templateID, name, version string) (*Document, error) {
	props := map[string]*Node{}
	for _, key := range unionKeys(model.Properties, snapshot.Properties) {
		a, inA := model.Properties[key]
		b, inB := snapshot.Properties[key]
		switch {
		case inA && inB:
			merged, err := mergeNodes(a, b, key)
			if err != nil {
				return nil, err
			}
			props[key] = merged
		case inA:
			props[key] = cloneNode(a)
		default:
			props[key] = cloneNode(b)
		}
	}
	description := model.Description
	if description == "" {
		description = snapshot.Description
	}
	return &Document{
		ID:                   DocumentID(KindMerged, templateID, version),
		Schema:               SchemaDraft,
		Title:                name + " (" + kindTitle(KindMerged) + ")",
		Description:          description,
		Type:                 TypeObject,
		Properties:           props,
		Required:             unionSorted(model.Required, snapshot.Required),
		AdditionalProperties: false,
	}, nil
}

func mergeNodes(a, b *Node, path string) (*Node, error) {
	if a.Type != b.Type {
		return nil, &TypeConflictError{Path: path, TypeA: a.Type, TypeB: b.Type}
	}
	out := &Node{Type: a.Type}
	out.Description = a.Description
	if out.Description == "" {
		out.Description = b.Description
	}
	switch a.Type {
	case TypeObject:
		out.Properties = map[string]*Node{}
		for _, key := range unionKeys(a.Properties, b.Properties) {
			ca, inA := a.Properties[key]
			cb, inB := b.Properties[key]
			switch {
			case inA && inB:
				merged, err := mergeNodes(ca, cb, path+"."+key)
				if err != nil {
					return nil, err
				}
				out.Properties[key] = merged
			case inA:
				out.Properties[key] = cloneNode(ca)
			default:
				out.Properties[key] = cloneNode(cb)
			}
		}
		out.Required = unionSorted(a.Required, b.Required)
		out.AdditionalProperties = boolPtr(!a.closed() && !b.closed())
	case TypeArray:
		switch {
		case a.Items != nil && b.Items != nil:
			merged, err := mergeNodes(a.Items, b.Items, path+"[]")
			if err != nil {
				return nil, err
			}
			out.Items = merged
		case a.Items != nil:
			out.Items = cloneNode(a.Items)
		case b.Items != nil:
			out.Items = cloneNode(b.Items)
		}
	case TypeString:
		if err := mergeStringFacets(a, b, out, path); err != nil {
			return nil, err
		}
	case TypeNumber:
		out.Minimum = maxFloatPtr(a.Minimum, b.Minimum)
		out.Maximum = minFloatPtr(a.Maximum, b.Maximum)
		if out.Minimum != nil && out.Maximum != nil && *out.Minimum > *out.Maximum {
			return nil, &ConstraintConflictError{Path: path, Constraint: "minimum/maximum", Lower: *out.Minimum, Upper: *out.Maximum}
		}
	}
	return out, nil
}

// mergeStringFacets reconciles enum, pattern and the word/sentence bounds.
// Lower bounds take the stricter max, upper bounds the stricter min; enums
// intersect (sorted, so merge order cannot change the result).
func mergeStringFacets(a, b, out *Node, path string) error {
	switch {
	case len(a.Enum) > 0 && len(b.Enum) > 0:
		isect := intersect(a.Enum, b.Enum)
		if len(isect) == 0 {
			return &EnumConflictError{Path: path, EnumA: a.Enum, EnumB: b.Enum}
		}
		out.Enum = isect
	case len(a.Enum) > 0:
		out.Enum = append([]string(nil), a.Enum...)
	case len(b.Enum) > 0:
		out.Enum = append([]string(nil), b.Enum...)
	}

	switch {
	case a.Pattern != "" && b.Pattern != "":
		if a.Pattern != b.Pattern {
			return &PatternConflictError{Path: path, PatternA: a.Pattern, PatternB: b.Pattern}
		}
		out.Pattern = a.Pattern
	case a.Pattern != "":
		out.Pattern = a.Pattern
	case b.Pattern != "":
		out.Pattern = b.Pattern
	}

	out.MinWords = maxIntPtr(a.MinWords, b.MinWords)
	out.MaxWords = minIntPtr(a.MaxWords, b.MaxWords)
	if out.MinWords != nil && out.MaxWords != nil && *out.MinWords > *out.MaxWords {
		return &ConstraintConflictError{Path: path, Constraint: "minWords/maxWords", Lower: float64(*out.MinWords), Upper: float64(*out.MaxWords)}
	}
	out.MinSentences = maxIntPtr(a.MinSentences, b.MinSentences)
	out.MaxSentences = minIntPtr(a.MaxSentences, b.MaxSentences)
	if out.MinSentences != nil && out.MaxSentences != nil && *out.MinSentences > *out.MaxSentences {
		return &ConstraintConflictError{Path: path, Constraint: "minSentences/maxSentences", Lower: float64(*out.MinSentences), Upper: float64(*out.MaxSentences)}
	}
	return nil
}

// ValidateMergeable walks both documents with the merge rules but keeps
// going past each conflict, returning every conflict the real merge would
// hit. Used to surface all authoring problems at once before merging.
func ValidateMergeable(a, b *Document) []Conflict {
	var out []Conflict
	for _, key := range unionKeys(a.Properties, b.Properties) {
		ca, inA := a.Properties[key]
		cb, inB := b.Properties[key]
		if inA && inB {
			collectConflicts(ca, cb, key, &out)
		}
	}
	return out
}

func collectConflicts(a, b *Node, path string, out *[]Conflict) {
	if a.Type != b.Type {
		err := &TypeConflictError{Path: path, TypeA: a.Type, TypeB: b.Type}
		*out = append(*out, Conflict{Path: path, Kind: ConflictType, Detail: err.Error()})
		return
	}
	switch a.Type {
	case TypeObject:
		for _, key := range unionKeys(a.Properties, b.Properties) {
			ca, inA := a.Properties[key]
			cb, inB := b.Properties[key]
			if inA && inB {
				collectConflicts(ca, cb, path+"."+key, out)
			}
		}
	case TypeArray:
		if a.Items != nil && b.Items != nil {
			collectConflicts(a.Items, b.Items, path+"[]", out)
		}
	case TypeString:
		if err := mergeStringFacets(a, b, &Node{Type: TypeString}, path); err != nil {
			kind := ConflictConstraint
			switch err.(type) {
			case *EnumConflictError:
				kind = ConflictEnum
			case *PatternConflictError:
				kind = ConflictPattern
			}
			*out = append(*out, Conflict{Path: path, Kind: kind, Detail: err.Error()})
		}
	case TypeNumber:
		lo := maxFloatPtr(a.Minimum, b.Minimum)
		hi := minFloatPtr(a.Maximum, b.Maximum)
		if lo != nil && hi != nil && *lo > *hi {
			err := &ConstraintConflictError{Path: path, Constraint: "minimum/maximum", Lower: *lo, Upper: *hi}
			*out = append(*out, Conflict{Path: path, Kind: ConflictConstraint, Detail: err.Error()})
		}
	}
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Type:         n.Type,
		Description:  n.Description,
		Pattern:      n.Pattern,
		MinWords:     copyIntPtr(n.MinWords),
		MaxWords:     copyIntPtr(n.MaxWords),
		MinSentences: copyIntPtr(n.MinSentences),
		MaxSentences: copyIntPtr(n.MaxSentences),
		Minimum:      copyFloatPtr(n.Minimum),
		Maximum:      copyFloatPtr(n.Maximum),
	}
	if n.Enum != nil {
		out.Enum = append([]string(nil), n.Enum...)
	}
	if n.Required != nil {
		out.Required = append([]string(nil), n.Required...)
	}
	if n.AdditionalProperties != nil {
		out.AdditionalProperties = boolPtr(*n.AdditionalProperties)
	}
	if n.Properties != nil {
		out.Properties = make(map[string]*Node, len(n.Properties))
		for k, v := range n.Properties {
			out.Properties[k] = cloneNode(v)
		}
	}
	out.Items = cloneNode(n.Items)
	return out
}

func unionKeys(a, b map[string]*Node) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func unionSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, v := range a {
		if inB[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func maxIntPtr(a, b *int) *int {
	switch {
	case a == nil:
		return copyIntPtr(b)
	case b == nil:
		return copyIntPtr(a)
	case *a >= *b:
		return copyIntPtr(a)
	}
	return copyIntPtr(b)
}

func minIntPtr(a, b *int) *int {
	switch {
	case a == nil:
		return copyIntPtr(b)
	case b == nil:
		return copyIntPtr(a)
	case *a <= *b:
		return copyIntPtr(a)
	}
	return copyIntPtr(b)
}

func maxFloatPtr(a, b *float64) *float64 {
	switch {
	case a == nil:
		return copyFloatPtr(b)
	case b == nil:
		return copyFloatPtr(a)
	case *a >= *b:
		return copyFloatPtr(a)
	}
	return copyFloatPtr(b)
}

func minFloatPtr(a, b *float64) *float64 {
	switch {
	case a == nil:
		return copyFloatPtr(b)
	case b == nil:
		return copyFloatPtr(a)
	case *a <= *b:
		return copyFloatPtr(a)
	}
	return copyFloatPtr(b)
}
