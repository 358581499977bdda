package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// NoIndex marks an array segment that carries no explicit position.
const NoIndex = -1

// Segment is one parsed unit of a dotted field path. "homework[]" parses to
// {Name:"homework", IsArray:true, Index:NoIndex}; "diagnoses[2]" carries the
// explicit index.
type Segment struct {
	Name    string
	IsArray bool
	Index   int
}

// InvalidPathError reports a path that failed to parse, with the offending
// segment when one can be singled out.
type InvalidPathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *InvalidPathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("invalid path %q: segment %q: %s", e.Path, e.Segment, e.Reason)
	}
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// Parse splits a dotted path into segments. Each piece must be "name",
// "name[]" or "name[N]" with N a non-negative integer; names are restricted
// to [A-Za-z0-9_-]. Anything else fails with *InvalidPathError.
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, &InvalidPathError{Path: path, Reason: "empty path"}
	}
	pieces := strings.Split(path, ".")
	segs := make([]Segment, 0, len(pieces))
	for _, piece := range pieces {
		seg, err := parseSegment(path, piece)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseSegment(path, piece string) (Segment, error) {
	if piece == "" {
		return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "empty segment"}
	}
	name := piece
	isArray := false
	index := NoIndex
	if open := strings.IndexByte(piece, '['); open >= 0 {
		if !strings.HasSuffix(piece, "]") {
			return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "unterminated array marker"}
		}
		name = piece[:open]
		if name == "" {
			return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "array marker without a name"}
		}
		inner := piece[open+1 : len(piece)-1]
		if strings.ContainsAny(inner, "[]") {
			return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "malformed array marker"}
		}
		isArray = true
		if inner != "" {
			n, err := parseIndex(inner)
			if err != nil {
				return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "array index must be a non-negative integer"}
			}
			index = n
		}
	} else if strings.ContainsRune(piece, ']') {
		return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "malformed array marker"}
	}
	if !validName(name) {
		return Segment{}, &InvalidPathError{Path: path, Segment: piece, Reason: "name must match [A-Za-z0-9_-]"}
	}
	return Segment{Name: name, IsArray: isArray, Index: index}, nil
}

func parseIndex(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// Join is the inverse of Parse: Join(Parse(p)) == p for every parsable p.
func Join(segs []Segment) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
		if seg.IsArray {
			b.WriteByte('[')
			if seg.Index != NoIndex {
				b.WriteString(strconv.Itoa(seg.Index))
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Key renders the canonical shape of a segment prefix: explicit indices
// collapse to the bare wildcard marker, so "meds[0]" and "meds[1]" share a
// key. Derivers cache created nodes by this form.
func Key(segs []Segment) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
		if seg.IsArray {
			b.WriteString("[]")
		}
	}
	return b.String()
}

// LeafName returns the name of the final segment.
func LeafName(path string) (string, error) {
	segs, err := Parse(path)
	if err != nil {
		return "", err
	}
	return segs[len(segs)-1].Name, nil
}

// ParentPath returns the path with its final segment removed. The bool is
// false when the path has a single segment and therefore no parent.
func ParentPath(path string) (string, bool, error) {
	segs, err := Parse(path)
	if err != nil {
		return "", false, err
	}
	if len(segs) < 2 {
		return "", false, nil
	}
	return Join(segs[:len(segs)-1]), true, nil
}
