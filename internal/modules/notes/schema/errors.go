package schema

import "fmt"

// DuplicatePathError reports two leaves mapping to the same output location.
// Fatal to the derivation call.
type DuplicatePathError struct {
	Path     string
	SourceID string
	Property string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path %q: property %q already defined (item %q)", e.Path, e.Property, e.SourceID)
}

// SequentialIndexError reports explicit array indices that do not start at 0
// or leave the contiguous run. Fatal to the derivation call.
type SequentialIndexError struct {
	Path     string
	Index    int
	Expected int
}

func (e *SequentialIndexError) Error() string {
	return fmt.Sprintf("array %q: explicit index %d out of sequence (expected %d)", e.Path, e.Index, e.Expected)
}

// TypeConflictError reports two nodes of different types at the same path.
// Unmergeable.
type TypeConflictError struct {
	Path  string
	TypeA string
	TypeB string
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %q: type %s vs %s", e.Path, e.TypeA, e.TypeB)
}

// EnumConflictError reports an empty enum intersection.
type EnumConflictError struct {
	Path  string
	EnumA []string
	EnumB []string
}

func (e *EnumConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %q: enum sets %v and %v do not intersect", e.Path, e.EnumA, e.EnumB)
}

// PatternConflictError reports two differing patterns at the same path.
type PatternConflictError struct {
	Path     string
	PatternA string
	PatternB string
}

func (e *PatternConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %q: pattern %q vs %q", e.Path, e.PatternA, e.PatternB)
}

// ConstraintConflictError reports a merged lower bound exceeding the merged
// upper bound for one of the word/sentence/numeric constraint pairs.
type ConstraintConflictError struct {
	Path       string
	Constraint string
	Lower      float64
	Upper      float64
}

func (e *ConstraintConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %q: %s lower bound %v exceeds upper bound %v", e.Path, e.Constraint, e.Lower, e.Upper)
}

// Conflict is one entry of a ValidateMergeable dry run.
type Conflict struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Conflict kinds.
const (
	ConflictType       = "type"
	ConflictEnum       = "enum"
	ConflictPattern    = "pattern"
	ConflictConstraint = "constraint"
)
