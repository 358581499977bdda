package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
)

func mustParse(t *testing.T, path string) []fieldpath.Segment {
	t.Helper()
	segs, err := fieldpath.Parse(path)
	if err != nil {
		t.Fatalf("parse %q: %v", path, err)
	}
	return segs
}

func intp(n int) *int { return &n }

func floatp(f float64) *float64 { return &f }

func docWith(props map[string]*Node) *Document {
	return &Document{
		ID: "test", Schema: SchemaDraft, Title: "test", Type: TypeObject,
		Properties: props, AdditionalProperties: false,
	}
}

func TestMergeEnumIntersection(t *testing.T) {
	a := docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"a", "b", "c"}}})
	b := docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"b", "c", "d"}}})
	out, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	got := out.Properties["status"].Enum
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected enum: %#v", got)
	}

	a = docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"a"}}})
	b = docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"b"}}})
	_, err = Merge(a, b, "tpl", "Template", "1")
	var enumErr *EnumConflictError
	if !errors.As(err, &enumErr) {
		t.Fatalf("expected EnumConflictError, got %v", err)
	}
}

func TestMergeWordBounds(t *testing.T) {
	a := docWith(map[string]*Node{"summary": {Type: TypeString, MinWords: intp(10), MaxWords: intp(80)}})
	b := docWith(map[string]*Node{"summary": {Type: TypeString, MinWords: intp(5), MaxWords: intp(60)}})
	out, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	leaf := out.Properties["summary"]
	if *leaf.MinWords != 10 || *leaf.MaxWords != 60 {
		t.Fatalf("unexpected bounds: min=%d max=%d", *leaf.MinWords, *leaf.MaxWords)
	}

	a = docWith(map[string]*Node{"summary": {Type: TypeString, MinWords: intp(50)}})
	b = docWith(map[string]*Node{"summary": {Type: TypeString, MaxWords: intp(10)}})
	_, err = Merge(a, b, "tpl", "Template", "1")
	var conErr *ConstraintConflictError
	if !errors.As(err, &conErr) {
		t.Fatalf("expected ConstraintConflictError, got %v", err)
	}
}

func TestMergeNumberBounds(t *testing.T) {
	a := docWith(map[string]*Node{"score": {Type: TypeNumber, Minimum: floatp(0), Maximum: floatp(27)}})
	b := docWith(map[string]*Node{"score": {Type: TypeNumber, Minimum: floatp(5)}})
	out, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	leaf := out.Properties["score"]
	if *leaf.Minimum != 5 || *leaf.Maximum != 27 {
		t.Fatalf("unexpected range: %#v", leaf)
	}
}

func TestMergeTypeConflict(t *testing.T) {
	a := docWith(map[string]*Node{"field": {Type: TypeString}})
	b := docWith(map[string]*Node{"field": {Type: TypeNumber}})
	_, err := Merge(a, b, "tpl", "Template", "1")
	var tc *TypeConflictError
	if !errors.As(err, &tc) {
		t.Fatalf("expected TypeConflictError, got %v", err)
	}
	if tc.Path != "field" {
		t.Fatalf("unexpected path: %q", tc.Path)
	}
}

func TestMergePatternConflict(t *testing.T) {
	a := docWith(map[string]*Node{"code": {Type: TypeString, Pattern: `^[A-Z]\d+$`}})
	b := docWith(map[string]*Node{"code": {Type: TypeString, Pattern: `^\d+$`}})
	_, err := Merge(a, b, "tpl", "Template", "1")
	var pc *PatternConflictError
	if !errors.As(err, &pc) {
		t.Fatalf("expected PatternConflictError, got %v", err)
	}

	b = docWith(map[string]*Node{"code": {Type: TypeString}})
	out, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if out.Properties["code"].Pattern != `^[A-Z]\d+$` {
		t.Fatalf("present pattern should survive: %#v", out.Properties["code"])
	}
}

func TestMergeUnionsDisjointBranches(t *testing.T) {
	a := docWith(map[string]*Node{
		"subjective": {Type: TypeObject, AdditionalProperties: boolPtr(false), Required: []string{"summary"},
			Properties: map[string]*Node{"summary": {Type: TypeString}}},
	})
	b := docWith(map[string]*Node{
		"subjective": {Type: TypeObject, AdditionalProperties: boolPtr(false), Required: []string{"mood"},
			Properties: map[string]*Node{"mood": {Type: TypeString}}},
		"vitals": {Type: TypeObject, AdditionalProperties: boolPtr(false),
			Properties: map[string]*Node{"bp": {Type: TypeString}}},
	})
	out, err := Merge(a, b, "soap-standard", "SOAP Note", "3")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if out.ID != "https://schemas.notegen.dev/rps/soap-standard@3.json" {
		t.Fatalf("unexpected $id: %q", out.ID)
	}
	subj := out.Properties["subjective"]
	if subj.Properties["summary"] == nil || subj.Properties["mood"] == nil {
		t.Fatalf("shared object should union properties: %#v", subj.Properties)
	}
	if !reflect.DeepEqual(subj.Required, []string{"mood", "summary"}) {
		t.Fatalf("required union: %#v", subj.Required)
	}
	if out.Properties["vitals"] == nil {
		t.Fatalf("unique branch should copy over")
	}
	if b.Properties["vitals"] == out.Properties["vitals"] {
		t.Fatalf("copied branch must be a fresh node, not an alias")
	}
}

func TestMergeLeafCommutativity(t *testing.T) {
	a := docWith(map[string]*Node{"status": {
		Type: TypeString, Enum: []string{"c", "a", "b"}, MinWords: intp(3), MaxWords: intp(90),
	}})
	b := docWith(map[string]*Node{"status": {
		Type: TypeString, Enum: []string{"b", "d", "a"}, MinWords: intp(8), MaxWords: intp(40),
	}})
	ab, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge ab: %v", err)
	}
	ba, err := Merge(b, a, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge ba: %v", err)
	}
	if !reflect.DeepEqual(ab.Properties["status"], ba.Properties["status"]) {
		t.Fatalf("leaf merge not commutative:\n%#v\n%#v", ab.Properties["status"], ba.Properties["status"])
	}
}

func TestMergeBoundsAssociativity(t *testing.T) {
	mk := func(min, max int) *Document {
		return docWith(map[string]*Node{"summary": {Type: TypeString, MinWords: intp(min), MaxWords: intp(max)}})
	}
	a, b, c := mk(2, 100), mk(10, 70), mk(5, 80)

	ab, err := Merge(a, b, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	abc1, err := Merge(ab, c, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	bc, err := Merge(b, c, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	abc2, err := Merge(a, bc, "tpl", "Template", "1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	l1, l2 := abc1.Properties["summary"], abc2.Properties["summary"]
	if *l1.MinWords != *l2.MinWords || *l1.MaxWords != *l2.MaxWords {
		t.Fatalf("bounds not associative: %#v vs %#v", l1, l2)
	}
	if *l1.MinWords != 10 || *l1.MaxWords != 70 {
		t.Fatalf("unexpected final bounds: %#v", l1)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"a", "b", "c"}}})
	b := docWith(map[string]*Node{"status": {Type: TypeString, Enum: []string{"b", "c", "d"}}})
	if _, err := Merge(a, b, "tpl", "Template", "1"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !reflect.DeepEqual(a.Properties["status"].Enum, []string{"a", "b", "c"}) {
		t.Fatalf("input mutated: %#v", a.Properties["status"].Enum)
	}
}

func TestValidateMergeableCollectsAllConflicts(t *testing.T) {
	a := docWith(map[string]*Node{
		"status": {Type: TypeString, Enum: []string{"a"}},
		"score":  {Type: TypeNumber, Minimum: floatp(50)},
		"name":   {Type: TypeString},
	})
	b := docWith(map[string]*Node{
		"status": {Type: TypeString, Enum: []string{"b"}},
		"score":  {Type: TypeNumber, Maximum: floatp(10)},
		"name":   {Type: TypeBoolean},
	})
	conflicts := ValidateMergeable(a, b)
	if len(conflicts) != 3 {
		t.Fatalf("expected 3 conflicts, got %#v", conflicts)
	}
	kinds := map[string]bool{}
	for _, c := range conflicts {
		kinds[c.Kind] = true
	}
	for _, want := range []string{ConflictEnum, ConflictConstraint, ConflictType} {
		if !kinds[want] {
			t.Fatalf("missing conflict kind %q in %#v", want, conflicts)
		}
	}

	clean := ValidateMergeable(
		docWith(map[string]*Node{"x": {Type: TypeString}}),
		docWith(map[string]*Node{"y": {Type: TypeString}}),
	)
	if len(clean) != 0 {
		t.Fatalf("disjoint docs should not conflict: %#v", clean)
	}
}
