package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

func modelItem(id, outputPath string) *template.ContentItem {
	return &template.ContentItem{ID: id, Slot: template.SlotModel, OutputPath: outputPath}
}

func oneSection(items ...*template.ContentItem) *template.Template {
	return &template.Template{
		ID: "soap-standard", Name: "SOAP Note", Version: "3", Purpose: "Session documentation.",
		Components: []*template.Component{{ID: "body", Type: "section", Items: items}},
	}
}

func TestDeriveModelSharesArrayPrefix(t *testing.T) {
	tpl := oneSection(
		modelItem("hw-text", "plan.homework[].text"),
		modelItem("hw-due", "plan.homework[].due"),
	)
	doc, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if doc.ID != "https://schemas.notegen.dev/ais/soap-standard@3.json" {
		t.Fatalf("unexpected $id: %q", doc.ID)
	}
	if doc.Schema != SchemaDraft || !strings.Contains(doc.Title, "SOAP Note") {
		t.Fatalf("unexpected envelope: %#v", doc)
	}
	plan := doc.Properties["plan"]
	if plan == nil || plan.Type != TypeObject {
		t.Fatalf("missing plan object: %#v", doc.Properties)
	}
	homework := plan.Properties["homework"]
	if homework == nil || homework.Type != TypeArray {
		t.Fatalf("homework should be an array: %#v", plan.Properties)
	}
	items := homework.Items
	if items == nil || items.Type != TypeObject {
		t.Fatalf("homework items missing: %#v", homework)
	}
	if items.Properties["text"] == nil || items.Properties["due"] == nil {
		t.Fatalf("both leaves should share one items node: %#v", items.Properties)
	}
	if items.Properties["text"].Type != TypeString {
		t.Fatalf("model leaf must be string: %#v", items.Properties["text"])
	}
	if items.AdditionalProperties == nil || *items.AdditionalProperties {
		t.Fatalf("derived objects must be closed: %#v", items)
	}
}

func TestDeriveModelWrapsArrayLeaf(t *testing.T) {
	tpl := oneSection(modelItem("goals", "plan.goals[]"))
	doc, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	goals := doc.Properties["plan"].Properties["goals"]
	if goals.Type != TypeArray || goals.Items == nil || goals.Items.Type != TypeString {
		t.Fatalf("array-marker leaf should wrap string in array: %#v", goals)
	}
}

func TestDeriveModelCarriesConstraints(t *testing.T) {
	min := 5
	max := 60
	tpl := oneSection(&template.ContentItem{
		ID: "summary", Slot: template.SlotModel, OutputPath: "subjective.summary",
		Constraints: &template.Constraints{
			Required: true, Enum: []string{"improving", "stable", "worsening"},
			MinWords: &min, MaxWords: &max,
		},
	})
	doc, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	leaf := doc.Properties["subjective"].Properties["summary"]
	if len(leaf.Enum) != 3 || leaf.MinWords == nil || *leaf.MinWords != 5 || *leaf.MaxWords != 60 {
		t.Fatalf("constraints lost: %#v", leaf)
	}
	subjective := doc.Properties["subjective"]
	if len(subjective.Required) != 1 || subjective.Required[0] != "summary" {
		t.Fatalf("required flag lost: %#v", subjective.Required)
	}
}

func TestDeriveSnapshotLeafTypes(t *testing.T) {
	tpl := oneSection(
		&template.ContentItem{ID: "mood", Slot: template.SlotLookup, Lookup: "intake.mood", TargetPath: "subjective.mood"},
		&template.ContentItem{ID: "delta", Slot: template.SlotComputed, Formula: "a - b", ResultType: template.ResultNumber, TargetPath: "assessments.delta"},
		&template.ContentItem{ID: "flag", Slot: template.SlotComputed, Formula: "a > b", ResultType: template.ResultBoolean, TargetPath: "assessments.flag"},
		&template.ContentItem{ID: "extra", Slot: template.SlotComputed, Formula: "x", ResultType: template.ResultObject, TargetPath: "assessments.extra"},
		&template.ContentItem{ID: "quote", Slot: template.SlotVerbatim, VerbatimRef: "transcript:visit#t=0-10", TargetPath: "subjective.quote"},
	)
	doc, err := DeriveSnapshot(tpl)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if doc.ID != "https://schemas.notegen.dev/nas/soap-standard@3.json" {
		t.Fatalf("unexpected $id: %q", doc.ID)
	}
	if got := doc.Properties["subjective"].Properties["mood"].Type; got != TypeString {
		t.Fatalf("lookup leaf: %q", got)
	}
	assessments := doc.Properties["assessments"]
	if got := assessments.Properties["delta"].Type; got != TypeNumber {
		t.Fatalf("computed number leaf: %q", got)
	}
	if got := assessments.Properties["flag"].Type; got != TypeBoolean {
		t.Fatalf("computed boolean leaf: %q", got)
	}
	extra := assessments.Properties["extra"]
	if extra.Type != TypeObject || extra.AdditionalProperties == nil || !*extra.AdditionalProperties {
		t.Fatalf("computed object leaf must be open: %#v", extra)
	}
	quote := doc.Properties["subjective"].Properties["quote"]
	if quote.Type != TypeObject || quote.Properties["text"] == nil || quote.Properties["ref"] == nil {
		t.Fatalf("verbatim leaf shape: %#v", quote)
	}
	if len(quote.Required) != 2 {
		t.Fatalf("verbatim text/ref must be required: %#v", quote.Required)
	}
	if quote.AdditionalProperties == nil || *quote.AdditionalProperties {
		t.Fatalf("verbatim leaf must be closed: %#v", quote)
	}
}

func TestDeriveDuplicatePath(t *testing.T) {
	tpl := oneSection(
		modelItem("first", "subjective.summary"),
		modelItem("second", "subjective.summary"),
	)
	_, err := DeriveModel(tpl)
	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePathError, got %v", err)
	}
	if dup.SourceID != "second" || dup.Property != "summary" {
		t.Fatalf("unexpected error detail: %#v", dup)
	}
}

func TestDeriveLeafOverContainerConflict(t *testing.T) {
	tpl := oneSection(
		modelItem("deep", "plan.goal.text"),
		modelItem("shallow", "plan.goal"),
	)
	_, err := DeriveModel(tpl)
	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePathError, got %v", err)
	}
}

func TestDeriveSequentialIndices(t *testing.T) {
	tpl := oneSection(
		modelItem("m0n", "meds[0].name"),
		modelItem("m0d", "meds[0].dose"),
		modelItem("m1n", "meds[1].name"),
	)
	doc, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("contiguous indices should derive: %v", err)
	}
	items := doc.Properties["meds"].Items
	if items.Properties["name"] == nil || items.Properties["dose"] == nil {
		t.Fatalf("indexed siblings should share items node: %#v", items.Properties)
	}

	gap := oneSection(
		modelItem("m0", "meds[0].name"),
		modelItem("m3", "meds[3].name"),
	)
	_, err = DeriveModel(gap)
	var seq *SequentialIndexError
	if !errors.As(err, &seq) {
		t.Fatalf("expected SequentialIndexError, got %v", err)
	}
	if seq.Index != 3 || seq.Expected != 1 {
		t.Fatalf("unexpected detail: %#v", seq)
	}

	late := oneSection(modelItem("m1", "meds[1].name"))
	_, err = DeriveModel(late)
	if !errors.As(err, &seq) {
		t.Fatalf("indices must start at 0, got %v", err)
	}
}

func TestDeriveInvalidPathFails(t *testing.T) {
	tpl := oneSection(modelItem("bad", "plan..text"))
	if _, err := DeriveModel(tpl); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestDeriveSkipsOtherHalf(t *testing.T) {
	tpl := oneSection(
		modelItem("summary", "subjective.summary"),
		&template.ContentItem{ID: "mood", Slot: template.SlotLookup, Lookup: "intake.mood", TargetPath: "subjective.mood"},
	)
	model, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("derive model: %v", err)
	}
	if model.Properties["subjective"].Properties["mood"] != nil {
		t.Fatalf("model schema must skip non-model leaves")
	}
	snap, err := DeriveSnapshot(tpl)
	if err != nil {
		t.Fatalf("derive snapshot: %v", err)
	}
	if snap.Properties["subjective"].Properties["summary"] != nil {
		t.Fatalf("snapshot schema must skip model leaves")
	}
}

func TestNodeAt(t *testing.T) {
	tpl := oneSection(
		modelItem("hw", "plan.homework[].text"),
		modelItem("sum", "subjective.summary"),
	)
	doc, err := DeriveModel(tpl)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	segs := mustParse(t, "plan.homework[].text")
	node, ok := doc.NodeAt(segs)
	if !ok || node.Type != TypeString {
		t.Fatalf("NodeAt failed: %#v ok=%v", node, ok)
	}
	if _, ok := doc.NodeAt(mustParse(t, "plan.missing")); ok {
		t.Fatalf("NodeAt should miss unknown paths")
	}
}
