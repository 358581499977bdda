package template

import (
	"strings"
	"testing"
)

const sampleJSON = `{
  "id": "soap-standard",
  "name": "SOAP Note",
  "version": "3",
  "purpose": "Document an outpatient therapy session.",
  "components": [
    {
      "id": "subjective",
      "type": "section",
      "title": "Subjective",
      "items": [
        {
          "id": "mood",
          "slot": "lookup",
          "lookup": "intake.mood",
          "targetPath": "subjective.mood",
          "constraints": {"required": true, "minWords": 1, "color": "blue"}
        },
        {
          "id": "summary",
          "slot": "model",
          "outputPath": "subjective.summary",
          "source": ["subjective.mood"],
          "style": {"tone": "clinical", "mood_lighting": "dim"},
          "resultType": "markdown"
        }
      ]
    }
  ]
}`

func TestDecodeJSONSanitizes(t *testing.T) {
	tpl, warnings, err := DecodeJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tpl.ID != "soap-standard" || tpl.Version != "3" {
		t.Fatalf("unexpected header: %#v", tpl)
	}
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %#v", warnings)
	}
	joined := strings.Join(warnings, "\n")
	for _, frag := range []string{`constraints key "color"`, `style key "mood_lighting"`, `resultType "markdown"`} {
		if !strings.Contains(joined, frag) {
			t.Fatalf("missing warning %q in %q", frag, joined)
		}
	}

	mood := tpl.Components[0].Items[0]
	if mood.Constraints == nil || !mood.Constraints.Required {
		t.Fatalf("required constraint lost: %#v", mood.Constraints)
	}
	if mood.Constraints.MinWords == nil || *mood.Constraints.MinWords != 1 {
		t.Fatalf("minWords lost: %#v", mood.Constraints)
	}

	summary := tpl.Components[0].Items[1]
	if summary.ResultType != "" {
		t.Fatalf("invalid resultType should be cleared, got %q", summary.ResultType)
	}
	if summary.Style == nil || summary.Style.Tone != "clinical" {
		t.Fatalf("style lost: %#v", summary.Style)
	}
}

func TestDecodeYAML(t *testing.T) {
	doc := `
id: progress-brief
name: Progress Note
version: "1"
components:
  - id: plan
    type: section
    items:
      - id: homework
        slot: model
        outputPath: plan.homework[].text
        constraints:
          minWords: 5
          maxWords: 40
`
	tpl, warnings, err := DecodeYAML([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %#v", warnings)
	}
	it := tpl.Components[0].Items[0]
	if it.OutputPath != "plan.homework[].text" {
		t.Fatalf("unexpected outputPath: %q", it.OutputPath)
	}
	if it.Constraints.MinWords == nil || *it.Constraints.MinWords != 5 {
		t.Fatalf("minWords lost: %#v", it.Constraints)
	}
	if it.Constraints.MaxWords == nil || *it.Constraints.MaxWords != 40 {
		t.Fatalf("maxWords lost: %#v", it.Constraints)
	}
}

func TestWalkItemsOrder(t *testing.T) {
	tpl := &Template{
		ID: "t", Version: "1",
		Components: []*Component{
			{
				ID: "a", Type: "section",
				Items: []*ContentItem{
					{
						ID: "first", Slot: SlotStatic, TargetPath: "a.first", Text: "x",
						ListItems: []*ContentItem{
							{ID: "child1", Slot: SlotStatic, TargetPath: "a.list[].one", Text: "y"},
							{ID: "child2", Slot: SlotStatic, TargetPath: "a.list[].two", Text: "z"},
						},
					},
					{
						ID: "cells", Slot: SlotStatic,
						TableMap: map[string]*ContentItem{
							"zulu":  {ID: "cell-z", Slot: SlotStatic, TargetPath: "a.table.z", Text: "1"},
							"alpha": {ID: "cell-a", Slot: SlotStatic, TargetPath: "a.table.a", Text: "2"},
						},
					},
				},
				Children: []*Component{
					{ID: "b", Type: "section", Items: []*ContentItem{
						{ID: "nested", Slot: SlotStatic, TargetPath: "b.nested", Text: "w"},
					}},
				},
			},
		},
	}
	var order []string
	WalkItems(tpl, func(_ *Component, it *ContentItem) {
		order = append(order, it.ID)
	})
	want := []string{"first", "child1", "child2", "cells", "cell-a", "cell-z", "nested"}
	if len(order) != len(want) {
		t.Fatalf("unexpected walk: %#v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("walk order mismatch at %d: got %#v", i, order)
		}
	}
}

func TestValidate(t *testing.T) {
	tpl := &Template{
		ID: "t", Version: "1",
		Components: []*Component{
			{ID: "a", Type: "section", Items: []*ContentItem{
				{ID: "x", Slot: SlotLookup, TargetPath: "a.x", Lookup: "src.x"},
			}},
		},
	}
	if err := Validate(tpl); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}

	bad := &Template{ID: "t", Version: "1", Components: []*Component{
		{ID: "a", Type: "section", Items: []*ContentItem{
			{ID: "x", Slot: SlotKind("render"), TargetPath: "a.x"},
		}},
	}}
	err := Validate(bad)
	if err == nil || !strings.Contains(err.Error(), "unknown slot kind") {
		t.Fatalf("expected slot kind error, got %v", err)
	}

	missing := &Template{ID: "t", Version: "1", Components: []*Component{
		{ID: "a", Type: "section", Items: []*ContentItem{
			{ID: "x", Slot: SlotModel},
		}},
	}}
	err = Validate(missing)
	if err == nil || !strings.Contains(err.Error(), "missing outputPath") {
		t.Fatalf("expected outputPath error, got %v", err)
	}

	if err := Validate(&Template{Version: "1"}); err == nil {
		t.Fatalf("expected missing id error")
	}
}
