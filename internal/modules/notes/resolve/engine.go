package resolve

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/formula"
	"github.com/yungbote/notegen-backend/internal/modules/notes/schema"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Engine dispatches every non-model content item to its resolver and
// assembles the results into a nested snapshot. Build never fails: per-field
// problems become warnings and the snapshot stays best-effort. One Engine is
// safe for concurrent Build calls; the shared state is the formula
// evaluator's program cache, which is concurrency-safe by construction.
type Engine struct {
	eval      *formula.Evaluator
	resolvers []Resolver
}

// NewEngine builds an engine with the standard resolver chain
// (lookup, static, computed, verbatim) sharing the given evaluator. A nil
// evaluator gets a private one.
func NewEngine(eval *formula.Evaluator) *Engine {
	if eval == nil {
		eval = formula.NewEvaluator()
	}
	return &Engine{
		eval: eval,
		resolvers: []Resolver{
			lookupResolver{},
			staticResolver{},
			&computedResolver{eval: eval},
			verbatimResolver{},
		},
	}
}

// Build resolves every non-model leaf of the template against sourceData in
// canonical traversal order. target, when non-nil, is the snapshot schema
// used to type-check values before they are written; a mismatched value is
// dropped with a type_mismatch warning rather than corrupting the snapshot.
// Two Builds over the same inputs produce byte-identical snapshots and
// identically ordered resolved/warning lists.
func (e *Engine) Build(tpl *template.Template, sourceData map[string]any, target *schema.Document) *Result {
	res := &Result{Snapshot: map[string]any{}}
	rctx := &Context{Template: tpl, SourceData: sourceData, Snapshot: res.Snapshot}
	template.WalkItems(tpl, func(c *template.Component, it *template.ContentItem) {
		if it.Slot == template.SlotModel || !it.IsLeaf() {
			return
		}
		e.resolveItem(c, it, rctx, res, target)
	})
	return res
}

func (e *Engine) resolveItem(c *template.Component, it *template.ContentItem, rctx *Context, res *Result, target *schema.Document) {
	targetPath := it.TargetPath
	segs, err := fieldpath.Parse(targetPath)
	if err != nil {
		warn(res, c, it, ReasonInvalidRef, fmt.Sprintf("target path %q is invalid: %v", targetPath, err))
		return
	}

	var resolver Resolver
	for _, cand := range e.resolvers {
		if cand.CanResolve(it.Slot) {
			resolver = cand
			break
		}
	}
	if resolver == nil {
		warn(res, c, it, ReasonMissingSource, fmt.Sprintf("no resolver handles slot kind %q", it.Slot))
		return
	}

	field, err := resolver.Resolve(it, rctx)
	if err != nil {
		warn(res, c, it, reasonOf(err), err.Error())
		return
	}
	if field == nil {
		warn(res, c, it, ReasonMissingSource, "resolver returned no value")
		return
	}
	if field.Path != targetPath {
		// Resolver contract guard: a mismatched path means a resolver bug,
		// not a data problem, so this stays warning severity.
		warn(res, c, it, ReasonUnresolvedSlot, fmt.Sprintf("resolver returned path %q for item targeting %q", field.Path, targetPath))
		return
	}

	if target != nil {
		if node, ok := target.NodeAt(segs); ok && !valueMatches(node, field.Value) {
			warn(res, c, it, ReasonTypeMismatch, fmt.Sprintf("value of type %T does not match schema type %q at %q", field.Value, node.Type, targetPath))
			return
		}
	}

	if err := setPath(res.Snapshot, segs, field.Value); err != nil {
		warn(res, c, it, ReasonTypeMismatch, err.Error())
		return
	}
	res.Resolved = append(res.Resolved, *field)
}

// warn appends a warning, escalating to error severity when the item is
// required. The unresolved_slot guard is exempt: it flags resolver bugs and
// stays advisory no matter what the item declares.
func warn(res *Result, c *template.Component, it *template.ContentItem, reason Reason, msg string) {
	sev := SeverityWarning
	if reason != ReasonUnresolvedSlot && it.IsRequired() {
		sev = SeverityError
	}
	res.Warnings = append(res.Warnings, Warning{
		ComponentID: c.ID,
		SlotID:      it.ID,
		Slot:        it.Slot,
		Path:        template.ItemPath(it),
		Reason:      reason,
		Severity:    sev,
		Message:     msg,
	})
}

// valueMatches is a loose kind check of a resolved value against a schema
// node: enough to keep mistyped values out of the snapshot without
// re-implementing full schema validation.
func valueMatches(node *schema.Node, v any) bool {
	switch node.Type {
	case schema.TypeString:
		_, ok := v.(string)
		return ok
	case schema.TypeNumber:
		_, ok := floatValue(v)
		return ok
	case schema.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case schema.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case schema.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		if node.Items != nil {
			for _, elem := range arr {
				if !valueMatches(node.Items, elem) {
					return false
				}
			}
		}
		return true
	}
	return true
}
