package resolve

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/formula"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Context is what a resolver sees: the template, the caller's source data,
// and a read view of the snapshot written so far. Later resolvers observe
// earlier writes, so a computed field can reference a lookup or static field
// resolved earlier in the same pass.
type Context struct {
	Template   *template.Template
	SourceData map[string]any
	Snapshot   map[string]any
}

// Resolver produces the value for one slot kind. Implementations return the
// resolved field or a reason-tagged failure; they never write the snapshot
// themselves.
type Resolver interface {
	CanResolve(kind template.SlotKind) bool
	Resolve(item *template.ContentItem, rctx *Context) (*ResolvedField, error)
}

// failure tags a resolver error with the warning reason the engine should
// emit.
type failure struct {
	reason Reason
	msg    string
}

func (e *failure) Error() string { return e.msg }

func failf(reason Reason, format string, args ...any) error {
	return &failure{reason: reason, msg: fmt.Sprintf(format, args...)}
}

func reasonOf(err error) Reason {
	if f, ok := err.(*failure); ok {
		return f.reason
	}
	return ReasonMissingSource
}

type lookupResolver struct{}

func (lookupResolver) CanResolve(kind template.SlotKind) bool {
	return kind == template.SlotLookup
}

func (lookupResolver) Resolve(item *template.ContentItem, rctx *Context) (*ResolvedField, error) {
	if item.Lookup == "" {
		return nil, failf(ReasonMissingSource, "lookup path is empty")
	}
	segs, err := fieldpath.Parse(item.Lookup)
	if err != nil {
		return nil, failf(ReasonMissingSource, "lookup path %q is invalid: %v", item.Lookup, err)
	}
	for _, seg := range segs[:len(segs)-1] {
		if seg.IsArray && seg.Index == fieldpath.NoIndex {
			return nil, failf(ReasonMissingSource, "lookup path %q: wildcard segments are not addressable", item.Lookup)
		}
	}
	v, ok := ValueAt(rctx.SourceData, segs)
	if !ok {
		return nil, failf(ReasonMissingSource, "no value at %q in source data", item.Lookup)
	}
	return &ResolvedField{Path: item.TargetPath, Value: v, Slot: item.Slot}, nil
}

type staticResolver struct{}

func (staticResolver) CanResolve(kind template.SlotKind) bool {
	return kind == template.SlotStatic
}

func (staticResolver) Resolve(item *template.ContentItem, _ *Context) (*ResolvedField, error) {
	if item.Text == "" {
		return nil, failf(ReasonMissingSource, "static item has no text")
	}
	return &ResolvedField{Path: item.TargetPath, Value: item.Text, Slot: item.Slot}, nil
}

type computedResolver struct {
	eval *formula.Evaluator
}

func (*computedResolver) CanResolve(kind template.SlotKind) bool {
	return kind == template.SlotComputed
}

func (r *computedResolver) Resolve(item *template.ContentItem, rctx *Context) (*ResolvedField, error) {
	if item.Formula == "" {
		return nil, failf(ReasonFormulaError, "formula is empty")
	}
	v, err := r.eval.Evaluate(item.Formula, scopeLookup(rctx.Snapshot, rctx.SourceData))
	if err != nil {
		return nil, failf(ReasonFormulaError, "%v", err)
	}
	return &ResolvedField{Path: item.TargetPath, Value: formula.Format(v, item.Format), Slot: item.Slot}, nil
}

// scopeLookup resolves formula references against the partial snapshot
// first, then the raw source data.
func scopeLookup(snapshot, source map[string]any) formula.Lookup {
	return func(path string) (any, bool) {
		segs, err := fieldpath.Parse(path)
		if err != nil {
			return nil, false
		}
		if v, ok := ValueAt(snapshot, segs); ok {
			return v, true
		}
		return ValueAt(source, segs)
	}
}

type verbatimResolver struct{}

func (verbatimResolver) CanResolve(kind template.SlotKind) bool {
	return kind == template.SlotVerbatim
}

func (verbatimResolver) Resolve(item *template.ContentItem, rctx *Context) (*ResolvedField, error) {
	if item.VerbatimRef == "" {
		return nil, failf(ReasonInvalidRef, "verbatim ref is empty")
	}
	ref, err := parseVerbatimRef(item.VerbatimRef)
	if err != nil {
		return nil, err
	}
	group, ok := rctx.SourceData[ref.Source].(map[string]any)
	if !ok {
		return nil, failf(ReasonMissingSource, "source %q not present in source data", ref.Source)
	}
	doc, ok := group[ref.DocID].(map[string]any)
	if !ok {
		return nil, failf(ReasonMissingSource, "document %q not found under source %q", ref.DocID, ref.Source)
	}
	text, err := extract(ref, doc)
	if err != nil {
		return nil, err
	}
	value := map[string]any{"text": text, "ref": ref.Raw}
	return &ResolvedField{Path: item.TargetPath, Value: value, Slot: item.Slot}, nil
}
