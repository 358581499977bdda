// Package notes is the orchestration facade over the template compiler:
// schema derivation and merging, snapshot resolution, prompt composition,
// and draft generation through the generative engine boundary.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/notegen-backend/internal/inference/engine"
	"github.com/yungbote/notegen-backend/internal/modules/notes/compose"
	"github.com/yungbote/notegen-backend/internal/modules/notes/formula"
	"github.com/yungbote/notegen-backend/internal/modules/notes/resolve"
	"github.com/yungbote/notegen-backend/internal/modules/notes/schema"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

// SchemaSet bundles the three derived documents for one template: the
// model-field schema, the non-model snapshot schema, and their merge.
type SchemaSet struct {
	Model    *schema.Document `json:"ais"`
	Snapshot *schema.Document `json:"nas"`
	Merged   *schema.Document `json:"rps"`
}

// ConflictError carries every conflict the merge dry run found, so
// template authors see the full list in one pass.
type ConflictError struct {
	Conflicts []schema.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("template schemas do not merge: %d conflicts", len(e.Conflicts))
}

// BundleResult is the full output of the compose pipeline.
type BundleResult struct {
	Schemas    *SchemaSet          `json:"schemas"`
	Resolution *resolve.Result     `json:"resolution"`
	Bundle     *compose.Bundle     `json:"bundle"`
	Lint       *compose.LintResult `json:"lint"`
}

// DraftResult pairs the decoded model reply with the bundle that produced
// it.
type DraftResult struct {
	Draft      map[string]any      `json:"draft"`
	BundleID   string              `json:"bundleId"`
	Lint       *compose.LintResult `json:"lint"`
	Resolution *resolve.Result     `json:"resolution"`
}

var ErrNoGenerativeEngine = errors.New("no generative engine configured")

const batchConcurrency = 4

type Usecases struct {
	log      *logger.Logger
	eval     *formula.Evaluator
	resolver *resolve.Engine
	composer *compose.Composer
	gen      engine.Engine
}

// NewUsecases wires the pipeline around one shared formula evaluator so
// parallel resolution runs reuse the compiled-program cache. gen may be
// nil; draft generation then reports ErrNoGenerativeEngine.
func NewUsecases(log *logger.Logger, gen engine.Engine) *Usecases {
	eval := formula.NewEvaluator()
	return &Usecases{
		log:      log.With("module", "notes"),
		eval:     eval,
		resolver: resolve.NewEngine(eval),
		composer: compose.NewComposer(),
		gen:      gen,
	}
}

// CompileSchemas derives the model and snapshot schemas, dry-runs the
// merge so every conflict surfaces at once, then merges.
func (u *Usecases) CompileSchemas(ctx context.Context, tpl *template.Template) (*SchemaSet, error) {
	_ = ctx
	start := time.Now()
	if err := template.Validate(tpl); err != nil {
		return nil, err
	}
	model, err := schema.DeriveModel(tpl)
	if err != nil {
		return nil, err
	}
	snapshot, err := schema.DeriveSnapshot(tpl)
	if err != nil {
		return nil, err
	}
	if conflicts := schema.ValidateMergeable(model, snapshot); len(conflicts) > 0 {
		u.log.Warn("schema merge dry run failed",
			"template_id", tpl.ID, "template_version", tpl.Version, "conflicts", len(conflicts))
		return nil, &ConflictError{Conflicts: conflicts}
	}
	merged, err := schema.Merge(model, snapshot, tpl.ID, tpl.Name, tpl.Version)
	if err != nil {
		return nil, err
	}
	u.log.Debug("schemas compiled",
		"template_id", tpl.ID, "template_version", tpl.Version, "took", time.Since(start).String())
	return &SchemaSet{Model: model, Snapshot: snapshot, Merged: merged}, nil
}

// MergeConflicts reports the conflict list without failing, for the
// authoring-time dry-run endpoint.
func (u *Usecases) MergeConflicts(ctx context.Context, tpl *template.Template) ([]schema.Conflict, error) {
	_ = ctx
	if err := template.Validate(tpl); err != nil {
		return nil, err
	}
	model, err := schema.DeriveModel(tpl)
	if err != nil {
		return nil, err
	}
	snapshot, err := schema.DeriveSnapshot(tpl)
	if err != nil {
		return nil, err
	}
	return schema.ValidateMergeable(model, snapshot), nil
}

// BuildSnapshot resolves one source document against the template.
func (u *Usecases) BuildSnapshot(ctx context.Context, tpl *template.Template, source map[string]any) (*resolve.Result, error) {
	_ = ctx
	start := time.Now()
	if err := template.Validate(tpl); err != nil {
		return nil, err
	}
	target, err := schema.DeriveSnapshot(tpl)
	if err != nil {
		return nil, err
	}
	res := u.resolver.Build(tpl, source, target)
	u.log.Debug("snapshot built",
		"template_id", tpl.ID, "resolved", len(res.Resolved), "warnings", len(res.Warnings),
		"took", time.Since(start).String())
	return res, nil
}

// BuildSnapshotBatch resolves one snapshot per source document. Runs
// share the template, target schema, and formula cache; results line up
// with the input order and warnings stay isolated per document.
func (u *Usecases) BuildSnapshotBatch(ctx context.Context, tpl *template.Template, sources []map[string]any) ([]*resolve.Result, error) {
	if err := template.Validate(tpl); err != nil {
		return nil, err
	}
	target, err := schema.DeriveSnapshot(tpl)
	if err != nil {
		return nil, err
	}
	results := make([]*resolve.Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i := range sources {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = u.resolver.Build(tpl, sources[i], target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	u.log.Debug("snapshot batch built", "template_id", tpl.ID, "documents", len(sources))
	return results, nil
}

// ComposeBundle runs the full pipeline: schemas, resolution, composition,
// lint.
func (u *Usecases) ComposeBundle(ctx context.Context, tpl *template.Template, source map[string]any) (*BundleResult, error) {
	start := time.Now()
	set, err := u.CompileSchemas(ctx, tpl)
	if err != nil {
		return nil, err
	}
	res := u.resolver.Build(tpl, source, set.Snapshot)
	bundle, err := u.composer.Compose(tpl, set.Model, res.Snapshot)
	if err != nil {
		return nil, err
	}
	lint := compose.Lint(bundle, tpl)
	u.log.Info("bundle composed",
		"template_id", tpl.ID, "bundle_id", bundle.ID,
		"resolution_warnings", len(res.Warnings), "lint_ok", lint.OK,
		"took", time.Since(start).String())
	return &BundleResult{Schemas: set, Resolution: res, Bundle: bundle, Lint: lint}, nil
}

// GenerateDraft composes a bundle, sends it through the generative
// engine with the model-field schema as the response contract, and
// decodes the reply.
func (u *Usecases) GenerateDraft(ctx context.Context, tpl *template.Template, source map[string]any, model string) (*DraftResult, error) {
	if u.gen == nil {
		return nil, ErrNoGenerativeEngine
	}
	br, err := u.ComposeBundle(ctx, tpl, source)
	if err != nil {
		return nil, err
	}
	schemaMap, err := documentAsMap(br.Schemas.Model)
	if err != nil {
		return nil, err
	}
	messages := make([]engine.Message, 0, len(br.Bundle.Messages))
	for _, m := range br.Bundle.Messages {
		messages = append(messages, engine.Message{Role: m.Role, Content: m.Content})
	}
	raw, err := u.gen.GenerateText(ctx, model, messages, engine.GenerateOptions{
		JSONSchema: &engine.JSONSchema{Name: "note-model-fields", Schema: schemaMap, Strict: true},
	})
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}
	var draft map[string]any
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("draft reply is not a JSON object: %w", err)
	}
	u.log.Info("draft generated", "template_id", tpl.ID, "bundle_id", br.Bundle.ID, "model", model)
	return &DraftResult{Draft: draft, BundleID: br.Bundle.ID, Lint: br.Lint, Resolution: br.Resolution}, nil
}

func documentAsMap(doc *schema.Document) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
