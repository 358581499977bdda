package compose

import (
	"fmt"
	"time"

	"github.com/yungbote/notegen-backend/internal/modules/notes/schema"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Context carries the non-model data the bundle ships to the model.
type Context struct {
	FactPack  map[string]any `json:"factPack,omitempty"`
	NASSlices map[string]any `json:"nasSlices"`
}

// Bundle is the complete instruction package for one model call. Issues
// holds the slicer's findings so the linter can fold them into its result.
type Bundle struct {
	ID              string           `json:"id"`
	TemplateID      string           `json:"templateId"`
	TemplateVersion string           `json:"templateVersion"`
	Messages        []Message        `json:"messages"`
	JSONSchema      *schema.Document `json:"jsonSchema"`
	FieldGuide      []GuideEntry     `json:"fieldGuide"`
	Context         Context          `json:"context"`
	Issues          []Issue          `json:"issues,omitempty"`
}

// Composer assembles instruction bundles. The bundle id embeds the clock,
// so callers needing byte-for-byte reproducibility inject a fixed one.
type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer { return &Composer{now: time.Now} }

// NewComposerAt pins the composer to the given clock.
func NewComposerAt(now func() time.Time) *Composer { return &Composer{now: now} }

func (c *Composer) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Compose builds the instruction bundle for one template against an
// already-resolved snapshot: field guide, context slice, messages,
// assembly. The model schema is attached as the response contract.
func (c *Composer) Compose(tpl *template.Template, modelSchema *schema.Document, snapshot map[string]any) (*Bundle, error) {
	guide, err := BuildFieldGuide(tpl)
	if err != nil {
		return nil, err
	}
	slices, issues := SliceContext(snapshot, guide)
	messages, err := buildMessages(tpl, guide, slices)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		ID:              fmt.Sprintf("%s@%s-%d", tpl.ID, tpl.Version, c.clock().UnixMilli()),
		TemplateID:      tpl.ID,
		TemplateVersion: tpl.Version,
		Messages:        messages,
		JSONSchema:      modelSchema,
		FieldGuide:      guide,
		Context:         Context{FactPack: tpl.FactPack, NASSlices: slices},
		Issues:          issues,
	}, nil
}
