package template

// SlotKind tags how a content item's value is produced.
type SlotKind string

const (
	SlotStatic   SlotKind = "static"
	SlotModel    SlotKind = "model"
	SlotLookup   SlotKind = "lookup"
	SlotComputed SlotKind = "computed"
	SlotVerbatim SlotKind = "verbatim"
)

// KnownSlotKind reports whether k is one of the five supported slot kinds.
func KnownSlotKind(k SlotKind) bool {
	switch k {
	case SlotStatic, SlotModel, SlotLookup, SlotComputed, SlotVerbatim:
		return true
	}
	return false
}

// Result type hints for computed slots.
const (
	ResultString      = "string"
	ResultNumber      = "number"
	ResultBoolean     = "boolean"
	ResultObject      = "object"
	ResultStringArray = "stringArray"
)

// Format hints for computed slots.
const (
	FormatPlain      = "plain"
	FormatDeltaScore = "deltaScore"
	FormatPercent    = "percent"
)

// Template is the root of a declarative note template. It is immutable input
// owned by the caller; every subsystem reads it without mutation.
type Template struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Version      string         `json:"version" yaml:"version"`
	Purpose      string         `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	SystemPrompt string         `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	Rules        []string       `json:"rules,omitempty" yaml:"rules,omitempty"`
	FactPack     map[string]any `json:"factPack,omitempty" yaml:"factPack,omitempty"`
	Components   []*Component   `json:"components" yaml:"components"`
}

// Component is a section of the note layout: a type tag, optional title,
// ordered content items, and child components.
type Component struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Items    []*ContentItem `json:"items,omitempty" yaml:"items,omitempty"`
	Children []*Component   `json:"children,omitempty" yaml:"children,omitempty"`
}

// ContentItem declares one slot of the note: how its value is produced and
// where it lands in the output payload. Only the fields matching the slot
// kind are meaningful; the rest stay zero.
type ContentItem struct {
	ID          string                  `json:"id" yaml:"id"`
	Slot        SlotKind                `json:"slot" yaml:"slot"`
	OutputPath  string                  `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
	TargetPath  string                  `json:"targetPath,omitempty" yaml:"targetPath,omitempty"`
	Lookup      string                  `json:"lookup,omitempty" yaml:"lookup,omitempty"`
	Formula     string                  `json:"formula,omitempty" yaml:"formula,omitempty"`
	ResultType  string                  `json:"resultType,omitempty" yaml:"resultType,omitempty"`
	Format      string                  `json:"format,omitempty" yaml:"format,omitempty"`
	Text        string                  `json:"text,omitempty" yaml:"text,omitempty"`
	VerbatimRef string                  `json:"verbatimRef,omitempty" yaml:"verbatimRef,omitempty"`
	ListItems   []*ContentItem          `json:"listItems,omitempty" yaml:"listItems,omitempty"`
	TableMap    map[string]*ContentItem `json:"tableMap,omitempty" yaml:"tableMap,omitempty"`
	Constraints *Constraints            `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Style       *Style                  `json:"style,omitempty" yaml:"style,omitempty"`
	Source      []string                `json:"source,omitempty" yaml:"source,omitempty"`
	AIDeps      []string                `json:"aiDeps,omitempty" yaml:"aiDeps,omitempty"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Guidance    []string                `json:"guidance,omitempty" yaml:"guidance,omitempty"`
}

// Constraints is the closed constraint set a content item may carry. Unknown
// keys in the source document are dropped with a warning at decode time.
type Constraints struct {
	Required     bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Enum         []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern      string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinWords     *int     `json:"minWords,omitempty" yaml:"minWords,omitempty"`
	MaxWords     *int     `json:"maxWords,omitempty" yaml:"maxWords,omitempty"`
	MinSentences *int     `json:"minSentences,omitempty" yaml:"minSentences,omitempty"`
	MaxSentences *int     `json:"maxSentences,omitempty" yaml:"maxSentences,omitempty"`
	Minimum      *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum      *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// Style is the closed writing-style hint set, same unknown-key policy as
// Constraints.
type Style struct {
	Tone   string `json:"tone,omitempty" yaml:"tone,omitempty"`
	Voice  string `json:"voice,omitempty" yaml:"voice,omitempty"`
	Person string `json:"person,omitempty" yaml:"person,omitempty"`
	Tense  string `json:"tense,omitempty" yaml:"tense,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ItemPath returns the item's declared output location: outputPath for model
// slots, targetPath for everything else.
func ItemPath(it *ContentItem) string {
	if it.Slot == SlotModel {
		return it.OutputPath
	}
	return it.TargetPath
}

// IsLeaf reports whether the item declares its own output location. Items
// without one act purely as containers for listItems/tableMap children.
func (it *ContentItem) IsLeaf() bool {
	return ItemPath(it) != ""
}

// IsRequired reports whether the item's constraints mark it required.
func (it *ContentItem) IsRequired() bool {
	return it.Constraints != nil && it.Constraints.Required
}
