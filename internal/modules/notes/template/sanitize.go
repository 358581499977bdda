package template

import (
	"fmt"
	"sort"
)

// Carrier shapes for decoding. Constraints and style arrive as open maps so
// unknown keys can be reported and dropped instead of silently ignored.
type rawTemplate struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Version      string          `json:"version" yaml:"version"`
	Purpose      string          `json:"purpose" yaml:"purpose"`
	SystemPrompt string          `json:"systemPrompt" yaml:"systemPrompt"`
	Rules        []string        `json:"rules" yaml:"rules"`
	FactPack     map[string]any  `json:"factPack" yaml:"factPack"`
	Components   []*rawComponent `json:"components" yaml:"components"`
}

type rawComponent struct {
	ID       string          `json:"id" yaml:"id"`
	Type     string          `json:"type" yaml:"type"`
	Title    string          `json:"title" yaml:"title"`
	Items    []*rawItem      `json:"items" yaml:"items"`
	Children []*rawComponent `json:"children" yaml:"children"`
}

type rawItem struct {
	ID          string              `json:"id" yaml:"id"`
	Slot        string              `json:"slot" yaml:"slot"`
	OutputPath  string              `json:"outputPath" yaml:"outputPath"`
	TargetPath  string              `json:"targetPath" yaml:"targetPath"`
	Lookup      string              `json:"lookup" yaml:"lookup"`
	Formula     string              `json:"formula" yaml:"formula"`
	ResultType  string              `json:"resultType" yaml:"resultType"`
	Format      string              `json:"format" yaml:"format"`
	Text        string              `json:"text" yaml:"text"`
	VerbatimRef string              `json:"verbatimRef" yaml:"verbatimRef"`
	ListItems   []*rawItem          `json:"listItems" yaml:"listItems"`
	TableMap    map[string]*rawItem `json:"tableMap" yaml:"tableMap"`
	Constraints map[string]any      `json:"constraints" yaml:"constraints"`
	Style       map[string]any      `json:"style" yaml:"style"`
	Source      []string            `json:"source" yaml:"source"`
	AIDeps      []string            `json:"aiDeps" yaml:"aiDeps"`
	Description string              `json:"description" yaml:"description"`
	Guidance    []string            `json:"guidance" yaml:"guidance"`
}

type sanitizer struct {
	warnings []string
}

func (s *sanitizer) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *sanitizer) template(raw *rawTemplate) *Template {
	t := &Template{
		ID:           raw.ID,
		Name:         raw.Name,
		Version:      raw.Version,
		Purpose:      raw.Purpose,
		SystemPrompt: raw.SystemPrompt,
		Rules:        raw.Rules,
		FactPack:     raw.FactPack,
	}
	for _, rc := range raw.Components {
		t.Components = append(t.Components, s.component(rc))
	}
	return t
}

func (s *sanitizer) component(raw *rawComponent) *Component {
	c := &Component{ID: raw.ID, Type: raw.Type, Title: raw.Title}
	for _, ri := range raw.Items {
		c.Items = append(c.Items, s.item(ri))
	}
	for _, rc := range raw.Children {
		c.Children = append(c.Children, s.component(rc))
	}
	return c
}

func (s *sanitizer) item(raw *rawItem) *ContentItem {
	it := &ContentItem{
		ID:          raw.ID,
		Slot:        SlotKind(raw.Slot),
		OutputPath:  raw.OutputPath,
		TargetPath:  raw.TargetPath,
		Lookup:      raw.Lookup,
		Formula:     raw.Formula,
		ResultType:  raw.ResultType,
		Format:      raw.Format,
		Text:        raw.Text,
		VerbatimRef: raw.VerbatimRef,
		Source:      raw.Source,
		AIDeps:      raw.AIDeps,
		Description: raw.Description,
		Guidance:    raw.Guidance,
	}
	it.Constraints = s.constraints(raw.ID, raw.Constraints)
	it.Style = s.style(raw.ID, raw.Style)
	switch it.ResultType {
	case "", ResultString, ResultNumber, ResultBoolean, ResultObject, ResultStringArray:
	default:
		s.warnf("item %q: unknown resultType %q dropped", raw.ID, it.ResultType)
		it.ResultType = ""
	}
	switch it.Format {
	case "", FormatPlain, FormatDeltaScore, FormatPercent:
	default:
		s.warnf("item %q: unknown format %q dropped", raw.ID, it.Format)
		it.Format = ""
	}
	for _, rl := range raw.ListItems {
		it.ListItems = append(it.ListItems, s.item(rl))
	}
	if len(raw.TableMap) > 0 {
		it.TableMap = make(map[string]*ContentItem, len(raw.TableMap))
		for k, rv := range raw.TableMap {
			it.TableMap[k] = s.item(rv)
		}
	}
	return it
}

func (s *sanitizer) constraints(itemID string, raw map[string]any) *Constraints {
	if len(raw) == 0 {
		return nil
	}
	c := &Constraints{}
	for _, key := range sortedKeys(raw) {
		v := raw[key]
		switch key {
		case "required":
			b, ok := v.(bool)
			if !ok {
				s.warnf("item %q: constraints.required: expected boolean, dropped", itemID)
				continue
			}
			c.Required = b
		case "enum":
			vals, ok := asStringSlice(v)
			if !ok {
				s.warnf("item %q: constraints.enum: expected string list, dropped", itemID)
				continue
			}
			c.Enum = vals
		case "pattern":
			str, ok := v.(string)
			if !ok {
				s.warnf("item %q: constraints.pattern: expected string, dropped", itemID)
				continue
			}
			c.Pattern = str
		case "minWords":
			c.MinWords = s.intVal(itemID, key, v)
		case "maxWords":
			c.MaxWords = s.intVal(itemID, key, v)
		case "minSentences":
			c.MinSentences = s.intVal(itemID, key, v)
		case "maxSentences":
			c.MaxSentences = s.intVal(itemID, key, v)
		case "minimum":
			c.Minimum = s.floatVal(itemID, key, v)
		case "maximum":
			c.Maximum = s.floatVal(itemID, key, v)
		default:
			s.warnf("item %q: unknown constraints key %q dropped", itemID, key)
		}
	}
	return c
}

func (s *sanitizer) style(itemID string, raw map[string]any) *Style {
	if len(raw) == 0 {
		return nil
	}
	st := &Style{}
	for _, key := range sortedKeys(raw) {
		str, ok := raw[key].(string)
		if !ok {
			s.warnf("item %q: style.%s: expected string, dropped", itemID, key)
			continue
		}
		switch key {
		case "tone":
			st.Tone = str
		case "voice":
			st.Voice = str
		case "person":
			st.Person = str
		case "tense":
			st.Tense = str
		case "detail":
			st.Detail = str
		default:
			s.warnf("item %q: unknown style key %q dropped", itemID, key)
		}
	}
	return st
}

func (s *sanitizer) intVal(itemID, key string, v any) *int {
	n, ok := asInt(v)
	if !ok {
		s.warnf("item %q: constraints.%s: expected integer, dropped", itemID, key)
		return nil
	}
	return &n
}

func (s *sanitizer) floatVal(itemID, key string, v any) *float64 {
	f, ok := asFloat(v)
	if !ok {
		s.warnf("item %q: constraints.%s: expected number, dropped", itemID, key)
		return nil
	}
	return &f
}

// JSON decodes numbers to float64, yaml.v3 to int; accept both.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return ss, true
		}
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, str)
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
