package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Message is one chat turn in the instruction bundle.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// The authored system prompt carries the clinical voice; these fixed
// constraints carry the output contract and are appended to every bundle.
const systemConstraints = `Return ONLY a single JSON object conforming to the provided schema, with no surrounding prose.
Never state a fact that is not grounded in the supplied context.
Prefer values already present in the resolved context over re-deriving them.`

const responseContract = `Return a single JSON object that validates against the provided JSON Schema.
Populate every required field. Omit optional fields you cannot ground in the context.
Do not invent keys the schema does not declare.`

func buildMessages(tpl *template.Template, guide []GuideEntry, slices map[string]any) ([]Message, error) {
	system := strings.TrimSpace(tpl.SystemPrompt)
	if system != "" {
		system += "\n\n"
	}
	system += systemConstraints

	user, err := buildUserMessage(tpl, guide, slices)
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}, nil
}

// buildUserMessage renders the labeled sections in fixed order. Section
// order and the recursively sorted JSON rendering are part of the
// determinism contract: the same template and snapshot always produce the
// same bytes.
func buildUserMessage(tpl *template.Template, guide []GuideEntry, slices map[string]any) (string, error) {
	var b strings.Builder

	b.WriteString("PURPOSE:\n")
	purpose := strings.TrimSpace(tpl.Purpose)
	if purpose == "" {
		purpose = fmt.Sprintf("Complete the model-generated fields of the %q note template.", tpl.Name)
	}
	b.WriteString(purpose)
	b.WriteString("\n")

	if len(tpl.Rules) > 0 {
		b.WriteString("\nHARD RULES:\n")
		for _, rule := range tpl.Rules {
			b.WriteString("- " + rule + "\n")
		}
	}

	b.WriteString("\nRESPONSE CONTRACT:\n")
	b.WriteString(responseContract)
	b.WriteString("\n")

	b.WriteString("\nCONTEXT:\n")
	if len(tpl.FactPack) > 0 {
		b.WriteString("Fact pack:\n")
		if err := writeJSON(&b, tpl.FactPack); err != nil {
			return "", err
		}
	}
	b.WriteString("Resolved data:\n")
	if err := writeJSON(&b, slices); err != nil {
		return "", err
	}

	b.WriteString("\nFIELD GUIDE:\n")
	for i, entry := range guide {
		if i > 0 {
			b.WriteString("\n")
		}
		writeGuideEntry(&b, entry)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// writeJSON renders v as indented JSON. encoding/json sorts map keys
// recursively, which is what keeps the rendered context deterministic.
func writeJSON(b *strings.Builder, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render context: %w", err)
	}
	b.Write(out)
	b.WriteString("\n")
	return nil
}

func writeGuideEntry(b *strings.Builder, entry GuideEntry) {
	b.WriteString("- field: " + entry.Path + "\n")
	if entry.Description != "" {
		b.WriteString("  description: " + entry.Description + "\n")
	}
	for _, g := range entry.Guidance {
		b.WriteString("  guidance: " + g + "\n")
	}
	if len(entry.Dependencies) > 0 {
		parts := make([]string, 0, len(entry.Dependencies))
		for _, d := range entry.Dependencies {
			parts = append(parts, d.Scope+":"+d.Path)
		}
		b.WriteString("  depends on: " + strings.Join(parts, ", ") + "\n")
	}
	if line := constraintLine(entry.Constraints); line != "" {
		b.WriteString("  constraints: " + line + "\n")
	}
	if line := styleLine(entry.Style); line != "" {
		b.WriteString("  style: " + line + "\n")
	}
}

func constraintLine(c *template.Constraints) string {
	if c == nil {
		return ""
	}
	var parts []string
	if c.Required {
		parts = append(parts, "required")
	}
	if len(c.Enum) > 0 {
		parts = append(parts, "one of ["+strings.Join(c.Enum, ", ")+"]")
	}
	if c.Pattern != "" {
		parts = append(parts, "pattern "+c.Pattern)
	}
	if c.MinWords != nil {
		parts = append(parts, fmt.Sprintf("min %d words", *c.MinWords))
	}
	if c.MaxWords != nil {
		parts = append(parts, fmt.Sprintf("max %d words", *c.MaxWords))
	}
	if c.MinSentences != nil {
		parts = append(parts, fmt.Sprintf("min %d sentences", *c.MinSentences))
	}
	if c.MaxSentences != nil {
		parts = append(parts, fmt.Sprintf("max %d sentences", *c.MaxSentences))
	}
	if c.Minimum != nil {
		parts = append(parts, fmt.Sprintf("minimum %g", *c.Minimum))
	}
	if c.Maximum != nil {
		parts = append(parts, fmt.Sprintf("maximum %g", *c.Maximum))
	}
	return strings.Join(parts, "; ")
}

func styleLine(s *template.Style) string {
	if s == nil {
		return ""
	}
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+" "+v)
		}
	}
	add("tone", s.Tone)
	add("voice", s.Voice)
	add("person", s.Person)
	add("tense", s.Tense)
	add("detail", s.Detail)
	return strings.Join(parts, "; ")
}
