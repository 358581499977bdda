package template

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeJSON parses a template document from JSON. The returned warnings
// list the unknown constraint/style keys and invalid hint values that were
// dropped; the template itself is usable whenever err is nil.
func DecodeJSON(data []byte) (*Template, []string, error) {
	var raw rawTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode template json: %w", err)
	}
	s := &sanitizer{}
	return s.template(&raw), s.warnings, nil
}

// DecodeYAML parses a template document from YAML with the same sanitize
// policy as DecodeJSON.
func DecodeYAML(data []byte) (*Template, []string, error) {
	var raw rawTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode template yaml: %w", err)
	}
	s := &sanitizer{}
	return s.template(&raw), s.warnings, nil
}
