package compose

import (
	"fmt"
	"sort"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/resolve"
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// LintResult partitions every issue found in a bundle. OK is true iff no
// error-severity issue exists; whether a warning blocks is the caller's
// call.
type LintResult struct {
	OK       bool    `json:"ok"`
	Issues   []Issue `json:"issues"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Lint runs the semantic checks over an assembled bundle. It never fails:
// every finding, including the slicer's carried issues, lands in the
// result.
func Lint(bundle *Bundle, tpl *template.Template) *LintResult {
	var issues []Issue
	issues = append(issues, bundle.Issues...)
	issues = append(issues, lintCoverage(bundle, tpl)...)
	issues = append(issues, lintPathValidity(bundle)...)
	issues = append(issues, lintConstraintHarmony(bundle)...)
	issues = append(issues, lintDependencies(bundle)...)
	issues = append(issues, lintMessageRoles(bundle)...)

	res := &LintResult{OK: true, Issues: issues}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			res.Errors = append(res.Errors, issue)
			res.OK = false
		} else {
			res.Warnings = append(res.Warnings, issue)
		}
	}
	return res
}

// lintCoverage recounts model-slot leaves independently of the guide
// builder; a mismatch means the guide was built from a different template
// revision than the one being linted against.
func lintCoverage(bundle *Bundle, tpl *template.Template) []Issue {
	count := 0
	template.WalkItems(tpl, func(_ *template.Component, item *template.ContentItem) {
		if item.Slot == template.SlotModel && item.IsLeaf() {
			count++
		}
	})
	if len(bundle.FieldGuide) == count {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Check:    "coverage",
		Message:  fmt.Sprintf("field guide has %d entries but the template declares %d model fields", len(bundle.FieldGuide), count),
	}}
}

func lintPathValidity(bundle *Bundle) []Issue {
	if bundle.JSONSchema == nil {
		return []Issue{{Severity: SeverityError, Check: "path-validity", Message: "bundle carries no model schema"}}
	}
	var issues []Issue
	for _, entry := range bundle.FieldGuide {
		segs, err := fieldpath.Parse(entry.Path)
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError, Check: "path-validity", Path: entry.Path,
				Message: fmt.Sprintf("guide path does not parse: %v", err),
			})
			continue
		}
		if _, ok := bundle.JSONSchema.NodeAt(segs); !ok {
			issues = append(issues, Issue{
				Severity: SeverityError, Check: "path-validity", Path: entry.Path,
				Message: "guide path is absent from the model schema",
			})
		}
	}
	return issues
}

// lintConstraintHarmony flags guide constraints that disagree with the
// schema node at the same path. Warning only: divergence can be a
// deliberate authoring choice.
func lintConstraintHarmony(bundle *Bundle) []Issue {
	if bundle.JSONSchema == nil {
		return nil
	}
	var issues []Issue
	for _, entry := range bundle.FieldGuide {
		c := entry.Constraints
		if c == nil {
			continue
		}
		segs, err := fieldpath.Parse(entry.Path)
		if err != nil {
			continue
		}
		node, ok := bundle.JSONSchema.NodeAt(segs)
		if !ok {
			continue
		}
		if c.Pattern != "" && node.Pattern != "" && c.Pattern != node.Pattern {
			issues = append(issues, Issue{
				Severity: SeverityWarning, Check: "constraint-harmony", Path: entry.Path,
				Message: fmt.Sprintf("guide pattern %q differs from schema pattern %q", c.Pattern, node.Pattern),
			})
		}
		if len(c.Enum) > 0 && len(node.Enum) > 0 && !sameEnum(c.Enum, node.Enum) {
			issues = append(issues, Issue{
				Severity: SeverityWarning, Check: "constraint-harmony", Path: entry.Path,
				Message: "guide enum differs from schema enum",
			})
		}
	}
	return issues
}

func lintDependencies(bundle *Bundle) []Issue {
	var issues []Issue
	seen := map[string]bool{}
	for _, entry := range bundle.FieldGuide {
		for _, dep := range entry.Dependencies {
			if dep.Scope != ScopeNAS || seen[dep.Path] {
				continue
			}
			seen[dep.Path] = true
			segs, err := fieldpath.Parse(dep.Path)
			if err != nil {
				issues = append(issues, Issue{
					Severity: SeverityWarning, Check: "dependencies", Path: dep.Path,
					Message: fmt.Sprintf("dependency path does not parse: %v", err),
				})
				continue
			}
			if _, ok := resolve.ValueAt(bundle.Context.NASSlices, segs); !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning, Check: "dependencies", Path: dep.Path,
					Message: "dependency path is absent from the bundled context",
				})
			}
		}
	}
	return issues
}

func lintMessageRoles(bundle *Bundle) []Issue {
	m := bundle.Messages
	if len(m) >= 2 && m[0].Role == RoleSystem && m[1].Role == RoleUser {
		return nil
	}
	return []Issue{{
		Severity: SeverityError, Check: "message-roles",
		Message: "bundle must open with a system message followed by a user message",
	}}
}

func sameEnum(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
