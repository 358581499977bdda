package compose

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
	"github.com/yungbote/notegen-backend/internal/modules/notes/resolve"
)

// Issue severities, shared by the context slicer and the linter.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is one finding from the slicer or the linter.
type Issue struct {
	Severity string `json:"severity"`
	Check    string `json:"check"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
}

// SliceContext copies the top-level snapshot keys reachable from the
// guide's nas-scoped dependency paths. The model only ever sees data some
// field actually declared a dependency on. Each dependency path that
// resolves to nothing yields one context-slice.missing warning; an
// entirely empty slice is an error, because the prompt would carry no
// grounding at all.
func SliceContext(snapshot map[string]any, guide []GuideEntry) (map[string]any, []Issue) {
	slices := map[string]any{}
	var issues []Issue
	seen := map[string]bool{}
	for _, entry := range guide {
		for _, dep := range entry.Dependencies {
			if dep.Scope != ScopeNAS || seen[dep.Path] {
				continue
			}
			seen[dep.Path] = true
			segs, err := fieldpath.Parse(dep.Path)
			if err != nil {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Check:    "context-slice.missing",
					Message:  fmt.Sprintf("dependency path %q does not parse: %v", dep.Path, err),
					Path:     dep.Path,
				})
				continue
			}
			if _, ok := resolve.ValueAt(snapshot, segs); !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Check:    "context-slice.missing",
					Message:  fmt.Sprintf("dependency path %q resolves to nothing in the snapshot", dep.Path),
					Path:     dep.Path,
				})
				continue
			}
			top := segs[0].Name
			if _, copied := slices[top]; !copied {
				slices[top] = snapshot[top]
			}
		}
	}
	if len(slices) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Check:    "context-slice.empty",
			Message:  "no nas-scoped dependency produced any context",
		})
	}
	return slices, issues
}
