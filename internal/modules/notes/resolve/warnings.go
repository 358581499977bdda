package resolve

import (
	"github.com/yungbote/notegen-backend/internal/modules/notes/template"
)

// Reason classifies why a field failed to resolve.
type Reason string

const (
	ReasonMissingSource  Reason = "missing_source"
	ReasonFormulaError   Reason = "formula_error"
	ReasonInvalidRef     Reason = "invalid_ref"
	ReasonTypeMismatch   Reason = "type_mismatch"
	ReasonUnresolvedSlot Reason = "unresolved_slot"
)

// Severity of a resolution warning. Error-severity warnings come from
// required items and should block downstream use; plain warnings are
// advisory and the snapshot stays best-effort.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning is one per-field resolution failure. The engine never fails a
// build; it accumulates these instead.
type Warning struct {
	ComponentID string            `json:"componentId"`
	SlotID      string            `json:"slotId"`
	Slot        template.SlotKind `json:"slotKind"`
	Path        string            `json:"path"`
	Reason      Reason            `json:"reason"`
	Severity    Severity          `json:"severity"`
	Message     string            `json:"message"`
}

// ResolvedField records one successful resolver invocation.
type ResolvedField struct {
	Path  string            `json:"path"`
	Value any               `json:"value"`
	Slot  template.SlotKind `json:"slotKind"`
}

// Result is the output of one resolution run: the nested snapshot plus the
// parallel resolved/warning lists in traversal order.
type Result struct {
	Snapshot map[string]any  `json:"snapshot"`
	Resolved []ResolvedField `json:"resolved"`
	Warnings []Warning       `json:"warnings"`
}

// Blocking reports whether any warning carries error severity.
func (r *Result) Blocking() bool {
	for _, w := range r.Warnings {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}
