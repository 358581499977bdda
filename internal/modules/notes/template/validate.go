package template

import "fmt"

// ValidationError reports a structural authoring problem that blocks every
// downstream subsystem.
type ValidationError struct {
	ComponentID string
	ItemID      string
	Reason      string
}

func (e *ValidationError) Error() string {
	switch {
	case e.ItemID != "":
		return fmt.Sprintf("invalid template: item %q: %s", e.ItemID, e.Reason)
	case e.ComponentID != "":
		return fmt.Sprintf("invalid template: component %q: %s", e.ComponentID, e.Reason)
	}
	return fmt.Sprintf("invalid template: %s", e.Reason)
}

// Validate checks structural wholeness: ids present, slot kinds known, and
// every childless item declaring the output location its slot kind needs.
// Value-level problems (a lookup path that finds nothing, a formula that
// fails to parse) are left to the resolution engine's warning taxonomy.
func Validate(t *Template) error {
	if t == nil {
		return &ValidationError{Reason: "nil template"}
	}
	if t.ID == "" {
		return &ValidationError{Reason: "missing id"}
	}
	if t.Version == "" {
		return &ValidationError{Reason: "missing version"}
	}
	for _, c := range t.Components {
		if err := validateComponent(c); err != nil {
			return err
		}
	}
	return nil
}

func validateComponent(c *Component) error {
	if c.ID == "" {
		return &ValidationError{Reason: "component missing id"}
	}
	for _, it := range c.Items {
		if err := validateItem(c, it); err != nil {
			return err
		}
	}
	for _, child := range c.Children {
		if err := validateComponent(child); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(c *Component, it *ContentItem) error {
	if it.ID == "" {
		return &ValidationError{ComponentID: c.ID, Reason: "content item missing id"}
	}
	if !KnownSlotKind(it.Slot) {
		return &ValidationError{ComponentID: c.ID, ItemID: it.ID, Reason: fmt.Sprintf("unknown slot kind %q", it.Slot)}
	}
	hasChildren := len(it.ListItems) > 0 || len(it.TableMap) > 0
	if !hasChildren && !it.IsLeaf() {
		field := "targetPath"
		if it.Slot == SlotModel {
			field = "outputPath"
		}
		return &ValidationError{ComponentID: c.ID, ItemID: it.ID, Reason: "missing " + field}
	}
	for _, li := range it.ListItems {
		if err := validateItem(c, li); err != nil {
			return err
		}
	}
	for _, tv := range it.TableMap {
		if err := validateItem(c, tv); err != nil {
			return err
		}
	}
	return nil
}
