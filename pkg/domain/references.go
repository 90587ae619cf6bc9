package domain

import (
	"errors"
	"fmt"
)

// ReferencePolicy decides what happens to a referencing item when its target is removed.
type ReferencePolicy string

const (
	// ReferenceWeak clears the field and marks the referencing item incomplete.
	ReferenceWeak ReferencePolicy = "weak"
	// ReferenceOwnership removes the referencing item outright.
	ReferenceOwnership ReferencePolicy = "ownership"
)

// ReferenceRule declares that Field on items in Source holds the id of an item
// in one of Targets.
type ReferenceRule struct {
	Source  SectionPath
	Field   string
	Targets []SectionPath
	Policy  ReferencePolicy
	// When gates the rule on the removed target item. Nil means always.
	When func(removed Fields) bool
}

// Applies reports whether removing an item from target with the given data
// triggers this rule.
func (r ReferenceRule) Applies(target SectionPath, removed Fields) bool {
	matched := false
	for _, t := range r.Targets {
		if t == target {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return r.When == nil || r.When(removed)
}

// ReferenceGraph is the static table of every cross-section reference.
type ReferenceGraph struct {
	rules []ReferenceRule
}

// NewReferenceGraph builds a graph from rules.
func NewReferenceGraph(rules ...ReferenceRule) ReferenceGraph {
	return ReferenceGraph{rules: append([]ReferenceRule(nil), rules...)}
}

// DefaultReferenceGraph returns the reference table for the assessment document.
func DefaultReferenceGraph() ReferenceGraph {
	return NewReferenceGraph(
		ReferenceRule{
			Source:  PathHotWaterCylinder,
			Field:   "heatSource",
			Targets: HeatSourcePaths,
			Policy:  ReferenceWeak,
		},
		ReferenceRule{
			Source:  PathWetDistribution,
			Field:   "heatSource",
			Targets: HeatSourcePaths,
			Policy:  ReferenceWeak,
		},
		ReferenceRule{
			Source:  PathDuctwork,
			Field:   "mvhrUnit",
			Targets: []SectionPath{PathMechanicalVentilation},
			Policy:  ReferenceOwnership,
			When:    IsMVHRUnit,
		},
		ReferenceRule{
			Source:  PathWindows,
			Field:   "taggedItem",
			Targets: TaggableFabricPaths,
			Policy:  ReferenceWeak,
		},
		ReferenceRule{
			Source:  PathExternalUnglazedDoor,
			Field:   "associatedItemId",
			Targets: TaggableFabricPaths,
			Policy:  ReferenceWeak,
		},
		ReferenceRule{
			Source:  PathExternalGlazedDoor,
			Field:   "associatedItemId",
			Targets: TaggableFabricPaths,
			Policy:  ReferenceWeak,
		},
	)
}

// IsMVHRUnit reports whether a mechanical ventilation payload is an MVHR unit.
func IsMVHRUnit(f Fields) bool {
	v, _ := f.String("typeOfMechanicalVentilationOptions")
	return VentType(v) == VentTypeMVHR
}

// Rules returns a copy of every rule.
func (g ReferenceGraph) Rules() []ReferenceRule {
	return append([]ReferenceRule(nil), g.rules...)
}

// Targeting returns the rules that fire when an item is removed from target.
func (g ReferenceGraph) Targeting(target SectionPath, removed Fields) []ReferenceRule {
	var out []ReferenceRule
	for _, r := range g.rules {
		if r.Applies(target, removed) {
			out = append(out, r)
		}
	}
	return out
}

// Covers reports whether a rule is declared for source and field.
func (g ReferenceGraph) Covers(source SectionPath, field string) bool {
	for _, r := range g.rules {
		if r.Source == source && r.Field == field {
			return true
		}
	}
	return false
}

// Policy returns the declared policy for source and field.
func (g ReferenceGraph) Policy(source SectionPath, field string) (ReferencePolicy, bool) {
	for _, r := range g.rules {
		if r.Source == source && r.Field == field {
			return r.Policy, true
		}
	}
	return "", false
}

// Validate checks that every rule points at registered sections and that
// every target is referenceable.
func (g ReferenceGraph) Validate(registry SchemaRegistry) error {
	var errs []error
	for _, r := range g.rules {
		if r.Field == "" {
			errs = append(errs, fmt.Errorf("reference from %s has no field", r.Source))
		}
		if r.Policy != ReferenceWeak && r.Policy != ReferenceOwnership {
			errs = append(errs, fmt.Errorf("reference %s.%s has unknown policy %q", r.Source, r.Field, r.Policy))
		}
		if _, ok := registry.Schema(r.Source); !ok {
			errs = append(errs, fmt.Errorf("reference source %s is not registered", r.Source))
		}
		if len(r.Targets) == 0 {
			errs = append(errs, fmt.Errorf("reference %s.%s has no targets", r.Source, r.Field))
		}
		for _, t := range r.Targets {
			schema, ok := registry.Schema(t)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("reference target %s is not registered", t))
			case !schema.Referenceable:
				errs = append(errs, fmt.Errorf("reference target %s is not referenceable", t))
			}
		}
	}
	return errors.Join(errs...)
}

// SectionReader is satisfied by Document and by rule views.
type SectionReader interface {
	Section(path SectionPath) Section
}

// Dangling lists every reference in doc whose target id no longer exists.
func (g ReferenceGraph) Dangling(doc SectionReader) []DanglingReference {
	var out []DanglingReference
	for _, r := range g.rules {
		section := doc.Section(r.Source)
		for i, item := range section.Items {
			id, ok := item.Data.String(r.Field)
			if !ok || id == "" {
				continue
			}
			if !targetExists(doc, r.Targets, id) {
				out = append(out, DanglingReference{Rule: r, Index: i, ID: id})
			}
		}
	}
	return out
}

// DanglingReference describes one broken reference.
type DanglingReference struct {
	Rule  ReferenceRule
	Index int
	ID    string
}

func targetExists(doc SectionReader, targets []SectionPath, id string) bool {
	for _, t := range targets {
		if doc.Section(t).IndexOf(id) >= 0 {
			return true
		}
	}
	return false
}
