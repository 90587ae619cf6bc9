package core

import (
	"context"
	"fmt"

	"dwellingcore/pkg/domain"
)

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set,
// checking references against graph.
func NewDefaultRulesEngine(graph domain.ReferenceGraph) *RulesEngine {
	engine := NewRulesEngine()
	registerDefaultRules(engine, graph)
	return engine
}

func registerDefaultRules(engine *RulesEngine, graph domain.ReferenceGraph) {
	engine.Register(NewRequiredFieldsRule())
	engine.Register(NewReferenceIntegrityRule(graph))
}

// RequiredFieldsRule blocks "save and complete" while the item is missing a
// field its schema requires.
type RequiredFieldsRule struct{}

// NewRequiredFieldsRule constructs the required field guard.
func NewRequiredFieldsRule() RequiredFieldsRule { return RequiredFieldsRule{} }

func (RequiredFieldsRule) Name() string { return "required_fields" }

func (r RequiredFieldsRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	var res Result
	for _, change := range changes {
		if change.Action != ActionComplete {
			continue
		}
		section := view.Section(change.Section)
		if change.Index < 0 || change.Index >= section.Len() {
			continue
		}
		schema, ok := view.Schema(change.Section)
		if !ok {
			continue
		}
		res.Merge(missingFieldViolations(r.Name(), SeverityBlock, schema, change.Index, section.Items[change.Index]))
	}
	return res, nil
}

func missingFieldViolations(rule string, severity Severity, schema domain.EntitySchema, index int, item Item) Result {
	var res Result
	for _, field := range schema.Missing(item.Data) {
		res.Violations = append(res.Violations, Violation{
			Rule:     rule,
			Severity: severity,
			Message:  fmt.Sprintf("%s: %s is required", schema.Label, field),
			Section:  schema.Path,
			Index:    index,
			Field:    field,
		})
	}
	return res
}

// ReferenceIntegrityRule ensures no committed document names a missing id.
// Cascade repair normally keeps this empty; a violation means a caller wrote
// a reference to an item that does not exist.
type ReferenceIntegrityRule struct {
	graph domain.ReferenceGraph
}

// NewReferenceIntegrityRule binds the rule to a reference graph.
func NewReferenceIntegrityRule(graph domain.ReferenceGraph) ReferenceIntegrityRule {
	return ReferenceIntegrityRule{graph: graph}
}

func (ReferenceIntegrityRule) Name() string { return "reference_integrity" }

func (r ReferenceIntegrityRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	touched := make(map[SectionPath]struct{}, len(changes))
	for _, change := range changes {
		touched[change.Section] = struct{}{}
	}
	var res Result
	for _, ref := range r.graph.Dangling(view) {
		if _, ok := touched[ref.Rule.Source]; !ok {
			continue
		}
		res.Violations = append(res.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("%s references missing item %s", ref.Rule.Field, ref.ID),
			Section:  ref.Rule.Source,
			Index:    ref.Index,
			Field:    ref.Rule.Field,
		})
	}
	return res, nil
}
