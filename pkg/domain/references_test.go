package domain_test

import (
	"strings"
	"testing"

	"dwellingcore/pkg/domain"
)

type fakeRegistry map[domain.SectionPath]domain.EntitySchema

func (r fakeRegistry) Schema(p domain.SectionPath) (domain.EntitySchema, bool) {
	s, ok := r[p]
	return s, ok
}

func (r fakeRegistry) Schemas() []domain.EntitySchema {
	out := make([]domain.EntitySchema, 0, len(r))
	for _, s := range r {
		out = append(out, s)
	}
	return out
}

func TestOwnershipRuleOnlyAppliesToMVHR(t *testing.T) {
	g := domain.DefaultReferenceGraph()
	mvhr := domain.Fields{"id": "u1", "typeOfMechanicalVentilationOptions": string(domain.VentTypeMVHR)}
	mev := domain.Fields{"id": "u2", "typeOfMechanicalVentilationOptions": string(domain.VentTypeIntermittentMEV)}
	if rules := g.Targeting(domain.PathMechanicalVentilation, mvhr); len(rules) != 1 || rules[0].Policy != domain.ReferenceOwnership {
		t.Fatalf("expected ductwork ownership for MVHR, got %+v", rules)
	}
	if rules := g.Targeting(domain.PathMechanicalVentilation, mev); len(rules) != 0 {
		t.Fatalf("expected no rules for MEV unit, got %+v", rules)
	}
}

func TestHeatSourceRemovalTargetsCylinderAndEmitters(t *testing.T) {
	g := domain.DefaultReferenceGraph()
	rules := g.Targeting(domain.PathHeatPump, domain.Fields{"id": "hp"})
	if len(rules) != 2 {
		t.Fatalf("expected cylinder and wet distribution rules, got %+v", rules)
	}
	for _, r := range rules {
		if r.Policy != domain.ReferenceWeak || r.Field != "heatSource" {
			t.Fatalf("unexpected rule %+v", r)
		}
	}
	if p, ok := g.Policy(domain.PathWindows, "taggedItem"); !ok || p != domain.ReferenceWeak {
		t.Fatalf("window tag policy=%s,%v", p, ok)
	}
	if g.Covers(domain.PathWindows, "heatSource") {
		t.Fatal("windows carry no heat source reference")
	}
}

func TestReferenceGraphValidate(t *testing.T) {
	reg := fakeRegistry{
		domain.PathHotWaterCylinder: {Path: domain.PathHotWaterCylinder, Referenceable: true},
		domain.PathBoiler:           {Path: domain.PathBoiler, Referenceable: true},
		domain.PathDuctwork:         {Path: domain.PathDuctwork},
	}
	ok := domain.NewReferenceGraph(domain.ReferenceRule{
		Source: domain.PathHotWaterCylinder, Field: "heatSource",
		Targets: []domain.SectionPath{domain.PathBoiler}, Policy: domain.ReferenceWeak,
	})
	if err := ok.Validate(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := domain.NewReferenceGraph(
		domain.ReferenceRule{Source: domain.PathHotWaterCylinder, Targets: []domain.SectionPath{domain.PathDuctwork}, Policy: "strong"},
		domain.ReferenceRule{Source: domain.PathWindows, Field: "taggedItem"},
	)
	err := bad.Validate(reg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"has no field", "unknown policy", "not referenceable", "not registered", "has no targets"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestDangling(t *testing.T) {
	doc := domain.Document{
		domain.PathBoiler: {Items: []domain.Item{{Data: domain.Fields{"id": "b1"}}}},
		domain.PathHotWaterCylinder: {Items: []domain.Item{
			{Data: domain.Fields{"id": "c1", "heatSource": "b1"}},
			{Data: domain.Fields{"id": "c2", "heatSource": "gone"}},
			{Data: domain.Fields{"id": "c3", "heatSource": ""}},
		}},
	}
	dangling := domain.DefaultReferenceGraph().Dangling(doc)
	if len(dangling) != 1 || dangling[0].Index != 1 || dangling[0].ID != "gone" {
		t.Fatalf("unexpected dangling references %+v", dangling)
	}
}
