package domain_test

import (
	"reflect"
	"strings"
	"testing"

	"dwellingcore/pkg/domain"
)

type taggedRef struct {
	field  string
	policy domain.ReferencePolicy
}

func collectRefs(t reflect.Type) []taggedRef {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []taggedRef
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			out = append(out, collectRefs(f.Type)...)
			continue
		}
		policy, ok := f.Tag.Lookup("ref")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		out = append(out, taggedRef{field: name, policy: domain.ReferencePolicy(policy)})
	}
	return out
}

func TestTaggedReferencesAreInGraph(t *testing.T) {
	graph := domain.DefaultReferenceGraph()
	found := 0
	for _, e := range domain.Entities() {
		for _, ref := range collectRefs(reflect.TypeOf(e)) {
			found++
			policy, ok := graph.Policy(e.SectionPath(), ref.field)
			if !ok {
				t.Fatalf("%T.%s is tagged as a reference but the graph has no rule", e, ref.field)
			}
			if policy != ref.policy {
				t.Fatalf("%T.%s tagged %s, graph says %s", e, ref.field, ref.policy, policy)
			}
		}
	}
	if found != len(graph.Rules()) {
		t.Fatalf("found %d tagged references for %d rules", found, len(graph.Rules()))
	}
}

func TestHeatSourceVariants(t *testing.T) {
	seen := map[domain.SectionPath]bool{}
	for _, e := range domain.Entities() {
		hs, ok := e.(domain.HeatSource)
		if !ok {
			continue
		}
		seen[hs.SectionPath()] = true
		if string(hs.Kind()) != hs.SectionPath().Name() {
			t.Fatalf("%T kind %s does not match section %s", hs, hs.Kind(), hs.SectionPath())
		}
	}
	for _, p := range domain.HeatSourcePaths {
		if !seen[p] {
			t.Fatalf("no heat source variant for %s", p)
		}
	}
	unit := domain.MechanicalVentilation{TypeOfMechanicalVentilationOptions: domain.VentTypeMVHR}
	if !unit.IsMVHR() || !domain.IsMVHRUnit(domain.Fields{"typeOfMechanicalVentilationOptions": "MVHR"}) {
		t.Fatal("MVHR detection mismatch")
	}
}
