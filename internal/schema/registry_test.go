package schema

import (
	"strings"
	"testing"

	"dwellingcore/pkg/domain"
)

func TestDefaultRegistryCoversReferenceGraph(t *testing.T) {
	reg := Default()
	if err := domain.DefaultReferenceGraph().Validate(reg); err != nil {
		t.Fatalf("default graph invalid against default registry: %v", err)
	}
	for _, path := range domain.HeatSourcePaths {
		s, ok := reg.Schema(path)
		if !ok || !s.Referenceable {
			t.Fatalf("expected %s to be a referenceable section", path)
		}
	}
}

func TestDefaultRegistryLabelsAndDefaults(t *testing.T) {
	reg := Default()
	s, ok := reg.Schema(domain.PathHotWaterCylinder)
	if !ok {
		t.Fatalf("hot water cylinder not registered")
	}
	if s.DefaultName != "Hot water cylinder" {
		t.Fatalf("unexpected default name %q", s.DefaultName)
	}
	if missing := s.Missing(domain.Fields{"name": "Cylinder"}); len(missing) == 0 {
		t.Fatalf("expected missing required fields")
	}
	if len(reg.Schemas()) != len(reg.Paths()) {
		t.Fatalf("schemas and paths disagree")
	}
}

func TestSchemaReturnsCopyOfRequired(t *testing.T) {
	reg := Default()
	s, _ := reg.Schema(domain.PathBoiler)
	s.Required[0] = "mutated"
	again, _ := reg.Schema(domain.PathBoiler)
	if again.Required[0] == "mutated" {
		t.Fatalf("registry leaked its required slice")
	}
}

func TestLoadRejectsDuplicatesAndBlankLabels(t *testing.T) {
	src := `
[[section]]
path = "a/b"
label = "B"

[[section]]
path = "a.b"
label = "B again"

[[section]]
path = "a/c"
label = " "
`
	_, err := Load(strings.NewReader(src))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "declared twice") || !strings.Contains(msg, "label is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	src := `
[[section]]
path = "a/b"
label = "B"
colour = "red"
`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadDefaultsNameToLabel(t *testing.T) {
	reg, err := Load(strings.NewReader("[[section]]\npath = \"x/y\"\nlabel = \"Thing\"\nrequired = [\"name\"]\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, ok := reg.Schema("x/y")
	if !ok || s.DefaultName != "Thing" || s.Referenceable {
		t.Fatalf("unexpected schema %+v", s)
	}
}
