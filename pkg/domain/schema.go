package domain

import "strings"

// EntitySchema describes one registered section: its display label, the
// default item name and the fields "save and complete" requires.
type EntitySchema struct {
	Path          SectionPath
	Label         string
	DefaultName   string
	Required      []string
	Referenceable bool
}

// Missing returns the required fields that carry no usable value in f.
func (s EntitySchema) Missing(f Fields) []string {
	var out []string
	for _, key := range s.Required {
		if !hasValue(f[key]) {
			out = append(out, key)
		}
	}
	return out
}

func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// SchemaRegistry supplies per-section metadata.
type SchemaRegistry interface {
	Schema(path SectionPath) (EntitySchema, bool)
	Schemas() []EntitySchema
}
