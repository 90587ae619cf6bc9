// Package schema loads the section registry: which sections exist, how they
// are labelled, which fields completion requires and whether other sections
// may reference their items by id.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dwellingcore/pkg/domain"
)

//go:embed schemas.toml
var defaultSchemas []byte

var _ domain.SchemaRegistry = (*Registry)(nil)

type file struct {
	Sections []section `toml:"section"`
}

type section struct {
	Path          string   `toml:"path"`
	Label         string   `toml:"label"`
	DefaultName   string   `toml:"default_name"`
	Required      []string `toml:"required"`
	Referenceable bool     `toml:"referenceable"`
}

// Registry is an immutable lookup of EntitySchema by section path.
type Registry struct {
	byPath map[domain.SectionPath]domain.EntitySchema
	order  []domain.SectionPath
}

// Load decodes a TOML registry from r.
func Load(r io.Reader) (*Registry, error) {
	var f file
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode schema registry: %w", err)
	}
	return build(f.Sections)
}

// LoadFile reads a registry from disk.
func LoadFile(path string) (*Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema registry: %w", err)
	}
	defer func() { _ = fh.Close() }()
	return Load(fh)
}

// Default returns the built-in registry. It panics if the embedded file is
// malformed, which the package tests rule out.
func Default() *Registry {
	reg, err := Load(strings.NewReader(string(defaultSchemas)))
	if err != nil {
		panic(err)
	}
	return reg
}

func build(sections []section) (*Registry, error) {
	reg := &Registry{byPath: make(map[domain.SectionPath]domain.EntitySchema, len(sections))}
	var errs []error
	for i, s := range sections {
		path, err := domain.ParseSectionPath(s.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("section %d: %w", i, err))
			continue
		}
		if _, dup := reg.byPath[path]; dup {
			errs = append(errs, fmt.Errorf("section %s declared twice", path))
			continue
		}
		label := strings.TrimSpace(s.Label)
		if label == "" {
			errs = append(errs, fmt.Errorf("section %s: label is required", path))
			continue
		}
		name := strings.TrimSpace(s.DefaultName)
		if name == "" {
			name = label
		}
		required := append([]string(nil), s.Required...)
		sort.Strings(required)
		for j := 1; j < len(required); j++ {
			if required[j] == required[j-1] {
				errs = append(errs, fmt.Errorf("section %s: field %s required twice", path, required[j]))
			}
		}
		reg.byPath[path] = domain.EntitySchema{
			Path:          path,
			Label:         label,
			DefaultName:   name,
			Required:      required,
			Referenceable: s.Referenceable,
		}
		reg.order = append(reg.order, path)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// Schema implements domain.SchemaRegistry.
func (r *Registry) Schema(path domain.SectionPath) (domain.EntitySchema, bool) {
	s, ok := r.byPath[path]
	if !ok {
		return domain.EntitySchema{}, false
	}
	s.Required = append([]string(nil), s.Required...)
	return s, true
}

// Schemas returns every schema in declaration order.
func (r *Registry) Schemas() []domain.EntitySchema {
	out := make([]domain.EntitySchema, 0, len(r.order))
	for _, path := range r.order {
		s, _ := r.Schema(path)
		out = append(out, s)
	}
	return out
}

// Paths lists the registered section paths in declaration order.
func (r *Registry) Paths() []domain.SectionPath {
	return append([]domain.SectionPath(nil), r.order...)
}
