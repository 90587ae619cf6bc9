package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field keys shared by every item payload.
const (
	FieldID   = "id"
	FieldName = "name"
)

// Fields holds the partially entered data of a single item. Keys follow the
// JSON field names of the owning entity type.
type Fields map[string]any

// Clone returns a deep copy of the field set.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Fields:
		return t.Clone()
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// String returns the string stored under key.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ID returns the item identifier or an empty string for non referenceable items.
func (f Fields) ID() string {
	id, _ := f.String(FieldID)
	return id
}

// Name returns the display name of the item.
func (f Fields) Name() string {
	name, _ := f.String(FieldName)
	return name
}

// Defined reports whether at least one user entered field carries a value.
// The generated id and whitespace-only strings do not count.
func (f Fields) Defined() bool {
	for k, v := range f {
		if k == FieldID || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return true
	}
	return false
}

// Item is one user entered record plus its explicit completion flag.
type Item struct {
	Data     Fields `json:"data"`
	Complete bool   `json:"complete"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	return Item{Data: i.Data.Clone(), Complete: i.Complete}
}

// Section is an ordered collection of items of one entity type.
type Section struct {
	Items    []Item `json:"data"`
	Complete bool   `json:"complete"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := Section{Complete: s.Complete}
	if s.Items != nil {
		out.Items = make([]Item, len(s.Items))
		for i, item := range s.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Len returns the number of items.
func (s Section) Len() int { return len(s.Items) }

// Names returns the display names of every item in order.
func (s Section) Names() []string {
	out := make([]string, len(s.Items))
	for i, item := range s.Items {
		out[i] = item.Data.Name()
	}
	return out
}

// IndexOf returns the position of the item carrying id or -1.
func (s Section) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range s.Items {
		if item.Data.ID() == id {
			return i
		}
	}
	return -1
}

// MarshalJSON always emits the data array, even for empty sections.
func (s Section) MarshalJSON() ([]byte, error) {
	type wire Section
	w := wire(s)
	if w.Items == nil {
		w.Items = []Item{}
	}
	return json.Marshal(w)
}

// SectionPath addresses a section inside the document tree, e.g.
// "infiltrationAndVentilation/mechanicalVentilation". The first segment is the
// top-level domain.
type SectionPath string

const pathSeparator = "/"

// ParseSectionPath accepts "/" or "." separated paths.
func ParseSectionPath(raw string) (SectionPath, error) {
	raw = strings.Trim(strings.ReplaceAll(strings.TrimSpace(raw), ".", pathSeparator), pathSeparator)
	if raw == "" {
		return "", fmt.Errorf("empty section path")
	}
	for _, seg := range strings.Split(raw, pathSeparator) {
		if strings.TrimSpace(seg) == "" {
			return "", fmt.Errorf("section path %q has an empty segment", raw)
		}
	}
	return SectionPath(raw), nil
}

// Segments splits the path.
func (p SectionPath) Segments() []string {
	return strings.Split(string(p), pathSeparator)
}

// Domain returns the top-level domain name.
func (p SectionPath) Domain() string {
	return p.Segments()[0]
}

// Name returns the last path segment.
func (p SectionPath) Name() string {
	segs := p.Segments()
	return segs[len(segs)-1]
}

// Within reports whether p equals prefix or sits below it.
func (p SectionPath) Within(prefix SectionPath) bool {
	if prefix == "" || p == prefix {
		return true
	}
	return strings.HasPrefix(string(p), string(prefix)+pathSeparator)
}

// URLSegment renders the path in its dotted URL form.
func (p SectionPath) URLSegment() string {
	return strings.ReplaceAll(string(p), pathSeparator, ".")
}

// Document is the root aggregate: every section keyed by its path. Sections
// that were never touched are simply absent.
type Document map[SectionPath]Section

// NewDocument returns an empty document.
func NewDocument() Document { return make(Document) }

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for p, s := range d {
		out[p] = s.Clone()
	}
	return out
}

// Section returns the section at path, empty when absent.
func (d Document) Section(path SectionPath) Section {
	return d[path]
}

// Paths returns every stored path in lexical order.
func (d Document) Paths() []SectionPath {
	out := make([]SectionPath, 0, len(d))
	for p := range d {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Domains returns the distinct top-level domains present.
func (d Document) Domains() []string {
	seen := make(map[string]struct{})
	for p := range d {
		seen[p.Domain()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Subset returns a copy of the sections whose path sits below prefix.
func (d Document) Subset(prefix SectionPath) Document {
	out := make(Document)
	for p, s := range d {
		if p.Within(prefix) {
			out[p] = s.Clone()
		}
	}
	return out
}

// FindByID locates the item with the given id anywhere in the document.
func (d Document) FindByID(id string) (SectionPath, int, bool) {
	if id == "" {
		return "", -1, false
	}
	for _, p := range d.Paths() {
		if idx := d[p].IndexOf(id); idx >= 0 {
			return p, idx, true
		}
	}
	return "", -1, false
}

// MarshalJSON renders the nested domain tree.
func (d Document) MarshalJSON() ([]byte, error) {
	tree := make(map[string]any)
	for _, p := range d.Paths() {
		segs := p.Segments()
		node := tree
		for _, seg := range segs[:len(segs)-1] {
			next, ok := node[seg]
			if !ok {
				child := make(map[string]any)
				node[seg] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("section %s collides with section %s", p, seg)
			}
			node = child
		}
		leaf := segs[len(segs)-1]
		if _, exists := node[leaf]; exists {
			return nil, fmt.Errorf("section %s collides with a nested group", p)
		}
		node[leaf] = d[p]
	}
	return json.Marshal(tree)
}

// UnmarshalJSON walks the nested tree. Any object carrying a "data" array is a
// section; other objects are groups. Scalars and single-form pages are ignored.
func (d *Document) UnmarshalJSON(b []byte) error {
	out := make(Document)
	var root map[string]json.RawMessage
	if err := json.Unmarshal(b, &root); err != nil {
		return err
	}
	if err := walkTree(out, nil, root); err != nil {
		return err
	}
	*d = out
	return nil
}

func walkTree(out Document, prefix []string, node map[string]json.RawMessage) error {
	for key, raw := range node {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var child map[string]json.RawMessage
		if err := json.Unmarshal(raw, &child); err != nil {
			return fmt.Errorf("decode %s: %w", strings.Join(append(prefix, key), pathSeparator), err)
		}
		segs := append(append([]string(nil), prefix...), key)
		if data, ok := child["data"]; ok {
			data = bytes.TrimSpace(data)
			if len(data) == 0 || data[0] != '[' {
				continue
			}
			var section Section
			if err := json.Unmarshal(raw, &section); err != nil {
				return fmt.Errorf("decode section %s: %w", strings.Join(segs, pathSeparator), err)
			}
			for i := range section.Items {
				if section.Items[i].Data == nil {
					section.Items[i].Data = Fields{}
				}
			}
			out[SectionPath(strings.Join(segs, pathSeparator))] = section
			continue
		}
		if err := walkTree(out, segs, child); err != nil {
			return err
		}
	}
	return nil
}
