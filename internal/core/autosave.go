package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dwellingcore/pkg/domain"
)

// FieldDraft binds one form session to an item of a section and writes every
// commit straight into the document without validation.
type FieldDraft struct {
	mu      sync.Mutex
	store   *Store
	path    SectionPath
	index   int
	id      string
	created bool
}

// NewFieldDraft starts a draft over path. A negative index starts a create
// draft that adds a new item on its first commit.
func NewFieldDraft(store *Store, path SectionPath, index int) *FieldDraft {
	if index < 0 {
		return &FieldDraft{store: store, path: path, index: -1}
	}
	d := &FieldDraft{store: store, path: path, index: index, created: true}
	section := store.Snapshot().Section(path)
	if index < section.Len() {
		d.id = section.Items[index].Data.ID()
	}
	return d
}

// Index returns the item position the draft writes to, or -1 before the
// first commit of a create draft.
func (d *FieldDraft) Index() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// Handle returns the location of the drafted item.
func (d *FieldDraft) Handle() ItemHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ItemHandle{Section: d.path, Index: d.index, ID: d.id}
}

// Commit writes fields into the document. The first commit of a create draft
// is skipped while every field is still empty.
func (d *FieldDraft) Commit(ctx context.Context, fields Fields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.created && !fields.Defined() {
		return nil
	}
	schema, ok := d.store.registry.Schema(d.path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, d.path)
	}
	fields = fields.Clone()
	if fields == nil {
		fields = Fields{}
	}

	var handle ItemHandle
	_, err := d.store.Patch(ctx, func(tx *Transaction) error {
		section, err := tx.Section(d.path)
		if err != nil {
			return err
		}
		if !d.created {
			if name := strings.TrimSpace(fields.Name()); name != "" {
				fields[domain.FieldName] = name
			} else if schema.DefaultName != "" {
				fields[domain.FieldName] = DefaultName(schema.DefaultName, section.Names())
			}
			handle, err = tx.Add(d.path, fields)
			return err
		}
		index, err := d.locate(section)
		if err != nil {
			return err
		}
		// Each commit carries the whole form, so a missing name is a cleared one.
		name := strings.TrimSpace(fields.Name())
		if name == "" {
			name = schema.DefaultName
		}
		if name != "" {
			fields[domain.FieldName] = name
		} else {
			delete(fields, domain.FieldName)
		}
		handle = ItemHandle{Section: d.path, Index: index, ID: section.Items[index].Data.ID()}
		return tx.Replace(d.path, index, fields)
	})
	if err != nil && !errors.As(err, new(*PersistError)) {
		return err
	}
	d.index, d.id, d.created = handle.Index, handle.ID, true
	return err
}

// locate follows the item by id when other edits have shifted it.
func (d *FieldDraft) locate(section Section) (int, error) {
	if d.id != "" {
		if i := section.IndexOf(d.id); i >= 0 {
			return i, nil
		}
		return -1, fmt.Errorf("draft %s: %w", d.id, ErrNoItem)
	}
	if d.index < 0 || d.index >= section.Len() {
		return -1, &IndexError{Section: d.path, Index: d.index, Len: section.Len()}
	}
	return d.index, nil
}

// Draft is the typed form of FieldDraft for entity T.
type Draft[T domain.Entity] struct {
	*FieldDraft
}

// NewCreateDraft starts a draft that adds a new T on its first commit.
func NewCreateDraft[T domain.Entity](store *Store) *Draft[T] {
	var zero T
	return &Draft[T]{FieldDraft: NewFieldDraft(store, zero.SectionPath(), -1)}
}

// NewEditDraft starts a draft over the existing T at index.
func NewEditDraft[T domain.Entity](store *Store, index int) *Draft[T] {
	var zero T
	return &Draft[T]{FieldDraft: NewFieldDraft(store, zero.SectionPath(), index)}
}

// Commit encodes values and writes them into the document.
func (d *Draft[T]) Commit(ctx context.Context, values T) error {
	fields, err := EncodeFields(values)
	if err != nil {
		return err
	}
	return d.FieldDraft.Commit(ctx, fields)
}
