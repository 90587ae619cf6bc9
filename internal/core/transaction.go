package core

import (
	"fmt"
	"time"

	"dwellingcore/pkg/domain"
)

// Transaction represents a mutation set applied to a cloned document.
type Transaction struct {
	store   *Store
	doc     Document
	changes []Change
	now     time.Time
}

// ItemHandle locates an item created inside a transaction.
type ItemHandle struct {
	Section SectionPath `json:"section"`
	Index   int         `json:"index"`
	ID      string      `json:"id,omitempty"`
}

// helper to record and append change entries.
func (tx *Transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *Transaction) schema(path SectionPath) (domain.EntitySchema, error) {
	schema, ok := tx.store.registry.Schema(path)
	if !ok {
		return domain.EntitySchema{}, fmt.Errorf("%w: %s", ErrUnknownSection, path)
	}
	return schema, nil
}

func (tx *Transaction) item(path SectionPath, index int) (Section, error) {
	if _, err := tx.schema(path); err != nil {
		return Section{}, err
	}
	section := tx.doc.Section(path)
	if index < 0 || index >= section.Len() {
		return Section{}, &IndexError{Section: path, Index: index, Len: section.Len()}
	}
	return section, nil
}

// Now returns the timestamp the transaction was opened at.
func (tx *Transaction) Now() time.Time { return tx.now }

// Section returns a copy of the pending section at path.
func (tx *Transaction) Section(path SectionPath) (Section, error) {
	if _, err := tx.schema(path); err != nil {
		return Section{}, err
	}
	return tx.doc.Section(path).Clone(), nil
}

// Get returns a copy of the pending item at index.
func (tx *Transaction) Get(path SectionPath, index int) (Item, error) {
	section, err := tx.item(path, index)
	if err != nil {
		return Item{}, err
	}
	return section.Items[index].Clone(), nil
}

// Add appends a new incomplete item. Referenceable sections always carry an
// id, and a supplied id already in use anywhere in the document is replaced.
func (tx *Transaction) Add(path SectionPath, data Fields) (ItemHandle, error) {
	schema, err := tx.schema(path)
	if err != nil {
		return ItemHandle{}, err
	}
	fields := data.Clone()
	if fields == nil {
		fields = Fields{}
	}
	id := fields.ID()
	_, _, taken := tx.doc.FindByID(id)
	if taken || (schema.Referenceable && id == "") {
		fields[domain.FieldID] = tx.store.newID()
	}
	section := tx.doc.Section(path)
	item := Item{Data: fields}
	section.Items = append(section.Items, item)
	section.Complete = false
	tx.doc[path] = section

	index := section.Len() - 1
	after := item.Clone()
	tx.recordChange(Change{Section: path, Index: index, Action: ActionCreate, After: &after})
	return ItemHandle{Section: path, Index: index, ID: fields.ID()}, nil
}

// Update merges patch into the item. Nil values clear a field and the id is
// never overwritten.
func (tx *Transaction) Update(path SectionPath, index int, patch Fields) error {
	section, err := tx.item(path, index)
	if err != nil {
		return err
	}
	before := section.Items[index].Clone()
	current := section.Items[index]
	if current.Data == nil {
		current.Data = Fields{}
	}
	for key, value := range patch.Clone() {
		if key == domain.FieldID {
			continue
		}
		if value == nil {
			delete(current.Data, key)
			continue
		}
		current.Data[key] = value
	}
	tx.commitEdit(path, section, index, current, before)
	return nil
}

// Replace swaps the item's data wholesale, keeping its id.
func (tx *Transaction) Replace(path SectionPath, index int, data Fields) error {
	section, err := tx.item(path, index)
	if err != nil {
		return err
	}
	before := section.Items[index].Clone()
	fields := data.Clone()
	if fields == nil {
		fields = Fields{}
	}
	if id := before.Data.ID(); id != "" {
		fields[domain.FieldID] = id
	} else {
		delete(fields, domain.FieldID)
	}
	tx.commitEdit(path, section, index, Item{Data: fields}, before)
	return nil
}

func (tx *Transaction) commitEdit(path SectionPath, section Section, index int, item Item, before Item) {
	item.Complete = false
	section.Items[index] = item
	section.Complete = false
	tx.doc[path] = section
	after := item.Clone()
	tx.recordChange(Change{Section: path, Index: index, Action: ActionUpdate, Before: &before, After: &after})
}

// Remove deletes the item and repairs every reference to its id.
func (tx *Transaction) Remove(path SectionPath, index int) error {
	section, err := tx.item(path, index)
	if err != nil {
		return err
	}
	removed := section.Items[index].Clone()
	section.Items = append(section.Items[:index:index], section.Items[index+1:]...)
	section.Complete = false
	tx.doc[path] = section
	tx.recordChange(Change{Section: path, Index: index, Action: ActionDelete, Before: &removed})
	tx.cascade(path, removed.Data, make(map[string]struct{}))
	return nil
}

// Duplicate inserts a copy of the item directly after it with a fresh id and
// a unique name.
func (tx *Transaction) Duplicate(path SectionPath, index int) (ItemHandle, error) {
	section, err := tx.item(path, index)
	if err != nil {
		return ItemHandle{}, err
	}
	schema, _ := tx.schema(path)
	source := section.Items[index]
	fields := source.Data.Clone()
	if schema.Referenceable || fields.ID() != "" {
		fields[domain.FieldID] = tx.store.newID()
	}
	if name := fields.Name(); name != "" {
		fields[domain.FieldName] = DuplicateName(name, section.Names())
	}
	item := Item{Data: fields}

	at := index + 1
	items := make([]Item, 0, section.Len()+1)
	items = append(items, section.Items[:at]...)
	items = append(items, item)
	items = append(items, section.Items[at:]...)
	section.Items = items
	section.Complete = false
	tx.doc[path] = section

	before := source.Clone()
	after := item.Clone()
	tx.recordChange(Change{Section: path, Index: at, Action: ActionDuplicate, Before: &before, After: &after})
	return ItemHandle{Section: path, Index: at, ID: fields.ID()}, nil
}

// SetItemComplete marks the item complete ("save and complete"). The required
// fields rule blocks the commit when the item is missing data.
func (tx *Transaction) SetItemComplete(path SectionPath, index int) error {
	section, err := tx.item(path, index)
	if err != nil {
		return err
	}
	before := section.Items[index].Clone()
	section.Items[index].Complete = true
	section.Complete = false
	tx.doc[path] = section
	after := section.Items[index].Clone()
	tx.recordChange(Change{Section: path, Index: index, Action: ActionComplete, Before: &before, After: &after})
	return nil
}

// MarkSectionComplete marks every named section complete when each is
// non-empty and all of its items are complete. Otherwise nothing changes and
// false is returned.
func (tx *Transaction) MarkSectionComplete(paths ...SectionPath) (bool, error) {
	for _, path := range paths {
		if _, err := tx.schema(path); err != nil {
			return false, err
		}
		if !sectionCompletable(tx.doc.Section(path)) {
			return false, nil
		}
	}
	for _, path := range paths {
		section := tx.doc.Section(path)
		if section.Complete {
			continue
		}
		section.Complete = true
		tx.doc[path] = section
		tx.recordChange(Change{Section: path, Index: -1, Action: ActionMarkComplete})
	}
	return len(paths) > 0, nil
}

// Reset empties the whole document.
func (tx *Transaction) Reset() {
	tx.doc = domain.NewDocument()
	tx.recordChange(Change{Index: -1, Action: ActionReset})
}

func sectionCompletable(section Section) bool {
	if section.Len() == 0 {
		return false
	}
	for _, item := range section.Items {
		if !item.Complete {
			return false
		}
	}
	return true
}

// demoteInvalid flips complete items that fail their required fields back to
// incomplete, along with their sections.
func (tx *Transaction) demoteInvalid() Result {
	var res Result
	for _, path := range tx.doc.Paths() {
		schema, ok := tx.store.registry.Schema(path)
		if !ok {
			continue
		}
		section := tx.doc.Section(path)
		touched := false
		for i := range section.Items {
			if !section.Items[i].Complete {
				continue
			}
			violations := missingFieldViolations("revalidate", SeverityWarn, schema, i, section.Items[i])
			if len(violations.Violations) == 0 {
				continue
			}
			before := section.Items[i].Clone()
			section.Items[i].Complete = false
			after := section.Items[i].Clone()
			tx.recordChange(Change{Section: path, Index: i, Action: ActionUpdate, Before: &before, After: &after, Cascade: true})
			res.Merge(violations)
			touched = true
		}
		if section.Complete && !sectionCompletable(section) {
			section.Complete = false
			touched = true
			tx.recordChange(Change{Section: path, Index: -1, Action: ActionUpdate, Cascade: true})
		}
		if touched {
			tx.doc[path] = section
		}
	}
	return res
}
