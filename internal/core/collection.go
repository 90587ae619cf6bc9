package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dwellingcore/pkg/domain"
)

// Collection is a typed view over the section that stores T. Index errors are
// programmer errors and panic; every other failure is returned.
type Collection[T domain.Entity] struct {
	store *Store
	path  SectionPath
}

// NewCollection binds T's home section on store.
func NewCollection[T domain.Entity](store *Store) *Collection[T] {
	var zero T
	return &Collection[T]{store: store, path: zero.SectionPath()}
}

// Path returns the section the collection manages.
func (c *Collection[T]) Path() SectionPath { return c.path }

func mustApply(label string, err error) error {
	var indexErr *IndexError
	if errors.As(err, &indexErr) {
		panic(fmt.Errorf("collection %s: %w", label, err))
	}
	return err
}

// EncodeFields converts an entity into the untyped field set stored in the document.
func EncodeFields[T any](value T) (Fields, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", value, err)
	}
	fields := Fields{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %T: %w", value, err)
	}
	return fields, nil
}

// DecodeFields converts a stored field set back into an entity.
func DecodeFields[T any](fields Fields) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// Add appends value as a new incomplete item.
func (c *Collection[T]) Add(ctx context.Context, value T) (ItemHandle, error) {
	fields, err := EncodeFields(value)
	if err != nil {
		return ItemHandle{}, err
	}
	var handle ItemHandle
	_, err = c.store.Patch(ctx, func(tx *Transaction) error {
		var err error
		handle, err = tx.Add(c.path, fields)
		return err
	})
	return handle, mustApply("add", err)
}

// Update decodes the item at index, applies mutator and writes the result back.
func (c *Collection[T]) Update(ctx context.Context, index int, mutator func(*T) error) error {
	_, err := c.store.Patch(ctx, func(tx *Transaction) error {
		item, err := tx.Get(c.path, index)
		if err != nil {
			return err
		}
		value, err := DecodeFields[T](item.Data)
		if err != nil {
			return err
		}
		if err := mutator(&value); err != nil {
			return err
		}
		fields, err := EncodeFields(value)
		if err != nil {
			return err
		}
		return tx.Replace(c.path, index, fields)
	})
	return mustApply("update", err)
}

// Remove deletes the item at index, cascading to referencing sections.
func (c *Collection[T]) Remove(ctx context.Context, index int) error {
	_, err := c.store.Patch(ctx, func(tx *Transaction) error {
		return tx.Remove(c.path, index)
	})
	return mustApply("remove", err)
}

// Duplicate copies the item at index directly after itself.
func (c *Collection[T]) Duplicate(ctx context.Context, index int) (ItemHandle, error) {
	var handle ItemHandle
	_, err := c.store.Patch(ctx, func(tx *Transaction) error {
		var err error
		handle, err = tx.Duplicate(c.path, index)
		return err
	})
	return handle, mustApply("duplicate", err)
}

// Complete saves value over the item at index and marks it complete. Missing
// required fields block the whole patch with a RuleViolationError.
func (c *Collection[T]) Complete(ctx context.Context, index int, value T) (Result, error) {
	fields, err := EncodeFields(value)
	if err != nil {
		return Result{}, err
	}
	res, err := c.store.Patch(ctx, func(tx *Transaction) error {
		if err := tx.Replace(c.path, index, fields); err != nil {
			return err
		}
		return tx.SetItemComplete(c.path, index)
	})
	return res, mustApply("complete", err)
}

// MarkComplete marks the section complete when every item is.
func (c *Collection[T]) MarkComplete(ctx context.Context) (bool, error) {
	var ok bool
	_, err := c.store.Patch(ctx, func(tx *Transaction) error {
		var err error
		ok, err = tx.MarkSectionComplete(c.path)
		return err
	})
	return ok, err
}

// Items decodes every item in order.
func (c *Collection[T]) Items() ([]T, error) {
	section := c.store.Snapshot().Section(c.path)
	out := make([]T, 0, section.Len())
	for _, item := range section.Items {
		value, err := DecodeFields[T](item.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// Get decodes the item at index.
func (c *Collection[T]) Get(index int) (T, error) {
	section := c.store.Snapshot().Section(c.path)
	if index < 0 || index >= section.Len() {
		panic(fmt.Errorf("collection get: %w", &IndexError{Section: c.path, Index: index, Len: section.Len()}))
	}
	return DecodeFields[T](section.Items[index].Data)
}

// Len returns the number of items in the section.
func (c *Collection[T]) Len() int {
	return c.store.Snapshot().Section(c.path).Len()
}

// Status returns the derived section status.
func (c *Collection[T]) Status() Status {
	return SectionStatusIn(c.store.Snapshot(), c.path)
}
