package core

import (
	"fmt"

	"dwellingcore/pkg/domain"
)

// cascade applies every reference rule triggered by removing an item with the
// given data from target. Ownership removals recurse on the removed items.
func (tx *Transaction) cascade(target SectionPath, removed Fields, visited map[string]struct{}) {
	id := removed.ID()
	if id == "" {
		return
	}
	if _, seen := visited[id]; seen {
		return
	}
	visited[id] = struct{}{}

	for _, rule := range tx.store.graph.Targeting(target, removed) {
		section := tx.doc.Section(rule.Source)
		if section.Len() == 0 {
			continue
		}
		switch rule.Policy {
		case domain.ReferenceWeak:
			tx.clearWeak(rule, section, id)
		case domain.ReferenceOwnership:
			for _, owned := range tx.removeOwned(rule, section, id) {
				tx.cascade(rule.Source, owned.Data, visited)
			}
		}
	}
}

func (tx *Transaction) clearWeak(rule domain.ReferenceRule, section Section, id string) {
	touched := false
	for i := range section.Items {
		if v, ok := section.Items[i].Data.String(rule.Field); !ok || v != id {
			continue
		}
		before := section.Items[i].Clone()
		delete(section.Items[i].Data, rule.Field)
		section.Items[i].Complete = false
		after := section.Items[i].Clone()
		tx.recordChange(Change{Section: rule.Source, Index: i, Action: ActionUpdate, Before: &before, After: &after, Cascade: true})
		touched = true
	}
	if touched {
		section.Complete = false
		tx.doc[rule.Source] = section
	}
}

func (tx *Transaction) removeOwned(rule domain.ReferenceRule, section Section, id string) []Item {
	kept := make([]Item, 0, section.Len())
	var removed []Item
	for _, item := range section.Items {
		if v, ok := item.Data.String(rule.Field); ok && v == id {
			before := item.Clone()
			tx.recordChange(Change{Section: rule.Source, Index: len(kept), Action: ActionDelete, Before: &before, Cascade: true})
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	if len(removed) > 0 {
		section.Items = kept
		section.Complete = false
		tx.doc[rule.Source] = section
	}
	return removed
}

// repairDangling applies the reference policies to references whose target
// is already gone, as can happen in documents written by older builds.
func (tx *Transaction) repairDangling() error {
	for {
		dangling := tx.store.graph.Dangling(tx.doc)
		if len(dangling) == 0 {
			return nil
		}
		ref := dangling[0]
		section := tx.doc.Section(ref.Rule.Source)
		switch ref.Rule.Policy {
		case domain.ReferenceWeak:
			tx.clearWeak(ref.Rule, section, ref.ID)
		case domain.ReferenceOwnership:
			for _, owned := range tx.removeOwned(ref.Rule, section, ref.ID) {
				tx.cascade(ref.Rule.Source, owned.Data, make(map[string]struct{}))
			}
		default:
			return fmt.Errorf("reference %s.%s has unknown policy %q", ref.Rule.Source, ref.Rule.Field, ref.Rule.Policy)
		}
	}
}
