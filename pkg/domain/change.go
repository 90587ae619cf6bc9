package domain

import (
	"errors"
	"fmt"
	"time"
)

// Action enumerates the mutations captured in a change set.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionDuplicate    Action = "duplicate"
	ActionComplete     Action = "complete"
	ActionMarkComplete Action = "mark_complete"
	ActionReset        Action = "reset"
)

// Change records one mutation applied inside a transaction. Cascade is set
// when the change was applied by reference repair rather than by the caller.
type Change struct {
	Section SectionPath `json:"section,omitempty"`
	Index   int         `json:"index"`
	Action  Action      `json:"action"`
	Before  *Item       `json:"before,omitempty"`
	After   *Item       `json:"after,omitempty"`
	Cascade bool        `json:"cascade,omitempty"`
}

// ChangeSet is delivered to observers after a committed patch.
type ChangeSet struct {
	Version     uint64    `json:"version"`
	Changes     []Change  `json:"changes"`
	CommittedAt time.Time `json:"committed_at"`
}

// Sections returns the distinct sections touched by the change set.
func (c ChangeSet) Sections() []SectionPath {
	seen := make(map[SectionPath]struct{})
	var out []SectionPath
	for _, ch := range c.Changes {
		if ch.Section == "" {
			continue
		}
		if _, ok := seen[ch.Section]; ok {
			continue
		}
		seen[ch.Section] = struct{}{}
		out = append(out, ch.Section)
	}
	return out
}

// ErrUnknownSection is returned when a path is not registered.
var ErrUnknownSection = errors.New("unknown section")

// IndexError reports an item index outside the current section bounds.
type IndexError struct {
	Section SectionPath
	Index   int
	Len     int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Section, e.Index, e.Len)
}

// ErrNoItem is returned when an id or draft no longer resolves to an item.
var ErrNoItem = errors.New("no such item")
