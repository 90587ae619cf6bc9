package domain

import "context"

// Persister is the host storage boundary. Implementations snapshot the whole
// document after every committed patch and rehydrate it at session start.
type Persister interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Status is the derived display status of an item, section or page.
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusInProgress Status = "inProgress"
	StatusComplete   Status = "complete"
)
