package blob

import (
	memorystore "dwellingcore/internal/infra/blob/memory"
)

// NewMemory returns an in-memory Store for tests and ephemeral sessions.
func NewMemory() Store { return memorystore.New() }
