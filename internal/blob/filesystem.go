package blob

import (
	"dwellingcore/internal/infra/blob/fs"
)

// NewFilesystem returns a Store rooted at root, creating the directory.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
