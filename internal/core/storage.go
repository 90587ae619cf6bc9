package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dwellingcore/internal/infra/persistence/file"
	"dwellingcore/internal/infra/persistence/memory"
	"dwellingcore/internal/infra/persistence/postgres"
	"dwellingcore/internal/infra/persistence/sqlite"
	"dwellingcore/pkg/domain"
)

// StorageDriver identifies a concrete persistence backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageFile     StorageDriver = "file"     // single JSON session file
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and parameterises a persister.
type StorageConfig struct {
	Driver      StorageDriver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
}

// OpenPersister builds the persister named by cfg.Driver. The returned closer
// releases backend resources and is never nil. An empty driver means file.
func OpenPersister(ctx context.Context, cfg StorageConfig) (domain.Persister, io.Closer, error) {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))
	if driver == "" {
		driver = StorageFile
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nopCloser{}, nil
	case StorageFile:
		return file.NewStore(cfg.FilePath), nopCloser{}, nil
	case StorageSQLite:
		s, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case StoragePostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
