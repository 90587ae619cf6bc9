package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"dwellingcore/internal/core"
	"dwellingcore/internal/schema"
	"dwellingcore/pkg/domain"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(opts ...core.StoreOption) *core.Store {
	opts = append([]core.StoreOption{core.WithIDGenerator(sequentialIDs())}, opts...)
	return core.NewStore(schema.Default(), nil, opts...)
}

func mustPatch(t *testing.T, s *core.Store, fn func(tx *core.Transaction) error) core.Result {
	t.Helper()
	res, err := s.Patch(context.Background(), fn)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	return res
}

func addItem(t *testing.T, s *core.Store, path domain.SectionPath, data core.Fields) core.ItemHandle {
	t.Helper()
	var h core.ItemHandle
	mustPatch(t, s, func(tx *core.Transaction) error {
		var err error
		h, err = tx.Add(path, data)
		return err
	})
	return h
}

func completeCylinder(heatSource string) core.Fields {
	return core.Fields{
		"name":                  "Cylinder",
		"heatSource":            heatSource,
		"storageCylinderVolume": 150.0,
		"dailyEnergyLoss":       1.2,
	}
}
