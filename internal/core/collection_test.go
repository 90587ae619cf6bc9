package core_test

import (
	"context"
	"errors"
	"testing"

	"dwellingcore/internal/core"
	"dwellingcore/pkg/domain"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	boilers := core.NewCollection[domain.Boiler](s)
	if boilers.Path() != domain.PathBoiler {
		t.Fatalf("unexpected path %s", boilers.Path())
	}

	h, err := boilers.Add(ctx, domain.Boiler{HeatGenerator: domain.HeatGenerator{Name: "Main"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := boilers.Get(0)
	if err != nil || got.ID != h.ID || got.Name != "Main" {
		t.Fatalf("get=%+v,%v", got, err)
	}
	if boilers.Status() != core.StatusInProgress {
		t.Fatalf("unexpected status %s", boilers.Status())
	}

	if _, err := boilers.Complete(ctx, 0, domain.Boiler{}); !errors.As(err, new(core.RuleViolationError)) {
		t.Fatalf("expected missing name violation, got %v", err)
	}
	if _, err := boilers.Complete(ctx, 0, domain.Boiler{HeatGenerator: domain.HeatGenerator{Name: "Main", ProductReference: "P"}}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ok, err := boilers.MarkComplete(ctx); !ok || err != nil {
		t.Fatalf("mark complete=%v,%v", ok, err)
	}
	if boilers.Status() != core.StatusComplete {
		t.Fatalf("unexpected status %s", boilers.Status())
	}

	err = boilers.Update(ctx, 0, func(b *domain.Boiler) error {
		b.Name = "Renamed"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if boilers.Status() != core.StatusInProgress {
		t.Fatal("update resets section completion")
	}
	sentinel := errors.New("reject")
	if err := boilers.Update(ctx, 0, func(*domain.Boiler) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	dup, err := boilers.Duplicate(ctx, 0)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	items, err := boilers.Items()
	if err != nil || len(items) != 2 || items[1].Name != "Renamed (1)" || items[1].ID != dup.ID || items[0].ID != h.ID {
		t.Fatalf("unexpected items %+v %v", items, err)
	}

	expectPanic(t, func() { _ = boilers.Remove(ctx, 5) })
	expectPanic(t, func() { _, _ = boilers.Get(-1) })

	if err := boilers.Remove(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if boilers.Len() != 1 {
		t.Fatalf("expected one boiler left, have %d", boilers.Len())
	}
}

func TestCollectionCylinderReferencesHeatSource(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	pumps := core.NewCollection[domain.HeatPump](s)
	cylinders := core.NewCollection[domain.HotWaterCylinder](s)

	pump, err := pumps.Add(ctx, domain.HeatPump{HeatGenerator: domain.HeatGenerator{Name: "ASHP"}})
	if err != nil {
		t.Fatalf("add pump: %v", err)
	}
	volume := 200.0
	if _, err := cylinders.Add(ctx, domain.HotWaterCylinder{Name: "Cylinder", HeatSource: pump.ID, StorageCylinderVolume: &volume}); err != nil {
		t.Fatalf("add cylinder: %v", err)
	}
	if err := pumps.Remove(ctx, 0); err != nil {
		t.Fatalf("remove pump: %v", err)
	}
	cyl, err := cylinders.Get(0)
	if err != nil {
		t.Fatalf("get cylinder: %v", err)
	}
	if cyl.HeatSource != "" || cyl.StorageCylinderVolume == nil || *cyl.StorageCylinderVolume != volume {
		t.Fatalf("unexpected cylinder %+v", cyl)
	}
}

func TestEncodeDecodeFields(t *testing.T) {
	shape := domain.DuctShapeCircular
	fields, err := core.EncodeFields(domain.Ductwork{Name: "D", DuctworkCrossSectionalShape: shape, CircularDuct: &domain.CircularDuct{}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if fields["ductworkCrossSectionalShape"] != "circular" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["ductPerimeter"]; ok {
		t.Fatal("nil variant fields are omitted")
	}
	duct, err := core.DecodeFields[domain.Ductwork](fields)
	if err != nil || duct.Name != "D" || duct.DuctworkCrossSectionalShape != shape {
		t.Fatalf("decode=%+v,%v", duct, err)
	}
	if _, err := core.DecodeFields[domain.Ductwork](core.Fields{"name": 7}); err == nil {
		t.Fatal("expected type mismatch error")
	}
}
