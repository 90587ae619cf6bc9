package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"dwellingcore/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	meta := map[string]string{"session": "abc"}
	info, err := s.Put(ctx, "exports/abc/1.json", bytes.NewBufferString(`{"a":1}`), core.PutOptions{ContentType: "application/json", Metadata: meta})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	meta["session"] = "mutated"
	if info.Size != 7 || info.Checksum == "" || info.Metadata["session"] != "abc" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "exports/abc/1.json", bytes.NewBufferString("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := s.Get(ctx, "exports/abc/1.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if _, err := s.Put(ctx, "exports/other/1.json", bytes.NewBufferString("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("Put other: %v", err)
	}
	list, _ := s.List(ctx, "exports/abc/")
	if len(list) != 1 || list[0].Key != "exports/abc/1.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, _ := s.Delete(ctx, "exports/abc/1.json"); !ok {
		t.Fatalf("expected delete to report existing key")
	}
	if ok, _ := s.Delete(ctx, "exports/abc/1.json"); ok {
		t.Fatalf("expected second delete to report missing key")
	}
	if _, _, err := s.Get(ctx, "exports/abc/1.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.PresignURL(ctx, "exports/other/1.json", 0); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	if _, err := New().Put(context.Background(), " ", bytes.NewBufferString("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}
