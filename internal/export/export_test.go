package export

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"dwellingcore/internal/blob"
)

type staticSource map[string]any

func (s staticSource) Resolved() map[string]any { return s }

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}

func TestExportWritesResolvedJSON(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	at := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	exp := New(store, "session-1", WithClock(fixedClock(at)))

	src := staticSource{"domesticHotWater": map[string]any{"waterHeating": map[string]any{"hotWaterCylinder": []any{map[string]any{"name": "Cylinder"}}}}}
	res, err := exp.Export(ctx, src)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Info.Key != "exports/session-1/20260304T050607.000000008Z.json" {
		t.Fatalf("unexpected key %s", res.Info.Key)
	}
	if res.URL != "" {
		t.Fatalf("memory store cannot presign, got %s", res.URL)
	}
	_, rc, err := store.Get(ctx, res.Info.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	raw, _ := io.ReadAll(rc)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded["domesticHotWater"]; !ok {
		t.Fatalf("expected domain in export, got %s", raw)
	}
}

func TestExportListsSessionOnly(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := New(store, "a", WithClock(fixedClock(t0, t0.Add(time.Second))))
	b := New(store, "b", WithClock(fixedClock(t0)))
	for i := 0; i < 2; i++ {
		if _, err := a.Export(ctx, staticSource{}); err != nil {
			t.Fatalf("export a: %v", err)
		}
	}
	if _, err := b.Export(ctx, staticSource{}); err != nil {
		t.Fatalf("export b: %v", err)
	}
	list, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || !strings.HasPrefix(list[0].Key, "exports/a/") {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestExportPresignsWhenSupported(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	exp := New(store, "s", WithPresign(time.Minute))
	res, err := exp.Export(context.Background(), staticSource{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(res.URL, "file://") {
		t.Fatalf("expected file url, got %q", res.URL)
	}
}

func TestSessionSegment(t *testing.T) {
	cases := map[string]string{
		"":          "default",
		"  ":        "default",
		"a/b":       "a-b",
		"../escape": "--escape",
		"my home":   "my-home",
	}
	for in, want := range cases {
		if got := sessionSegment(in); got != want {
			t.Fatalf("sessionSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
