package persistence

import (
	"testing"

	"dwellingcore/pkg/domain"
)

func sampleDocument() domain.Document {
	doc := domain.NewDocument()
	doc[domain.PathExternalWall] = domain.Section{
		Items:    []domain.Item{{Data: domain.Fields{"id": "w1", "name": "Wall 1"}, Complete: true}},
		Complete: true,
	}
	doc[domain.PathHeatPump] = domain.Section{
		Items: []domain.Item{{Data: domain.Fields{"id": "hp1", "name": "Heat pump"}}},
	}
	return doc
}

func TestEncodeBucketsSplitsByDomain(t *testing.T) {
	buckets, err := EncodeBuckets(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	names := BucketNames(buckets)
	if len(names) != 2 || names[0] != "dwellingFabric" || names[1] != "heatingSystems" {
		t.Fatalf("unexpected buckets %v", names)
	}
}

func TestDecodeBucketsRoundTrip(t *testing.T) {
	buckets, err := EncodeBuckets(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc, err := DecodeBuckets(buckets)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wall := doc.Section(domain.PathExternalWall)
	if !wall.Complete || wall.Len() != 1 || wall.Items[0].Data.Name() != "Wall 1" {
		t.Fatalf("unexpected wall section %+v", wall)
	}
	if doc.Section(domain.PathHeatPump).Items[0].Data.ID() != "hp1" {
		t.Fatalf("expected heat pump id to survive")
	}
}

func TestDecodeBucketsIgnoresForeignSections(t *testing.T) {
	buckets := map[string][]byte{
		"dwellingFabric": []byte(`{"heatingSystems":{"heatGeneration":{"heatPump":{"data":[{"data":{"id":"x"}}]}}}}`),
	}
	doc, err := DecodeBuckets(buckets)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected foreign section to be skipped, got %v", doc.Paths())
	}
}

func TestDecodeBucketsRejectsCorruptPayload(t *testing.T) {
	if _, err := DecodeBuckets(map[string][]byte{"dwellingFabric": []byte("{")}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStale(t *testing.T) {
	prev := map[string]struct{}{"a": {}, "b": {}}
	got := Stale(prev, map[string][]byte{"b": nil})
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected stale %v", got)
	}
}
