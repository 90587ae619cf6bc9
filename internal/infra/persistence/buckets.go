// Package persistence holds the bucket codec shared by the SQL persisters.
// A bucket is one top-level domain of the document, stored as its JSON tree.
package persistence

import (
	"encoding/json"
	"fmt"
	"sort"

	"dwellingcore/pkg/domain"
)

// EncodeBuckets splits doc into one JSON payload per top-level domain.
func EncodeBuckets(doc domain.Document) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, name := range doc.Domains() {
		payload, err := json.Marshal(doc.Subset(domain.SectionPath(name)))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = payload
	}
	return out, nil
}

// DecodeBuckets merges bucket payloads back into a single document. Sections
// are taken only from the bucket of their own domain.
func DecodeBuckets(buckets map[string][]byte) (domain.Document, error) {
	doc := domain.NewDocument()
	for _, name := range BucketNames(buckets) {
		payload := buckets[name]
		if len(payload) == 0 {
			continue
		}
		var part domain.Document
		if err := json.Unmarshal(payload, &part); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		for path, section := range part {
			if path.Domain() != name {
				continue
			}
			doc[path] = section
		}
	}
	return doc, nil
}

// BucketNames returns the keys of buckets in sorted order.
func BucketNames(buckets map[string][]byte) []string {
	out := make([]string, 0, len(buckets))
	for name := range buckets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Stale returns the names in previous that are absent from current.
func Stale(previous map[string]struct{}, current map[string][]byte) []string {
	var out []string
	for name := range previous {
		if _, ok := current[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
