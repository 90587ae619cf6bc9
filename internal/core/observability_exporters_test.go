package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dwellingcore/internal/core"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "add_item", true, 2*time.Millisecond)
	rec.Observe(ctx, "add_item", true, time.Millisecond)
	rec.Observe(ctx, "add_item", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	var histogramSamples uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "dwellingcore_operations_total":
			for _, m := range mf.GetMetric() {
				var op, status string
				for _, l := range m.GetLabel() {
					switch l.GetName() {
					case "operation":
						op = l.GetValue()
					case "status":
						status = l.GetValue()
					}
				}
				counts[op+"/"+status] = m.GetCounter().GetValue()
			}
		case "dwellingcore_operation_duration_seconds":
			for _, m := range mf.GetMetric() {
				histogramSamples += m.GetHistogram().GetSampleCount()
			}
		}
	}
	if counts["add_item/success"] != 2 || counts["add_item/error"] != 1 || len(counts) != 2 {
		t.Fatalf("unexpected counters %v", counts)
	}
	if histogramSamples != 3 {
		t.Fatalf("expected 3 latency samples, got %d", histogramSamples)
	}

	_, err = core.NewPrometheusMetricsRecorder(reg)
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
}

func TestJSONTracerWritesAndBoundsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := core.NewJSONTracer(&buf)
	ctx, span := tracer.Start(context.Background(), "add_item")
	if ctx == nil {
		t.Fatal("tracer must return a context")
	}
	span.End(errors.New("boom"))
	span.End(nil)

	var entry core.JSONTraceEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode span: %v", err)
	}
	if entry.Operation != "add_item" || entry.Status != "error" || entry.Error != "boom" {
		t.Fatalf("unexpected span %+v", entry)
	}

	quiet := core.NewJSONTracer(nil)
	for i := 0; i < 1030; i++ {
		_, s := quiet.Start(context.Background(), fmt.Sprintf("op-%d", i))
		s.End(nil)
	}
	entries := quiet.Entries()
	if len(entries) != 1024 || entries[0].Operation != "op-6" || entries[1023].Operation != "op-1029" {
		t.Fatalf("unexpected retained spans: %d first=%s", len(entries), entries[0].Operation)
	}
}
