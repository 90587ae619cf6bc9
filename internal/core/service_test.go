package core_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dwellingcore/internal/core"
	"dwellingcore/internal/schema"
	"dwellingcore/pkg/domain"
)

type auditSink struct {
	mu      sync.Mutex
	entries []core.AuditEntry
}

func (a *auditSink) Record(_ context.Context, e core.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *auditSink) last() core.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries[len(a.entries)-1]
}

type observation struct {
	op      string
	success bool
}

type metricsSink struct {
	mu  sync.Mutex
	obs []observation
}

func (m *metricsSink) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{op: op, success: success})
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func steppingClock() core.Clock {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return core.ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	})
}

type warnRule struct{}

func (warnRule) Name() string { return "boiler_reminder" }

func (warnRule) Evaluate(_ context.Context, view core.RuleView, _ []core.Change) (core.Result, error) {
	if view.Section(domain.PathBoiler).Len() == 0 {
		return core.Result{}, nil
	}
	return core.Result{Violations: []core.Violation{{Rule: "boiler_reminder", Severity: core.SeverityWarn, Message: "check the flue", Index: -1}}}, nil
}

func TestServiceAuditsMetricsAndTraces(t *testing.T) {
	ctx := context.Background()
	audit := &auditSink{}
	metrics := &metricsSink{}
	logger := &recordingLogger{}
	var traceBuf bytes.Buffer
	tracer := core.NewJSONTracer(&traceBuf)
	svc := core.NewInMemoryService(schema.Default(), nil,
		core.WithDefaultRules(),
		core.WithAuditRecorder(audit),
		core.WithMetricsRecorder(metrics),
		core.WithTracer(tracer),
		core.WithLogger(logger),
		core.WithClock(steppingClock()),
	)

	h, _, err := svc.AddItem(ctx, domain.PathBoiler, core.Fields{"name": "Boiler"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	entry := audit.last()
	if entry.Operation != "add_item" || entry.Action != core.ActionCreate || entry.ItemID != h.ID || entry.Status != core.AuditStatusSuccess || entry.Duration <= 0 {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	_, err = svc.CompleteItem(ctx, domain.PathBoiler, 0, core.Fields{"name": ""})
	var violation core.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected violation, got %v", err)
	}
	if !strings.HasPrefix(violation.Result.Summary(), "There is a problem: ") {
		t.Fatalf("unexpected summary %q", violation.Result.Summary())
	}
	if e := audit.last(); e.Status != core.AuditStatusError || e.Action != core.ActionComplete {
		t.Fatalf("unexpected audit entry %+v", e)
	}
	if len(logger.warns) != 1 || len(logger.errs) != 0 {
		t.Fatalf("blocked operations log a warning: warns=%v errs=%v", logger.warns, logger.errs)
	}
	if svc.Document().Section(domain.PathBoiler).Items[0].Data.Name() != "Boiler" {
		t.Fatal("blocked complete must not replace data")
	}

	if _, err := svc.CompleteItem(ctx, domain.PathBoiler, 0, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	marked, _, err := svc.MarkSectionComplete(ctx, domain.PathBoiler)
	if err != nil || !marked {
		t.Fatalf("mark=%v,%v", marked, err)
	}
	if svc.Report().Pages == nil || len(svc.Resolved()) != 1 {
		t.Fatalf("expected the boiler in the resolved view: %v", svc.Resolved())
	}

	if _, err := svc.RemoveItem(ctx, domain.PathBoiler, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e := audit.last(); e.Action != core.ActionDelete || e.ItemID != h.ID {
		t.Fatalf("unexpected audit entry %+v", e)
	}
	if _, err := svc.RemoveItem(ctx, domain.PathBoiler, 0); err == nil {
		t.Fatal("expected index error")
	}
	if len(logger.errs) != 1 {
		t.Fatalf("failed operations log an error: %v", logger.errs)
	}

	if len(metrics.obs) != len(audit.entries) {
		t.Fatalf("metrics %d vs audit %d", len(metrics.obs), len(audit.entries))
	}
	if metrics.obs[1] != (observation{op: "complete_item", success: false}) {
		t.Fatalf("unexpected observation %+v", metrics.obs[1])
	}
	spans := tracer.Entries()
	if len(spans) != len(audit.entries) || spans[1].Status != "error" || spans[1].Error == "" {
		t.Fatalf("unexpected spans %+v", spans)
	}
	if lines := strings.Count(traceBuf.String(), "\n"); lines != len(spans) {
		t.Fatalf("expected %d trace lines, got %d", len(spans), lines)
	}
}

func TestServiceDuplicateDraftResetRevalidate(t *testing.T) {
	ctx := context.Background()
	audit := &auditSink{}
	svc := core.NewInMemoryService(schema.Default(), nil, core.WithDefaultRules(), core.WithAuditRecorder(audit))

	h, _, err := svc.CommitDraft(ctx, domain.PathImmersionHeater, -1, core.Fields{"ratedPower": 3.0})
	if err != nil || h.Index != 0 {
		t.Fatalf("draft=%+v,%v", h, err)
	}
	if _, _, err := svc.CommitDraft(ctx, domain.PathImmersionHeater, h.Index, core.Fields{"ratedPower": 2.0, "name": "Loft"}); err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	dup, _, err := svc.DuplicateItem(ctx, domain.PathImmersionHeater, 0)
	if err != nil || dup.Index != 1 || dup.ID == h.ID {
		t.Fatalf("duplicate=%+v,%v", dup, err)
	}
	if got := svc.Document().Section(domain.PathImmersionHeater).Names(); got[1] != "Loft (1)" {
		t.Fatalf("unexpected names %v", got)
	}
	if _, err := svc.UpdateItem(ctx, domain.PathImmersionHeater, 1, core.Fields{"heaterPosition": 0.1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.ReplaceItem(ctx, domain.PathImmersionHeater, 1, core.Fields{"name": "Spare"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	res, err := svc.Revalidate(ctx)
	if err != nil || len(res.Violations) != 0 {
		t.Fatalf("revalidate=%+v,%v", res, err)
	}
	if _, err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(svc.Document()) != 0 {
		t.Fatal("reset leaves an empty document")
	}

	var ops []string
	for _, e := range audit.entries {
		ops = append(ops, e.Operation)
	}
	want := "commit_draft,commit_draft,duplicate_item,update_item,replace_item,revalidate_document,reset_document"
	if strings.Join(ops, ",") != want {
		t.Fatalf("audited operations %v", ops)
	}
}

func TestServiceCustomRuleWarnings(t *testing.T) {
	logger := &recordingLogger{}
	svc := core.NewInMemoryService(schema.Default(), nil, core.WithRule(warnRule{}), core.WithLogger(logger))
	_, res, err := svc.AddItem(context.Background(), domain.PathBoiler, core.Fields{"name": "Boiler"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(res.Violations) != 1 || res.HasBlocking() {
		t.Fatalf("expected a single warning, got %+v", res)
	}
	if len(logger.warns) != 1 {
		t.Fatalf("warnings are logged: %v", logger.warns)
	}
	if svc.Store().Registry() == nil || svc.Registry() == nil {
		t.Fatal("registry accessors should be wired")
	}
}

func TestWithDefaultRulesRegistersOnce(t *testing.T) {
	ctx := context.Background()
	svc := core.NewService(newTestStore(), core.WithDefaultRules())
	if _, _, err := svc.AddItem(ctx, domain.PathBoiler, core.Fields{"productReference": "P1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.CompleteItem(ctx, domain.PathBoiler, 0, nil)
	var violation core.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected blocked completion, got %v", err)
	}
	names := 0
	for _, v := range violation.Result.Violations {
		if v.Field == "name" {
			names++
		}
	}
	if names != 1 {
		t.Fatalf("expected one name violation, got %+v", violation.Result.Violations)
	}
}
