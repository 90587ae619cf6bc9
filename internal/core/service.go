package core

import (
	"context"
	"errors"
	"time"

	"dwellingcore/pkg/domain"
)

// Logger is the structured logging surface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one service operation.
type AuditEntry struct {
	Operation string        `json:"operation"`
	Action    Action        `json:"action"`
	Section   SectionPath   `json:"section,omitempty"`
	Index     int           `json:"index"`
	ItemID    string        `json:"item_id,omitempty"`
	Status    AuditStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// AuditRecorder receives audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended once with the operation error.
type TraceSpan interface {
	End(err error)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock        Clock
	logger       Logger
	audit        AuditRecorder
	metrics      MetricsRecorder
	tracer       Tracer
	rules        []Rule
	defaultRules bool
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// WithClock overrides the clock used for audit timestamps and durations.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder attaches an audit sink.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.audit = rec
		}
	}
}

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithRule registers an additional rule on the store's engine.
func WithRule(rule Rule) ServiceOption {
	return func(o *serviceOptions) {
		if rule != nil {
			o.rules = append(o.rules, rule)
		}
	}
}

// WithDefaultRules registers the built-in rule set on the store's engine.
func WithDefaultRules() ServiceOption {
	return func(o *serviceOptions) { o.defaultRules = true }
}

// Service exposes the collection manager operations with audit, metrics and
// tracing around each call.
type Service struct {
	store   *Store
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.defaultRules {
		store.useDefaultRules()
	}
	for _, rule := range o.rules {
		store.engine.Register(rule)
	}
	if _, isNoop := store.logger.(noopLogger); isNoop {
		store.logger = o.logger
	}
	return &Service{
		store:   store,
		clock:   o.clock,
		logger:  o.logger,
		audit:   o.audit,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
}

// NewInMemoryService creates a service over a fresh store with the given
// rules engine. A nil engine starts empty; pass WithDefaultRules to populate it.
func NewInMemoryService(registry domain.SchemaRegistry, engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewRulesEngine()
	}
	return NewService(NewStore(registry, engine), opts...)
}

// Store returns the underlying document store.
func (s *Service) Store() *Store { return s.store }

// Registry returns the schema registry.
func (s *Service) Registry() domain.SchemaRegistry { return s.store.registry }

var operationActions = map[string]Action{
	"add_item":              ActionCreate,
	"update_item":           ActionUpdate,
	"replace_item":          ActionUpdate,
	"commit_draft":          ActionUpdate,
	"remove_item":           ActionDelete,
	"duplicate_item":        ActionDuplicate,
	"complete_item":         ActionComplete,
	"mark_section_complete": ActionMarkComplete,
	"reset_document":        ActionReset,
	"revalidate_document":   ActionUpdate,
}

type auditTarget struct {
	section SectionPath
	index   int
	itemID  string
}

func (s *Service) run(ctx context.Context, op string, target *auditTarget, fn func(context.Context) (Result, error)) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	start := s.clock.Now()
	res, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)

	if err != nil {
		var violation RuleViolationError
		if errors.As(err, &violation) {
			s.logger.Warn("operation blocked", "operation", op, "section", string(target.section), "violations", len(violation.Result.Violations))
		} else {
			s.logger.Error("operation failed", "operation", op, "section", string(target.section), "error", err)
		}
		s.recordAuditError(ctx, op, *target, duration, err)
		return res, err
	}
	for _, v := range res.Violations {
		if v.Severity == SeverityWarn {
			s.logger.Warn("rule warning", "operation", op, "rule", v.Rule, "message", v.Message)
		}
	}
	s.logger.Debug("operation completed", "operation", op, "section", string(target.section), "duration", duration)
	s.recordAuditSuccess(ctx, op, *target, duration)
	return res, nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, op string, target auditTarget, duration time.Duration) {
	s.recordAudit(ctx, op, target, duration, AuditStatusSuccess, "")
}

func (s *Service) recordAuditError(ctx context.Context, op string, target auditTarget, duration time.Duration, err error) {
	s.recordAudit(ctx, op, target, duration, AuditStatusError, err.Error())
}

func (s *Service) recordAudit(ctx context.Context, op string, target auditTarget, duration time.Duration, status AuditStatus, errMsg string) {
	action, ok := operationActions[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Action:    action,
		Section:   target.section,
		Index:     target.index,
		ItemID:    target.itemID,
		Status:    status,
		Error:     errMsg,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// AddItem appends a new item to path.
func (s *Service) AddItem(ctx context.Context, path SectionPath, data Fields) (ItemHandle, Result, error) {
	var handle ItemHandle
	target := &auditTarget{section: path, index: -1}
	res, err := s.run(ctx, "add_item", target, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			var err error
			handle, err = tx.Add(path, data)
			target.index, target.itemID = handle.Index, handle.ID
			return err
		})
	})
	return handle, res, err
}

// UpdateItem merges patch into the item at index.
func (s *Service) UpdateItem(ctx context.Context, path SectionPath, index int, patch Fields) (Result, error) {
	return s.run(ctx, "update_item", &auditTarget{section: path, index: index}, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			return tx.Update(path, index, patch)
		})
	})
}

// ReplaceItem overwrites the item data at index, keeping its id.
func (s *Service) ReplaceItem(ctx context.Context, path SectionPath, index int, data Fields) (Result, error) {
	return s.run(ctx, "replace_item", &auditTarget{section: path, index: index}, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			return tx.Replace(path, index, data)
		})
	})
}

// RemoveItem deletes the item at index and cascades to referencing sections.
func (s *Service) RemoveItem(ctx context.Context, path SectionPath, index int) (Result, error) {
	target := &auditTarget{section: path, index: index}
	return s.run(ctx, "remove_item", target, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			if item, err := tx.Get(path, index); err == nil {
				target.itemID = item.Data.ID()
			}
			return tx.Remove(path, index)
		})
	})
}

// DuplicateItem copies the item at index directly after itself.
func (s *Service) DuplicateItem(ctx context.Context, path SectionPath, index int) (ItemHandle, Result, error) {
	var handle ItemHandle
	target := &auditTarget{section: path, index: index}
	res, err := s.run(ctx, "duplicate_item", target, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			var err error
			handle, err = tx.Duplicate(path, index)
			target.itemID = handle.ID
			return err
		})
	})
	return handle, res, err
}

// CompleteItem is "save and complete": data, when non-nil, replaces the item
// before it is marked complete under the required fields rule.
func (s *Service) CompleteItem(ctx context.Context, path SectionPath, index int, data Fields) (Result, error) {
	return s.run(ctx, "complete_item", &auditTarget{section: path, index: index}, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			if data != nil {
				if err := tx.Replace(path, index, data); err != nil {
					return err
				}
			}
			return tx.SetItemComplete(path, index)
		})
	})
}

// MarkSectionComplete marks every path complete when each section allows it.
func (s *Service) MarkSectionComplete(ctx context.Context, paths ...SectionPath) (bool, Result, error) {
	var marked bool
	var section SectionPath
	if len(paths) > 0 {
		section = paths[0]
	}
	res, err := s.run(ctx, "mark_section_complete", &auditTarget{section: section, index: -1}, func(ctx context.Context) (Result, error) {
		return s.store.Patch(ctx, func(tx *Transaction) error {
			var err error
			marked, err = tx.MarkSectionComplete(paths...)
			return err
		})
	})
	return marked, res, err
}

// CommitDraft autosaves data for a form session. A negative index creates the
// item; the returned handle addresses it for later commits.
func (s *Service) CommitDraft(ctx context.Context, path SectionPath, index int, data Fields) (ItemHandle, Result, error) {
	draft := NewFieldDraft(s.store, path, index)
	target := &auditTarget{section: path, index: index}
	res, err := s.run(ctx, "commit_draft", target, func(ctx context.Context) (Result, error) {
		err := draft.Commit(ctx, data)
		handle := draft.Handle()
		target.index, target.itemID = handle.Index, handle.ID
		return Result{}, err
	})
	return draft.Handle(), res, err
}

// Reset clears the whole document.
func (s *Service) Reset(ctx context.Context) (Result, error) {
	return s.run(ctx, "reset_document", &auditTarget{index: -1}, s.store.Reset)
}

// Revalidate repairs references and demotes invalid complete items.
func (s *Service) Revalidate(ctx context.Context) (Result, error) {
	return s.run(ctx, "revalidate_document", &auditTarget{index: -1}, s.store.Revalidate)
}

// Document returns a snapshot of the current document.
func (s *Service) Document() Document { return s.store.Snapshot() }

// Report builds the status report for the current document.
func (s *Service) Report() Report { return BuildReport(s.store.Snapshot(), s.store.registry) }

// Resolved returns the calculation-ready view of the current document.
func (s *Service) Resolved() map[string]any { return Resolve(s.store.Snapshot()) }
