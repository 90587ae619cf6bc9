package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dwellingcore/pkg/domain"
)

// Observer receives change sets after a patch has been committed.
type Observer interface {
	Notify(ctx context.Context, set ChangeSet)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, set ChangeSet)

// Notify implements Observer.
func (f ObserverFunc) Notify(ctx context.Context, set ChangeSet) { f(ctx, set) }

// PersistError is returned when a patch committed in memory but the persister
// failed to save the resulting document.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist document: %v", e.Err) }

func (e *PersistError) Unwrap() error { return e.Err }

// Store holds the single assessment document and serializes every mutation
// through Patch.
type Store struct {
	mu        sync.RWMutex
	doc       Document
	version   uint64
	engine    *RulesEngine
	registry  domain.SchemaRegistry
	graph     domain.ReferenceGraph
	persister domain.Persister
	nowFn     func() time.Time
	newID     func() string
	logger    Logger
	builtins  bool

	// pubMu orders saves and notifications. saved is the newest version the
	// persister accepted; pending holds committed sets not yet delivered.
	pubMu   sync.Mutex
	saved   uint64
	pending []ChangeSet

	obsMu     sync.Mutex
	observers map[uint64]Observer
	nextObs   uint64
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithPersister snapshots the document to p after every committed patch.
func WithPersister(p domain.Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithReferenceGraph overrides the default reference table.
func WithReferenceGraph(g domain.ReferenceGraph) StoreOption {
	return func(s *Store) { s.graph = g }
}

// WithIDGenerator overrides item id generation.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStoreClock overrides the commit timestamp source.
func WithStoreClock(fn func() time.Time) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// WithStoreLogger attaches a logger for persistence failures and repairs.
func WithStoreLogger(l Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore constructs an empty store over registry. A nil engine gets the
// default rule set bound to the store's reference graph.
func NewStore(registry domain.SchemaRegistry, engine *RulesEngine, opts ...StoreOption) *Store {
	s := &Store{
		doc:       domain.NewDocument(),
		engine:    engine,
		registry:  registry,
		graph:     domain.DefaultReferenceGraph(),
		nowFn:     func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		logger:    noopLogger{},
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = NewDefaultRulesEngine(s.graph)
		s.builtins = true
	}
	return s
}

// useDefaultRules registers the built-in rules once per store.
func (s *Store) useDefaultRules() {
	if s.builtins {
		return
	}
	registerDefaultRules(s.engine, s.graph)
	s.builtins = true
}

// Registry returns the schema registry the store validates paths against.
func (s *Store) Registry() domain.SchemaRegistry { return s.registry }

// Graph returns the reference table used for cascades.
func (s *Store) Graph() domain.ReferenceGraph { return s.graph }

// Load rehydrates the document from the persister and revalidates it.
func (s *Store) Load(ctx context.Context) (Result, error) {
	if s.persister == nil {
		return Result{}, nil
	}
	doc, err := s.persister.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		doc = domain.NewDocument()
	}
	s.mu.Lock()
	for _, path := range doc.Paths() {
		if _, ok := s.registry.Schema(path); !ok {
			s.logger.Warn("dropping unregistered section", "section", string(path))
			delete(doc, path)
		}
	}
	s.doc = doc
	s.mu.Unlock()
	return s.Revalidate(ctx)
}

// Patch applies fn to a cloned document. When fn succeeds and no rule blocks,
// the clone replaces the live document, the persister is called and observers
// are notified. Any error from fn discards the clone.
func (s *Store) Patch(ctx context.Context, fn func(tx *Transaction) error) (Result, error) {
	result, version, err := s.commit(ctx, fn)
	if err != nil || version == 0 {
		return result, err
	}
	return result, s.publish(ctx, version)
}

// commit runs fn and swaps in the clone under the write lock. It returns the
// new version, or zero when nothing was committed.
func (s *Store) commit(ctx context.Context, fn func(tx *Transaction) error) (Result, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		doc:   s.doc.Clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return Result{}, 0, err
	}
	if len(tx.changes) == 0 {
		return Result{}, 0, nil
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(tx.doc, s.registry), tx.changes)
		if err != nil {
			return Result{}, 0, err
		}
		if res.HasBlocking() {
			return res, 0, RuleViolationError{Result: res}
		}
		result = res
	}

	s.doc = tx.doc
	s.version++
	s.pending = append(s.pending, ChangeSet{Version: s.version, Changes: tx.changes, CommittedAt: tx.now})
	return result, s.version, nil
}

// publish saves the newest committed document unless a later save already
// covered version, then delivers queued change sets in version order.
func (s *Store) publish(ctx context.Context, version uint64) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	var persistErr error
	if s.persister != nil && s.saved < version {
		s.mu.RLock()
		snapshot, latest := s.doc.Clone(), s.version
		s.mu.RUnlock()
		if err := s.persister.Save(ctx, snapshot); err != nil {
			s.logger.Error("persist document failed", "version", latest, "error", err)
			persistErr = &PersistError{Err: err}
		} else {
			s.saved = latest
		}
	}

	s.mu.Lock()
	sets := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, set := range sets {
		s.notify(ctx, set)
	}
	return persistErr
}

// View executes fn against a read-only snapshot of the document.
func (s *Store) View(_ context.Context, fn func(RuleView) error) error {
	s.mu.RLock()
	snapshot := s.doc.Clone()
	s.mu.RUnlock()
	return fn(newTransactionView(snapshot, s.registry))
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Version returns the number of committed patches.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers an observer. The returned function removes it.
func (s *Store) Subscribe(obs Observer) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	s.obsMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) notify(ctx context.Context, set ChangeSet) {
	s.obsMu.Lock()
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.obsMu.Unlock()
	for _, obs := range observers {
		obs.Notify(ctx, set)
	}
}

// Reset replaces the document with an empty one.
func (s *Store) Reset(ctx context.Context) (Result, error) {
	return s.Patch(ctx, func(tx *Transaction) error {
		tx.Reset()
		return nil
	})
}

// Revalidate repairs dangling references and demotes complete items whose
// required fields are no longer satisfied. The returned result lists every
// demoted item as a warning.
func (s *Store) Revalidate(ctx context.Context) (Result, error) {
	var demoted Result
	res, err := s.Patch(ctx, func(tx *Transaction) error {
		if err := tx.repairDangling(); err != nil {
			return err
		}
		demoted = tx.demoteInvalid()
		return nil
	})
	if err != nil && !errors.As(err, new(*PersistError)) {
		return res, err
	}
	demoted.Merge(res)
	return demoted, err
}

// transactionView exposes a document snapshot to rules.
type transactionView struct {
	doc      Document
	registry domain.SchemaRegistry
}

func newTransactionView(doc Document, registry domain.SchemaRegistry) transactionView {
	return transactionView{doc: doc, registry: registry}
}

func (v transactionView) Section(path SectionPath) Section { return v.doc.Section(path).Clone() }

func (v transactionView) Paths() []SectionPath { return v.doc.Paths() }

func (v transactionView) Schema(path SectionPath) (domain.EntitySchema, bool) {
	return v.registry.Schema(path)
}

func (v transactionView) FindByID(id string) (SectionPath, int, bool) { return v.doc.FindByID(id) }
