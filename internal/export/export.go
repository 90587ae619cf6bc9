// Package export writes the calculation-ready view of a document to an
// artifact store.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"dwellingcore/internal/blob"
)

const (
	prefix          = "exports"
	defaultSession  = "default"
	timestampLayout = "20060102T150405.000000000Z"
)

// Source yields the resolved document. *core.Service satisfies it.
type Source interface {
	Resolved() map[string]any
}

// Result describes a written export.
type Result struct {
	Info blob.Info `json:"info"`
	URL  string    `json:"url,omitempty"`
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPresign requests a signed URL valid for expiry on each export.
func WithPresign(expiry time.Duration) Option {
	return func(e *Exporter) {
		e.presign = true
		e.expiry = expiry
	}
}

// Exporter writes exports/<session>/<timestamp>.json artifacts.
type Exporter struct {
	store   blob.Store
	session string
	now     func() time.Time
	presign bool
	expiry  time.Duration
}

// New returns an exporter for session. Slashes and blanks in session are
// replaced so the session always maps to one key segment.
func New(store blob.Store, session string, opts ...Option) *Exporter {
	e := &Exporter{
		store:   store,
		session: sessionSegment(session),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sessionSegment(session string) string {
	session = strings.TrimSpace(session)
	session = strings.NewReplacer("/", "-", "\\", "-", " ", "-", "..", "-").Replace(session)
	if session == "" {
		return defaultSession
	}
	return session
}

// Prefix is the key prefix every export of this session shares.
func (e *Exporter) Prefix() string { return path.Join(prefix, e.session) + "/" }

// Export resolves src and stores it. A presign failure other than
// ErrUnsupported is returned with the stored artifact's info.
func (e *Exporter) Export(ctx context.Context, src Source) (Result, error) {
	payload, err := json.MarshalIndent(src.Resolved(), "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode export: %w", err)
	}
	key := e.Prefix() + e.now().UTC().Format(timestampLayout) + ".json"
	info, err := e.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"session": e.session},
	})
	if err != nil {
		return Result{}, fmt.Errorf("store export: %w", err)
	}
	res := Result{Info: info}
	if !e.presign {
		return res, nil
	}
	url, err := e.store.PresignURL(ctx, key, e.expiry)
	switch {
	case errors.Is(err, blob.ErrUnsupported):
		return res, nil
	case err != nil:
		return res, fmt.Errorf("presign export: %w", err)
	}
	res.URL = url
	return res, nil
}

// List returns this session's exports, oldest first.
func (e *Exporter) List(ctx context.Context) ([]blob.Info, error) {
	return e.store.List(ctx, e.Prefix())
}
