package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"dwellingcore/internal/core"
	"dwellingcore/pkg/domain"
)

type feedOptions struct {
	buffer       int
	writeTimeout time.Duration
}

// feedMessage is the envelope written to change feed clients.
type feedMessage struct {
	Type      string            `json:"type"`
	Version   uint64            `json:"version"`
	ChangeSet *domain.ChangeSet `json:"changeset,omitempty"`
}

// changes upgrades to a websocket and forwards every committed change set.
// The first message reports the current version.
func (s *Server) changes(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("changes: websocket accept", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// Clients never send; CloseRead handles their close frames and cancels ctx.
	ctx := conn.CloseRead(r.Context())

	sets := make(chan domain.ChangeSet, s.feed.buffer)
	overflow := make(chan struct{})
	var once sync.Once
	cancel := s.svc.Store().Subscribe(core.ObserverFunc(func(_ context.Context, set domain.ChangeSet) {
		select {
		case sets <- set:
		default:
			once.Do(func() { close(overflow) })
		}
	}))
	defer cancel()

	if err := s.send(ctx, conn, feedMessage{Type: "hello", Version: s.svc.Store().Version()}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-overflow:
			_ = conn.Close(websocket.StatusPolicyViolation, "change feed client too slow")
			return
		case set := <-sets:
			if err := s.send(ctx, conn, feedMessage{Type: "changeset", Version: set.Version, ChangeSet: &set}); err != nil {
				if websocket.CloseStatus(err) == -1 {
					s.logger.Debug("changes: write failed", "error", err)
				}
				return
			}
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg feedMessage) error {
	ctx, cancel := context.WithTimeout(ctx, s.feed.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
