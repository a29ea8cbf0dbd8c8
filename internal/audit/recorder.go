// Package audit records grant lifecycle events. The authorization engine
// itself is side-effect free; the HTTP layer feeds this recorder with the
// actor and grant ids the engine returns.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Actions recorded in grant_events.
const (
	ActionAssign = "grant.assign"
	ActionRevoke = "grant.revoke"
)

// Event is one grant lifecycle record.
type Event struct {
	ActorID string
	Action  string
	GrantID uuid.UUID
	UserID  string
	Meta    map[string]any
	At      time.Time
}

// execer is the slice of pgxpool.Pool the recorder needs; tests supply a
// fake.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder writes events into grant_events. A nil Recorder drops events,
// so callers need no wiring in tests. Write failures are logged and
// swallowed: an audit hiccup must not fail the admin action it describes.
type Recorder struct {
	db     execer
	logger *slog.Logger
}

// NewRecorder constructs a Recorder over a pgx pool.
func NewRecorder(db execer, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record stores one event. The timestamp defaults to now.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil || r.db == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	meta, err := json.Marshal(event.Meta)
	if err != nil {
		meta = []byte("{}")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO grant_events (actor_id, action, grant_id, user_id, meta, at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ActorID, event.Action, event.GrantID, event.UserID, meta, event.At)
	if err != nil && r.logger != nil {
		r.logger.Error("record grant event",
			slog.String("action", event.Action),
			slog.Any("error", err))
	}
}
