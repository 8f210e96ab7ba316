// internal/historian/historian.go drains the action log queue into PostgreSQL and marks games
// that go quiet as abandoned.
package historian

import (
	"context"
	"fmt"
	"time"

	"github.com/JulianC775/Gubs/internal/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Source yields queued actions. A nil record means nothing arrived within timeout.
type Source interface {
	PopAction(ctx context.Context, timeout time.Duration) (*cache.ActionRecord, error)
}

// Sink persists batches and flags inactive games.
type Sink interface {
	InsertActions(ctx context.Context, records []cache.ActionRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Service batches actions from Source into Sink.
type Service struct {
	Source Source
	Sink   Sink
	Log    logrus.FieldLogger

	BatchSize     int
	FlushDelay    time.Duration
	PollTimeout   time.Duration
	Inactivity    time.Duration // a game with no actions for this long is marked abandoned
	SweepInterval time.Duration

	batch        []cache.ActionRecord
	lastActivity map[uuid.UUID]time.Time
	now          func() time.Time
}

// New returns a Service with the default batching and inactivity settings.
func New(source Source, sink Sink, logger logrus.FieldLogger) *Service {
	return &Service{
		Source:        source,
		Sink:          sink,
		Log:           logger,
		BatchSize:     20,
		FlushDelay:    500 * time.Millisecond,
		PollTimeout:   time.Second,
		Inactivity:    10 * time.Minute,
		SweepInterval: time.Minute,
		lastActivity:  make(map[uuid.UUID]time.Time),
		now:           time.Now,
	}
}

// Run consumes until ctx is cancelled, then flushes what is left.
func (h *Service) Run(ctx context.Context) error {
	if h.BatchSize <= 0 || h.FlushDelay <= 0 || h.SweepInterval <= 0 {
		return fmt.Errorf("historian: batch size, flush delay and sweep interval must be positive")
	}
	flush := time.NewTicker(h.FlushDelay)
	defer flush.Stop()
	sweep := time.NewTicker(h.SweepInterval)
	defer sweep.Stop()

	h.Log.Info("historian started")
	for {
		select {
		case <-ctx.Done():
			h.flush(context.Background())
			h.Log.Info("historian shutting down")
			return nil
		case <-flush.C:
			h.flush(ctx)
		case <-sweep.C:
			h.sweep(ctx)
		default:
			h.poll(ctx)
		}
	}
}

func (h *Service) poll(ctx context.Context) {
	rec, err := h.Source.PopAction(ctx, h.PollTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.Log.WithError(err).Warn("failed to pop action")
		select {
		case <-ctx.Done():
		case <-time.After(h.PollTimeout):
		}
		return
	}
	if rec == nil {
		return
	}
	h.add(ctx, *rec)
}

func (h *Service) add(ctx context.Context, rec cache.ActionRecord) {
	h.lastActivity[rec.GameID] = h.now()
	h.batch = append(h.batch, rec)
	if len(h.batch) >= h.BatchSize {
		h.flush(ctx)
	}
}

// flush writes the pending batch. A failed batch is kept and retried on the next flush.
func (h *Service) flush(ctx context.Context) {
	if len(h.batch) == 0 {
		return
	}
	if err := h.Sink.InsertActions(ctx, h.batch); err != nil {
		h.Log.WithError(err).WithField("actions", len(h.batch)).Error("failed to flush actions")
		return
	}
	h.Log.WithField("actions", len(h.batch)).Debug("flushed actions")
	h.batch = h.batch[:0]
}

// sweep marks every game idle past Inactivity as abandoned. Ended games are left alone by the
// sink.
func (h *Service) sweep(ctx context.Context) {
	// pending actions must land before their game row is touched
	h.flush(ctx)
	now := h.now()
	for gameID, last := range h.lastActivity {
		if now.Sub(last) <= h.Inactivity {
			continue
		}
		delete(h.lastActivity, gameID)
		changed, err := h.Sink.MarkAbandoned(ctx, gameID)
		if err != nil {
			h.Log.WithError(err).WithField("game", gameID).Warn("failed to mark game abandoned")
			continue
		}
		if changed {
			h.Log.WithField("game", gameID).Info("marked game abandoned due to inactivity")
		}
	}
}
