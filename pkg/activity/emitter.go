package activity

import (
	"context"
	"errors"
	"time"
)

// Event is a single audit log entry emitted by admin operations.
type Event struct {
	// Verb identifies the operation (booking_accepted, client_created, ...).
	Verb string
	// Message is the human-readable line shown in the activity feed.
	Message string
	// Category groups events (booking, client, settings).
	Category string
	ActorID  string
	ObjectID string
	Channel  string
	Metadata map[string]any
	// OccurredAt defaults to the emit time when zero.
	OccurredAt time.Time
}

// Hook receives emitted events. Implementations must be safe for concurrent use.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks is an ordered hook list; every hook sees every event.
type Hooks []Hook

// Config controls emitter behavior.
type Config struct {
	Enabled bool
	// Channel stamps events without one; defaults to "admin".
	Channel string
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Emitter fans audit events out to hooks. A disabled emitter, or one without
// hooks, drops events silently.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. Nil hooks disable it regardless of config.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = "admin"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether events will be delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit delivers the event to every hook, joining hook errors. Events without
// a verb are dropped.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	event = NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.cfg.Clock()
	}
	var errs error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
