package activity

import (
	"context"
	"strings"
)

// HookFunc adapts a plain function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify implements Hook.
func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NormalizeEvent trims identifier fields and clones the metadata map so hooks
// cannot mutate the caller's event.
func NormalizeEvent(event Event) Event {
	event.Verb = strings.TrimSpace(event.Verb)
	event.Message = strings.TrimSpace(event.Message)
	event.Category = strings.TrimSpace(event.Category)
	event.ActorID = strings.TrimSpace(event.ActorID)
	event.ObjectID = strings.TrimSpace(event.ObjectID)
	if event.Metadata != nil {
		cloned := make(map[string]any, len(event.Metadata))
		for key, value := range event.Metadata {
			cloned[key] = value
		}
		event.Metadata = cloned
	}
	return event
}
