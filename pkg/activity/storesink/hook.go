// Package storesink appends activity events to the realtime document store,
// giving the admin panel's activity feed a durable default backend.
package storesink

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-admin-reports/pkg/activity"
	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

// DefaultPath is the collection activity entries are appended to.
const DefaultPath = "/activity_log"

// Hook writes activity events through Store.Push.
type Hook struct {
	Store rtdb.Store
	// Path overrides DefaultPath when set.
	Path string
}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Store == nil {
		return fmt.Errorf("storesink: store is required")
	}
	path := h.Path
	if path == "" {
		path = DefaultPath
	}
	entry := map[string]any{
		"type":       event.Verb,
		"message":    event.Message,
		"category":   event.Category,
		"channel":    event.Channel,
		"created_at": event.OccurredAt.Format(time.RFC3339),
	}
	if event.ActorID != "" {
		entry["actor_id"] = event.ActorID
	}
	if event.ObjectID != "" {
		entry["object_id"] = event.ObjectID
	}
	if len(event.Metadata) > 0 {
		entry["metadata"] = event.Metadata
	}
	if _, err := h.Store.Push(ctx, path, entry); err != nil {
		return fmt.Errorf("storesink: append activity entry: %w", err)
	}
	return nil
}
