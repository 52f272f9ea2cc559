package admin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-admin-reports/pkg/activity/storesink"
	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

// DefaultActivityLimit caps the feed when callers pass limit <= 0.
const DefaultActivityLimit = 10

// ActivityItem is a recent activity entry displayed on the admin page.
type ActivityItem struct {
	Verb     string        `json:"verb"`
	Message  string        `json:"message"`
	Category string        `json:"category"`
	ObjectID string        `json:"object_id,omitempty"`
	At       time.Time     `json:"at"`
	Ago      time.Duration `json:"-"`
}

// ActivityFeed fetches recent activity entries, newest first.
type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]ActivityItem, error)
}

// StoreActivityFeed reads the activity log collection from the realtime store.
type StoreActivityFeed struct {
	Store rtdb.Store
	// Path overrides the storesink default when set.
	Path string
	// Clock overrides time.Now for relative timestamps.
	Clock func() time.Time
}

type activityEntry struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	ObjectID  string `json:"object_id"`
	CreatedAt string `json:"created_at"`
}

// Recent implements ActivityFeed. Entries with malformed timestamps sort last.
func (f StoreActivityFeed) Recent(ctx context.Context, limit int) ([]ActivityItem, error) {
	if f.Store == nil {
		return nil, fmt.Errorf("admin: activity feed requires a store")
	}
	path := f.Path
	if path == "" {
		path = storesink.DefaultPath
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	snap, err := f.Store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("admin: read activity log: %w", err)
	}

	now := time.Now()
	if f.Clock != nil {
		now = f.Clock()
	}
	items := make([]ActivityItem, 0, snap.Len())
	snap.Each(func(_ string, child rtdb.Snapshot) bool {
		var entry activityEntry
		if err := child.Decode(&entry); err != nil {
			return true
		}
		item := ActivityItem{
			Verb:     entry.Type,
			Message:  entry.Message,
			Category: entry.Category,
			ObjectID: entry.ObjectID,
		}
		if at, err := time.Parse(time.RFC3339, entry.CreatedAt); err == nil {
			item.At = at
			item.Ago = now.Sub(at)
		}
		items = append(items, item)
		return true
	})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].At.After(items[j].At)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
