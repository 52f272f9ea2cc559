package admin

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

func seedActivityStore(t *testing.T) *rtdb.MemoryStore {
	t.Helper()
	store := rtdb.NewMemoryStore()
	err := store.Seed(map[string]any{
		"activity_log": map[string]any{
			"a1": map[string]any{
				"type":       "booking_accepted",
				"message":    "Booking accepted for Ana Reyes",
				"category":   "bookings",
				"object_id":  "b1",
				"created_at": "2026-03-10T09:00:00Z",
			},
			"a2": map[string]any{
				"type":       "client_created",
				"message":    "Client created from trial booking",
				"category":   "clients",
				"created_at": "2026-03-10T11:30:00Z",
			},
			"a3": map[string]any{
				"type":       "settings_updated",
				"message":    "Trial bookings disabled",
				"category":   "settings",
				"created_at": "not-a-timestamp",
			},
		},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestStoreActivityFeedRecentNewestFirst(t *testing.T) {
	feed := StoreActivityFeed{
		Store: seedActivityStore(t),
		Clock: func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}

	items, err := feed.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Verb != "client_created" || items[1].Verb != "booking_accepted" {
		t.Fatalf("unexpected order: %q, %q", items[0].Verb, items[1].Verb)
	}
	// the malformed timestamp sorts last with a zero At
	if items[2].Verb != "settings_updated" || !items[2].At.IsZero() {
		t.Fatalf("expected malformed entry last, got %+v", items[2])
	}
	if items[0].Ago != 30*time.Minute {
		t.Fatalf("expected 30m ago, got %s", items[0].Ago)
	}
	if items[1].ObjectID != "b1" {
		t.Fatalf("expected object id carried through, got %q", items[1].ObjectID)
	}
}

func TestStoreActivityFeedRecentLimit(t *testing.T) {
	feed := StoreActivityFeed{Store: seedActivityStore(t)}

	items, err := feed.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Verb != "client_created" {
		t.Fatalf("expected newest entry, got %q", items[0].Verb)
	}
}

func TestStoreActivityFeedRequiresStore(t *testing.T) {
	if _, err := (StoreActivityFeed{}).Recent(context.Background(), 5); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestStoreActivityFeedEmptyLog(t *testing.T) {
	feed := StoreActivityFeed{Store: rtdb.NewMemoryStore()}
	items, err := feed.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty feed, got %d items", len(items))
	}
}
