package storesink

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-admin-reports/pkg/activity"
	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

func TestHookAppendsEntry(t *testing.T) {
	store := rtdb.NewMemoryStore()
	hook := Hook{Store: store}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "booking_accepted",
		Message:    "Accepted trial booking: b1",
		Category:   "booking",
		ObjectID:   "b1",
		Channel:    "admin",
		OccurredAt: time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	snap, _ := store.Get(context.Background(), DefaultPath)
	if snap.Len() != 1 {
		t.Fatalf("expected one log entry, got %d", snap.Len())
	}
	var entry map[string]any
	snap.Each(func(_ string, child rtdb.Snapshot) bool {
		_ = child.Decode(&entry)
		return false
	})
	if entry["type"] != "booking_accepted" || entry["category"] != "booking" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["created_at"] != "2026-08-28T09:30:00Z" {
		t.Fatalf("unexpected created_at %v", entry["created_at"])
	}
}

func TestHookRequiresStore(t *testing.T) {
	if err := (Hook{}).Notify(context.Background(), activity.Event{Verb: "x"}); err == nil {
		t.Fatal("expected error without store")
	}
}
