package analytics

import (
	"testing"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

func TestBuildFunnelTalliesLifetimeCounts(t *testing.T) {
	bookings, err := rtdb.NewSnapshot(map[string]any{
		"b1": map[string]any{"status": "pending"},
		"b2": map[string]any{"status": "accepted"},
		"b3": map[string]any{"status": "accepted"},
		"b4": map[string]any{"status": "declined"},
		"b5": map[string]any{"status": "cancelled"},
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	clients, err := rtdb.NewSnapshot(map[string]any{
		"c1": map[string]any{"childName": "Mia"},
		"c2": map[string]any{"childName": "Leo"},
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	counts := BuildFunnel(bookings, clients)
	want := FunnelCounts{Total: 5, Pending: 1, Accepted: 2, Declined: 1, Converted: 2}
	if counts != want {
		t.Fatalf("funnel = %#v, want %#v", counts, want)
	}
}

func TestBuildFunnelEmpty(t *testing.T) {
	empty, err := rtdb.NewSnapshot(nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if counts := BuildFunnel(empty, empty); counts != (FunnelCounts{}) {
		t.Fatalf("expected zero funnel, got %#v", counts)
	}
}
