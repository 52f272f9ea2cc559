package analytics

import (
	"testing"
	"time"
)

func TestRangeForInclusiveWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	window := RangeFor(7, now)
	if window.Start != "2026-03-04" || window.End != "2026-03-10" {
		t.Fatalf("unexpected 7d window: %#v", window)
	}
}

func TestRangeForHandlesMonthBoundary(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)
	window := RangeFor(30, now)
	if window.Start != "2026-02-01" || window.End != "2026-03-02" {
		t.Fatalf("unexpected 30d window: %#v", window)
	}
}

func TestRangeForCollapsesBelowOneDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	window := RangeFor(0, now)
	if window.Start != window.End || window.End != "2026-03-10" {
		t.Fatalf("expected single-day window, got %#v", window)
	}
}

func TestRangeLabel(t *testing.T) {
	if got := RangeLabel(1); got != "Today" {
		t.Fatalf("expected Today, got %q", got)
	}
	if got := RangeLabel(30); got != "Last 30d" {
		t.Fatalf("expected Last 30d, got %q", got)
	}
}
