package rtdb

import "testing"

func TestSnapshotChildAndKeys(t *testing.T) {
	snap, err := NewSnapshot(map[string]any{
		"2026-08-02": map[string]any{"s1": map[string]any{"duration": 12}},
		"2026-08-01": map[string]any{"s2": map[string]any{"duration": 40}},
	})
	if err != nil {
		t.Fatalf("new snapshot: %v", err)
	}
	keys := snap.Keys()
	if len(keys) != 2 || keys[0] != "2026-08-01" {
		t.Fatalf("expected lexically sorted keys, got %v", keys)
	}
	if got := snap.Child("2026-08-02").Child("s1").Child("duration").Float(0); got != 12 {
		t.Fatalf("expected duration 12, got %v", got)
	}
	if snap.Child("missing").Exists() {
		t.Fatal("missing child should not exist")
	}
}

func TestSnapshotDecode(t *testing.T) {
	snap, _ := NewSnapshot(map[string]any{"duration": 30, "pages": 2, "device": "mobile"})
	var out struct {
		Duration float64 `json:"duration"`
		Pages    int     `json:"pages"`
		Device   string  `json:"device"`
	}
	if err := snap.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Duration != 30 || out.Pages != 2 || out.Device != "mobile" {
		t.Fatalf("unexpected decode result: %+v", out)
	}
}

func TestSnapshotInt(t *testing.T) {
	snap, _ := NewSnapshot(map[string]any{"pages": 3, "duration": 9.7})
	if got := snap.Child("pages").Int(0); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := snap.Child("duration").Int(0); got != 9 {
		t.Fatalf("expected truncation to 9, got %d", got)
	}
	if got := snap.Child("missing").Int(42); got != 42 {
		t.Fatalf("expected fallback 42, got %d", got)
	}
}

func TestSnapshotScalarFallbacks(t *testing.T) {
	var empty Snapshot
	if empty.Bool(true) != true || empty.String("x") != "x" || empty.Float(7) != 7 || empty.Int(5) != 5 {
		t.Fatal("expected fallbacks for non-existent snapshot")
	}
	if empty.Decode(&struct{}{}) == nil {
		t.Fatal("decode of non-existent snapshot should error")
	}
}
