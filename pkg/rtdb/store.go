package rtdb

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidPath reports an empty or malformed document path.
	ErrInvalidPath = errors.New("rtdb: invalid path")
	// ErrClosed reports operations against a closed store.
	ErrClosed = errors.New("rtdb: store is closed")
)

// Store is the realtime document store facade shared by the reporting
// components. Paths are slash-separated (`/trial_bookings/abc`); values are
// JSON-shaped trees.
type Store interface {
	// Get reads the subtree rooted at path. Missing paths yield a
	// non-existent snapshot, not an error.
	Get(ctx context.Context, path string) (Snapshot, error)
	// RangeByKey reads the children of path whose keys fall within the
	// inclusive lexical range [startKey, endKey], in key order.
	RangeByKey(ctx context.Context, path, startKey, endKey string) (Snapshot, error)
	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the document at path, preserving siblings.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove deletes the subtree at path.
	Remove(ctx context.Context, path string) error
	// Push appends value under a generated child id and returns the id.
	Push(ctx context.Context, path string, value any) (string, error)
	// Subscribe invokes fn with the current snapshot of path and again after
	// every change touching the subtree. The subscription stays active until
	// cancelled or the context ends.
	Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error)
}

// Subscription is a handle on an active change feed.
type Subscription struct {
	cancel func()
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, ErrInvalidPath
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, ErrInvalidPath
		}
	}
	return segments, nil
}

func joinPath(segments []string) string {
	return strings.Join(segments, "/")
}

// pathsOverlap reports whether one normalized path is an ancestor of (or equal
// to) the other, meaning a write to one is visible from the other.
func pathsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
