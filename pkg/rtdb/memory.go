package rtdb

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and the example app.
// Mutations fan out synchronously to overlapping subscriptions.
type MemoryStore struct {
	mu      sync.RWMutex
	root    map[string]any
	subs    map[int]*memorySubscriber
	nextSub int
}

type memorySubscriber struct {
	path string
	fn   func(Snapshot)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: map[string]any{},
		subs: map[int]*memorySubscriber{},
	}
}

// Seed loads an initial tree, replacing existing content. Useful for demos.
func (m *MemoryStore) Seed(tree map[string]any) error {
	normalized, err := normalizeValue(tree)
	if err != nil {
		return err
	}
	m.mu.Lock()
	root, _ := normalized.(map[string]any)
	if root == nil {
		root = map[string]any{}
	}
	m.root = root
	m.mu.Unlock()
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, path string) (Snapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{value: m.valueAt(segments)}, nil
}

// RangeByKey implements Store.
func (m *MemoryStore) RangeByKey(_ context.Context, path, startKey, endKey string) (Snapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	branch, ok := m.valueAt(segments).(map[string]any)
	if !ok {
		return Snapshot{}, nil
	}
	matched := map[string]any{}
	for key, child := range branch {
		if key >= startKey && key <= endKey {
			matched[key] = child
		}
	}
	if len(matched) == 0 {
		return Snapshot{}, nil
	}
	return Snapshot{value: matched}, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, path string, value any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.setAt(segments, normalized)
	m.mu.Unlock()
	m.notify(joinPath(segments))
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, path string, fields map[string]any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized, err := normalizeValue(fields)
	if err != nil {
		return err
	}
	merged, _ := normalized.(map[string]any)
	m.mu.Lock()
	target, ok := m.valueAt(segments).(map[string]any)
	if !ok {
		target = map[string]any{}
	}
	for key, value := range merged {
		target[key] = value
	}
	m.setAt(segments, target)
	m.mu.Unlock()
	m.notify(joinPath(segments))
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(_ context.Context, path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.removeAt(segments)
	m.mu.Unlock()
	m.notify(joinPath(segments))
	return nil
}

// Push implements Store.
func (m *MemoryStore) Push(ctx context.Context, path string, value any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, strings.TrimRight(path, "/")+"/"+id, value); err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe implements Store. The handler fires once with the current value
// and after every overlapping mutation.
func (m *MemoryStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	normalized := joinPath(segments)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = &memorySubscriber{path: normalized, fn: fn}
	current := Snapshot{value: m.valueAt(segments)}
	m.mu.Unlock()

	fn(current)

	cancel := func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
	sub := &Subscription{cancel: cancel}
	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Cancel()
		}()
	}
	return sub, nil
}

func (m *MemoryStore) notify(changedPath string) {
	type delivery struct {
		fn   func(Snapshot)
		snap Snapshot
	}
	m.mu.RLock()
	var deliveries []delivery
	for _, sub := range m.subs {
		if !pathsOverlap(sub.path, changedPath) {
			continue
		}
		segments := strings.Split(sub.path, "/")
		deliveries = append(deliveries, delivery{fn: sub.fn, snap: Snapshot{value: m.valueAt(segments)}})
	}
	m.mu.RUnlock()
	for _, d := range deliveries {
		d.fn(d.snap)
	}
}

func (m *MemoryStore) valueAt(segments []string) any {
	var current any = m.root
	for _, seg := range segments {
		branch, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = branch[seg]
	}
	return current
}

func (m *MemoryStore) setAt(segments []string, value any) {
	branch := m.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := branch[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			branch[seg] = child
		}
		branch = child
	}
	last := segments[len(segments)-1]
	if value == nil {
		delete(branch, last)
		return
	}
	branch[last] = value
}

func (m *MemoryStore) removeAt(segments []string) {
	branch := m.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := branch[seg].(map[string]any)
		if !ok {
			return
		}
		branch = child
	}
	delete(branch, segments[len(segments)-1])
}
