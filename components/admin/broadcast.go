package admin

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-admin-reports/components/analytics"
)

// LiveUpdate is one live-visitor push: the current count and table plus the
// emission time.
type LiveUpdate struct {
	Count  int                 `json:"count"`
	Rows   []analytics.LiveRow `json:"rows"`
	SentAt time.Time           `json:"sentAt"`
}

// LiveBroadcast fans live-visitor updates out to in-process subscribers and
// serves them over WebSocket and SSE. Slow subscribers drop updates rather
// than stalling the feed; only the latest view matters.
type LiveBroadcast struct {
	mu   sync.RWMutex
	subs map[int]chan LiveUpdate
	next int
}

// NewLiveBroadcast creates an empty broadcast.
func NewLiveBroadcast() *LiveBroadcast {
	return &LiveBroadcast{subs: make(map[int]chan LiveUpdate)}
}

// Publish pushes a live view to every subscriber. Wire it to the reporter's
// OnLiveUpdate callback.
func (b *LiveBroadcast) Publish(view analytics.LiveView) {
	update := LiveUpdate{Count: view.Count, Rows: view.Rows, SentAt: time.Now()}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// Subscribe returns a channel of live updates and a cancel func.
func (b *LiveBroadcast) Subscribe() (<-chan LiveUpdate, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan LiveUpdate, 8)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams live updates as JSON.
func (b *LiveBroadcast) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	updates, cancel := b.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for live updates.
func (b *LiveBroadcast) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	updates, cancel := b.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(update); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
