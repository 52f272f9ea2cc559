package analytics

import (
	"math"
	"time"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

// LiveWindow is the freshness horizon: a visitor is live while their last
// heartbeat is younger than this.
const LiveWindow = 60 * time.Second

// LiveRow is one currently active visitor.
type LiveRow struct {
	Page       string `json:"page"`
	Device     string `json:"device"`
	SecondsAgo int    `json:"secondsAgo"`
}

// LiveView is the live visitor count plus table, recomputed from scratch on
// every presence change.
type LiveView struct {
	Count int       `json:"count"`
	Rows  []LiveRow `json:"rows"`
}

// BuildLiveView filters a presence snapshot to heartbeats inside the live
// window. Rows follow the snapshot's key order.
func BuildLiveView(presence rtdb.Snapshot, now time.Time) LiveView {
	nowMillis := now.UnixMilli()
	view := LiveView{}
	presence.Each(func(_ string, entry rtdb.Snapshot) bool {
		var p Presence
		if err := entry.Decode(&p); err != nil {
			return true
		}
		age := nowMillis - p.LastSeenMillis()
		if age >= LiveWindow.Milliseconds() {
			return true
		}
		page := p.Page
		if page == "" {
			page = "/"
		}
		device := p.Device
		if device == "" {
			device = "Unknown"
		}
		view.Rows = append(view.Rows, LiveRow{
			Page:       page,
			Device:     device,
			SecondsAgo: int(math.Round(float64(age) / 1000)),
		})
		return true
	})
	view.Count = len(view.Rows)
	return view
}
