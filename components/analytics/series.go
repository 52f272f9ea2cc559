package analytics

import (
	"time"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

// TrafficDays is the fixed window of the traffic chart. It does not follow
// the dashboard's selected range.
const TrafficDays = 30

// TrafficPoint is one day of the traffic time series.
type TrafficPoint struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Sessions  int    `json:"sessions"`
	PageViews int    `json:"pageViews"`
}

// TrafficSeries builds the 30-day series from a page view range snapshot:
// distinct session count and raw page view count per calendar day. Days with
// no data still produce a zero point so the axis stays continuous.
func TrafficSeries(pageViews rtdb.Snapshot, now time.Time) []TrafficPoint {
	points := make([]TrafficPoint, 0, TrafficDays)
	for i := TrafficDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := LocalDate(day)
		point := TrafficPoint{
			Date:  date,
			Label: day.Format("Jan 2"),
		}
		sessions := map[string]struct{}{}
		pageViews.Child(date).Each(func(_ string, entries rtdb.Snapshot) bool {
			entries.Each(func(_ string, entry rtdb.Snapshot) bool {
				var pv PageView
				if err := entry.Decode(&pv); err != nil || pv.Timestamp == 0 {
					return true
				}
				point.PageViews++
				if pv.SessionID != "" {
					sessions[pv.SessionID] = struct{}{}
				}
				return true
			})
			return true
		})
		point.Sessions = len(sessions)
		points = append(points, point)
	}
	return points
}
