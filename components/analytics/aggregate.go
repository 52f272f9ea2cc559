package analytics

import (
	"fmt"
	"math"
	"net/url"
	"sort"
)

// DirectReferrer is the grouping label for page views without a usable
// referrer URL.
const DirectReferrer = "Direct"

// TopN is the breakdown list size for pages and referrers.
const TopN = 10

// BarRow is one entry in a top-N breakdown; Percent is the bar width relative
// to the largest count.
type BarRow struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// UniqueVisitors counts distinct visitor ids across page views, falling back
// to the session id when a record carries no visitor id. Never exceeds the
// page view count.
func UniqueVisitors(pageViews []PageView) int {
	seen := map[string]struct{}{}
	for _, pv := range pageViews {
		switch {
		case pv.VisitorID != "":
			seen[pv.VisitorID] = struct{}{}
		case pv.SessionID != "":
			seen[pv.SessionID] = struct{}{}
		}
	}
	return len(seen)
}

// AvgSessionDuration is the mean of defined session durations rounded to the
// nearest second; zero when no session has a duration.
func AvgSessionDuration(sessions []Session) int {
	var sum float64
	var n int
	for _, s := range sessions {
		if s.Duration > 0 {
			sum += s.Duration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// BounceRate is the percentage of sessions that viewed at most one page or
// lasted under ten seconds, rounded to the nearest integer. Zero on an empty
// session set; always within [0,100].
func BounceRate(sessions []Session) int {
	if len(sessions) == 0 {
		return 0
	}
	bounces := 0
	for _, s := range sessions {
		pages := s.Pages
		if pages == 0 {
			pages = 1
		}
		if pages <= 1 || s.Duration < 10 {
			bounces++
		}
	}
	return int(math.Round(float64(bounces) / float64(len(sessions)) * 100))
}

// FormatDuration renders seconds as `42s` or `3m 5s`.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// TopPages groups page views by page key and returns the ten most viewed,
// sorted non-increasing by count. Ties keep first-seen input order.
func TopPages(pageViews []PageView) []BarRow {
	counts := map[string]int{}
	var order []string
	for _, pv := range pageViews {
		key := pv.PageKey()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	return topRows(order, counts)
}

// TopReferrers groups page views by referrer hostname — Direct when absent or
// unparsable — and returns the top ten.
func TopReferrers(pageViews []PageView) []BarRow {
	counts := map[string]int{}
	var order []string
	for _, pv := range pageViews {
		key := referrerHost(pv.Referrer)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	return topRows(order, counts)
}

func referrerHost(referrer string) string {
	if referrer == "" {
		return DirectReferrer
	}
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return DirectReferrer
	}
	return parsed.Hostname()
}

func topRows(order []string, counts map[string]int) []BarRow {
	rows := make([]BarRow, 0, len(order))
	for _, label := range order {
		rows = append(rows, BarRow{Label: label, Count: counts[label]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	if len(rows) > TopN {
		rows = rows[:TopN]
	}
	if len(rows) == 0 {
		return rows
	}
	max := rows[0].Count
	for i := range rows {
		rows[i].Percent = int(math.Round(float64(rows[i].Count) / float64(max) * 100))
	}
	return rows
}
