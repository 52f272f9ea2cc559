package analytics

import "github.com/goliatone/go-admin-reports/pkg/rtdb"

// FunnelCounts is the lifetime booking funnel: every booking ever submitted
// by status, plus the number of client records converted from bookings. It is
// deliberately not date-filtered.
type FunnelCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Declined  int `json:"declined"`
	Converted int `json:"converted"`
}

// BuildFunnel tallies the bookings collection and counts client records.
func BuildFunnel(bookings, clients rtdb.Snapshot) FunnelCounts {
	var counts FunnelCounts
	bookings.Each(func(_ string, booking rtdb.Snapshot) bool {
		counts.Total++
		switch booking.Child("status").String("") {
		case "pending":
			counts.Pending++
		case "accepted":
			counts.Accepted++
		case "declined":
			counts.Declined++
		}
		return true
	})
	counts.Converted = clients.Len()
	return counts
}
