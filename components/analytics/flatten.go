package analytics

import "github.com/goliatone/go-admin-reports/pkg/rtdb"

// FlattenPageViews projects a date→slug→id tree into a flat sequence, tagging
// each record with its source date and slug. Records without a timestamp are
// dropped; everything else is kept as-is. The output preserves the store's
// lexical key order, which is not chronological within a date.
func FlattenPageViews(snap rtdb.Snapshot) []PageView {
	var out []PageView
	snap.Each(func(date string, slugs rtdb.Snapshot) bool {
		slugs.Each(func(slug string, entries rtdb.Snapshot) bool {
			entries.Each(func(_ string, entry rtdb.Snapshot) bool {
				var pv PageView
				if err := entry.Decode(&pv); err != nil {
					return true
				}
				if pv.Timestamp == 0 {
					return true
				}
				pv.Date = date
				pv.Slug = slug
				out = append(out, pv)
				return true
			})
			return true
		})
		return true
	})
	return out
}

// FlattenSessions projects a date→id tree into a flat sequence tagged with
// the source date.
func FlattenSessions(snap rtdb.Snapshot) []Session {
	var out []Session
	snap.Each(func(date string, entries rtdb.Snapshot) bool {
		entries.Each(func(_ string, entry rtdb.Snapshot) bool {
			var s Session
			if err := entry.Decode(&s); err != nil {
				return true
			}
			s.Date = date
			out = append(out, s)
			return true
		})
		return true
	})
	return out
}
