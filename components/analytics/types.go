package analytics

// Store paths consumed by the reporter. Page views and sessions are keyed by
// local date so a date window is a lexical key-range scan.
const (
	PageViewsPath = "/site_analytics/pageViews"
	SessionsPath  = "/site_analytics/sessions"
	PresencePath  = "/site_analytics/presence"
	BookingsPath  = "/trial_bookings"
	ClientsPath   = "/clients"
)

// PageView is a single tracked page view. Date and Slug are tagged from the
// tree keys during flattening, not stored on the record.
type PageView struct {
	Timestamp int64  `json:"timestamp"`
	VisitorID string `json:"visitorId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Page      string `json:"page,omitempty"`
	Path      string `json:"path,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Source    string `json:"source,omitempty"`
	Device    string `json:"device,omitempty"`

	Date string `json:"-"`
	Slug string `json:"-"`
}

// PageKey resolves the page identity used for grouping: the slug tag first,
// then the record's own page or path fields, defaulting to the root page.
func (pv PageView) PageKey() string {
	switch {
	case pv.Slug != "":
		return pv.Slug
	case pv.Page != "":
		return pv.Page
	case pv.Path != "":
		return pv.Path
	default:
		return "/"
	}
}

// Session is a tracked visit. Duration is in seconds.
type Session struct {
	Duration  float64 `json:"duration,omitempty"`
	Pages     int     `json:"pages,omitempty"`
	Device    string  `json:"device,omitempty"`
	UserAgent string  `json:"userAgent,omitempty"`

	Date string `json:"-"`
}

// Presence is a heartbeat record for a currently connected visitor. Either
// Timestamp or LastSeen carries the last-seen instant in epoch milliseconds.
type Presence struct {
	Timestamp int64  `json:"timestamp,omitempty"`
	LastSeen  int64  `json:"lastSeen,omitempty"`
	Page      string `json:"page,omitempty"`
	Device    string `json:"device,omitempty"`
}

// LastSeenMillis returns the freshest heartbeat instant on the record.
func (p Presence) LastSeenMillis() int64 {
	if p.Timestamp != 0 {
		return p.Timestamp
	}
	return p.LastSeen
}
