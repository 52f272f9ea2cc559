package analytics

import "time"

// Section states mark how each independently-fetched block of the report
// fared. A degraded section carries its failure reason while the rest of the
// report stays usable.
const (
	SectionReady    = "ready"
	SectionDegraded = "degraded"
)

// Report section names.
const (
	SectionTraffic = "traffic"
	SectionFunnel  = "funnel"
	SectionSources = "sources"
	SectionDevices = "devices"
)

// Section is the health of one report block.
type Section struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// KPIs are the headline numbers for the selected range.
type KPIs struct {
	PageViews       int    `json:"pageViews"`
	UniqueVisitors  int    `json:"uniqueVisitors"`
	AvgDuration     string `json:"avgDuration"`
	BounceRate      int    `json:"bounceRate"`
	SessionCount    int    `json:"sessionCount"`
	AvgDurationSecs int    `json:"avgDurationSecs"`
}

// Report is the fully aggregated analytics view for one date range.
type Report struct {
	Range       DateRange          `json:"range"`
	RangeDays   int                `json:"rangeDays"`
	RangeLabel  string             `json:"rangeLabel"`
	KPIs        KPIs               `json:"kpis"`
	TopPages    []BarRow           `json:"topPages"`
	Referrers   []BarRow           `json:"referrers"`
	Sources     []SourceCount      `json:"sources"`
	Devices     []DeviceCount      `json:"devices"`
	Traffic     []TrafficPoint     `json:"traffic"`
	Funnel      FunnelCounts       `json:"funnel"`
	Charts      ReportCharts       `json:"-"`
	Sections    map[string]Section `json:"sections"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// ReportCharts carries the server-rendered chart markup.
type ReportCharts struct {
	Traffic string
	Sources string
	Devices string
	Funnel  string
}

// SectionState returns the recorded section health, defaulting to ready.
func (r Report) SectionState(name string) Section {
	if s, ok := r.Sections[name]; ok {
		return s
	}
	return Section{State: SectionReady}
}
