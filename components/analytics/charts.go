package analytics

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const chartHeight = "360px"

// ChartRenderer turns aggregated report data into server-rendered ECharts
// HTML. Rendered markup is memoized per data hash; the reporter flushes the
// cache on teardown so stale charts never outlive the view.
type ChartRenderer struct {
	theme string

	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]chartEntry
}

type chartEntry struct {
	html    string
	expires time.Time
}

// ChartOption customizes the renderer.
type ChartOption func(*ChartRenderer)

// WithChartTheme overrides the default ECharts theme.
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartTTL overrides the render cache TTL; zero disables caching.
func WithChartTTL(ttl time.Duration) ChartOption {
	return func(r *ChartRenderer) {
		r.ttl = ttl
	}
}

// NewChartRenderer builds a renderer with a five minute render cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		theme:   types.ThemeWesteros,
		ttl:     5 * time.Minute,
		entries: map[string]chartEntry{},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// TrafficChart renders the 30-day visitors/page-views line chart.
func (r *ChartRenderer) TrafficChart(points []TrafficPoint) (string, error) {
	return r.cached("traffic", points, func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions("Traffic", "Last 30 days")...)
		labels := make([]string, len(points))
		visitors := make([]opts.LineData, len(points))
		views := make([]opts.LineData, len(points))
		for i, p := range points {
			labels[i] = p.Label
			visitors[i] = opts.LineData{Value: p.Sessions}
			views[i] = opts.LineData{Value: p.PageViews}
		}
		line.SetXAxis(labels)
		line.AddSeries("Visitors", visitors)
		line.AddSeries("Page Views", views)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	})
}

// SourcesChart renders the traffic source doughnut.
func (r *ChartRenderer) SourcesChart(sources []SourceCount) (string, error) {
	return r.cached("sources", sources, func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions("Traffic Sources", "")...)
		data := make([]opts.PieData, len(sources))
		for i, s := range sources {
			data[i] = opts.PieData{Name: s.Name, Value: s.Count}
		}
		pie.AddSeries("Sources", data)
		return renderChart(pie)
	})
}

// DevicesChart renders the device breakdown doughnut.
func (r *ChartRenderer) DevicesChart(devices []DeviceCount) (string, error) {
	return r.cached("devices", devices, func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions("Devices", "")...)
		data := make([]opts.PieData, len(devices))
		for i, d := range devices {
			data[i] = opts.PieData{Name: d.Label, Value: d.Count}
		}
		pie.AddSeries("Devices", data)
		return renderChart(pie)
	})
}

// FunnelChart renders the booking funnel bar chart.
func (r *ChartRenderer) FunnelChart(funnel FunnelCounts) (string, error) {
	return r.cached("funnel", funnel, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions("Booking Funnel", "All time")...)
		bar.SetXAxis([]string{"Submitted", "Pending", "Accepted", "Declined", "Converted"})
		bar.AddSeries("Count", []opts.BarData{
			{Value: funnel.Total},
			{Value: funnel.Pending},
			{Value: funnel.Accepted},
			{Value: funnel.Declined},
			{Value: funnel.Converted},
		})
		return renderChart(bar)
	})
}

// Flush drops every cached chart. The next render starts fresh.
func (r *ChartRenderer) Flush() {
	r.mu.Lock()
	r.entries = map[string]chartEntry{}
	r.mu.Unlock()
}

func (r *ChartRenderer) cached(kind string, data any, render func() (string, error)) (string, error) {
	if r.ttl <= 0 {
		return render()
	}
	key := kind + ":" + dataHash(data)
	r.mu.Lock()
	entry, ok := r.entries[key]
	r.mu.Unlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.entries[key] = chartEntry{html: html, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()
	return html, nil
}

func (r *ChartRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  r.theme,
			Width:  "100%",
			Height: chartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func dataHash(data any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
