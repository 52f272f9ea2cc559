package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

// DefaultSpinnerDelay is how long the reporter stays marked busy after a
// refresh lands, covering chart animation on the client.
const DefaultSpinnerDelay = 3 * time.Second

// DefaultRangeDays is the range used when a refresh asks for zero days.
const DefaultRangeDays = 7

var errMissingStore = errors.New("analytics: store not configured")

// Options configures the Reporter. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Store        rtdb.Store
	Charts       *ChartRenderer
	Logger       *zap.Logger
	Telemetry    Telemetry
	Clock        func() time.Time
	SpinnerDelay time.Duration
	// OnLiveUpdate fires with a fresh live-visitor view on every presence
	// change while the reporter is initialized.
	OnLiveUpdate func(LiveView)
}

// Reporter aggregates site analytics out of the realtime store into a Report
// view, and maintains a live-visitor feed while initialized.
type Reporter struct {
	opts Options

	mu         sync.Mutex
	liveSub    *rtdb.Subscription
	live       LiveView
	report     *Report
	generation uint64
	busy       bool
	spinner    *time.Timer
}

// NewReporter builds a Reporter with safe defaults.
func NewReporter(opts Options) *Reporter {
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SpinnerDelay <= 0 {
		opts.SpinnerDelay = DefaultSpinnerDelay
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Reporter{opts: opts}
}

// Init starts the live-visitor subscription. Calling Init on an initialized
// reporter is a no-op, so repeated panel mounts never stack subscriptions.
func (r *Reporter) Init(ctx context.Context) error {
	if r.opts.Store == nil {
		return errMissingStore
	}
	r.mu.Lock()
	if r.liveSub != nil {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	sub, err := r.opts.Store.Subscribe(ctx, PresencePath, r.onPresence)
	if err != nil {
		return fmt.Errorf("analytics: subscribe presence: %w", err)
	}

	r.mu.Lock()
	if r.liveSub != nil {
		// lost the race with a concurrent Init
		r.mu.Unlock()
		sub.Cancel()
		return nil
	}
	r.liveSub = sub
	r.mu.Unlock()

	r.opts.Telemetry.Record(ctx, "analytics.live.subscribe", map[string]any{"path": PresencePath})
	return nil
}

func (r *Reporter) onPresence(snap rtdb.Snapshot) {
	view := BuildLiveView(snap, r.opts.Clock())
	r.mu.Lock()
	r.live = view
	notify := r.opts.OnLiveUpdate
	r.mu.Unlock()
	if notify != nil {
		notify(view)
	}
}

// Live returns the most recent live-visitor view.
func (r *Reporter) Live() LiveView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Report returns the last completed report, or nil before the first refresh.
func (r *Reporter) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Busy reports whether a refresh landed within the spinner window.
func (r *Reporter) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Refresh rebuilds the report for the trailing day window. Page view and
// session range reads run concurrently and both must succeed; the traffic
// series, funnel, and chart renders degrade their own section on failure
// instead of failing the refresh. Concurrent refreshes are safe: only the
// most recently started one publishes its report.
func (r *Reporter) Refresh(ctx context.Context, days int) (*Report, error) {
	if r.opts.Store == nil {
		return nil, errMissingStore
	}
	if days <= 0 {
		days = DefaultRangeDays
	}

	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.busy = true
	if r.spinner != nil {
		r.spinner.Stop()
	}
	r.mu.Unlock()

	now := r.opts.Clock()
	window := RangeFor(days, now)
	started := now

	var pvSnap, sessSnap rtdb.Snapshot
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		snap, err := r.opts.Store.RangeByKey(grpCtx, PageViewsPath, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("analytics: page views %s..%s: %w", window.Start, window.End, err)
		}
		pvSnap = snap
		return nil
	})
	grp.Go(func() error {
		snap, err := r.opts.Store.RangeByKey(grpCtx, SessionsPath, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("analytics: sessions %s..%s: %w", window.Start, window.End, err)
		}
		sessSnap = snap
		return nil
	})
	if err := grp.Wait(); err != nil {
		r.settleAfterSpinner(ctx)
		return nil, err
	}

	pageViews := FlattenPageViews(pvSnap)
	sessions := FlattenSessions(sessSnap)

	report := &Report{
		Range:      window,
		RangeDays:  days,
		RangeLabel: RangeLabel(days),
		KPIs: KPIs{
			PageViews:       len(pageViews),
			UniqueVisitors:  UniqueVisitors(pageViews),
			AvgDurationSecs: AvgSessionDuration(sessions),
			AvgDuration:     FormatDuration(AvgSessionDuration(sessions)),
			BounceRate:      BounceRate(sessions),
			SessionCount:    len(sessions),
		},
		TopPages:    TopPages(pageViews),
		Referrers:   TopReferrers(pageViews),
		Sources:     SourceCounts(pageViews),
		Devices:     DeviceCounts(sessions, pageViews),
		Sections:    map[string]Section{},
		GeneratedAt: now,
	}

	r.buildTraffic(ctx, report, now)
	r.buildFunnel(ctx, report)
	r.renderCharts(report)

	stale := false
	r.mu.Lock()
	if gen == r.generation {
		r.report = report
	} else {
		stale = true
	}
	r.mu.Unlock()

	if stale {
		r.opts.Logger.Debug("discarding superseded report", zap.Int("days", days))
	}
	r.opts.Telemetry.Record(ctx, "analytics.report.refresh", map[string]any{
		"days":        days,
		"page_views":  report.KPIs.PageViews,
		"sessions":    report.KPIs.SessionCount,
		"duration_ms": r.opts.Clock().Sub(started).Milliseconds(),
		"superseded":  stale,
	})
	r.settleAfterSpinner(ctx)
	return report, nil
}

func (r *Reporter) buildTraffic(ctx context.Context, report *Report, now time.Time) {
	window := RangeFor(TrafficDays, now)
	snap, err := r.opts.Store.RangeByKey(ctx, PageViewsPath, window.Start, window.End)
	if err != nil {
		r.degrade(report, SectionTraffic, err)
		return
	}
	report.Traffic = TrafficSeries(snap, now)
	report.Sections[SectionTraffic] = Section{State: SectionReady}
}

func (r *Reporter) buildFunnel(ctx context.Context, report *Report) {
	bookings, err := r.opts.Store.Get(ctx, BookingsPath)
	if err != nil {
		r.degrade(report, SectionFunnel, err)
		return
	}
	clients, err := r.opts.Store.Get(ctx, ClientsPath)
	if err != nil {
		r.degrade(report, SectionFunnel, err)
		return
	}
	report.Funnel = BuildFunnel(bookings, clients)
	report.Sections[SectionFunnel] = Section{State: SectionReady}
}

func (r *Reporter) renderCharts(report *Report) {
	if report.SectionState(SectionTraffic).State == SectionReady {
		html, err := r.opts.Charts.TrafficChart(report.Traffic)
		if err != nil {
			r.degrade(report, SectionTraffic, err)
		} else {
			report.Charts.Traffic = html
		}
	}
	if html, err := r.opts.Charts.SourcesChart(report.Sources); err != nil {
		r.degrade(report, SectionSources, err)
	} else {
		report.Charts.Sources = html
		report.Sections[SectionSources] = Section{State: SectionReady}
	}
	if html, err := r.opts.Charts.DevicesChart(report.Devices); err != nil {
		r.degrade(report, SectionDevices, err)
	} else {
		report.Charts.Devices = html
		report.Sections[SectionDevices] = Section{State: SectionReady}
	}
	if report.SectionState(SectionFunnel).State == SectionReady {
		html, err := r.opts.Charts.FunnelChart(report.Funnel)
		if err != nil {
			r.degrade(report, SectionFunnel, err)
		} else {
			report.Charts.Funnel = html
		}
	}
}

func (r *Reporter) degrade(report *Report, section string, err error) {
	report.Sections[section] = Section{State: SectionDegraded, Reason: err.Error()}
	r.opts.Logger.Warn("report section degraded",
		zap.String("section", section),
		zap.Error(err))
}

func (r *Reporter) settleAfterSpinner(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner != nil {
		r.spinner.Stop()
	}
	r.spinner = time.AfterFunc(r.opts.SpinnerDelay, func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
		r.opts.Telemetry.Record(ctx, "analytics.report.settled", nil)
	})
}

// Teardown cancels the live subscription and drops rendered charts. The
// reporter can be re-initialized afterwards.
func (r *Reporter) Teardown() {
	r.mu.Lock()
	sub := r.liveSub
	r.liveSub = nil
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
	r.busy = false
	r.mu.Unlock()

	sub.Cancel()
	r.opts.Charts.Flush()
	r.opts.Telemetry.Record(context.Background(), "analytics.live.unsubscribe", nil)
}
