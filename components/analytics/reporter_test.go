package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

var reportNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedAnalyticsStore(t *testing.T) *rtdb.MemoryStore {
	t.Helper()
	store := rtdb.NewMemoryStore()
	err := store.Seed(map[string]any{
		"site_analytics": map[string]any{
			"pageViews": map[string]any{
				"2026-03-09": map[string]any{
					"home": map[string]any{
						"pv1": map[string]any{"timestamp": 1, "visitorId": "v1", "source": "google", "referrer": "https://www.google.com/"},
					},
				},
				"2026-03-10": map[string]any{
					"home": map[string]any{
						"pv2": map[string]any{"timestamp": 2, "visitorId": "v1"},
						"pv3": map[string]any{"timestamp": 3, "visitorId": "v2", "sessionId": "s2"},
					},
					"pricing": map[string]any{
						"pv4": map[string]any{"timestamp": 4, "sessionId": "s2"},
					},
				},
			},
			"sessions": map[string]any{
				"2026-03-10": map[string]any{
					"s1": map[string]any{"duration": 45, "pages": 3, "device": "mobile"},
					"s2": map[string]any{"duration": 5, "pages": 1, "device": "desktop"},
				},
			},
		},
		"trial_bookings": map[string]any{
			"b1": map[string]any{"status": "pending"},
			"b2": map[string]any{"status": "accepted"},
		},
		"clients": map[string]any{
			"c1": map[string]any{"childName": "Mia"},
		},
	})
	require.NoError(t, err)
	return store
}

type flakyStore struct {
	rtdb.Store
	failGet   map[string]error
	failRange map[string]error // keyed by startKey
}

func (f *flakyStore) Get(ctx context.Context, path string) (rtdb.Snapshot, error) {
	if err, ok := f.failGet[path]; ok {
		return rtdb.Snapshot{}, err
	}
	return f.Store.Get(ctx, path)
}

func (f *flakyStore) RangeByKey(ctx context.Context, path, startKey, endKey string) (rtdb.Snapshot, error) {
	if err, ok := f.failRange[startKey]; ok {
		return rtdb.Snapshot{}, err
	}
	return f.Store.RangeByKey(ctx, path, startKey, endKey)
}

func TestRefreshAggregatesSeededData(t *testing.T) {
	reporter := NewReporter(Options{
		Store: seedAnalyticsStore(t),
		Clock: func() time.Time { return reportNow },
	})

	report, err := reporter.Refresh(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "2026-03-04", report.Range.Start)
	assert.Equal(t, "2026-03-10", report.Range.End)
	assert.Equal(t, 4, report.KPIs.PageViews)
	assert.Equal(t, 3, report.KPIs.UniqueVisitors) // v1, v2, s2-only
	assert.Equal(t, 2, report.KPIs.SessionCount)
	assert.Equal(t, 25, report.KPIs.AvgDurationSecs)
	assert.Equal(t, 50, report.KPIs.BounceRate) // s2 is single-page and short

	require.NotEmpty(t, report.TopPages)
	assert.Equal(t, "home", report.TopPages[0].Label)
	assert.Equal(t, 3, report.TopPages[0].Count)

	assert.Equal(t, FunnelCounts{Total: 2, Pending: 1, Accepted: 1, Converted: 1}, report.Funnel)
	assert.Len(t, report.Traffic, TrafficDays)

	for _, name := range []string{SectionTraffic, SectionFunnel, SectionSources, SectionDevices} {
		assert.Equal(t, SectionReady, report.SectionState(name).State, name)
	}
	assert.NotEmpty(t, report.Charts.Traffic)
	assert.NotEmpty(t, report.Charts.Funnel)

	assert.Same(t, report, reporter.Report())
}

func TestRefreshFailsWhenCoreQueryFails(t *testing.T) {
	boom := errors.New("backend down")
	store := &flakyStore{
		Store:     seedAnalyticsStore(t),
		failRange: map[string]error{"2026-03-04": boom},
	}
	reporter := NewReporter(Options{
		Store: store,
		Clock: func() time.Time { return reportNow },
	})

	_, err := reporter.Refresh(context.Background(), 7)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, reporter.Report())
}

func TestRefreshDegradesTrafficSection(t *testing.T) {
	// The traffic series always scans a 30-day window, so with a 7-day
	// refresh only the series query starts at 2026-02-09.
	store := &flakyStore{
		Store:     seedAnalyticsStore(t),
		failRange: map[string]error{"2026-02-09": errors.New("range scan failed")},
	}
	reporter := NewReporter(Options{
		Store: store,
		Clock: func() time.Time { return reportNow },
	})

	report, err := reporter.Refresh(context.Background(), 7)
	require.NoError(t, err)
	section := report.SectionState(SectionTraffic)
	assert.Equal(t, SectionDegraded, section.State)
	assert.Contains(t, section.Reason, "range scan failed")
	assert.Empty(t, report.Charts.Traffic)
	assert.Equal(t, 4, report.KPIs.PageViews)
}

func TestRefreshDegradesFunnelSection(t *testing.T) {
	store := &flakyStore{
		Store:   seedAnalyticsStore(t),
		failGet: map[string]error{BookingsPath: errors.New("denied")},
	}
	reporter := NewReporter(Options{
		Store: store,
		Clock: func() time.Time { return reportNow },
	})

	report, err := reporter.Refresh(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SectionDegraded, report.SectionState(SectionFunnel).State)
	assert.Equal(t, SectionReady, report.SectionState(SectionSources).State)
}

func TestRefreshBusyClearsAfterSpinnerDelay(t *testing.T) {
	reporter := NewReporter(Options{
		Store:        seedAnalyticsStore(t),
		Clock:        func() time.Time { return reportNow },
		SpinnerDelay: 5 * time.Millisecond,
	})

	_, err := reporter.Refresh(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, reporter.Busy())
	require.Eventually(t, func() bool { return !reporter.Busy() },
		time.Second, time.Millisecond)
}

// gatedStore blocks the first range read until released so a refresh can be
// held mid-flight while another overtakes it.
type gatedStore struct {
	rtdb.Store
	mu      sync.Mutex
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) RangeByKey(ctx context.Context, path, startKey, endKey string) (rtdb.Snapshot, error) {
	g.mu.Lock()
	first := !g.gated
	g.gated = true
	g.mu.Unlock()
	if first {
		close(g.entered)
		<-g.release
	}
	return g.Store.RangeByKey(ctx, path, startKey, endKey)
}

func TestConcurrentRefreshesPublishLastStarted(t *testing.T) {
	gate := &gatedStore{
		Store:   seedAnalyticsStore(t),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	reporter := NewReporter(Options{
		Store: gate,
		Clock: func() time.Time { return reportNow },
	})

	var first *Report
	done := make(chan error, 1)
	go func() {
		report, err := reporter.Refresh(context.Background(), 30)
		first = report
		done <- err
	}()
	<-gate.entered

	second, err := reporter.Refresh(context.Background(), 7)
	require.NoError(t, err)

	close(gate.release)
	require.NoError(t, <-done)

	// the overtaken refresh still hands its report back to its caller
	require.NotNil(t, first)
	assert.Equal(t, 30, first.RangeDays)

	// but only the last-started refresh publishes
	assert.Same(t, second, reporter.Report())
	assert.Equal(t, 7, reporter.Report().RangeDays)
}

func TestRapidRefreshesKeepOneSubscription(t *testing.T) {
	store := &subCountingStore{Store: seedAnalyticsStore(t)}
	reporter := NewReporter(Options{
		Store: store,
		Clock: func() time.Time { return reportNow },
	})
	require.NoError(t, reporter.Init(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reporter.Refresh(context.Background(), 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.count())
	require.NotNil(t, reporter.Report())
	assert.Equal(t, 7, reporter.Report().RangeDays)
}

type subCountingStore struct {
	rtdb.Store
	mu   sync.Mutex
	subs int
}

func (s *subCountingStore) Subscribe(ctx context.Context, path string, fn func(rtdb.Snapshot)) (*rtdb.Subscription, error) {
	s.mu.Lock()
	s.subs++
	s.mu.Unlock()
	return s.Store.Subscribe(ctx, path, fn)
}

func (s *subCountingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs
}

func TestInitSubscribesOnce(t *testing.T) {
	store := &subCountingStore{Store: rtdb.NewMemoryStore()}
	reporter := NewReporter(Options{Store: store})

	require.NoError(t, reporter.Init(context.Background()))
	require.NoError(t, reporter.Init(context.Background()))
	assert.Equal(t, 1, store.count())
}

func TestLiveViewFollowsPresenceChanges(t *testing.T) {
	store := rtdb.NewMemoryStore()
	var mu sync.Mutex
	var updates []LiveView
	reporter := NewReporter(Options{
		Store: store,
		Clock: time.Now,
		OnLiveUpdate: func(view LiveView) {
			mu.Lock()
			updates = append(updates, view)
			mu.Unlock()
		},
	})

	require.NoError(t, reporter.Init(context.Background()))
	err := store.Set(context.Background(), PresencePath+"/vis1", map[string]any{
		"timestamp": time.Now().UnixMilli(),
		"page":      "/pricing",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) >= 2 // initial empty snapshot, then the heartbeat
	}, time.Second, time.Millisecond)

	assert.Equal(t, 1, reporter.Live().Count)
	assert.Equal(t, "/pricing", reporter.Live().Rows[0].Page)
}

func TestTeardownCancelsLiveSubscription(t *testing.T) {
	store := rtdb.NewMemoryStore()
	var mu sync.Mutex
	updates := 0
	reporter := NewReporter(Options{
		Store: store,
		OnLiveUpdate: func(LiveView) {
			mu.Lock()
			updates++
			mu.Unlock()
		},
	})

	require.NoError(t, reporter.Init(context.Background()))
	reporter.Teardown()

	mu.Lock()
	before := updates
	mu.Unlock()

	err := store.Set(context.Background(), PresencePath+"/vis1", map[string]any{
		"timestamp": time.Now().UnixMilli(),
	})
	require.NoError(t, err)

	mu.Lock()
	after := updates
	mu.Unlock()
	assert.Equal(t, before, after)

	// the reporter can be mounted again
	require.NoError(t, reporter.Init(context.Background()))
}
