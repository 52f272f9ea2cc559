package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-admin-reports/components/analytics"
	"github.com/goliatone/go-admin-reports/components/bookings"
)

// DashboardTemplate is the template name the controller renders.
const DashboardTemplate = "dashboard"

// Controller composes the analytics reporter and the booking service into the
// admin panel page.
type Controller struct {
	reporter *analytics.Reporter
	bookings *bookings.Service
	renderer Renderer
	activity ActivityFeed
}

// NewController wires the collaborators into a controller. The activity feed
// is optional; without one the page omits the recent-activity block.
func NewController(reporter *analytics.Reporter, svc *bookings.Service, renderer Renderer, opts ...ControllerOption) *Controller {
	c := &Controller{reporter: reporter, bookings: svc, renderer: renderer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ControllerOption customizes optional controller collaborators.
type ControllerOption func(*Controller)

// WithActivityFeed attaches a recent-activity feed to the page.
func WithActivityFeed(feed ActivityFeed) ControllerOption {
	return func(c *Controller) { c.activity = feed }
}

// DashboardRequest selects what the page shows.
type DashboardRequest struct {
	// Days is the analytics range; zero falls back to the reporter default.
	Days int
	// StatusFilter narrows the booking list; empty means all.
	StatusFilter string
}

// RenderDashboard refreshes the report, lists bookings, and renders the admin
// page into w. A degraded report section renders its fallback block; a failed
// core query fails the page.
func (c *Controller) RenderDashboard(ctx context.Context, w io.Writer, req DashboardRequest) error {
	report, err := c.reporter.Refresh(ctx, req.Days)
	if err != nil {
		return fmt.Errorf("admin: refresh report: %w", err)
	}
	list, err := c.bookings.List(ctx, req.StatusFilter)
	if err != nil {
		return fmt.Errorf("admin: list bookings: %w", err)
	}
	enabled, err := c.bookings.TrialBookingsEnabled(ctx)
	if err != nil {
		// the toggle falls back to its default; the page still renders
		enabled = true
	}
	var feed []ActivityItem
	if c.activity != nil {
		feed, err = c.activity.Recent(ctx, DefaultActivityLimit)
		if err != nil {
			// the feed is decorative; the page still renders
			feed = nil
		}
	}

	data := map[string]any{
		"range_label":      report.RangeLabel,
		"kpis":             report.KPIs,
		"top_pages":        report.TopPages,
		"referrers":        report.Referrers,
		"charts":           report.Charts,
		"sections":         report.Sections,
		"funnel":           report.Funnel,
		"live":             c.reporter.Live(),
		"bookings":         BookingCards(list),
		"status_filter":    req.StatusFilter,
		"bookings_enabled": enabled,
		"activity":         feed,
	}
	_, err = c.renderer.Render(DashboardTemplate, data, w)
	if err != nil {
		return fmt.Errorf("admin: render dashboard: %w", err)
	}
	return nil
}

// BookingCard is the list item view for one booking.
type BookingCard struct {
	ID string `json:"id"`
	bookings.Booking
	Badge    string   `json:"badge"`
	Children string   `json:"childrenSummary"`
	Actions  []string `json:"actions"`
}

// BookingCards maps bookings to their card views.
func BookingCards(list []bookings.Booking) []BookingCard {
	cards := make([]BookingCard, len(list))
	for i, b := range list {
		cards[i] = BookingCard{
			ID:       b.ID,
			Booking:  b,
			Badge:    b.BadgeClass(),
			Children: b.ChildrenSummary(),
			Actions:  b.Actions(),
		}
	}
	return cards
}
