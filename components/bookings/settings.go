package bookings

import (
	"context"
	"fmt"
)

// TrialBookingsEnabled reads the public booking availability flag. A missing
// or malformed value counts as enabled; only an explicit false disables.
func (s *Service) TrialBookingsEnabled(ctx context.Context) (bool, error) {
	if s.opts.Store == nil {
		return true, errMissingStore
	}
	snap, err := s.opts.Store.Get(ctx, SettingsPath)
	if err != nil {
		return true, fmt.Errorf("bookings: read availability: %w", err)
	}
	return snap.Bool(true), nil
}

// SetTrialBookings writes the availability flag. On failure it returns the
// prior value alongside the error so the control can roll back.
func (s *Service) SetTrialBookings(ctx context.Context, enabled bool) (prior bool, err error) {
	prior, _ = s.TrialBookingsEnabled(ctx)
	if s.opts.Store == nil {
		return prior, errMissingStore
	}
	if err := s.opts.Store.Set(ctx, SettingsPath, enabled); err != nil {
		return prior, fmt.Errorf("bookings: set availability: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	s.audit(ctx, "settings_updated", "Trial bookings "+state, "settings", "")
	s.opts.Telemetry.Record(ctx, "bookings.settings", map[string]any{"enabled": enabled})
	return prior, nil
}
