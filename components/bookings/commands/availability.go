package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

type availabilityService interface {
	SetTrialBookings(ctx context.Context, enabled bool) (bool, error)
}

// SetAvailabilityInput carries the desired public booking availability.
type SetAvailabilityInput struct {
	Enabled bool
}

// SetAvailabilityCommand flips the trial booking feature flag.
type SetAvailabilityCommand struct {
	service   availabilityService
	telemetry Telemetry

	// Prior holds the flag value before the last execution, for rollback.
	Prior bool
}

// NewSetAvailabilityCommand creates the command.
func NewSetAvailabilityCommand(service availabilityService, telemetry Telemetry) *SetAvailabilityCommand {
	return &SetAvailabilityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetAvailabilityInput] = (*SetAvailabilityCommand)(nil)

// Execute writes the flag, keeping the prior value for rollback on failure.
func (c *SetAvailabilityCommand) Execute(ctx context.Context, msg SetAvailabilityInput) error {
	if c.service == nil {
		return errMissingService
	}
	prior, err := c.service.SetTrialBookings(ctx, msg.Enabled)
	c.Prior = prior
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.availability", map[string]any{"enabled": msg.Enabled})
	return nil
}
