package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

type convertService interface {
	ConvertToClient(ctx context.Context, id string) (string, error)
}

// ConvertBookingInput identifies the booking to turn into a client record.
type ConvertBookingInput struct {
	BookingID string
}

// ConvertBookingCommand creates a client from a listed booking.
type ConvertBookingCommand struct {
	service   convertService
	telemetry Telemetry
}

// NewConvertBookingCommand creates the command.
func NewConvertBookingCommand(service convertService, telemetry Telemetry) *ConvertBookingCommand {
	return &ConvertBookingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConvertBookingInput] = (*ConvertBookingCommand)(nil)

// Execute converts the booking; the created client id goes to telemetry.
func (c *ConvertBookingCommand) Execute(ctx context.Context, msg ConvertBookingInput) error {
	if c.service == nil {
		return errMissingService
	}
	clientID, err := c.service.ConvertToClient(ctx, msg.BookingID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.convert", map[string]any{
		"booking_id": msg.BookingID,
		"client_id":  clientID,
	})
	return nil
}
