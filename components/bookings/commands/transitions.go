package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

var errMissingService = errors.New("booking command requires service")

type transitionService interface {
	Accept(ctx context.Context, id string) error
	Decline(ctx context.Context, id string, reason *string) error
	Cancel(ctx context.Context, id string, reason *string) error
	Delete(ctx context.Context, id string) error
}

// AcceptBookingInput identifies the booking to confirm.
type AcceptBookingInput struct {
	BookingID string
}

// AcceptBookingCommand confirms a pending booking.
type AcceptBookingCommand struct {
	service   transitionService
	telemetry Telemetry
}

// NewAcceptBookingCommand creates the command.
func NewAcceptBookingCommand(service transitionService, telemetry Telemetry) *AcceptBookingCommand {
	return &AcceptBookingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AcceptBookingInput] = (*AcceptBookingCommand)(nil)

// Execute confirms the booking.
func (c *AcceptBookingCommand) Execute(ctx context.Context, msg AcceptBookingInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := c.service.Accept(ctx, msg.BookingID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.accept", map[string]any{"booking_id": msg.BookingID})
	return nil
}

// DeclineBookingInput carries the booking id and the optional operator
// reason; a nil Reason aborts without side effects.
type DeclineBookingInput struct {
	BookingID string
	Reason    *string
}

// DeclineBookingCommand turns a booking down.
type DeclineBookingCommand struct {
	service   transitionService
	telemetry Telemetry
}

// NewDeclineBookingCommand creates the command.
func NewDeclineBookingCommand(service transitionService, telemetry Telemetry) *DeclineBookingCommand {
	return &DeclineBookingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeclineBookingInput] = (*DeclineBookingCommand)(nil)

// Execute declines the booking.
func (c *DeclineBookingCommand) Execute(ctx context.Context, msg DeclineBookingInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := c.service.Decline(ctx, msg.BookingID, msg.Reason); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.decline", map[string]any{
		"booking_id": msg.BookingID,
		"aborted":    msg.Reason == nil,
	})
	return nil
}

// CancelBookingInput carries the booking id and the optional operator
// reason; a nil Reason aborts without side effects.
type CancelBookingInput struct {
	BookingID string
	Reason    *string
}

// CancelBookingCommand withdraws an accepted booking.
type CancelBookingCommand struct {
	service   transitionService
	telemetry Telemetry
}

// NewCancelBookingCommand creates the command.
func NewCancelBookingCommand(service transitionService, telemetry Telemetry) *CancelBookingCommand {
	return &CancelBookingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CancelBookingInput] = (*CancelBookingCommand)(nil)

// Execute cancels the booking.
func (c *CancelBookingCommand) Execute(ctx context.Context, msg CancelBookingInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := c.service.Cancel(ctx, msg.BookingID, msg.Reason); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.cancel", map[string]any{
		"booking_id": msg.BookingID,
		"aborted":    msg.Reason == nil,
	})
	return nil
}

// DeleteBookingInput identifies the booking to remove permanently.
type DeleteBookingInput struct {
	BookingID string
}

// DeleteBookingCommand removes a settled booking for good.
type DeleteBookingCommand struct {
	service   transitionService
	telemetry Telemetry
}

// NewDeleteBookingCommand creates the command.
func NewDeleteBookingCommand(service transitionService, telemetry Telemetry) *DeleteBookingCommand {
	return &DeleteBookingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteBookingInput] = (*DeleteBookingCommand)(nil)

// Execute deletes the booking.
func (c *DeleteBookingCommand) Execute(ctx context.Context, msg DeleteBookingInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := c.service.Delete(ctx, msg.BookingID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bookings.command.delete", map[string]any{"booking_id": msg.BookingID})
	return nil
}
