package commands

import (
	"context"
	"errors"
	"testing"
)

type stubTransitionService struct {
	accepted  []string
	declined  []string
	cancelled []string
	deleted   []string
	reasons   []*string
	err       error
}

func (s *stubTransitionService) Accept(_ context.Context, id string) error {
	s.accepted = append(s.accepted, id)
	return s.err
}

func (s *stubTransitionService) Decline(_ context.Context, id string, reason *string) error {
	s.declined = append(s.declined, id)
	s.reasons = append(s.reasons, reason)
	return s.err
}

func (s *stubTransitionService) Cancel(_ context.Context, id string, reason *string) error {
	s.cancelled = append(s.cancelled, id)
	s.reasons = append(s.reasons, reason)
	return s.err
}

func (s *stubTransitionService) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

func TestAcceptBookingCommand(t *testing.T) {
	service := &stubTransitionService{}
	telemetry := &recordingTelemetry{}
	cmd := NewAcceptBookingCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), AcceptBookingInput{BookingID: "b1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.accepted) != 1 || service.accepted[0] != "b1" {
		t.Fatalf("unexpected accepts: %v", service.accepted)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "bookings.command.accept" {
		t.Fatalf("unexpected telemetry: %v", telemetry.events)
	}
}

func TestDeclineBookingCommandPassesNilReason(t *testing.T) {
	service := &stubTransitionService{}
	cmd := NewDeclineBookingCommand(service, nil)

	if err := cmd.Execute(context.Background(), DeclineBookingInput{BookingID: "b2"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(service.reasons) != 1 || service.reasons[0] != nil {
		t.Fatalf("expected nil reason forwarded, got %v", service.reasons)
	}
}

func TestCommandSurfacesServiceError(t *testing.T) {
	boom := errors.New("store gone")
	service := &stubTransitionService{err: boom}
	telemetry := &recordingTelemetry{}
	cmd := NewDeleteBookingCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), DeleteBookingInput{BookingID: "b3"}); !errors.Is(err, boom) {
		t.Fatalf("expected service error, got %v", err)
	}
	if len(telemetry.events) != 0 {
		t.Fatalf("expected no telemetry on failure, got %v", telemetry.events)
	}
}

func TestCommandRequiresService(t *testing.T) {
	cmd := NewCancelBookingCommand(nil, nil)
	if err := cmd.Execute(context.Background(), CancelBookingInput{BookingID: "b4"}); err == nil {
		t.Fatal("expected error for missing service")
	}
}

type stubConvertService struct {
	clientID string
	err      error
	calls    int
}

func (s *stubConvertService) ConvertToClient(context.Context, string) (string, error) {
	s.calls++
	return s.clientID, s.err
}

func TestConvertBookingCommand(t *testing.T) {
	service := &stubConvertService{clientID: "c9"}
	telemetry := &recordingTelemetry{}
	cmd := NewConvertBookingCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), ConvertBookingInput{BookingID: "b1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected one conversion, got %d", service.calls)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "bookings.command.convert" {
		t.Fatalf("unexpected telemetry: %v", telemetry.events)
	}
}

type stubAvailabilityService struct {
	prior   bool
	err     error
	enabled []bool
}

func (s *stubAvailabilityService) SetTrialBookings(_ context.Context, enabled bool) (bool, error) {
	s.enabled = append(s.enabled, enabled)
	return s.prior, s.err
}

func TestSetAvailabilityKeepsPriorForRollback(t *testing.T) {
	service := &stubAvailabilityService{prior: true, err: errors.New("write denied")}
	cmd := NewSetAvailabilityCommand(service, nil)

	err := cmd.Execute(context.Background(), SetAvailabilityInput{Enabled: false})
	if err == nil {
		t.Fatal("expected error")
	}
	if !cmd.Prior {
		t.Fatal("expected prior value recorded for rollback")
	}
}
