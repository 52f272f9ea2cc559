package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-admin-reports/pkg/activity"
	"github.com/goliatone/go-admin-reports/pkg/mailer"
	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

var (
	// ErrNotFound reports an id with no booking behind it.
	ErrNotFound = errors.New("bookings: booking not found")
	// ErrNotListed reports a conversion attempt for a booking the service
	// has not listed yet; the caller should refresh and retry.
	ErrNotListed = errors.New("bookings: booking not found, refresh and try again")

	errMissingStore = errors.New("bookings: store not configured")
)

// Telemetry records booking operations for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// Options configures the booking Service.
type Options struct {
	Store     rtdb.Store
	Mailer    mailer.Sender
	Brand     mailer.Brand
	Activity  *activity.Emitter
	Logger    *zap.Logger
	Telemetry Telemetry
	Clock     func() time.Time
}

// Service manages trial bookings: listing, the status transitions with their
// email and audit side effects, and conversion into client records.
type Service struct {
	opts Options

	mu    sync.Mutex
	cache map[string]Booking
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Mailer == nil {
		opts.Mailer = mailer.Noop{}
	}
	if opts.Brand.Name == "" {
		opts.Brand = mailer.DefaultBrand
	}
	if opts.Activity == nil {
		opts.Activity = activity.NewEmitter(nil, activity.Config{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = noopTelemetry{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{opts: opts, cache: map[string]Booking{}}
}

// List fetches every booking sorted newest first, optionally filtered by
// status. Listing also refreshes the cache that ConvertToClient reads from.
func (s *Service) List(ctx context.Context, filter string) ([]Booking, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	snap, err := s.opts.Store.Get(ctx, Path)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}

	var all []Booking
	snap.Each(func(id string, child rtdb.Snapshot) bool {
		var b Booking
		if err := child.Decode(&b); err != nil {
			s.opts.Logger.Warn("skipping malformed booking", zap.String("id", id), zap.Error(err))
			return true
		}
		b.ID = id
		all = append(all, b)
		return true
	})
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedTime().After(all[j].CreatedTime())
	})

	s.mu.Lock()
	s.cache = make(map[string]Booking, len(all))
	for _, b := range all {
		s.cache[b.ID] = b
	}
	s.mu.Unlock()

	if filter == "" || filter == FilterAll {
		return all, nil
	}
	filtered := make([]Booking, 0, len(all))
	for _, b := range all {
		if b.EffectiveStatus() == filter {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Accept confirms a pending booking and emails the family.
func (s *Service) Accept(ctx context.Context, id string) error {
	now := s.opts.Clock()
	err := s.update(ctx, id, map[string]any{
		"status":     StatusAccepted,
		"updated_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "booking_accepted", "Accepted trial booking: "+id, "booking", id)
	s.emailBooking(ctx, id, func(b Booking) mailer.Message {
		return confirmationEmail(s.opts.Brand, b)
	})
	s.opts.Telemetry.Record(ctx, "bookings.accept", map[string]any{"booking_id": id})
	return nil
}

// Decline turns a booking down. A nil reason means the operator backed out of
// the prompt: nothing is written, logged, or sent. An empty non-nil reason
// declines without an explanation.
func (s *Service) Decline(ctx context.Context, id string, reason *string) error {
	if reason == nil {
		return nil
	}
	now := s.opts.Clock()
	err := s.update(ctx, id, map[string]any{
		"status":         StatusDeclined,
		"decline_reason": *reason,
		"updated_at":     now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "booking_declined", "Declined trial booking: "+id, "booking", id)
	s.emailBooking(ctx, id, func(b Booking) mailer.Message {
		return declineEmail(s.opts.Brand, b, *reason)
	})
	s.opts.Telemetry.Record(ctx, "bookings.decline", map[string]any{"booking_id": id})
	return nil
}

// Cancel withdraws an accepted booking, with the same nil-reason early return
// as Decline.
func (s *Service) Cancel(ctx context.Context, id string, reason *string) error {
	if reason == nil {
		return nil
	}
	now := s.opts.Clock()
	err := s.update(ctx, id, map[string]any{
		"status":        StatusCancelled,
		"cancel_reason": *reason,
		"updated_at":    now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "booking_cancelled", "Cancelled trial booking: "+id, "booking", id)
	s.emailBooking(ctx, id, func(b Booking) mailer.Message {
		return cancelEmail(s.opts.Brand, b, *reason)
	})
	s.opts.Telemetry.Record(ctx, "bookings.cancel", map[string]any{"booking_id": id})
	return nil
}

// Delete removes the booking permanently. No email is sent.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.opts.Store == nil {
		return errMissingStore
	}
	if id == "" {
		return ErrNotFound
	}
	if err := s.opts.Store.Remove(ctx, Path+"/"+id); err != nil {
		return fmt.Errorf("bookings: delete %s: %w", id, err)
	}
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
	s.audit(ctx, "booking_deleted", "Deleted trial booking: "+id, "booking", id)
	s.opts.Telemetry.Record(ctx, "bookings.delete", map[string]any{"booking_id": id})
	return nil
}

// ConvertToClient creates an append-only client record from a listed booking
// and marks the booking converted. The booking must have appeared in the
// latest List; unknown ids fail without touching the store.
func (s *Service) ConvertToClient(ctx context.Context, id string) (string, error) {
	if s.opts.Store == nil {
		return "", errMissingStore
	}
	s.mu.Lock()
	booking, ok := s.cache[id]
	s.mu.Unlock()
	if !ok {
		return "", ErrNotListed
	}

	now := s.opts.Clock()
	client := clientFromBooking(booking, now)
	if err := ValidateClient(client); err != nil {
		return "", err
	}
	clientID, err := s.opts.Store.Push(ctx, ClientsPath, client)
	if err != nil {
		return "", fmt.Errorf("bookings: create client from %s: %w", id, err)
	}
	err = s.update(ctx, id, map[string]any{
		"status":              StatusAccepted,
		"converted_to_client": true,
		"updated_at":          now.Format(time.RFC3339),
	})
	if err != nil {
		return clientID, err
	}
	s.audit(ctx, "client_created", "Created client from trial booking: "+booking.ParentName, "client", clientID)
	s.opts.Telemetry.Record(ctx, "bookings.convert", map[string]any{
		"booking_id": id,
		"client_id":  clientID,
	})
	return clientID, nil
}

func clientFromBooking(b Booking, now time.Time) Client {
	children := make([]Child, len(b.Children))
	copy(children, b.Children)

	date := b.SelectedDate
	if date == "" {
		date = "—"
	}
	notes := "Converted from trial booking on " + date
	if b.Notes != "" {
		notes += ". Notes: " + b.Notes
	}
	return Client{
		FamilyName: b.ParentName,
		ParentName: b.ParentName,
		Email:      b.Email,
		Phone:      b.Phone,
		Children:   children,
		Notes:      notes,
		Status:     "active",
		Source:     "trial_booking",
		CreatedAt:  now.Format(time.RFC3339),
	}
}

func (s *Service) update(ctx context.Context, id string, fields map[string]any) error {
	if s.opts.Store == nil {
		return errMissingStore
	}
	if id == "" {
		return ErrNotFound
	}
	if err := s.opts.Store.Update(ctx, Path+"/"+id, fields); err != nil {
		return fmt.Errorf("bookings: update %s: %w", id, err)
	}
	return nil
}

func (s *Service) audit(ctx context.Context, verb, message, category, objectID string) {
	err := s.opts.Activity.Emit(ctx, activity.Event{
		Verb:     verb,
		Message:  message,
		Category: category,
		ObjectID: objectID,
	})
	if err != nil {
		s.opts.Logger.Warn("activity log write failed", zap.String("verb", verb), zap.Error(err))
	}
}

// emailBooking re-reads the booking and sends the built message when the
// record carries an address. Send failures are logged, never surfaced: the
// transition already happened.
func (s *Service) emailBooking(ctx context.Context, id string, build func(Booking) mailer.Message) {
	snap, err := s.opts.Store.Get(ctx, Path+"/"+id)
	if err != nil || !snap.Exists() {
		return
	}
	var b Booking
	if err := snap.Decode(&b); err != nil {
		return
	}
	if b.Email == "" {
		return
	}
	b.ID = id
	if err := s.opts.Mailer.Send(ctx, build(b)); err != nil {
		s.opts.Logger.Warn("booking email send failed",
			zap.String("booking_id", id), zap.Error(err))
	}
}
