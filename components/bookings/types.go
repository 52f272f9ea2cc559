package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Store paths owned by the booking manager.
const (
	Path         = "/trial_bookings"
	ClientsPath  = "/clients"
	SettingsPath = "/settings/trial_bookings_enabled"
)

// Booking statuses. A booking only ever moves forward; there is no
// un-decline or un-cancel.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
)

// FilterAll disables status filtering in List.
const FilterAll = "all"

// Age tolerates both spellings the public booking widget has produced over
// time: a bare number (4) and free text ("18 months"). Numbers decode to
// their string form so records round-trip as strings.
type Age string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("bookings: decode age: %w", err)
	}
	switch v := raw.(type) {
	case nil:
		*a = ""
	case string:
		*a = Age(v)
	case json.Number:
		*a = Age(v.String())
	default:
		return fmt.Errorf("bookings: age must be a string or number, got %T", raw)
	}
	return nil
}

// Child is one child on a booking or client record.
type Child struct {
	Name      string `json:"name"`
	Age       Age    `json:"age"`
	Allergies string `json:"allergies"`
	Notes     string `json:"notes"`
}

// Booking is a trial session request. Timestamps are stored as RFC 3339
// strings, matching what the public site writes.
type Booking struct {
	ID                string  `json:"-"`
	ParentName        string  `json:"parent_name,omitempty"`
	Email             string  `json:"email,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	Children          []Child `json:"children,omitempty"`
	SelectedDate      string  `json:"selected_date,omitempty"`
	PreferredTime     string  `json:"preferred_time,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	Status            string  `json:"status,omitempty"`
	DeclineReason     string  `json:"decline_reason,omitempty"`
	CancelReason      string  `json:"cancel_reason,omitempty"`
	ConvertedToClient bool    `json:"converted_to_client,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	UpdatedAt         string  `json:"updated_at,omitempty"`
}

// EffectiveStatus treats records without a status as pending.
func (b Booking) EffectiveStatus() string {
	if b.Status == "" {
		return StatusPending
	}
	return b.Status
}

// CreatedTime parses the creation timestamp; the zero time when unparsable.
func (b Booking) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, b.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ChildrenSummary renders the children list for the card view:
// `Mia (age 3), Leo` — or an em dash when there are none.
func (b Booking) ChildrenSummary() string {
	if len(b.Children) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(b.Children))
	for _, c := range b.Children {
		if c.Age != "" {
			parts = append(parts, fmt.Sprintf("%s (age %s)", c.Name, c.Age))
		} else {
			parts = append(parts, c.Name)
		}
	}
	return strings.Join(parts, ", ")
}

// Card actions by status.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionCancel  = "cancel"
	ActionDelete  = "delete"
	ActionConvert = "convert"
)

// Actions lists the operations the card offers for the booking's status.
func (b Booking) Actions() []string {
	switch b.EffectiveStatus() {
	case StatusPending:
		return []string{ActionAccept, ActionDecline, ActionConvert}
	case StatusAccepted:
		return []string{ActionConvert, ActionCancel}
	case StatusDeclined, StatusCancelled:
		return []string{ActionDelete}
	default:
		return nil
	}
}

// BadgeClass is the status badge CSS class; everything past accepted shares
// the declined badge.
func (b Booking) BadgeClass() string {
	switch b.EffectiveStatus() {
	case StatusPending:
		return "badge-pending"
	case StatusAccepted:
		return "badge-accepted"
	default:
		return "badge-declined"
	}
}

// Client is an append-only client record created from an accepted booking.
type Client struct {
	FamilyName string  `json:"family_name"`
	ParentName string  `json:"parent_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Children   []Child `json:"children"`
	Notes      string  `json:"notes"`
	Status     string  `json:"status"`
	Source     string  `json:"source"`
	CreatedAt  string  `json:"created_at"`
}
