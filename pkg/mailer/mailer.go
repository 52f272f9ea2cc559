// Package mailer sends branded transactional email for the admin panel.
// Notification delivery is always best-effort: callers log failures and move on.
package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
)

// Message is a single branded email.
type Message struct {
	To      string
	Subject string
	// Heading renders in the branded header block.
	Heading string
	// BodyHTML is the pre-built inner HTML of the message.
	BodyHTML string
	// FooterNote renders under the body in smaller type.
	FooterNote string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Brand carries the business identity stamped on every message.
type Brand struct {
	Name    string
	SignOff string
	Accent  string
}

// DefaultBrand is used when no brand is configured.
var DefaultBrand = Brand{
	Name:    "Admin",
	SignOff: "The team",
	Accent:  "#c44569",
}

// Frame wraps inner body HTML in the branded wrapper (header, body, footer note).
func Frame(brand Brand, msg Message) string {
	if brand.Name == "" {
		brand = DefaultBrand
	}
	var b strings.Builder
	b.WriteString(`<div style="max-width:560px;margin:0 auto;font-family:sans-serif;">`)
	b.WriteString(fmt.Sprintf(`<h2 style="color:%s;">%s</h2>`, brand.Accent, html.EscapeString(msg.Heading)))
	b.WriteString(msg.BodyHTML)
	if msg.FooterNote != "" {
		b.WriteString(fmt.Sprintf(`<p style="font-size:12px;color:#999;">%s</p>`, html.EscapeString(msg.FooterNote)))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// Noop drops every message. Used when no email backend is configured.
type Noop struct{}

// Send implements Sender.
func (Noop) Send(context.Context, Message) error { return nil }

// Recorder captures messages for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned from Send after recording.
	Err error
}

// Send implements Sender.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()
	return r.Err
}

// Sent returns a copy of the captured messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}
