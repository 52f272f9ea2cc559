package bookings

import (
	"fmt"
	"html"

	"github.com/goliatone/go-admin-reports/pkg/mailer"
)

// Email bodies follow the shape of the site's branded notifications: a
// greeting, a highlighted detail block with date and time, and a sign-off.

func detailBlock(rows ...[2]string) string {
	block := `<div style="background:#fff5f7;padding:16px;border-radius:8px;margin:16px 0;">`
	for _, row := range rows {
		if row[1] == "" {
			row[1] = "—"
		}
		block += fmt.Sprintf(`<p style="margin:4px 0;"><strong>%s:</strong> %s</p>`,
			row[0], html.EscapeString(row[1]))
	}
	return block + `</div>`
}

func greeting(name string) string {
	return fmt.Sprintf(`<p style="font-size:15px;color:#333;">Hi %s,</p>`, html.EscapeString(name))
}

func signOff(brand mailer.Brand) string {
	return fmt.Sprintf(`<p style="color:%s;font-weight:600;">&mdash; %s</p>`,
		brand.Accent, html.EscapeString(brand.SignOff))
}

func confirmationEmail(brand mailer.Brand, b Booking) mailer.Message {
	body := greeting(b.ParentName) +
		`<p style="color:#555;">Great news! Your trial session has been <strong style="color:#4caf50;">confirmed</strong>!</p>` +
		detailBlock([2]string{"Date", b.SelectedDate}, [2]string{"Time", b.PreferredTime}) +
		`<p style="color:#555;">Looking forward to meeting your family!</p>` +
		signOff(brand)
	return mailer.Message{
		To:         b.Email,
		Subject:    "Trial Session Confirmed! - " + brand.Name,
		Heading:    "Session Confirmed!",
		BodyHTML:   body,
		FooterNote: "If you need to reschedule, please reply to this email.",
	}
}

func declineEmail(brand mailer.Brand, b Booking, reason string) mailer.Message {
	msg := "Unfortunately, this time slot is not available. Please try another date."
	if reason != "" {
		msg = "Unfortunately, this time slot is not available. Reason: " + html.EscapeString(reason)
	}
	body := greeting(b.ParentName) +
		`<p style="color:#555;">` + msg + `</p>` +
		detailBlock([2]string{"Requested Date", b.SelectedDate}, [2]string{"Requested Time", b.PreferredTime}) +
		`<p style="color:#555;">Please feel free to request a different date — I'd love to find a time that works for your family!</p>` +
		signOff(brand)
	return mailer.Message{
		To:         b.Email,
		Subject:    "Booking Update - " + brand.Name,
		Heading:    "Booking Update",
		BodyHTML:   body,
		FooterNote: "Reply to this email if you'd like to try another date.",
	}
}

func cancelEmail(brand mailer.Brand, b Booking, reason string) mailer.Message {
	rows := [][2]string{{"Date", b.SelectedDate}, {"Time", b.PreferredTime}}
	if reason != "" {
		rows = append(rows, [2]string{"Reason", reason})
	}
	body := greeting(b.ParentName) +
		`<p style="color:#555;">Unfortunately, your trial session has been <strong style="color:#e53935;">cancelled</strong>.</p>` +
		detailBlock(rows...) +
		`<p style="color:#555;">I apologize for the inconvenience. Please feel free to book another trial session at a time that works for you!</p>` +
		signOff(brand)
	return mailer.Message{
		To:         b.Email,
		Subject:    "Trial Session Cancelled - " + brand.Name,
		Heading:    "Session Cancelled",
		BodyHTML:   body,
		FooterNote: "Reply to this email to reschedule.",
	}
}
