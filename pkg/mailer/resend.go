package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers messages through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	brand  Brand
	log    *zap.Logger
}

// NewResendSender builds a sender with the given API key and from address.
func NewResendSender(apiKey, from string, brand Brand, log *zap.Logger) *ResendSender {
	if log == nil {
		log = zap.NewNop()
	}
	if brand.Name == "" {
		brand = DefaultBrand
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		brand:  brand,
		log:    log,
	}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    Frame(s.brand, msg),
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.log.Warn("mailer: resend send failed",
			zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return fmt.Errorf("mailer: resend send: %w", err)
	}
	s.log.Info("mailer: sent",
		zap.String("message_id", sent.Id), zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
