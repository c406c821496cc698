package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

type ResendMailer struct {
	client *resend.Client
}

func NewResend(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Provider() string { return "resend" }

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	log.Printf("Email sent via resend id=%s", sent.Id)
	return nil
}
