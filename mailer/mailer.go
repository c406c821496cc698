package mailer

import (
	"context"
	"strings"
)

// Message is a single outbound email with an HTML body and a plain text fallback.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// Provider names the backend, recorded with every delivery.
	Provider() string
}

type Options struct {
	ResendAPIKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// New picks Resend when an API key is present, SMTP when a host is configured,
// and otherwise a mailer that only logs.
func New(opts Options) Mailer {
	if strings.TrimSpace(opts.ResendAPIKey) != "" {
		return NewResend(opts.ResendAPIKey)
	}
	if opts.SMTPHost != "" && opts.SMTPPort != "" && opts.SMTPUsername != "" && opts.SMTPPassword != "" {
		return NewSMTP(opts.SMTPHost, opts.SMTPPort, opts.SMTPUsername, opts.SMTPPassword)
	}
	return NewLog()
}
