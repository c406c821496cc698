package mailer

import (
	"context"
	"log"
	"strings"
)

// LogMailer stands in when no provider is configured (local dev).
type LogMailer struct{}

func NewLog() *LogMailer { return &LogMailer{} }

func (LogMailer) Provider() string { return "log" }

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.Printf("[MOCK EMAIL] to:%s subject:%q", strings.Join(msg.To, ","), msg.Subject)
	return nil
}
