package testutil

import (
	"context"
	"strings"
	"sync"

	"flappion-backend/mailer"
)

// FakeMailer records messages instead of sending them. FailFor makes sends to
// matching recipients fail with Err.
type FakeMailer struct {
	mu      sync.Mutex
	Sent    []mailer.Message
	Err     error
	FailFor string
}

func (f *FakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil && (f.FailFor == "" || strings.EqualFold(strings.Join(msg.To, ","), f.FailFor)) {
		return f.Err
	}
	f.Sent = append(f.Sent, msg)
	return nil
}

func (f *FakeMailer) Provider() string { return "fake" }

func (f *FakeMailer) Messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.Sent))
	copy(out, f.Sent)
	return out
}
