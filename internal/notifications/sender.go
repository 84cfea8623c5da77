// Package notifications delivers the weekly prompt, reminder and chase
// emails, logging every attempt.
package notifications

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations: SMTPSender, APISender.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
