// Package mail provides the email transport used by the send_email workflow
// action.
package mail

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Transport delivers messages. Implementations report whether they are
// configured at all; an unconfigured transport makes the send_email action
// record a simulated delivery instead of failing.
type Transport interface {
	IsConfigured() bool
	Send(ctx context.Context, msg Message) (bool, error)
	TestConnection(ctx context.Context) error
}
