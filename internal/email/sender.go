package email

import (
	"context"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	ToName   string
	Subject  string
	BodyText string
	BodyHTML string
}

// Sender delivers a rendered message. Delivery failures surface to the caller;
// whether they fail the primary action is the caller's call.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
