// Package notify delivers best-effort messages to listing owners.
package notify

import "context"

// Message is an owner-facing notification.
type Message struct {
	ToEmail string
	ToName  string
	Title   string
	Content string
}

// Notifier sends a message. Implementations must treat delivery as
// best-effort: callers log failures and carry on.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
