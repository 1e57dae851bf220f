package ports

import "context"

// Notifier delivers a formatted message to a messaging-platform recipient.
type Notifier interface {
	Send(ctx context.Context, recipientID, text string) error
}
