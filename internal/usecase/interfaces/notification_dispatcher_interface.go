package interfaces

import "context"

// Notification carries the data needed to tell a customer about a document.
// Dispatchers own formatting and delivery; use cases only supply the data.
type Notification struct {
	Recipient  string
	DocumentNo string
	Total      string
	PublicLink string
}

// INotificationDispatcher abstracts fire-and-forget customer messaging
// (e.g. Twilio SMS).
type INotificationDispatcher interface {
	Notify(ctx context.Context, n Notification) error
}
