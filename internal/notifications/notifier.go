package notifications

import "context"

type BookingConfirmation struct {
	BookingID  string
	EventID    string
	EventTitle string
	EventSlug  string
	EventDate  string
	EventTime  string
	Email      string
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, in BookingConfirmation) error
}
