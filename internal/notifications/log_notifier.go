package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier records confirmations in the log instead of delivering them.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendBookingConfirmation(ctx context.Context, in BookingConfirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.booking_confirmation",
		"email", in.Email,
		"event_id", in.EventID,
		"event_slug", in.EventSlug,
		"booking_id", in.BookingID,
	)
	return nil
}
