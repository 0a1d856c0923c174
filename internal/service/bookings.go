package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/devevent/internal/domain/booking"
	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/notifications"
	"github.com/geocoder89/devevent/internal/observability"
)

type BookingStore interface {
	Create(ctx context.Context, b booking.Booking) error
}

type EventLookup interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

type BookingsService struct {
	bookings BookingStore
	events   EventLookup
	notifier notifications.Notifier // optional
	log      *slog.Logger
	prom     *observability.Prom
	timeout  time.Duration
}

func NewBookingsService(
	bookings BookingStore,
	events EventLookup,
	notifier notifications.Notifier,
	log *slog.Logger,
	prom *observability.Prom,
) *BookingsService {
	if log == nil {
		log = slog.Default()
	}

	return &BookingsService{
		bookings: bookings,
		events:   events,
		notifier: notifier,
		log:      log,
		prom:     prom,
		timeout:  DefaultStoreTimeout,
	}
}

func (s *BookingsService) Create(ctx context.Context, req booking.CreateBookingRequest) (booking.Booking, error) {
	b, err := booking.NewFromCreateRequest(req)
	if err != nil {
		return booking.Booking{}, err
	}

	ev, err := s.events.GetByID(ctx, b.EventID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return booking.Booking{}, booking.ErrEventNotExists
		}
		return booking.Booking{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.bookings.Create(storeCtx, b); err != nil {
		return booking.Booking{}, &InfraError{Op: "bookings.create", Err: err}
	}

	s.prom.IncBooking()
	s.confirm(ctx, b, ev)

	return b, nil
}

// confirm never fails the booking; delivery problems are only logged.
func (s *BookingsService) confirm(ctx context.Context, b booking.Booking, ev event.Event) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.SendBookingConfirmation(ctx, notifications.BookingConfirmation{
		BookingID:  b.ID,
		EventID:    ev.ID,
		EventTitle: ev.Title,
		EventSlug:  ev.Slug,
		EventDate:  ev.Date,
		EventTime:  ev.Time,
		Email:      b.Email,
	})
	if err != nil {
		s.prom.IncNotifyFailure()
		s.log.WarnContext(ctx, "booking confirmation not delivered",
			"booking_id", b.ID,
			"err", err,
		)
	}
}
