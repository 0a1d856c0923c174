package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/devevent/internal/domain/booking"
)

type BookingsRepo struct {
	mu    sync.RWMutex
	items []booking.Booking
}

func NewBookingsRepo() *BookingsRepo {
	return &BookingsRepo{}
}

func (r *BookingsRepo) Create(_ context.Context, b booking.Booking) error {
	r.mu.Lock()
	r.items = append(r.items, b)
	r.mu.Unlock()

	return nil
}

// ListByEvent returns the bookings for eventID, newest first.
func (r *BookingsRepo) ListByEvent(_ context.Context, eventID string) ([]booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]booking.Booking, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].EventID == eventID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
