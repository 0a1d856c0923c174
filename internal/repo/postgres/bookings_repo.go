package postgres

import (
	"context"

	"github.com/geocoder89/devevent/internal/domain/booking"
	"github.com/geocoder89/devevent/internal/observability"
)

type BookingsRepo struct {
	db   PoolSource
	prom *observability.Prom
}

func NewBookingsRepo(db PoolSource, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{db: db, prom: prom}
}

func (r *BookingsRepo) Create(ctx context.Context, b booking.Booking) error {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	return r.prom.ObserveDB("bookings.create", func() error {
		_, execErr := pool.Exec(ctx, `
			INSERT INTO bookings (id, event_id, email, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5)
		`, b.ID, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt)
		return execErr
	})
}

func (r *BookingsRepo) ListByEvent(ctx context.Context, eventID string) ([]booking.Booking, error) {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]booking.Booking, 0)

	err = r.prom.ObserveDB("bookings.list_by_event", func() error {
		rows, qErr := pool.Query(ctx, `
			SELECT id, event_id, email, created_at, updated_at
			FROM bookings
			WHERE event_id = $1
			ORDER BY created_at DESC
		`, eventID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			var b booking.Booking
			if sErr := rows.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt); sErr != nil {
				return sErr
			}
			out = append(out, b)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
