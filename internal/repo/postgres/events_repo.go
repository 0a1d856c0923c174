package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location,
	date, time, mode, audience, agenda, organizer, tags, created_at, updated_at`

type EventsRepo struct {
	db   PoolSource
	prom *observability.Prom
}

// constructor function

func NewEventsRepo(db PoolSource, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		db:   db,
		prom: prom,
	}
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) error {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	err = r.prom.ObserveDB("events.create", func() error {
		_, execErr := pool.Exec(ctx,
			`INSERT INTO events(`+eventColumns+`)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			e.ID, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
			e.Date, e.Time, string(e.Mode), e.Audience, e.Agenda, e.Organizer, e.Tags,
			e.CreatedAt, e.UpdatedAt,
		)
		return execErr
	})

	if err != nil && isConstraint(err, "events_slug_uniq") {
		return event.ErrSlugTaken
	}

	return err
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListFilter) ([]event.Event, error) {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	var args []interface{}

	if filter.Search != nil {
		// title/audience: literal substring; tags: whole-entry match
		query += ` WHERE title ILIKE $1 ESCAPE '\'
			OR audience ILIKE $1 ESCAPE '\'
			OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower($2))`
		args = append(args, "%"+escapeLike(*filter.Search)+"%", *filter.Search)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	var out []event.Event

	err = r.prom.ObserveDB("events.list", func() error {
		rows, qErr := pool.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		out = make([]event.Event, 0)
		for rows.Next() {
			e, sErr := scanEvent(rows)
			if sErr != nil {
				return sErr
			}
			out = append(out, e)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *EventsRepo) GetBySlug(ctx context.Context, slug string) (event.Event, error) {
	return r.getOne(ctx, "events.get_by_slug", `slug = $1`, slug)
}

// GetByID treats a malformed id as a miss rather than a query error.
func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return event.Event{}, event.ErrNotFound
	}
	return r.getOne(ctx, "events.get_by_id", `id = $1`, id)
}

// Update saves every column of e in place, keyed by e.ID.
func (r *EventsRepo) Update(ctx context.Context, e event.Event) error {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	var affected int64
	err = r.prom.ObserveDB("events.update", func() error {
		tag, execErr := pool.Exec(ctx,
			`UPDATE events
				SET title = $2,
					slug = $3,
					description = $4,
					overview = $5,
					image = $6,
					venue = $7,
					location = $8,
					date = $9,
					time = $10,
					mode = $11,
					audience = $12,
					agenda = $13,
					organizer = $14,
					tags = $15,
					updated_at = $16
			WHERE id = $1`,
			e.ID, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
			e.Date, e.Time, string(e.Mode), e.Audience, e.Agenda, e.Organizer, e.Tags, e.UpdatedAt,
		)
		affected = tag.RowsAffected()
		return execErr
	})

	if err != nil {
		if isConstraint(err, "events_slug_uniq") {
			return event.ErrSlugTaken
		}
		return err
	}

	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	var affected int64
	err = r.prom.ObserveDB("events.delete", func() error {
		tag, execErr := pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return execErr
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}

func (r *EventsRepo) getOne(ctx context.Context, op, where string, arg string) (event.Event, error) {
	pool, err := r.db.Get(ctx)
	if err != nil {
		return event.Event{}, err
	}

	var e event.Event
	err = r.prom.ObserveDB(op, func() error {
		row := pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE `+where, arg)
		var sErr error
		e, sErr = scanEvent(row)
		return sErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	var mode string

	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &mode, &e.Audience, &e.Agenda, &e.Organizer, &e.Tags,
		&e.CreatedAt, &e.UpdatedAt,
	)
	e.Mode = event.Mode(mode)

	return e, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
