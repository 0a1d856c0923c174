package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromDraft(d Draft) Event {
	now := time.Now().UTC()

	e := Event{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	copyDraft(&e, d)

	return e
}

// ApplyDraft overwrites every content field of existing with d. An empty
// d.Image keeps the stored image. The returned bool reports a title change.
func ApplyDraft(existing Event, d Draft) (Event, bool) {
	updated := existing
	image := existing.Image

	copyDraft(&updated, d)
	if strings.TrimSpace(d.Image) == "" {
		updated.Image = image
	}

	updated.UpdatedAt = time.Now().UTC()

	titleChanged := strings.TrimSpace(d.Title) != existing.Title

	return updated, titleChanged
}

func copyDraft(e *Event, d Draft) {
	e.Title = d.Title
	e.Description = d.Description
	e.Overview = d.Overview
	e.Image = d.Image
	e.Venue = d.Venue
	e.Location = d.Location
	e.Date = d.Date
	e.Time = d.Time
	e.Mode = Mode(d.Mode)
	e.Audience = d.Audience
	e.Agenda = append([]string(nil), d.Agenda...)
	e.Organizer = d.Organizer
	e.Tags = append([]string(nil), d.Tags...)
}
