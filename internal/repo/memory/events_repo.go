package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/devevent/internal/domain/event"
)

type EventsRepo struct {
	mu    sync.RWMutex
	items map[string]event.Event // id -> event
	seq   map[string]uint64      // id -> insertion order, breaks createdAt ties
	next  uint64
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		items: make(map[string]event.Event),
		seq:   make(map[string]uint64),
	}
}

func (r *EventsRepo) Create(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugOwner(e.Slug) != "" {
		return event.ErrSlugTaken
	}

	r.next++
	r.items[e.ID] = clone(e)
	r.seq[e.ID] = r.next

	return nil
}

func (r *EventsRepo) List(_ context.Context, filter event.ListFilter) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.items))
	for _, e := range r.items {
		if filter.Search != nil && !matches(e, *filter.Search) {
			continue
		}
		out = append(out, clone(e))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})

	return out, nil
}

func (r *EventsRepo) GetBySlug(_ context.Context, slug string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := r.slugOwner(slug)
	if id == "" {
		return event.Event{}, event.ErrNotFound
	}
	return clone(r.items[id]), nil
}

func (r *EventsRepo) GetByID(_ context.Context, id string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return clone(e), nil
}

func (r *EventsRepo) Update(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.ID]; !ok {
		return event.ErrNotFound
	}
	if owner := r.slugOwner(e.Slug); owner != "" && owner != e.ID {
		return event.ErrSlugTaken
	}

	r.items[e.ID] = clone(e)
	return nil
}

func (r *EventsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.items, id)
	delete(r.seq, id)

	return nil
}

// slugOwner returns the id holding slug, or "". Callers hold r.mu.
func (r *EventsRepo) slugOwner(slug string) string {
	for id, e := range r.items {
		if e.Slug == slug {
			return id
		}
	}
	return ""
}

func matches(e event.Event, search string) bool {
	needle := strings.ToLower(search)

	if strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Audience), needle) {
		return true
	}

	for _, tag := range e.Tags {
		if strings.EqualFold(tag, search) {
			return true
		}
	}
	return false
}

func clone(e event.Event) event.Event {
	e.Agenda = append([]string(nil), e.Agenda...)
	e.Tags = append([]string(nil), e.Tags...)
	return e
}
