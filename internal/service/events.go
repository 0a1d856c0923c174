package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/geocoder89/devevent/internal/cache"
	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/media"
	"github.com/geocoder89/devevent/internal/observability"
)

const (
	DefaultStoreTimeout  = 3 * time.Second
	DefaultUploadTimeout = 15 * time.Second
	DefaultMediaFolder   = "DevEvent"

	listAllKey    = "events:list:all"
	slugKeyPrefix = "events:slug:"
)

type EventStore interface {
	List(ctx context.Context, filter event.ListFilter) ([]event.Event, error)
	GetBySlug(ctx context.Context, slug string) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	Create(ctx context.Context, e event.Event) error
	Update(ctx context.Context, e event.Event) error
	Delete(ctx context.Context, id string) error
}

type EventsConfig struct {
	MediaFolder   string
	StoreTimeout  time.Duration
	UploadTimeout time.Duration
}

type EventsService struct {
	store    EventStore
	tokens   TokenVerifier
	uploader media.Uploader
	cache    cache.Store // optional
	log      *slog.Logger
	prom     *observability.Prom
	cfg      EventsConfig

	// bumped on every invalidation; reads only fill the cache if it is unchanged
	generation atomic.Uint64
}

func NewEventsService(
	store EventStore,
	tokens TokenVerifier,
	uploader media.Uploader,
	readCache cache.Store,
	log *slog.Logger,
	prom *observability.Prom,
	cfg EventsConfig,
) *EventsService {
	if cfg.MediaFolder == "" {
		cfg.MediaFolder = DefaultMediaFolder
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &EventsService{
		store:    store,
		tokens:   tokens,
		uploader: uploader,
		cache:    readCache,
		log:      log,
		prom:     prom,
		cfg:      cfg,
	}
}

// Authorize reports whether token may mutate events. Handlers call it before
// reading a request body; every mutation checks again.
func (s *EventsService) Authorize(token string) error {
	return authorizeAdmin(s.tokens, token)
}

// Create validates d, uploads image and stores the new event.
// Validation runs before the upload so rejected drafts leave no orphaned media.
func (s *EventsService) Create(ctx context.Context, token string, d event.Draft, image []byte) (event.Event, error) {
	if err := authorizeAdmin(s.tokens, token); err != nil {
		return event.Event{}, err
	}

	if len(image) == 0 {
		return event.Event{}, &event.ValidationError{Field: "image", Message: "an image file is required"}
	}

	d.Image = "pending-upload"
	e := event.NewFromDraft(d)
	if err := event.Prepare(&e, true); err != nil {
		return event.Event{}, err
	}

	if err := s.ensureSlugFree(ctx, e.Slug, ""); err != nil {
		return event.Event{}, err
	}

	url, err := s.upload(ctx, image)
	if err != nil {
		return event.Event{}, err
	}
	e.Image = url

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.store.Create(storeCtx, e); err != nil {
		return event.Event{}, storeErr("events.create", err)
	}

	s.invalidate(ctx, e.Slug)

	return e, nil
}

// Update overwrites the event at slug with d. A nil image keeps the stored one.
func (s *EventsService) Update(ctx context.Context, token, slug string, d event.Draft, image []byte) (event.Event, error) {
	if err := authorizeAdmin(s.tokens, token); err != nil {
		return event.Event{}, err
	}

	existing, err := s.getBySlug(ctx, event.NormalizeSlug(slug))
	if err != nil {
		return event.Event{}, err
	}

	d.Image = ""
	updated, titleChanged := event.ApplyDraft(existing, d)
	if err := event.Prepare(&updated, titleChanged); err != nil {
		return event.Event{}, err
	}

	if updated.Slug != existing.Slug {
		if err := s.ensureSlugFree(ctx, updated.Slug, existing.ID); err != nil {
			return event.Event{}, err
		}
	}

	if len(image) > 0 {
		url, err := s.upload(ctx, image)
		if err != nil {
			return event.Event{}, err
		}
		updated.Image = url
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.store.Update(storeCtx, updated); err != nil {
		return event.Event{}, storeErr("events.update", err)
	}

	s.invalidate(ctx, existing.Slug, updated.Slug)

	return updated, nil
}

func (s *EventsService) Delete(ctx context.Context, token, slug string) error {
	if err := authorizeAdmin(s.tokens, token); err != nil {
		return err
	}

	existing, err := s.getBySlug(ctx, event.NormalizeSlug(slug))
	if err != nil {
		return err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.store.Delete(storeCtx, existing.ID); err != nil {
		return storeErr("events.delete", err)
	}

	s.invalidate(ctx, existing.Slug)

	return nil
}

// Find lists events newest first. Only the unfiltered listing is cached.
func (s *EventsService) Find(ctx context.Context, search *string) ([]event.Event, error) {
	if search == nil {
		var cached []event.Event
		if s.cacheGet(ctx, listAllKey, &cached) {
			return cached, nil
		}
	}

	gen := s.generation.Load()

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	events, err := s.store.List(storeCtx, event.ListFilter{Search: search})
	if err != nil {
		return nil, storeErr("events.list", err)
	}

	if search == nil && s.generation.Load() == gen {
		s.cacheSet(ctx, listAllKey, events)
	}

	return events, nil
}

func (s *EventsService) FindBySlug(ctx context.Context, slug string) (event.Event, error) {
	slug = event.NormalizeSlug(slug)

	var cached event.Event
	if s.cacheGet(ctx, slugKeyPrefix+slug, &cached) {
		return cached, nil
	}

	gen := s.generation.Load()

	e, err := s.getBySlug(ctx, slug)
	if err != nil {
		return event.Event{}, err
	}

	if s.generation.Load() == gen {
		s.cacheSet(ctx, slugKeyPrefix+slug, e)
	}

	return e, nil
}

// GetByID is used by bookings to resolve the referenced event.
func (s *EventsService) GetByID(ctx context.Context, id string) (event.Event, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	e, err := s.store.GetByID(storeCtx, id)
	if err != nil {
		return event.Event{}, storeErr("events.get_by_id", err)
	}
	return e, nil
}

func (s *EventsService) getBySlug(ctx context.Context, slug string) (event.Event, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	e, err := s.store.GetBySlug(storeCtx, slug)
	if err != nil {
		return event.Event{}, storeErr("events.get_by_slug", err)
	}
	return e, nil
}

// ensureSlugFree fails with ErrSlugTaken when slug belongs to an event other than ownerID.
func (s *EventsService) ensureSlugFree(ctx context.Context, slug, ownerID string) error {
	other, err := s.getBySlug(ctx, slug)

	switch {
	case errors.Is(err, event.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != ownerID:
		return event.ErrSlugTaken
	default:
		return nil
	}
}

func (s *EventsService) upload(ctx context.Context, image []byte) (string, error) {
	upCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	url, err := s.uploader.Upload(upCtx, image, s.cfg.MediaFolder)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrEmptyImage), errors.Is(err, media.ErrNotAnImage):
			return "", &event.ValidationError{Field: "image", Message: err.Error()}
		default:
			return "", &InfraError{Op: "media.upload", Err: err}
		}
	}

	return url, nil
}

func (s *EventsService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.prom.IncCache("error")
		s.log.WarnContext(ctx, "event cache read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		s.prom.IncCache("miss")
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.prom.IncCache("error")
		return false
	}

	s.prom.IncCache("hit")
	return true
}

func (s *EventsService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.log.WarnContext(ctx, "event cache write failed", "key", key, "err", err)
	}
}

// invalidate drops the listing and every given slug entry after a write.
func (s *EventsService) invalidate(ctx context.Context, slugs ...string) {
	s.generation.Add(1)

	if s.cache == nil {
		return
	}

	keys := []string{listAllKey}
	for _, slug := range slugs {
		keys = append(keys, slugKeyPrefix+slug)
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.ErrorContext(ctx, "event cache invalidation failed", "keys", keys, "err", err)
	}
}

// storeErr passes domain outcomes through and wraps everything else.
func storeErr(op string, err error) error {
	if errors.Is(err, event.ErrNotFound) || errors.Is(err, event.ErrSlugTaken) {
		return err
	}
	return &InfraError{Op: op, Err: err}
}
