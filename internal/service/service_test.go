package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/devevent/internal/auth"
	"github.com/geocoder89/devevent/internal/cache"
	"github.com/geocoder89/devevent/internal/domain/booking"
	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/media"
	"github.com/geocoder89/devevent/internal/notifications"
	"github.com/geocoder89/devevent/internal/repo/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/" + folder + "/img.png", nil
}

type fixture struct {
	svc      *EventsService
	store    *memory.EventsRepo
	uploader *fakeUploader
	cache    *cache.Cache
	token    string
	tokens   *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := tokens.IssueAdminToken()
	require.NoError(t, err)

	f := &fixture{
		store:    memory.NewEventsRepo(),
		uploader: &fakeUploader{},
		cache:    cache.New(time.Minute),
		token:    token,
		tokens:   tokens,
	}
	f.svc = NewEventsService(f.store, tokens, f.uploader, f.cache, nil, nil, EventsConfig{})

	return f
}

func draft(title string) event.Draft {
	return event.Draft{
		Title:       title,
		Description: "A conference",
		Overview:    "Talks and workshops",
		Venue:       "Hall 1",
		Location:    "Berlin",
		Date:        "2025-06-03",
		Time:        "9:30",
		Mode:        "Offline",
		Audience:    "Go developers",
		Agenda:      []string{"Keynote"},
		Organizer:   "Gophers eV",
		Tags:        []string{"go", "Go", "backend"},
	}
}

func TestEventsService_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.AdminClaims{
		Role:             "user",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"no token", "", ErrUnauthorized},
		{"garbage token", "not-a-jwt", ErrForbidden},
		{"non admin role", userToken, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.Authorize(tt.token), tt.want)

			_, err := f.svc.Create(ctx, tt.token, draft("GopherCon"), imageBytes)
			assert.ErrorIs(t, err, tt.want)

			_, err = f.svc.Update(ctx, tt.token, "gophercon", draft("GopherCon"), nil)
			assert.ErrorIs(t, err, tt.want)

			assert.ErrorIs(t, f.svc.Delete(ctx, tt.token, "gophercon"), tt.want)
		})
	}

	assert.Equal(t, 0, f.uploader.calls)
	assert.NoError(t, f.svc.Authorize(f.token))
}

func TestEventsService_CreateNormalizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.Create(ctx, f.token, draft("  GopherCon EU 2025 "), imageBytes)
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "gophercon-eu-2025", e.Slug)
	assert.Equal(t, "09:30", e.Time)
	assert.Equal(t, event.ModeOffline, e.Mode)
	assert.Equal(t, []string{"go", "backend"}, e.Tags)
	assert.Equal(t, "https://cdn.test/DevEvent/img.png", e.Image)

	got, err := f.svc.FindBySlug(ctx, "  GopherCon-EU-2025 ")
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestEventsService_CreateRejectsBeforeUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.token, draft("GopherCon"), nil)
	var vErr *event.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "image", vErr.Field)

	bad := draft("GopherCon")
	bad.Time = "25:00"
	_, err = f.svc.Create(ctx, f.token, bad, imageBytes)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "time", vErr.Field)

	_, err = f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.token, draft("gophercon!"), imageBytes)
	assert.ErrorIs(t, err, event.ErrSlugTaken)

	assert.Equal(t, 1, f.uploader.calls)
}

func TestEventsService_UploadFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.uploader.err = media.ErrNotAnImage
	_, err := f.svc.Create(ctx, f.token, draft("GopherCon"), []byte("text"))
	var vErr *event.ValidationError
	require.ErrorAs(t, err, &vErr)

	f.uploader.err = errors.New("bucket unreachable")
	_, err = f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	assert.True(t, IsInfra(err))

	all, err := f.svc.Find(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEventsService_UpdateKeepsImageAndSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	d := draft("GopherCon")
	d.Description = "Updated description"
	updated, err := f.svc.Update(ctx, f.token, created.Slug, d, nil)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Updated description", updated.Description)
	assert.Equal(t, 1, f.uploader.calls)

	renamed, err := f.svc.Update(ctx, f.token, created.Slug, draft("GopherCon Europe"), imageBytes)
	require.NoError(t, err)
	assert.Equal(t, "gophercon-europe", renamed.Slug)
	assert.Equal(t, 2, f.uploader.calls)

	_, err = f.svc.FindBySlug(ctx, "gophercon")
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestEventsService_UpdateSlugCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, f.token, draft("RustConf"), imageBytes)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.token, other.Slug, draft("GopherCon"), nil)
	assert.ErrorIs(t, err, event.ErrSlugTaken)

	_, err = f.svc.Update(ctx, f.token, "missing", draft("Anything"), nil)
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestEventsService_ReadCacheInvalidatedOnWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	all, err := f.svc.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = f.svc.FindBySlug(ctx, first.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.Len())

	_, err = f.svc.Create(ctx, f.token, draft("RustConf"), imageBytes)
	require.NoError(t, err)

	all, err = f.svc.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, f.svc.Delete(ctx, f.token, first.Slug))

	_, err = f.svc.FindBySlug(ctx, first.Slug)
	assert.ErrorIs(t, err, event.ErrNotFound)

	all, err = f.svc.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// writeDuringList runs onList once, after the store has answered but before
// the service caches the result.
type writeDuringList struct {
	*memory.EventsRepo
	onList func()
}

func (w *writeDuringList) List(ctx context.Context, filter event.ListFilter) ([]event.Event, error) {
	events, err := w.EventsRepo.List(ctx, filter)
	if w.onList != nil {
		hook := w.onList
		w.onList = nil
		hook()
	}
	return events, err
}

func TestEventsService_StaleListIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store := &writeDuringList{EventsRepo: f.store}
	svc := NewEventsService(store, f.tokens, f.uploader, f.cache, nil, nil, EventsConfig{})

	store.onList = func() {
		_, err := svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
		require.NoError(t, err)
	}

	stale, err := svc.Find(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, stale)
	assert.Equal(t, 0, f.cache.Len())

	fresh, err := svc.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestEventsService_SearchIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	q := "BACKEND"
	got, err := f.svc.Find(ctx, &q)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, f.cache.Len())
}

type recordingNotifier struct {
	sent []notifications.BookingConfirmation
	err  error
}

func (r *recordingNotifier) SendBookingConfirmation(_ context.Context, in notifications.BookingConfirmation) error {
	r.sent = append(r.sent, in)
	return r.err
}

type failingBookingStore struct{}

func (failingBookingStore) Create(context.Context, booking.Booking) error {
	return errors.New("connection reset")
}

func TestBookingsService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	store := memory.NewBookingsRepo()
	notifier := &recordingNotifier{}
	svc := NewBookingsService(store, f.svc, notifier, nil, nil)

	b, err := svc.Create(ctx, booking.CreateBookingRequest{EventID: ev.ID, Email: "  Dev@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", b.Email)

	saved, err := store.ListByEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "GopherCon", notifier.sent[0].EventTitle)
	assert.Equal(t, b.ID, notifier.sent[0].BookingID)
}

func TestBookingsService_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	store := memory.NewBookingsRepo()
	svc := NewBookingsService(store, f.svc, nil, nil, nil)

	tests := []struct {
		name  string
		req   booking.CreateBookingRequest
		field string
	}{
		{"bad email", booking.CreateBookingRequest{EventID: ev.ID, Email: "not-an-email"}, "email"},
		{"email with spaces", booking.CreateBookingRequest{EventID: ev.ID, Email: "a b@c.io"}, "email"},
		{"unknown event", booking.CreateBookingRequest{EventID: "3f1e0d4c-0000-4000-8000-000000000000", Email: "a@b.io"}, "eventId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)

			var vErr *booking.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	saved, err := store.ListByEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestBookingsService_NotifierFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	notifier := &recordingNotifier{err: notifications.ErrCircuitOpen}
	svc := NewBookingsService(memory.NewBookingsRepo(), f.svc, notifier, nil, nil)

	_, err = svc.Create(ctx, booking.CreateBookingRequest{EventID: ev.ID, Email: "a@b.io"})
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
}

func TestBookingsService_StoreFailureIsInfra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ev, err := f.svc.Create(ctx, f.token, draft("GopherCon"), imageBytes)
	require.NoError(t, err)

	svc := NewBookingsService(failingBookingStore{}, f.svc, nil, nil, nil)

	_, err = svc.Create(ctx, booking.CreateBookingRequest{EventID: ev.ID, Email: "a@b.io"})
	assert.True(t, IsInfra(err))
}
