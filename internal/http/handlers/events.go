package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type EventsService interface {
	Authorize(token string) error
	Create(ctx context.Context, token string, d event.Draft, image []byte) (event.Event, error)
	Update(ctx context.Context, token, slug string, d event.Draft, image []byte) (event.Event, error)
	Delete(ctx context.Context, token, slug string) error
	Find(ctx context.Context, search *string) ([]event.Event, error)
	FindBySlug(ctx context.Context, slug string) (event.Event, error)
}

type EventsHandler struct {
	svc      EventsService
	log      *slog.Logger
	maxImage int64
}

func NewEventsHandler(svc EventsService, log *slog.Logger, maxImage int64) *EventsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &EventsHandler{svc: svc, log: log, maxImage: maxImage}
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	var search *string
	if q := strings.TrimSpace(ctx.Query("search")); q != "" {
		search = &q
	}

	events, err := h.svc.Find(ctx.Request.Context(), search)
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not list events")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

func (h *EventsHandler) GetEvent(ctx *gin.Context) {
	e, err := h.svc.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not fetch event")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

// RequireAdmin rejects event writes without a valid admin token before the
// body is read.
func (h *EventsHandler) RequireAdmin(ctx *gin.Context) {
	if err := h.svc.Authorize(middlewares.AdminToken(ctx)); err != nil {
		respondServiceError(ctx, h.log, err, "Could not authorize request")
		return
	}
	ctx.Next()
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	d, image, ok := h.bindForm(ctx)
	if !ok {
		return
	}

	e, err := h.svc.Create(ctx.Request.Context(), middlewares.AdminToken(ctx), d, image)
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not create event")
		return
	}

	ctx.Header("Location", "/events/"+e.Slug)
	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	d, image, ok := h.bindForm(ctx)
	if !ok {
		return
	}

	e, err := h.svc.Update(ctx.Request.Context(), middlewares.AdminToken(ctx), ctx.Param("slug"), d, image)
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not update event")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	err := h.svc.Delete(ctx.Request.Context(), middlewares.AdminToken(ctx), ctx.Param("slug"))
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not delete event")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventsHandler) bindForm(ctx *gin.Context) (event.Draft, []byte, bool) {
	d, image, err := parseEventForm(ctx, h.maxImage)
	if err == nil {
		return d, image, true
	}

	var (
		vErr     *event.ValidationError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &vErr):
		RespondBadRequest(ctx, vErr.Error(), []FieldError{{Field: vErr.Field, Rule: "invalid", Message: vErr.Message}})
	case errors.Is(err, errImageTooLarge), errors.As(err, &tooLarge):
		RespondTooLarge(ctx, "Image is too large")
	default:
		RespondBadRequest(ctx, "Invalid multipart form", gin.H{"reason": err.Error()})
	}

	return event.Draft{}, nil, false
}
