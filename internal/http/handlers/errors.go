package handlers

import (
	"errors"
	"log/slog"

	"github.com/geocoder89/devevent/internal/domain/booking"
	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/geocoder89/devevent/internal/service"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps service and domain errors onto the API envelope.
// Anything unrecognised is logged and answered with a generic 500.
func respondServiceError(ctx *gin.Context, log *slog.Logger, err error, internalMsg string) {
	var (
		eventErr   *event.ValidationError
		bookingErr *booking.ValidationError
	)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		RespondUnauthorized(ctx, "unauthorized", "Admin authentication required.")
	case errors.Is(err, service.ErrForbidden):
		RespondForbidden(ctx, "Admin access required.")
	case errors.As(err, &eventErr):
		RespondBadRequest(ctx, eventErr.Error(), []FieldError{{Field: eventErr.Field, Rule: "invalid", Message: eventErr.Message}})
	case errors.As(err, &bookingErr):
		RespondBadRequest(ctx, bookingErr.Error(), []FieldError{{Field: bookingErr.Field, Rule: "invalid", Message: bookingErr.Message}})
	case errors.Is(err, event.ErrNotFound):
		RespondNotFound(ctx, "Event not found")
	case errors.Is(err, event.ErrSlugTaken):
		RespondConflict(ctx, "slug_taken", "An event with this title already exists.")
	default:
		_ = ctx.Error(err)
		log.ErrorContext(ctx.Request.Context(), internalMsg,
			"err", err,
			"request_id", requestIDFrom(ctx),
		)
		RespondInternal(ctx, internalMsg)
	}
}
