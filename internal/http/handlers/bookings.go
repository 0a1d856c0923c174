package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/devevent/internal/domain/booking"
	"github.com/gin-gonic/gin"
)

type BookingsService interface {
	Create(ctx context.Context, req booking.CreateBookingRequest) (booking.Booking, error)
}

type BookingsHandler struct {
	svc BookingsService
	log *slog.Logger
}

func NewBookingsHandler(svc BookingsService, log *slog.Logger) *BookingsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BookingsHandler{svc: svc, log: log}
}

func (h *BookingsHandler) CreateBooking(ctx *gin.Context) {
	var req booking.CreateBookingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not create booking")
		return
	}

	ctx.JSON(http.StatusCreated, b)
}
