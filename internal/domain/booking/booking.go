package booking

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateBookingRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Email   string `json:"email" binding:"required"`
}

// ValidationError covers both a malformed email and a dangling event reference.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrInvalidEmail   = &ValidationError{Field: "email", Message: "a valid email address is required"}
	ErrEventNotExists = &ValidationError{Field: "eventId", Message: "referenced event does not exist"}
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// NewFromCreateRequest validates the email shape and builds a Booking.
// Event existence is checked by the caller against the store.
func NewFromCreateRequest(req CreateBookingRequest) (Booking, error) {
	email := NormalizeEmail(req.Email)
	if !IsValidEmail(email) {
		return Booking{}, ErrInvalidEmail
	}

	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" {
		return Booking{}, ErrEventNotExists
	}

	now := time.Now().UTC()
	return Booking{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
