package integration_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/devevent/internal/auth"
	"github.com/geocoder89/devevent/internal/cache"
	apphttp "github.com/geocoder89/devevent/internal/http"
	"github.com/geocoder89/devevent/internal/http/middlewares"
	"github.com/geocoder89/devevent/internal/media"
	"github.com/geocoder89/devevent/internal/notifications"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/geocoder89/devevent/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	adminUser = "admin"
	adminPass = "correct horse"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type app struct {
	router *gin.Engine
	reg    *prometheus.Registry
	prom   *observability.Prom
	tokens *auth.Manager
}

func newApp(t *testing.T, events service.EventStore, bookings service.BookingStore) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tokens, err := auth.NewManager("integration-secret", auth.DefaultAdminTTL)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	dir := t.TempDir()
	uploader := media.NewLocal(dir, "/uploads", prom)

	eventsSvc := service.NewEventsService(events, tokens, uploader, cache.New(time.Minute), logger, prom, service.EventsConfig{})
	bookingsSvc := service.NewBookingsService(bookings, eventsSvc, notifications.NewLogNotifier(logger), logger, prom)

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Env:            "test",
		MaxUploadBytes: 1 << 20,
		LocalMediaDir:  dir,
		LocalMediaURL:  "/uploads",
		Log:            logger,
		Prom:           prom,
		Gatherer:       reg,
		Tokens:         tokens,
		Credentials:    auth.NewAdminCredentials(adminUser, adminPass, ""),
		Events:         eventsSvc,
		Bookings:       bookingsSvc,
		LoginLimit:     3,
		LoginWindow:    time.Minute,
	})

	return &app{router: router, reg: reg, prom: prom, tokens: tokens}
}

func (a *app) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) login(t *testing.T) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewBufferString(`{"username":"`+adminUser+`","password":"`+adminPass+`"}`))
	req.Header.Set("Content-Type", "application/json")

	w := a.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d body=%s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.AdminCookieName {
			return c
		}
	}

	t.Fatalf("login did not set %s", middlewares.AdminCookieName)
	return nil
}

func eventForm(t *testing.T, method, target string, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}

	if image != nil {
		fw, err := w.CreateFormFile("image", "cover.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write(image)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func gopherConFields(title string) map[string]string {
	return map[string]string{
		"title":       title,
		"description": "The Go conference",
		"overview":    "Two days of Go",
		"venue":       "Estrel",
		"location":    "Berlin, Germany",
		"date":        "June 3, 2025",
		"time":        "9:00",
		"mode":        "Hybrid",
		"audience":    "Go developers",
		"organizer":   "GopherCon EU",
		"agenda":      `["Keynote","Workshops"]`,
		"tags":        `["go","backend","Go"]`,
	}
}
