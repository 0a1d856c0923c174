package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/devevent/internal/http/middlewares"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/gin-gonic/gin"
)

type TokenIssuer interface {
	IssueAdminToken() (string, error)
	TTL() time.Duration
}

type CredentialChecker interface {
	Check(username, password string) bool
}

type AdminHandler struct {
	tokens TokenIssuer
	creds  CredentialChecker
	events EventsService
	log    *slog.Logger
	prom   *observability.Prom
	secure bool
}

func NewAdminHandler(
	tokens TokenIssuer,
	creds CredentialChecker,
	events EventsService,
	log *slog.Logger,
	prom *observability.Prom,
	secureCookies bool,
) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{
		tokens: tokens,
		creds:  creds,
		events: events,
		log:    log,
		prom:   prom,
		secure: secureCookies,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !h.creds.Check(req.Username, req.Password) {
		h.prom.IncLogin("invalid")
		h.log.WarnContext(ctx.Request.Context(), "admin login rejected", "request_id", requestIDFrom(ctx))
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := h.tokens.IssueAdminToken()
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "could not issue admin token", "err", err)
		RespondInternal(ctx, "Could not sign in")
		return
	}

	h.prom.IncLogin("ok")
	h.setAdminCookie(ctx, token, int(h.tokens.TTL().Seconds()))

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the cookie. The token itself stays valid until it expires.
func (h *AdminHandler) Logout(ctx *gin.Context) {
	h.setAdminCookie(ctx, "", -1)
	ctx.Status(http.StatusNoContent)
}

func (h *AdminHandler) LoginPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"title":  "Admin sign in",
		"method": http.MethodPost,
		"action": middlewares.AdminLoginPath,
		"fields": []FormField{
			{Name: "username", Label: "Username", Type: "text", Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
		},
	})
}

func (h *AdminHandler) Dashboard(ctx *gin.Context) {
	events, err := h.events.Find(ctx.Request.Context(), nil)
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not load dashboard")
		return
	}

	type row struct {
		Title string `json:"title"`
		Slug  string `json:"slug"`
		Date  string `json:"date"`
		Time  string `json:"time"`
		Mode  string `json:"mode"`
		Edit  string `json:"editUrl"`
	}

	rows := make([]row, 0, len(events))
	for _, e := range events {
		rows = append(rows, row{
			Title: e.Title,
			Slug:  e.Slug,
			Date:  e.Date,
			Time:  e.Time,
			Mode:  string(e.Mode),
			Edit:  "/admin/events/" + e.Slug + "/edit",
		})
	}

	role, _ := middlewares.RoleFromContext(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"role":      role,
		"events":    rows,
		"count":     len(rows),
		"createUrl": "/admin/events/new",
	})
}

func (h *AdminHandler) NewEventForm(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, BuildEventForm(CreateMode{}))
}

func (h *AdminHandler) EditEventForm(ctx *gin.Context) {
	e, err := h.events.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondServiceError(ctx, h.log, err, "Could not load event")
		return
	}

	ctx.JSON(http.StatusOK, BuildEventForm(EditMode{Event: e}))
}

func (h *AdminHandler) setAdminCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.AdminCookieName,
		value,
		maxAge,
		"/",
		"",
		h.secure,
		true, // HttpOnly.
	)
}
