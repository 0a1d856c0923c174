package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/geocoder89/devevent/internal/domain/event"
	"github.com/gin-gonic/gin"
)

const (
	imageField = "image"
	// parts beyond this are spooled to temp files
	multipartMemory = 8 << 20
)

var errImageTooLarge = errors.New("image too large")

// parseEventForm reads the multipart event form. agenda and tags arrive as
// JSON arrays of strings. The image is optional here; the service decides.
func parseEventForm(ctx *gin.Context, maxImage int64) (event.Draft, []byte, error) {
	if err := ctx.Request.ParseMultipartForm(multipartMemory); err != nil {
		return event.Draft{}, nil, err
	}

	d := event.Draft{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Overview:    ctx.PostForm("overview"),
		Venue:       ctx.PostForm("venue"),
		Location:    ctx.PostForm("location"),
		Date:        ctx.PostForm("date"),
		Time:        ctx.PostForm("time"),
		Mode:        ctx.PostForm("mode"),
		Audience:    ctx.PostForm("audience"),
		Organizer:   ctx.PostForm("organizer"),
	}

	var err error
	if d.Agenda, err = jsonList(ctx, "agenda"); err != nil {
		return event.Draft{}, nil, err
	}
	if d.Tags, err = jsonList(ctx, "tags"); err != nil {
		return event.Draft{}, nil, err
	}

	image, err := readImage(ctx, maxImage)
	if err != nil {
		return event.Draft{}, nil, err
	}

	return d, image, nil
}

func jsonList(ctx *gin.Context, field string) ([]string, error) {
	raw := strings.TrimSpace(ctx.PostForm(field))
	if raw == "" {
		return nil, nil
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &event.ValidationError{Field: field, Message: "must be a JSON array of strings"}
	}
	return out, nil
}

func readImage(ctx *gin.Context, maxImage int64) ([]byte, error) {
	fh, err := ctx.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	if maxImage > 0 && fh.Size > maxImage {
		return nil, errImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
