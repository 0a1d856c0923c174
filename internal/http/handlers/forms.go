package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/geocoder89/devevent/internal/domain/event"
)

// FormMode selects which event form to describe: CreateMode or EditMode.
type FormMode interface {
	formMode()
}

type CreateMode struct{}

type EditMode struct {
	Event event.Event
}

func (CreateMode) formMode() {}
func (EditMode) formMode()   {}

type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Value    string   `json:"value,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// EventForm describes the admin event form; clients render it however they like.
type EventForm struct {
	Title       string      `json:"title"`
	Method      string      `json:"method"`
	Action      string      `json:"action"`
	Enctype     string      `json:"enctype"`
	SubmitLabel string      `json:"submitLabel"`
	Fields      []FormField `json:"fields"`
	// CurrentImage is shown next to the optional image input when editing.
	CurrentImage string `json:"currentImage,omitempty"`
}

func BuildEventForm(mode FormMode) EventForm {
	var (
		form  EventForm
		ev    event.Event
		isNew bool
	)

	switch m := mode.(type) {
	case EditMode:
		ev = m.Event
		form = EventForm{
			Title:        "Edit " + ev.Title,
			Method:       http.MethodPut,
			Action:       "/events/" + ev.Slug,
			SubmitLabel:  "Save changes",
			CurrentImage: ev.Image,
		}
	default:
		isNew = true
		form = EventForm{
			Title:       "Create event",
			Method:      http.MethodPost,
			Action:      "/events",
			SubmitLabel: "Create event",
		}
	}

	form.Enctype = "multipart/form-data"
	form.Fields = []FormField{
		{Name: "title", Label: "Title", Type: "text", Required: true, Value: ev.Title},
		{Name: "description", Label: "Description", Type: "textarea", Required: true, Value: ev.Description},
		{Name: "overview", Label: "Overview", Type: "textarea", Required: true, Value: ev.Overview},
		{Name: "image", Label: "Image", Type: "file", Required: isNew},
		{Name: "venue", Label: "Venue", Type: "text", Required: true, Value: ev.Venue},
		{Name: "location", Label: "Location", Type: "text", Required: true, Value: ev.Location},
		{Name: "date", Label: "Date", Type: "date", Required: true, Value: ev.Date},
		{Name: "time", Label: "Time", Type: "time", Required: true, Value: ev.Time},
		{
			Name: "mode", Label: "Mode", Type: "select", Required: true, Value: string(ev.Mode),
			Options: []string{string(event.ModeOnline), string(event.ModeOffline), string(event.ModeHybrid)},
		},
		{Name: "audience", Label: "Audience", Type: "text", Required: true, Value: ev.Audience},
		{Name: "agenda", Label: "Agenda", Type: "list", Required: true, Value: jsonValue(ev.Agenda)},
		{Name: "organizer", Label: "Organizer", Type: "text", Required: true, Value: ev.Organizer},
		{Name: "tags", Label: "Tags", Type: "list", Required: true, Value: jsonValue(ev.Tags)},
	}

	return form
}

func jsonValue(list []string) string {
	if len(list) == 0 {
		return ""
	}
	b, _ := json.Marshal(list)
	return string(b)
}
