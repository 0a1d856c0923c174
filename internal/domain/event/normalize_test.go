package event

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "React Summit 2025", "react-summit-2025"},
		{"punctuation runs", "Next.js   Conf -- 2025!!", "next-js-conf-2025"},
		{"leading and trailing junk", "  --Go & Rust--  ", "go-rust"},
		{"already a slug", "web3-dev-summit", "web3-dev-summit"},
		{"non ascii letters", "Café Über", "caf-ber"},
		{"only symbols", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlugify_IdempotentAndWellFormed(t *testing.T) {
	inputs := []string{
		"React Summit 2025",
		"  TypeScript: Advanced Workshop (London) ",
		"---",
		"a--b__c  d",
		"JavaScript Annual Hackathon!!!",
		"日本語 Title 42",
		"UPPER lower 123",
	}

	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)

		if once != "" {
			assert.Regexp(t, slugShape, once, "input %q", in)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	valid := map[string]string{
		"09:05":    "09:05",
		"9:05":     "09:05",
		"9:05:30":  "09:05",
		"23:59":    "23:59",
		"00:00":    "00:00",
		" 7:30 ":   "07:30",
		"12:00:00": "12:00",
	}

	for in, want := range valid {
		got, err := NormalizeTime(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	invalidInputs := []string{"9:5", "24:00", "12:60", "noon", "", "123:00", "9.05", "09:05 PM"}

	for _, in := range invalidInputs {
		_, err := NormalizeTime(in)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "input %q", in)
		assert.Equal(t, "time", vErr.Field)
	}
}

func TestNormalizeDate(t *testing.T) {
	valid := map[string]string{
		"2025-06-03":                "2025-06-03",
		"2025-6-3":                  "2025-06-03",
		"2025-06-03T22:30:00-05:00": "2025-06-04",
		"2025-06-03T10:00:00Z":      "2025-06-03",
		"2025/06/03":                "2025-06-03",
		"6/3/2025":                  "2025-06-03",
		"June 3, 2025":              "2025-06-03",
		"Jun 3 2025":                "2025-06-03",
		"3 June 2025":               "2025-06-03",
	}

	for in, want := range valid {
		got, err := NormalizeDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, in := range []string{"not-a-date", "", "2025-13-40", "June 3-4, 2025"} {
		_, err := NormalizeDate(in)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "input %q", in)
		assert.Equal(t, "date", vErr.Field)
	}
}

func validEvent() Event {
	return Event{
		Title:       "  React Summit 2025 ",
		Description: "The biggest React conference",
		Overview:    "Two days of talks",
		Image:       "https://cdn.test/react.png",
		Venue:       "RAI",
		Location:    "Amsterdam, Netherlands",
		Date:        "June 3, 2025",
		Time:        "9:00",
		Mode:        "Hybrid",
		Audience:    "React developers",
		Agenda:      []string{" Keynote ", "Workshops"},
		Organizer:   "GitNation",
		Tags:        []string{"react", " React ", "frontend"},
	}
}

func TestPrepare_NormalizesEverything(t *testing.T) {
	e := validEvent()

	require.NoError(t, Prepare(&e, false))

	assert.Equal(t, "React Summit 2025", e.Title)
	assert.Equal(t, "react-summit-2025", e.Slug)
	assert.Equal(t, "2025-06-03", e.Date)
	assert.Equal(t, "09:00", e.Time)
	assert.Equal(t, ModeHybrid, e.Mode)
	assert.Equal(t, []string{"Keynote", "Workshops"}, e.Agenda)
	assert.Equal(t, []string{"react", "frontend"}, e.Tags)
}

func TestPrepare_SlugOnlyRegeneratedOnTitleChange(t *testing.T) {
	e := validEvent()
	e.Slug = "custom-slug"

	require.NoError(t, Prepare(&e, false))
	assert.Equal(t, "custom-slug", e.Slug)

	require.NoError(t, Prepare(&e, true))
	assert.Equal(t, "react-summit-2025", e.Slug)
}

func TestPrepare_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Event)
		field  string
	}{
		{"blank title", func(e *Event) { e.Title = "   " }, "title"},
		{"blank overview", func(e *Event) { e.Overview = "" }, "overview"},
		{"missing image", func(e *Event) { e.Image = "" }, "image"},
		{"blank organizer", func(e *Event) { e.Organizer = " " }, "organizer"},
		{"missing mode", func(e *Event) { e.Mode = "" }, "mode"},
		{"unknown mode", func(e *Event) { e.Mode = "virtual" }, "mode"},
		{"empty agenda", func(e *Event) { e.Agenda = nil }, "agenda"},
		{"blank agenda line", func(e *Event) { e.Agenda = []string{"ok", " "} }, "agenda"},
		{"empty tags", func(e *Event) { e.Tags = []string{} }, "tags"},
		{"title without slug characters", func(e *Event) { e.Title = "!!!" }, "title"},
		{"bad date", func(e *Event) { e.Date = "not-a-date" }, "date"},
		{"bad time", func(e *Event) { e.Time = "24:00" }, "time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := Prepare(&e, true)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestApplyDraft_KeepsImageWhenOmitted(t *testing.T) {
	existing := validEvent()
	require.NoError(t, Prepare(&existing, true))
	existing.ID = "evt-1"

	d := Draft{
		Title:       existing.Title,
		Description: "changed",
		Agenda:      []string{"a"},
		Tags:        []string{"b"},
	}

	updated, titleChanged := ApplyDraft(existing, d)

	assert.False(t, titleChanged)
	assert.Equal(t, existing.Image, updated.Image)
	assert.Equal(t, "changed", updated.Description)
	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)

	d.Title = "Renamed Summit"
	d.Image = "https://cdn.test/new.png"
	updated, titleChanged = ApplyDraft(existing, d)

	assert.True(t, titleChanged)
	assert.Equal(t, "https://cdn.test/new.png", updated.Image)
}
