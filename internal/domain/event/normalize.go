package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDateShape = "2006-01-02"

var (
	nonSlugRun  = regexp.MustCompile(`[^a-z0-9]+`)
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
)

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	isoDateShape,
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
	"Mon, January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Slugify lower-cases and trims s, collapses every run of characters outside
// [a-z0-9] into one hyphen and strips hyphens from both ends.
func Slugify(s string) string {
	out := strings.TrimSpace(strings.ToLower(s))
	out = nonSlugRun.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// NormalizeSlug is applied to slugs arriving from URLs.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeDate renders any accepted date form as YYYY-MM-DD (UTC calendar date).
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid("date", "is required")
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC().Format(isoDateShape), nil
		}
	}

	return "", invalid("date", "invalid event date")
}

// NormalizeTime accepts H:MM, HH:MM, H:MM:SS or HH:MM:SS and renders HH:MM.
func NormalizeTime(raw string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", invalid("time", "invalid event time format; expected HH:MM (24h)")
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])

	if hours > 23 || minutes > 59 {
		return "", invalid("time", "invalid event time value")
	}

	return pad2(hours) + ":" + pad2(minutes), nil
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Prepare validates and normalizes e in place before it is persisted.
// The slug is regenerated when titleChanged is set or e has no slug yet.
func Prepare(e *Event, titleChanged bool) error {
	required := []struct {
		field string
		value *string
	}{
		{"title", &e.Title},
		{"description", &e.Description},
		{"overview", &e.Overview},
		{"image", &e.Image},
		{"venue", &e.Venue},
		{"location", &e.Location},
		{"audience", &e.Audience},
		{"organizer", &e.Organizer},
	}

	for _, r := range required {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			return invalid(r.field, "is required and cannot be empty")
		}
	}

	mode := Mode(strings.ToLower(strings.TrimSpace(string(e.Mode))))
	if mode == "" {
		return invalid("mode", "is required and cannot be empty")
	}
	if !mode.IsValid() {
		return invalid("mode", "must be one of online, offline, hybrid")
	}
	e.Mode = mode

	agenda, err := cleanLines("agenda", e.Agenda, false)
	if err != nil {
		return err
	}
	e.Agenda = agenda

	tags, err := cleanLines("tags", e.Tags, true)
	if err != nil {
		return err
	}
	e.Tags = tags

	if titleChanged || e.Slug == "" {
		e.Slug = Slugify(e.Title)
		if e.Slug == "" {
			return invalid("title", "must contain at least one letter or digit")
		}
	}

	date, err := NormalizeDate(e.Date)
	if err != nil {
		return err
	}
	e.Date = date

	t, err := NormalizeTime(e.Time)
	if err != nil {
		return err
	}
	e.Time = t

	return nil
}

func cleanLines(field string, in []string, dedupe bool) ([]string, error) {
	if len(in) == 0 {
		return nil, invalid(field, "is required and cannot be empty")
	}

	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, line := range in {
		v := strings.TrimSpace(line)
		if v == "" {
			return nil, invalid(field, "entries cannot be empty")
		}

		if dedupe {
			key := strings.ToLower(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}

		out = append(out, v)
	}

	return out, nil
}
