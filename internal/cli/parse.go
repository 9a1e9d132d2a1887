package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/atelier/internal/core/calendar"
)

// instantLayouts are accepted for --at style flags, most specific first.
var instantLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseID parses a positive numeric entity ID.
func parseID(raw, entity string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID '%s': expected a positive number", entity, raw)
	}
	return id, nil
}

// parseInstant parses a wall-clock instant. "now" and the empty string
// resolve to the current local wall time.
func parseInstant(raw string, now func() time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "now" {
		return calendar.Wall(now()).Truncate(time.Second), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid instant %q (want YYYY-MM-DD HH:MM[:SS] or now)", raw)
}

// parseClockRange parses "HH:MM-HH:MM". The empty string yields nil bounds.
func parseClockRange(raw string) (*calendar.Clock, *calendar.Clock, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}
	from, to, ok := strings.Cut(raw, "-")
	if !ok {
		return nil, nil, fmt.Errorf("invalid range %q (want HH:MM-HH:MM)", raw)
	}
	start, err := calendar.ParseClock(strings.TrimSpace(from))
	if err != nil {
		return nil, nil, err
	}
	end, err := calendar.ParseClock(strings.TrimSpace(to))
	if err != nil {
		return nil, nil, err
	}
	return &start, &end, nil
}

// weekBounds returns Monday and Sunday of the week containing d.
func weekBounds(d time.Time) (time.Time, time.Time) {
	d = calendar.DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
