package scheduling

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

const minutesPerDay = 24 * 60

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", time.TimeOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
}

// MustClock parses raw and panics on failure. Intended for constants and tests.
func MustClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Add returns the clock shifted by minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Valid reports whether the clock lies within a single day (24:00 allowed as an end bound).
func (c Clock) Valid() bool {
	return c >= 0 && c <= minutesPerDay
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON renders the clock as "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "HH:MM" strings.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the clock in a Postgres TIME column.
func (c Clock) Value() (driver.Value, error) {
	if c == minutesPerDay {
		return "24:00:00", nil
	}
	return c.String() + ":00", nil
}

// Scan reads TIME columns as delivered by lib/pq (time.Time) or as text.
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	case []byte:
		return c.scanText(string(v))
	case string:
		return c.scanText(v)
	case int64:
		*c = Clock(v)
		return nil
	case nil:
		*c = 0
		return nil
	default:
		return fmt.Errorf("scan clock: unsupported type %T", src)
	}
}

func (c *Clock) scanText(raw string) error {
	if strings.HasPrefix(raw, "24:00") {
		*c = minutesPerDay
		return nil
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return fmt.Errorf("scan clock %q: %w", raw, err)
	}
	*c = parsed
	return nil
}

// Window is a half-open time-of-day interval [Start, End).
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewWindow builds the window starting at start and lasting durationMinutes.
func NewWindow(start Clock, durationMinutes int) Window {
	return Window{Start: start, End: start.Add(durationMinutes)}
}

// Overlaps reports half-open interval intersection; touching windows do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Intersect returns the overlapping part of two windows.
func (w Window) Intersect(o Window) (Window, bool) {
	if !w.Overlaps(o) {
		return Window{}, false
	}
	out := Window{Start: w.Start, End: w.End}
	if o.Start > out.Start {
		out.Start = o.Start
	}
	if o.End < out.End {
		out.End = o.End
	}
	return out, true
}

// Minutes returns the window length.
func (w Window) Minutes() int {
	return int(w.End - w.Start)
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Period buckets used by the weekly grid.
const (
	PeriodMorning   = "MORNING"
	PeriodAfternoon = "AFTERNOON"
	PeriodEvening   = "EVENING"
)

var (
	afternoonStart = MustClock("12:00")
	eveningStart   = MustClock("17:00")
)

// PeriodOf buckets a start time into a grid period.
func PeriodOf(start Clock) string {
	switch {
	case start < afternoonStart:
		return PeriodMorning
	case start < eveningStart:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}
