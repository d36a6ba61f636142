package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

// Weekday is a weekday token as used by the admin client: 1 is Sunday, 2 is Monday ... 7 is Saturday.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const patternSeparator = "-"

// WeekdayOf returns the token for the calendar day of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()) + 1)
}

// Valid reports whether w is one of the seven tokens.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// Std converts the token to a time.Weekday.
func (w Weekday) Std() time.Weekday {
	return time.Weekday(int(w) - 1)
}

// rank orders tokens Monday first, Sunday last.
func (w Weekday) rank() int {
	return (int(w) + 5) % 7
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return w.Std().String()
}

// Pattern is a canonical (Mon..Sun ordered, duplicate free) set of weekday tokens.
type Pattern []Weekday

// ParsePattern parses a hyphen-joined token list such as "2-4-6". Each token is a single digit 1..7;
// repeated tokens collapse.
func ParsePattern(raw string) (Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, appErrors.Clone(appErrors.ErrEmptyPattern, "")
	}
	seen := make(map[Weekday]bool, 7)
	var pattern Pattern
	for _, part := range strings.Split(raw, patternSeparator) {
		day, ok := parseToken(strings.TrimSpace(part))
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidPattern, fmt.Sprintf("invalid weekday token %q in pattern %q", part, raw))
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		pattern = append(pattern, day)
	}
	sort.Slice(pattern, func(i, j int) bool { return pattern[i].rank() < pattern[j].rank() })
	return pattern, nil
}

func parseToken(token string) (Weekday, bool) {
	if len(token) != 1 || token[0] < '1' || token[0] > '7' {
		return 0, false
	}
	return Weekday(token[0] - '0'), true
}

// String renders the canonical hyphen-joined form.
func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, day := range p {
		parts[i] = strconv.Itoa(int(day))
	}
	return strings.Join(parts, patternSeparator)
}

// Contains reports whether day is part of the pattern.
func (p Pattern) Contains(day Weekday) bool {
	for _, d := range p {
		if d == day {
			return true
		}
	}
	return false
}

// ValidateStart fails with PATTERN_MISMATCH when the date does not fall on a pattern day.
func (p Pattern) ValidateStart(date time.Time) error {
	if len(p) == 0 {
		return appErrors.Clone(appErrors.ErrEmptyPattern, "")
	}
	day := WeekdayOf(date)
	if !p.Contains(day) {
		return appErrors.Clone(appErrors.ErrPatternMismatch,
			fmt.Sprintf("start date %s is a %s (token %d) which is not in pattern %s", FormatDate(date), day, int(day), p))
	}
	return nil
}

// Dates enumerates the pattern days in [start, start + weeks*7 days).
func (p Pattern) Dates(start time.Time, weeks int) []time.Time {
	if weeks <= 0 || len(p) == 0 {
		return nil
	}
	start = DateOnly(start)
	days := weeks * 7
	dates := make([]time.Time, 0, weeks*len(p))
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		if p.Contains(WeekdayOf(date)) {
			dates = append(dates, date)
		}
	}
	return dates
}

// FirstN returns the first n pattern days on or after start.
func (p Pattern) FirstN(start time.Time, n int) []time.Time {
	if n <= 0 || len(p) == 0 {
		return nil
	}
	start = DateOnly(start)
	dates := make([]time.Time, 0, n)
	for date := start; len(dates) < n; date = date.AddDate(0, 0, 1) {
		if p.Contains(WeekdayOf(date)) {
			dates = append(dates, date)
		}
	}
	return dates
}

// WeeksFor returns the horizon in weeks needed to hold n sessions starting at start.
func (p Pattern) WeeksFor(start time.Time, n int) int {
	dates := p.FirstN(start, n)
	if len(dates) == 0 {
		return 0
	}
	span := int(dates[len(dates)-1].Sub(DateOnly(start)).Hours()/24) + 1
	return (span + 6) / 7
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return t, nil
}

// FormatDate renders t as an ISO date.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = DateOnly(t)
	return t.AddDate(0, 0, -WeekdayOf(t).rank())
}
