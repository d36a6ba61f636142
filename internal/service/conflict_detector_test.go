package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

func TestDetectReportsOverlapWindow(t *testing.T) {
	store := newMemSessions(booking("s-1", "c-1", "r-1", "l-1", "2024-03-04", "18:00", "20:00"))
	detector := NewConflictDetector(store)

	cand := Candidate{Dates: []time.Time{day("2024-03-04")}, Window: scheduling.Window{Start: clock("19:00"), End: clock("21:00")}}
	conflicts, err := detector.Detect(context.Background(), cand, models.ResourceRoom, "r-1")

	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "s-1", conflicts[0].SessionID)
	assert.Equal(t, "2024-03-04", conflicts[0].ConflictDate)
	assert.Equal(t, "19:00-20:00", conflicts[0].OverlapWindow.String())
	assert.Equal(t, "18:00-20:00", conflicts[0].ExistingWindow.String())
	assert.Equal(t, "Room r-1", conflicts[0].ResourceName)
}

func TestDetectTouchingWindowsDoNotConflict(t *testing.T) {
	store := newMemSessions(booking("s-1", "c-1", "r-1", "l-1", "2024-03-04", "18:00", "20:00"))
	detector := NewConflictDetector(store)

	cand := Candidate{Dates: []time.Time{day("2024-03-04")}, Window: scheduling.Window{Start: clock("20:00"), End: clock("22:00")}}
	conflicts, err := detector.Detect(context.Background(), cand, models.ResourceRoom, "r-1")

	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetectOverlapMatrix(t *testing.T) {
	existing := booking("s-1", "c-1", "r-1", "l-1", "2024-03-04", "10:00", "12:00")
	cases := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{"ends when existing starts", "08:00", "10:00", false},
		{"starts when existing ends", "12:00", "14:00", false},
		{"inside", "10:30", "11:00", true},
		{"covers", "09:00", "13:00", true},
		{"one minute overlap", "11:59", "13:00", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detector := NewConflictDetector(newMemSessions(existing))
			cand := Candidate{Dates: []time.Time{day("2024-03-04")}, Window: scheduling.Window{Start: clock(tc.start), End: clock(tc.end)}}

			conflicts, err := detector.Detect(context.Background(), cand, models.ResourceLecturer, "l-1")

			require.NoError(t, err)
			assert.Equal(t, tc.conflict, len(conflicts) == 1)
		})
	}
}

func TestDetectIgnoresCanceledExcludedAndOtherResources(t *testing.T) {
	canceled := booking("s-canceled", "c-1", "r-1", "l-1", "2024-03-04", "18:00", "20:00")
	canceled.Status = models.SessionCanceled
	store := newMemSessions(
		canceled,
		booking("s-excluded", "c-1", "r-1", "l-1", "2024-03-04", "18:00", "20:00"),
		booking("s-other-room", "c-2", "r-2", "l-2", "2024-03-04", "18:00", "20:00"),
		booking("s-other-day", "c-3", "r-1", "l-1", "2024-03-05", "18:00", "20:00"),
	)
	detector := NewConflictDetector(store)

	cand := Candidate{
		Dates:             []time.Time{day("2024-03-04")},
		Window:            scheduling.Window{Start: clock("18:00"), End: clock("20:00")},
		ExcludeSessionIDs: []string{"s-excluded"},
	}
	conflicts, err := detector.Detect(context.Background(), cand, models.ResourceRoom, "r-1")

	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestBookingIndexMatchesDetect(t *testing.T) {
	store := newMemSessions(
		booking("s-1", "c-1", "r-1", "l-1", "2024-03-11", "18:00", "20:00"),
		booking("s-2", "c-2", "r-2", "l-1", "2024-03-04", "19:00", "21:00"),
	)
	detector := NewConflictDetector(store)
	pattern, err := scheduling.ParsePattern("2")
	require.NoError(t, err)
	cand := RecurringCandidate(pattern, day("2024-03-04"), scheduling.NewWindow(clock("18:00"), 120), 4)

	index, err := detector.Bookings(context.Background(), cand)
	require.NoError(t, err)

	for _, probe := range []struct {
		kind models.ResourceType
		id   string
	}{{models.ResourceRoom, "r-1"}, {models.ResourceRoom, "r-2"}, {models.ResourceLecturer, "l-1"}, {models.ResourceLecturer, "l-2"}} {
		direct, err := detector.Detect(context.Background(), cand, probe.kind, probe.id)
		require.NoError(t, err)
		assert.Equal(t, direct, index.Conflicts(probe.kind, probe.id), "%s %s", probe.kind, probe.id)
	}

	lecturer := index.Conflicts(models.ResourceLecturer, "l-1")
	require.Len(t, lecturer, 2)
	assert.Equal(t, "2024-03-04", lecturer[0].ConflictDate)
	assert.Equal(t, "2024-03-11", lecturer[1].ConflictDate)
}

func TestDetectWithoutDatesSkipsStore(t *testing.T) {
	detector := NewConflictDetector(nil)

	conflicts, err := detector.Detect(context.Background(), Candidate{}, models.ResourceRoom, "r-1")

	require.NoError(t, err)
	assert.Nil(t, conflicts)
}
