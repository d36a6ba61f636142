package service

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type overlapFinder interface {
	FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.SessionDetail, error)
}

// Candidate is a proposed occupancy: the same daily window on a set of dates.
type Candidate struct {
	Dates             []time.Time
	Window            scheduling.Window
	ExcludeSessionIDs []string
}

// RecurringCandidate expands a pattern over horizonWeeks starting at start.
func RecurringCandidate(pattern scheduling.Pattern, start time.Time, window scheduling.Window, horizonWeeks int) Candidate {
	return Candidate{Dates: pattern.Dates(start, horizonWeeks), Window: window}
}

func (c Candidate) dateSet() map[string]time.Time {
	set := make(map[string]time.Time, len(c.Dates))
	for _, d := range c.Dates {
		set[scheduling.FormatDate(d)] = d
	}
	return set
}

func (c Candidate) excluded() map[string]bool {
	if len(c.ExcludeSessionIDs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.ExcludeSessionIDs))
	for _, id := range c.ExcludeSessionIDs {
		set[id] = true
	}
	return set
}

func (c Candidate) query(resourceType models.ResourceType, resourceID string) models.OverlapQuery {
	return models.OverlapQuery{
		Dates:             c.Dates,
		Window:            c.Window,
		ResourceType:      resourceType,
		ResourceID:        resourceID,
		ExcludeSessionIDs: c.ExcludeSessionIDs,
	}
}

// ConflictDetector finds existing sessions that collide with a candidate. It never writes.
type ConflictDetector struct {
	finder overlapFinder
	exec   sqlx.ExtContext
}

// NewConflictDetector constructs a detector reading through finder.
func NewConflictDetector(finder overlapFinder) *ConflictDetector {
	return &ConflictDetector{finder: finder}
}

// Within returns a detector that reads through exec, typically the commit transaction.
func (d *ConflictDetector) Within(exec sqlx.ExtContext) *ConflictDetector {
	return &ConflictDetector{finder: d.finder, exec: exec}
}

// Detect lists the conflicts of one resource against the candidate.
func (d *ConflictDetector) Detect(ctx context.Context, cand Candidate, resourceType models.ResourceType, resourceID string) ([]models.ConflictRecord, error) {
	if len(cand.Dates) == 0 {
		return nil, nil
	}
	sessions, err := d.finder.FindOverlapping(ctx, d.exec, cand.query(resourceType, resourceID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing sessions")
	}
	return conflictsFor(cand, resourceType, resourceID, sessions), nil
}

// Bookings loads every session overlapping the candidate once, so many resources can be
// evaluated in memory.
func (d *ConflictDetector) Bookings(ctx context.Context, cand Candidate) (*BookingIndex, error) {
	index := &BookingIndex{
		cand:       cand,
		byRoom:     make(map[string][]models.SessionDetail),
		byLecturer: make(map[string][]models.SessionDetail),
	}
	if len(cand.Dates) == 0 {
		return index, nil
	}
	sessions, err := d.finder.FindOverlapping(ctx, d.exec, cand.query("", ""))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing sessions")
	}
	for _, s := range sessions {
		index.byRoom[s.RoomID] = append(index.byRoom[s.RoomID], s)
		index.byLecturer[s.LecturerID] = append(index.byLecturer[s.LecturerID], s)
	}
	return index, nil
}

// BookingIndex groups the sessions overlapping one candidate by room and lecturer.
type BookingIndex struct {
	cand       Candidate
	byRoom     map[string][]models.SessionDetail
	byLecturer map[string][]models.SessionDetail
}

// Conflicts evaluates one resource against the indexed bookings.
func (b *BookingIndex) Conflicts(resourceType models.ResourceType, resourceID string) []models.ConflictRecord {
	var sessions []models.SessionDetail
	switch resourceType {
	case models.ResourceRoom:
		sessions = b.byRoom[resourceID]
	case models.ResourceLecturer:
		sessions = b.byLecturer[resourceID]
	}
	return conflictsFor(b.cand, resourceType, resourceID, sessions)
}

// conflictsFor applies the overlap rule: same resource, same date, not canceled, not excluded,
// and intersecting half-open windows.
func conflictsFor(cand Candidate, resourceType models.ResourceType, resourceID string, sessions []models.SessionDetail) []models.ConflictRecord {
	dates := cand.dateSet()
	excluded := cand.excluded()
	var records []models.ConflictRecord
	for _, s := range sessions {
		if s.Status == models.SessionCanceled || excluded[s.ID] {
			continue
		}
		if !bookedBy(s, resourceType, resourceID) {
			continue
		}
		date, ok := dates[scheduling.FormatDate(s.SessionDate)]
		if !ok {
			continue
		}
		overlap, ok := cand.Window.Intersect(s.Window())
		if !ok {
			continue
		}
		records = append(records, models.NewConflictRecord(resourceType, resourceID, s, date, overlap))
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ConflictDate != records[j].ConflictDate {
			return records[i].ConflictDate < records[j].ConflictDate
		}
		return records[i].ExistingWindow.Start < records[j].ExistingWindow.Start
	})
	return records
}

func bookedBy(s models.SessionDetail, resourceType models.ResourceType, resourceID string) bool {
	switch resourceType {
	case models.ResourceRoom:
		return s.RoomID == resourceID
	case models.ResourceLecturer:
		return s.LecturerID == resourceID
	}
	return false
}
