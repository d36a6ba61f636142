package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
	"github.com/noah-isme/course-schedule-api/pkg/export"
)

var gridPeriods = []string{scheduling.PeriodMorning, scheduling.PeriodAfternoon, scheduling.PeriodEvening}

var exportHeaders = []string{"Date", "Weekday", "Period", "Start", "End", "Class", "Course", "Room", "Lecturer", "Status"}

type sessionLister interface {
	ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, error)
}

// ExportFile is a rendered weekly grid ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// WeekScheduleService builds the weekly grid and its exports.
type WeekScheduleService struct {
	sessions  sessionLister
	cache     *CacheService
	renderers map[string]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewWeekScheduleService constructs the service with CSV, PDF and XLSX renderers.
func NewWeekScheduleService(sessions sessionLister, cache *CacheService, logger *zap.Logger, now func() time.Time) *WeekScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	renderers := make(map[string]export.Renderer)
	for _, r := range []export.Renderer{export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter()} {
		renderers[r.Extension()] = r
	}
	return &WeekScheduleService{sessions: sessions, cache: cache, renderers: renderers, logger: logger, now: now}
}

// Week returns the Monday-start grid of the week containing query.Date (today when empty) and
// whether it came from cache.
func (s *WeekScheduleService) Week(ctx context.Context, query dto.WeekScheduleQuery) (*dto.WeekSchedule, bool, error) {
	day := scheduling.DateOnly(s.now())
	if query.Date != "" {
		parsed, err := scheduling.ParseDate(query.Date)
		if err != nil {
			return nil, false, err
		}
		day = parsed
	}
	weekStart := scheduling.WeekStart(day)
	weekEnd := weekStart.AddDate(0, 0, 6)

	generation, cacheable := s.cache.Generation(ctx, gridGenerationKey)
	key := gridCacheKey(generation, weekStart, query)
	var cached dto.WeekSchedule
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	sessions, err := s.sessions.ListByFilter(ctx, models.SessionFilter{
		From:       weekStart,
		To:         weekEnd,
		RoomID:     query.RoomID,
		LecturerID: query.LecturerID,
		CourseID:   query.CourseID,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week sessions")
	}

	grid := buildWeekGrid(weekStart, sessions)
	if cacheable {
		s.cache.Set(ctx, key, grid, 0)
	}
	return grid, false, nil
}

// Export renders the grid in the requested format (csv, pdf or xlsx).
func (s *WeekScheduleService) Export(ctx context.Context, query dto.WeekScheduleQuery) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q, use csv, pdf or xlsx", query.Format))
	}
	grid, _, err := s.Week(ctx, query)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(gridDataset(grid))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}
	s.logger.Debug("week schedule exported", zap.String("week", grid.WeekStart), zap.String("format", format), zap.Int("sessions", grid.Total))
	return &ExportFile{
		Filename:    fmt.Sprintf("schedule-week-%s.%s", grid.WeekStart, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

// gridCacheKey embeds the generation read before loading, so a grid built from data that a
// concurrent mutation has since changed lands under a key no later read asks for.
func gridCacheKey(generation int64, weekStart time.Time, query dto.WeekScheduleQuery) string {
	return fmt.Sprintf("schedule:week:g%d:%s:room=%s:lecturer=%s:course=%s",
		generation, scheduling.FormatDate(weekStart), query.RoomID, query.LecturerID, query.CourseID)
}

// buildWeekGrid lays sessions out by day and period. Every day and period is present even when empty.
func buildWeekGrid(weekStart time.Time, sessions []models.SessionDetail) *dto.WeekSchedule {
	grid := &dto.WeekSchedule{
		WeekStart: scheduling.FormatDate(weekStart),
		WeekEnd:   scheduling.FormatDate(weekStart.AddDate(0, 0, 6)),
		Days:      make([]dto.GridDay, 7),
	}
	index := make(map[string]int, 7)
	for i := range grid.Days {
		date := weekStart.AddDate(0, 0, i)
		day := dto.GridDay{Date: scheduling.FormatDate(date), Weekday: int(scheduling.WeekdayOf(date))}
		for _, period := range gridPeriods {
			day.Periods = append(day.Periods, dto.GridPeriod{Period: period, Sessions: []dto.GridSession{}})
		}
		grid.Days[i] = day
		index[day.Date] = i
	}

	for _, s := range sessions {
		i, ok := index[scheduling.FormatDate(s.SessionDate)]
		if !ok {
			continue
		}
		cell := dto.GridSession{
			SessionID:    s.ID,
			ClassID:      s.ClassID,
			ClassName:    s.ClassName,
			CourseID:     s.CourseID,
			CourseName:   s.CourseName,
			RoomID:       s.RoomID,
			RoomName:     s.RoomName,
			LecturerID:   s.LecturerID,
			LecturerName: s.LecturerName,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Status:       s.Status,
			IsMakeup:     s.MakeupOfSessionID != nil,
		}
		if s.Note != nil {
			cell.Note = *s.Note
		}
		periods := grid.Days[i].Periods
		for p := range periods {
			if periods[p].Period == scheduling.PeriodOf(s.StartTime) {
				periods[p].Sessions = append(periods[p].Sessions, cell)
			}
		}
		grid.Total++
	}
	return grid
}

func gridDataset(grid *dto.WeekSchedule) export.Dataset {
	data := export.Dataset{Title: "Week of " + grid.WeekStart, Headers: exportHeaders}
	for _, day := range grid.Days {
		weekday := scheduling.Weekday(day.Weekday).String()
		for _, period := range day.Periods {
			for _, cell := range period.Sessions {
				data.Rows = append(data.Rows, map[string]string{
					"Date":     day.Date,
					"Weekday":  weekday,
					"Period":   period.Period,
					"Start":    cell.StartTime.String(),
					"End":      cell.EndTime.String(),
					"Class":    cell.ClassName,
					"Course":   cell.CourseName,
					"Room":     cell.RoomName,
					"Lecturer": cell.LecturerName,
					"Status":   string(cell.Status),
				})
			}
		}
	}
	return data
}
