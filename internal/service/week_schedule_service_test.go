package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/repository"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

func newGridCache(t *testing.T, metrics *MetricsService) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(repository.NewCacheRepository(client, nil), metrics, time.Minute, nil, true), srv
}

func weekStore() *memSessions {
	makeupOf := "s-0"
	makeup := booking("s-4", "c-2", "r-2", "l-2", "2024-03-09", "09:00", "11:00")
	makeup.MakeupOfSessionID = &makeupOf
	return newMemSessions(
		booking("s-1", "c-1", "r-1", "l-1", "2024-03-04", "08:00", "10:00"),
		booking("s-2", "c-1", "r-1", "l-1", "2024-03-06", "13:30", "15:30"),
		booking("s-3", "c-2", "r-2", "l-2", "2024-03-06", "18:00", "20:00"),
		makeup,
		booking("s-5", "c-1", "r-1", "l-1", "2024-03-11", "08:00", "10:00"),
	)
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
}

func TestWeekGroupsByDayAndPeriod(t *testing.T) {
	svc := NewWeekScheduleService(weekStore(), nil, nil, fixedNow)

	grid, hit, err := svc.Week(context.Background(), dto.WeekScheduleQuery{})

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-03-04", grid.WeekStart)
	assert.Equal(t, "2024-03-10", grid.WeekEnd)
	assert.Equal(t, 4, grid.Total)
	require.Len(t, grid.Days, 7)

	monday := grid.Days[0]
	assert.Equal(t, int(scheduling.Monday), monday.Weekday)
	require.Len(t, monday.Periods, 3)
	assert.Equal(t, scheduling.PeriodMorning, monday.Periods[0].Period)
	require.Len(t, monday.Periods[0].Sessions, 1)
	assert.Equal(t, "s-1", monday.Periods[0].Sessions[0].SessionID)

	wednesday := grid.Days[2]
	assert.Len(t, wednesday.Periods[1].Sessions, 1)
	assert.Len(t, wednesday.Periods[2].Sessions, 1)

	saturday := grid.Days[5]
	require.Len(t, saturday.Periods[0].Sessions, 1)
	assert.True(t, saturday.Periods[0].Sessions[0].IsMakeup)

	sunday := grid.Days[6]
	assert.Equal(t, int(scheduling.Sunday), sunday.Weekday)
	for _, p := range sunday.Periods {
		assert.NotNil(t, p.Sessions)
		assert.Empty(t, p.Sessions)
	}
}

func TestWeekFiltersAndExplicitDate(t *testing.T) {
	svc := NewWeekScheduleService(weekStore(), nil, nil, fixedNow)

	grid, _, err := svc.Week(context.Background(), dto.WeekScheduleQuery{Date: "2024-03-09", LecturerID: "l-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Total)

	_, _, err = svc.Week(context.Background(), dto.WeekScheduleQuery{Date: "next week"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestWeekIsCachedUntilASessionChanges(t *testing.T) {
	metrics := NewMetricsService()
	cache, srv := newGridCache(t, metrics)
	store := weekStore()
	weeks := NewWeekScheduleService(store, cache, nil, fixedNow)
	ctx := context.Background()

	_, hit, err := weeks.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	key := "schedule:week:g0:2024-03-04:room=:lecturer=:course="
	assert.True(t, srv.Exists(key))

	cached, hit, err := weeks.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, cached.Total)

	db, mock := newTxMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	sessions := NewSessionService(store, db, &lockRecorder{}, cache, nil, metrics, nil)
	_, err = sessions.Cancel(ctx, "c-1", "s-2", dto.SessionTransitionRequest{})
	require.NoError(t, err)
	assert.False(t, srv.Exists(key))

	fresh, hit, err := weeks.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.SessionCanceled, fresh.Days[2].Periods[1].Sessions[0].Status)
	assert.True(t, srv.Exists("schedule:week:g1:2024-03-04:room=:lecturer=:course="))
}

// mutatingLister advances the grid generation right after the read, as a commit landing between
// the query and the cache write would.
type mutatingLister struct {
	sessionLister
	cache *CacheService
}

func (l mutatingLister) ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, error) {
	sessions, err := l.sessionLister.ListByFilter(ctx, filter)
	l.cache.Advance(ctx, gridGenerationKey, gridCachePattern)
	return sessions, err
}

func TestWeekBuiltBeforeConcurrentMutationIsNeverServed(t *testing.T) {
	cache, srv := newGridCache(t, nil)
	store := weekStore()
	ctx := context.Background()

	racing := NewWeekScheduleService(mutatingLister{sessionLister: store, cache: cache}, cache, nil, fixedNow)
	_, hit, err := racing.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, srv.Exists("schedule:week:g0:2024-03-04:room=:lecturer=:course="))

	weeks := NewWeekScheduleService(store, cache, nil, fixedNow)
	_, hit, err = weeks.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.False(t, hit, "grid written under an older generation must not be served")

	_, hit, err = weeks.Week(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestWeekSkipsCacheWhenGenerationUnreadable(t *testing.T) {
	cache, srv := newGridCache(t, nil)
	require.NoError(t, srv.Set(gridGenerationKey, "garbage"))
	weeks := NewWeekScheduleService(weekStore(), cache, nil, fixedNow)

	for i := 0; i < 2; i++ {
		_, hit, err := weeks.Week(context.Background(), dto.WeekScheduleQuery{})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, []string{gridGenerationKey}, srv.Keys())
}

func TestExportFormats(t *testing.T) {
	svc := NewWeekScheduleService(weekStore(), nil, nil, fixedNow)
	ctx := context.Background()

	csvFile, err := svc.Export(ctx, dto.WeekScheduleQuery{})
	require.NoError(t, err)
	assert.Equal(t, "schedule-week-2024-03-04.csv", csvFile.Filename)
	lines := strings.Split(strings.TrimSpace(string(csvFile.Payload)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Weekday,Period,Start,End,Class,Course,Room,Lecturer,Status", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-04,Monday,MORNING,08:00,10:00,"))

	pdfFile, err := svc.Export(ctx, dto.WeekScheduleQuery{Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfFile.ContentType)
	assert.True(t, bytes.HasPrefix(pdfFile.Payload, []byte("%PDF")))

	xlsxFile, err := svc.Export(ctx, dto.WeekScheduleQuery{Format: "xlsx"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxFile.Payload, []byte("PK")))

	_, err = svc.Export(ctx, dto.WeekScheduleQuery{Format: "docx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
