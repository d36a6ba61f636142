package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	"github.com/noah-isme/course-schedule-api/pkg/config"
)

const (
	roomAlternativePriority = 150
	timeAlternativeBase     = 120
	dateAlternativeBase     = 100
)

// SchedulingPolicy holds the tunable search bounds of the engine.
type SchedulingPolicy struct {
	DefaultHorizonWeeks    int
	DefaultDurationMinutes int
	TimeSlots              []scheduling.Clock
	DateStepDays           int
	MaxLookaheadSteps      int
	MaxAlternatives        int
	MakeupHorizonDays      int
	MakeupPatternDaysOnly  bool
}

// DefaultSchedulingPolicy mirrors the configuration defaults.
func DefaultSchedulingPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		DefaultHorizonWeeks:    12,
		DefaultDurationMinutes: 120,
		TimeSlots: []scheduling.Clock{
			scheduling.MustClock("08:00"), scheduling.MustClock("10:00"), scheduling.MustClock("13:30"),
			scheduling.MustClock("15:30"), scheduling.MustClock("18:00"), scheduling.MustClock("20:00"),
		},
		DateStepDays:          7,
		MaxLookaheadSteps:     4,
		MaxAlternatives:       5,
		MakeupHorizonDays:     14,
		MakeupPatternDaysOnly: true,
	}
}

// PolicyFromConfig parses the scheduler configuration, falling back to defaults for unset values.
func PolicyFromConfig(cfg config.SchedulerConfig) (SchedulingPolicy, error) {
	policy := DefaultSchedulingPolicy()
	if cfg.DefaultHorizonWeeks > 0 {
		policy.DefaultHorizonWeeks = cfg.DefaultHorizonWeeks
	}
	if cfg.DefaultDurationMinutes > 0 {
		policy.DefaultDurationMinutes = cfg.DefaultDurationMinutes
	}
	if len(cfg.TimeSlots) > 0 {
		slots := make([]scheduling.Clock, 0, len(cfg.TimeSlots))
		for _, raw := range cfg.TimeSlots {
			slot, err := scheduling.ParseClock(raw)
			if err != nil {
				return SchedulingPolicy{}, fmt.Errorf("scheduler time slot %q: %w", raw, err)
			}
			slots = append(slots, slot)
		}
		policy.TimeSlots = slots
	}
	if cfg.DateStepDays > 0 {
		policy.DateStepDays = cfg.DateStepDays
	}
	if cfg.MaxLookaheadWeeks > 0 {
		policy.MaxLookaheadSteps = cfg.MaxLookaheadWeeks
	}
	if cfg.MaxAlternatives > 0 {
		policy.MaxAlternatives = cfg.MaxAlternatives
	}
	if cfg.MakeupHorizonDays > 0 {
		policy.MakeupHorizonDays = cfg.MakeupHorizonDays
	}
	policy.MakeupPatternDaysOnly = cfg.MakeupPatternDaysOnly
	return policy, nil
}

// scheduleProbe is one concrete variation of a schedule request.
type scheduleProbe struct {
	pattern       scheduling.Pattern
	start         time.Time
	startTime     scheduling.Clock
	duration      int
	totalSessions int
	horizonWeeks  int
	hints         AvailabilityHints
}

func (p scheduleProbe) window() scheduling.Window {
	return scheduling.NewWindow(p.startTime, p.duration)
}

// candidate covers exactly the course's sessions when the count is known, otherwise the horizon.
func (p scheduleProbe) candidate() Candidate {
	if p.totalSessions > 0 {
		return Candidate{Dates: p.pattern.FirstN(p.start, p.totalSessions), Window: p.window()}
	}
	return RecurringCandidate(p.pattern, p.start, p.window(), p.horizonWeeks)
}

func (p scheduleProbe) weeks() int {
	if p.totalSessions > 0 {
		return p.pattern.WeeksFor(p.start, p.totalSessions)
	}
	return p.horizonWeeks
}

type availabilityResolver interface {
	Resolve(ctx context.Context, cand Candidate, hints AvailabilityHints) (*Availability, error)
}

// AlternativeGenerator proposes ranked replacement schedules for a conflicting request.
type AlternativeGenerator struct {
	resolver availabilityResolver
	policy   SchedulingPolicy
}

// NewAlternativeGenerator constructs the generator.
func NewAlternativeGenerator(resolver availabilityResolver, policy SchedulingPolicy) *AlternativeGenerator {
	return &AlternativeGenerator{resolver: resolver, policy: policy}
}

// Generate runs the room, time and start-date strategies and ranks what survives re-validation.
func (g *AlternativeGenerator) Generate(ctx context.Context, probe scheduleProbe, initial *Availability) ([]dto.ScheduleAlternative, error) {
	var alternatives []dto.ScheduleAlternative

	room, err := g.roomAlternative(ctx, probe, initial)
	if err != nil {
		return nil, err
	}
	if room != nil {
		alternatives = append(alternatives, *room)
	}

	times, err := g.timeAlternatives(ctx, probe)
	if err != nil {
		return nil, err
	}
	alternatives = append(alternatives, times...)

	date, err := g.startDateAlternative(ctx, probe)
	if err != nil {
		return nil, err
	}
	if date != nil {
		alternatives = append(alternatives, *date)
	}

	return rankAlternatives(alternatives, g.policy.MaxAlternatives), nil
}

// roomAlternative applies when the preferred room is the only obstacle.
func (g *AlternativeGenerator) roomAlternative(ctx context.Context, probe scheduleProbe, initial *Availability) (*dto.ScheduleAlternative, error) {
	if initial == nil || probe.hints.RoomID == "" || initial.RoomSatisfied || !initial.LecturerSatisfied || len(initial.Rooms) == 0 {
		return nil, nil
	}
	variant := probe
	variant.hints.RoomID = initial.Rooms[0].ID
	reason := fmt.Sprintf("Preferred room is booked; %s is free for the same dates and time", initial.Rooms[0].Name)
	return g.evaluate(ctx, variant, dto.AlternativeRoom, reason, roomAlternativePriority)
}

// timeAlternatives keeps dates and pattern and tries each configured slot.
func (g *AlternativeGenerator) timeAlternatives(ctx context.Context, probe scheduleProbe) ([]dto.ScheduleAlternative, error) {
	var out []dto.ScheduleAlternative
	for _, slot := range g.policy.TimeSlots {
		if slot == probe.startTime || !slot.Add(probe.duration).Valid() {
			continue
		}
		variant := probe
		variant.startTime = slot
		reason := fmt.Sprintf("Same dates moved to %s", variant.window())
		alt, err := g.evaluate(ctx, variant, dto.AlternativeTime, reason, timePriority(probe.startTime, slot))
		if err != nil {
			return nil, err
		}
		if alt != nil {
			out = append(out, *alt)
		}
	}
	return out, nil
}

// startDateAlternative shifts the start forward step by step and stops at the first free combination.
func (g *AlternativeGenerator) startDateAlternative(ctx context.Context, probe scheduleProbe) (*dto.ScheduleAlternative, error) {
	if g.policy.DateStepDays <= 0 {
		return nil, nil
	}
	for step := 1; step <= g.policy.MaxLookaheadSteps; step++ {
		shifted := probe.pattern.FirstN(probe.start.AddDate(0, 0, step*g.policy.DateStepDays), 1)
		if len(shifted) == 0 {
			return nil, nil
		}
		variant := probe
		variant.start = shifted[0]
		days := int(variant.start.Sub(scheduling.DateOnly(probe.start)).Hours() / 24)
		reason := fmt.Sprintf("Start moved %d days later to %s", days, scheduling.FormatDate(variant.start))
		alt, err := g.evaluate(ctx, variant, dto.AlternativeStartDate, reason, datePriority(step))
		if err != nil {
			return nil, err
		}
		if alt != nil {
			return alt, nil
		}
	}
	return nil, nil
}

// evaluate resolves the variant and returns it as an alternative only when it is bookable.
// The suggested room and lecturer are the ones the resolver found free, so re-checking the
// alternative with them as preferences yields AVAILABLE.
func (g *AlternativeGenerator) evaluate(ctx context.Context, probe scheduleProbe, kind, reason string, priority int) (*dto.ScheduleAlternative, error) {
	availability, err := g.resolver.Resolve(ctx, probe.candidate(), probe.hints)
	if err != nil {
		return nil, err
	}
	if !availability.Available() {
		return nil, nil
	}
	window := probe.window()
	return &dto.ScheduleAlternative{
		Type:                kind,
		Reason:              reason,
		Priority:            priority,
		StartDate:           scheduling.FormatDate(probe.start),
		StartTime:           window.Start,
		EndTime:             window.End,
		SchedulePattern:     probe.pattern.String(),
		SuggestedRoomID:     availability.SuggestedRoomID(),
		SuggestedLecturerID: availability.SuggestedLecturerID(),
		AvailableRooms:      availability.Rooms,
		AvailableLecturers:  availability.Lecturers,
	}, nil
}

// timePriority is 120 for the nearest slot, losing a point per half hour of shift, never reaching 100.
func timePriority(original, slot scheduling.Clock) int {
	delta := int(slot - original)
	if delta < 0 {
		delta = -delta
	}
	penalty := delta / 30
	if penalty > 19 {
		penalty = 19
	}
	return timeAlternativeBase - penalty
}

// datePriority decreases by ten per week of delay, never below one.
func datePriority(step int) int {
	priority := dateAlternativeBase - 10*(step-1)
	if priority < 1 {
		return 1
	}
	return priority
}

// rankAlternatives orders by priority, keeping generation order for ties, and caps the list.
func rankAlternatives(alternatives []dto.ScheduleAlternative, limit int) []dto.ScheduleAlternative {
	ranked := make([]dto.ScheduleAlternative, len(alternatives))
	copy(ranked, alternatives)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Priority > ranked[j].Priority })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
