// Package quest materializes quest instances and computes their live
// progress from the event log. Progress is re-derived from the windowed
// events on every read, never incremented in place, so a recompute from
// the same log always yields the same value (replay safe).
package quest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/grindstone/internal/domain/model"
	"github.com/okian/grindstone/internal/domain/types"
)

// Metric names the aggregate a requirement measures inside its window.
type Metric string

const (
	MetricWorkoutCount Metric = "workoutCount"
	MetricVolume       Metric = "volume"
	MetricHighRPESets  Metric = "highRpeSetCount"
	MetricExercise     Metric = "specificExercise"
)

// highRPEThreshold qualifies a set for the highRpeSetCount metric.
const highRPEThreshold = 8.0

// Requirement is one measurable target on a template.
type Requirement struct {
	Metric   Metric
	Exercise string // MetricExercise: case-insensitive substring match
	Target   float64
}

// Template is the static definition a quest instance is generated from.
// Daily and weekly instances are regenerated at each reset boundary;
// their identity is (template ID, window start).
type Template struct {
	ID           string
	Category     types.QuestCategory
	Name         string
	Description  string
	Requirements []Requirement
	XP           int
	Unlocks      []model.Reward // non-xp rewards paid on claim
	MinLevel     int            // boss quests are gated below this level
	Lifetime     time.Duration  // raid/boss expiry from window start; 0 = never
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTemplates replaces the default template set.
func WithTemplates(templates []Template) Option {
	return func(t *Tracker) {
		if len(templates) > 0 {
			t.templates = templates
		}
	}
}

// WithLocation sets the timezone used for daily and weekly reset
// boundaries. Callers with per-user timezones pass the user's location.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// Tracker evaluates quest templates against event history. Stateless and
// safe for concurrent use.
type Tracker struct {
	templates []Template
	loc       *time.Location
}

// New creates a Tracker with the default templates in local time.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		templates: DefaultTemplates(),
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Templates returns the active template set.
func (t *Tracker) Templates() []Template {
	out := make([]Template, len(t.templates))
	copy(out, t.templates)
	return out
}

// InstanceID builds the identity of a quest instance. Instances without a
// window boundary (no-expiry raids) are identified by template alone.
func InstanceID(templateID string, windowStart time.Time) string {
	if windowStart.IsZero() {
		return templateID
	}
	return fmt.Sprintf("%s:%d", templateID, windowStart.Unix())
}

// Evaluate materializes every template visible at userLevel into a quest
// instance with progress derived from events in [windowStart, now),
// capped at the expiry when the instance has one.
func (t *Tracker) Evaluate(ctx context.Context, now time.Time, userLevel int, events []model.WorkoutEvent) []types.Quest {
	_ = ctx

	quests := make([]types.Quest, 0, len(t.templates))
	for _, tpl := range t.templates {
		if tpl.Category == types.QuestBoss && userLevel < tpl.MinLevel {
			continue
		}
		quests = append(quests, t.evaluate(tpl, now, events))
	}
	return quests
}

// Find evaluates a single quest instance by ID. The bool is false when no
// visible template produces that instance at now.
func (t *Tracker) Find(ctx context.Context, now time.Time, userLevel int, questID string, events []model.WorkoutEvent) (types.Quest, bool) {
	for _, q := range t.Evaluate(ctx, now, userLevel, events) {
		if q.ID == questID {
			return q, true
		}
	}
	return types.Quest{}, false
}

func (t *Tracker) evaluate(tpl Template, now time.Time, events []model.WorkoutEvent) types.Quest {
	windowStart, expiresAt := t.windowFor(tpl, now)
	// Progress stops accruing at the deadline: completed and failed are
	// terminal, so events logged after expiry must not resurrect a quest
	// that already failed. Progress as of the deadline decides the state.
	end := now
	if !expiresAt.IsZero() && expiresAt.Before(end) {
		end = expiresAt
	}
	window := model.Window{Start: windowStart, End: end}
	scoped := window.Filter(events)

	q := types.Quest{
		ID:          InstanceID(tpl.ID, windowStart),
		TemplateID:  tpl.ID,
		Category:    tpl.Category,
		Name:        tpl.Name,
		Description: tpl.Description,
		XP:          tpl.XP,
		WindowStart: windowStart,
		ExpiresAt:   expiresAt,
	}

	minRatio := 1.0
	ratioSum := 0.0
	for _, req := range tpl.Requirements {
		current := measure(req, scoped)
		q.Requirements = append(q.Requirements, types.QuestRequirement{
			Metric:   string(req.Metric),
			Exercise: req.Exercise,
			Current:  current,
			Target:   req.Target,
		})
		q.CurrentValue += current
		q.TargetValue += req.Target
		ratio := 0.0
		if req.Target > 0 {
			ratio = current / req.Target
		}
		minRatio = min(minRatio, ratio)
		ratioSum += min(ratio, 1)
	}
	if n := len(tpl.Requirements); n > 0 {
		q.ProgressPercent = ratioSum / float64(n) * 100
	}

	// Completion gates on the minimum requirement ratio, not the average:
	// over-completing one requirement cannot mask a missed one.
	switch {
	case len(tpl.Requirements) > 0 && minRatio >= 1:
		q.Status = types.QuestCompleted
	case !expiresAt.IsZero() && now.After(expiresAt):
		q.Status = types.QuestFailed
	case q.CurrentValue > 0:
		q.Status = types.QuestActive
	default:
		q.Status = types.QuestAvailable
	}
	return q
}

// windowFor computes the reset window for a template at now. Daily quests
// reset at local midnight, weekly at the next Monday 00:00. Raid and boss
// quests anchor on the weekly boundary when they have a lifetime and are
// account-wide otherwise.
func (t *Tracker) windowFor(tpl Template, now time.Time) (start, expires time.Time) {
	local := now.In(t.loc)
	switch tpl.Category {
	case types.QuestDaily:
		start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.loc)
		return start, start.AddDate(0, 0, 1)
	case types.QuestWeekly:
		start = mondayStart(local)
		return start, start.AddDate(0, 0, 7)
	default:
		if tpl.Lifetime > 0 {
			start = mondayStart(local)
			return start, start.Add(tpl.Lifetime)
		}
		return time.Time{}, time.Time{}
	}
}

// mondayStart returns 00:00 of the Monday of ts's week, in ts's location.
func mondayStart(ts time.Time) time.Time {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// measure computes the current value of one requirement over the already
// windowed events.
func measure(req Requirement, events []model.WorkoutEvent) float64 {
	total := 0.0
	for _, e := range events {
		switch req.Metric {
		case MetricWorkoutCount:
			if e.Kind == model.KindSession {
				total++
			}
		case MetricVolume:
			total += e.Volume()
		case MetricHighRPESets:
			if e.Kind == model.KindSet && e.RPE >= highRPEThreshold {
				total++
			}
		case MetricExercise:
			if e.Kind == model.KindSet && strings.Contains(strings.ToLower(e.Exercise), strings.ToLower(req.Exercise)) {
				total++
			}
		}
	}
	return total
}
