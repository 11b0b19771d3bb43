// Package stats reduces a windowed slice of workout events into the four
// ability scores and the derived power score. The reduction is a pure
// function of (window, events, prestige bonus): no randomness, no hidden
// state, so the same inputs always produce the same sheet.
package stats

import (
	"context"
	"strings"
	"time"

	"github.com/okian/grindstone/internal/domain/model"
	"github.com/okian/grindstone/internal/domain/types"
)

// Ability names one of the four derived scores.
type Ability string

const (
	Strength    Ability = "strength"
	Endurance   Ability = "endurance"
	Agility     Ability = "agility"
	Flexibility Ability = "flexibility"
)

// Abilities lists the four abilities in canonical order.
var Abilities = []Ability{Strength, Endurance, Agility, Flexibility}

// daysPerMonth approximates a training month for tenure math.
const daysPerMonth = 30

// Config holds every weight and cap in the scoring formula as a named,
// tunable value so the formula stays auditable. Caps bound the influence
// of any single event and of each bonus category.
type Config struct {
	// Base score: tenure, capped.
	BaseFloor    float64 `koanf:"base_floor"`
	BasePerMonth float64 `koanf:"base_per_month"`
	BaseCap      float64 `koanf:"base_cap"`

	// Shared caps and bonuses.
	PerEventCap      float64 `koanf:"per_event_cap"`
	RecordBonus      float64 `koanf:"record_bonus"`
	RecordCap        float64 `koanf:"record_cap"`
	ConsistencyBonus float64 `koanf:"consistency_bonus"`
	ConsistencyCap   float64 `koanf:"consistency_cap"`

	// Strength: heavy low-rep compound sets at high effort.
	StrengthMaxReps      int     `koanf:"strength_max_reps"`
	StrengthMinRPE       float64 `koanf:"strength_min_rpe"`
	StrengthVolumeWeight float64 `koanf:"strength_volume_weight"`

	// Endurance: high-rep sets, cardio-tagged sets, long sessions.
	EnduranceMinReps        int     `koanf:"endurance_min_reps"`
	EnduranceRepWeight      float64 `koanf:"endurance_rep_weight"`
	EnduranceCardioBonus    float64 `koanf:"endurance_cardio_bonus"`
	EnduranceMinSessionMins float64 `koanf:"endurance_min_session_mins"`
	EnduranceMinuteWeight   float64 `koanf:"endurance_minute_weight"`

	// Agility: explosive sets and short sessions.
	AgilityMaxSessionMins float64 `koanf:"agility_max_session_mins"`
	AgilitySessionBonus   float64 `koanf:"agility_session_bonus"`
	AgilitySetBonus       float64 `koanf:"agility_set_bonus"`

	// Flexibility: mobility-tagged sets plus session duration.
	FlexibilitySetBonus     float64 `koanf:"flexibility_set_bonus"`
	FlexibilityMinuteWeight float64 `koanf:"flexibility_minute_weight"`
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		BaseFloor:    5,
		BasePerMonth: 0.5,
		BaseCap:      20,

		PerEventCap:      2.0,
		RecordBonus:      1.5,
		RecordCap:        15,
		ConsistencyBonus: 0.5,
		ConsistencyCap:   10,

		StrengthMaxReps:      5,
		StrengthMinRPE:       7,
		StrengthVolumeWeight: 0.005,

		EnduranceMinReps:        15,
		EnduranceRepWeight:      0.05,
		EnduranceCardioBonus:    0.5,
		EnduranceMinSessionMins: 45,
		EnduranceMinuteWeight:   0.02,

		AgilityMaxSessionMins: 30,
		AgilitySessionBonus:   1.0,
		AgilitySetBonus:       0.5,

		FlexibilitySetBonus:     0.75,
		FlexibilityMinuteWeight: 0.01,
	}
}

// Exercise name tags per ability profile. Matching is case-insensitive
// substring, so "Back Squat" and "front squat" both read as squat.
var (
	compoundTags  = []string{"squat", "deadlift", "bench", "press", "row", "clean", "snatch"}
	cardioTags    = []string{"run", "bike", "swim", "erg", "ski", "jump rope"}
	explosiveTags = []string{"sprint", "jump", "box", "plyo", "burpee", "clean", "snatch"}
	mobilityTags  = []string{"stretch", "mobility", "yoga", "foam", "pigeon"}
)

func taggedAs(exercise string, tags []string) bool {
	name := strings.ToLower(exercise)
	for _, t := range tags {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithConfig replaces the default scoring configuration.
func WithConfig(cfg Config) Option {
	return func(c *Calculator) {
		c.cfg = cfg
	}
}

// Calculator computes stat sheets. It is stateless and safe for
// concurrent use.
type Calculator struct {
	cfg Config
}

// New creates a Calculator with the default tuning unless overridden.
func New(opts ...Option) *Calculator {
	c := &Calculator{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the active tuning.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute reduces the events inside window into a stat sheet. The window
// end anchors tenure math so the result depends only on the inputs; when
// the window end is zero the latest event timestamp is used instead.
// Empty input degrades to base-only totals, never an error.
func (c *Calculator) Compute(ctx context.Context, window model.Window, events []model.WorkoutEvent, prestigeBonus float64) types.StatSheet {
	_ = ctx // reduction is CPU-bound; ctx kept for interface symmetry

	scoped := window.Filter(events)
	base := c.baseScore(window, scoped)

	sheet := types.StatSheet{}
	for _, ability := range Abilities {
		b := c.abilityBreakdown(ability, scoped, base, prestigeBonus)
		score := types.AbilityScore{Breakdown: b, Rank: RankFor(b.Total)}
		switch ability {
		case Strength:
			sheet.Strength = score
		case Endurance:
			sheet.Endurance = score
		case Agility:
			sheet.Agility = score
		case Flexibility:
			sheet.Flexibility = score
		}
		sheet.Power += b.Total
	}
	sheet.PowerRank = PowerRankFor(sheet.Power)
	return sheet
}

// baseScore is a capped monotonic function of account age, measured from
// the earliest scoped event to the window end.
func (c *Calculator) baseScore(window model.Window, events []model.WorkoutEvent) float64 {
	if len(events) == 0 {
		return c.cfg.BaseFloor
	}
	earliest := events[0].Timestamp
	latest := events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
		}
		if e.Timestamp.After(latest) {
			latest = e.Timestamp
		}
	}
	asOf := window.End
	if asOf.IsZero() {
		asOf = latest
	}
	months := asOf.Sub(earliest).Hours() / (24 * daysPerMonth)
	if months < 0 {
		months = 0
	}
	return min(c.cfg.BaseCap, c.cfg.BaseFloor+months*c.cfg.BasePerMonth)
}

func (c *Calculator) abilityBreakdown(ability Ability, events []model.WorkoutEvent, base, prestigeBonus float64) types.Breakdown {
	b := types.Breakdown{Base: base, FromBonus: prestigeBonus}

	records := 0
	days := make(map[string]struct{})
	for _, e := range events {
		pts, qualifies := c.contribution(ability, e)
		if !qualifies {
			continue
		}
		b.FromEvents += pts
		if e.PersonalRecord {
			records++
		}
		days[e.Timestamp.UTC().Format(time.DateOnly)] = struct{}{}
	}

	b.FromRecords = min(float64(records)*c.cfg.RecordBonus, c.cfg.RecordCap)
	b.FromConsistency = min(float64(len(days))*c.cfg.ConsistencyBonus, c.cfg.ConsistencyCap)
	b.Total = b.Base + b.FromEvents + b.FromRecords + b.FromConsistency + b.FromBonus
	return b
}

// contribution returns the capped points one event adds to an ability and
// whether the event qualifies for that ability's profile at all.
func (c *Calculator) contribution(ability Ability, e model.WorkoutEvent) (float64, bool) {
	cfg := c.cfg
	switch ability {
	case Strength:
		if e.Kind == model.KindSet && e.Reps > 0 && e.Reps <= cfg.StrengthMaxReps &&
			e.RPE >= cfg.StrengthMinRPE && taggedAs(e.Exercise, compoundTags) {
			return min(e.Volume()*cfg.StrengthVolumeWeight, cfg.PerEventCap), true
		}
	case Endurance:
		if e.Kind == model.KindSet {
			if e.Reps >= cfg.EnduranceMinReps {
				return min(float64(e.Reps)*cfg.EnduranceRepWeight, cfg.PerEventCap), true
			}
			if taggedAs(e.Exercise, cardioTags) {
				return min(cfg.EnduranceCardioBonus, cfg.PerEventCap), true
			}
		}
		if e.Kind == model.KindSession && e.Duration.Minutes() >= cfg.EnduranceMinSessionMins {
			return min(e.Duration.Minutes()*cfg.EnduranceMinuteWeight, cfg.PerEventCap), true
		}
	case Agility:
		if e.Kind == model.KindSession && e.Duration > 0 && e.Duration.Minutes() <= cfg.AgilityMaxSessionMins {
			return min(cfg.AgilitySessionBonus, cfg.PerEventCap), true
		}
		if e.Kind == model.KindSet && taggedAs(e.Exercise, explosiveTags) {
			return min(cfg.AgilitySetBonus, cfg.PerEventCap), true
		}
	case Flexibility:
		if e.Kind == model.KindSet && taggedAs(e.Exercise, mobilityTags) {
			return min(cfg.FlexibilitySetBonus, cfg.PerEventCap), true
		}
		if e.Kind == model.KindSession && e.Duration > 0 {
			return min(e.Duration.Minutes()*cfg.FlexibilityMinuteWeight, cfg.PerEventCap), true
		}
	}
	return 0, false
}
