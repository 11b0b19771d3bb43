// Package tier classifies a user's training history against an ordered
// catalog of tier definitions. Classification is pure and total: every
// input produces a snapshot, there is no error path.
package tier

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/okian/grindstone/internal/domain/model"
	"github.com/okian/grindstone/internal/domain/types"
)

// Criteria holds the thresholds a tier defines. Zero-valued fields are
// absent criteria and are treated as automatically satisfied, not as a
// threshold of zero.
type Criteria struct {
	MinMonths      float64
	MinWorkouts    int
	MinConsistency float64 // fraction of weeks-with-training style rate, 0..1
	MinTotalRatio  float64 // summed big-three 1RM / bodyweight
	MinLiftRatios  map[string]float64
}

// Definition is one catalog entry. The catalog is static configuration,
// not user state, and must be monotonic: every threshold a higher tier
// defines is >= the same threshold on every lower tier.
type Definition struct {
	Tier     string
	Criteria Criteria
}

// DefaultCatalog returns the reference catalog ordered lowest to highest.
func DefaultCatalog() []Definition {
	return []Definition{
		{Tier: "untrained"},
		{Tier: "beginner", Criteria: Criteria{
			MinMonths:     3,
			MinWorkouts:   25,
			MinTotalRatio: 2.0,
		}},
		{Tier: "intermediate", Criteria: Criteria{
			MinMonths:      12,
			MinWorkouts:    120,
			MinConsistency: 0.65,
			MinTotalRatio:  4.5,
			MinLiftRatios:  map[string]float64{"squat": 1.25, "bench": 0.85, "deadlift": 1.5},
		}},
		{Tier: "advanced", Criteria: Criteria{
			MinMonths:      24,
			MinWorkouts:    300,
			MinConsistency: 0.75,
			MinTotalRatio:  6.0,
			MinLiftRatios:  map[string]float64{"squat": 1.75, "bench": 1.25, "deadlift": 2.25},
		}},
		{Tier: "elite", Criteria: Criteria{
			MinMonths:      48,
			MinWorkouts:    600,
			MinConsistency: 0.85,
			MinTotalRatio:  7.5,
			MinLiftRatios:  map[string]float64{"squat": 2.25, "bench": 1.5, "deadlift": 2.75},
		}},
	}
}

// Input is the classification input derived from events and stats.
type Input struct {
	TrainingMonths  float64
	TotalWorkouts   int
	ConsistencyRate float64
	LiftRatios      map[string]float64 // lift name -> estimated 1RM / bodyweight
}

// TotalRatio sums the per-lift ratios.
func (in Input) TotalRatio() float64 {
	total := 0.0
	for _, r := range in.LiftRatios {
		total += r
	}
	return total
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithCatalog replaces the default tier catalog. Definitions must be
// ordered lowest to highest.
func WithCatalog(defs []Definition) Option {
	return func(c *Classifier) {
		if len(defs) > 0 {
			c.catalog = defs
		}
	}
}

// Classifier evaluates inputs against a catalog. Stateless, safe for
// concurrent use.
type Classifier struct {
	catalog []Definition
}

// New creates a Classifier with the default catalog unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{catalog: DefaultCatalog()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify scans the catalog from highest to lowest and returns the
// highest tier whose every defined criterion is met. Scanning high-to-low
// avoids misreporting the lowest tier for users who already exceed it.
// Progress and unmet criteria always describe the tier immediately above
// the achieved one; at the top tier progress is 100% with no next.
func (c *Classifier) Classify(ctx context.Context, in Input) types.TierSnapshot {
	_ = ctx

	achieved := 0 // the lowest tier is the floor even with no criteria met
	for i := len(c.catalog) - 1; i >= 0; i-- {
		if meetsAll(c.catalog[i].Criteria, in) {
			achieved = i
			break
		}
	}

	snap := types.TierSnapshot{Current: c.catalog[achieved].Tier}
	if achieved == len(c.catalog)-1 {
		snap.ProgressPercent = 100
		return snap
	}

	next := c.catalog[achieved+1]
	snap.Next = next.Tier
	ratios := criterionRatios(next.Criteria, in)
	if len(ratios) == 0 {
		snap.ProgressPercent = 100
		return snap
	}
	sum := 0.0
	for _, r := range ratios {
		sum += min(r.ratio, 1)
		if r.ratio < 1 {
			snap.Unmet = append(snap.Unmet, types.Criterion{
				Name:      r.name,
				Threshold: r.threshold,
				Current:   r.current,
			})
		}
	}
	snap.ProgressPercent = sum / float64(len(ratios)) * 100
	return snap
}

func meetsAll(cr Criteria, in Input) bool {
	for _, r := range criterionRatios(cr, in) {
		if r.ratio < 1 {
			return false
		}
	}
	return true
}

type ratioEntry struct {
	name      string
	threshold float64
	current   float64
	ratio     float64
}

// criterionRatios expands the defined criteria of cr into named
// current/threshold ratios, in a deterministic order.
func criterionRatios(cr Criteria, in Input) []ratioEntry {
	var out []ratioEntry
	add := func(name string, threshold, current float64) {
		if threshold <= 0 {
			return // absent criterion: auto-satisfied, contributes nothing
		}
		out = append(out, ratioEntry{name: name, threshold: threshold, current: current, ratio: current / threshold})
	}
	add("training_months", cr.MinMonths, in.TrainingMonths)
	add("total_workouts", float64(cr.MinWorkouts), float64(in.TotalWorkouts))
	add("consistency_rate", cr.MinConsistency, in.ConsistencyRate)
	add("total_lift_ratio", cr.MinTotalRatio, in.TotalRatio())

	lifts := make([]string, 0, len(cr.MinLiftRatios))
	for lift := range cr.MinLiftRatios {
		lifts = append(lifts, lift)
	}
	sort.Strings(lifts)
	for _, lift := range lifts {
		add(lift+"_ratio", cr.MinLiftRatios[lift], in.LiftRatios[lift])
	}
	return out
}

// epleyDivisor is the rep divisor in the Epley one-rep-max estimate
// weight * (1 + reps/30).
const epleyDivisor = 30

// targetDaysPerWeek anchors the consistency rate: training this many
// distinct days per week reads as 100% consistent.
const targetDaysPerWeek = 3

// BuildInput derives a classification input from raw events. Lift ratios
// use the best Epley-estimated 1RM per big-three lift over bodyweight.
// Consistency is distinct training days against a three-day week.
func BuildInput(events []model.WorkoutEvent, bodyweightKG float64, asOf time.Time) Input {
	in := Input{LiftRatios: map[string]float64{}}
	if len(events) == 0 {
		return in
	}

	earliest := events[0].Timestamp
	days := make(map[string]struct{})
	best := map[string]float64{}
	for _, e := range events {
		if e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
		}
		days[e.Timestamp.UTC().Format(time.DateOnly)] = struct{}{}
		switch {
		case e.Kind == model.KindSession:
			in.TotalWorkouts++
		case e.Kind == model.KindSet && e.Reps > 0:
			oneRM := e.Weight * (1 + float64(e.Reps)/epleyDivisor)
			for _, lift := range []string{"squat", "bench", "deadlift"} {
				if strings.Contains(strings.ToLower(e.Exercise), lift) && oneRM > best[lift] {
					best[lift] = oneRM
				}
			}
		}
	}

	elapsed := asOf.Sub(earliest)
	in.TrainingMonths = elapsed.Hours() / (24 * 30)
	if weeks := elapsed.Hours() / (24 * 7); weeks >= 1 {
		in.ConsistencyRate = min(float64(len(days))/(weeks*targetDaysPerWeek), 1)
	} else if len(days) > 0 {
		in.ConsistencyRate = 1
	}
	if bodyweightKG > 0 {
		for lift, oneRM := range best {
			in.LiftRatios[lift] = oneRM / bodyweightKG
		}
	}
	return in
}
