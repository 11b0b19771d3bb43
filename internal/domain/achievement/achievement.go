// Package achievement holds the static achievement registry and evaluates
// it against an aggregate snapshot of a user's history. Granting is the
// ledger's job; this package only decides what is currently earned.
package achievement

import (
	"time"

	"github.com/okian/grindstone/internal/domain/model"
)

// Snapshot aggregates the history facts achievement conditions read.
type Snapshot struct {
	TotalWorkouts   int
	TotalSets       int
	PersonalRecords int
	DistinctDays    int
	TotalVolume     float64
	Power           float64
}

// Achievement describes a single unlockable goal. Condition reports
// whether the achievement is earned given a snapshot.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Condition   func(Snapshot) bool
}

// BuildSnapshot reduces raw events (plus the current power score) into a
// snapshot. Like every other derived value it is recomputed in full.
func BuildSnapshot(events []model.WorkoutEvent, power float64) Snapshot {
	s := Snapshot{Power: power}
	days := make(map[string]struct{})
	for _, e := range events {
		days[e.Timestamp.UTC().Format(time.DateOnly)] = struct{}{}
		switch e.Kind {
		case model.KindSession:
			s.TotalWorkouts++
		case model.KindSet:
			s.TotalSets++
			s.TotalVolume += e.Volume()
		}
		if e.PersonalRecord {
			s.PersonalRecords++
		}
	}
	s.DistinctDays = len(days)
	return s
}

// Earned returns the registry entries whose condition currently passes.
func Earned(s Snapshot) []Achievement {
	var out []Achievement
	for _, a := range Registry() {
		if a.Condition(s) {
			out = append(out, a)
		}
	}
	return out
}

// Registry returns the full achievement catalog.
func Registry() []Achievement {
	return []Achievement{
		{
			ID: "first_workout", Name: "First Blood",
			Description: "Complete your first workout",
			Condition:   func(s Snapshot) bool { return s.TotalWorkouts >= 1 },
		},
		{
			ID: "ten_workouts", Name: "Regular",
			Description: "Complete 10 workouts",
			Condition:   func(s Snapshot) bool { return s.TotalWorkouts >= 10 },
		},
		{
			ID: "hundred_workouts", Name: "Centurion",
			Description: "Complete 100 workouts",
			Condition:   func(s Snapshot) bool { return s.TotalWorkouts >= 100 },
		},
		{
			ID: "first_pr", Name: "Record Breaker",
			Description: "Set your first personal record",
			Condition:   func(s Snapshot) bool { return s.PersonalRecords >= 1 },
		},
		{
			ID: "ten_prs", Name: "Serial Breaker",
			Description: "Set 10 personal records",
			Condition:   func(s Snapshot) bool { return s.PersonalRecords >= 10 },
		},
		{
			ID: "thirty_days", Name: "Habit Formed",
			Description: "Train on 30 distinct days",
			Condition:   func(s Snapshot) bool { return s.DistinctDays >= 30 },
		},
		{
			ID: "hundred_tons", Name: "Hundred Tons",
			Description: "Move 100,000 kg of lifetime volume",
			Condition:   func(s Snapshot) bool { return s.TotalVolume >= 100000 },
		},
		{
			ID: "power_fifty", Name: "Awakened",
			Description: "Reach 50 power",
			Condition:   func(s Snapshot) bool { return s.Power >= 50 },
		},
		{
			ID: "power_two_hundred", Name: "Unleashed",
			Description: "Reach 200 power",
			Condition:   func(s Snapshot) bool { return s.Power >= 200 },
		},
		{
			ID: "thousand_sets", Name: "Volume Dealer",
			Description: "Log 1,000 sets",
			Condition:   func(s Snapshot) bool { return s.TotalSets >= 1000 },
		},
	}
}
