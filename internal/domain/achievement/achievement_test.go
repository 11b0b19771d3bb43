package achievement_test

import (
	"testing"
	"time"

	"github.com/okian/grindstone/internal/domain/achievement"
	"github.com/okian/grindstone/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildSnapshot(t *testing.T) {
	Convey("Given a mixed history", t, func() {
		day := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
		events := []model.WorkoutEvent{
			{UserID: "u", Timestamp: day, Kind: model.KindSession, Duration: time.Hour},
			{UserID: "u", Timestamp: day.Add(10 * time.Minute), Kind: model.KindSet, Exercise: "back squat", Weight: 100, Reps: 5, PersonalRecord: true},
			{UserID: "u", Timestamp: day.Add(20 * time.Minute), Kind: model.KindSet, Exercise: "back squat", Weight: 100, Reps: 5},
			// Next day, session only.
			{UserID: "u", Timestamp: day.AddDate(0, 0, 1), Kind: model.KindSession, Duration: time.Hour},
		}

		Convey("When reducing it to a snapshot", func() {
			s := achievement.BuildSnapshot(events, 42)

			Convey("Then every aggregate is derived from the log", func() {
				So(s.TotalWorkouts, ShouldEqual, 2)
				So(s.TotalSets, ShouldEqual, 2)
				So(s.PersonalRecords, ShouldEqual, 1)
				So(s.DistinctDays, ShouldEqual, 2)
				So(s.TotalVolume, ShouldEqual, 1000)
				So(s.Power, ShouldEqual, 42)
			})
		})
	})
}

func TestEarned(t *testing.T) {
	Convey("Given the achievement registry", t, func() {
		ids := func(list []achievement.Achievement) map[string]bool {
			out := make(map[string]bool, len(list))
			for _, a := range list {
				out[a.ID] = true
			}
			return out
		}

		Convey("When the snapshot is empty", func() {
			So(achievement.Earned(achievement.Snapshot{}), ShouldBeEmpty)
		})

		Convey("When one workout with a record is on file", func() {
			earned := ids(achievement.Earned(achievement.Snapshot{TotalWorkouts: 1, PersonalRecords: 1}))

			Convey("Then only the entry thresholds pass", func() {
				So(earned["first_workout"], ShouldBeTrue)
				So(earned["first_pr"], ShouldBeTrue)
				So(earned["ten_workouts"], ShouldBeFalse)
				So(earned["ten_prs"], ShouldBeFalse)
			})
		})

		Convey("When a veteran snapshot comes in", func() {
			earned := ids(achievement.Earned(achievement.Snapshot{
				TotalWorkouts:   120,
				TotalSets:       1200,
				PersonalRecords: 15,
				DistinctDays:    110,
				TotalVolume:     250000,
				Power:           210,
			}))

			Convey("Then every condition passes", func() {
				So(len(earned), ShouldEqual, len(achievement.Registry()))
			})
		})

		Convey("And thresholds are inclusive", func() {
			earned := ids(achievement.Earned(achievement.Snapshot{Power: 50}))
			So(earned["power_fifty"], ShouldBeTrue)
			So(earned["power_two_hundred"], ShouldBeFalse)
		})
	})
}

func TestRegistryIdentifiers(t *testing.T) {
	Convey("Given the registry", t, func() {
		Convey("Then every entry has a unique id and a condition", func() {
			seen := make(map[string]bool)
			for _, a := range achievement.Registry() {
				So(a.ID, ShouldNotBeEmpty)
				So(seen[a.ID], ShouldBeFalse)
				So(a.Condition, ShouldNotBeNil)
				seen[a.ID] = true
			}
		})
	})
}
