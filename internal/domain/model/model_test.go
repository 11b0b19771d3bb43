package model_test

import (
	"testing"
	"time"

	"github.com/okian/grindstone/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWindow(t *testing.T) {
	Convey("Given a half-open window", t, func() {
		start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
		w := model.Window{Start: start, End: end}

		Convey("Then the start is inclusive and the end exclusive", func() {
			So(w.Contains(start), ShouldBeTrue)
			So(w.Contains(end), ShouldBeFalse)
			So(w.Contains(end.Add(-time.Nanosecond)), ShouldBeTrue)
			So(w.Contains(start.Add(-time.Nanosecond)), ShouldBeFalse)
		})

		Convey("When the start is zero", func() {
			open := model.Window{End: end}

			Convey("Then any time before the end is inside", func() {
				So(open.Contains(start.AddDate(-10, 0, 0)), ShouldBeTrue)
				So(open.Contains(end), ShouldBeFalse)
			})
		})

		Convey("When filtering events", func() {
			events := []model.WorkoutEvent{
				{UserID: "u", Timestamp: start.Add(-time.Hour), Kind: model.KindSession},
				{UserID: "u", Timestamp: start.Add(time.Hour), Kind: model.KindSession},
				{UserID: "u", Timestamp: end.Add(time.Hour), Kind: model.KindSession},
			}

			Convey("Then only in-window events survive, order preserved", func() {
				got := w.Filter(events)
				So(got, ShouldHaveLength, 1)
				So(got[0].Timestamp, ShouldEqual, start.Add(time.Hour))
			})
		})
	})
}

func TestVolume(t *testing.T) {
	Convey("Given workout events", t, func() {
		Convey("Then set volume is weight times reps", func() {
			e := model.WorkoutEvent{Kind: model.KindSet, Weight: 100, Reps: 5}
			So(e.Volume(), ShouldEqual, 500)
		})

		Convey("And sessions carry no volume", func() {
			e := model.WorkoutEvent{Kind: model.KindSession, Weight: 100, Reps: 5}
			So(e.Volume(), ShouldEqual, 0)
		})
	})
}

func TestRewardKinds(t *testing.T) {
	Convey("Given the reward tagged union", t, func() {
		Convey("Then unlockable kinds map onto ledger kinds", func() {
			for reward, unlock := range map[model.RewardKind]model.UnlockKind{
				model.RewardAchievement: model.UnlockAchievement,
				model.RewardTemplate:    model.UnlockTemplate,
				model.RewardFeature:     model.UnlockFeature,
				model.RewardTitle:       model.UnlockTitle,
			} {
				kind, ok := model.UnlockKindFor(reward)
				So(ok, ShouldBeTrue)
				So(kind, ShouldEqual, unlock)
			}
		})

		Convey("And xp never reaches the ledger", func() {
			_, ok := model.UnlockKindFor(model.RewardXP)
			So(ok, ShouldBeFalse)
			So(model.XP(100).Unlockable(), ShouldBeFalse)
		})
	})
}
