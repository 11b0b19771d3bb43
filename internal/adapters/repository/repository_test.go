package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/grindstone/internal/adapters/repository"
	"github.com/okian/grindstone/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given a sharded in-memory event store", t, func() {
		store := repository.NewMemStore(repository.WithShardCount(4))
		ctx := context.Background()
		base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

		Convey("When appending events out of order", func() {
			err := store.Append(ctx,
				model.WorkoutEvent{UserID: "u", Timestamp: base.Add(2 * time.Hour), Kind: model.KindSession},
				model.WorkoutEvent{UserID: "u", Timestamp: base, Kind: model.KindSession},
				model.WorkoutEvent{UserID: "u", Timestamp: base.Add(time.Hour), Kind: model.KindSet, Exercise: "bench press", Weight: 80, Reps: 5},
			)
			So(err, ShouldBeNil)

			Convey("Then reads come back oldest first", func() {
				events, err := store.Events(ctx, "u", model.Window{})
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 3)
				So(events[0].Timestamp, ShouldEqual, base)
				So(events[1].Timestamp, ShouldEqual, base.Add(time.Hour))
				So(events[2].Timestamp, ShouldEqual, base.Add(2*time.Hour))
			})

			Convey("And window reads are half-open", func() {
				events, err := store.Events(ctx, "u", model.Window{Start: base, End: base.Add(2 * time.Hour)})
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
			})

			Convey("And other users see nothing", func() {
				events, err := store.Events(ctx, "someone-else", model.Window{})
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})

			Convey("And the stored count covers all users", func() {
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When appending an event without identity", func() {
			err := store.Append(ctx, model.WorkoutEvent{Timestamp: base})

			Convey("Then the append is rejected", func() {
				So(err, ShouldEqual, repository.ErrInvalidEvent)
			})
		})

		Convey("When many goroutines append for different users", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					user := fmt.Sprintf("user-%d", i%4)
					for j := 0; j < 25; j++ {
						_ = store.Append(ctx, model.WorkoutEvent{
							UserID:    user,
							Timestamp: base.Add(time.Duration(j) * time.Minute),
							Kind:      model.KindSession,
						})
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every event lands and per-user order holds", func() {
				So(store.Count(ctx), ShouldEqual, 16*25)
				events, err := store.Events(ctx, "user-0", model.Window{})
				So(err, ShouldBeNil)
				for i := 1; i < len(events); i++ {
					So(events[i].Timestamp.Before(events[i-1].Timestamp), ShouldBeFalse)
				}
			})
		})
	})
}

func TestMemLedger(t *testing.T) {
	Convey("Given an in-memory unlock ledger", t, func() {
		fixed := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
		ledger := repository.NewMemLedger(repository.WithLedgerClock(func() time.Time { return fixed }))
		ctx := context.Background()

		Convey("When granting the same tuple twice", func() {
			first, err := ledger.Grant(ctx, "u", model.UnlockAchievement, "first_workout", "achievement")
			So(err, ShouldBeNil)
			second, err := ledger.Grant(ctx, "u", model.UnlockAchievement, "first_workout", "quest:daily")
			So(err, ShouldBeNil)

			Convey("Then only the first insert reports granted", func() {
				So(first.Granted, ShouldBeTrue)
				So(second.Granted, ShouldBeFalse)
			})

			Convey("And the duplicate returns the original record unchanged", func() {
				So(second.Record.ID, ShouldEqual, first.Record.ID)
				So(second.Record.Source, ShouldEqual, "achievement")
				So(second.Record.GrantedAt, ShouldEqual, fixed)
			})
		})

		Convey("When the same identifier is granted under different kinds", func() {
			a, err := ledger.Grant(ctx, "u", model.UnlockTemplate, "tpl_upper_lower", "quest:w1")
			So(err, ShouldBeNil)
			b, err := ledger.Grant(ctx, "u", model.UnlockFeature, "tpl_upper_lower", "quest:w1")
			So(err, ShouldBeNil)

			Convey("Then both are fresh grants", func() {
				So(a.Granted, ShouldBeTrue)
				So(b.Granted, ShouldBeTrue)
			})
		})

		Convey("When racing goroutines grant one tuple", func() {
			const racers = 32
			var wg sync.WaitGroup
			granted := make(chan bool, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					g, err := ledger.Grant(ctx, "racer", model.UnlockTitle, "title_hauler", "quest:raid")
					if err == nil {
						granted <- g.Granted
					}
				}()
			}
			wg.Wait()
			close(granted)

			Convey("Then exactly one call wins", func() {
				wins := 0
				for g := range granted {
					if g {
						wins++
					}
				}
				So(wins, ShouldEqual, 1)

				records, err := ledger.Unlocks(ctx, "racer")
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
			})
		})

		Convey("When granting with missing fields", func() {
			_, err := ledger.Grant(ctx, "u", model.UnlockTitle, "", "src")

			Convey("Then the grant is rejected", func() {
				So(err, ShouldEqual, repository.ErrInvalidGrant)
			})
		})

		Convey("When listing an unknown user", func() {
			records, err := ledger.Unlocks(ctx, "nobody")
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})
	})
}

func TestSQLiteLedger(t *testing.T) {
	Convey("Given a SQLite-backed unlock ledger", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "ledger.db")
		ledger, err := repository.OpenSQLiteLedger(ctx, path)
		So(err, ShouldBeNil)
		Reset(func() { _ = ledger.Close() })

		Convey("When granting the same tuple twice", func() {
			first, err := ledger.Grant(ctx, "u", model.UnlockAchievement, "first_pr", "achievement")
			So(err, ShouldBeNil)
			second, err := ledger.Grant(ctx, "u", model.UnlockAchievement, "first_pr", "achievement")
			So(err, ShouldBeNil)

			Convey("Then the unique index makes the second a no-op", func() {
				So(first.Granted, ShouldBeTrue)
				So(second.Granted, ShouldBeFalse)
				So(second.Record.ID, ShouldEqual, first.Record.ID)
			})
		})

		Convey("When racing grants hit one tuple", func() {
			const racers = 8
			var wg sync.WaitGroup
			var mu sync.Mutex
			wins := 0
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					g, err := ledger.Grant(ctx, "racer", model.UnlockFeature, "feat_boss_board", "quest:boss")
					if err == nil && g.Granted {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one insert lands", func() {
				So(wins, ShouldEqual, 1)
				records, err := ledger.Unlocks(ctx, "racer")
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
			})
		})

		Convey("When listing grants", func() {
			_, err := ledger.Grant(ctx, "lister", model.UnlockTitle, "title_one", "src")
			So(err, ShouldBeNil)
			_, err = ledger.Grant(ctx, "lister", model.UnlockTitle, "title_two", "src")
			So(err, ShouldBeNil)

			Convey("Then records come back with their fields round-tripped", func() {
				records, err := ledger.Unlocks(ctx, "lister")
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].UserID, ShouldEqual, "lister")
				So(records[0].Kind, ShouldEqual, model.UnlockTitle)
				So(records[0].GrantedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When reopening the same file", func() {
			_, err := ledger.Grant(ctx, "durable", model.UnlockAchievement, "hundred_tons", "achievement")
			So(err, ShouldBeNil)
			So(ledger.Close(), ShouldBeNil)

			reopened, err := repository.OpenSQLiteLedger(ctx, path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then earlier grants survive", func() {
				g, err := reopened.Grant(ctx, "durable", model.UnlockAchievement, "hundred_tons", "achievement")
				So(err, ShouldBeNil)
				So(g.Granted, ShouldBeFalse)
			})
		})
	})
}
