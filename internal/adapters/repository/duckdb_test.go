package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/apexlabs/flyrank/internal/adapters/repository"
	"github.com/apexlabs/flyrank/internal/domain/model"
)

func tempStore(t *testing.T) *repository.DuckStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "flyrank_test.db")
	store, err := repository.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleStandings(ts time.Time) []model.Standing {
	return []model.Standing{
		{Rank: 1, SteamID: 76561198000000001, ScoreTime: 61234, Points: 1, Course: "Alpha", Timestamp: ts},
		{Rank: 2, SteamID: 76561198000000002, ScoreTime: 62980, Points: 0, Course: "Alpha", Timestamp: ts},
		{Rank: 1, SteamID: 76561198000000001, ScoreTime: 50000, Points: 0, Course: "Beta", Timestamp: ts},
	}
}

func TestDuckStore_Append(t *testing.T) {
	Convey("Given an open store", t, func() {
		store := tempStore(t)
		ctx := context.Background()
		ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		Convey("When appending run standings twice", func() {
			So(store.AppendRun(ctx, sampleStandings(ts)), ShouldBeNil)
			So(store.AppendRun(ctx, sampleStandings(ts)), ShouldBeNil)

			Convey("Then the run table holds two copies of every row", func() {
				n, err := store.Count(ctx, repository.TableRun)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 6)
			})

			Convey("And the history table is untouched", func() {
				n, err := store.Count(ctx, repository.TableHistory)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When appending history standings twice", func() {
			So(store.AppendHistory(ctx, sampleStandings(ts)), ShouldBeNil)
			So(store.AppendHistory(ctx, sampleStandings(ts)), ShouldBeNil)

			Convey("Then the history table holds two copies of every row", func() {
				n, err := store.Count(ctx, repository.TableHistory)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 6)
			})
		})

		Convey("When appending an empty batch", func() {
			So(store.AppendRun(ctx, nil), ShouldBeNil)

			Convey("Then the run table stays empty", func() {
				n, err := store.Count(ctx, repository.TableRun)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}

func TestDuckStore_ReplaceLeaders(t *testing.T) {
	Convey("Given an open store", t, func() {
		store := tempStore(t)
		ctx := context.Background()
		tsA := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		tsB := tsA.Add(15 * time.Minute)

		leaderboardA := []model.LeaderRow{
			{SteamID: 10, Points: 7, Timestamp: tsA, Username: "AcePilot"},
			{SteamID: 20, Points: 3, Timestamp: tsA, Username: "TailSpin"},
			{SteamID: 30, Points: 0, Timestamp: tsA},
		}
		leaderboardB := []model.LeaderRow{
			{SteamID: 20, Points: 9, Timestamp: tsB, Username: "TailSpin"},
			{SteamID: 10, Points: 5, Timestamp: tsB, Username: "AcePilot"},
		}

		Convey("When replacing snapshot A with snapshot B", func() {
			So(store.ReplaceLeaders(ctx, leaderboardA), ShouldBeNil)
			So(store.ReplaceLeaders(ctx, leaderboardB), ShouldBeNil)

			Convey("Then a read returns only B's rows", func() {
				rows, err := store.Leaders(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].SteamID, ShouldEqual, 20)
				So(rows[0].Points, ShouldEqual, 9)
				So(rows[1].SteamID, ShouldEqual, 10)
			})
		})

		Convey("When a row has no username", func() {
			So(store.ReplaceLeaders(ctx, leaderboardA), ShouldBeNil)

			Convey("Then the row reads back with an empty username", func() {
				rows, err := store.Leaders(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[2].Username, ShouldBeEmpty)
			})
		})

		Convey("When replacing with an empty leaderboard", func() {
			So(store.ReplaceLeaders(ctx, leaderboardA), ShouldBeNil)
			So(store.ReplaceLeaders(ctx, nil), ShouldBeNil)

			Convey("Then the snapshot is empty", func() {
				rows, err := store.Leaders(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}

func TestDuckStore_Count(t *testing.T) {
	Convey("Given an open store", t, func() {
		store := tempStore(t)

		Convey("When counting a table the sink does not own", func() {
			_, err := store.Count(context.Background(), "users; DROP TABLE leader")

			Convey("Then the table name is rejected", func() {
				So(errors.Is(err, repository.ErrUnknownTable), ShouldBeTrue)
			})
		})
	})
}
