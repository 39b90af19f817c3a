package usecase

import (
	"context"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
)

// StandingRow is one league-table row as consumed by the ratings refresh.
// Only the fields the rating formula needs are carried.
type StandingRow struct {
	TeamID       int64
	TeamName     string
	Played       int
	GoalsFor     int
	GoalsAgainst int
	Form         string
}

// FootballDataProvider is the upstream fixture and odds source. The
// concrete client lives in external/apifootball; services never talk to
// the provider API directly.
type FootballDataProvider interface {
	FixturesByDate(ctx context.Context, date string, leagueIDs []int64) ([]match.Match, error)
	FixtureByID(ctx context.Context, fixtureID int64) (match.Match, error)
	LiveFixtures(ctx context.Context, leagueIDs []int64) ([]match.LiveScore, error)
	Standings(ctx context.Context, leagueID int64, season int) ([]StandingRow, error)
	Odds(ctx context.Context, fixtureID int64, bookmakerID string) (*odds.Quote, error)
	Lineups(ctx context.Context, fixtureID int64) ([]prediction.Lineup, error)
	Injuries(ctx context.Context, fixtureID int64) ([]prediction.Injury, error)
	HeadToHead(ctx context.Context, homeID, awayID int64, last int) ([]match.Meeting, error)
}
