package match

import (
	"strings"
	"time"
)

// API-Football short status codes.
const (
	StatusNotStarted = "NS"
	StatusFirstHalf  = "1H"
	StatusHalfTime   = "HT"
	StatusSecondHalf = "2H"
	StatusExtraTime  = "ET"
	StatusFullTime   = "FT"
	StatusPostponed  = "PST"
	StatusCancelled  = "CANC"
)

// Rating is a team's relative strength inside its league table snapshot.
// 1.0 means league average on both axes. Form holds the last five results,
// most recent last, over the alphabet {W, D, L, -}.
type Rating struct {
	Attack  float64 `json:"attack"`
	Defense float64 `json:"defense"`
	Form    string  `json:"form"`
}

const NeutralForm = "-----"

// NeutralRating substitutes for teams absent from the ratings table.
func NeutralRating() Rating {
	return Rating{
		Attack:  1.0,
		Defense: 1.0,
		Form:    NeutralForm,
	}
}

// Match is one fixture with both ratings embedded at fetch time. A later
// ratings refresh does not retroactively change an already-cached match.
type Match struct {
	ID         int64     `json:"id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeID     int64     `json:"home_id"`
	AwayID     int64     `json:"away_id"`
	HomeLogo   string    `json:"home_logo,omitempty"`
	AwayLogo   string    `json:"away_logo,omitempty"`
	League     string    `json:"league"`
	LeagueID   int64     `json:"league_id"`
	Season     int       `json:"season,omitempty"`
	LeagueLogo string    `json:"league_logo,omitempty"`
	KickoffAt  time.Time `json:"kickoff_time"`
	Status     string    `json:"status"`
	Elapsed    *int      `json:"elapsed,omitempty"`
	HomeScore  *int      `json:"score_home,omitempty"`
	AwayScore  *int      `json:"score_away,omitempty"`
	HomeStats  Rating    `json:"home_stats"`
	AwayStats  Rating    `json:"away_stats"`
}

// LiveScore is one row of the short-lived live overlay feed.
type LiveScore struct {
	FixtureID int64  `json:"fixture_id"`
	Status    string `json:"status"`
	Elapsed   *int   `json:"elapsed,omitempty"`
	HomeScore *int   `json:"score_home,omitempty"`
	AwayScore *int   `json:"score_away,omitempty"`
}

// Meeting is one historical head-to-head encounter.
type Meeting struct {
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore *int   `json:"score_home"`
	AwayScore *int   `json:"score_away"`
	Score     string `json:"score"`
}

// OverlayLive copies the base list and merges live rows onto it by fixture
// id, touching only status, elapsed and scores. The base slice is never
// mutated; the overlay is re-applied on every read.
func OverlayLive(base []Match, live []LiveScore) []Match {
	out := make([]Match, len(base))
	copy(out, base)
	if len(live) == 0 {
		return out
	}

	byFixture := make(map[int64]LiveScore, len(live))
	for _, row := range live {
		byFixture[row.FixtureID] = row
	}

	for i := range out {
		row, ok := byFixture[out[i].ID]
		if !ok {
			continue
		}
		if row.Status != "" {
			out[i].Status = row.Status
		}
		out[i].Elapsed = row.Elapsed
		if row.HomeScore != nil {
			out[i].HomeScore = row.HomeScore
		}
		if row.AwayScore != nil {
			out[i].AwayScore = row.AwayScore
		}
	}

	return out
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime, "P", "BT", "LIVE":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFullTime, "AET", "PEN":
		return true
	default:
		return false
	}
}
