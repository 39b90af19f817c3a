package prediction

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
)

func ratedMatch(homeAttack, homeDefense, awayAttack, awayDefense float64) match.Match {
	return match.Match{
		ID:       101,
		HomeTeam: "Arsenal",
		AwayTeam: "Fulham",
		HomeID:   42,
		AwayID:   36,
		HomeStats: match.Rating{
			Attack:  homeAttack,
			Defense: homeDefense,
			Form:    match.NeutralForm,
		},
		AwayStats: match.Rating{
			Attack:  awayAttack,
			Defense: awayDefense,
			Form:    match.NeutralForm,
		},
	}
}

func TestMomentumFactor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		form string
		want float64
	}{
		{"", 1.0},
		{match.NeutralForm, 1.0},
		{"WWWWW", 1.15},
		{"LLLLL", 0.85},
		{"DDDDD", 0.95},
		{"WWDLW", 1.05},
		{"LLLWWWWW", 1.15},
	}

	for _, tc := range cases {
		if got := momentumFactor(tc.form); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("momentumFactor(%q) = %v, want %v", tc.form, got, tc.want)
		}
	}
}

func TestInjuryPenalty_Floor(t *testing.T) {
	t.Parallel()

	if got := injuryPenalty(1); math.Abs(got-0.97) > 1e-9 {
		t.Fatalf("one injury penalty = %v, want 0.97", got)
	}
	if got := injuryPenalty(10); got != 0.85 {
		t.Fatalf("ten injuries penalty = %v, want floor 0.85", got)
	}
}

func TestFormatLine(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		-1:    "-1.0",
		-0.5:  "-0.5",
		0:     "0.0",
		2.5:   "2.5",
		-0.75: "-0.75",
	}
	for line, want := range cases {
		if got := formatLine(line); got != want {
			t.Fatalf("formatLine(%v) = %q, want %q", line, got, want)
		}
	}
}

func TestPredict_ExpectedScoreAndProbabilities(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	// home lambda = 1.2 * 1.1 * 1.5 * 1.1 = 2.178, away = 1.0 * 1.0 * 1.2.
	m := ratedMatch(1.2, 1.0, 1.0, 1.1)

	pred := e.Predict(m, nil, nil, nil)

	if pred.ExpectedScore != "2 - 1" {
		t.Fatalf("expected score %q, want \"2 - 1\"", pred.ExpectedScore)
	}

	sum := pred.Probabilities.HomeWin + pred.Probabilities.Draw + pred.Probabilities.AwayWin
	if math.Abs(sum-100) > 0.5 {
		t.Fatalf("probability triple sums to %v, want 100 within 0.5", sum)
	}
	if pred.Probabilities.HomeWin <= pred.Probabilities.AwayWin {
		t.Fatalf("stronger home side should be favored: home=%v away=%v",
			pred.Probabilities.HomeWin, pred.Probabilities.AwayWin)
	}

	if pred.Teams != "Arsenal vs Fulham" {
		t.Fatalf("unexpected teams label %q", pred.Teams)
	}
}

func TestPredict_StatsFallbackAndGoalPick(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	// lambda diff = 2.0*1.0*1.5*1.1 - 1.0*1.0*1.2 = 3.3 - 1.2 = 2.1.
	m := ratedMatch(2.0, 1.0, 1.0, 1.0)

	pred := e.Predict(m, nil, nil, nil)

	if pred.HandicapMarket.SuggestedLine != "Arsenal -1.0 (Stats)" {
		t.Fatalf("suggested line %q, want \"Arsenal -1.0 (Stats)\"", pred.HandicapMarket.SuggestedLine)
	}
	if pred.HandicapMarket.ExpectedGoalDiff != 2.1 {
		t.Fatalf("expected goal diff %v, want 2.1", pred.HandicapMarket.ExpectedGoalDiff)
	}

	// Total lambda 4.5 makes over 2.5 the dominant outcome.
	if pred.Insight.MainPick != "GOAL: OVER 2.5" {
		t.Fatalf("main pick %q, want \"GOAL: OVER 2.5\"", pred.Insight.MainPick)
	}
	if pred.Insight.Confidence != ConfidenceMedium {
		t.Fatalf("confidence %q, want %q", pred.Insight.Confidence, ConfidenceMedium)
	}

	if !pred.FirstHalf.HasValue || pred.FirstHalf.Text != "High Chance" {
		t.Fatalf("first half = %+v, want high chance with value", pred.FirstHalf)
	}
}

func TestPredict_LevelLineWhenSidesMatch(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.0, 1.0, 1.25, 1.0)

	pred := e.Predict(m, nil, nil, nil)

	// diff = 1.0*1.0*1.5*1.1 - 1.25*1.0*1.2 = 1.65 - 1.5 = 0.15.
	if pred.HandicapMarket.SuggestedLine != "0.0 (Level)" {
		t.Fatalf("suggested line %q, want \"0.0 (Level)\"", pred.HandicapMarket.SuggestedLine)
	}
}

func TestPredict_HandicapPickFromQuote(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(2.0, 1.0, 0.8, 1.0)
	quote := &odds.Quote{
		Handicap: &odds.Handicap{Line: 0, Odd: 1.92},
	}

	pred := e.Predict(m, quote, nil, nil)

	if !strings.HasPrefix(pred.Insight.MainPick, "HANDICAP: Arsenal") {
		t.Fatalf("main pick %q, want home handicap recommendation", pred.Insight.MainPick)
	}
	if pred.Insight.Confidence != ConfidenceHigh {
		t.Fatalf("confidence %q, want %q", pred.Insight.Confidence, ConfidenceHigh)
	}
	if !strings.HasPrefix(pred.HandicapMarket.SuggestedLine, "Bet: Arsenal 0.0") {
		t.Fatalf("suggested line %q, want bet text for Arsenal at 0.0", pred.HandicapMarket.SuggestedLine)
	}

	// A settled handicap pick outranks the goal market even when the
	// total also clears its threshold.
	if strings.HasPrefix(pred.Insight.MainPick, "GOAL:") {
		t.Fatalf("goal market must not override a handicap pick, got %q", pred.Insight.MainPick)
	}
}

func TestPredict_SkippedLineStaysLowConfidence(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.0, 1.0, 1.0, 1.0)
	// Even sides against a heavy home line: cover probability lands in
	// the 35..65 dead zone.
	quote := &odds.Quote{
		Handicap:  &odds.Handicap{Line: 0, Odd: 1.9},
		OverUnder: &odds.OverUnder{Line: 2.5, Over: 1.9},
	}

	pred := e.Predict(m, quote, nil, nil)

	if !strings.HasPrefix(pred.HandicapMarket.SuggestedLine, "Skipped Line") {
		t.Fatalf("suggested line %q, want skipped line", pred.HandicapMarket.SuggestedLine)
	}
	if pred.Insight.Confidence != ConfidenceLow {
		t.Fatalf("confidence %q, want %q", pred.Insight.Confidence, ConfidenceLow)
	}
}

func TestPredict_InjuriesWeakenAttack(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.5, 1.0, 1.0, 1.0)

	injuries := []Injury{
		{TeamID: m.HomeID, Player: "Saka"},
		{TeamID: m.HomeID, Player: "Rice"},
		{TeamID: m.HomeID, Player: "Saliba"},
	}

	healthy := e.Predict(m, nil, nil, nil)
	depleted := e.Predict(m, nil, injuries, nil)

	if depleted.Probabilities.HomeWin >= healthy.Probabilities.HomeWin {
		t.Fatalf("injuries should reduce home win probability: healthy=%v depleted=%v",
			healthy.Probabilities.HomeWin, depleted.Probabilities.HomeWin)
	}
}

func TestPredict_LineupAnalysis(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.0, 1.0, 1.0, 1.0)
	lineups := []Lineup{
		{TeamID: m.HomeID, TeamName: "Arsenal", Formation: "5-4-1"},
		{TeamID: m.AwayID, TeamName: "Fulham", Formation: "4-3-3"},
	}

	withLineups := e.Predict(m, nil, nil, lineups)
	without := e.Predict(m, nil, nil, nil)

	if withLineups.Insight.LineupAnalysis != "Tactics: 5-4-1 vs 4-3-3" {
		t.Fatalf("lineup analysis %q", withLineups.Insight.LineupAnalysis)
	}

	// A five-at-the-back home side tightens its defense, pulling the
	// away goal expectation down.
	if withLineups.Probabilities.AwayWin >= without.Probabilities.AwayWin {
		t.Fatalf("5-back formation should lower away win probability: with=%v without=%v",
			withLineups.Probabilities.AwayWin, without.Probabilities.AwayWin)
	}
}

func TestPredict_MomentumInsight(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.0, 1.0, 1.0, 1.0)
	m.HomeStats.Form = "WWWWW"
	m.AwayStats.Form = "LLLLL"

	pred := e.Predict(m, nil, nil, nil)

	if !strings.Contains(pred.Insight.MomentumAnalysis, "Arsenal is on fire") {
		t.Fatalf("momentum analysis %q", pred.Insight.MomentumAnalysis)
	}
	if pred.FormAnalysis.Home != "WWWWW" || pred.FormAnalysis.Away != "LLLLL" {
		t.Fatalf("form analysis %+v", pred.FormAnalysis)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	m := ratedMatch(1.3, 0.9, 1.1, 1.2)
	m.HomeStats.Form = "WDLWW"
	quote := &odds.Quote{
		Handicap:  &odds.Handicap{Line: -0.5, Odd: 1.88},
		OverUnder: &odds.OverUnder{Line: 3.0, Over: 1.95},
	}

	first := e.Predict(m, quote, nil, nil)
	second := e.Predict(m, quote, nil, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("predictions differ between identical calls:\n%+v\n%+v", first, second)
	}
}
