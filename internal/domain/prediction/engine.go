package prediction

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
)

// League-wide scoring baselines. Everything else the engine needs arrives
// with the match.
const (
	leagueAvgHomeGoals = 1.5
	leagueAvgAwayGoals = 1.2

	homeAdvantage  = 1.1
	halfTimeFactor = 0.45
	maxGoals       = 10

	defaultGoalLine = 2.5
)

// Engine converts a rated match plus optional live context into a
// structured prediction. It holds no mutable state: two calls with the
// same inputs produce identical output.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// momentumFactor maps a last-five form string onto a multiplicative attack
// factor: 3 points per win, 1 per draw, factor = 0.85 + 0.02*score. Empty
// or unknown form stays neutral at 1.0.
func momentumFactor(form string) float64 {
	if form == "" || form == match.NeutralForm {
		return 1.0
	}

	runes := []rune(form)
	if len(runes) > 5 {
		runes = runes[len(runes)-5:]
	}

	score := 0
	for _, r := range runes {
		switch r {
		case 'W':
			score += 3
		case 'D':
			score++
		}
	}

	return 0.85 + float64(score)*0.02
}

// Predict runs the full pipeline: momentum, injuries, lineup shape,
// expected goals, first-half chance, the Poisson joint grid, then the
// handicap and goal-market decisions.
func (e *Engine) Predict(m match.Match, quote *odds.Quote, injuries []Injury, lineups []Lineup) Prediction {
	home := m.HomeStats
	away := m.AwayStats

	homeForm := home.Form
	awayForm := away.Form
	if homeForm == "" {
		homeForm = match.NeutralForm
	}
	if awayForm == "" {
		awayForm = match.NeutralForm
	}

	homeMomentum := momentumFactor(homeForm)
	awayMomentum := momentumFactor(awayForm)
	home.Attack *= homeMomentum
	away.Attack *= awayMomentum

	momentumInsight := ""
	if homeMomentum > 1.1 && awayMomentum < 0.95 {
		momentumInsight = fmt.Sprintf("%s is on fire (%s) vs poor form away.", m.HomeTeam, homeForm)
	} else if awayMomentum > 1.1 && homeMomentum < 0.95 {
		momentumInsight = fmt.Sprintf("%s has strong momentum (%s).", m.AwayTeam, awayForm)
	}

	if len(injuries) > 0 {
		homeInjuries := 0
		awayInjuries := 0
		for _, injury := range injuries {
			switch injury.TeamID {
			case m.HomeID:
				homeInjuries++
			case m.AwayID:
				awayInjuries++
			}
		}
		home.Attack *= injuryPenalty(homeInjuries)
		away.Attack *= injuryPenalty(awayInjuries)
	}

	lineupInsight := ""
	if len(lineups) >= 2 {
		homeFormation := formationOrNA(lineups[0].Formation)
		awayFormation := formationOrNA(lineups[1].Formation)
		lineupInsight = fmt.Sprintf("Tactics: %s vs %s", homeFormation, awayFormation)
		if strings.HasPrefix(homeFormation, "5") {
			home.Defense *= 0.9
		}
	}

	homeLambda := home.Attack * away.Defense * leagueAvgHomeGoals
	awayLambda := away.Attack * home.Defense * leagueAvgAwayGoals
	homeLambda *= homeAdvantage

	// First half: scale both rates to 45 of 90 minutes and ask for the
	// chance of at least one goal before the break.
	totalHTLambda := (homeLambda + awayLambda) * halfTimeFactor
	probGoalHT := (1 - poissonPMF(0, totalHTLambda)) * 100

	firstHalf := FirstHalf{
		HasValue:    probGoalHT > 50,
		Probability: round1(probGoalHT),
		Text:        "Moderate Chance",
	}
	if probGoalHT > 65 {
		firstHalf.Text = "High Chance"
	}

	var homeProbs, awayProbs [maxGoals]float64
	for i := 0; i < maxGoals; i++ {
		homeProbs[i] = poissonPMF(i, homeLambda)
		awayProbs[i] = poissonPMF(i, awayLambda)
	}

	var homeWinProb, drawProb, awayWinProb, over25Prob float64
	diffProbs := make(map[int]float64, 2*maxGoals-1)
	for i := 0; i < maxGoals; i++ {
		for j := 0; j < maxGoals; j++ {
			p := homeProbs[i] * awayProbs[j]
			switch {
			case i > j:
				homeWinProb += p
			case i == j:
				drawProb += p
			default:
				awayWinProb += p
			}
			if float64(i+j) > defaultGoalLine {
				over25Prob += p
			}
			diffProbs[i-j] += p
		}
	}

	advice := "No Advice"
	confidence := ConfidenceLow

	hdpDiff := homeLambda - awayLambda
	hdpText := "N/A"

	if quote != nil && quote.Handicap != nil {
		line := quote.Handicap.Line
		probCover := 0.0
		for diff, p := range diffProbs {
			if float64(diff)+line > 0 {
				probCover += p
			}
		}
		probCover *= 100

		switch {
		case probCover > 65:
			advice = fmt.Sprintf("HANDICAP: %s %s", m.HomeTeam, formatLine(line))
			confidence = ConfidenceHigh
			hdpText = fmt.Sprintf("Bet: %s %s (%.1f%%)", m.HomeTeam, formatLine(line), probCover)
		case probCover < 35:
			advice = fmt.Sprintf("HANDICAP: %s %s", m.AwayTeam, formatLine(-line))
			confidence = ConfidenceHigh
			hdpText = fmt.Sprintf("Bet: %s %s (%.1f%%)", m.AwayTeam, formatLine(-line), 100-probCover)
		default:
			hdpText = "Skipped Line " + formatLine(line)
		}
	} else {
		switch {
		case hdpDiff > 1.2:
			hdpText = fmt.Sprintf("%s -1.0 (Stats)", m.HomeTeam)
		case hdpDiff > 0.5:
			hdpText = fmt.Sprintf("%s -0.5 (Stats)", m.HomeTeam)
		case hdpDiff < -1.2:
			hdpText = fmt.Sprintf("%s -1.0 (Stats)", m.AwayTeam)
		case hdpDiff < -0.5:
			hdpText = fmt.Sprintf("%s -0.5 (Stats)", m.AwayTeam)
		default:
			hdpText = "0.0 (Level)"
		}
	}

	targetLine := defaultGoalLine
	if quote != nil && quote.OverUnder != nil {
		targetLine = quote.OverUnder.Line
	}

	probOverLine := 0.0
	for i := 0; i < maxGoals; i++ {
		for j := 0; j < maxGoals; j++ {
			if float64(i+j) > targetLine {
				probOverLine += homeProbs[i] * awayProbs[j]
			}
		}
	}

	ouProbPct := probOverLine * 100
	ouText := fmt.Sprintf("Over %s: %.1f%%", formatLine(targetLine), ouProbPct)

	// A handicap pick always outranks the goal market: only fill the main
	// pick from goals when no handicap recommendation was set.
	if ouProbPct > 60 {
		if confidence == ConfidenceLow {
			advice = "GOAL: OVER " + formatLine(targetLine)
			confidence = ConfidenceMedium
		}
	} else if ouProbPct < 40 {
		if confidence == ConfidenceLow {
			advice = "GOAL: UNDER " + formatLine(targetLine)
			confidence = ConfidenceMedium
		}
	}

	return Prediction{
		Teams: fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam),
		Probabilities: Probabilities{
			HomeWin: round1(homeWinProb * 100),
			Draw:    round1(drawProb * 100),
			AwayWin: round1(awayWinProb * 100),
		},
		FirstHalf:     firstHalf,
		ExpectedScore: fmt.Sprintf("%d - %d", int(math.Round(homeLambda)), int(math.Round(awayLambda))),
		GoalsMarket: GoalsMarket{
			Over25:      round1(over25Prob * 100),
			RealLine:    targetLine,
			Probability: round1(ouProbPct),
			Analysis:    ouText,
		},
		HandicapMarket: HandicapMarket{
			SuggestedLine:    hdpText,
			ExpectedGoalDiff: round2(hdpDiff),
		},
		Insight: Insight{
			MainPick:         advice,
			Confidence:       confidence,
			MomentumAnalysis: momentumInsight,
			LineupAnalysis:   lineupInsight,
		},
		FormAnalysis: FormAnalysis{
			Home: homeForm,
			Away: awayForm,
		},
	}
}

// injuryPenalty costs 3% attack per sidelined player, floored at a 15%
// total reduction.
func injuryPenalty(count int) float64 {
	return math.Max(0.85, 1-float64(count)*0.03)
}

func formationOrNA(formation string) string {
	formation = strings.TrimSpace(formation)
	if formation == "" {
		return "N/A"
	}
	return formation
}

// formatLine renders a goal line the way bookmakers write them: whole
// numbers keep one decimal ("-1.0"), quarter lines print as-is ("-0.75").
func formatLine(line float64) string {
	s := strconv.FormatFloat(line, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
