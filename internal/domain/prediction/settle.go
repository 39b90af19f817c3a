package prediction

import (
	"strconv"
	"strings"
)

// CheckOutcome grades a main pick against the final score. Picks the
// grader does not recognize come back as "N/A" so they never count toward
// the record.
func CheckOutcome(pick string, homeGoals, awayGoals int) string {
	pick = strings.ToUpper(pick)
	total := homeGoals + awayGoals

	switch {
	case strings.Contains(pick, "HOME WIN"):
		return winLoss(homeGoals > awayGoals)
	case strings.Contains(pick, "AWAY WIN"):
		return winLoss(awayGoals > homeGoals)
	case strings.Contains(pick, "DRAW"):
		return winLoss(homeGoals == awayGoals)
	case strings.Contains(pick, "OVER"):
		line, ok := trailingLine(pick)
		if !ok {
			return OutcomeNA
		}
		return winLoss(float64(total) > line)
	case strings.Contains(pick, "UNDER"):
		line, ok := trailingLine(pick)
		if !ok {
			return OutcomeNA
		}
		return winLoss(float64(total) < line)
	}
	return OutcomeNA
}

// SettleHandicap grades a "Bet: <team> <line>" recommendation. Lines
// quoted for the away side grade on the away margin with no push case,
// mirroring how the books settle the flipped quote.
func SettleHandicap(suggested, homeTeam string, homeGoals, awayGoals int) string {
	if !strings.HasPrefix(suggested, "Bet:") {
		return OutcomeNA
	}

	fields := strings.Fields(suggested)
	if len(fields) < 3 {
		return OutcomeNA
	}

	team := fields[1]
	line, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return OutcomeNA
	}

	if team == homeTeam {
		adjusted := float64(homeGoals-awayGoals) + line
		switch {
		case adjusted > 0:
			return OutcomeWin
		case adjusted == 0:
			return OutcomePush
		default:
			return OutcomeLoss
		}
	}

	if float64(awayGoals)+line > float64(homeGoals) {
		return OutcomeWin
	}
	return OutcomeLoss
}

func winLoss(won bool) string {
	if won {
		return OutcomeWin
	}
	return OutcomeLoss
}

// trailingLine pulls the numeric goal line off the end of an OVER/UNDER
// pick string.
func trailingLine(pick string) (float64, bool) {
	fields := strings.Fields(pick)
	if len(fields) == 0 {
		return 0, false
	}
	line, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return line, true
}
