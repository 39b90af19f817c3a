package prediction

import "testing"

func TestCheckOutcome(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pick string
		home int
		away int
		want string
	}{
		{"over win", "GOAL: OVER 2.5", 2, 1, OutcomeWin},
		{"over loss", "GOAL: OVER 2.5", 1, 1, OutcomeLoss},
		{"under win", "GOAL: UNDER 3.5", 2, 1, OutcomeWin},
		{"under loss on push total", "GOAL: UNDER 3.0", 2, 1, OutcomeLoss},
		{"home win graded", "HOME WIN", 1, 0, OutcomeWin},
		{"home win lost", "HOME WIN", 0, 0, OutcomeLoss},
		{"away win graded", "AWAY WIN", 0, 2, OutcomeWin},
		{"draw graded", "DRAW", 1, 1, OutcomeWin},
		{"lowercase pick", "goal: over 1.5", 2, 0, OutcomeWin},
		{"unknown pick", "No Advice", 3, 0, OutcomeNA},
		{"over with no line", "GOAL: OVER", 3, 0, OutcomeNA},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CheckOutcome(tc.pick, tc.home, tc.away); got != tc.want {
				t.Fatalf("CheckOutcome(%q, %d, %d) = %q, want %q", tc.pick, tc.home, tc.away, got, tc.want)
			}
		})
	}
}

func TestSettleHandicap_HomeSide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		suggested string
		home      int
		away      int
		want      string
	}{
		{"covers", "Bet: Arsenal -0.5 (71.2%)", 2, 1, OutcomeWin},
		{"fails to cover", "Bet: Arsenal -1.0 (71.2%)", 2, 2, OutcomeLoss},
		{"pushes on whole line", "Bet: Arsenal -1.0 (71.2%)", 2, 1, OutcomePush},
		{"level line draw pushes", "Bet: Arsenal 0.0 (66.0%)", 1, 1, OutcomePush},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SettleHandicap(tc.suggested, "Arsenal", tc.home, tc.away); got != tc.want {
				t.Fatalf("SettleHandicap(%q) = %q, want %q", tc.suggested, got, tc.want)
			}
		})
	}
}

func TestSettleHandicap_AwaySide(t *testing.T) {
	t.Parallel()

	// Away quotes grade on the adjusted away margin and never push.
	if got := SettleHandicap("Bet: Fulham 0.5 (68.0%)", "Arsenal", 1, 1); got != OutcomeWin {
		t.Fatalf("away +0.5 on a draw = %q, want %q", got, OutcomeWin)
	}
	if got := SettleHandicap("Bet: Fulham 1.0 (68.0%)", "Arsenal", 2, 1); got != OutcomeLoss {
		t.Fatalf("away +1.0 losing by one = %q, want %q", got, OutcomeLoss)
	}
	if got := SettleHandicap("Bet: Fulham -0.5 (68.0%)", "Arsenal", 0, 1); got != OutcomeWin {
		t.Fatalf("away -0.5 winning by one = %q, want %q", got, OutcomeWin)
	}
}

func TestSettleHandicap_MultiwordTeamGradesAsAway(t *testing.T) {
	t.Parallel()

	// Only the first word of the team name survives the field split, so a
	// multiword home team falls through to the away branch.
	got := SettleHandicap("Bet: Manchester United -1.0 (70.0%)", "Manchester United", 3, 0)
	if got != OutcomeNA {
		t.Fatalf("multiword suggestion = %q, want %q", got, OutcomeNA)
	}
}

func TestSettleHandicap_UnrecognizedText(t *testing.T) {
	t.Parallel()

	for _, suggested := range []string{
		"Skipped Line -0.5",
		"Arsenal -1.0 (Stats)",
		"0.0 (Level)",
		"N/A",
		"Bet: Arsenal",
	} {
		if got := SettleHandicap(suggested, "Arsenal", 1, 0); got != OutcomeNA {
			t.Fatalf("SettleHandicap(%q) = %q, want %q", suggested, got, OutcomeNA)
		}
	}
}
