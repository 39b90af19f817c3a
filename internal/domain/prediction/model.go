package prediction

// Injury is one sidelined player, attributed to a side by team id.
type Injury struct {
	TeamID int64  `json:"team_id"`
	Player string `json:"player,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Lineup is one side's confirmed starting shape. The engine expects two
// entries, home first.
type Lineup struct {
	TeamID    int64  `json:"team_id"`
	TeamName  string `json:"team_name,omitempty"`
	Formation string `json:"formation"`
}

// Probabilities is the full-match outcome triple, in percentages rounded
// to one decimal. Sums to 100 within rounding.
type Probabilities struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// FirstHalf is the any-goal-by-halftime assessment. HasValue and the label
// use independent thresholds.
type FirstHalf struct {
	HasValue    bool    `json:"has_value"`
	Probability float64 `json:"probability"`
	Text        string  `json:"text"`
}

// GoalsMarket is the over/under assessment at the targeted line.
type GoalsMarket struct {
	Over25      float64 `json:"over_2_5"`
	RealLine    float64 `json:"real_line"`
	Probability float64 `json:"probability"`
	Analysis    string  `json:"analysis"`
}

// HandicapMarket is the Asian-handicap assessment.
type HandicapMarket struct {
	SuggestedLine    string  `json:"suggested_line"`
	ExpectedGoalDiff float64 `json:"expected_goal_diff"`
}

// Insight is the single actionable pick plus rationale lines.
type Insight struct {
	MainPick         string `json:"main_pick"`
	Confidence       string `json:"confidence"`
	MomentumAnalysis string `json:"momentum_analysis"`
	LineupAnalysis   string `json:"lineup_analysis"`
}

// FormAnalysis echoes both raw form strings for display.
type FormAnalysis struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Prediction is the engine's full output. Recomputed from scratch on every
// call, never stored.
type Prediction struct {
	Teams          string         `json:"teams"`
	Probabilities  Probabilities  `json:"probabilities"`
	FirstHalf      FirstHalf      `json:"first_half_analysis"`
	ExpectedScore  string         `json:"expected_score"`
	GoalsMarket    GoalsMarket    `json:"goals_market"`
	HandicapMarket HandicapMarket `json:"handicap_market"`
	Insight        Insight        `json:"ai_insight"`
	FormAnalysis   FormAnalysis   `json:"form_analysis"`
}

const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"

	OutcomeWin  = "Win"
	OutcomeLoss = "Loss"
	OutcomePush = "Push"
	OutcomeNA   = "N/A"
)
