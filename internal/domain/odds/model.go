package odds

// FairPriceReference is the even-money anchor used to pick a market line:
// among all offered lines the one whose quoted price sits closest to this
// value is the bookmaker's live line.
const FairPriceReference = 1.90

// WinnerValue is one price in the match-winner market.
type WinnerValue struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}

// OverUnder is the selected total-goals line with its over price.
type OverUnder struct {
	Line float64 `json:"line"`
	Over float64 `json:"over"`
}

// Handicap is the selected Asian-handicap line, home-team perspective.
type Handicap struct {
	Line float64 `json:"line"`
	Odd  float64 `json:"odd"`
}

// Quote carries a match's real-time bookmaker prices. Quotes are never
// cached; absent markets stay nil.
type Quote struct {
	Winner    []WinnerValue `json:"winner,omitempty"`
	OverUnder *OverUnder    `json:"over_under,omitempty"`
	Handicap  *Handicap     `json:"handicap,omitempty"`
}
