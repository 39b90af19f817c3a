package apifootball

// API-Football v3 wire shapes, limited to the fields the service consumes.
// Every endpoint shares the same outer envelope; only the response element
// type changes.

type envelope[T any] struct {
	Get        string         `json:"get"`
	Parameters map[string]any `json:"parameters"`
	Errors     any            `json:"errors"`
	Results    int            `json:"results"`
	Response   []T            `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Logo   string `json:"logo"`
		Season int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home teamRef `json:"home"`
		Away teamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type standingsItem struct {
	League struct {
		ID        int64            `json:"id"`
		Name      string           `json:"name"`
		Season    int              `json:"season"`
		Standings [][]standingsRow `json:"standings"`
	} `json:"league"`
}

type standingsRow struct {
	Rank int     `json:"rank"`
	Team teamRef `json:"team"`
	Form string  `json:"form"`
	All  struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

type oddsItem struct {
	Bookmakers []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bets []bet  `json:"bets"`
}

type bet struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Values []betValue `json:"values"`
}

type betValue struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}

// Market ids inside a bookmaker's bet list.
const (
	betMatchWinner    = 1
	betAsianHandicap  = 4
	betGoalsOverUnder = 5
)

type lineupItem struct {
	Team      teamRef `json:"team"`
	Formation string  `json:"formation"`
}

type injuryItem struct {
	Player struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"player"`
	Team teamRef `json:"team"`
}
