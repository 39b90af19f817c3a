package match

import "testing"

func intPtr(v int) *int { return &v }

func TestOverlayLive_MergesByFixtureID(t *testing.T) {
	t.Parallel()

	base := []Match{
		{ID: 1, HomeTeam: "Arsenal", AwayTeam: "Fulham", Status: StatusNotStarted},
		{ID: 2, HomeTeam: "Tottenham", AwayTeam: "Everton", Status: StatusNotStarted},
	}
	live := []LiveScore{
		{FixtureID: 1, Status: StatusSecondHalf, Elapsed: intPtr(72), HomeScore: intPtr(2), AwayScore: intPtr(0)},
		{FixtureID: 99, Status: StatusFirstHalf},
	}

	out := OverlayLive(base, live)
	if len(out) != 2 {
		t.Fatalf("got %d matches, want 2", len(out))
	}

	first := out[0]
	if first.Status != StatusSecondHalf {
		t.Fatalf("status = %q", first.Status)
	}
	if first.Elapsed == nil || *first.Elapsed != 72 {
		t.Fatalf("elapsed = %v", first.Elapsed)
	}
	if first.HomeScore == nil || *first.HomeScore != 2 || first.AwayScore == nil || *first.AwayScore != 0 {
		t.Fatalf("score = %v-%v", first.HomeScore, first.AwayScore)
	}

	if out[1].Status != StatusNotStarted || out[1].HomeScore != nil {
		t.Fatalf("untouched fixture changed: %+v", out[1])
	}
}

func TestOverlayLive_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := []Match{{ID: 1, Status: StatusNotStarted}}
	live := []LiveScore{{FixtureID: 1, Status: StatusFirstHalf, HomeScore: intPtr(1)}}

	_ = OverlayLive(base, live)

	if base[0].Status != StatusNotStarted || base[0].HomeScore != nil {
		t.Fatalf("base mutated: %+v", base[0])
	}
}

func TestOverlayLive_EmptyOverlay(t *testing.T) {
	t.Parallel()

	base := []Match{{ID: 1, Status: StatusHalfTime}}
	out := OverlayLive(base, nil)

	if len(out) != 1 || out[0].Status != StatusHalfTime {
		t.Fatalf("out = %+v", out)
	}
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":       StatusNotStarted,
		"  ":     StatusNotStarted,
		"ft":     StatusFullTime,
		" 1h ":   StatusFirstHalf,
		"CUSTOM": "CUSTOM",
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusClassification(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime, "P", "LIVE"} {
		if !IsLiveStatus(status) {
			t.Fatalf("%q should be live", status)
		}
	}
	for _, status := range []string{StatusFullTime, "AET", "PEN"} {
		if !IsFinishedStatus(status) {
			t.Fatalf("%q should be finished", status)
		}
		if IsLiveStatus(status) {
			t.Fatalf("%q should not be live", status)
		}
	}
	for _, status := range []string{StatusNotStarted, StatusPostponed, StatusCancelled} {
		if IsLiveStatus(status) || IsFinishedStatus(status) {
			t.Fatalf("%q should be neither live nor finished", status)
		}
	}
}

func TestNeutralRating(t *testing.T) {
	t.Parallel()

	r := NeutralRating()
	if r.Attack != 1.0 || r.Defense != 1.0 || r.Form != NeutralForm {
		t.Fatalf("neutral rating = %+v", r)
	}
}
