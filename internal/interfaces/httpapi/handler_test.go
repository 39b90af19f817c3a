package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
	"github.com/goalsnapth/goalsnap.v1/internal/usecase"
)

// stubProvider serves one rated fixture, enough to exercise every route.
type stubProvider struct{}

func (stubProvider) FixturesByDate(_ context.Context, date string, _ []int64) ([]match.Match, error) {
	if date != time.Now().UTC().Format("2006-01-02") {
		return nil, nil
	}
	return []match.Match{
		{
			ID: 2002, HomeTeam: "Arsenal", AwayTeam: "Fulham",
			HomeID: 42, AwayID: 36, LeagueID: 39, Season: 2026,
			KickoffAt: time.Now().UTC().Add(2 * time.Hour),
			Status:    match.StatusNotStarted,
		},
	}, nil
}

func (stubProvider) FixtureByID(_ context.Context, fixtureID int64) (match.Match, error) {
	return match.Match{}, usecase.ErrNotFound
}

func (stubProvider) LiveFixtures(context.Context, []int64) ([]match.LiveScore, error) {
	return nil, nil
}

func (stubProvider) Standings(context.Context, int64, int) ([]usecase.StandingRow, error) {
	return []usecase.StandingRow{
		{TeamID: 42, TeamName: "Arsenal", Played: 10, GoalsFor: 25, GoalsAgainst: 8},
		{TeamID: 36, TeamName: "Fulham", Played: 10, GoalsFor: 15, GoalsAgainst: 20},
	}, nil
}

func (stubProvider) Odds(context.Context, int64, string) (*odds.Quote, error) { return nil, nil }

func (stubProvider) Lineups(context.Context, int64) ([]prediction.Lineup, error) { return nil, nil }

func (stubProvider) Injuries(context.Context, int64) ([]prediction.Injury, error) { return nil, nil }

func (stubProvider) HeadToHead(context.Context, int64, int64, int) ([]match.Meeting, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	data := usecase.NewMatchDataService(stubProvider{}, nil, usecase.MatchDataConfig{TokenConfigured: true}, logging.NewNop())
	engine := prediction.NewEngine()
	analysis := usecase.NewAnalysisService(data, engine, logging.NewNop())
	history := usecase.NewHistoryService(data, engine, logging.NewNop())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(data, analysis, history, logger)
	return NewRouter(handler, logger, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Healthz(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]any)
	if !ok || data["status"] != "ok" {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestRoutes_ListMatches(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), "/v1/matches")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	matches, ok := env.Data.([]any)
	if !ok || len(matches) != 1 {
		t.Fatalf("data = %#v, want one match", env.Data)
	}
}

func TestRoutes_GetMatch(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, "/v1/matches/2002")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, "/v1/matches/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, "/v1/matches/999999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestRoutes_AnalyzeMatch(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), "/v1/matches/2002/analysis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	report, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v", env.Data)
	}
	if _, ok := report["ai_analysis"]; !ok {
		t.Fatalf("report missing analysis: %#v", report)
	}
	if locked, ok := report["is_locked"].(bool); !ok || locked {
		t.Fatalf("is_locked = %#v, want false", report["is_locked"])
	}
}

func TestRoutes_History(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, "/v1/history?date=2026-08-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	report, ok := env.Data.(map[string]any)
	if !ok || report["date"] != "2026-08-31" {
		t.Fatalf("data = %#v", env.Data)
	}

	rec = doRequest(t, router, "/v1/history")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date status = %d, want 400", rec.Code)
	}

	env = decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("error body = %+v", env.Error)
	}

	rec = doRequest(t, router, "/v1/history?date=31-08-2026")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed date status = %d, want 400", rec.Code)
	}
}

func TestParseMatchID(t *testing.T) {
	t.Parallel()

	if _, err := parseMatchID("2002"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	for _, raw := range []string{"", "abc", "0", "-5", "1.5"} {
		if _, err := parseMatchID(raw); err == nil {
			t.Fatalf("parseMatchID(%q) should fail", raw)
		}
	}
}
