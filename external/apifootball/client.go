package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/resilience"
	"github.com/goalsnapth/goalsnap.v1/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	authHeader     = "x-apisports-key"
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FixturesByDate fetches all fixtures for one calendar date, optionally
// limited to a league allowlist. The date is provider-local UTC.
func (c *Client) FixturesByDate(ctx context.Context, date string, leagueIDs []int64) ([]match.Match, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("%w: date must not be empty", usecase.ErrInvalidInput)
	}

	allowed := leagueSet(leagueIDs)
	var env envelope[fixtureItem]
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"date": date}, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures date=%s: %w", date, err)
	}

	out := make([]match.Match, 0, len(env.Response))
	for _, item := range env.Response {
		if item.Fixture.ID <= 0 {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[item.League.ID]; !ok {
				continue
			}
		}
		out = append(out, mapFixture(item))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Client) FixtureByID(ctx context.Context, fixtureID int64) (match.Match, error) {
	if fixtureID <= 0 {
		return match.Match{}, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env envelope[fixtureItem]
	query := map[string]string{"id": strconv.FormatInt(fixtureID, 10)}
	if err := c.doJSON(ctx, "/fixtures", query, &env); err != nil {
		return match.Match{}, fmt.Errorf("fetch fixture id=%d: %w", fixtureID, err)
	}
	if len(env.Response) == 0 {
		return match.Match{}, fmt.Errorf("%w: fixture %d", usecase.ErrNotFound, fixtureID)
	}
	return mapFixture(env.Response[0]), nil
}

// LiveFixtures returns the compact in-play feed for the given leagues, or
// every live fixture when no leagues are configured.
func (c *Client) LiveFixtures(ctx context.Context, leagueIDs []int64) ([]match.LiveScore, error) {
	live := "all"
	if len(leagueIDs) > 0 {
		parts := make([]string, 0, len(leagueIDs))
		for _, id := range leagueIDs {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		live = strings.Join(parts, "-")
	}

	var env envelope[fixtureItem]
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"live": live}, &env); err != nil {
		return nil, fmt.Errorf("fetch live fixtures: %w", err)
	}

	out := make([]match.LiveScore, 0, len(env.Response))
	for _, item := range env.Response {
		if item.Fixture.ID <= 0 {
			continue
		}
		out = append(out, match.LiveScore{
			FixtureID: item.Fixture.ID,
			Status:    match.NormalizeStatus(item.Fixture.Status.Short),
			Elapsed:   item.Fixture.Status.Elapsed,
			HomeScore: item.Goals.Home,
			AwayScore: item.Goals.Away,
		})
	}
	return out, nil
}

func (c *Client) Standings(ctx context.Context, leagueID int64, season int) ([]usecase.StandingRow, error) {
	if leagueID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)
	}

	var env envelope[standingsItem]
	query := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}
	if err := c.doJSON(ctx, "/standings", query, &env); err != nil {
		return nil, fmt.Errorf("fetch standings league=%d season=%d: %w", leagueID, season, err)
	}

	out := make([]usecase.StandingRow, 0, 24)
	for _, item := range env.Response {
		// Groups and conference splits arrive as separate inner tables;
		// the rating formula treats them as one pool.
		for _, table := range item.League.Standings {
			for _, row := range table {
				if row.Team.ID <= 0 {
					continue
				}
				out = append(out, usecase.StandingRow{
					TeamID:       row.Team.ID,
					TeamName:     strings.TrimSpace(row.Team.Name),
					Played:       row.All.Played,
					GoalsFor:     row.All.Goals.For,
					GoalsAgainst: row.All.Goals.Against,
					Form:         strings.TrimSpace(row.Form),
				})
			}
		}
	}
	return out, nil
}

// Odds pulls one bookmaker's live markets for a fixture. Missing markets
// come back nil rather than as an error; the engine degrades to its
// statistical fallbacks.
func (c *Client) Odds(ctx context.Context, fixtureID int64, bookmakerID string) (*odds.Quote, error) {
	if fixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env envelope[oddsItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}
	if strings.TrimSpace(bookmakerID) != "" {
		query["bookmaker"] = strings.TrimSpace(bookmakerID)
	}
	if err := c.doJSON(ctx, "/odds", query, &env); err != nil {
		return nil, fmt.Errorf("fetch odds fixture=%d: %w", fixtureID, err)
	}
	if len(env.Response) == 0 || len(env.Response[0].Bookmakers) == 0 {
		return nil, nil
	}
	return parseQuote(env.Response[0].Bookmakers[0]), nil
}

func (c *Client) Lineups(ctx context.Context, fixtureID int64) ([]prediction.Lineup, error) {
	if fixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env envelope[lineupItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}
	if err := c.doJSON(ctx, "/fixtures/lineups", query, &env); err != nil {
		return nil, fmt.Errorf("fetch lineups fixture=%d: %w", fixtureID, err)
	}

	out := make([]prediction.Lineup, 0, len(env.Response))
	for _, item := range env.Response {
		out = append(out, prediction.Lineup{
			TeamID:    item.Team.ID,
			TeamName:  strings.TrimSpace(item.Team.Name),
			Formation: strings.TrimSpace(item.Formation),
		})
	}
	return out, nil
}

func (c *Client) Injuries(ctx context.Context, fixtureID int64) ([]prediction.Injury, error) {
	if fixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env envelope[injuryItem]
	query := map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}
	if err := c.doJSON(ctx, "/injuries", query, &env); err != nil {
		return nil, fmt.Errorf("fetch injuries fixture=%d: %w", fixtureID, err)
	}

	out := make([]prediction.Injury, 0, len(env.Response))
	for _, item := range env.Response {
		if item.Team.ID <= 0 {
			continue
		}
		out = append(out, prediction.Injury{
			TeamID: item.Team.ID,
			Player: strings.TrimSpace(item.Player.Name),
			Reason: strings.TrimSpace(item.Player.Reason),
		})
	}
	return out, nil
}

func (c *Client) HeadToHead(ctx context.Context, homeID, awayID int64, last int) ([]match.Meeting, error) {
	if homeID <= 0 || awayID <= 0 {
		return nil, fmt.Errorf("%w: both team ids are required", usecase.ErrInvalidInput)
	}
	if last <= 0 {
		last = 5
	}

	var env envelope[fixtureItem]
	query := map[string]string{
		"h2h":  fmt.Sprintf("%d-%d", homeID, awayID),
		"last": strconv.Itoa(last),
	}
	if err := c.doJSON(ctx, "/fixtures/headtohead", query, &env); err != nil {
		return nil, fmt.Errorf("fetch head to head %d-%d: %w", homeID, awayID, err)
	}

	out := make([]match.Meeting, 0, len(env.Response))
	for _, item := range env.Response {
		meeting := match.Meeting{
			Date:      shortDate(item.Fixture.Date),
			HomeTeam:  strings.TrimSpace(item.Teams.Home.Name),
			AwayTeam:  strings.TrimSpace(item.Teams.Away.Name),
			HomeScore: item.Goals.Home,
			AwayScore: item.Goals.Away,
		}
		if meeting.HomeScore != nil && meeting.AwayScore != nil {
			meeting.Score = fmt.Sprintf("%d - %d", *meeting.HomeScore, *meeting.AwayScore)
		} else {
			meeting.Score = "? - ?"
		}
		out = append(out, meeting)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(authHeader, c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapFixture(item fixtureItem) match.Match {
	out := match.Match{
		ID:         item.Fixture.ID,
		HomeTeam:   strings.TrimSpace(item.Teams.Home.Name),
		AwayTeam:   strings.TrimSpace(item.Teams.Away.Name),
		HomeID:     item.Teams.Home.ID,
		AwayID:     item.Teams.Away.ID,
		HomeLogo:   item.Teams.Home.Logo,
		AwayLogo:   item.Teams.Away.Logo,
		League:     strings.TrimSpace(item.League.Name),
		LeagueID:   item.League.ID,
		Season:     item.League.Season,
		LeagueLogo: item.League.Logo,
		Status:     match.NormalizeStatus(item.Fixture.Status.Short),
		Elapsed:    item.Fixture.Status.Elapsed,
		HomeScore:  item.Goals.Home,
		AwayScore:  item.Goals.Away,
		HomeStats:  match.NeutralRating(),
		AwayStats:  match.NeutralRating(),
	}
	if parsed, err := time.Parse(time.RFC3339, item.Fixture.Date); err == nil {
		out.KickoffAt = parsed.UTC()
	}
	return out
}

// parseQuote selects one playable line per market. Among a market's lines
// the bookmaker's live one carries the price closest to even money, so
// pick by distance to odds.FairPriceReference.
func parseQuote(book bookmaker) *odds.Quote {
	quote := &odds.Quote{}

	for _, b := range book.Bets {
		switch b.ID {
		case betMatchWinner:
			for _, v := range b.Values {
				quote.Winner = append(quote.Winner, odds.WinnerValue{Value: v.Value, Odd: v.Odd})
			}
		case betGoalsOverUnder:
			quote.OverUnder = selectOverUnder(b.Values)
		case betAsianHandicap:
			quote.Handicap = selectHandicap(b.Values)
		}
	}

	if len(quote.Winner) == 0 && quote.OverUnder == nil && quote.Handicap == nil {
		return nil
	}
	return quote
}

func selectOverUnder(values []betValue) *odds.OverUnder {
	var best *odds.OverUnder
	bestDist := 0.0
	for _, v := range values {
		rest, ok := strings.CutPrefix(v.Value, "Over ")
		if !ok {
			continue
		}
		line, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(v.Odd), 64)
		if err != nil {
			continue
		}
		dist := absFloat(price - odds.FairPriceReference)
		if best == nil || dist < bestDist {
			best = &odds.OverUnder{Line: line, Over: price}
			bestDist = dist
		}
	}
	return best
}

func selectHandicap(values []betValue) *odds.Handicap {
	var best *odds.Handicap
	bestDist := 0.0
	for _, v := range values {
		rest, ok := strings.CutPrefix(v.Value, "Home ")
		if !ok {
			continue
		}
		line, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(v.Odd), 64)
		if err != nil {
			continue
		}
		dist := absFloat(price - odds.FairPriceReference)
		if best == nil || dist < bestDist {
			best = &odds.Handicap{Line: line, Odd: price}
			bestDist = dist
		}
	}
	return best
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func shortDate(value string) string {
	if len(value) >= 10 {
		return value[:10]
	}
	return value
}

func leagueSet(leagueIDs []int64) map[int64]struct{} {
	if len(leagueIDs) == 0 {
		return nil
	}
	out := make(map[int64]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		out[id] = struct{}{}
	}
	return out
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
