package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	ants "github.com/panjf2000/ants/v2"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/cache"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
)

const (
	ratingsSnapshotPrefix   = "stats_league_"
	upcomingSnapshotName    = "matches_upcoming.json"
	upcomingMatchesCacheKey = "matches_upcoming"
	liveScoresCacheKey      = "live_scores"

	defaultHeadToHeadLimit = 5
)

type MatchDataConfig struct {
	TokenConfigured bool
	BookmakerID     string
	LeagueIDs       []int64
	RatingsTTL      time.Duration
	MatchesTTL      time.Duration
	LiveTTL         time.Duration
	RefreshWorkers  int
}

// MatchDataService is the single gateway between the HTTP surface and the
// upstream provider. It layers three independent caches over the provider:
// team ratings (slow moving, snapshotted to disk per league), the upcoming
// match list (snapshotted whole), and the live score overlay (memory only,
// seconds of lifetime). Reads merge the live overlay on the fly so the
// cached base list itself is never rewritten by score updates.
type MatchDataService struct {
	provider        FootballDataProvider
	logger          *logging.Logger
	snapshots       *cache.SnapshotStore
	matchesCache    *cache.Store
	liveCache       *cache.Store
	tokenConfigured bool
	bookmakerID     string
	leagueIDs       []int64
	ratingsTTL      time.Duration
	refreshWorkers  int

	ratingsMu      sync.RWMutex
	teamRatings    map[string]match.Rating
	leagueLoadedAt map[int64]time.Time
}

func NewMatchDataService(provider FootballDataProvider, snapshots *cache.SnapshotStore, cfg MatchDataConfig, logger *logging.Logger) *MatchDataService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RatingsTTL <= 0 {
		cfg.RatingsTTL = 24 * time.Hour
	}
	if cfg.MatchesTTL <= 0 {
		cfg.MatchesTTL = 30 * time.Minute
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = 15 * time.Second
	}
	if cfg.RefreshWorkers <= 0 {
		cfg.RefreshWorkers = 4
	}
	if strings.TrimSpace(cfg.BookmakerID) == "" {
		cfg.BookmakerID = "1"
	}

	s := &MatchDataService{
		provider:        provider,
		logger:          logger,
		snapshots:       snapshots,
		matchesCache:    cache.NewStore(cfg.MatchesTTL),
		liveCache:       cache.NewStore(cfg.LiveTTL),
		tokenConfigured: cfg.TokenConfigured,
		bookmakerID:     strings.TrimSpace(cfg.BookmakerID),
		leagueIDs:       cfg.LeagueIDs,
		ratingsTTL:      cfg.RatingsTTL,
		refreshWorkers:  cfg.RefreshWorkers,
		teamRatings:     make(map[string]match.Rating, 256),
		leagueLoadedAt:  make(map[int64]time.Time, 16),
	}
	s.warmRatingsFromDisk()
	return s
}

// warmRatingsFromDisk merges every fresh per-league ratings snapshot into
// memory so a restart does not cost a round of standings calls.
func (s *MatchDataService) warmRatingsFromDisk() {
	if s.snapshots == nil {
		return
	}
	for _, name := range s.snapshots.Names() {
		if !strings.HasPrefix(name, ratingsSnapshotPrefix) {
			continue
		}
		table := make(map[string]match.Rating)
		if !s.snapshots.Load(name, s.ratingsTTL, &table) {
			continue
		}
		s.ratingsMu.Lock()
		for team, rating := range table {
			s.teamRatings[team] = rating
		}
		s.ratingsMu.Unlock()
	}
	s.ratingsMu.RLock()
	count := len(s.teamRatings)
	s.ratingsMu.RUnlock()
	if count > 0 {
		s.logger.Info("warmed team ratings from disk", "teams", count)
	}
}

// Season resolves the football season a calendar moment belongs to.
// European seasons roll over in July.
func Season(now time.Time) int {
	if int(now.Month()) >= 7 {
		return now.Year()
	}
	return now.Year() - 1
}

// RefreshLeagueRatings rebuilds the ratings tables for the given leagues,
// fanning the standings calls out over a bounded worker pool. Leagues whose
// snapshot is still fresh are served from disk without an upstream call.
func (s *MatchDataService) RefreshLeagueRatings(ctx context.Context, leagueIDs []int64, season int) error {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.RefreshLeagueRatings")
	defer span.End()

	if len(leagueIDs) == 0 {
		leagueIDs = s.leagueIDs
	}
	if len(leagueIDs) == 0 {
		return fmt.Errorf("%w: no leagues to refresh", ErrInvalidInput)
	}
	if season <= 0 {
		season = Season(time.Now().UTC())
	}

	pool, err := ants.NewPool(s.refreshWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, leagueID := range leagueIDs {
		leagueID := leagueID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			s.ensureLeagueRatings(ctx, leagueID, season)
		}); err != nil {
			workers.Done()
			s.logger.WarnContext(ctx, "submit ratings refresh failed", "league_id", leagueID, "error", err)
		}
	}
	workers.Wait()
	return nil
}

// ensureLeagueRatings makes the league's ratings present and fresh in
// memory: memory hit first, then the disk snapshot, then the provider.
// Provider failures keep whatever table is already loaded.
func (s *MatchDataService) ensureLeagueRatings(ctx context.Context, leagueID int64, season int) {
	if leagueID <= 0 {
		return
	}

	s.ratingsMu.RLock()
	loadedAt, loaded := s.leagueLoadedAt[leagueID]
	s.ratingsMu.RUnlock()
	if loaded && time.Since(loadedAt) < s.ratingsTTL {
		return
	}

	name := ratingsSnapshotName(leagueID)
	if s.snapshots != nil {
		table := make(map[string]match.Rating)
		if s.snapshots.Load(name, s.ratingsTTL, &table) && len(table) > 0 {
			s.mergeRatings(leagueID, table)
			return
		}
	}

	if !s.tokenConfigured {
		return
	}

	rows, err := s.provider.Standings(ctx, leagueID, season)
	if err != nil {
		s.logger.WarnContext(ctx, "standings fetch failed, keeping stale ratings", "league_id", leagueID, "error", err)
		return
	}

	table := RatingsFromStandings(rows)
	if len(table) == 0 {
		return
	}
	if s.snapshots != nil {
		s.snapshots.Save(name, table)
	}
	s.mergeRatings(leagueID, table)
	s.logger.InfoContext(ctx, "refreshed league ratings", "league_id", leagueID, "season", season, "teams", len(table))
}

func (s *MatchDataService) mergeRatings(leagueID int64, table map[string]match.Rating) {
	s.ratingsMu.Lock()
	for team, rating := range table {
		s.teamRatings[team] = rating
	}
	s.leagueLoadedAt[leagueID] = time.Now()
	s.ratingsMu.Unlock()
}

// RatingsFromStandings derives attack and defense multipliers from one
// league table. Both axes are normalized against the league's own average
// goals per match, so 1.0 always means league average regardless of how
// high or low scoring the league is. Teams that have not played yet are
// left out rather than rated.
func RatingsFromStandings(rows []StandingRow) map[string]match.Rating {
	totalGoals := 0
	totalMatches := 0
	for _, row := range rows {
		totalGoals += row.GoalsFor
		totalMatches += row.Played
	}
	if totalMatches == 0 {
		return nil
	}
	avgGoals := float64(totalGoals) / float64(totalMatches)
	if avgGoals <= 0 {
		return nil
	}

	out := make(map[string]match.Rating, len(rows))
	for _, row := range rows {
		if row.Played == 0 || row.TeamName == "" {
			continue
		}
		form := row.Form
		if form == "" {
			form = match.NeutralForm
		}
		out[row.TeamName] = match.Rating{
			Attack:  round2(float64(row.GoalsFor) / float64(row.Played) / avgGoals),
			Defense: round2(float64(row.GoalsAgainst) / float64(row.Played) / avgGoals),
			Form:    form,
		}
	}
	return out
}

func (s *MatchDataService) lookupRating(team string) (match.Rating, bool) {
	s.ratingsMu.RLock()
	rating, ok := s.teamRatings[team]
	s.ratingsMu.RUnlock()
	if !ok {
		return match.NeutralRating(), false
	}
	return rating, true
}

// UpcomingMatches returns today's and tomorrow's rated fixtures with the
// live overlay applied. The base list is cached for the matches TTL in
// memory and snapshotted to disk; fixtures whose teams have no ratings
// (cup ties, friendlies) are dropped.
func (s *MatchDataService) UpcomingMatches(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.UpcomingMatches")
	defer span.End()

	value, err := s.matchesCache.GetOrLoad(ctx, upcomingMatchesCacheKey, func(ctx context.Context) (any, error) {
		return s.loadUpcomingMatches(ctx)
	})
	if err != nil {
		return nil, err
	}

	base, ok := value.([]match.Match)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload type %T", value)
	}
	return match.OverlayLive(base, s.liveScores(ctx)), nil
}

func (s *MatchDataService) loadUpcomingMatches(ctx context.Context) ([]match.Match, error) {
	if s.snapshots != nil {
		var snap []match.Match
		if s.snapshots.Load(upcomingSnapshotName, 30*time.Minute, &snap) && len(snap) > 0 {
			return snap, nil
		}
	}
	if !s.tokenConfigured {
		s.logger.WarnContext(ctx, "provider token not configured, serving empty match list")
		return []match.Match{}, nil
	}

	now := time.Now().UTC()
	season := Season(now)
	dates := []string{
		now.Format("2006-01-02"),
		now.AddDate(0, 0, 1).Format("2006-01-02"),
	}

	fixtures := make([]match.Match, 0, 128)
	for _, date := range dates {
		rows, err := s.provider.FixturesByDate(ctx, date, s.leagueIDs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WarnContext(ctx, "fixtures fetch failed, continuing with other dates", "date", date, "error", err)
			continue
		}
		fixtures = append(fixtures, rows...)
	}

	s.refreshRatingsForFixtures(ctx, fixtures, season)

	out := make([]match.Match, 0, len(fixtures))
	for _, m := range fixtures {
		homeRating, homeOK := s.lookupRating(m.HomeTeam)
		awayRating, awayOK := s.lookupRating(m.AwayTeam)
		if !homeOK || !awayOK {
			continue
		}
		m.HomeStats = homeRating
		m.AwayStats = awayRating
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})

	if s.snapshots != nil {
		s.snapshots.Save(upcomingSnapshotName, out)
	}
	s.logger.InfoContext(ctx, "loaded upcoming matches", "total", len(out))
	return out, nil
}

// refreshRatingsForFixtures makes sure every league appearing in the
// fixture list has a ratings table, fetching the missing ones in parallel.
func (s *MatchDataService) refreshRatingsForFixtures(ctx context.Context, fixtures []match.Match, fallbackSeason int) {
	type leagueSeason struct {
		leagueID int64
		season   int
	}
	seen := make(map[int64]leagueSeason, 16)
	for _, m := range fixtures {
		if m.LeagueID <= 0 {
			continue
		}
		season := m.Season
		if season <= 0 {
			season = fallbackSeason
		}
		if _, ok := seen[m.LeagueID]; !ok {
			seen[m.LeagueID] = leagueSeason{leagueID: m.LeagueID, season: season}
		}
	}
	if len(seen) == 0 {
		return
	}

	pool, err := ants.NewPool(s.refreshWorkers)
	if err != nil {
		for _, ls := range seen {
			s.ensureLeagueRatings(ctx, ls.leagueID, ls.season)
		}
		return
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, ls := range seen {
		ls := ls
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			s.ensureLeagueRatings(ctx, ls.leagueID, ls.season)
		}); err != nil {
			workers.Done()
			s.ensureLeagueRatings(ctx, ls.leagueID, ls.season)
		}
	}
	workers.Wait()
}

// liveScores returns the in-play overlay rows, no more than one provider
// call per TTL window. Overlay failures degrade to the cached base data
// instead of failing the read.
func (s *MatchDataService) liveScores(ctx context.Context) []match.LiveScore {
	if !s.tokenConfigured {
		return nil
	}

	value, err := s.liveCache.GetOrLoad(ctx, liveScoresCacheKey, func(ctx context.Context) (any, error) {
		rows, err := s.provider.LiveFixtures(ctx, s.leagueIDs)
		if err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "live scores unavailable, serving base data", "error", err)
		return nil
	}

	rows, ok := value.([]match.LiveScore)
	if !ok {
		return nil
	}
	return rows
}

// MatchByID serves a single fixture, preferring the cached upcoming list
// and falling back to a direct fetch for fixtures outside the two-day
// window. The direct path rates the teams from the fixture's own league.
func (s *MatchDataService) MatchByID(ctx context.Context, matchID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.MatchByID")
	defer span.End()

	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	upcoming, err := s.UpcomingMatches(ctx)
	if err == nil {
		for _, m := range upcoming {
			if m.ID == matchID {
				return m, nil
			}
		}
	}

	if !s.tokenConfigured {
		return match.Match{}, fmt.Errorf("%w: match %d", ErrNotFound, matchID)
	}

	m, err := s.provider.FixtureByID(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	season := m.Season
	if season <= 0 {
		season = Season(time.Now().UTC())
	}
	s.ensureLeagueRatings(ctx, m.LeagueID, season)

	m.HomeStats, _ = s.lookupRating(m.HomeTeam)
	m.AwayStats, _ = s.lookupRating(m.AwayTeam)

	overlaid := match.OverlayLive([]match.Match{m}, s.liveScores(ctx))
	return overlaid[0], nil
}

// FinishedMatches returns the rated full-time fixtures of one date for
// settlement. Not cached: history reads are rare and always dated.
func (s *MatchDataService) FinishedMatches(ctx context.Context, date string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.FinishedMatches")
	defer span.End()

	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if !s.tokenConfigured {
		return []match.Match{}, nil
	}

	rows, err := s.provider.FixturesByDate(ctx, date, s.leagueIDs)
	if err != nil {
		return nil, err
	}

	season := Season(time.Now().UTC())
	finished := make([]match.Match, 0, len(rows))
	for _, m := range rows {
		if match.IsFinishedStatus(m.Status) {
			finished = append(finished, m)
		}
	}

	s.refreshRatingsForFixtures(ctx, finished, season)

	out := make([]match.Match, 0, len(finished))
	for _, m := range finished {
		homeRating, homeOK := s.lookupRating(m.HomeTeam)
		awayRating, awayOK := s.lookupRating(m.AwayTeam)
		if !homeOK || !awayOK {
			continue
		}
		m.HomeStats = homeRating
		m.AwayStats = awayRating
		out = append(out, m)
	}
	return out, nil
}

// Odds fetches the configured bookmaker's quote. Always live, never
// cached; a missing market or fixture comes back nil.
func (s *MatchDataService) Odds(ctx context.Context, matchID int64) (*odds.Quote, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.Odds")
	defer span.End()

	if !s.tokenConfigured {
		return nil, nil
	}
	return s.provider.Odds(ctx, matchID, s.bookmakerID)
}

func (s *MatchDataService) Lineups(ctx context.Context, matchID int64) ([]prediction.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.Lineups")
	defer span.End()

	if !s.tokenConfigured {
		return nil, nil
	}
	return s.provider.Lineups(ctx, matchID)
}

func (s *MatchDataService) Injuries(ctx context.Context, matchID int64) ([]prediction.Injury, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.Injuries")
	defer span.End()

	if !s.tokenConfigured {
		return nil, nil
	}
	return s.provider.Injuries(ctx, matchID)
}

func (s *MatchDataService) HeadToHead(ctx context.Context, homeID, awayID int64) ([]match.Meeting, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchDataService.HeadToHead")
	defer span.End()

	if !s.tokenConfigured {
		return nil, nil
	}
	return s.provider.HeadToHead(ctx, homeID, awayID, defaultHeadToHeadLimit)
}

func ratingsSnapshotName(leagueID int64) string {
	return fmt.Sprintf("%s%d.json", ratingsSnapshotPrefix, leagueID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
