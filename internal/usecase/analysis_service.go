package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/odds"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
)

// AnalysisReport is the full per-match advisory payload.
type AnalysisReport struct {
	MatchInfo match.Match           `json:"match_info"`
	IsLocked  bool                  `json:"is_locked"`
	Analysis  prediction.Prediction `json:"ai_analysis"`
	History   []match.Meeting       `json:"history"`
	Injuries  []prediction.Injury   `json:"injuries"`
	Lineups   []prediction.Lineup   `json:"lineups"`
	Odds      *odds.Quote           `json:"real_odds,omitempty"`
}

// AnalysisService assembles the advisory view of one fixture. The match
// itself is required; odds, injuries, lineups and head-to-head are
// best-effort context fetched in parallel, each degrading to empty when
// the provider cannot serve it.
type AnalysisService struct {
	data   *MatchDataService
	engine *prediction.Engine
	logger *logging.Logger
}

func NewAnalysisService(data *MatchDataService, engine *prediction.Engine, logger *logging.Logger) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	if engine == nil {
		engine = prediction.NewEngine()
	}
	return &AnalysisService{
		data:   data,
		engine: engine,
		logger: logger,
	}
}

func (s *AnalysisService) AnalyzeMatch(ctx context.Context, matchID int64) (AnalysisReport, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.AnalyzeMatch")
	defer span.End()

	if matchID <= 0 {
		return AnalysisReport{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	m, err := s.data.MatchByID(ctx, matchID)
	if err != nil {
		return AnalysisReport{}, err
	}

	var (
		quote    *odds.Quote
		injuries []prediction.Injury
		lineups  []prediction.Lineup
		meetings []match.Meeting
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		value, err := s.data.Odds(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "odds unavailable, engine falls back to stats", "match_id", matchID, "error", err)
			return
		}
		quote = value
	})
	wg.Go(func() {
		value, err := s.data.Injuries(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "injuries unavailable", "match_id", matchID, "error", err)
			return
		}
		injuries = value
	})
	wg.Go(func() {
		value, err := s.data.Lineups(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "lineups unavailable", "match_id", matchID, "error", err)
			return
		}
		lineups = value
	})
	wg.Go(func() {
		if m.HomeID <= 0 || m.AwayID <= 0 {
			return
		}
		value, err := s.data.HeadToHead(ctx, m.HomeID, m.AwayID)
		if err != nil {
			s.logger.WarnContext(ctx, "head to head unavailable", "match_id", matchID, "error", err)
			return
		}
		meetings = value
	})
	wg.Wait()

	return AnalysisReport{
		MatchInfo: m,
		IsLocked:  false,
		Analysis:  s.engine.Predict(m, quote, injuries, lineups),
		History:   meetings,
		Injuries:  injuries,
		Lineups:   lineups,
		Odds:      quote,
	}, nil
}
