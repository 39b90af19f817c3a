package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goalsnapth/goalsnap.v1/internal/domain/match"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
)

// HistorySummary counts graded picks for one day. Pushes land in Draw.
// Total counts every graded pick; "N/A" entries stay out of all buckets.
type HistorySummary struct {
	Win   int `json:"win"`
	Loss  int `json:"loss"`
	Draw  int `json:"draw"`
	Total int `json:"total"`
}

type HistoryEntry struct {
	Match      match.Match `json:"match"`
	Prediction string      `json:"prediction"`
	Outcome    string      `json:"outcome"`
}

type HistoryReport struct {
	Date    string         `json:"date"`
	Summary HistorySummary `json:"summary"`
	Matches []HistoryEntry `json:"matches"`
}

// HistoryService replays the engine over finished fixtures and grades each
// main pick against the final score. Predictions are regenerated from the
// current ratings, without odds, so the grading reflects the statistical
// pick the engine would have made.
type HistoryService struct {
	data   *MatchDataService
	engine *prediction.Engine
	logger *logging.Logger
}

func NewHistoryService(data *MatchDataService, engine *prediction.Engine, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	if engine == nil {
		engine = prediction.NewEngine()
	}
	return &HistoryService{
		data:   data,
		engine: engine,
		logger: logger,
	}
}

func (s *HistoryService) DailyHistory(ctx context.Context, date string) (HistoryReport, error) {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.DailyHistory")
	defer span.End()

	date = strings.TrimSpace(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return HistoryReport{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	matches, err := s.data.FinishedMatches(ctx, date)
	if err != nil {
		return HistoryReport{}, err
	}

	report := HistoryReport{
		Date:    date,
		Matches: make([]HistoryEntry, 0, len(matches)),
	}

	for _, m := range matches {
		pred := s.engine.Predict(m, nil, nil, nil)
		pick := pred.Insight.MainPick
		outcome := s.grade(pick, pred.HandicapMarket.SuggestedLine, m)

		switch outcome {
		case prediction.OutcomeWin:
			report.Summary.Win++
		case prediction.OutcomeLoss:
			report.Summary.Loss++
		case prediction.OutcomePush:
			report.Summary.Draw++
		}
		if outcome != prediction.OutcomeNA {
			report.Summary.Total++
		}

		report.Matches = append(report.Matches, HistoryEntry{
			Match:      m,
			Prediction: pick,
			Outcome:    outcome,
		})
	}

	s.logger.InfoContext(ctx, "graded daily history",
		"date", date,
		"matches", len(report.Matches),
		"graded", report.Summary.Total,
	)
	return report, nil
}

func (s *HistoryService) grade(pick, suggestedLine string, m match.Match) string {
	if m.HomeScore == nil || m.AwayScore == nil {
		return prediction.OutcomeNA
	}

	switch {
	case strings.Contains(pick, "GOAL"):
		return prediction.CheckOutcome(pick, *m.HomeScore, *m.AwayScore)
	case strings.Contains(pick, "HANDICAP"):
		return prediction.SettleHandicap(suggestedLine, m.HomeTeam, *m.HomeScore, *m.AwayScore)
	}
	return prediction.OutcomeNA
}
