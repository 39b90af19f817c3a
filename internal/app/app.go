package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goalsnapth/goalsnap.v1/external/apifootball"
	"github.com/goalsnapth/goalsnap.v1/internal/config"
	"github.com/goalsnapth/goalsnap.v1/internal/domain/prediction"
	"github.com/goalsnapth/goalsnap.v1/internal/interfaces/httpapi"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/cache"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
	"github.com/goalsnapth/goalsnap.v1/internal/platform/resilience"
	"github.com/goalsnapth/goalsnap.v1/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	platformLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(platformLogger)

	snapshots, err := cache.NewSnapshotStore(cfg.CacheDir, platformLogger)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}

	provider := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:    cfg.APIFootballBaseURL,
		Token:      cfg.APIFootballToken,
		Timeout:    cfg.APIFootballTimeout,
		MaxRetries: cfg.APIFootballMaxRetries,
		Logger:     platformLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
	})

	matchData := usecase.NewMatchDataService(provider, snapshots, usecase.MatchDataConfig{
		TokenConfigured: cfg.APIFootballToken != "",
		BookmakerID:     cfg.BookmakerID,
		LeagueIDs:       cfg.LeagueIDs,
		RatingsTTL:      cfg.RatingsCacheTTL,
		MatchesTTL:      cfg.MatchesCacheTTL,
		LiveTTL:         cfg.LiveCacheTTL,
		RefreshWorkers:  cfg.RatingsRefreshWorkers,
	}, platformLogger)

	engine := prediction.NewEngine()
	analysis := usecase.NewAnalysisService(matchData, engine, platformLogger)
	history := usecase.NewHistoryService(matchData, engine, platformLogger)

	handler := httpapi.NewHandler(matchData, analysis, history, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
