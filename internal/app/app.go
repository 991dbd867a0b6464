package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/fplstats/fdr-engine/external/fplapi"
	"github.com/fplstats/fdr-engine/external/webhook"
	"github.com/fplstats/fdr-engine/internal/config"
	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/fixture"
	"github.com/fplstats/fdr-engine/internal/domain/player"
	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
	cacherepo "github.com/fplstats/fdr-engine/internal/infrastructure/repository/cache"
	"github.com/fplstats/fdr-engine/internal/infrastructure/repository/memory"
	"github.com/fplstats/fdr-engine/internal/infrastructure/repository/postgres"
	"github.com/fplstats/fdr-engine/internal/interfaces/httpapi"
	basecache "github.com/fplstats/fdr-engine/internal/platform/cache"
	"github.com/fplstats/fdr-engine/internal/platform/logging"
	"github.com/fplstats/fdr-engine/internal/platform/resilience"
	"github.com/fplstats/fdr-engine/internal/usecase"
)

type repositories struct {
	teams    team.Repository
	players  player.Repository
	fixtures fixture.Repository
	stats    playerstat.Repository
	weights  weights.Repository
	fdr      fdr.Repository
}

// NewHTTPServer wires repositories, external clients, and services into a
// ready-to-run HTTP server. The returned cleanup closes the DB handle and
// is a no-op in memory mode.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ucLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(ucLogger)

	repos, cleanup, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, store)
		repos.weights = cacherepo.NewWeightsRepository(repos.weights, store)
		repos.fdr = cacherepo.NewFdrRepository(repos.fdr, store)
	}

	fplClient := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL:    cfg.FplBaseURL,
		Timeout:    cfg.FplTimeout,
		MaxRetries: cfg.FplMaxRetries,
		Logger:     ucLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FplCircuitEnabled,
			FailureThreshold: cfg.FplCircuitFailureCount,
			OpenTimeout:      cfg.FplCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FplCircuitHalfOpenMax,
		},
	})

	var notifier usecase.RatingRefreshNotifier
	if cfg.WebhookEnabled {
		notifier = webhook.NewNotifier(webhook.NotifierConfig{
			TargetURL: cfg.WebhookTargetURL,
			Token:     cfg.WebhookToken,
			Timeout:   cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled: cfg.WebhookCircuitEnabled,
			},
		}, logger)
	}

	teamSvc := usecase.NewTeamService(repos.teams)
	fdrSvc := usecase.NewFdrService(
		usecase.FdrConfig{
			Season:          cfg.Season,
			FreshnessWindow: cfg.FreshnessWindow,
			RecorderWorkers: cfg.RecorderWorkers,
		},
		repos.teams, repos.fixtures, repos.stats, repos.weights, repos.fdr,
		notifier, ucLogger,
	)
	statSyncSvc := usecase.NewStatSyncService(
		usecase.StatSyncConfig{
			BatchSize:          cfg.SyncBatchSize,
			BatchDelayPerItem:  cfg.SyncBatchDelayPerItem,
			RecentGameweekSpan: cfg.SyncRecentGameweekSpan,
		},
		fplClient,
		repos.teams, repos.players, repos.fixtures, repos.stats,
		ucLogger,
	)

	handler := httpapi.NewHandler(teamSvc, fdrSvc, statSyncSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config) (repositories, func() error, error) {
	noop := func() error { return nil }

	if cfg.StorageBackend == config.StorageBackendMemory {
		return repositories{
			teams:    memory.NewTeamRepository(memory.SeedTeams()),
			players:  memory.NewPlayerRepository(nil),
			fixtures: memory.NewFixtureRepository(nil),
			stats:    memory.NewPlayerStatRepository(),
			weights:  memory.NewWeightsRepository(),
			fdr:      memory.NewFdrRepository(),
		}, noop, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	return repositories{
		teams:    postgres.NewTeamRepository(db),
		players:  postgres.NewPlayerRepository(db),
		fixtures: postgres.NewFixtureRepository(db),
		stats:    postgres.NewPlayerStatRepository(db),
		weights:  postgres.NewWeightsRepository(db),
		fdr:      postgres.NewFdrRepository(db),
	}, db.Close, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
