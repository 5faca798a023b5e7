package container

import (
	"context"
	"fmt"

	"github.com/jshah-ind/travelbot/internal/domain/repository"
	"github.com/jshah-ind/travelbot/internal/infrastructure/config"
	"github.com/jshah-ind/travelbot/internal/infrastructure/persistence"
	"github.com/jshah-ind/travelbot/internal/infrastructure/router"
	"github.com/jshah-ind/travelbot/internal/interface/llm"
	repo "github.com/jshah-ind/travelbot/internal/interface/repository"
	"github.com/jshah-ind/travelbot/internal/usecase"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/facebookgo/clock"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container holds the wired query resolution pipeline
type Container struct {
	Directory    *usecase.AirlineDirectory
	Airports     *usecase.AirportCatalog
	Orchestrator *usecase.ExtractionOrchestrator
	Store        *usecase.ConversationContextStore
	Resolver     *usecase.QueryResolver
	Learner      *usecase.InventoryLearner
	Attempts     repository.AttemptRepository

	logger  logger.Logger
	closers []func(context.Context) error
}

// New connects the configured backends and builds every component.
// Backends without configuration fall back to in-memory storage.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*Container, error) {
	c := &Container{logger: log}
	clk := clock.New()
	loc := cfg.Location()

	var gormDB *gorm.DB
	if cfg.PostgresURI != "" {
		log.Info("Connecting to PostgreSQL")
		db, err := persistence.NewPostgresDB(cfg.PostgresURI, &repo.Airlines{}, &repo.AirlineAliases{}, &repo.ConversationContexts{})
		if err != nil {
			return nil, err
		}
		gormDB = db
		c.closers = append(c.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	var redisClient redis.UniversalClient
	if cfg.ContextBackend == "redis" {
		log.Info("Connecting to Redis")
		client, err := persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		redisClient = client
		c.closers = append(c.closers, func(context.Context) error { return client.Close() })
	}

	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.Attempts = repo.NewMongoAttemptRepository(persistence.GetDatabase(client, cfg.MongoDB))
		c.closers = append(c.closers, client.Disconnect)
	}

	// Airline directory
	var airlineRepository repository.AirlineRepository
	if gormDB != nil {
		airlineRepository = repo.NewGormAirlineRepository(gormDB)
	} else {
		airlineRepository = repo.NewMemoryAirlineRepository()
	}
	c.Directory = usecase.NewAirlineDirectory(airlineRepository, log,
		usecase.WithMatchThreshold(cfg.AirlineMatchThreshold),
		usecase.WithDirectoryClock(clk),
		usecase.WithDirectoryMetrics(m),
	)
	if err := c.Directory.Seed(ctx, usecase.DefaultAirlineCatalog()); err != nil {
		c.Close(ctx)
		return nil, err
	}

	// Airports
	c.Airports = usecase.NewAirportCatalog()
	if gormDB != nil {
		n, err := c.Airports.Load(ctx, repo.NewGormAirportRepository(gormDB))
		if err != nil {
			log.Warn("Airport reference table unavailable, using builtin airports", "error", err)
		} else {
			log.Info("Loaded airports", "count", n)
		}
	}

	// Extraction chain
	strategies := router.NewStrategyRouter(log)
	keyword := usecase.NewKeywordExtractor(c.Airports, clk, loc, log)
	strategies.Register(keyword.WithDirectory(c.Directory))
	strategies.Register(keyword)

	modelOpts := []usecase.ModelOption{
		usecase.WithModelTimeout(cfg.ModelTimeout),
		usecase.WithAirlineDirectory(c.Directory, c.Directory),
		usecase.WithAirportCatalog(c.Airports),
		usecase.WithModelClock(clk, loc),
	}
	if cfg.OpenAIAPIKey != "" {
		completer, err := llm.NewOpenAICompleter(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		strategies.Register(usecase.NewModelExtractor(usecase.StrategyOpenAI, completer, log, modelOpts...))
	}
	if cfg.GeminiAPIKey != "" {
		completer, err := llm.NewGeminiCompleter(ctx, llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		strategies.Register(usecase.NewModelExtractor(usecase.StrategyGemini, completer, log, modelOpts...))
	}

	chain, err := strategies.Chain(cfg.ExtractionChain)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	orchestratorOpts := []usecase.OrchestratorOption{
		usecase.WithOrchestratorMetrics(m),
		usecase.WithOrchestratorClock(clk),
	}
	if c.Attempts != nil {
		orchestratorOpts = append(orchestratorOpts, usecase.WithAttemptRepository(c.Attempts))
	}
	c.Orchestrator = usecase.NewExtractionOrchestrator(chain, log, orchestratorOpts...)
	log.Info("Extraction chain ready", "strategies", c.Orchestrator.Strategies())

	// Conversation context
	contextRepository, err := newContextRepository(cfg.ContextBackend, gormDB, redisClient, clk)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	c.Store = usecase.NewConversationContextStore(contextRepository, usecase.NewContextMerger(), log,
		usecase.WithContextTTL(cfg.ContextTTL),
		usecase.WithStoreClock(clk),
		usecase.WithStoreMetrics(m),
	)

	c.Resolver = usecase.NewQueryResolver(c.Orchestrator, c.Store, log, m)
	c.Learner = usecase.NewInventoryLearner(c.Directory, log)
	return c, nil
}

func newContextRepository(backend string, db *gorm.DB, client redis.UniversalClient, clk clock.Clock) (repository.ContextRepository, error) {
	switch backend {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("context backend postgres requires POSTGRES_DSN")
		}
		return repo.NewGormContextRepository(db), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("context backend redis requires REDIS_URL")
		}
		return repo.NewRedisContextRepository(client, clk, ""), nil
	case "memory", "":
		return repo.NewMemoryContextRepository(), nil
	}
	return nil, fmt.Errorf("unknown context backend %q", backend)
}

// Close releases every backend connection
func (c *Container) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			c.logger.Error("Error closing backend", "error", err)
		}
	}
	c.closers = nil
}
