package main

import (
	"context"
	"fmt"

	"github.com/jonathan/insight-journal/internal/config"
	"github.com/jonathan/insight-journal/internal/db"
	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/logging"
	"github.com/jonathan/insight-journal/internal/newsletter"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/prompts"
	"github.com/jonathan/insight-journal/internal/store"
	"go.uber.org/zap"
)

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	catalog    *pillars.Catalog
	store      *store.Store
	client     llm.Client
	generation *generation.Service
	assembler  *newsletter.Assembler
	closers    []func()
}

// newApp loads configuration and wires storage. The generation client is
// created only when withLLM is set, so offline commands need no API key.
func newApp(ctx context.Context, withLLM bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	a.catalog, err = loadCatalog(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	storage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStorage)

	a.store = store.New(storage, a.catalog, store.WithLogger(logger))
	a.store.Load(ctx)

	if withLLM {
		if err := a.wireGeneration(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func loadCatalog(cfg *config.Config) (*pillars.Catalog, error) {
	if cfg.Pillars.File == "" {
		return pillars.Default(), nil
	}
	return pillars.LoadFile(cfg.Pillars.File)
}

// openStorage returns the backend selected by the storage driver.
func openStorage(ctx context.Context, cfg config.StorageConfig) (store.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverRedis:
		rs, err := store.NewRedisStorage(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return store.NewPostgresStorage(database), database.Close, nil
	default:
		return store.NewFileStorage(cfg.Dir), func() {}, nil
	}
}

func (a *app) wireGeneration(ctx context.Context) error {
	if err := prompts.Verify(); err != nil {
		return fmt.Errorf("prompt templates: %w", err)
	}

	llmCfg := llmConfig(a.cfg.LLM)
	client, err := llm.NewClient(ctx, llmCfg, a.cfg.LLM.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	breaker := llm.DefaultBreakerConfig()
	if a.cfg.LLM.BreakerFailures > 0 {
		breaker.ConsecutiveFailures = a.cfg.LLM.BreakerFailures
	}
	if a.cfg.LLM.BreakerTimeout > 0 {
		breaker.Timeout = a.cfg.LLM.BreakerTimeout
	}
	a.client = llm.NewBreakerClient(client, breaker, a.logger)
	a.closers = append(a.closers, func() { _ = a.client.Close() })

	a.generation = generation.NewService(a.client, a.catalog,
		generation.WithLogger(a.logger),
		generation.WithConcurrency(a.cfg.Generation.Concurrency),
		generation.WithTimeout(a.cfg.LLM.Timeout),
	)
	a.assembler = newsletter.NewAssembler(a.generation)
	return nil
}

// llmConfig overlays configured models on the provider defaults.
func llmConfig(cfg config.LLMConfig) *llm.Config {
	out := llm.DefaultConfig()
	if cfg.Provider != "" {
		out.Provider = llm.Provider(cfg.Provider)
	}
	for tier, model := range cfg.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	if cfg.Temperature > 0 {
		out.Temperature = cfg.Temperature
	}
	return out
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
