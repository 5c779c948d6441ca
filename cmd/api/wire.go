package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/config"
	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	"github.com/bryanwahyu/ecosense/internal/infra/ai/gemini"
	"github.com/bryanwahyu/ecosense/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/ecosense/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/ecosense/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/ecosense/internal/infra/db/sqlite"
	"github.com/bryanwahyu/ecosense/internal/infra/knowledge"
	"github.com/bryanwahyu/ecosense/internal/infra/storage"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

// newAIClient returns nil when no key is configured.
func newAIClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	if cfg.AI.APIKey == "" {
		return nil, nil
	}
	switch cfg.AI.Provider {
	case "openai":
		return openai.NewClient(cfg.AI.APIKey, cfg.AI.Model), nil
	default:
		c, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

type factorStore interface {
	footprint.KnowledgeSource
	footprint.FactorWriter
	Migrate(ctx context.Context) error
}

// newKnowledge builds the ordered knowledge sources: the factor database
// first, then the web report index.
func newKnowledge(ctx context.Context, cfg *config.Config, logger *zap.Logger, checkers map[string]middleware.HealthChecker) ([]footprint.KnowledgeSource, func(), error) {
	web := knowledge.NewWebReports(knowledge.DefaultReports())
	if cfg.Knowledge.Driver == "memory" {
		return []footprint.KnowledgeSource{knowledge.NewCatalog(knowledge.DefaultFactors()), web}, func() {}, nil
	}

	var (
		db    *sql.DB
		store factorStore
		err   error
	)
	switch cfg.Knowledge.Driver {
	case "sqlite":
		if db, err = sqlitep.Open(ctx, cfg.Knowledge.Path); err == nil {
			store = sqlitep.NewFactorRepository(db)
		}
	case "mysql":
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err == nil {
			store = mysqlp.NewFactorRepository(db)
		}
	case "postgres":
		if db, err = postgresp.Connect(ctx, cfg.PostgresDSN()); err == nil {
			store = postgresp.NewFactorRepository(db)
		}
	default:
		return nil, nil, fmt.Errorf("unknown driver %q", cfg.Knowledge.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s connect: %w", cfg.Knowledge.Driver, err)
	}
	closeDB := func() { _ = db.Close() }

	if err := store.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("%s migrate: %w", cfg.Knowledge.Driver, err)
	}
	if cfg.Knowledge.Seed {
		if err := knowledge.Seed(ctx, store, knowledge.DefaultFactors()); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("%s seed: %w", cfg.Knowledge.Driver, err)
		}
		logger.Info("knowledge base seeded", zap.String("driver", cfg.Knowledge.Driver))
	}
	checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	return []footprint.KnowledgeSource{store, web}, closeDB, nil
}

func newSamples(ctx context.Context, cfg *config.Config, checkers map[string]middleware.HealthChecker) (footprint.SampleStore, error) {
	if cfg.Samples.Source == "file" {
		return storage.NewFileStore(cfg.Samples.Path), nil
	}
	m := cfg.Samples.Minio
	store, err := storage.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL, cfg.Samples.Object)
	if err != nil {
		return nil, err
	}
	checkers["samples"] = middleware.CheckerFunc(store.Check)
	return store, nil
}
