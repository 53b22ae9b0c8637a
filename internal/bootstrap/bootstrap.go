// Package bootstrap assembles the verification service from process configuration.
package bootstrap

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/core/async"
	"github.com/joseph-ayodele/layout-verifier/internal/extract"
	"github.com/joseph-ayodele/layout-verifier/internal/pdftext"
	"github.com/joseph-ayodele/layout-verifier/internal/repository"
	"github.com/joseph-ayodele/layout-verifier/internal/services/verify"
)

// App holds the wired service and the resources it owns.
type App struct {
	Verify    *verify.Service
	Extractor extract.TextExtractor
	Pool      *async.Pool
	DB        *repository.DB // nil when run history is disabled
	Runs      repository.RunRepository
}

// Option adjusts wiring before the service is built; tests use it to swap the extractor.
type Option func(*App)

func WithExtractor(e extract.TextExtractor) Option {
	return func(a *App) { a.Extractor = e }
}

// New validates cfg and wires extraction, the worker pool and, when DB_DRIVER is set, the run history store.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Pool: async.NewPool(logger,
			async.WithWorkers(cfg.Batch.Workers),
			async.WithQueueSize(cfg.Batch.QueueSize),
		),
	}
	for _, o := range opts {
		o(app)
	}
	if app.Extractor == nil {
		pdf := pdftext.NewExtractor(pdftext.Config{
			Pdftotext: cfg.Extract.Pdftotext,
			Layout:    cfg.Extract.Layout,
			MaxPages:  cfg.Extract.MaxPages,
		}, logger)
		app.Extractor = extract.NewRetryingExtractor(extract.NewPDFTextAdapter(pdf), cfg.Extract.Retries, cfg.Extract.RetryDelay, logger)
	}

	svcOpts := []verify.Option{
		verify.WithPool(app.Pool),
		verify.WithExtractTimeout(cfg.Extract.Timeout),
	}
	if cfg.Database.Driver != "" {
		db, err := repository.Open(ctx, repository.Config{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, common.WrapError(err, "open run history")
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.DB = db
		app.Runs = repository.NewRunRepository(db, logger)
		svcOpts = append(svcOpts, verify.WithRunRepository(app.Runs))
	}

	app.Verify = verify.NewService(app.Extractor, logger, svcOpts...)
	return app, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
