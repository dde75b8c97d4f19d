package app

import (
	"context"
	"log/slog"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/infrastructure/kegg"
	"github.com/catherinechia/p4sbip/internal/infrastructure/loader"
	"github.com/catherinechia/p4sbip/internal/infrastructure/storage"
	"github.com/catherinechia/p4sbip/internal/infrastructure/telegram"
	"github.com/catherinechia/p4sbip/internal/infrastructure/webhook"
	"github.com/catherinechia/p4sbip/internal/logging"
	"github.com/catherinechia/p4sbip/internal/normalize"
	"github.com/catherinechia/p4sbip/internal/ports"
	"github.com/catherinechia/p4sbip/internal/report"
	"github.com/catherinechia/p4sbip/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// New builds a minimal runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := normalize.NewRegistry()
	registry.Register(normalize.RLE{})
	registry.Register(normalize.MedianRatio{})

	source := loader.NewFileSource(cfg.Inputs, cfg.Proteomics.GeneDelimiter,
		baseLogger.With("component", "loader"))
	sets := kegg.NewClient(cfg.Enrichment.KEGGURL, nil)
	renderer := report.NewRenderer(cfg.Output.Dir, baseLogger.With("component", "report"))

	var repository ports.ResultRepository
	if cfg.Database.DSN != "" {
		repo, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repository = repo
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	var sink ports.DigestSink
	if cfg.Notifications.Webhook.URL != "" {
		sink = webhook.NewClient(cfg.Notifications.Webhook)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Sets:       sets,
		Repository: repository,
		Notifier:   notifier,
		Sink:       sink,
		Renderer:   renderer,
		Strategies: registry,
		Config:     cfg,
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, pipeline: pipeline}, nil
}

// Run performs a single end-to-end analysis run.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	return a.pipeline.Run(ctx)
}
