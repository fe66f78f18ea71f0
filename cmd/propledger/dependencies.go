package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/delegated"
	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/internal/domain/ledger"
	"github.com/propledger/propledger/internal/domain/workbook"
	"github.com/propledger/propledger/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Stores
	RuleStore *categorize.FileRuleStore
	Layouts   *extract.LayoutCache

	// Services
	Delegate   *delegated.Client
	Classifier *categorize.Classifier
	Extractor  *extract.Extractor
	Merger     *ledger.Engine
	Renderer   *workbook.Renderer
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStores(); err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}
	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initStores() error {
	rules, err := categorize.NewFileRuleStore(
		d.Config.Stores.LearnedRulesPath,
		d.Config.Stores.RuleMirrorURL,
		d.Logger)
	if err != nil {
		return fmt.Errorf("learned rule store: %w", err)
	}
	d.RuleStore = rules

	layouts, err := extract.NewLayoutCache(d.Config.Stores.LayoutPatternsPath, d.Logger)
	if err != nil {
		return fmt.Errorf("layout pattern cache: %w", err)
	}
	d.Layouts = layouts
	return nil
}

func (d *Dependencies) initServices(ctx context.Context) error {
	// Delegate is nil when no API key is configured; every consumer
	// degrades to its non-delegated tiers in that case.
	delegate, err := delegated.New(ctx, d.Config.Gemini, d.Logger)
	if err != nil {
		return fmt.Errorf("delegated client: %w", err)
	}
	d.Delegate = delegate

	d.Classifier = categorize.NewClassifier(d.RuleStore, d.Delegate, d.Logger)
	d.Extractor = extract.New(d.Classifier, d.Delegate, d.Layouts,
		d.Config.Pipeline.MaxExcerptBytes, d.Logger)
	d.Merger = ledger.NewEngine(d.Logger)
	d.Renderer = workbook.NewRenderer(d.Logger)
	return nil
}
