// Package bootstrap builds the search and advice pipelines from configuration.
// The HTTP server and the CLI share it so both run the same wiring.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/config"
	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/provider"
	"github.com/fleveque/stylist-service/internal/server"
	"github.com/fleveque/stylist-service/internal/service"
	"github.com/fleveque/stylist-service/internal/storage"
)

// App holds the wired pipelines and the resources they own.
type App struct {
	Search      *service.SearchService
	Advice      *service.AdviceService
	LLMCallRepo storage.LLMCallRepository

	db *sqlx.DB
}

// textModel is a client that can serve both text steps.
type textModel interface {
	llm.Extractor
	llm.AdviceWriter
}

// New wires every component named in cfg. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	if path := cfg.Storage.DatabasePath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		db, err := storage.NewDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		app.db = db
		app.LLMCallRepo = storage.NewLLMCallRepository(db)
	} else {
		logger.Info("storage.database_path is empty, model call auditing is off")
	}

	extractor, err := newTextModel(ctx, cfg.LLM.ExtractionProvider, cfg.LLM)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("extraction model: %w", err)
	}
	writer := extractor
	if cfg.LLM.AdviceProvider != cfg.LLM.ExtractionProvider {
		writer, err = newTextModel(ctx, cfg.LLM.AdviceProvider, cfg.LLM)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("advice model: %w", err)
		}
	}

	var renderer llm.OutfitRenderer
	if cfg.LLM.Gemini.APIKey != "" {
		r, err := llm.NewGeminiRenderer(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.ImageModel, cfg.LLM.Timeout)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("outfit image model: %w", err)
		}
		renderer = r
	} else {
		logger.Warn("llm.gemini.api_key is empty, advice requests will fail at the outfit image step")
	}

	source, err := provider.New(cfg.Source, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	tracker := service.NewCallTracker(app.LLMCallRepo, logger)
	processor := service.NewImageProcessor(cfg.Advice.MaxImageDimension)
	images := service.NewImageLoader(processor, cfg.Source.Timeout, cfg.Advice.MaxImageBytes, cfg.Source.UserAgent, cfg.Advice.AllowPrivateImageHosts)

	app.Search = service.NewSearchService(source, extractor, tracker, cfg.Search.MaxResults, logger)
	app.Advice = service.NewAdviceService(writer, renderer, images, tracker, cfg.Advice.AllowDataURI, logger)

	logger.Info("pipelines ready",
		zap.String("content_source", source.Name()),
		zap.String("extraction", extractor.ProviderName()+"/"+extractor.ModelName()),
		zap.String("advice", writer.ProviderName()+"/"+writer.ModelName()),
		zap.Bool("outfit_images", renderer != nil),
		zap.Bool("call_auditing", app.LLMCallRepo != nil),
	)
	return app, nil
}

// Deps exposes the pipelines to the HTTP routes.
func (a *App) Deps() server.Deps {
	deps := server.Deps{
		Search:      a.Search,
		Advice:      a.Advice,
		LLMCallRepo: a.LLMCallRepo,
	}
	if a.db != nil {
		deps.DB = a.db
	}
	return deps
}

// Close releases the database, if one was opened.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newTextModel(ctx context.Context, name string, cfg config.LLMConfig) (textModel, error) {
	switch name {
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("llm.anthropic.api_key is required")
		}
		return llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Timeout), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("llm.openai.api_key is required")
		}
		return llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Timeout), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("llm.gemini.api_key is required")
		}
		return llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
