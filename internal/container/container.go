package container

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/1457cus/shaoguan-travel-planner/config"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/cleaner"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	generativeAI "github.com/1457cus/shaoguan-travel-planner/internal/api/generative_ai"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/identifier"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/itinerary"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/pipeline"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/prompt"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/weather"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// Container holds the wired services and handlers.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Repository *dataset.FileRepository

	Pipeline  *pipeline.ServiceImpl
	Validator *validator.ServiceImpl
	Weather   *weather.ServiceImpl
	Assembler *prompt.Assembler
	Itinerary *itinerary.ServiceImpl
	// Chat is nil when no chat key is configured.
	Chat generativeAI.ChatClient
	// GenerateBudget is the worst-case duration of one itinerary generation:
	// the weather fetch followed by the chat call, retries included.
	GenerateBudget time.Duration

	ValidatorHandler *validator.HandlerImpl
	PipelineHandler  *pipeline.HandlerImpl
	WeatherHandler   *weather.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
}

// NewContainer builds every service from cfg. Missing collaborator keys are
// not fatal here: weather degrades to simulated forecasts and generation
// reports the missing chat key when requested.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	repo := dataset.NewFileRepository(dataset.Layout{BaseDir: cfg.Data.BaseDir}, logger)

	cleanerService := cleaner.NewServiceImpl(logger)
	identifierService := identifier.NewServiceImpl(logger)
	validatorService := validator.NewServiceImpl(repo, logger)
	pipelineService := pipeline.NewServiceImpl(repo, cleanerService, identifierService, validatorService, logger)

	weatherConfig := weather.ClientConfig{
		BaseURL:     cfg.Weather.BaseURL,
		APIKey:      cfg.Secrets.AmapAPIKey,
		Timeout:     cfg.Weather.Timeout,
		MaxAttempts: cfg.Weather.MaxAttempts,
		BaseBackoff: cfg.Weather.BaseBackoff,
		MaxBackoff:  cfg.Weather.MaxBackoff,
	}
	var fetcher weather.Fetcher
	var budget time.Duration
	if weather.KeyUsable(cfg.Secrets.AmapAPIKey) {
		fetcher = weather.NewAMapClient(weatherConfig, logger)
		budget += weatherConfig.Budget()
	} else {
		logger.WarnContext(ctx, "Weather key missing or placeholder, forecasts will be simulated",
			slog.String("key", config.Masked(cfg.Secrets.AmapAPIKey)))
	}
	weatherService := weather.NewServiceImpl(fetcher, cfg.Weather.CacheTTL, logger)

	assembler, err := prompt.NewAssembler(prompt.Config{
		MinCooling:  cfg.Prompt.MinCooling,
		TemplateDir: cfg.Prompt.TemplateDir,
	}, logger)
	if err != nil {
		return nil, err
	}

	var chat generativeAI.ChatClient
	client, err := generativeAI.NewChatClient(ctx, generativeAI.Config{
		Provider:          cfg.Chat.Provider,
		APIKey:            cfg.Secrets.ChatKey(cfg.Chat.Provider),
		Model:             cfg.Chat.Model,
		BaseURL:           cfg.Chat.BaseURL,
		Temperature:       cfg.Chat.Temperature,
		MaxTokens:         cfg.Chat.MaxTokens,
		Timeout:           cfg.Chat.Timeout,
		MaxAttempts:       cfg.Chat.MaxAttempts,
		BaseBackoff:       cfg.Chat.BaseBackoff,
		RequestsPerSecond: cfg.Chat.RequestsPerSecond,
	}, logger)
	switch {
	case err == nil:
		chat = client
		budget += generativeAI.RetryConfig{
			MaxAttempts: cfg.Chat.MaxAttempts,
			BaseBackoff: cfg.Chat.BaseBackoff,
			Timeout:     cfg.Chat.Timeout,
		}.Budget()
	case errors.Is(err, types.ErrMissingChatKey):
		logger.WarnContext(ctx, "Chat key not configured, itinerary generation disabled",
			slog.String("provider", cfg.Chat.Provider))
	default:
		return nil, err
	}

	itineraryService := itinerary.NewServiceImpl(repo, weatherService, assembler, chat, cfg.Weather.City, logger)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Repository: repo,

		Pipeline:  pipelineService,
		Validator: validatorService,
		Weather:   weatherService,
		Assembler: assembler,
		Itinerary: itineraryService,
		Chat:      chat,

		GenerateBudget: budget,

		ValidatorHandler: validator.NewHandlerImpl(validatorService, logger),
		PipelineHandler:  pipeline.NewHandlerImpl(pipelineService, logger),
		WeatherHandler:   weather.NewHandlerImpl(weatherService, cfg.Weather.City, logger),
		ItineraryHandler: itinerary.NewHandlerImpl(itineraryService, logger),
	}, nil
}
