package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	generativeAI "github.com/1457cus/shaoguan-travel-planner/internal/api/generative_ai"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/prompt"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/weather"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// DefaultCity is the AMap adcode for Shaoguan.
const DefaultCity = "440200"

var systemPrompts = map[types.Language]string{
	types.LanguageZH: "你是专业的韶关旅游规划助手，回答准确、实用，并严格遵守用户给出的格式要求。",
	types.LanguageEN: "You are a professional Shaoguan travel planning assistant. Be accurate and practical, and follow the requested format exactly.",
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Generate assembles the prompt and asks the chat service for the plan.
	Generate(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error)
	// Preview does everything Generate does except calling the chat service.
	Preview(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        dataset.Repository
	weather     weather.Service
	assembler   prompt.Service
	chat        generativeAI.ChatClient
	defaultCity string
	now         func() time.Time
}

// NewServiceImpl wires the itinerary flow. chat may be nil when no key is
// configured, in which case only Preview succeeds.
func NewServiceImpl(repo dataset.Repository,
	weatherService weather.Service,
	assembler prompt.Service,
	chat generativeAI.ChatClient,
	defaultCity string,
	logger *slog.Logger) *ServiceImpl {
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		weather:     weatherService,
		assembler:   assembler,
		chat:        chat,
		defaultCity: defaultCity,
		now:         time.Now,
	}
}

func (s *ServiceImpl) Preview(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Preview", trace.WithAttributes(
		attribute.Int("days", req.Days),
		attribute.String("theme", req.Theme),
	))
	defer span.End()

	resp, err := s.prepare(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "preview ready")
	return resp, nil
}

func (s *ServiceImpl) Generate(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.Int("days", req.Days),
		attribute.String("theme", req.Theme),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"))

	if s.chat == nil {
		err := fmt.Errorf("%w: set DEEPSEEK_API_KEY or GOOGLE_GEMINI_API_KEY", types.ErrMissingChatKey)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat not configured")
		return nil, err
	}

	resp, err := s.prepare(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare failed")
		return nil, err
	}

	lang := types.ParseLanguage(string(req.Language))
	content, err := s.chat.Complete(ctx, systemPrompts[lang], resp.Prompt)
	if err != nil {
		l.ErrorContext(ctx, "Chat completion failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat failed")
		return nil, err
	}

	resp.Content = content
	resp.Model = s.chat.Model()
	l.InfoContext(ctx, "Itinerary generated",
		slog.Int("days", req.Days),
		slog.String("model", resp.Model),
		slog.Int("content_length", len(content)))
	span.SetStatus(codes.Ok, "itinerary generated")
	return resp, nil
}

func (s *ServiceImpl) prepare(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error) {
	l := s.logger.With(slog.String("method", "prepare"))

	lang := types.ParseLanguage(string(req.Language))
	req.Language = lang
	if err := req.PromptRequest("").Validate(); err != nil {
		return nil, err
	}

	city := req.City
	if city == "" {
		city = s.defaultCity
	}

	data := prompt.Data{
		Attractions: s.load(ctx, l, types.CategoryAttractions),
		Food:        s.load(ctx, l, types.CategoryFood),
		Culture:     s.load(ctx, l, types.CategoryCulture),
	}

	forecast := s.weather.ForecastOrSimulated(ctx, city, req.Days)
	advice := s.weather.Advice(forecast, lang)

	text, err := s.assembler.Assemble(ctx, data, req.PromptRequest(advice))
	if err != nil {
		return nil, fmt.Errorf("assembling prompt: %w", err)
	}

	now := s.now()
	return &types.ItineraryResponse{
		Prompt:        text,
		WeatherAdvice: advice,
		Forecast:      forecast,
		Plan:          SimulatedPlan(req.Days, forecast, now),
		GeneratedAt:   now,
	}, nil
}

// load reads a processed table. A missing or unreadable file is an empty pool.
func (s *ServiceImpl) load(ctx context.Context, l *slog.Logger, category types.Category) *types.Table {
	table, _, err := s.repo.Load(ctx, dataset.StageProcessed, category)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, types.ErrMissingInput) {
			level = slog.LevelInfo
		}
		l.Log(ctx, level, "Processed data unavailable, using fallback examples",
			slog.String("category", category.String()),
			slog.Any("error", err))
		return nil
	}
	return table
}
