package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"

	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultGeminiModel     = "gemini-2.0-flash"
)

// ChatClient sends one prompt to a chat-completion service and returns the
// generated text.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Config selects and tunes the chat provider.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float32
	MaxTokens         int
	Timeout           time.Duration
	MaxAttempts       int
	BaseBackoff       time.Duration
	RequestsPerSecond float64
}

// NewChatClient builds the provider client wrapped with pacing and bounded
// retries. A missing key is reported as types.ErrMissingChatKey.
func NewChatClient(ctx context.Context, cfg Config, logger *slog.Logger) (*RetryingClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set the chat API key in the environment or secrets.toml", types.ErrMissingChatKey)
	}

	var inner ChatClient
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		model := cfg.Model
		if model == "" {
			model = DefaultGeminiModel
		}
		gc, err := NewGeminiClient(ctx, cfg.APIKey, model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		inner = gc
	case ProviderDeepSeek, ProviderOpenAI, "":
		model, baseURL := cfg.Model, cfg.BaseURL
		if model == "" {
			model = DefaultDeepSeekModel
		}
		if baseURL == "" && !strings.EqualFold(cfg.Provider, ProviderOpenAI) {
			baseURL = DefaultDeepSeekBaseURL
		}
		inner = NewOpenAIClient(cfg.APIKey, baseURL, model, cfg.Temperature, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return NewRetryingClient(inner, RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		BaseBackoff: cfg.BaseBackoff,
		Timeout:     cfg.Timeout,
	}, limiter, logger), nil
}

var _ ChatClient = (*GeminiClient)(nil)

// GeminiClient talks to Google Gemini through the genai SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32, maxTokens int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   int32(maxTokens),
	}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
