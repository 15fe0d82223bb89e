package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/1457cus/shaoguan-travel-planner/app/observability/metrics"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	// Timeout bounds each attempt, not the whole call.
	Timeout time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// Budget is the longest a Complete call can take when every attempt runs
// to its timeout, pacing aside.
func (c RetryConfig) Budget() time.Duration {
	c = c.withDefaults()
	total := time.Duration(c.MaxAttempts) * c.Timeout
	for attempt := 1; attempt < c.MaxAttempts; attempt++ {
		total += c.BaseBackoff * time.Duration(1<<(attempt-1))
	}
	return total
}

var _ ChatClient = (*RetryingClient)(nil)

// RetryingClient paces calls and retries transient failures a bounded
// number of times.
type RetryingClient struct {
	logger  *slog.Logger
	inner   ChatClient
	cfg     RetryConfig
	limiter *rate.Limiter
}

func NewRetryingClient(inner ChatClient, cfg RetryConfig, limiter *rate.Limiter, logger *slog.Logger) *RetryingClient {
	return &RetryingClient{
		logger:  logger,
		inner:   inner,
		cfg:     cfg.withDefaults(),
		limiter: limiter,
	}
}

func (c *RetryingClient) Model() string { return c.inner.Model() }

func (c *RetryingClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := otel.Tracer("ChatClient").Start(ctx, "Complete", trace.WithAttributes(
		attribute.String("model", c.inner.Model()),
		attribute.Int("prompt.length", len(userPrompt)),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Complete"), slog.String("model", c.inner.Model()))

	var lastErr error
	attempts := 0
	for attempts < c.cfg.MaxAttempts {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		text, err := c.inner.Complete(attemptCtx, systemPrompt, userPrompt)
		cancel()
		metrics.Get().CollaboratorRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("collaborator", "chat"),
			attribute.Bool("success", err == nil),
		))
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempts))
			span.SetStatus(codes.Ok, "")
			return text, nil
		}

		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) || attempts == c.cfg.MaxAttempts {
			break
		}
		wait := c.cfg.BaseBackoff * time.Duration(1<<(attempts-1))
		l.WarnContext(ctx, "Chat request failed, retrying",
			slog.Int("attempt", attempts), slog.Duration("wait", wait), slog.Any("error", lastErr))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempts = c.cfg.MaxAttempts
		case <-time.After(wait):
		}
	}

	err := fmt.Errorf("%w after %d attempt(s): %w. Check the chat API key, network access and the provider status page, then try again",
		types.ErrChatFailed, attempts, lastErr)
	l.ErrorContext(ctx, "Chat request gave up", slog.Any("error", lastErr), slog.Int("attempts", attempts))
	span.RecordError(err)
	span.SetStatus(codes.Error, "chat failed")
	return "", err
}

// IsTransient reports whether a chat failure is worth retrying: timeouts,
// network errors, rate limiting and server-side errors.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
