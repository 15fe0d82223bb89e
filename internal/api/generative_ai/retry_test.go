package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func (m *MockChatClient) Model() string { return "mock-model" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func fastRetry(inner ChatClient) *RetryingClient {
	return NewRetryingClient(inner, RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, Timeout: time.Second}, nil, testLogger())
}

func TestRetryingClient(t *testing.T) {
	ctx := context.Background()
	serverErr := &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "overloaded"}

	t.Run("retries transient failures then succeeds", func(t *testing.T) {
		inner := new(MockChatClient)
		inner.On("Complete", mock.Anything, "sys", "user").Return("", serverErr).Twice()
		inner.On("Complete", mock.Anything, "sys", "user").Return("第一天：丹霞山", nil).Once()

		text, err := fastRetry(inner).Complete(ctx, "sys", "user")
		require.NoError(t, err)
		assert.Equal(t, "第一天：丹霞山", text)
		inner.AssertNumberOfCalls(t, "Complete", 3)
	})

	t.Run("stops after the attempt ceiling", func(t *testing.T) {
		inner := new(MockChatClient)
		inner.On("Complete", mock.Anything, "sys", "user").Return("", serverErr)

		_, err := fastRetry(inner).Complete(ctx, "sys", "user")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrChatFailed)
		assert.Contains(t, err.Error(), "after 3 attempt(s)")
		assert.Contains(t, err.Error(), "Check the chat API key")
		inner.AssertNumberOfCalls(t, "Complete", 3)
	})

	t.Run("permanent failures are not retried", func(t *testing.T) {
		inner := new(MockChatClient)
		inner.On("Complete", mock.Anything, "sys", "user").
			Return("", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"})

		_, err := fastRetry(inner).Complete(ctx, "sys", "user")
		assert.ErrorIs(t, err, types.ErrChatFailed)
		inner.AssertNumberOfCalls(t, "Complete", 1)
	})
}

func TestRetryConfigBudget(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// 3 attempts of 60s plus 500ms and 1s of backoff
		assert.Equal(t, 181500*time.Millisecond, RetryConfig{}.Budget())
	})

	t.Run("configured", func(t *testing.T) {
		cfg := RetryConfig{MaxAttempts: 2, BaseBackoff: 100 * time.Millisecond, Timeout: 5 * time.Second}
		assert.Equal(t, 10100*time.Millisecond, cfg.Budget())
	})

	t.Run("covers more than one attempt", func(t *testing.T) {
		cfg := RetryConfig{MaxAttempts: 3, Timeout: 60 * time.Second}
		assert.Greater(t, cfg.Budget(), 2*cfg.Timeout)
	})
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("wrap: %w", &openai.APIError{HTTPStatusCode: 429})))
	assert.True(t, IsTransient(&openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}))
	assert.False(t, IsTransient(&openai.APIError{HTTPStatusCode: 400}))
	assert.False(t, IsTransient(errors.New("no response choices")))
}

func TestNewChatClient(t *testing.T) {
	_, err := NewChatClient(context.Background(), Config{Provider: ProviderDeepSeek}, testLogger())
	assert.ErrorIs(t, err, types.ErrMissingChatKey)

	_, err = NewChatClient(context.Background(), Config{Provider: "mystery", APIKey: "k"}, testLogger())
	assert.Error(t, err)

	c, err := NewChatClient(context.Background(), Config{Provider: ProviderDeepSeek, APIKey: "k"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultDeepSeekModel, c.Model())
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":1,"model":"deepseek-chat",
"choices":[{"index":0,"message":{"role":"assistant","content":"Day 1: Danxia Mountain"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", srv.URL+"/v1", DefaultDeepSeekModel, 0.7, 512)
	text, err := client.Complete(context.Background(), "system", "plan a trip")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: Danxia Mountain", text)
}
