//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveConfig picks whichever provider has a key in the environment.
func liveConfig(t *testing.T) Config {
	t.Helper()
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		return Config{Provider: ProviderDeepSeek, APIKey: key, MaxTokens: 256, Timeout: 60 * time.Second}
	}
	if key := os.Getenv("GOOGLE_GEMINI_API_KEY"); key != "" {
		return Config{Provider: ProviderGemini, APIKey: key, MaxTokens: 256, Timeout: 60 * time.Second}
	}
	t.Skip("Skipping integration test: neither DEEPSEEK_API_KEY nor GOOGLE_GEMINI_API_KEY set")
	return Config{}
}

func TestChatClient_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := NewChatClient(ctx, liveConfig(t), testLogger())
	require.NoError(t, err)

	t.Run("short completion", func(t *testing.T) {
		text, err := client.Complete(ctx, "Answer with a single word.", "What colour is the rock of Danxia Mountain?")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(text))
	})

	t.Run("chinese prompt", func(t *testing.T) {
		text, err := client.Complete(ctx, "你是韶关旅游助手，请用一句话回答。", "推荐一个韶关的景点。")
		require.NoError(t, err)
		assert.NotEmpty(t, text)
	})
}
