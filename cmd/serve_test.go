package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouteTimeout(t *testing.T) {
	tests := []struct {
		name       string
		configured time.Duration
		budget     time.Duration
		want       time.Duration
	}{
		{"configured covers the budget", 5 * time.Minute, 3 * time.Minute, 5 * time.Minute},
		{"raised to fit chat retries", 60 * time.Second, 181500 * time.Millisecond, 186500 * time.Millisecond},
		{"no chat client", 60 * time.Second, 0, 60 * time.Second},
		{"unset falls back to a minute", 0, 0, 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeTimeout(tt.configured, tt.budget))
		})
	}
}
