package router

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/config"
	"github.com/1457cus/shaoguan-travel-planner/internal/container"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

func setupServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var cfg config.Config
	cfg.Data.BaseDir = dir
	cfg.Weather.City = "440200"
	cfg.Chat.Provider = "deepseek"

	c, err := container.NewContainer(context.Background(), &cfg, logger)
	require.NoError(t, err)
	require.Nil(t, c.Chat)

	r := SetupRouter(&Config{
		ValidatorHandler: c.ValidatorHandler,
		PipelineHandler:  c.PipelineHandler,
		WeatherHandler:   c.WeatherHandler,
		ItineraryHandler: c.ItineraryHandler,
		MetricsHandler:   http.NotFoundHandler(),
	})
	srv := httptest.NewServer(middleware.RequestID(r))
	t.Cleanup(srv.Close)
	return srv, dir
}

func writeRaw(t *testing.T, dir string, category types.Category, content string) {
	t.Helper()
	path := filepath.Join(dir, "raw_data", "sg_"+category.String()+".csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestPing(t *testing.T) {
	srv, _ := setupServer(t)
	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPipelineThenValidation(t *testing.T) {
	srv, dir := setupServer(t)
	writeRaw(t, dir, types.CategoryAttractions, "名称,主类型,门票(元)\n丹霞山,自然,100\n")

	resp, err := http.Post(srv.URL+"/api/v1/pipeline/run?category=attractions", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var summary types.RunSummary
	decode(t, resp, &summary)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, 1, summary.Outcomes[0].Identified)

	resp, err = http.Get(srv.URL + "/api/v1/validation/attractions")
	require.NoError(t, err)
	var report types.ValidationReport
	decode(t, resp, &report)
	assert.Equal(t, types.StatusValid, report.Status)

	resp, err = http.Get(srv.URL + "/api/v1/validation")
	require.NoError(t, err)
	var all struct {
		AllValid bool                     `json:"all_valid"`
		Reports  []types.ValidationReport `json:"reports"`
	}
	decode(t, resp, &all)
	assert.False(t, all.AllValid)
	assert.Len(t, all.Reports, 3)
}

func TestPipelineRejectsUnknownCategory(t *testing.T) {
	srv, _ := setupServer(t)
	resp, err := http.Post(srv.URL+"/api/v1/pipeline/run?category=hotels", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeatherWithoutKeyIsSimulated(t *testing.T) {
	srv, _ := setupServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/weather?days=2")
	require.NoError(t, err)
	var body struct {
		Forecast types.Forecast `json:"forecast"`
		Advice   string         `json:"advice"`
	}
	decode(t, resp, &body)
	assert.True(t, body.Forecast.Simulated)
	assert.Len(t, body.Forecast.Days, 2)
	assert.NotEmpty(t, body.Advice)
}

func TestItineraryRoutes(t *testing.T) {
	srv, _ := setupServer(t)
	body, err := json.Marshal(types.ItineraryRequest{Days: 2, Budget: 300, Theme: "美食探索"})
	require.NoError(t, err)

	t.Run("preview", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/itinerary/preview", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out types.ItineraryResponse
		decode(t, resp, &out)
		assert.Contains(t, out.Prompt, "美食探索")
		assert.Len(t, out.Plan, 2)
	})

	t.Run("generate without chat key", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/itinerary", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/itinerary/preview", "application/json",
			bytes.NewReader([]byte(`{"days":2,"hotel":"x"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("days out of range", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/itinerary/preview", "application/json",
			bytes.NewReader([]byte(`{"days":9}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
