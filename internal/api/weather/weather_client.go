package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

const (
	DefaultBaseURL = "https://restapi.amap.com/v3/weather/weatherInfo"
	amapKeyLength  = 32
)

// Fetcher fetches a live multi-day forecast.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (*types.Forecast, error)
}

// ClientConfig tunes the AMap client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	return c
}

// Budget is the longest a Fetch can take when every attempt times out.
func (c ClientConfig) Budget() time.Duration {
	c = c.withDefaults()
	total := time.Duration(c.MaxAttempts) * c.Timeout
	for attempt := 1; attempt < c.MaxAttempts; attempt++ {
		total += backoff(c.BaseBackoff, c.MaxBackoff, attempt)
	}
	return total
}

var _ Fetcher = (*AMapClient)(nil)

// AMapClient calls the AMap weather REST API.
type AMapClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        ClientConfig
}

func NewAMapClient(cfg ClientConfig, logger *slog.Logger) *AMapClient {
	return &AMapClient{
		logger:     logger,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		cfg:        cfg.withDefaults(),
	}
}

// KeyUsable reports whether a weather key looks real. Empty keys, keys of
// the wrong length and obvious placeholders are rejected.
func KeyUsable(key string) bool {
	if len(key) != amapKeyLength {
		return false
	}
	lower := strings.ToLower(key)
	for _, p := range []string{"your", "xxxx", "placeholder"} {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

type amapResponse struct {
	Status    string         `json:"status"`
	Info      string         `json:"info"`
	InfoCode  string         `json:"infocode"`
	Forecasts []amapForecast `json:"forecasts"`
}

type amapForecast struct {
	City       string     `json:"city"`
	Adcode     string     `json:"adcode"`
	ReportTime string     `json:"reporttime"`
	Casts      []amapCast `json:"casts"`
}

type amapCast struct {
	Date         string `json:"date"`
	Week         string `json:"week"`
	DayWeather   string `json:"dayweather"`
	NightWeather string `json:"nightweather"`
	DayTemp      string `json:"daytemp"`
	NightTemp    string `json:"nighttemp"`
}

// transientError marks failures worth another attempt.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

func (c *AMapClient) Fetch(ctx context.Context, city string) (*types.Forecast, error) {
	ctx, span := otel.Tracer("WeatherClient").Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Fetch"), slog.String("city", city))

	var lastErr error
retry:
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		forecast, err := c.fetchOnce(ctx, city)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			span.SetStatus(codes.Ok, "")
			return forecast, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == c.cfg.MaxAttempts {
			break
		}

		wait := backoff(c.cfg.BaseBackoff, c.cfg.MaxBackoff, attempt)
		l.WarnContext(ctx, "Weather request failed, retrying",
			slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(wait):
		}
	}

	err := fmt.Errorf("%w: %w", types.ErrWeatherUnavailable, lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, "weather fetch failed")
	return nil, err
}

// backoff doubles from base per attempt and never exceeds ceiling.
func backoff(base, ceiling time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

func (c *AMapClient) fetchOnce(ctx context.Context, city string) (*types.Forecast, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("city", city)
	q.Set("extensions", "all")
	q.Set("output", "JSON")

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if ctx.Err() == nil && (errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)) {
			return nil, transientError{fmt.Errorf("request: %w", err)}
		}
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, transientError{fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, transientError{fmt.Errorf("read body: %w", err)}
	}

	var payload amapResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if payload.Status != "1" {
		return nil, fmt.Errorf("weather service refused request: %s (%s)", payload.Info, payload.InfoCode)
	}
	if len(payload.Forecasts) == 0 || len(payload.Forecasts[0].Casts) == 0 {
		return nil, errors.New("weather service returned no forecast")
	}

	fc := payload.Forecasts[0]
	forecast := &types.Forecast{
		City:       fc.City,
		ReportTime: fc.ReportTime,
		Source:     "amap",
	}
	for _, cast := range fc.Casts {
		high, _ := strconv.Atoi(cast.DayTemp)
		low, _ := strconv.Atoi(cast.NightTemp)
		forecast.Days = append(forecast.Days, types.DayForecast{
			Date:           cast.Date,
			Week:           cast.Week,
			DayCondition:   cast.DayWeather,
			NightCondition: cast.NightWeather,
			TempMax:        high,
			TempMin:        low,
		})
	}
	return forecast, nil
}
