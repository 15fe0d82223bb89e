package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/1457cus/shaoguan-travel-planner/app/observability/metrics"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// HeatThreshold is the daytime maximum (°C) that triggers a heat advisory.
const HeatThreshold = 33

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Forecast returns a live forecast or an error.
	Forecast(ctx context.Context, city string, days int) (*types.Forecast, error)
	// ForecastOrSimulated never fails; it falls back to a labelled simulation.
	ForecastOrSimulated(ctx context.Context, city string, days int) *types.Forecast
	Advice(f *types.Forecast, lang types.Language) string
}

type ServiceImpl struct {
	logger  *slog.Logger
	fetcher Fetcher
	cache   *cache.Cache
	group   singleflight.Group
	now     func() time.Time
}

// NewServiceImpl builds the service. A nil fetcher means no usable key was
// configured and every call degrades to a simulated forecast.
func NewServiceImpl(fetcher Fetcher, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &ServiceImpl{
		logger:  logger,
		fetcher: fetcher,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		now:     time.Now,
	}
}

func (s *ServiceImpl) Forecast(ctx context.Context, city string, days int) (*types.Forecast, error) {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "Forecast", trace.WithAttributes(
		attribute.String("city", city),
		attribute.Int("days", days),
	))
	defer span.End()

	if s.fetcher == nil {
		err := fmt.Errorf("%w: weather key missing or placeholder", types.ErrWeatherUnavailable)
		span.SetStatus(codes.Error, "no key")
		return nil, err
	}

	if cached, found := s.cache.Get(city); found {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		span.SetStatus(codes.Ok, "")
		return truncate(cached.(*types.Forecast), days), nil
	}

	v, err, shared := s.group.Do(city, func() (interface{}, error) {
		start := time.Now()
		f, err := s.fetcher.Fetch(ctx, city)
		metrics.Get().CollaboratorRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("collaborator", "weather"),
			attribute.Bool("success", err == nil),
		))
		if err != nil {
			return nil, err
		}
		s.cache.Set(city, f, cache.DefaultExpiration)
		return f, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("shared", shared))
	span.SetStatus(codes.Ok, "")
	return truncate(v.(*types.Forecast), days), nil
}

func (s *ServiceImpl) ForecastOrSimulated(ctx context.Context, city string, days int) *types.Forecast {
	f, err := s.Forecast(ctx, city, days)
	if err == nil {
		return f
	}
	s.logger.WarnContext(ctx, "Using simulated forecast",
		slog.String("method", "ForecastOrSimulated"),
		slog.String("city", city),
		slog.Any("error", err))
	metrics.Get().CollaboratorFallbacksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collaborator", "weather"),
	))
	return Simulated(city, days, s.now())
}

// truncate returns a copy holding at most days entries; days <= 0 keeps all.
func truncate(f *types.Forecast, days int) *types.Forecast {
	out := *f
	out.Days = append([]types.DayForecast(nil), f.Days...)
	if days > 0 && len(out.Days) > days {
		out.Days = out.Days[:days]
	}
	return &out
}

func isRainy(d types.DayForecast) bool {
	return strings.Contains(d.DayCondition, "雨") || strings.Contains(d.NightCondition, "雨")
}

// Advice summarises the forecast for the prompt.
func (s *ServiceImpl) Advice(f *types.Forecast, lang types.Language) string {
	return Advice(f, lang)
}

func Advice(f *types.Forecast, lang types.Language) string {
	if f == nil || len(f.Days) == 0 {
		if lang == types.LanguageEN {
			return "No forecast available; plan a mix of indoor and outdoor sights."
		}
		return "暂无天气预报，建议室内外景点搭配安排。"
	}

	var rainy []string
	hottest := f.Days[0].TempMax
	var lines []string
	for _, d := range f.Days {
		if isRainy(d) {
			rainy = append(rainy, d.Date)
		}
		hottest = max(hottest, d.TempMax)
		lines = append(lines, fmt.Sprintf("%s %s %d~%d°C", d.Date, d.DayCondition, d.TempMin, d.TempMax))
	}

	var b strings.Builder
	if lang == types.LanguageEN {
		if f.Simulated {
			b.WriteString("(Simulated forecast, for reference only) ")
		}
		b.WriteString("Forecast: " + strings.Join(lines, "; ") + ". ")
		if len(rainy) > 0 {
			b.WriteString("Rain expected on " + strings.Join(rainy, ", ") + "; schedule indoor sights such as museums and temples and bring rain gear. ")
		}
		if hottest >= HeatThreshold {
			b.WriteString("Hot weather: avoid midday outdoor activity and favour cooling spots. ")
		}
		if len(rainy) == 0 && hottest < HeatThreshold {
			b.WriteString("Weather suits outdoor sightseeing.")
		}
		return strings.TrimSpace(b.String())
	}

	if f.Simulated {
		b.WriteString("（模拟预报，仅供参考）")
	}
	b.WriteString("天气预报：" + strings.Join(lines, "；") + "。")
	if len(rainy) > 0 {
		b.WriteString(strings.Join(rainy, "、") + "有雨，建议安排博物馆、寺庙等室内景点并携带雨具。")
	}
	if hottest >= HeatThreshold {
		b.WriteString("天气炎热，建议避开午间户外活动，优先安排避暑景点。")
	}
	if len(rainy) == 0 && hottest < HeatThreshold {
		b.WriteString("天气适宜户外游览。")
	}
	return b.String()
}
