package weather

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/api"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

const maxForecastDays = 4

type HandlerImpl struct {
	service     Service
	defaultCity string
	logger      *slog.Logger
}

func NewHandlerImpl(service Service, defaultCity string, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, defaultCity: defaultCity, logger: logger}
}

type forecastResponse struct {
	Forecast *types.Forecast `json:"forecast"`
	Advice   string          `json:"advice"`
}

// GetForecast answers with the forecast for ?city= (default city otherwise)
// and the derived advice. It never fails on upstream errors; the answer is
// then a simulated forecast.
func (h *HandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WeatherHandler").Start(r.Context(), "GetForecast", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/weather"),
	))
	defer span.End()

	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		city = h.defaultCity
	}
	days := maxForecastDays
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > types.MaxTripDays {
			api.ErrorResponse(w, r, http.StatusBadRequest, "days must be an integer between 1 and 7")
			return
		}
		days = n
	}
	lang := types.ParseLanguage(q.Get("lang"))

	f := h.service.ForecastOrSimulated(ctx, city, days)
	h.logger.DebugContext(ctx, "Forecast served",
		slog.String("city", city), slog.Bool("simulated", f.Simulated))
	api.WriteJSONResponse(w, r, http.StatusOK, forecastResponse{Forecast: f, Advice: h.service.Advice(f, lang)})
}
