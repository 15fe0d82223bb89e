package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/1457cus/shaoguan-travel-planner/app/middleware"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/itinerary"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/pipeline"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/weather"
)

// Config contains the handlers the router mounts.
type Config struct {
	ValidatorHandler *validator.HandlerImpl
	PipelineHandler  *pipeline.HandlerImpl
	WeatherHandler   *weather.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	MetricsHandler   http.Handler
	AllowedOrigins   []string
	// GenerateLimit caps itinerary generations per client per minute.
	GenerateLimit int
}

// SetupRouter builds the API routes. Server-wide middleware (request IDs,
// logging, recovery) is applied by the caller before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(appMiddleware.Trace("validation")).Get("/validation", cfg.ValidatorHandler.ValidateAll)
		r.With(appMiddleware.Trace("validation")).Get("/validation/{category}", cfg.ValidatorHandler.ValidateCategory)

		r.With(appMiddleware.Trace("weather")).Get("/weather", cfg.WeatherHandler.GetForecast)

		r.With(appMiddleware.Trace("pipeline")).Post("/pipeline/run", cfg.PipelineHandler.Run)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Trace("itinerary"))
			r.Post("/itinerary/preview", cfg.ItineraryHandler.Preview)

			limit := cfg.GenerateLimit
			if limit <= 0 {
				limit = 10
			}
			r.With(appMiddleware.RateLimit(limit, time.Minute)).Post("/itinerary", cfg.ItineraryHandler.Generate)
		})
	})

	return r
}
