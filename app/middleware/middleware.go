package appMiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/1457cus/shaoguan-travel-planner/internal/api"
)

// RateLimit caps requests per client IP. Itinerary generation calls a paid
// chat service, so its routes get their own tighter limit.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.ErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded, retry later")
		}),
	)
}

// Trace wraps the handler in an OpenTelemetry server span named after the
// operation.
func Trace(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}
