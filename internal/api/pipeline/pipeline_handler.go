package pipeline

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/api"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
	// Runs rewrite the data directory, so only one may be in flight.
	running sync.Mutex
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Run processes the categories named in the comma separated "category" query
// parameter, or all of them, and answers with the run summary.
func (h *HandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PipelineHandler").Start(r.Context(), "Run", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/pipeline/run"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Run"))

	var categories []types.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			c, err := types.ParseCategory(strings.TrimSpace(name))
			if err != nil {
				l.WarnContext(ctx, "Unknown category requested", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
				return
			}
			categories = append(categories, c)
		}
	}

	if !h.running.TryLock() {
		api.ErrorResponse(w, r, http.StatusConflict, "a pipeline run is already in progress")
		return
	}
	defer h.running.Unlock()

	summary := h.service.Run(ctx, categories...)
	status := http.StatusOK
	if summary.Failed() {
		status = http.StatusMultiStatus
	}
	l.InfoContext(ctx, "Pipeline run served", slog.String("run_id", summary.RunID), slog.Int("status", status))
	api.WriteJSONResponse(w, r, status, summary)
}
