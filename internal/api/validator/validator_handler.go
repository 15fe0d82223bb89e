package validator

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/api"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

type reportsResponse struct {
	AllValid bool                     `json:"all_valid"`
	Reports  []types.ValidationReport `json:"reports"`
}

// ValidateAll reports on every processed output file.
func (h *HandlerImpl) ValidateAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ValidatorHandler").Start(r.Context(), "ValidateAll", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/validation"),
	))
	defer span.End()

	reports := h.service.ValidateAll(ctx)
	h.logger.DebugContext(ctx, "Validation reports served", slog.Int("count", len(reports)))
	api.WriteJSONResponse(w, r, http.StatusOK, reportsResponse{AllValid: AllValid(reports), Reports: reports})
}

// ValidateCategory reports on the processed file of one category.
func (h *HandlerImpl) ValidateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ValidatorHandler").Start(r.Context(), "ValidateCategory", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/validation/{category}"),
	))
	defer span.End()

	category, err := types.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.logger.WarnContext(ctx, "Unknown category requested", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.service.Validate(ctx, category)
	api.WriteJSONResponse(w, r, http.StatusOK, report)
}
