package itinerary

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
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

// Preview answers with the assembled prompt, forecast and day plan without
// calling the chat service.
func (h *HandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Preview", "/api/v1/itinerary/preview", h.service.Preview)
}

// Generate answers with the full generated itinerary.
func (h *HandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "Generate", "/api/v1/itinerary", h.service.Generate)
}

func (h *HandlerImpl) serve(w http.ResponseWriter, r *http.Request, name, route string,
	run func(context.Context, types.ItineraryRequest) (*types.ItineraryResponse, error)) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", name))

	var req types.ItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := run(ctx, req)
	if err != nil {
		status := api.StatusForError(err)
		l.ErrorContext(ctx, "Itinerary request failed", slog.Int("status", status), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
