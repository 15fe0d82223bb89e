package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PipelineRowsTotal           metric.Int64Counter
	PipelineCategoryFailures    metric.Int64Counter
	IdentifiersAssignedTotal    metric.Int64Counter
	ValidationIssuesTotal       metric.Int64Counter
	CollaboratorRequestDuration metric.Float64Histogram
	CollaboratorFallbacksTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed so the exporter sees them.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ShaoguanTravelPlanner")
		var err error
		m := &AppMetrics{}

		m.PipelineRowsTotal, err = meter.Int64Counter(
			"pipeline_rows_total",
			metric.WithDescription("Rows written by the data pipeline, by category and stage"),
			metric.WithUnit("{row}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_rows_total: %v", err)
		}

		m.PipelineCategoryFailures, err = meter.Int64Counter(
			"pipeline_category_failures_total",
			metric.WithDescription("Category batches aborted by the pipeline"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_category_failures_total: %v", err)
		}

		m.IdentifiersAssignedTotal, err = meter.Int64Counter(
			"identifiers_assigned_total",
			metric.WithDescription("Identifiers assigned to cleaned records"),
			metric.WithUnit("{identifier}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create identifiers_assigned_total: %v", err)
		}

		m.ValidationIssuesTotal, err = meter.Int64Counter(
			"validation_issues_total",
			metric.WithDescription("Issues found by the output validator"),
			metric.WithUnit("{issue}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create validation_issues_total: %v", err)
		}

		m.CollaboratorRequestDuration, err = meter.Float64Histogram(
			"collaborator_request_duration_seconds",
			metric.WithDescription("Latency of weather and chat service calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create collaborator_request_duration_seconds: %v", err)
		}

		m.CollaboratorFallbacksTotal, err = meter.Int64Counter(
			"collaborator_fallbacks_total",
			metric.WithDescription("Times a simulated answer replaced a failed collaborator call"),
			metric.WithUnit("{fallback}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create collaborator_fallbacks_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them against the current global
// provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
