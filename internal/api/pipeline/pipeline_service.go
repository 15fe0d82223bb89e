package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/app/observability/metrics"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/cleaner"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/identifier"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service drives raw files through cleaning, identification and validation.
type Service interface {
	// Clean reads the raw file of one category and writes the cleaned file.
	Clean(ctx context.Context, category types.Category) types.CategoryOutcome
	// Identify reads the cleaned file of one category and writes the
	// processed file with identifiers.
	Identify(ctx context.Context, category types.Category) types.CategoryOutcome
	// Run processes the given categories (all when empty) one at a time and
	// validates every output afterwards.
	Run(ctx context.Context, categories ...types.Category) types.RunSummary
}

type ServiceImpl struct {
	logger     *slog.Logger
	repo       dataset.Repository
	cleaner    cleaner.Service
	identifier identifier.Service
	validator  validator.Service
}

func NewServiceImpl(repo dataset.Repository,
	cleanerService cleaner.Service,
	identifierService identifier.Service,
	validatorService validator.Service,
	logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		cleaner:    cleanerService,
		identifier: identifierService,
		validator:  validatorService,
	}
}

func (s *ServiceImpl) Run(ctx context.Context, categories ...types.Category) types.RunSummary {
	runID := uuid.New()
	ctx, span := otel.Tracer("PipelineService").Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Run"), slog.String("run_id", runID.String()))
	if len(categories) == 0 {
		categories = types.Categories
	}

	summary := types.RunSummary{
		RunID:     runID.String(),
		StartedAt: time.Now(),
	}
	l.InfoContext(ctx, "Pipeline run started", slog.Any("categories", categories))

	for _, category := range categories {
		outcome := s.Clean(ctx, category)
		if !outcome.Failed {
			identified := s.Identify(ctx, category)
			identified.RowsRead = outcome.RowsRead
			identified.RowsSkipped = outcome.RowsSkipped
			identified.CleanedPath = outcome.CleanedPath
			outcome = identified
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.Validation = s.validateOutcomes(ctx, summary.Outcomes)
	summary.Duration = time.Since(summary.StartedAt)

	if summary.Failed() {
		span.SetStatus(codes.Error, "one or more categories failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	l.InfoContext(ctx, "Pipeline run finished",
		slog.Duration("duration", summary.Duration),
		slog.Bool("failed", summary.Failed()))
	return summary
}

// validateOutcomes checks only the outputs this run wrote.
func (s *ServiceImpl) validateOutcomes(ctx context.Context, outcomes []types.CategoryOutcome) []types.ValidationReport {
	reports := make([]types.ValidationReport, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Failed {
			reports = append(reports, s.validator.Validate(ctx, o.Category))
			continue
		}
		reports = append(reports, types.ValidationReport{
			Category: o.Category,
			File:     dataset.ProcessedFileName(o.Category),
			Path:     s.repo.Path(dataset.StageProcessed, o.Category),
			Status:   types.StatusSkipped,
			Message:  fmt.Sprintf("not validated: run failed with %s", o.ErrorKind),
			Issues:   []string{},
		})
	}
	return reports
}

func (s *ServiceImpl) Clean(ctx context.Context, category types.Category) types.CategoryOutcome {
	ctx, span := otel.Tracer("PipelineService").Start(ctx, "Clean", trace.WithAttributes(
		attribute.String("category", category.String()),
	))
	defer span.End()

	outcome := types.CategoryOutcome{Category: category}
	raw, stats, err := s.repo.Load(ctx, dataset.StageRaw, category)
	if err != nil {
		return s.fail(ctx, span, outcome, "clean", err)
	}
	outcome.RowsRead = stats.Rows
	outcome.RowsSkipped = stats.Skipped

	cleaned, _, err := s.cleaner.Clean(ctx, raw)
	if err != nil {
		return s.fail(ctx, span, outcome, "clean", err)
	}
	path, err := s.repo.Save(ctx, dataset.StageCleaned, cleaned)
	if err != nil {
		return s.fail(ctx, span, outcome, "clean", err)
	}
	outcome.CleanedPath = path

	metrics.Get().PipelineRowsTotal.Add(ctx, int64(cleaned.Len()), metric.WithAttributes(
		attribute.String("category", category.String()),
		attribute.String("stage", "cleaned"),
	))
	span.SetStatus(codes.Ok, "")
	return outcome
}

func (s *ServiceImpl) Identify(ctx context.Context, category types.Category) types.CategoryOutcome {
	ctx, span := otel.Tracer("PipelineService").Start(ctx, "Identify", trace.WithAttributes(
		attribute.String("category", category.String()),
	))
	defer span.End()

	outcome := types.CategoryOutcome{Category: category}
	cleaned, stats, err := s.repo.Load(ctx, dataset.StageCleaned, category)
	if err != nil {
		return s.fail(ctx, span, outcome, "identify", err)
	}
	outcome.RowsRead = stats.Rows

	processed, err := s.identifier.Assign(ctx, cleaned)
	if err != nil {
		return s.fail(ctx, span, outcome, "identify", err)
	}
	path, err := s.repo.Save(ctx, dataset.StageProcessed, processed)
	if err != nil {
		return s.fail(ctx, span, outcome, "identify", err)
	}
	outcome.OutputPath = path
	outcome.Identified = processed.Len()

	attrs := metric.WithAttributes(attribute.String("category", category.String()))
	metrics.Get().IdentifiersAssignedTotal.Add(ctx, int64(processed.Len()), attrs)
	metrics.Get().PipelineRowsTotal.Add(ctx, int64(processed.Len()), metric.WithAttributes(
		attribute.String("category", category.String()),
		attribute.String("stage", "processed"),
	))
	span.SetStatus(codes.Ok, "")
	return outcome
}

// fail records an aborted category. The error is reported, never returned,
// so the remaining categories still run.
func (s *ServiceImpl) fail(ctx context.Context, span trace.Span, outcome types.CategoryOutcome, stage string, err error) types.CategoryOutcome {
	outcome.Failed = true
	outcome.ErrorKind = ErrorKind(err)
	outcome.Error = err.Error()
	if errors.Is(err, types.ErrMalformedInput) {
		outcome.Hint = dataset.MalformedHint
	}

	s.logger.ErrorContext(ctx, "Category aborted",
		slog.String("category", outcome.Category.String()),
		slog.String("stage", stage),
		slog.String("kind", outcome.ErrorKind),
		slog.Any("error", err))
	metrics.Get().PipelineCategoryFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", outcome.Category.String()),
		attribute.String("kind", outcome.ErrorKind),
	))
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome.ErrorKind)
	return outcome
}

// ErrorKind classifies a category-level failure.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, types.ErrMissingInput):
		return "missing-input"
	case errors.Is(err, types.ErrMalformedInput):
		return "malformed-input"
	case errors.Is(err, types.ErrMissingColumns):
		return "missing-columns"
	case errors.Is(err, types.ErrUnknownCategory):
		return "unknown-category"
	default:
		return "error"
	}
}
