package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/app/observability/metrics"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service re-reads processed outputs and reports on their integrity.
type Service interface {
	Validate(ctx context.Context, category types.Category) types.ValidationReport
	ValidateAll(ctx context.Context) []types.ValidationReport
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   dataset.Repository
}

func NewServiceImpl(repo dataset.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// ValidateAll validates every category; a failure in one never stops the rest.
func (s *ServiceImpl) ValidateAll(ctx context.Context) []types.ValidationReport {
	reports := make([]types.ValidationReport, 0, len(types.Categories))
	for _, c := range types.Categories {
		reports = append(reports, s.Validate(ctx, c))
	}
	return reports
}

func (s *ServiceImpl) Validate(ctx context.Context, category types.Category) types.ValidationReport {
	ctx, span := otel.Tracer("ValidatorService").Start(ctx, "Validate", trace.WithAttributes(
		attribute.String("category", category.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Validate"), slog.String("category", category.String()))
	report := types.ValidationReport{
		Category: category,
		File:     dataset.ProcessedFileName(category),
		Path:     s.repo.Path(dataset.StageProcessed, category),
		Issues:   []string{},
	}

	table, _, err := s.repo.Load(ctx, dataset.StageProcessed, category)
	switch {
	case errors.Is(err, types.ErrMissingInput):
		report.Status = types.StatusMissing
		report.Message = fmt.Sprintf("file not found: %s", report.Path)
		l.WarnContext(ctx, "Processed file missing", slog.String("path", report.Path))
		span.SetAttributes(attribute.String("status", string(report.Status)))
		return report
	case err != nil:
		report.Status = types.StatusError
		report.Message = err.Error()
		l.ErrorContext(ctx, "Failed to read processed file", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return report
	}

	report.Rows = table.Len()
	report.Issues = Check(table)
	if len(report.Issues) == 0 {
		report.Status = types.StatusValid
	} else {
		report.Status = types.StatusIssues
		metrics.Get().ValidationIssuesTotal.Add(ctx, int64(len(report.Issues)),
			metric.WithAttributes(attribute.String("category", category.String())))
		l.WarnContext(ctx, "Validation found issues", slog.Any("issues", report.Issues))
	}

	span.SetAttributes(attribute.String("status", string(report.Status)))
	span.SetStatus(codes.Ok, "")
	return report
}

// Check runs the uniqueness and completeness checks on a loaded table and
// returns human-readable issues.
func Check(table *types.Table) []string {
	issues := []string{}
	total := table.Len()

	if !table.HasColumn(types.IdentifierColumn) {
		issues = append(issues, fmt.Sprintf("identifier column %s is missing", types.IdentifierColumn))
	} else {
		distinct := make(map[string]struct{}, total)
		nulls := 0
		for _, row := range table.Rows {
			id, ok := row.Value(types.IdentifierColumn)
			if !ok {
				nulls++
				continue
			}
			distinct[id] = struct{}{}
		}
		if dup := total - nulls - len(distinct); dup > 0 {
			issues = append(issues, fmt.Sprintf("%d duplicate identifiers", dup))
		}
		if nulls > 0 {
			issues = append(issues, fmt.Sprintf("%d rows without identifier", nulls))
		}
	}

	for _, col := range table.Category.RequiredColumns() {
		if !table.HasColumn(col) {
			issues = append(issues, fmt.Sprintf("missing required column %s", col))
			continue
		}
		nulls := 0
		for _, row := range table.Rows {
			if row.IsNull(col) {
				nulls++
			}
		}
		if nulls > 0 {
			issues = append(issues, fmt.Sprintf("column %s has %d null values", col, nulls))
		}
	}
	return issues
}
