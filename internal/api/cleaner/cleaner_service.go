package cleaner

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service turns a raw category table into a cleaned one.
type Service interface {
	Clean(ctx context.Context, raw *types.Table) (*types.Table, Report, error)
}

// Report lists what the cleaner did to a table.
type Report struct {
	Renamed []string `json:"renamed,omitempty"`
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// Clean works on a copy; the raw table is left untouched.
func (s *ServiceImpl) Clean(ctx context.Context, raw *types.Table) (*types.Table, Report, error) {
	ctx, span := otel.Tracer("CleanerService").Start(ctx, "Clean", trace.WithAttributes(
		attribute.String("category", raw.Category.String()),
		attribute.Int("rows", raw.Len()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Clean"), slog.String("category", raw.Category.String()))

	if raw.Category.TypeCode() == "" {
		err := fmt.Errorf("%w: %q", types.ErrUnknownCategory, raw.Category)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown category")
		return nil, Report{}, err
	}

	table := raw.Clone()
	var report Report
	report.Renamed = NormalizeSchema(table)
	if len(report.Renamed) > 0 {
		l.InfoContext(ctx, "Renamed alias columns", slog.Any("renamed", report.Renamed))
	}

	for _, rule := range RulesFor(table.Category) {
		if missing := table.MissingColumns(rule.Requires...); len(missing) > 0 {
			l.WarnContext(ctx, "Skipping rule, input column absent",
				slog.String("rule", rule.Name), slog.Any("missing", missing))
			report.Skipped = append(report.Skipped, rule.Name)
			continue
		}
		rule.Apply(table)
		report.Applied = append(report.Applied, rule.Name)
	}

	l.DebugContext(ctx, "Cleaned table", slog.Int("rows", table.Len()), slog.Any("applied", report.Applied))
	span.SetStatus(codes.Ok, "")
	return table, report, nil
}
