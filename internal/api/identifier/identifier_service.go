package identifier

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

type Service interface {
	Assign(ctx context.Context, cleaned *types.Table) (*types.Table, error)
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// Assign returns a copy of the table with the identifier column first. Each
// call is its own batch: the sequence starts again at 0001.
func (s *ServiceImpl) Assign(ctx context.Context, cleaned *types.Table) (*types.Table, error) {
	ctx, span := otel.Tracer("IdentifierService").Start(ctx, "Assign", trace.WithAttributes(
		attribute.String("category", cleaned.Category.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Assign"), slog.String("category", cleaned.Category.String()))

	category := cleaned.Category
	if category.TypeCode() == "" {
		err := fmt.Errorf("%w: %q", types.ErrUnknownCategory, category)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown category")
		return nil, err
	}
	if missing := cleaned.MissingColumns(category.NameColumn(), category.SubtypeColumn()); len(missing) > 0 {
		err := fmt.Errorf("%w: %v", types.ErrMissingColumns, missing)
		l.ErrorContext(ctx, "Cannot assign identifiers", slog.Any("missing", missing))
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing columns")
		return nil, err
	}

	out := cleaned.Clone()
	if !out.HasColumn(types.IdentifierColumn) {
		out.Columns = append([]string{types.IdentifierColumn}, out.Columns...)
	}

	gen := NewGenerator(category)
	for _, row := range out.Rows {
		row[types.IdentifierColumn] = gen.Next(row)
	}

	l.InfoContext(ctx, "Assigned identifiers", slog.Int("count", gen.Sequence()))
	span.SetAttributes(attribute.Int("assigned", gen.Sequence()))
	span.SetStatus(codes.Ok, "")
	return out, nil
}
