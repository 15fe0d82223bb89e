package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// Stage selects one of the three directories of the data layout.
type Stage string

const (
	StageRaw       Stage = "raw"
	StageCleaned   Stage = "cleaned"
	StageProcessed Stage = "processed"
)

var _ Repository = (*FileRepository)(nil)

// Repository persists category tables as flat delimited files.
type Repository interface {
	Load(ctx context.Context, stage Stage, category types.Category) (*types.Table, ReadStats, error)
	Save(ctx context.Context, stage Stage, table *types.Table) (string, error)
	Path(stage Stage, category types.Category) string
}

// Layout is the fixed directory convention under one base directory:
// raw_data/sg_<cat>.csv, cleaned_data/sg_<cat>_cleaned.csv and
// processed_data/<cat>_with_id.csv.
type Layout struct {
	BaseDir string
}

func (l Layout) Path(stage Stage, category types.Category) string {
	switch stage {
	case StageRaw:
		return filepath.Join(l.BaseDir, "raw_data", fmt.Sprintf("sg_%s.csv", category))
	case StageCleaned:
		return filepath.Join(l.BaseDir, "cleaned_data", fmt.Sprintf("sg_%s_cleaned.csv", category))
	default:
		return filepath.Join(l.BaseDir, "processed_data", ProcessedFileName(category))
	}
}

// ProcessedFileName is the file name the validator reports on.
func ProcessedFileName(category types.Category) string {
	return fmt.Sprintf("%s_with_id.csv", category)
}

type FileRepository struct {
	logger *slog.Logger
	layout Layout
}

func NewFileRepository(layout Layout, logger *slog.Logger) *FileRepository {
	return &FileRepository{
		logger: logger,
		layout: layout,
	}
}

func (r *FileRepository) Path(stage Stage, category types.Category) string {
	return r.layout.Path(stage, category)
}

func (r *FileRepository) Load(ctx context.Context, stage Stage, category types.Category) (*types.Table, ReadStats, error) {
	ctx, span := otel.Tracer("DatasetRepository").Start(ctx, "Load", trace.WithAttributes(
		attribute.String("stage", string(stage)),
		attribute.String("category", category.String()),
	))
	defer span.End()

	path := r.Path(stage, category)
	l := r.logger.With(slog.String("method", "Load"), slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", types.ErrMissingInput, path)
		} else {
			err = fmt.Errorf("open %s: %w", path, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, ReadStats{}, err
	}
	defer f.Close()

	table, stats, err := ReadCSV(f, category)
	if err != nil {
		l.ErrorContext(ctx, "Failed to parse delimited file", slog.Any("error", err), slog.String("hint", MalformedHint))
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range stats.Warnings {
		l.WarnContext(ctx, "Skipping bad line", slog.String("detail", w))
	}

	l.DebugContext(ctx, "Loaded table", slog.Int("rows", stats.Rows), slog.Int("skipped", stats.Skipped))
	span.SetAttributes(attribute.Int("rows", stats.Rows))
	span.SetStatus(codes.Ok, "")
	return table, stats, nil
}

// Save writes the table through a temporary file and renames it in place.
func (r *FileRepository) Save(ctx context.Context, stage Stage, table *types.Table) (string, error) {
	ctx, span := otel.Tracer("DatasetRepository").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("stage", string(stage)),
		attribute.String("category", table.Category.String()),
	))
	defer span.End()

	path := r.Path(stage, table.Category)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.csv")
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, table); err != nil {
		tmp.Close()
		span.RecordError(err)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("rename into %s: %w", path, err)
	}

	r.logger.InfoContext(ctx, "Saved table",
		slog.String("path", path),
		slog.String("category", table.Category.String()),
		slog.Int("rows", table.Len()))
	span.SetStatus(codes.Ok, "")
	return path, nil
}
