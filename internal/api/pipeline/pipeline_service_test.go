package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/cleaner"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/identifier"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

func setupPipeline(t *testing.T) (*ServiceImpl, *dataset.FileRepository, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := dataset.NewFileRepository(dataset.Layout{BaseDir: dir}, logger)
	svc := NewServiceImpl(repo,
		cleaner.NewServiceImpl(logger),
		identifier.NewServiceImpl(logger),
		validator.NewServiceImpl(repo, logger),
		logger)
	return svc, repo, dir
}

func writeRaw(t *testing.T, dir string, category types.Category, content string) {
	t.Helper()
	path := filepath.Join(dir, "raw_data", fmt.Sprintf("sg_%s.csv", category))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const rawAttractions = "\xEF\xBB\xBF名称,主类型,门票(元),景点特色说明\n" +
	"丹霞山,自然,50-100,\"世界地质公园,红色砂砾岩\"\n" +
	"南华寺,历史,免费,禅宗祖庭\n"

const rawFood = "店名,人均,推荐菜\n" +
	"老码头火锅(风度店),¥80,毛肚 鸭肠\n" +
	"凯撒牛排,120,黑椒牛排\n"

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("one malformed category does not block the others", func(t *testing.T) {
		svc, repo, dir := setupPipeline(t)
		writeRaw(t, dir, types.CategoryAttractions, rawAttractions)
		writeRaw(t, dir, types.CategoryFood, rawFood)
		writeRaw(t, dir, types.CategoryCulture, "名称,类别,级别\n香火龙,民\"俗,国家非遗\n")

		summary := svc.Run(ctx)
		require.Len(t, summary.Outcomes, 3)
		assert.NotEmpty(t, summary.RunID)
		assert.True(t, summary.Failed())

		attractions := summary.Outcomes[0]
		assert.False(t, attractions.Failed)
		assert.Equal(t, 2, attractions.Identified)

		culture := summary.Outcomes[2]
		assert.True(t, culture.Failed)
		assert.Equal(t, "malformed-input", culture.ErrorKind)
		assert.Equal(t, dataset.MalformedHint, culture.Hint)

		require.Len(t, summary.Validation, 3)
		assert.Equal(t, types.StatusValid, summary.Validation[0].Status)
		assert.Empty(t, summary.Validation[0].Issues)
		assert.Equal(t, types.StatusValid, summary.Validation[1].Status)
		assert.Equal(t, types.StatusSkipped, summary.Validation[2].Status)

		processed, _, err := repo.Load(ctx, dataset.StageProcessed, types.CategoryAttractions)
		require.NoError(t, err)
		first := processed.Rows[0]
		assert.Equal(t, "50", first[types.ColTicketMin])
		assert.Equal(t, "100", first[types.ColTicketMax])
		assert.Equal(t, "世界地质公园，红色砂砾岩", first[types.ColFeature])
		assert.Regexp(t, `^SG-AN-[0-9A-F]{4}-0001$`, first[types.IdentifierColumn])
		assert.Regexp(t, `^SG-AH-[0-9A-F]{4}-0002$`, processed.Rows[1][types.IdentifierColumn])

		food, _, err := repo.Load(ctx, dataset.StageProcessed, types.CategoryFood)
		require.NoError(t, err)
		assert.Equal(t, "64", food.Rows[0][types.ColSpendMin])
		assert.Equal(t, "144", food.Rows[0][types.ColSpendMax])
		assert.Regexp(t, `^SG-FH-[0-9A-F]{4}-0001$`, food.Rows[0][types.IdentifierColumn])
		assert.Regexp(t, `^SG-FW-[0-9A-F]{4}-0002$`, food.Rows[1][types.IdentifierColumn])
	})

	t.Run("missing raw file is reported", func(t *testing.T) {
		svc, _, dir := setupPipeline(t)
		writeRaw(t, dir, types.CategoryFood, rawFood)

		summary := svc.Run(ctx, types.CategoryAttractions, types.CategoryFood)
		require.Len(t, summary.Outcomes, 2)
		assert.Equal(t, "missing-input", summary.Outcomes[0].ErrorKind)
		assert.False(t, summary.Outcomes[1].Failed)
	})

	t.Run("stale output of a failed category is not reported valid", func(t *testing.T) {
		svc, _, dir := setupPipeline(t)
		writeRaw(t, dir, types.CategoryAttractions, rawAttractions)
		first := svc.Run(ctx, types.CategoryAttractions)
		require.False(t, first.Failed())
		require.Equal(t, types.StatusValid, first.Validation[0].Status)

		require.NoError(t, os.Remove(filepath.Join(dir, "raw_data", "sg_attractions.csv")))
		second := svc.Run(ctx, types.CategoryAttractions)
		require.Len(t, second.Validation, 1)
		assert.Equal(t, "missing-input", second.Outcomes[0].ErrorKind)
		assert.Equal(t, types.StatusSkipped, second.Validation[0].Status)
		assert.Contains(t, second.Validation[0].Message, "missing-input")
	})

	t.Run("only requested categories are validated", func(t *testing.T) {
		svc, _, dir := setupPipeline(t)
		writeRaw(t, dir, types.CategoryFood, rawFood)

		summary := svc.Run(ctx, types.CategoryFood)
		require.Len(t, summary.Validation, 1)
		assert.Equal(t, types.CategoryFood, summary.Validation[0].Category)
		assert.Equal(t, types.StatusValid, summary.Validation[0].Status)
	})

	t.Run("rerun on unchanged input gives identical identifiers", func(t *testing.T) {
		svc, repo, dir := setupPipeline(t)
		writeRaw(t, dir, types.CategoryAttractions, rawAttractions)

		svc.Run(ctx, types.CategoryAttractions)
		first, _, err := repo.Load(ctx, dataset.StageProcessed, types.CategoryAttractions)
		require.NoError(t, err)

		svc.Run(ctx, types.CategoryAttractions)
		second, _, err := repo.Load(ctx, dataset.StageProcessed, types.CategoryAttractions)
		require.NoError(t, err)

		for i := range first.Rows {
			assert.Equal(t, first.Rows[i][types.IdentifierColumn], second.Rows[i][types.IdentifierColumn])
		}
	})
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "missing-input", ErrorKind(fmt.Errorf("x: %w", types.ErrMissingInput)))
	assert.Equal(t, "malformed-input", ErrorKind(fmt.Errorf("x: %w", types.ErrMalformedInput)))
	assert.Equal(t, "missing-columns", ErrorKind(types.ErrMissingColumns))
	assert.Equal(t, "error", ErrorKind(errors.New("disk full")))
}
