package dataset

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

func setupRepository(t *testing.T) (*FileRepository, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewFileRepository(Layout{BaseDir: dir}, logger), dir
}

func TestReadCSV(t *testing.T) {
	t.Run("strips byte-order mark and trims header", func(t *testing.T) {
		input := "\xEF\xBB\xBF名称 ,门票(元)\n丹霞山,50-100\n"
		table, stats, err := ReadCSV(strings.NewReader(input), types.CategoryAttractions)
		require.NoError(t, err)
		assert.Equal(t, []string{"名称", "门票(元)"}, table.Columns)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "丹霞山", table.Rows[0]["名称"])
		assert.Equal(t, 1, stats.Rows)
	})

	t.Run("backslash escaped quotes and commas", func(t *testing.T) {
		input := "名称,景点特色说明\n南华寺,\"禅宗\\\"祖庭\\\",千年古刹\"\n"
		table, _, err := ReadCSV(strings.NewReader(input), types.CategoryAttractions)
		require.NoError(t, err)
		assert.Equal(t, `禅宗"祖庭",千年古刹`, table.Rows[0]["景点特色说明"])
	})

	t.Run("skips long rows and pads short rows", func(t *testing.T) {
		input := "名称,类别,级别\n香火龙,民俗,国家非遗\n太多,字段,在,这里\n短行\n"
		table, stats, err := ReadCSV(strings.NewReader(input), types.CategoryCulture)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 1, stats.Skipped)
		assert.Equal(t, 1, stats.Padded)
		assert.Len(t, stats.Warnings, 1)
		assert.Equal(t, "短行", table.Rows[1]["名称"])
		assert.True(t, table.Rows[1].IsNull("级别"))
	})

	t.Run("bare quote is malformed", func(t *testing.T) {
		input := "名称,备注\n香火龙,a\"b\n"
		_, _, err := ReadCSV(strings.NewReader(input), types.CategoryCulture)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrMalformedInput)
	})

	t.Run("empty file is malformed", func(t *testing.T) {
		_, _, err := ReadCSV(strings.NewReader(""), types.CategoryFood)
		assert.ErrorIs(t, err, types.ErrMalformedInput)
	})
}

func TestWriteCSV(t *testing.T) {
	table := types.NewTable(types.CategoryFood, []string{"店名", "特色菜"})
	table.Rows = append(table.Rows, types.Record{"店名": "老字号", "特色菜": "烧鹅,腊味"})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	back, _, err := ReadCSV(&buf, types.CategoryFood)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, "烧鹅,腊味", back.Rows[0]["特色菜"])
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing raw file", func(t *testing.T) {
		repo, _ := setupRepository(t)
		_, _, err := repo.Load(ctx, StageRaw, types.CategoryFood)
		assert.ErrorIs(t, err, types.ErrMissingInput)
	})

	t.Run("save then load processed", func(t *testing.T) {
		repo, dir := setupRepository(t)
		table := types.NewTable(types.CategoryCulture, []string{"名称", types.IdentifierColumn})
		table.Rows = append(table.Rows, types.Record{"名称": "香火龙", types.IdentifierColumn: "SG-CM-1A2B-0001"})

		path, err := repo.Save(ctx, StageProcessed, table)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "processed_data", "culture_with_id.csv"), path)

		loaded, _, err := repo.Load(ctx, StageProcessed, types.CategoryCulture)
		require.NoError(t, err)
		assert.Equal(t, table.Rows, loaded.Rows)
	})

	t.Run("layout paths", func(t *testing.T) {
		l := Layout{BaseDir: "data"}
		assert.Equal(t, filepath.Join("data", "raw_data", "sg_food.csv"), l.Path(StageRaw, types.CategoryFood))
		assert.Equal(t, filepath.Join("data", "cleaned_data", "sg_food_cleaned.csv"), l.Path(StageCleaned, types.CategoryFood))
		assert.Equal(t, filepath.Join("data", "processed_data", "food_with_id.csv"), l.Path(StageProcessed, types.CategoryFood))
	})
}
