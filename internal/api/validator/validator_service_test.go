package validator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/dataset"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// MockRepository is a mock implementation of dataset.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context, stage dataset.Stage, category types.Category) (*types.Table, dataset.ReadStats, error) {
	args := m.Called(ctx, stage, category)
	if args.Get(0) == nil {
		return nil, dataset.ReadStats{}, args.Error(2)
	}
	return args.Get(0).(*types.Table), args.Get(1).(dataset.ReadStats), args.Error(2)
}

func (m *MockRepository) Save(ctx context.Context, stage dataset.Stage, table *types.Table) (string, error) {
	args := m.Called(ctx, stage, table)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) Path(stage dataset.Stage, category types.Category) string {
	return filepath.Join("processed_data", dataset.ProcessedFileName(category))
}

func setupValidator(repo dataset.Repository) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewServiceImpl(repo, logger)
}

func cultureTable(rows ...types.Record) *types.Table {
	t := types.NewTable(types.CategoryCulture, []string{types.IdentifierColumn, types.ColName, types.ColHeritageType, types.ColLevel})
	t.Rows = rows
	return t
}

func TestCheck(t *testing.T) {
	t.Run("clean table has no issues", func(t *testing.T) {
		tbl := cultureTable(
			types.Record{types.IdentifierColumn: "SG-CM-0001-0001", types.ColName: "香火龙", types.ColHeritageType: "民俗", types.ColLevel: "国家级"},
			types.Record{types.IdentifierColumn: "SG-CX-0002-0002", types.ColName: "采茶戏", types.ColHeritageType: "传统戏剧", types.ColLevel: "省级"},
		)
		assert.Empty(t, Check(tbl))
	})

	t.Run("duplicates and nulls", func(t *testing.T) {
		tbl := cultureTable(
			types.Record{types.IdentifierColumn: "SG-CM-0001-0001", types.ColName: "香火龙", types.ColHeritageType: "民俗", types.ColLevel: ""},
			types.Record{types.IdentifierColumn: "SG-CM-0001-0001", types.ColName: "香火龙", types.ColHeritageType: "民俗", types.ColLevel: " "},
		)
		issues := Check(tbl)
		assert.Contains(t, issues, "1 duplicate identifiers")
		assert.Contains(t, issues, "column 级别 has 2 null values")
	})

	t.Run("missing columns", func(t *testing.T) {
		tbl := types.NewTable(types.CategoryFood, []string{types.ColStoreName})
		tbl.Rows = []types.Record{{types.ColStoreName: "老码头"}}
		issues := Check(tbl)
		assert.Contains(t, issues, "identifier column 唯一编码 is missing")
		assert.Contains(t, issues, "missing required column 人均消费")
		assert.Contains(t, issues, "missing required column 类型")
	})
}

func TestValidateAll(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := setupValidator(repo)

	valid := cultureTable(types.Record{types.IdentifierColumn: "SG-CM-0001-0001", types.ColName: "香火龙", types.ColHeritageType: "民俗", types.ColLevel: "国家级"})

	repo.On("Load", mock.Anything, dataset.StageProcessed, types.CategoryAttractions).
		Return(nil, dataset.ReadStats{}, types.ErrMissingInput)
	repo.On("Load", mock.Anything, dataset.StageProcessed, types.CategoryFood).
		Return(nil, dataset.ReadStats{}, errors.New("malformed delimited input: bare quote"))
	repo.On("Load", mock.Anything, dataset.StageProcessed, types.CategoryCulture).
		Return(valid, dataset.ReadStats{Rows: 1}, nil)

	reports := svc.ValidateAll(ctx)
	require.Len(t, reports, 3)

	assert.Equal(t, types.StatusMissing, reports[0].Status)
	assert.Contains(t, reports[0].Message, "attractions_with_id.csv")

	assert.Equal(t, types.StatusError, reports[1].Status)
	assert.Contains(t, reports[1].Message, "bare quote")

	assert.Equal(t, types.StatusValid, reports[2].Status)
	assert.Empty(t, reports[2].Issues)
	assert.Equal(t, 1, reports[2].Rows)

	assert.False(t, AllValid(reports))
	repo.AssertExpectations(t)
}

func TestRender(t *testing.T) {
	reports := []types.ValidationReport{
		{Category: types.CategoryCulture, File: "culture_with_id.csv", Path: "p/culture_with_id.csv", Status: types.StatusIssues, Rows: 2, Issues: []string{"column 级别 has 2 null values"}},
		{Category: types.CategoryFood, File: "food_with_id.csv", Status: types.StatusValid, Rows: 5, Issues: []string{}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, reports))

	out := buf.String()
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "culture   culture_with_id.csv")
	assert.Contains(t, out, "  - column 级别 has 2 null values")
}
