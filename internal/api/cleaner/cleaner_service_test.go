package cleaner

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

func setupCleaner() *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewServiceImpl(logger)
}

func table(category types.Category, columns []string, rows ...types.Record) *types.Table {
	t := types.NewTable(category, columns)
	t.Rows = append(t.Rows, rows...)
	return t
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"免费", newRange(0, 0)},
		{"50-100", newRange(50, 100)},
		{"80", newRange(80, 80)},
		{"80元", newRange(80, 80)},
		{"¥ 35.5", newRange(35.5, 35.5)},
		{"酒店价格浮动", Range{}},
		{"价格浮动", Range{}},
		{"免费（酒店另计）", Range{}},
		{"", Range{}},
		{"10-20-30", Range{}},
		{"a-b", Range{}},
		{"100-50", Range{}},
		{"见官网", Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePriceRange(tt.in))
		})
	}
}

func TestRangeCellsAllOrNothing(t *testing.T) {
	low, high := Range{}.Cells()
	assert.Empty(t, low)
	assert.Empty(t, high)

	low, high = newRange(50, 100).Cells()
	assert.Equal(t, "50", low)
	assert.Equal(t, "100", high)
}

func TestParseSpendAndBand(t *testing.T) {
	tests := []struct {
		in        string
		wantSpend string
		wantBand  Range
	}{
		{"¥80", "80", newRange(64, 144)},
		{"￥45元", "45", newRange(36, 81)},
		{"35.5", "36", newRange(29, 65)},
		{"50-100", "50-100", newRange(50, 100)},
		{"¥50-100元", "50-100", newRange(50, 100)},
		{"免费", "0", newRange(0, 0)},
		{"60-60", "60-60", newRange(60, 60)},
		{"面议", "", Range{}},
		{"价格浮动", "", Range{}},
		{"100-50", "", Range{}},
		{"", "", Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spend, band := ParseSpend(tt.in)
			assert.Equal(t, tt.wantSpend, spend)
			assert.Equal(t, tt.wantBand, band)
		})
	}

	// 0.8 * 5 = 4, 1.8 * 5 = 9
	band := SpendBand(5)
	assert.Equal(t, 4.0, band.Low)
	assert.Equal(t, 9.0, band.High)
}

func TestParsePriceRangeRejectsNonFinite(t *testing.T) {
	for _, in := range []string{"NaN-NaN", "1-Inf", "NaN", "Inf", "-Inf"} {
		t.Run(in, func(t *testing.T) {
			r := ParsePriceRange(in)
			assert.False(t, r.Valid)
			low, high := r.Cells()
			assert.Empty(t, low)
			assert.Empty(t, high)
		})
	}
}

func TestFoodTypeAndBranch(t *testing.T) {
	assert.Equal(t, "火锅", FoodType("牛排火锅城"))
	assert.Equal(t, "西餐", FoodType("王牌牛排馆"))
	assert.Equal(t, "西餐", FoodType("凯撒西餐厅"))
	assert.Equal(t, "粤菜", FoodType("风度饭店"))

	assert.Equal(t, "老友记", StripBranch("老友记(风度路店)"))
	assert.Equal(t, "老友记", StripBranch("老友记（东堤店）"))
	assert.Equal(t, "好再来(总部)", StripBranch("好再来(总部)"))
}

func TestCultureNormalizers(t *testing.T) {
	assert.Equal(t, "民俗", CanonicalHeritageType(" 节庆民俗 "))
	assert.Equal(t, "民俗", CanonicalHeritageType("民俗节庆"))
	assert.Equal(t, "传统戏剧", CanonicalHeritageType("传统戏剧"))
	assert.Equal(t, "曲艺", CanonicalHeritageType("曲艺"))

	assert.Equal(t, "国家级", CanonicalLevel("第三批国家非遗"))
	assert.Equal(t, "市级", CanonicalLevel("市非遗"))
	assert.Equal(t, "省级", CanonicalLevel("省非遗"))
	assert.Equal(t, "县级", CanonicalLevel("县级"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "丹霞山", NormalizeText("\t丹霞山\r\n "))
	// NFC composes e + combining acute.
	assert.Equal(t, "caf\u00e9", NormalizeText("cafe\u0301"))
	// Full-width commas survive.
	assert.Equal(t, "山，水", NormalizeText("山，水"))
}

func TestClean(t *testing.T) {
	svc := setupCleaner()
	ctx := context.Background()

	t.Run("attractions", func(t *testing.T) {
		raw := table(types.CategoryAttractions,
			[]string{"名称", "类型", "门票", "开放时间", "景点特色说明"},
			types.Record{"名称": " 丹霞山 ", "类型": "自然", "门票": "50-100", "开放时间": "8:00-17:00,全年", "景点特色说明": `世界"地质"公园,红石`},
			types.Record{"名称": "云门寺", "类型": "历史", "门票": "酒店价格浮动", "开放时间": "", "景点特色说明": ""},
		)
		cleaned, report, err := svc.Clean(ctx, raw)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"类型->主类型", "门票->门票(元)", "开放时间->开放时间段"}, report.Renamed)
		assert.Empty(t, report.Skipped)

		first := cleaned.Rows[0]
		assert.Equal(t, "丹霞山", first[types.ColName])
		assert.Equal(t, "自然", first[types.ColMainType])
		assert.Equal(t, "50", first[types.ColTicketMin])
		assert.Equal(t, "100", first[types.ColTicketMax])
		assert.Equal(t, "8:00-17:00，全年", first[types.ColOpenHours])
		assert.Equal(t, "世界'地质'公园，红石", first[types.ColFeature])

		second := cleaned.Rows[1]
		assert.True(t, second.IsNull(types.ColTicketMin))
		assert.True(t, second.IsNull(types.ColTicketMax))

		// input untouched
		assert.Equal(t, " 丹霞山 ", raw.Rows[0]["名称"])
		assert.True(t, raw.HasColumn("类型"))
	})

	t.Run("food", func(t *testing.T) {
		raw := table(types.CategoryFood,
			[]string{"店名", "人均", "推荐菜"},
			types.Record{"店名": "老码头火锅(风度店)", "人均": "¥80", "推荐菜": "毛肚  鸭肠 黄喉"},
			types.Record{"店名": "粤味轩", "人均": "不详", "推荐菜": ""},
			types.Record{"店名": "西餐厅", "人均": "50-100", "推荐菜": "牛排"},
			types.Record{"店名": "农家小馆", "人均": "免费", "推荐菜": ""},
		)
		cleaned, _, err := svc.Clean(ctx, raw)
		require.NoError(t, err)

		hotpot := cleaned.Rows[0]
		assert.Equal(t, "老码头火锅", hotpot[types.ColStoreName])
		assert.Equal(t, "80", hotpot[types.ColAvgSpend])
		assert.Equal(t, "64", hotpot[types.ColSpendMin])
		assert.Equal(t, "144", hotpot[types.ColSpendMax])
		assert.Equal(t, "火锅", hotpot[types.ColFoodType])
		assert.Equal(t, "毛肚、鸭肠、黄喉", hotpot[types.ColSignatureDish])

		unknown := cleaned.Rows[1]
		assert.True(t, unknown.IsNull(types.ColAvgSpend))
		assert.True(t, unknown.IsNull(types.ColSpendMin))
		assert.True(t, unknown.IsNull(types.ColSpendMax))
		assert.Equal(t, "粤菜", unknown[types.ColFoodType])

		ranged := cleaned.Rows[2]
		assert.Equal(t, "50-100", ranged[types.ColAvgSpend])
		assert.Equal(t, "50", ranged[types.ColSpendMin])
		assert.Equal(t, "100", ranged[types.ColSpendMax])

		free := cleaned.Rows[3]
		assert.Equal(t, "0", free[types.ColAvgSpend])
		assert.Equal(t, "0", free[types.ColSpendMin])
		assert.Equal(t, "0", free[types.ColSpendMax])
	})

	t.Run("culture", func(t *testing.T) {
		raw := table(types.CategoryCulture,
			[]string{"名称", "类别", "级别", "传承地"},
			types.Record{"名称": " 香火龙 ", "类别": "节庆民俗", "级别": "国家非遗", "传承地": "\"乳源\""},
		)
		cleaned, _, err := svc.Clean(ctx, raw)
		require.NoError(t, err)

		row := cleaned.Rows[0]
		assert.Equal(t, "香火龙", row[types.ColName])
		assert.Equal(t, "民俗", row[types.ColHeritageType])
		assert.Equal(t, "国家级", row[types.ColLevel])
		assert.Equal(t, "乳源", row[types.ColHeritageSite])
		assert.True(t, cleaned.HasColumn(types.ColRemarks))
		assert.Equal(t, "", row[types.ColRemarks])
	})

	t.Run("rule with absent input is skipped", func(t *testing.T) {
		raw := table(types.CategoryFood, []string{"店名"}, types.Record{"店名": "西餐厅"})
		cleaned, report, err := svc.Clean(ctx, raw)
		require.NoError(t, err)
		assert.Contains(t, report.Skipped, "average_spend")
		assert.False(t, cleaned.HasColumn(types.ColSpendMin))
		assert.Equal(t, "西餐", cleaned.Rows[0][types.ColFoodType])
	})

	t.Run("unknown category", func(t *testing.T) {
		_, _, err := svc.Clean(ctx, table("hotels", []string{"名称"}))
		assert.ErrorIs(t, err, types.ErrUnknownCategory)
	})
}
