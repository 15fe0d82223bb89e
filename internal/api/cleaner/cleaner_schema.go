package cleaner

import "github.com/1457cus/shaoguan-travel-planner/internal/types"

// alias maps an alternate column name seen in older source files to its
// canonical name.
type alias struct {
	From string
	To   string
}

var schemaAliases = map[types.Category][]alias{
	types.CategoryAttractions: {
		{From: "景点名称", To: types.ColName},
		{From: "类型", To: types.ColMainType},
		{From: "景点类型", To: types.ColMainType},
		{From: "门票", To: types.ColTicket},
		{From: "门票价格", To: types.ColTicket},
		{From: "特色说明", To: types.ColFeature},
		{From: "景点特色", To: types.ColFeature},
		{From: "开放时间", To: types.ColOpenHours},
	},
	types.CategoryFood: {
		{From: "餐厅名称", To: types.ColStoreName},
		{From: "名称", To: types.ColStoreName},
		{From: "人均", To: types.ColAvgSpend},
		{From: "推荐菜", To: types.ColSignatureDish},
	},
	types.CategoryCulture: {
		{From: "项目名称", To: types.ColName},
		{From: "类型", To: types.ColHeritageType},
	},
}

// NormalizeSchema renames recognised aliases to canonical names. An alias is
// only applied when the canonical column is absent, so the first matching
// alias wins. It returns the renames performed as "from->to".
func NormalizeSchema(t *types.Table) []string {
	var renamed []string
	for _, a := range schemaAliases[t.Category] {
		if t.HasColumn(a.To) {
			continue
		}
		if t.RenameColumn(a.From, a.To) {
			renamed = append(renamed, a.From+"->"+a.To)
		}
	}
	return renamed
}
