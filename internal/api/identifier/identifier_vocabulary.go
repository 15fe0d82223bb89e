package identifier

import (
	"strings"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// OtherCode is used for absent or unrecognised subtypes.
const OtherCode = "O"

var vocabularies = map[types.Category]map[string]string{
	types.CategoryAttractions: {
		"自然": "N",
		"历史": "H",
		"亲子": "K",
		"温泉": "S",
		"工业": "I",
	},
	types.CategoryFood: {
		"农家菜":  "N",
		"西餐":   "W",
		"粤菜":   "Y",
		"早茶":   "Z",
		"茶餐厅":  "C",
		"日式火锅": "R",
		"素食":   "S",
		"炖品":   "D",
		"火锅":   "H",
		"烧烤":   "B",
		"粥城":   "M",
		"点心":   "X",
	},
	types.CategoryCulture: {
		"民俗":   "M",
		"传统戏剧": "X",
		"传统技艺": "J",
		"传统舞蹈": "W",
		"手工艺":  "S",
		"非遗":   "F",
	},
}

// SubtypeCode resolves a subtype label to its code. Composite labels such as
// "自然/历史" resolve on their leading component. It never fails.
func SubtypeCode(category types.Category, label string) string {
	label = strings.TrimSpace(label)
	if head, _, found := strings.Cut(label, "/"); found {
		label = strings.TrimSpace(head)
	}
	if code, ok := vocabularies[category][label]; ok {
		return code
	}
	return OtherCode
}
