package prompt

import "github.com/1457cus/shaoguan-travel-planner/internal/types"

// Fixed examples used when a category pool is empty.
var fallbackExamples = map[types.Language]struct {
	Attractions []Item
	Foods       []Item
	Culture     []Item
}{
	types.LanguageZH: {
		Attractions: []Item{
			{Name: "丹霞山", Kind: "自然", Detail: "世界地质公园，红色砂砾岩地貌"},
			{Name: "南华寺", Kind: "历史", Detail: "禅宗六祖惠能弘法道场"},
			{Name: "珠玑古巷", Kind: "历史", Detail: "广府人南迁的重要驿站"},
		},
		Foods: []Item{
			{Name: "韶关酿豆腐", Kind: "粤菜", Detail: "客家酿豆腐"},
			{Name: "南雄板鸭", Kind: "粤菜", Detail: "腊味板鸭"},
		},
		Culture: []Item{
			{Name: "香火龙", Kind: "民俗"},
			{Name: "粤北采茶戏", Kind: "传统戏剧"},
		},
	},
	types.LanguageEN: {
		Attractions: []Item{
			{Name: "Danxia Mountain", Kind: "Nature", Detail: "UNESCO Global Geopark with red sandstone landforms"},
			{Name: "Nanhua Temple", Kind: "History", Detail: "Seat of the Sixth Patriarch of Chan Buddhism"},
			{Name: "Zhuji Ancient Lane", Kind: "History", Detail: "Historic waypoint of Cantonese migration"},
		},
		Foods: []Item{
			{Name: "Shaoguan stuffed tofu", Kind: "Cantonese", Detail: "Hakka-style stuffed tofu"},
			{Name: "Nanxiong cured duck", Kind: "Cantonese", Detail: "Air-dried pressed duck"},
		},
		Culture: []Item{
			{Name: "Fire Dragon Dance", Kind: "Folk custom"},
			{Name: "Northern Guangdong Tea-picking Opera", Kind: "Traditional opera"},
		},
	},
}

// Special-needs advisories in their fixed output order.
var needSentences = map[types.Language]struct {
	Elderly, Children, Cooling string
}{
	types.LanguageZH: {
		Elderly:  "同行有老人，请控制每日步行强度，优先安排交通便利、设施完善的景点，并预留午休时间。",
		Children: "同行有儿童，请加入亲子互动项目，放慢行程节奏，并选择适合儿童的餐饮。",
		Cooling:  "需要避暑，请优先推荐漂流、森林、峡谷、瀑布等清凉景点，避开正午高温时段的户外活动。",
	},
	types.LanguageEN: {
		Elderly:  "Travelling with elderly companions: keep daily walking light, favour easily reached sites with good facilities, and leave time for a midday rest.",
		Children: "Travelling with children: include family-friendly activities, slow the pace, and choose child-friendly meals.",
		Cooling:  "Heat relief needed: prioritise rafting, forests, canyons and waterfalls, and avoid outdoor activity around noon.",
	},
}
