package prompt

import "strings"

// DefaultMinCooling is the lowest cooling index kept when cooling is requested.
const DefaultMinCooling = 2

// Keyword tiers, highest first. The first tier with a hit decides the index.
var coolingTiers = []struct {
	score    int
	keywords []string
}{
	{4, []string{"漂流", "戏水", "玩水", "水上", "冲浪", "溯溪"}},
	{3, []string{"森林", "峡谷", "瀑布", "林海", "原始林"}},
	{2, []string{"湖", "溪", "湿地", "水库", "河"}},
	{1, undergroundKeywords},
}

var (
	undergroundKeywords = []string{"溶洞", "洞穴", "地下河", "岩洞"}

	// Underground phrases are removed before the surface tiers are matched,
	// otherwise "地下河" would score as a river.
	undergroundStripper = func() *strings.Replacer {
		pairs := make([]string, 0, 2*len(undergroundKeywords))
		for _, kw := range undergroundKeywords {
			pairs = append(pairs, kw, " ")
		}
		return strings.NewReplacer(pairs...)
	}()
)

// CoolingIndex scores how well a feature description suits hot weather,
// from 0 (baseline) to 4 (water activities).
func CoolingIndex(text string) int {
	surface := undergroundStripper.Replace(text)
	for _, tier := range coolingTiers {
		haystack := surface
		if tier.score == 1 {
			haystack = text
		}
		for _, kw := range tier.keywords {
			if strings.Contains(haystack, kw) {
				return tier.score
			}
		}
	}
	return 0
}
