package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// Rule is one named, ordered normalization step. Requires lists the columns
// that must be present for the rule to run; a rule with missing inputs is
// skipped and reported rather than failing the batch.
type Rule struct {
	Name     string
	Requires []string
	Apply    func(t *types.Table)
}

// cellRule maps fn over every cell of one column.
func cellRule(name, column string, fn func(string) string) Rule {
	return Rule{
		Name:     name,
		Requires: []string{column},
		Apply: func(t *types.Table) {
			for _, row := range t.Rows {
				row[column] = fn(row[column])
			}
		},
	}
}

// NormalizeText is applied to every cell before category rules: NFC
// composition, control character removal and whitespace trimming.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

var normalizeTextRule = Rule{
	Name: "normalize_text",
	Apply: func(t *types.Table) {
		for _, row := range t.Rows {
			for _, col := range t.Columns {
				row[col] = NormalizeText(row[col])
			}
		}
	},
}

var (
	fullWidthComma = strings.NewReplacer(",", "，")
	featureText    = strings.NewReplacer(",", "，", `"`, "'")
	branchSuffix   = regexp.MustCompile(`[(（][^()（）]*店[)）]`)
	heritageStrays = strings.NewReplacer("\t", "", `"`, "")
)

// FoodType tags a venue by keyword in its name; first match wins.
func FoodType(name string) string {
	switch {
	case strings.Contains(name, "火锅"):
		return "火锅"
	case strings.Contains(name, "西餐"), strings.Contains(name, "牛排"):
		return "西餐"
	default:
		return "粤菜"
	}
}

// StripBranch removes a trailing branch qualifier such as "(东堤店)".
func StripBranch(name string) string {
	return strings.TrimSpace(branchSuffix.ReplaceAllString(name, ""))
}

var heritageTypeSynonyms = map[string]string{
	"节庆民俗":  "民俗",
	"民俗节庆":  "民俗",
	"民俗活动":  "民俗",
	"手工艺品":  "手工艺",
	"传统手工艺": "手工艺",
}

// CanonicalHeritageType maps known label variants onto the canonical set and
// passes anything else through unchanged.
func CanonicalHeritageType(s string) string {
	s = strings.TrimSpace(s)
	if v, ok := heritageTypeSynonyms[s]; ok {
		return v
	}
	return s
}

// CanonicalLevel rewrites heritage listing levels.
func CanonicalLevel(s string) string {
	switch {
	case strings.Contains(s, "国家非遗"):
		return "国家级"
	case s == "省非遗":
		return "省级"
	case s == "市非遗":
		return "市级"
	}
	return s
}

func dishList(s string) string {
	return strings.Join(strings.Fields(s), "、")
}

func attractionRules() []Rule {
	return []Rule{
		cellRule("open_hours_commas", types.ColOpenHours, fullWidthComma.Replace),
		cellRule("feature_text_punctuation", types.ColFeature, featureText.Replace),
		{
			Name:     "ticket_range",
			Requires: []string{types.ColTicket},
			Apply: func(t *types.Table) {
				t.EnsureColumn(types.ColTicketMin)
				t.EnsureColumn(types.ColTicketMax)
				for _, row := range t.Rows {
					row[types.ColTicketMin], row[types.ColTicketMax] = ParsePriceRange(row[types.ColTicket]).Cells()
				}
			},
		},
	}
}

func foodRules() []Rule {
	return []Rule{
		cellRule("strip_branch_suffix", types.ColStoreName, StripBranch),
		{
			Name:     "average_spend",
			Requires: []string{types.ColAvgSpend},
			Apply: func(t *types.Table) {
				t.EnsureColumn(types.ColSpendMin)
				t.EnsureColumn(types.ColSpendMax)
				for _, row := range t.Rows {
					spend, band := ParseSpend(row[types.ColAvgSpend])
					row[types.ColAvgSpend] = spend
					row[types.ColSpendMin], row[types.ColSpendMax] = band.Cells()
				}
			},
		},
		cellRule("signature_dish_list", types.ColSignatureDish, dishList),
		{
			Name:     "food_type",
			Requires: []string{types.ColStoreName},
			Apply: func(t *types.Table) {
				t.EnsureColumn(types.ColFoodType)
				for _, row := range t.Rows {
					row[types.ColFoodType] = FoodType(row[types.ColStoreName])
				}
			},
		},
	}
}

func cultureRules() []Rule {
	return []Rule{
		cellRule("heritage_site_strays", types.ColHeritageSite, heritageStrays.Replace),
		cellRule("heritage_type_synonyms", types.ColHeritageType, CanonicalHeritageType),
		cellRule("heritage_level", types.ColLevel, CanonicalLevel),
		{
			Name: "remarks_present",
			Apply: func(t *types.Table) {
				t.EnsureColumn(types.ColRemarks)
				for _, row := range t.Rows {
					if _, ok := row[types.ColRemarks]; !ok {
						row[types.ColRemarks] = ""
					}
				}
			},
		},
		cellRule("name_trim", types.ColName, strings.TrimSpace),
	}
}

// RulesFor returns the ordered rule list for a category, generic text
// normalization first.
func RulesFor(category types.Category) []Rule {
	rules := []Rule{normalizeTextRule}
	switch category {
	case types.CategoryAttractions:
		rules = append(rules, attractionRules()...)
	case types.CategoryFood:
		rules = append(rules, foodRules()...)
	case types.CategoryCulture:
		rules = append(rules, cultureRules()...)
	}
	return rules
}
