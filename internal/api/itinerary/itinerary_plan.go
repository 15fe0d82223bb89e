package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/weather"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

var (
	rainyActivities = []string{
		"上午: 南华寺（室内活动，参拜六祖真身）",
		"午餐: 南华寺素食馆（人均64元·推荐普度斋）",
		"下午: 韶关博物馆（了解本地历史）",
		"傍晚: 非遗工坊体验（瑶族传统工艺）",
	}
	sunnyActivities = []string{
		"上午: 丹霞山（世界自然遗产）",
		"午餐: 农家乐（人均50元·推荐丹霞豆腐）",
		"下午: 古佛岩（喀斯特地貌）",
		"傍晚: 温泉体验（推荐经律论温泉）",
	}
	otherActivities = []string{
		"上午: 珠玑古巷（千年古道）",
		"午餐: 百年老店（人均60元·推荐梅菜扣肉）",
		"下午: 梅关古道（历史遗迹）",
		"傍晚: 当地夜市体验（品尝特色小吃）",
	}
)

const unknownCondition = "未知"

// SimulatedPlan lays out one rule-based day per trip day starting today in
// China time. Rain moves the day indoors, sun sends it outdoors.
func SimulatedPlan(days int, forecast *types.Forecast, now time.Time) []types.PlanDay {
	byDate := map[string]types.DayForecast{}
	if forecast != nil {
		for _, d := range forecast.Days {
			byDate[d.Date] = d
		}
	}

	start := now.In(weather.ChinaTime)
	plan := make([]types.PlanDay, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		key := date.Format("2006-01-02")

		condition := unknownCondition
		activities := otherActivities
		if d, ok := byDate[key]; ok {
			condition = fmt.Sprintf("%s·%d~%d℃", d.DayCondition, d.TempMin, d.TempMax)
			switch {
			case strings.Contains(d.DayCondition, "雨"):
				activities = rainyActivities
			case strings.Contains(d.DayCondition, "晴"):
				activities = sunnyActivities
			}
		}

		plan = append(plan, types.PlanDay{
			Date:       key,
			Weekday:    weekdayNames[date.Weekday()],
			Condition:  condition,
			Activities: append([]string(nil), activities...),
		})
	}
	return plan
}
