package weather

import (
	"strconv"
	"time"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

// SimulatedSource labels forecasts that were not fetched from the service.
const SimulatedSource = "模拟预报 / simulated"

var simulatedPattern = []struct {
	day, night string
	high, low  int
}{
	{"晴", "多云", 31, 23},
	{"多云", "多云", 29, 22},
	{"小雨", "阵雨", 26, 21},
	{"阴", "小雨", 27, 21},
}

// ChinaTime is the zone forecasts are dated in.
var ChinaTime = loadChinaTime()

func loadChinaTime() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// Simulated builds a clearly labelled stand-in forecast for the given number
// of days starting at now. The pattern is fixed so repeated calls agree.
func Simulated(city string, days int, now time.Time) *types.Forecast {
	if days < 1 {
		days = 1
	}
	start := now.In(ChinaTime)
	f := &types.Forecast{
		City:       city,
		ReportTime: start.Format("2006-01-02 15:04:05"),
		Simulated:  true,
		Source:     SimulatedSource,
	}
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		p := simulatedPattern[i%len(simulatedPattern)]
		f.Days = append(f.Days, types.DayForecast{
			Date:           d.Format("2006-01-02"),
			Week:           isoWeekday(d),
			DayCondition:   p.day,
			NightCondition: p.night,
			TempMax:        p.high,
			TempMin:        p.low,
		})
	}
	return f
}

// isoWeekday matches the weather service's numbering, Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return strconv.Itoa(wd)
}
