package types

// DayForecast is one day of a multi-day forecast.
type DayForecast struct {
	Date           string `json:"date"`
	Week           string `json:"week,omitempty"`
	DayCondition   string `json:"day_condition"`
	NightCondition string `json:"night_condition,omitempty"`
	TempMax        int    `json:"temp_max"`
	TempMin        int    `json:"temp_min"`
}

// Forecast is either a live weather service answer or a labelled simulation.
type Forecast struct {
	City       string        `json:"city"`
	ReportTime string        `json:"report_time,omitempty"`
	Days       []DayForecast `json:"days"`
	Simulated  bool          `json:"simulated"`
	Source     string        `json:"source"`
}
