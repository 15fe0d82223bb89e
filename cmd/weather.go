package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1457cus/shaoguan-travel-planner/config"
	"github.com/1457cus/shaoguan-travel-planner/internal/api/weather"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var (
	weatherCity  string
	weatherDays  int
	weatherCheck bool
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the forecast and the advice derived from it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if weatherCheck {
			key := cfg.Secrets.AmapAPIKey
			fmt.Printf("Key: %s (source: %s)\n", config.Masked(key), secretsSource())
			if !weather.KeyUsable(key) {
				return errors.New("weather key must be 32 characters and not a placeholder")
			}
			fmt.Println("Key format looks valid")
		}

		city := weatherCity
		if city == "" {
			city = cfg.Weather.City
		}
		f := deps.Weather.ForecastOrSimulated(cmd.Context(), city, weatherDays)

		fmt.Printf("%s  (%s, reported %s)\n", f.City, sourceLabel(f), f.ReportTime)
		for _, d := range f.Days {
			fmt.Printf("  %s  %s/%s  %d~%d°C\n", d.Date, d.DayCondition, d.NightCondition, d.TempMin, d.TempMax)
		}
		fmt.Println()
		fmt.Println(deps.Weather.Advice(f, types.ParseLanguage(cfg.Prompt.Language)))
		return nil
	},
}

func sourceLabel(f *types.Forecast) string {
	if f.Simulated {
		return f.Source
	}
	return "AMap"
}

func secretsSource() string {
	if cfg.Secrets.Source == "" {
		return "environment"
	}
	return cfg.Secrets.Source
}

func init() {
	weatherCmd.Flags().StringVar(&weatherCity, "city", "", "AMap city code or name (defaults to the configured city)")
	weatherCmd.Flags().IntVar(&weatherDays, "days", 4, "Number of forecast days")
	weatherCmd.Flags().BoolVar(&weatherCheck, "check-key", false, "Validate the configured weather key format first")
	rootCmd.AddCommand(weatherCmd)
}
