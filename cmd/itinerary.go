package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var (
	tripDays     int
	tripBudget   int
	tripTheme    string
	tripCity     string
	tripLanguage string
	tripElderly  bool
	tripChildren bool
	tripCooling  bool
	showPlan     bool
)

func tripRequest() types.ItineraryRequest {
	lang := tripLanguage
	if lang == "" {
		lang = cfg.Prompt.Language
	}
	return types.ItineraryRequest{
		Days:     tripDays,
		Budget:   tripBudget,
		Theme:    tripTheme,
		City:     tripCity,
		Language: types.ParseLanguage(lang),
		Needs: types.SpecialNeeds{
			Elderly:  tripElderly,
			Children: tripChildren,
			Cooling:  tripCooling,
		},
	}
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the assembled itinerary prompt without calling the chat service",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := deps.Itinerary.Preview(cmd.Context(), tripRequest())
		if err != nil {
			return err
		}
		fmt.Println(resp.Prompt)
		if showPlan {
			printPlan(resp.Plan)
		}
		return nil
	},
}

var itineraryCmd = &cobra.Command{
	Use:   "itinerary",
	Short: "Generate an itinerary with the configured chat service",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := deps.Itinerary.Generate(cmd.Context(), tripRequest())
		if err != nil {
			return err
		}
		fmt.Println(resp.WeatherAdvice)
		fmt.Println()
		fmt.Println(resp.Content)
		if showPlan {
			printPlan(resp.Plan)
		}
		return nil
	},
}

func printPlan(plan []types.PlanDay) {
	fmt.Println()
	for i, d := range plan {
		fmt.Printf("第%d天（%s %s·%s）\n", i+1, d.Date, d.Weekday, d.Condition)
		fmt.Println("  - " + strings.Join(d.Activities, "\n  - "))
	}
}

func init() {
	for _, c := range []*cobra.Command{promptCmd, itineraryCmd} {
		f := c.Flags()
		f.IntVar(&tripDays, "days", 3, "Trip length in days (1-7)")
		f.IntVar(&tripBudget, "budget", 500, "Budget in yuan per person per day")
		f.StringVar(&tripTheme, "theme", types.Themes[0], "Theme: "+strings.Join(types.Themes, ", ")+" or free text")
		f.StringVar(&tripCity, "city", "", "AMap city code or name (defaults to the configured city)")
		f.StringVar(&tripLanguage, "lang", "", "Prompt language: zh or en")
		f.BoolVar(&tripElderly, "elderly", false, "Travelling with elderly companions")
		f.BoolVar(&tripChildren, "children", false, "Travelling with children")
		f.BoolVar(&tripCooling, "cooling", false, "Prefer cool spots for hot weather")
		f.BoolVar(&showPlan, "plan", false, "Also print the weather-based day plan")
		rootCmd.AddCommand(c)
	}
}
