package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [category...]",
	Short: "Check processed_data files for identifiers and required fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := categoriesFromArgs(args)
		if err != nil {
			return err
		}
		var reports []types.ValidationReport
		for _, c := range categories {
			reports = append(reports, deps.Validator.Validate(cmd.Context(), c))
		}
		if err := validator.Render(os.Stdout, reports); err != nil {
			return err
		}
		if !validator.AllValid(reports) {
			return errors.New("validation found problems")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
