package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/1457cus/shaoguan-travel-planner/internal/api/validator"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var errCategoriesFailed = errors.New("one or more categories failed")

var cleanCmd = &cobra.Command{
	Use:   "clean [category...]",
	Short: "Clean raw_data files into cleaned_data",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := categoriesFromArgs(args)
		if err != nil {
			return err
		}
		var outcomes []types.CategoryOutcome
		for _, c := range categories {
			outcomes = append(outcomes, deps.Pipeline.Clean(cmd.Context(), c))
		}
		return printOutcomes(os.Stdout, outcomes)
	},
}

var idsCmd = &cobra.Command{
	Use:   "ids [category...]",
	Short: "Assign identifiers to cleaned_data files and write processed_data",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := categoriesFromArgs(args)
		if err != nil {
			return err
		}
		var outcomes []types.CategoryOutcome
		for _, c := range categories {
			outcomes = append(outcomes, deps.Pipeline.Identify(cmd.Context(), c))
		}
		return printOutcomes(os.Stdout, outcomes)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [category...]",
	Short: "Clean, identify and validate in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := categoriesFromArgs(args)
		if err != nil {
			return err
		}
		summary := deps.Pipeline.Run(cmd.Context(), categories...)

		fmt.Printf("Run %s finished in %s\n\n", summary.RunID, summary.Duration.Round(time.Millisecond))
		outcomeErr := printOutcomes(os.Stdout, summary.Outcomes)
		fmt.Println()
		if err := validator.Render(os.Stdout, summary.Validation); err != nil {
			return err
		}
		return outcomeErr
	},
}

func printOutcomes(w io.Writer, outcomes []types.CategoryOutcome) error {
	failed := false
	for _, o := range outcomes {
		if o.Failed {
			failed = true
			fmt.Fprintf(w, "%-12s FAILED (%s): %s\n", o.Category, o.ErrorKind, o.Error)
			if o.Hint != "" {
				fmt.Fprintf(w, "%-12s hint: %s\n", "", o.Hint)
			}
			continue
		}
		target := o.OutputPath
		if target == "" {
			target = o.CleanedPath
		}
		fmt.Fprintf(w, "%-12s ok  read=%d skipped=%d identified=%d -> %s\n",
			o.Category, o.RowsRead, o.RowsSkipped, o.Identified, target)
	}
	if failed {
		return errCategoriesFailed
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cleanCmd, idsCmd, runCmd)
}
