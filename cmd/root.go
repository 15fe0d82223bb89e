package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1457cus/shaoguan-travel-planner/config"
	"github.com/1457cus/shaoguan-travel-planner/internal/container"
	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var (
	dataDir string
	cfg     config.Config
	logger  *slog.Logger
	deps    *container.Container
)

var rootCmd = &cobra.Command{
	Use:           "sgtravel",
	Short:         "Clean Shaoguan travel data, assign identifiers and build itinerary prompts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("data-dir") {
			cfg.Data.BaseDir = dataDir
		}
		c, err := container.NewContainer(cmd.Context(), &cfg, logger)
		if err != nil {
			return fmt.Errorf("wiring services: %w", err)
		}
		deps = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Base directory holding raw_data, cleaned_data and processed_data")
}

// Execute runs the command line with an already loaded configuration.
func Execute(ctx context.Context, c config.Config, l *slog.Logger) error {
	cfg = c
	logger = l
	return rootCmd.ExecuteContext(ctx)
}

// categoriesFromArgs parses category arguments; none means all categories.
func categoriesFromArgs(args []string) ([]types.Category, error) {
	var out []types.Category
	for _, a := range args {
		c, err := types.ParseCategory(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = types.Categories
	}
	return out, nil
}
