package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/srgjo27/smart_parking/internal/app"
	"github.com/srgjo27/smart_parking/internal/config"
	"github.com/srgjo27/smart_parking/internal/platform/logger"
)

// engineFactory builds the engine for a command. Tests replace it to run
// against an in-memory store.
var engineFactory = func(ctx context.Context, configPath string) (*app.App, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log)

	return app.New(ctx, cfg)
}

func rootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Operator tooling for the smart parking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")

	withEngine := func(run func(cmd *cobra.Command, engine *app.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			engine, err := engineFactory(cmd.Context(), configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize engine: %w", err)
			}
			defer engine.Close()

			return run(cmd, engine, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: withEngine(func(cmd *cobra.Command, engine *app.App, _ []string) error {
				return engine.Migrate(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "seed-lots",
			Short: "Write configured lots and seed subscribers to the store",
			RunE: withEngine(func(cmd *cobra.Command, engine *app.App, _ []string) error {
				if err := engine.SeedLots(cmd.Context()); err != nil {
					return err
				}
				return engine.SeedSubscribers(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "stats [lot]",
			Short: "Print live occupancy figures for a lot",
			Args:  cobra.MaximumNArgs(1),
			RunE: withEngine(func(cmd *cobra.Command, engine *app.App, args []string) error {
				lot := engine.Availability.ReservationLot()
				if len(args) == 1 {
					lot = args[0]
				}

				stats, err := engine.Availability.Compute(cmd.Context(), lot)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			}),
		},
		reportCommand(withEngine),
	)

	return root
}

func reportCommand(withEngine func(func(*cobra.Command, *app.App, []string) error) func(*cobra.Command, []string) error) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "report [YYYY-MM]",
		Short: "Summarize a month of parking activity (defaults to last month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEngine(func(cmd *cobra.Command, engine *app.App, args []string) error {
			month := engine.Reports.PreviousMonth()
			if len(args) == 1 {
				month = args[0]
			}

			summarize := engine.Reports.Summarize
			if save {
				summarize = engine.Reports.GenerateMonthly
			}

			report, err := summarize(cmd.Context(), month)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the report for the dashboard")

	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
