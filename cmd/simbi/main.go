package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/simbi/simbi-seller/internal/app"
)

var version = "dev"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	root := &cobra.Command{
		Use:           "simbi",
		Short:         "Seller dashboard analytics service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load SEED_PATH into the Postgres store",
			RunE:  runSeed,
		},
		newJobsCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the service version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	if err := root.Execute(); err != nil {
		slog.Default().Error("simbi", slog.Any("error", err))
		os.Exit(1)
	}
}
