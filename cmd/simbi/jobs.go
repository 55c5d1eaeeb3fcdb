package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/simbi/simbi-seller/cmd/simbi/cli"
	"github.com/simbi/simbi-seller/internal/app"
)

func newJobsCommand() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	var refresh bool
	warmup := &cobra.Command{
		Use:   "warmup",
		Short: "Enqueue a snapshot warmup run",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := jobsCLI()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			info, err := c.TriggerWarmup(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s\n", info.Type, info.ID)
			return nil
		},
	}
	warmup.Flags().BoolVar(&refresh, "refresh", false, "bump the cache version before loading")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := jobsCLI()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			s, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteStats(cmd.OutOrStdout(), s)
		},
	}

	jobsCmd.AddCommand(warmup, stats)
	return jobsCmd
}

func jobsCLI() (*cli.JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("jobs: REDIS_ADDR is required")
	}
	return cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}), nil
}
