package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"vihub/internal/di"
	"vihub/internal/structures"

	"github.com/spf13/cobra"
)

func main() {
	flags := &structures.CliFlags{}

	rootCmd := &cobra.Command{
		Use:   "vihub",
		Short: "Patient biometric reconciliation service",
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Mirror logs to the console")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(syncCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the periodic synchronize",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := di.InitApp(flags)
			return err
		},
	}
}

func syncCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize every imported patient once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := di.InitSyncJob(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results, err := job.Run(ctx)
			for _, r := range results {
				status := "ok"
				if !r.Success {
					status = "failed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.PatientID, status, r.Message)
			}
			return err
		},
	}
}
