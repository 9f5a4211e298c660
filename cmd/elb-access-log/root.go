package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

const appName = "elb-access-log"

var exitCode int

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           appName + " COMMAND [args]",
		Short:         "Collect Elastic Load Balancing access logs from S3",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "elb-access-log.hcl", "Path to the HCL config file")

	rootCmd.AddCommand(
		collectCmd(),
		onceCmd(),
	)

	return rootCmd
}

func Execute() int {
	rootCmd := rootCommand()

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		exitCode = 1
	}
	return exitCode
}
