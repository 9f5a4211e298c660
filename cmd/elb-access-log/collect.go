package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func collectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Poll the bucket every interval until interrupted",
		RunE:  runCollectCmd,
	}
}

func runCollectCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stopMetrics := a.serveMetrics()
	defer stopMetrics()

	return a.poller.Run(ctx)
}
