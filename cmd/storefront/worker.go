package main

import (
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process background jobs and run the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.startWorker(); err != nil {
		a.logger.Error().Err(err).Msg("failed to start background worker")
		_ = a.shutdown()
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	a.logger.Info().Msg("shutdown signal received, draining jobs")
	if err := a.shutdown(); err != nil {
		a.logger.Error().Err(err).Msg("worker forced to shutdown")
		return err
	}
	return nil
}
