package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/storefront/internal/handler"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/router"
)

func newServeCmd() *cobra.Command {
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withWorker)
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", false, "also process background jobs in this process")
	return cmd
}

func runServe(withWorker bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	handlers := handler.NewHandlers(a.server, a.services)
	middlewares := middleware.NewMiddlewares(a.server, a.services.Tokens)
	a.server.SetupHTTPServer(router.NewRouter(a.server, handlers, middlewares))

	if withWorker {
		if err := a.startWorker(); err != nil {
			a.logger.Error().Err(err).Msg("failed to start background worker")
			_ = a.shutdown()
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start()
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			a.logger.Error().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	}

	if shutdownErr := a.shutdown(); shutdownErr != nil {
		a.logger.Error().Err(shutdownErr).Msg("server forced to shutdown")
		if err == nil {
			err = shutdownErr
		}
	}

	a.logger.Info().Msg("server exited")
	return err
}
