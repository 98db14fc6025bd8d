package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/lib/whatsapp"
	"github.com/deppfellow/storefront/internal/logger"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// shutdownTimeout bounds draining requests and in-flight jobs on exit.
const shutdownTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API, background worker and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newEmailPreviewCmd(),
	)
	return root
}

// app is what serve and worker share: configuration, the root logger and
// the wired server and services.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *logger.LoggerService
	server        *server.Server
	services      *service.Services
}

func loadConfig() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, &log, loggerService, nil
}

func newApp() (*app, error) {
	cfg, log, loggerService, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Primary.Env != "local" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := migrateDatabase(ctx, log, cfg)
		cancel()
		if err != nil {
			loggerService.Shutdown()
			return nil, err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		loggerService.Shutdown()
		return nil, err
	}

	services, err := service.NewServices(srv, repository.NewRepositories(srv))
	if err != nil {
		log.Error().Err(err).Msg("failed to create services")
		loggerService.Shutdown()
		return nil, err
	}

	return &app{
		cfg:           cfg,
		logger:        log,
		loggerService: loggerService,
		server:        srv,
		services:      services,
	}, nil
}

// startWorker runs the asynq worker and the pending order expiry schedule.
func (a *app) startWorker() error {
	mailer, err := email.NewClient(a.cfg, a.logger)
	if err != nil {
		return err
	}

	handlers := job.NewHandlers(
		mailer,
		whatsapp.NewClient(a.cfg.Integration.WhatsApp, a.logger),
		a.services.Order,
		a.logger,
	)
	return a.server.Job.Start(handlers)
}

// shutdown stops the HTTP server and worker, then releases every connection.
func (a *app) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	if cerr := a.services.Close(); cerr != nil {
		a.logger.Warn().Err(cerr).Msg("failed to close services")
	}
	a.loggerService.Shutdown()
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
