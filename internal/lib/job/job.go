// Package job runs background work on asynq: transactional and campaign
// emails, WhatsApp owner notifications and the periodic expiry of unpaid orders.
//
// The HTTP process only enqueues through Client. Workers run either in the
// dedicated worker command or next to the server with --with-worker.
package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
)

type JobService struct {
	Client *asynq.Client

	redisOpt  asynq.RedisClientOpt
	cfg       config.JobsConfig
	server    *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zerolog.Logger
}

// RedisOpt converts the Redis config into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewJobService creates the enqueue client. The worker side is created by Start.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	opt := RedisOpt(cfg.Redis)
	return &JobService{
		Client:   asynq.NewClient(opt),
		redisOpt: opt,
		cfg:      cfg.Jobs,
		logger:   logger,
	}
}

// EnqueueContext satisfies the services' enqueuer port.
func (j *JobService) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return j.Client.EnqueueContext(ctx, task, opts...)
}

// Start registers handlers, starts the worker and the periodic scheduler.
// It does not block.
func (j *JobService) Start(h *Handlers) error {
	j.server = asynq.NewServer(j.redisOpt, asynq.Config{
		Concurrency: j.cfg.Concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		ShutdownTimeout: 25 * time.Second,
		Logger:          newAsynqLogger(j.logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			j.logger.Error().
				Err(err).
				Str("type", task.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("background task failed")
		}),
	})

	j.logger.Info().Int("concurrency", j.cfg.Concurrency).Msg("starting background job server")
	if err := j.server.Start(h.Mux()); err != nil {
		return err
	}

	j.scheduler = asynq.NewScheduler(j.redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newAsynqLogger(j.logger),
	})
	if _, err := j.scheduler.Register(j.cfg.ExpirePendingCron, NewExpirePendingTask(), asynq.Unique(time.Minute)); err != nil {
		return err
	}
	if err := j.scheduler.Start(); err != nil {
		return err
	}

	j.logger.Info().Str("cron", j.cfg.ExpirePendingCron).Msg("scheduled pending order expiry")
	return nil
}

// Stop shuts the worker and scheduler down and closes the enqueue client.
func (j *JobService) Stop() {
	if j.scheduler != nil {
		j.scheduler.Shutdown()
	}
	if j.server != nil {
		j.logger.Info().Msg("stopping background job server")
		j.server.Shutdown()
	}
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}

// IsDuplicate reports whether an enqueue failed only because the task was
// already enqueued.
func IsDuplicate(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(l *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: l.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(sprint(args)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(sprint(args)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(sprint(args)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(sprint(args)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(sprint(args)) }

func sprint(args []any) string {
	return fmt.Sprint(args...)
}
