// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//   - A scheduler enqueues periodic tasks (counter reconciliation).
package job

import (
	"context"
	"time"

	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Queue names and their worker share.
const (
	// QueueCritical carries certificate emails.
	QueueCritical = "critical"

	// QueueDefault carries welcome and enrollment emails.
	QueueDefault = "default"

	// QueueLow carries maintenance tasks such as counter reconciliation.
	QueueLow = "low"
)

// enqueuer is implemented by *asynq.Client.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// mailer is implemented by *email.Client.
type mailer interface {
	SendWelcomeEmail(ctx context.Context, to, userName string) error
	SendEnrollmentEmail(ctx context.Context, to, userName, courseTitle, courseSlug string) error
	SendCertificateEmail(ctx context.Context, to, userName, courseTitle, certificateNumber string) error
}

// Reconciler recomputes denormalized counters. The course repository
// implements it.
type Reconciler interface {
	ReconcileCounters(ctx context.Context) (int64, error)
}

// JobService holds the Asynq client (enqueue), server (worker execution)
// and scheduler (periodic tasks).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	enqueuer  enqueuer
	server    *asynq.Server
	scheduler *asynq.Scheduler
	schedule  string
	logger    *zerolog.Logger
	started   bool

	// Set by InitHandlers.
	mailer     mailer
	reconciler Reconciler
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks (certificates) the largest worker share.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		// ErrorHandler is called for every failed attempt, including the ones
		// that will be retried.
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error().
				Err(err).
				Str("type", task.Type()).
				Int("retried", retried).
				Int("max_retry", maxRetry).
				Msg("background task failed")
		}),
	})

	// Cron specs in jobs.reconcile_schedule are evaluated in UTC.
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	return &JobService{
		Client:    client,
		enqueuer:  client,
		server:    server,
		scheduler: scheduler,
		schedule:  cfg.Jobs.ReconcileSchedule,
		logger:    logger,
	}
}

// InitHandlers wires the dependencies task handlers need.
//
// It must run before Start. Only the process that runs workers needs it;
// enqueueing works without it.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger, reconciler Reconciler) {
	j.mailer = email.NewClient(cfg, logger)
	j.reconciler = reconciler
}

// Mux routes task types to handlers. Tasks of an unknown type fail and are
// retried, which keeps them around through a rolling deploy.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskEnrollment, j.handleEnrollmentEmailTask)
	mux.HandleFunc(TaskCertificate, j.handleCertificateEmailTask)
	mux.HandleFunc(TaskReconcileCounters, j.handleReconcileCountersTask)
	return mux
}

// Start starts the worker server and the scheduler. Both run in their own
// goroutines; Start returns once they are up.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return err
	}
	j.started = true

	task, err := NewReconcileCountersTask()
	if err != nil {
		return err
	}
	entryID, err := j.scheduler.Register(j.schedule, task)
	if err != nil {
		return err
	}
	j.logger.Info().
		Str("entry_id", entryID).
		Str("schedule", j.schedule).
		Msg("registered counter reconciliation")

	return j.scheduler.Start()
}

// Stop shuts the scheduler and workers down, if started, and closes the client.
func (j *JobService) Stop() {
	if j.started {
		j.logger.Info().Msg("Stopping background job server")
		j.scheduler.Shutdown()
		j.server.Shutdown()
	}
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
