package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// errNotInitialized is returned when a task arrives before InitHandlers ran.
// asynq retries it with backoff, so the task survives a slow startup.
var errNotInitialized = errors.New("job handlers not initialized")

// decode unmarshals the JSON payload of t into T.
func decode[T any](t *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that cannot be decoded will never succeed; skip retries.
		return p, fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return p, nil
}

// handleWelcomeEmailTask processes TaskWelcome.
//
// A returned error makes asynq retry the task (up to MaxRetry); returning nil
// acknowledges it.
func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	if j.mailer == nil {
		return errNotInitialized
	}
	p, err := decode[WelcomeEmailPayload](t)
	if err != nil {
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(ctx, p.To, p.UserName); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Successfully sent welcome email")
	return nil
}

// handleEnrollmentEmailTask processes TaskEnrollment.
func (j *JobService) handleEnrollmentEmailTask(ctx context.Context, t *asynq.Task) error {
	if j.mailer == nil {
		return errNotInitialized
	}
	p, err := decode[EnrollmentEmailPayload](t)
	if err != nil {
		return err
	}

	log := j.logger.With().Str("type", "enrollment").Str("to", p.To).Str("course", p.CourseSlug).Logger()
	if err := j.mailer.SendEnrollmentEmail(ctx, p.To, p.UserName, p.CourseTitle, p.CourseSlug); err != nil {
		log.Error().Err(err).Msg("Failed to send enrollment email")
		return err
	}
	log.Info().Msg("Successfully sent enrollment email")
	return nil
}

// handleCertificateEmailTask processes TaskCertificate.
func (j *JobService) handleCertificateEmailTask(ctx context.Context, t *asynq.Task) error {
	if j.mailer == nil {
		return errNotInitialized
	}
	p, err := decode[CertificateEmailPayload](t)
	if err != nil {
		return err
	}

	log := j.logger.With().Str("type", "certificate").Str("to", p.To).Str("certificate", p.CertificateNumber).Logger()
	if err := j.mailer.SendCertificateEmail(ctx, p.To, p.UserName, p.CourseTitle, p.CertificateNumber); err != nil {
		log.Error().Err(err).Msg("Failed to send certificate email")
		return err
	}
	log.Info().Msg("Successfully sent certificate email")
	return nil
}

// handleReconcileCountersTask processes TaskReconcileCounters. The task has no
// payload; the whole courses table is reconciled in one statement.
func (j *JobService) handleReconcileCountersTask(ctx context.Context, _ *asynq.Task) error {
	if j.reconciler == nil {
		return errNotInitialized
	}
	fixed, err := j.reconciler.ReconcileCounters(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to reconcile course counters")
		return err
	}
	j.logger.Info().Int64("courses_fixed", fixed).Msg("Reconciled course counters")
	return nil
}
