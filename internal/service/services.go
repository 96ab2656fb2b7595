// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data. Multi-row changes run in one repository.Store
// transaction; notifications are enqueued only after commit.
package service

import (
	"context"
	"time"

	"github.com/deppfellow/learnhub/internal/lib/job"
	"github.com/deppfellow/learnhub/internal/lib/markdown"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/rs/zerolog"
)

// Notifier receives the events that trigger emails.
// *job.JobService implements it by enqueueing asynq tasks.
type Notifier interface {
	WelcomeUser(ctx context.Context, user *model.User) error
	EnrollmentConfirmed(ctx context.Context, user *model.User, course *model.Course) error
	CertificateIssued(ctx context.Context, user *model.User, course *model.Course, cert *model.Certificate) error
}

// noopNotifier is used when no job queue is configured.
type noopNotifier struct{}

func (noopNotifier) WelcomeUser(context.Context, *model.User) error { return nil }
func (noopNotifier) EnrollmentConfirmed(context.Context, *model.User, *model.Course) error {
	return nil
}
func (noopNotifier) CertificateIssued(context.Context, *model.User, *model.Course, *model.Certificate) error {
	return nil
}

var _ Notifier = (*job.JobService)(nil)

// Services is the container handed to the HTTP layers.
//
// Auth and Job are only set by NewService; services built with New (tests,
// the worker) leave them nil.
type Services struct {
	Auth        *AuthService
	Job         *job.JobService
	Users       *UserService
	Courses     *CourseService
	Lessons     *LessonService
	Enrollments *EnrollmentService
	Search      *SearchService
}

// base is shared by every service.
type base struct {
	store    repository.Store
	notifier Notifier
	now      func() time.Time
}

// New wires the domain services over store. A nil notifier drops events,
// a nil now uses the wall clock.
func New(store repository.Store, notifier Notifier, now func() time.Time) *Services {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	b := &base{store: store, notifier: notifier, now: func() time.Time { return now().UTC() }}

	return &Services{
		Users:       &UserService{base: b},
		Courses:     &CourseService{base: b},
		Lessons:     &LessonService{base: b, renderer: markdown.NewRenderer()},
		Enrollments: &EnrollmentService{base: b},
		Search:      &SearchService{base: b},
	}
}

// NewService builds the services for a running server: the domain services over
// the PostgreSQL repositories, the auth provider and, when Redis is configured,
// the job queue as the notifier.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	var notifier Notifier
	if s.Job != nil {
		notifier = s.Job
	}

	services := New(repos, notifier, nil)
	services.Auth = authService
	services.Job = s.Job

	return services, nil
}

// notify runs a post-commit side effect. Failures are logged and never
// surface to the caller; the database change already happened.
func (b *base) notify(ctx context.Context, event string, fn func(Notifier) error) {
	if err := fn(b.notifier); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", event).Msg("failed to enqueue notification")
	}
}
