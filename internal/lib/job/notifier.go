package job

import (
	"context"

	"github.com/deppfellow/learnhub/internal/model"
)

// WelcomeUser enqueues the welcome email for a new profile.
func (j *JobService) WelcomeUser(ctx context.Context, user *model.User) error {
	task, err := NewWelcomeEmailTask(user.Email, user.Name)
	if err != nil {
		return err
	}
	_, err = j.enqueuer.EnqueueContext(ctx, task)
	return err
}

// EnrollmentConfirmed enqueues the enrollment confirmation.
func (j *JobService) EnrollmentConfirmed(ctx context.Context, user *model.User, course *model.Course) error {
	task, err := NewEnrollmentEmailTask(EnrollmentEmailPayload{
		To:          user.Email,
		UserName:    user.Name,
		CourseTitle: course.Title,
		CourseSlug:  course.Slug,
	})
	if err != nil {
		return err
	}
	_, err = j.enqueuer.EnqueueContext(ctx, task)
	return err
}

// CertificateIssued enqueues the certificate email.
func (j *JobService) CertificateIssued(ctx context.Context, user *model.User, course *model.Course, cert *model.Certificate) error {
	task, err := NewCertificateEmailTask(CertificateEmailPayload{
		To:                user.Email,
		UserName:          user.Name,
		CourseTitle:       course.Title,
		CertificateNumber: cert.CertificateNumber,
	})
	if err != nil {
		return err
	}
	_, err = j.enqueuer.EnqueueContext(ctx, task)
	return err
}
