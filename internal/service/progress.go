package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/learnhub/internal/lib/learning"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// certificateNumber formats LH-YYYYMMDD-XXXXXXXX.
func certificateNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("LH-%s-%s", at.UTC().Format("20060102"), suffix)
}

// issuedCertificate is a certificate created inside a transaction whose
// email goes out after commit.
type issuedCertificate struct {
	cert   *model.Certificate
	userID uuid.UUID
}

// syncProgress recomputes the enrollment progress from its completed lessons
// and keeps status completed exactly when progress is 100. A certificate is
// issued when the enrollment reaches 100; issued is nil if one already existed.
// dirty forces the write when the caller already changed e.
func (b *base) syncProgress(ctx context.Context, tx repository.Store, e *model.Enrollment, totalLessons int, dirty bool) (saved *model.Enrollment, issued *model.Certificate, err error) {
	done, err := tx.Progress().CountCompleted(ctx, e.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "count completed lessons")
	}

	now := b.now()
	next := *e
	next.Progress = learning.Percentage(done, totalLessons)
	switch {
	case next.Progress == 100 && next.Status != model.EnrollmentCompleted:
		next.Status = model.EnrollmentCompleted
		next.CompletedAt = &now
	case next.Progress < 100 && next.Status == model.EnrollmentCompleted:
		next.Status = model.EnrollmentActive
		next.CompletedAt = nil
	}

	saved = e
	if dirty || next.Progress != e.Progress || next.Status != e.Status {
		if saved, err = tx.Enrollments().Save(ctx, &next); err != nil {
			return nil, nil, errors.Wrap(err, "save enrollment")
		}
	}

	if saved.Progress == 100 {
		cert, created, err := tx.Certificates().Issue(ctx, saved.UserID, saved.CourseID, certificateNumber(now))
		if err != nil {
			return nil, nil, errors.Wrap(err, "issue certificate")
		}
		if created {
			issued = cert
		}
	}
	return saved, issued, nil
}

// recomputeCourse runs syncProgress for every enrollment of the course,
// after its lesson count changed.
func (b *base) recomputeCourse(ctx context.Context, tx repository.Store, courseID uuid.UUID) ([]issuedCertificate, error) {
	total, err := tx.Lessons().CountByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "count lessons")
	}
	enrollments, err := tx.Enrollments().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}

	var issued []issuedCertificate
	for i := range enrollments {
		_, cert, err := b.syncProgress(ctx, tx, &enrollments[i], total, false)
		if err != nil {
			return nil, err
		}
		if cert != nil {
			issued = append(issued, issuedCertificate{cert: cert, userID: enrollments[i].UserID})
		}
	}
	return issued, nil
}

// announceCertificates sends the certificate emails collected during a
// committed transaction.
func (b *base) announceCertificates(ctx context.Context, course *model.Course, issued []issuedCertificate) {
	for _, ic := range issued {
		user, err := b.store.Users().GetByID(ctx, ic.userID)
		if err != nil {
			continue
		}
		b.notify(ctx, "certificate", func(n Notifier) error {
			return n.CertificateIssued(ctx, user, course, ic.cert)
		})
	}
}
