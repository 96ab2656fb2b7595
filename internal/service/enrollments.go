package service

import (
	"context"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EnrollmentService manages enrollments and keeps courses.enrollment_count in
// step with them. A caller may only see and change their own enrollments unless
// they are an admin.
type EnrollmentService struct {
	*base
}

// Enroll enrolls the caller, or p.UserID when the caller is an admin.
// Inserting the row and bumping enrollment_count happen in one transaction;
// an existing enrollment is returned as is.
func (s *EnrollmentService) Enroll(ctx context.Context, caller *model.User, p *model.EnrollPayload) (*model.EnrollResult, error) {
	userID := caller.ID
	if target := p.UserUUID(); target != nil && *target != caller.ID {
		if !caller.IsAdmin() {
			return nil, errs.NewForbiddenError("You can only enroll yourself", false)
		}
		userID = *target
	}
	courseID := p.CourseUUID()

	var (
		result model.EnrollResult
		user   *model.User
		course *model.Course
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if user, err = tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if course, err = tx.Courses().Lock(ctx, courseID); err != nil {
			return err
		}
		if !course.IsPublished && !canManageCourse(caller, course) {
			return errs.NewBadRequestError("Course is not open for enrollment", false, code("COURSE_NOT_PUBLISHED"), nil, nil)
		}

		result.Enrollment, result.Created, err = tx.Enrollments().Create(ctx, userID, courseID)
		if err != nil {
			return errors.Wrap(err, "create enrollment")
		}
		if !result.Created {
			return nil
		}
		return errors.Wrap(tx.Courses().AdjustEnrollmentCount(ctx, courseID, 1), "increment enrollment count")
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		zerolog.Ctx(ctx).Info().
			Str("enrollment_id", result.Enrollment.ID.String()).
			Str("course_id", courseID.String()).
			Msg("enrolled")
		s.notify(ctx, "enrollment", func(n Notifier) error { return n.EnrollmentConfirmed(ctx, user, course) })
	}
	return &result, nil
}

// owned loads the enrollment and checks the caller owns it or is an admin.
func (s *EnrollmentService) owned(ctx context.Context, store repository.Store, caller *model.User, id uuid.UUID) (*model.Enrollment, error) {
	e, err := store.Enrollments().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccessUser(caller, e.UserID) {
		return nil, errs.NewForbiddenError("You do not have access to this enrollment", false)
	}
	return e, nil
}

// Get returns one enrollment of the caller.
func (s *EnrollmentService) Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Enrollment, error) {
	return s.owned(ctx, s.store, caller, id)
}

// ListByUser lists a user's enrollments with their course summaries. Callers may
// only list their own unless they are an admin; an unknown user is a 404.
func (s *EnrollmentService) ListByUser(ctx context.Context, caller *model.User, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	if !canAccessUser(caller, userID) {
		return nil, errs.NewForbiddenError("You can only list your own enrollments", false)
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.store.Enrollments().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	if items == nil {
		items = []model.EnrollmentWithCourse{}
	}
	return items, nil
}

// UpdateStatus sets active or dropped. Reactivating a fully completed
// enrollment keeps it completed; a completed enrollment cannot be dropped.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, caller *model.User, p *model.UpdateEnrollmentPayload) (*model.Enrollment, error) {
	var saved *model.Enrollment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		e, err := s.owned(ctx, tx, caller, p.UUID())
		if err != nil {
			return err
		}

		next := *e
		switch p.Status {
		case model.EnrollmentDropped:
			if e.Progress == 100 {
				return errs.NewBadRequestError("Completed enrollments cannot be dropped", false, code("ENROLLMENT_COMPLETED"), nil, nil)
			}
			next.Status = model.EnrollmentDropped
		case model.EnrollmentActive:
			next.Status = model.EnrollmentActive
			if e.Progress == 100 {
				next.Status = model.EnrollmentCompleted
			}
		}
		if next.Status == e.Status {
			saved = e
			return nil
		}
		saved, err = tx.Enrollments().Save(ctx, &next)
		return errors.Wrap(err, "save enrollment")
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes the enrollment and its progress, decrementing
// enrollment_count by one in the same transaction.
func (s *EnrollmentService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		e, err := s.owned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if _, err := tx.Courses().Lock(ctx, e.CourseID); err != nil {
			return err
		}
		if err := tx.Enrollments().Delete(ctx, e.ID); err != nil {
			return errors.Wrap(err, "delete enrollment")
		}
		return errors.Wrap(tx.Courses().AdjustEnrollmentCount(ctx, e.CourseID, -1), "decrement enrollment count")
	})
}

// Progress is the per-lesson breakdown of the enrollment.
func (s *EnrollmentService) Progress(ctx context.Context, caller *model.User, id uuid.UUID) (*model.EnrollmentProgress, error) {
	e, err := s.owned(ctx, s.store, caller, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.store.Progress().ListForEnrollment(ctx, e.ID, e.CourseID)
	if err != nil {
		return nil, errors.Wrap(err, "list progress")
	}
	if lessons == nil {
		lessons = []model.LessonProgressItem{}
	}

	completed := 0
	for _, l := range lessons {
		if l.Completed {
			completed++
		}
	}
	return &model.EnrollmentProgress{
		EnrollmentID:     e.ID,
		CourseID:         e.CourseID,
		Status:           e.Status,
		Progress:         e.Progress,
		CompletedLessons: completed,
		TotalLessons:     len(lessons),
		Lessons:          lessons,
	}, nil
}
