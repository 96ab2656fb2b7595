package service

import (
	"context"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/lib/markdown"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// LessonService manages lessons and lesson completion. Lesson bodies are stored
// as markdown and rendered with renderer when read.
type LessonService struct {
	*base
	renderer *markdown.Renderer
}

var errNotCourseOwner = errs.NewForbiddenError("You can only manage lessons of your own courses", false)

// ListByCourse returns the course outline ordered by position. An unknown course
// is a 404 rather than an empty list.
func (s *LessonService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.LessonOutline, error) {
	if _, err := s.store.Courses().GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.store.Lessons().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	if lessons == nil {
		lessons = []model.LessonOutline{}
	}
	return lessons, nil
}

// Get returns the lesson with its markdown body rendered to HTML.
func (s *LessonService) Get(ctx context.Context, id uuid.UUID) (*model.LessonDetail, error) {
	lesson, err := s.store.Lessons().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.store.Courses().GetByID(ctx, lesson.CourseID)
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	html, err := s.renderer.Render(lesson.Content)
	if err != nil {
		return nil, errors.Wrap(err, "render lesson")
	}
	return &model.LessonDetail{
		Lesson:      *lesson,
		ContentHTML: html,
		CourseTitle: course.Title,
		CourseSlug:  course.Slug,
	}, nil
}

// Create inserts the lesson at p.Position, shifting later lessons down, or
// appends it. Progress of every enrollment is recomputed in the same
// transaction since the lesson count changed.
func (s *LessonService) Create(ctx context.Context, caller *model.User, p *model.CreateLessonPayload) (*model.Lesson, error) {
	var created *model.Lesson
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		course, err := tx.Courses().Lock(ctx, p.CourseUUID())
		if err != nil {
			return err
		}
		if !canManageCourse(caller, course) {
			return errNotCourseOwner
		}

		last, err := tx.Lessons().MaxPosition(ctx, course.ID)
		if err != nil {
			return errors.Wrap(err, "max position")
		}
		position := last + 1
		if p.Position != nil && *p.Position <= last {
			position = *p.Position
			if err := tx.Lessons().ShiftPositions(ctx, course.ID, position, 0, 1); err != nil {
				return errors.Wrap(err, "shift lessons")
			}
		}

		created, err = tx.Lessons().Create(ctx, &model.Lesson{
			CourseID:        course.ID,
			Title:           p.Title,
			Description:     p.Description,
			Content:         p.Content,
			VideoURL:        p.VideoURL,
			DurationMinutes: p.DurationMinutes,
			Position:        position,
			IsFree:          p.IsFree,
		})
		if err != nil {
			return errors.Wrap(err, "create lesson")
		}

		_, err = s.recomputeCourse(ctx, tx, course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("lesson_id", created.ID.String()).Int("position", created.Position).Msg("lesson created")
	return created, nil
}

// Update applies the non-nil fields. A new position moves the lesson and
// shifts the lessons in between.
func (s *LessonService) Update(ctx context.Context, caller *model.User, p *model.UpdateLessonPayload) (*model.Lesson, error) {
	var updated *model.Lesson
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lesson, err := tx.Lessons().GetByID(ctx, p.UUID())
		if err != nil {
			return err
		}
		course, err := tx.Courses().Lock(ctx, lesson.CourseID)
		if err != nil {
			return err
		}
		if !canManageCourse(caller, course) {
			return errNotCourseOwner
		}

		if p.Title != nil {
			lesson.Title = *p.Title
		}
		if p.Description != nil {
			lesson.Description = p.Description
		}
		if p.Content != nil {
			lesson.Content = *p.Content
		}
		if p.VideoURL != nil {
			lesson.VideoURL = p.VideoURL
		}
		if p.DurationMinutes != nil {
			lesson.DurationMinutes = *p.DurationMinutes
		}
		if p.IsFree != nil {
			lesson.IsFree = *p.IsFree
		}
		if p.Position != nil && *p.Position != lesson.Position {
			if err := s.move(ctx, tx, lesson, *p.Position); err != nil {
				return err
			}
		}

		updated, err = tx.Lessons().Update(ctx, lesson)
		return errors.Wrap(err, "update lesson")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// move shifts the lessons between the old and new position by one and
// sets lesson.Position. The target is clamped to the last position.
func (s *LessonService) move(ctx context.Context, tx repository.Store, lesson *model.Lesson, to int) error {
	last, err := tx.Lessons().MaxPosition(ctx, lesson.CourseID)
	if err != nil {
		return errors.Wrap(err, "max position")
	}
	to = min(max(to, 1), last)
	from := lesson.Position

	switch {
	case to < from:
		err = tx.Lessons().ShiftPositions(ctx, lesson.CourseID, to, from-1, 1)
	case to > from:
		err = tx.Lessons().ShiftPositions(ctx, lesson.CourseID, from+1, to, -1)
	}
	if err != nil {
		return errors.Wrap(err, "shift lessons")
	}
	lesson.Position = to
	return nil
}

// Delete removes the lesson, closes the gap in positions and recomputes
// progress; enrollments that reach 100% get their certificate.
func (s *LessonService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	var (
		course *model.Course
		issued []issuedCertificate
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lesson, err := tx.Lessons().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if course, err = tx.Courses().Lock(ctx, lesson.CourseID); err != nil {
			return err
		}
		if !canManageCourse(caller, course) {
			return errNotCourseOwner
		}

		if err := tx.Lessons().Delete(ctx, lesson.ID); err != nil {
			return errors.Wrap(err, "delete lesson")
		}
		if err := tx.Lessons().ShiftPositions(ctx, course.ID, lesson.Position+1, 0, -1); err != nil {
			return errors.Wrap(err, "shift lessons")
		}
		issued, err = s.recomputeCourse(ctx, tx, course.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.announceCertificates(ctx, course, issued)
	return nil
}

// Complete marks the lesson done for the caller's enrollment. A lesson that
// is already complete is returned untouched.
func (s *LessonService) Complete(ctx context.Context, caller *model.User, p *model.CompleteLessonPayload) (*model.CompleteLessonResult, error) {
	var (
		result model.CompleteLessonResult
		course *model.Course
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		lesson, err := tx.Lessons().GetByID(ctx, p.UUID())
		if err != nil {
			return err
		}
		if course, err = tx.Courses().Lock(ctx, lesson.CourseID); err != nil {
			return err
		}

		enrollment, err := tx.Enrollments().GetByUserAndCourse(ctx, caller.ID, lesson.CourseID)
		if repository.IsNotFound(err) {
			return errNotEnrolled
		}
		if err != nil {
			return errors.Wrap(err, "load enrollment")
		}

		existing, err := tx.Progress().Get(ctx, enrollment.ID, lesson.ID)
		if err != nil && !repository.IsNotFound(err) {
			return errors.Wrap(err, "load progress")
		}
		if existing != nil && existing.Completed {
			result.LessonProgress = existing
			result.Enrollment = enrollment
			result.AlreadyCompleted = true
			return nil
		}

		now := s.now()
		if result.LessonProgress, err = tx.Progress().Complete(ctx, enrollment.ID, lesson.ID, caller.ID, p.Seconds(), now); err != nil {
			return errors.Wrap(err, "complete lesson")
		}

		total, err := tx.Lessons().CountByCourse(ctx, lesson.CourseID)
		if err != nil {
			return errors.Wrap(err, "count lessons")
		}
		touched := *enrollment
		touched.LastAccessedAt = &now
		if touched.Status == model.EnrollmentDropped {
			touched.Status = model.EnrollmentActive
		}
		result.Enrollment, result.Certificate, err = s.syncProgress(ctx, tx, &touched, total, true)
		if err != nil {
			return err
		}
		result.CourseCompleted = result.Enrollment.Status == model.EnrollmentCompleted &&
			enrollment.Status != model.EnrollmentCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Certificate != nil {
		zerolog.Ctx(ctx).Info().
			Str("certificate", result.Certificate.CertificateNumber).
			Str("course_id", course.ID.String()).
			Msg("certificate issued")
		s.notify(ctx, "certificate", func(n Notifier) error {
			return n.CertificateIssued(ctx, caller, course, result.Certificate)
		})
	}
	return &result, nil
}
