package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/lib/utils"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxSlugAttempts = 50

// CourseService manages the course catalog, its categories and reviews.
type CourseService struct {
	*base
}

// List returns one page of published courses matching the query filters.
func (s *CourseService) List(ctx context.Context, q *model.ListCoursesQuery) (*model.Page[model.CourseSummary], error) {
	filter, page, limit := q.Filter()
	items, total, err := s.store.Courses().List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	result := model.NewPage(items, total, page, limit)
	return &result, nil
}

// Categories lists every category with its number of published courses.
func (s *CourseService) Categories(ctx context.Context) ([]model.CategoryWithCount, error) {
	items, err := s.store.Categories().ListWithCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	if items == nil {
		items = []model.CategoryWithCount{}
	}
	return items, nil
}

// Detail returns the course page. Drafts are visible by id; listings and
// search only ever show published courses.
func (s *CourseService) Detail(ctx context.Context, id uuid.UUID) (*model.CourseDetail, error) {
	summary, err := s.store.Courses().GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor, err := s.store.Users().GetByID(ctx, summary.InstructorID)
	if err != nil {
		return nil, errors.Wrap(err, "load instructor")
	}
	lessons, err := s.store.Lessons().ListByCourse(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	if lessons == nil {
		lessons = []model.LessonOutline{}
	}
	return &model.CourseDetail{
		CourseSummary: *summary,
		Instructor:    instructor.Public(),
		Lessons:       lessons,
	}, nil
}

// Create adds a course owned by the caller, who must be an instructor or an admin.
// The slug is derived from the title and suffixed until it is unique.
func (s *CourseService) Create(ctx context.Context, caller *model.User, p *model.CreateCoursePayload) (*model.Course, error) {
	if !caller.CanTeach() {
		return nil, errs.NewForbiddenError("Only instructors can create courses", false)
	}

	slug, err := s.uniqueSlug(ctx, p.Title)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:            strings.TrimSpace(p.Title),
		Slug:             slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		ThumbnailURL:     p.ThumbnailURL,
		InstructorID:     caller.ID,
		CategoryID:       p.CategoryUUID(),
		Level:            p.Level,
		Price:            decimal.Zero,
		DurationMinutes:  p.DurationMinutes,
		IsPublished:      p.IsPublished,
		Tags:             p.Tags,
	}
	if course.Level == "" {
		course.Level = model.LevelBeginner
	}
	if p.Price != nil {
		course.Price = *p.Price
	}
	if course.Tags == nil {
		course.Tags = []string{}
	}

	created, err := s.store.Courses().Create(ctx, course)
	if err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	zerolog.Ctx(ctx).Info().Str("course_id", created.ID.String()).Str("slug", created.Slug).Msg("course created")
	return created, nil
}

// uniqueSlug derives a slug from title, adding -2, -3, ... until it is free.
func (s *CourseService) uniqueSlug(ctx context.Context, title string) (string, error) {
	root := utils.Slugify(title)
	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := root
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", root, i)
		}
		taken, err := s.store.Courses().SlugExists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s-%s", root, uuid.NewString()[:8]), nil
}

// Update applies the non-nil fields. The slug is kept so links stay valid.
func (s *CourseService) Update(ctx context.Context, caller *model.User, p *model.UpdateCoursePayload) (*model.Course, error) {
	course, err := s.store.Courses().GetByID(ctx, p.UUID())
	if err != nil {
		return nil, err
	}
	if !canManageCourse(caller, course) {
		return nil, errs.NewForbiddenError("You can only edit your own courses", false)
	}

	if p.Title != nil {
		course.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		course.Description = *p.Description
	}
	if p.ShortDescription != nil {
		course.ShortDescription = p.ShortDescription
	}
	if p.ThumbnailURL != nil {
		course.ThumbnailURL = p.ThumbnailURL
	}
	if p.CategoryID != nil {
		course.CategoryID = p.CategoryUUID()
	}
	if p.Level != nil {
		course.Level = *p.Level
	}
	if p.Price != nil {
		course.Price = *p.Price
	}
	if p.DurationMinutes != nil {
		course.DurationMinutes = *p.DurationMinutes
	}
	if p.IsPublished != nil {
		course.IsPublished = *p.IsPublished
	}
	if p.Tags != nil {
		course.Tags = p.Tags
	}

	updated, err := s.store.Courses().Update(ctx, course)
	if err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	return updated, nil
}

// Reviews returns one page of the course's reviews with their authors, newest first.
func (s *CourseService) Reviews(ctx context.Context, q *model.ListReviewsQuery) (*model.Page[model.ReviewWithUser], error) {
	courseID := q.UUID()
	if _, err := s.store.Courses().GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	page, limit := q.Normalized(model.DefaultReviewLimit, model.MaxReviewLimit)
	items, total, err := s.store.Reviews().ListByCourse(ctx, courseID, utils.Offset(page, limit), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	result := model.NewPage(items, total, page, limit)
	return &result, nil
}

// Review creates or replaces the caller's review and refreshes the course
// rating in the same transaction. Only enrolled users may review.
func (s *CourseService) Review(ctx context.Context, caller *model.User, p *model.CreateReviewPayload) (*model.Review, error) {
	courseID := p.UUID()

	var review *model.Review
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Courses().Lock(ctx, courseID); err != nil {
			return err
		}
		if _, err := tx.Enrollments().GetByUserAndCourse(ctx, caller.ID, courseID); err != nil {
			if repository.IsNotFound(err) {
				return errs.NewForbiddenError("Only enrolled users can review this course", false)
			}
			return err
		}

		var err error
		review, err = tx.Reviews().Upsert(ctx, caller.ID, courseID, p.Rating, p.Comment)
		if err != nil {
			return errors.Wrap(err, "save review")
		}
		if _, err := tx.Courses().RefreshRating(ctx, courseID); err != nil {
			return errors.Wrap(err, "refresh rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}
