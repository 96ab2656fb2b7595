package memstore

import (
	"context"
	"slices"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type courseRepo struct{ s *Store }

func (d *data) lessonCount(courseID uuid.UUID) int {
	n := 0
	for _, l := range d.lessons {
		if l.CourseID == courseID {
			n++
		}
	}
	return n
}

// summary joins the course with its live lesson, enrollment and rating figures.
func (d *data) summary(c model.Course) model.CourseSummary {
	s := model.CourseSummary{Course: c, LessonCount: d.lessonCount(c.ID)}
	if u, ok := d.users[c.InstructorID]; ok {
		s.InstructorName = u.Name
	}
	if c.CategoryID != nil {
		if cat, ok := d.categories[*c.CategoryID]; ok {
			s.CategoryName = ptr(cat.Name)
			s.CategorySlug = ptr(cat.Slug)
		}
	}
	return s
}

func (d *data) inCategory(c model.Course, id *uuid.UUID, slug string) bool {
	switch {
	case id != nil:
		return c.CategoryID != nil && *c.CategoryID == *id
	case slug != "":
		if c.CategoryID == nil {
			return false
		}
		cat, ok := d.categories[*c.CategoryID]
		return ok && cat.Slug == slug
	}
	return true
}

// checkCourseRefs enforces the instructor and category foreign keys.
func (d *data) checkCourseRefs(c *model.Course) error {
	if _, ok := d.users[c.InstructorID]; !ok {
		return foreignKeyViolation("courses", "instructor_id")
	}
	if c.CategoryID != nil {
		if _, ok := d.categories[*c.CategoryID]; !ok {
			return foreignKeyViolation("courses", "category_id")
		}
	}
	return nil
}

func (r courseRepo) List(ctx context.Context, f model.CourseFilter) ([]model.CourseSummary, int, error) {
	unlock, err := r.s.lock(ctx, "courses.list")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var items []model.CourseSummary
	for _, c := range r.s.d.courses {
		if !c.IsPublished || !r.s.d.inCategory(c, f.CategoryID, f.CategorySlug) {
			continue
		}
		if f.Level != "" && c.Level != f.Level {
			continue
		}
		if f.InstructorID != nil && c.InstructorID != *f.InstructorID {
			continue
		}
		items = append(items, r.s.d.summary(c))
	}
	slices.SortFunc(items, func(a, b model.CourseSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return page(items, f.Offset, f.Limit), len(items), nil
}

func (r courseRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	unlock, err := r.s.lock(ctx, "courses.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, ok := r.s.d.courses[id]
	if !ok {
		return nil, repository.NotFound("courses")
	}
	return &c, nil
}

func (r courseRepo) GetSummary(ctx context.Context, id uuid.UUID) (*model.CourseSummary, error) {
	unlock, err := r.s.lock(ctx, "courses.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, ok := r.s.d.courses[id]
	if !ok {
		return nil, repository.NotFound("courses")
	}
	s := r.s.d.summary(c)
	return &s, nil
}

// Lock is GetByID; transactions are already serialized.
func (r courseRepo) Lock(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return r.GetByID(ctx, id)
}

func (r courseRepo) Create(ctx context.Context, course *model.Course) (*model.Course, error) {
	unlock, err := r.s.lock(ctx, "courses.create")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := r.s.d.checkCourseRefs(course); err != nil {
		return nil, err
	}
	for _, c := range r.s.d.courses {
		if c.Slug == course.Slug {
			return nil, uniqueViolation("courses", "unique_courses_slug")
		}
	}

	now := r.s.Now()
	c := *course
	c.ID = uuid.New()
	if c.Level == "" {
		c.Level = model.LevelBeginner
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.EnrollmentCount, c.Rating, c.ReviewCount = 0, decimal.Zero, 0
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.d.courses[c.ID] = c
	return &c, nil
}

func (r courseRepo) Update(ctx context.Context, course *model.Course) (*model.Course, error) {
	unlock, err := r.s.lock(ctx, "courses.update")
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, ok := r.s.d.courses[course.ID]
	if !ok {
		return nil, repository.NotFound("courses")
	}
	if err := r.s.d.checkCourseRefs(course); err != nil {
		return nil, err
	}
	for _, other := range r.s.d.courses {
		if other.ID != course.ID && other.Slug == course.Slug {
			return nil, uniqueViolation("courses", "unique_courses_slug")
		}
	}

	c.Title, c.Slug, c.Description = course.Title, course.Slug, course.Description
	c.ShortDescription, c.ThumbnailURL, c.CategoryID = course.ShortDescription, course.ThumbnailURL, course.CategoryID
	c.Level, c.Price, c.DurationMinutes = course.Level, course.Price, course.DurationMinutes
	c.IsPublished = course.IsPublished
	c.Tags = slices.Clone(course.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.UpdatedAt = r.s.Now()
	r.s.d.courses[c.ID] = c
	return &c, nil
}

func (r courseRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	unlock, err := r.s.lock(ctx, "courses.slug")
	if err != nil {
		return false, err
	}
	defer unlock()

	for _, c := range r.s.d.courses {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r courseRepo) AdjustEnrollmentCount(ctx context.Context, id uuid.UUID, delta int) error {
	unlock, err := r.s.lock(ctx, "courses.adjust_enrollment_count")
	if err != nil {
		return err
	}
	defer unlock()

	c, ok := r.s.d.courses[id]
	if !ok {
		return repository.NotFound("courses")
	}
	c.EnrollmentCount = max(c.EnrollmentCount+delta, 0)
	r.s.d.courses[id] = c
	return nil
}

func (d *data) ratingOf(courseID uuid.UUID) (decimal.Decimal, int) {
	sum, n := 0, 0
	for _, rv := range d.reviews {
		if rv.CourseID == courseID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, 0
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).Round(2), n
}

func (d *data) enrollmentCount(courseID uuid.UUID) int {
	n := 0
	for _, e := range d.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n
}

func (r courseRepo) RefreshRating(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	unlock, err := r.s.lock(ctx, "courses.refresh_rating")
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, ok := r.s.d.courses[id]
	if !ok {
		return nil, repository.NotFound("courses")
	}
	c.Rating, c.ReviewCount = r.s.d.ratingOf(id)
	c.UpdatedAt = r.s.Now()
	r.s.d.courses[id] = c
	return &c, nil
}

// ReconcileCounters rewrites stored counters that drifted from the rows.
func (r courseRepo) ReconcileCounters(ctx context.Context) (int64, error) {
	unlock, err := r.s.lock(ctx, "courses.reconcile")
	if err != nil {
		return 0, err
	}
	defer unlock()

	var fixed int64
	for id, c := range r.s.d.courses {
		rating, reviews := r.s.d.ratingOf(id)
		enrollments := r.s.d.enrollmentCount(id)
		if c.EnrollmentCount == enrollments && c.ReviewCount == reviews && c.Rating.Equal(rating) {
			continue
		}
		c.EnrollmentCount, c.Rating, c.ReviewCount = enrollments, rating, reviews
		r.s.d.courses[id] = c
		fixed++
	}
	return fixed, nil
}

// SetEnrollmentCount overwrites the counter, to simulate drift.
func (s *Store) SetEnrollmentCount(id uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.d.courses[id]; ok {
		c.EnrollmentCount = n
		s.d.courses[id] = c
	}
}
