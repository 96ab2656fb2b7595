package repository

import (
	"context"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
)

// CourseRepo is the PostgreSQL CourseRepository.
type CourseRepo struct {
	db DBTX
}

// CategoryRepo is the PostgreSQL CategoryRepository.
type CategoryRepo struct {
	db DBTX
}

const courseColumns = `
	id, title, slug, description, short_description, thumbnail_url,
	instructor_id, category_id, level, price, duration_minutes, is_published,
	enrollment_count, rating, review_count, tags, created_at, updated_at`

const courseSummaryColumns = `
	c.id, c.title, c.slug, c.description, c.short_description, c.thumbnail_url,
	c.instructor_id, c.category_id, c.level, c.price, c.duration_minutes, c.is_published,
	c.enrollment_count, c.rating, c.review_count, c.tags, c.created_at, c.updated_at,
	u.name AS instructor_name,
	cat.name AS category_name,
	cat.slug AS category_slug,
	(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lesson_count`

const courseSummaryFrom = `
	FROM courses c
	JOIN users u ON u.id = c.instructor_id
	LEFT JOIN categories cat ON cat.id = c.category_id`

func applyCategory(w *whereClause, id *uuid.UUID, slug string) {
	switch {
	case id != nil:
		w.and("c.category_id = " + w.arg(*id))
	case slug != "":
		w.and("cat.slug = " + w.arg(slug))
	}
}

// List returns one page of published courses, newest first, and the total.
func (r *CourseRepo) List(ctx context.Context, f model.CourseFilter) ([]model.CourseSummary, int, error) {
	w := &whereClause{}
	w.and("c.is_published")
	applyCategory(w, f.CategoryID, f.CategorySlug)
	if f.Level != "" {
		w.and("c.level = " + w.arg(f.Level))
	}
	if f.InstructorID != nil {
		w.and("c.instructor_id = " + w.arg(*f.InstructorID))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+courseSummaryFrom+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.CourseSummary{}, 0, nil
	}

	where := w.String()
	sql := `SELECT ` + courseSummaryColumns + courseSummaryFrom + where +
		` ORDER BY c.created_at DESC, c.id` +
		` LIMIT ` + w.arg(f.Limit) + ` OFFSET ` + w.arg(f.Offset)

	items, err := collect[model.CourseSummary](ctx, r.db, sql, w.args...)
	return items, total, err
}

// GetByID returns the course whether or not it is published.
func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := collectOne[model.Course](ctx, r.db,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return course, notFound(err, "courses")
}

// GetSummary returns the course joined with its instructor, category and lesson count.
func (r *CourseRepo) GetSummary(ctx context.Context, id uuid.UUID) (*model.CourseSummary, error) {
	course, err := collectOne[model.CourseSummary](ctx, r.db,
		`SELECT `+courseSummaryColumns+courseSummaryFrom+` WHERE c.id = $1`, id)
	return course, notFound(err, "courses")
}

// Lock must run inside WithTx; outside a transaction the lock is released at once.
func (r *CourseRepo) Lock(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := collectOne[model.Course](ctx, r.db,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 FOR UPDATE`, id)
	return course, notFound(err, "courses")
}

// Create inserts the course with zeroed counters.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) (*model.Course, error) {
	return collectOne[model.Course](ctx, r.db, `
		INSERT INTO courses (
			title, slug, description, short_description, thumbnail_url,
			instructor_id, category_id, level, price, duration_minutes,
			is_published, tags
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+courseColumns,
		c.Title, c.Slug, c.Description, c.ShortDescription, c.ThumbnailURL,
		c.InstructorID, c.CategoryID, c.Level, c.Price, c.DurationMinutes,
		c.IsPublished, nonNilTags(c.Tags),
	)
}

// Update writes the editable columns. Counters are left alone.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) (*model.Course, error) {
	course, err := collectOne[model.Course](ctx, r.db, `
		UPDATE courses
		SET title = $2, slug = $3, description = $4, short_description = $5,
			thumbnail_url = $6, category_id = $7, level = $8, price = $9,
			duration_minutes = $10, is_published = $11, tags = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING `+courseColumns,
		c.ID, c.Title, c.Slug, c.Description, c.ShortDescription,
		c.ThumbnailURL, c.CategoryID, c.Level, c.Price,
		c.DurationMinutes, c.IsPublished, nonNilTags(c.Tags),
	)
	return course, notFound(err, "courses")
}

// SlugExists reports whether any course, published or not, uses slug.
func (r *CourseRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// AdjustEnrollmentCount clamps at zero in SQL so a drifted counter cannot go
// negative. A missing course is a not-found error, which rolls back the caller's
// transaction.
func (r *CourseRepo) AdjustEnrollmentCount(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE courses
		SET enrollment_count = GREATEST(enrollment_count + $2, 0)
		WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFound("courses")
	}
	return nil
}

// RefreshRating sets rating to the average review rating rounded to two
// decimals, 0 when there are no reviews.
func (r *CourseRepo) RefreshRating(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := collectOne[model.Course](ctx, r.db, `
		UPDATE courses c
		SET rating = agg.rating, review_count = agg.review_count, updated_at = now()
		FROM (
			SELECT COALESCE(ROUND(AVG(rating), 2), 0) AS rating, COUNT(*) AS review_count
			FROM reviews
			WHERE course_id = $1
		) agg
		WHERE c.id = $1
		RETURNING `+prefixed("c", courseColumns),
		id,
	)
	return course, notFound(err, "courses")
}

// ReconcileCounters only touches rows whose stored counters differ from the
// recomputed ones, so the returned count is the number of drifted courses.
func (r *CourseRepo) ReconcileCounters(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE courses c
		SET enrollment_count = agg.enrollment_count,
			rating = agg.rating,
			review_count = agg.review_count
		FROM (
			SELECT co.id,
				(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = co.id) AS enrollment_count,
				(SELECT COALESCE(ROUND(AVG(r.rating), 2), 0) FROM reviews r WHERE r.course_id = co.id) AS rating,
				(SELECT COUNT(*) FROM reviews r WHERE r.course_id = co.id) AS review_count
			FROM courses co
		) agg
		WHERE c.id = agg.id
		  AND (c.enrollment_count <> agg.enrollment_count
			OR c.rating <> agg.rating
			OR c.review_count <> agg.review_count)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListWithCounts returns every category with the number of published courses in it.
func (r *CategoryRepo) ListWithCounts(ctx context.Context) ([]model.CategoryWithCount, error) {
	return collect[model.CategoryWithCount](ctx, r.db, `
		SELECT cat.id, cat.name, cat.slug, cat.description, cat.created_at,
			COUNT(c.id) AS course_count
		FROM categories cat
		LEFT JOIN courses c ON c.category_id = cat.id AND c.is_published
		GROUP BY cat.id
		ORDER BY cat.name`)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
