package repository

import (
	"context"
	"time"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EnrollmentRepo is the PostgreSQL EnrollmentRepository.
type EnrollmentRepo struct {
	db DBTX
}

const enrollmentColumns = `id, user_id, course_id, status, progress, enrolled_at, completed_at, last_accessed_at`

// Get returns the enrollment or an enrollments not-found error.
func (r *EnrollmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	e, err := collectOne[model.Enrollment](ctx, r.db,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
	return e, notFound(err, "enrollments")
}

// GetByUserAndCourse looks up the single enrollment of a user in a course.
func (r *EnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	e, err := collectOne[model.Enrollment](ctx, r.db,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 AND course_id = $2`,
		userID, courseID)
	return e, notFound(err, "enrollments")
}

// Create relies on the (user_id, course_id) unique constraint so two
// concurrent requests cannot both insert.
func (r *EnrollmentRepo) Create(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, bool, error) {
	e, err := collectOne[model.Enrollment](ctx, r.db, `
		INSERT INTO enrollments (user_id, course_id, last_accessed_at)
		VALUES ($1, $2, now())
		ON CONFLICT ON CONSTRAINT unique_enrollments_course DO NOTHING
		RETURNING `+enrollmentColumns,
		userID, courseID,
	)
	if err == nil {
		return e, true, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}
	existing, err := r.GetByUserAndCourse(ctx, userID, courseID)
	return existing, false, err
}

// Delete removes the enrollment. Its lesson_progress rows go with it through the
// foreign key cascade; the course counter is the caller's job.
func (r *EnrollmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFound("enrollments")
	}
	return nil
}

// Save writes the mutable columns and returns the stored row.
func (r *EnrollmentRepo) Save(ctx context.Context, e *model.Enrollment) (*model.Enrollment, error) {
	saved, err := collectOne[model.Enrollment](ctx, r.db, `
		UPDATE enrollments
		SET status = $2, progress = $3, completed_at = $4, last_accessed_at = $5
		WHERE id = $1
		RETURNING `+enrollmentColumns,
		e.ID, e.Status, e.Progress, e.CompletedAt, e.LastAccessedAt,
	)
	return saved, notFound(err, "enrollments")
}

// ListByUser returns the user's enrollments joined with course details and
// lesson counts, most recently accessed first.
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	return collect[model.EnrollmentWithCourse](ctx, r.db, `
		SELECT `+prefixed("e", enrollmentColumns)+`,
			c.title AS course_title,
			c.slug AS course_slug,
			c.thumbnail_url AS course_thumbnail_url,
			c.level AS course_level,
			c.rating AS course_rating,
			u.name AS instructor_name,
			(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS total_lessons,
			(SELECT COUNT(*) FROM lesson_progress lp WHERE lp.enrollment_id = e.id AND lp.completed) AS completed_lessons
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE e.user_id = $1
		ORDER BY COALESCE(e.last_accessed_at, e.enrolled_at) DESC, e.id`,
		userID,
	)
}

// ListByCourse returns the enrollments of a course in enrollment order.
func (r *EnrollmentRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	return collect[model.Enrollment](ctx, r.db,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE course_id = $1 ORDER BY enrolled_at, id`,
		courseID)
}

// ------------------------------------------------------------

// ProgressRepo is the PostgreSQL ProgressRepository.
type ProgressRepo struct {
	db DBTX
}

const progressColumns = `
	id, enrollment_id, lesson_id, user_id, completed, completed_at,
	time_spent_seconds, created_at, updated_at`

// Get returns the progress row of one lesson in an enrollment, or a
// lesson_progress not-found error when the lesson was never started.
func (r *ProgressRepo) Get(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	p, err := collectOne[model.LessonProgress](ctx, r.db,
		`SELECT `+progressColumns+` FROM lesson_progress WHERE enrollment_id = $1 AND lesson_id = $2`,
		enrollmentID, lessonID)
	return p, notFound(err, "lesson_progress")
}

// Complete upserts on (enrollment_id, lesson_id). The first completed_at is kept
// while time_spent_seconds accumulates.
func (r *ProgressRepo) Complete(ctx context.Context, enrollmentID, lessonID, userID uuid.UUID, seconds int, at time.Time) (*model.LessonProgress, error) {
	return collectOne[model.LessonProgress](ctx, r.db, `
		INSERT INTO lesson_progress (enrollment_id, lesson_id, user_id, completed, completed_at, time_spent_seconds, updated_at)
		VALUES ($1, $2, $3, TRUE, $5, $4, $5)
		ON CONFLICT ON CONSTRAINT unique_lesson_progress_lesson DO UPDATE
		SET completed = TRUE,
			completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at),
			time_spent_seconds = lesson_progress.time_spent_seconds + EXCLUDED.time_spent_seconds,
			updated_at = EXCLUDED.updated_at
		RETURNING `+progressColumns,
		enrollmentID, lessonID, userID, seconds, at,
	)
}

// CountCompleted counts the completed lessons of an enrollment.
func (r *ProgressRepo) CountCompleted(ctx context.Context, enrollmentID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_progress WHERE enrollment_id = $1 AND completed`,
		enrollmentID).Scan(&n)
	return n, err
}

// ListForEnrollment returns every lesson of the course in position order with the
// enrollment's progress on it. Lessons not started yet come back not completed.
func (r *ProgressRepo) ListForEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID) ([]model.LessonProgressItem, error) {
	return collect[model.LessonProgressItem](ctx, r.db, `
		SELECT l.id AS lesson_id, l.title, l.position, l.duration_minutes,
			COALESCE(lp.completed, FALSE) AS completed,
			lp.completed_at,
			COALESCE(lp.time_spent_seconds, 0) AS time_spent_seconds
		FROM lessons l
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.enrollment_id = $1
		WHERE l.course_id = $2
		ORDER BY l.position, l.created_at`,
		enrollmentID, courseID,
	)
}

// ActivityDays returns the days newest first, which is the order Streak expects.
func (r *ProgressRepo) ActivityDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT (updated_at AT TIME ZONE 'UTC')::date AS day
		FROM lesson_progress
		WHERE user_id = $1
		ORDER BY day DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// ------------------------------------------------------------

// CertificateRepo is the PostgreSQL CertificateRepository.
type CertificateRepo struct {
	db DBTX
}

const certificateColumns = `id, user_id, course_id, certificate_number, issued_at`

// Issue inserts on the (user_id, course_id) constraint and falls back to the
// existing row, so concurrent completions still yield one certificate.
func (r *CertificateRepo) Issue(ctx context.Context, userID, courseID uuid.UUID, number string) (*model.Certificate, bool, error) {
	cert, err := collectOne[model.Certificate](ctx, r.db, `
		INSERT INTO certificates (user_id, course_id, certificate_number)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_certificates_course DO NOTHING
		RETURNING `+certificateColumns,
		userID, courseID, number,
	)
	if err == nil {
		return cert, true, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}
	existing, err := collectOne[model.Certificate](ctx, r.db,
		`SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1 AND course_id = $2`,
		userID, courseID)
	return existing, false, notFound(err, "certificates")
}

// ListByUser returns the user's certificates with course and instructor names,
// newest first.
func (r *CertificateRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CertificateWithCourse, error) {
	return collect[model.CertificateWithCourse](ctx, r.db, `
		SELECT `+prefixed("cert", certificateColumns)+`,
			c.title AS course_title,
			c.slug AS course_slug,
			u.name AS instructor_name
		FROM certificates cert
		JOIN courses c ON c.id = cert.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE cert.user_id = $1
		ORDER BY cert.issued_at DESC, cert.id`,
		userID,
	)
}
