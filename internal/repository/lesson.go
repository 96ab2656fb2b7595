package repository

import (
	"context"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
)

// LessonRepo is the PostgreSQL LessonRepository.
type LessonRepo struct {
	db DBTX
}

const lessonColumns = `
	id, course_id, title, description, content, video_url, duration_minutes,
	position, is_free, created_at, updated_at`

const lessonOutlineColumns = `
	id, course_id, title, description, video_url, duration_minutes,
	position, is_free, created_at, updated_at`

// ListByCourse returns the outline of a course. Content is left out.
func (r *LessonRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.LessonOutline, error) {
	return collect[model.LessonOutline](ctx, r.db, `
		SELECT `+lessonOutlineColumns+`
		FROM lessons
		WHERE course_id = $1
		ORDER BY position, created_at`,
		courseID,
	)
}

// GetByID returns the full lesson, content included.
func (r *LessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	lesson, err := collectOne[model.Lesson](ctx, r.db,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	return lesson, notFound(err, "lessons")
}

// Create inserts the lesson at l.Position. Making room for it is the caller's job.
func (r *LessonRepo) Create(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	return collectOne[model.Lesson](ctx, r.db, `
		INSERT INTO lessons (course_id, title, description, content, video_url, duration_minutes, position, is_free)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+lessonColumns,
		l.CourseID, l.Title, l.Description, l.Content, l.VideoURL, l.DurationMinutes, l.Position, l.IsFree,
	)
}

// Update writes every editable column, position included.
func (r *LessonRepo) Update(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	lesson, err := collectOne[model.Lesson](ctx, r.db, `
		UPDATE lessons
		SET title = $2, description = $3, content = $4, video_url = $5,
			duration_minutes = $6, position = $7, is_free = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+lessonColumns,
		l.ID, l.Title, l.Description, l.Content, l.VideoURL, l.DurationMinutes, l.Position, l.IsFree,
	)
	return lesson, notFound(err, "lessons")
}

// Delete removes the lesson and, by cascade, its progress rows.
func (r *LessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFound("lessons")
	}
	return nil
}

// CountByCourse counts the lessons of a course.
func (r *LessonRepo) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}

// MaxPosition returns the last position used in the course, 0 when empty.
func (r *LessonRepo) MaxPosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM lessons WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}

// ShiftPositions has no unique constraint on position to fight with, so a single
// UPDATE can move a whole range.
func (r *LessonRepo) ShiftPositions(ctx context.Context, courseID uuid.UUID, from, to, delta int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE lessons
		SET position = position + $4
		WHERE course_id = $1 AND position >= $2 AND ($3 <= 0 OR position <= $3)`,
		courseID, from, to, delta,
	)
	return err
}
