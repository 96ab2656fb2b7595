package repository

import (
	"context"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
)

// ReviewRepo is the PostgreSQL ReviewRepository.
type ReviewRepo struct {
	db DBTX
}

const reviewColumns = `id, user_id, course_id, rating, comment, created_at, updated_at`

// Upsert creates the user's review of the course or replaces it.
func (r *ReviewRepo) Upsert(ctx context.Context, userID, courseID uuid.UUID, rating int, comment *string) (*model.Review, error) {
	return collectOne[model.Review](ctx, r.db, `
		INSERT INTO reviews (user_id, course_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT unique_reviews_course DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
		RETURNING `+reviewColumns,
		userID, courseID, rating, comment,
	)
}

// ListByCourse returns one page of reviews with their authors and the total
// number of reviews of the course.
func (r *ReviewRepo) ListByCourse(ctx context.Context, courseID uuid.UUID, offset, limit int) ([]model.ReviewWithUser, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE course_id = $1`, courseID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.ReviewWithUser{}, 0, nil
	}

	items, err := collect[model.ReviewWithUser](ctx, r.db, `
		SELECT `+prefixed("rv", reviewColumns)+`,
			u.name AS user_name,
			u.avatar_url AS user_avatar_url
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.course_id = $1
		ORDER BY rv.created_at DESC, rv.id
		LIMIT $2 OFFSET $3`,
		courseID, limit, offset,
	)
	return items, total, err
}
