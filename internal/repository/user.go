package repository

import (
	"context"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
)

// UserRepo is the PostgreSQL UserRepository.
type UserRepo struct {
	db DBTX
}

const userColumns = `id, external_id, email, name, avatar_url, bio, role, created_at, updated_at`

// Create inserts the profile. A second profile for the same external_id or email
// fails with a unique violation, which sqlerr maps to a 400 USER_ALREADY_EXISTS.
func (r *UserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return collectOne[model.User](ctx, r.db, `
		INSERT INTO users (external_id, email, name, avatar_url, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		user.ExternalID, user.Email, user.Name, user.AvatarURL, user.Bio, user.Role,
	)
}

// GetByID returns the user or a users not-found error.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := collectOne[model.User](ctx, r.db,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return user, notFound(err, "users")
}

// GetByExternalID finds the profile bound to an auth subject.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	user, err := collectOne[model.User](ctx, r.db,
		`SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
	return user, notFound(err, "users")
}

// Update writes the editable profile columns and bumps updated_at.
func (r *UserRepo) Update(ctx context.Context, user *model.User) (*model.User, error) {
	updated, err := collectOne[model.User](ctx, r.db, `
		UPDATE users
		SET name = $2, avatar_url = $3, bio = $4, role = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.AvatarURL, user.Bio, user.Role,
	)
	return updated, notFound(err, "users")
}

// Stats aggregates the dashboard counters in one round trip. Streaks are
// computed by the service from ProgressRepository.ActivityDays.
func (r *UserRepo) Stats(ctx context.Context, id uuid.UUID) (*model.UserStats, error) {
	return collectOne[model.UserStats](ctx, r.db, `
		SELECT
			(SELECT COUNT(*) FROM enrollments e WHERE e.user_id = $1) AS enrolled_courses,
			(SELECT COUNT(*) FROM enrollments e WHERE e.user_id = $1 AND e.status = 'completed') AS completed_courses,
			(SELECT COUNT(*) FROM enrollments e WHERE e.user_id = $1 AND e.status = 'active') AS in_progress_courses,
			(SELECT COUNT(*) FROM certificates c WHERE c.user_id = $1) AS certificates,
			(SELECT COUNT(*) FROM lesson_progress lp WHERE lp.user_id = $1 AND lp.completed) AS lessons_completed,
			(SELECT COALESCE(SUM(lp.time_spent_seconds), 0) FROM lesson_progress lp WHERE lp.user_id = $1) AS total_time_spent_seconds,
			(SELECT COALESCE(ROUND(AVG(e.progress)), 0)::int FROM enrollments e WHERE e.user_id = $1) AS average_progress`,
		id,
	)
}
