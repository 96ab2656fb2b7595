package memstore

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	unlock, err := r.s.lock(ctx, "users.create")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.s.d.users {
		if u.Email == user.Email {
			return nil, uniqueViolation("users", "unique_users_email")
		}
		if u.ExternalID == user.ExternalID {
			return nil, uniqueViolation("users", "unique_users_external")
		}
	}

	now := r.s.Now()
	u := *user
	u.ID = uuid.New()
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.d.users[u.ID] = u
	return &u, nil
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	unlock, err := r.s.lock(ctx, "users.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.s.d.users[id]
	if !ok {
		return nil, repository.NotFound("users")
	}
	return &u, nil
}

func (r userRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	unlock, err := r.s.lock(ctx, "users.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.s.d.users {
		if u.ExternalID == externalID {
			return &u, nil
		}
	}
	return nil, repository.NotFound("users")
}

func (r userRepo) Update(ctx context.Context, user *model.User) (*model.User, error) {
	unlock, err := r.s.lock(ctx, "users.update")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.s.d.users[user.ID]
	if !ok {
		return nil, repository.NotFound("users")
	}
	u.Name, u.AvatarURL, u.Bio, u.Role = user.Name, user.AvatarURL, user.Bio, user.Role
	u.UpdatedAt = r.s.Now()
	r.s.d.users[u.ID] = u
	return &u, nil
}

func (r userRepo) Stats(ctx context.Context, id uuid.UUID) (*model.UserStats, error) {
	unlock, err := r.s.lock(ctx, "users.stats")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var stats model.UserStats
	progressSum := 0
	for _, e := range r.s.d.enrollments {
		if e.UserID != id {
			continue
		}
		stats.EnrolledCourses++
		progressSum += e.Progress
		switch e.Status {
		case model.EnrollmentCompleted:
			stats.CompletedCourses++
		case model.EnrollmentActive:
			stats.InProgressCourses++
		}
	}
	if stats.EnrolledCourses > 0 {
		stats.AverageProgress = int(math.Round(float64(progressSum) / float64(stats.EnrolledCourses)))
	}
	for _, c := range r.s.d.certificates {
		if c.UserID == id {
			stats.Certificates++
		}
	}
	for _, p := range r.s.d.progress {
		if p.UserID != id {
			continue
		}
		if p.Completed {
			stats.LessonsCompleted++
		}
		stats.TotalTimeSpentSeconds += p.TimeSpentSeconds
	}
	return &stats, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) ListWithCounts(ctx context.Context) ([]model.CategoryWithCount, error) {
	unlock, err := r.s.lock(ctx, "categories.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make([]model.CategoryWithCount, 0, len(r.s.d.categories))
	for _, cat := range r.s.d.categories {
		item := model.CategoryWithCount{Category: cat}
		for _, c := range r.s.d.courses {
			if c.IsPublished && c.CategoryID != nil && *c.CategoryID == cat.ID {
				item.CourseCount++
			}
		}
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b model.CategoryWithCount) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}
