package service

import (
	"context"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/lib/learning"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// UserService manages learner profiles and the per-user views
// (enrollments, certificates, stats).
type UserService struct {
	*base
}

// Caller loads the profile bound to the auth subject.
func (s *UserService) Caller(ctx context.Context, subject string) (*model.User, error) {
	if subject == "" {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	user, err := s.store.Users().GetByExternalID(ctx, subject)
	if repository.IsNotFound(err) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load caller")
	}
	return user, nil
}

// Create registers the profile of subject. When the profile already exists
// it is returned unchanged and created is false.
func (s *UserService) Create(ctx context.Context, subject string, p *model.CreateUserPayload) (user *model.User, created bool, err error) {
	existing, err := s.store.Users().GetByExternalID(ctx, subject)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, errors.Wrap(err, "lookup profile")
	}

	role := p.Role
	if role == "" {
		role = model.RoleStudent
	}
	user, err = s.store.Users().Create(ctx, &model.User{
		ExternalID: subject,
		Email:      p.Email,
		Name:       p.Name,
		AvatarURL:  p.AvatarURL,
		Bio:        p.Bio,
		Role:       role,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "create profile")
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("profile created")
	s.notify(ctx, "welcome", func(n Notifier) error { return n.WelcomeUser(ctx, user) })
	return user, true, nil
}

// Update applies the non-nil fields of p to the caller's profile.
//
// Role and email are not editable here: the role is fixed at registration and the
// email belongs to the auth provider.
func (s *UserService) Update(ctx context.Context, caller *model.User, p *model.UpdateUserPayload) (*model.User, error) {
	next := *caller
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.AvatarURL != nil {
		next.AvatarURL = p.AvatarURL
	}
	if p.Bio != nil {
		next.Bio = p.Bio
	}
	user, err := s.store.Users().Update(ctx, &next)
	if err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return user, nil
}

// Public returns the public profile of any user.
func (s *UserService) Public(ctx context.Context, id uuid.UUID) (*model.PublicUser, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// Enrollments lists the caller's enrollments, never nil.
func (s *UserService) Enrollments(ctx context.Context, caller *model.User) ([]model.EnrollmentWithCourse, error) {
	items, err := s.store.Enrollments().ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	if items == nil {
		items = []model.EnrollmentWithCourse{}
	}
	return items, nil
}

// Certificates lists the caller's certificates, newest first.
func (s *UserService) Certificates(ctx context.Context, caller *model.User) ([]model.CertificateWithCourse, error) {
	items, err := s.store.Certificates().ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list certificates")
	}
	if items == nil {
		items = []model.CertificateWithCourse{}
	}
	return items, nil
}

// Stats returns the learner dashboard numbers, streaks included.
func (s *UserService) Stats(ctx context.Context, caller *model.User) (*model.UserStats, error) {
	stats, err := s.store.Users().Stats(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load stats")
	}
	days, err := s.store.Progress().ActivityDays(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load activity")
	}
	stats.CurrentStreak = learning.Streak(days, s.now())
	stats.LongestStreak = learning.LongestStreak(days)
	return stats, nil
}
