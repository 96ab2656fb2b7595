package model

import (
	"time"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
)

// User roles.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User is an account. ExternalID is the subject issued by the auth provider.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"externalId" db:"external_id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	AvatarURL  *string   `json:"avatarUrl" db:"avatar_url"`
	Bio        *string   `json:"bio" db:"bio"`
	Role       string    `json:"role" db:"role"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin is nil-safe.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanTeach reports whether the user may author courses.
func (u *User) CanTeach() bool {
	return u != nil && (u.Role == RoleInstructor || u.Role == RoleAdmin)
}

// Public strips private fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the profile visible to everyone.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
	Bio       *string   `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserStats is the learner dashboard summary.
type UserStats struct {
	EnrolledCourses       int `json:"enrolledCourses" db:"enrolled_courses"`
	CompletedCourses      int `json:"completedCourses" db:"completed_courses"`
	InProgressCourses     int `json:"inProgressCourses" db:"in_progress_courses"`
	Certificates          int `json:"certificates" db:"certificates"`
	LessonsCompleted      int `json:"lessonsCompleted" db:"lessons_completed"`
	TotalTimeSpentSeconds int `json:"totalTimeSpentSeconds" db:"total_time_spent_seconds"`
	AverageProgress       int `json:"averageProgress" db:"average_progress"`
	CurrentStreak         int `json:"currentStreak" db:"-"`
	LongestStreak         int `json:"longestStreak" db:"-"`
}

// ------------------------------------------------------------

// CreateUserPayload registers the caller's profile after signing in with the auth
// provider. Admin cannot be chosen here.
type CreateUserPayload struct {
	Email     string  `json:"email" validate:"required,email,max=254"`
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	Role      string  `json:"role" validate:"omitempty,oneof=student instructor"`
}

// Validate implements validation.Validatable.
func (p *CreateUserPayload) Validate() error {
	return validation.Struct(p)
}

// UpdateUserPayload is the body of PUT /api/users/me. Only non-nil fields are
// applied.
type UpdateUserPayload struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

// Validate implements validation.Validatable.
func (p *UpdateUserPayload) Validate() error {
	return validation.Struct(p)
}
