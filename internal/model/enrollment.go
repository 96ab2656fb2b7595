package model

import (
	"time"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Enrollment statuses. An enrollment is completed exactly when its
// progress is 100.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// Enrollment is a row of the enrollments table. Progress is the completed lesson
// percentage, 0 to 100; reaching 100 sets Status to completed and CompletedAt.
type Enrollment struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"userId" db:"user_id"`
	CourseID       uuid.UUID  `json:"courseId" db:"course_id"`
	Status         string     `json:"status" db:"status"`
	Progress       int        `json:"progress" db:"progress"`
	EnrolledAt     time.Time  `json:"enrolledAt" db:"enrolled_at"`
	CompletedAt    *time.Time `json:"completedAt" db:"completed_at"`
	LastAccessedAt *time.Time `json:"lastAccessedAt" db:"last_accessed_at"`
}

// EnrollmentWithCourse is an enrollment joined with its course summary.
type EnrollmentWithCourse struct {
	Enrollment
	CourseTitle        string          `json:"courseTitle" db:"course_title"`
	CourseSlug         string          `json:"courseSlug" db:"course_slug"`
	CourseThumbnailURL *string         `json:"courseThumbnailUrl" db:"course_thumbnail_url"`
	CourseLevel        string          `json:"courseLevel" db:"course_level"`
	CourseRating       decimal.Decimal `json:"courseRating" db:"course_rating"`
	InstructorName     string          `json:"instructorName" db:"instructor_name"`
	TotalLessons       int             `json:"totalLessons" db:"total_lessons"`
	CompletedLessons   int             `json:"completedLessons" db:"completed_lessons"`
}

// LessonProgress is the per-lesson record of one enrollment.
type LessonProgress struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	EnrollmentID     uuid.UUID  `json:"enrollmentId" db:"enrollment_id"`
	LessonID         uuid.UUID  `json:"lessonId" db:"lesson_id"`
	UserID           uuid.UUID  `json:"userId" db:"user_id"`
	Completed        bool       `json:"completed" db:"completed"`
	CompletedAt      *time.Time `json:"completedAt" db:"completed_at"`
	TimeSpentSeconds int        `json:"timeSpentSeconds" db:"time_spent_seconds"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// LessonProgressItem is one row of the enrollment progress breakdown.
type LessonProgressItem struct {
	LessonID         uuid.UUID  `json:"lessonId" db:"lesson_id"`
	Title            string     `json:"title" db:"title"`
	Position         int        `json:"position" db:"position"`
	DurationMinutes  int        `json:"durationMinutes" db:"duration_minutes"`
	Completed        bool       `json:"completed" db:"completed"`
	CompletedAt      *time.Time `json:"completedAt" db:"completed_at"`
	TimeSpentSeconds int        `json:"timeSpentSeconds" db:"time_spent_seconds"`
}

// EnrollmentProgress is the response of GET /enrollments/:id/progress.
type EnrollmentProgress struct {
	EnrollmentID     uuid.UUID            `json:"enrollmentId"`
	CourseID         uuid.UUID            `json:"courseId"`
	Status           string               `json:"status"`
	Progress         int                  `json:"progress"`
	CompletedLessons int                  `json:"completedLessons"`
	TotalLessons     int                  `json:"totalLessons"`
	Lessons          []LessonProgressItem `json:"lessons"`
}

// CompleteLessonResult is the response of POST /lessons/:id/complete.
type CompleteLessonResult struct {
	LessonProgress   *LessonProgress `json:"lessonProgress"`
	Enrollment       *Enrollment     `json:"enrollment"`
	AlreadyCompleted bool            `json:"alreadyCompleted"`
	CourseCompleted  bool            `json:"courseCompleted"`
	Certificate      *Certificate    `json:"certificate,omitempty"`
}

// EnrollResult tells whether Enroll created a row.
type EnrollResult struct {
	Enrollment *Enrollment
	Created    bool
}

// ------------------------------------------------------------

// EnrollPayload is the body of POST /api/enrollments. UserID lets an admin
// enroll someone else; for everyone else it must be empty or their own id.
type EnrollPayload struct {
	CourseID string  `json:"courseId" validate:"required,uuid"`
	UserID   *string `json:"userId" validate:"omitempty,uuid"`
}

// Validate implements validation.Validatable.
func (p *EnrollPayload) Validate() error {
	return validation.Struct(p)
}

// CourseUUID returns the parsed course id. Call after Validate.
func (p *EnrollPayload) CourseUUID() uuid.UUID {
	return mustUUID(p.CourseID)
}

// UserUUID returns the parsed target user, or nil when none was given.
func (p *EnrollPayload) UserUUID() *uuid.UUID {
	return optionalUUID(p.UserID)
}

// ListUserEnrollmentsPayload carries the :userId path parameter.
type ListUserEnrollmentsPayload struct {
	UserID string `param:"userId" json:"-" validate:"required,uuid"`
}

// Validate implements validation.Validatable.
func (p *ListUserEnrollmentsPayload) Validate() error {
	return validation.Struct(p)
}

// UserUUID returns the parsed user id. Call after Validate.
func (p *ListUserEnrollmentsPayload) UserUUID() uuid.UUID {
	return mustUUID(p.UserID)
}

// UpdateEnrollmentPayload changes the status. "completed" is derived from
// progress and cannot be set directly.
type UpdateEnrollmentPayload struct {
	IDParam
	Status string `json:"status" validate:"required,oneof=active dropped"`
}

// Validate implements validation.Validatable.
func (p *UpdateEnrollmentPayload) Validate() error {
	return validation.Struct(p)
}
