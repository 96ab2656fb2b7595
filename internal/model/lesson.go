package model

import (
	"time"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
)

// Lesson is a row of the lessons table. Content is markdown.
type Lesson struct {
	ID              uuid.UUID `json:"id" db:"id"`
	CourseID        uuid.UUID `json:"courseId" db:"course_id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description" db:"description"`
	Content         string    `json:"content" db:"content"`
	VideoURL        *string   `json:"videoUrl" db:"video_url"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	Position        int       `json:"position" db:"position"`
	IsFree          bool      `json:"isFree" db:"is_free"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Outline drops the lesson body.
func (l *Lesson) Outline() LessonOutline {
	return LessonOutline{
		ID:              l.ID,
		CourseID:        l.CourseID,
		Title:           l.Title,
		Description:     l.Description,
		VideoURL:        l.VideoURL,
		DurationMinutes: l.DurationMinutes,
		Position:        l.Position,
		IsFree:          l.IsFree,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// LessonOutline is a lesson without its content, used in course outlines.
type LessonOutline struct {
	ID              uuid.UUID `json:"id" db:"id"`
	CourseID        uuid.UUID `json:"courseId" db:"course_id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description" db:"description"`
	VideoURL        *string   `json:"videoUrl" db:"video_url"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	Position        int       `json:"position" db:"position"`
	IsFree          bool      `json:"isFree" db:"is_free"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// LessonDetail is a lesson with its rendered body.
type LessonDetail struct {
	Lesson
	ContentHTML string `json:"contentHtml"`
	CourseTitle string `json:"courseTitle"`
	CourseSlug  string `json:"courseSlug"`
}

// ------------------------------------------------------------

// ListCourseLessonsPayload carries the :courseId path parameter.
type ListCourseLessonsPayload struct {
	CourseID string `param:"courseId" json:"-" validate:"required,uuid"`
}

// Validate implements validation.Validatable.
func (p *ListCourseLessonsPayload) Validate() error {
	return validation.Struct(p)
}

// CourseUUID returns the parsed course id. Call after Validate.
func (p *ListCourseLessonsPayload) CourseUUID() uuid.UUID {
	return mustUUID(p.CourseID)
}

// CreateLessonPayload is the body of POST /api/lessons. Content is markdown.
// Without a Position, or with one past the end, the lesson is appended;
// otherwise lessons at or after Position move down by one.
type CreateLessonPayload struct {
	CourseID        string  `json:"courseId" validate:"required,uuid"`
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	Content         string  `json:"content" validate:"max=200000"`
	VideoURL        *string `json:"videoUrl" validate:"omitempty,url,max=2048"`
	DurationMinutes int     `json:"durationMinutes" validate:"gte=0,lte=10000"`
	Position        *int    `json:"position" validate:"omitempty,min=1"`
	IsFree          bool    `json:"isFree"`
}

// Validate implements validation.Validatable.
func (p *CreateLessonPayload) Validate() error {
	return validation.Struct(p)
}

// CourseUUID returns the parsed course id. Call after Validate.
func (p *CreateLessonPayload) CourseUUID() uuid.UUID {
	return mustUUID(p.CourseID)
}

// UpdateLessonPayload is the body of PUT /api/lessons/:id. Only non-nil fields
// are applied.
type UpdateLessonPayload struct {
	IDParam
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	Content         *string `json:"content" validate:"omitempty,max=200000"`
	VideoURL        *string `json:"videoUrl" validate:"omitempty,url,max=2048"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,gte=0,lte=10000"`
	Position        *int    `json:"position" validate:"omitempty,min=1"`
	IsFree          *bool   `json:"isFree"`
}

// Validate implements validation.Validatable.
func (p *UpdateLessonPayload) Validate() error {
	return validation.Struct(p)
}

// CompleteLessonPayload is the body of POST /api/lessons/:id/complete. The body
// is optional.
type CompleteLessonPayload struct {
	IDParam
	// TimeSpent is in seconds.
	TimeSpent *int `json:"timeSpent" validate:"omitempty,gte=0,lte=86400"`
}

// Validate caps TimeSpent at one day.
func (p *CompleteLessonPayload) Validate() error {
	return validation.Struct(p)
}

// Seconds returns the reported time, zero when absent.
func (p *CompleteLessonPayload) Seconds() int {
	if p.TimeSpent == nil {
		return 0
	}
	return *p.TimeSpent
}
