package model

import (
	"time"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
)

// Certificate is issued once per user and course when an enrollment reaches 100%.
// CertificateNumber looks like LH-20260115-3F9A1C2B.
type Certificate struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	CourseID          uuid.UUID `json:"courseId" db:"course_id"`
	CertificateNumber string    `json:"certificateNumber" db:"certificate_number"`
	IssuedAt          time.Time `json:"issuedAt" db:"issued_at"`
}

// CertificateWithCourse adds what a certificate listing shows about the course.
type CertificateWithCourse struct {
	Certificate
	CourseTitle    string `json:"courseTitle" db:"course_title"`
	CourseSlug     string `json:"courseSlug" db:"course_slug"`
	InstructorName string `json:"instructorName" db:"instructor_name"`
}

// Review is a row of the reviews table, one per user and course.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CourseID  uuid.UUID `json:"courseId" db:"course_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ReviewWithUser adds the author's public name and avatar.
type ReviewWithUser struct {
	Review
	UserName      string  `json:"userName" db:"user_name"`
	UserAvatarURL *string `json:"userAvatarUrl" db:"user_avatar_url"`
}

// ------------------------------------------------------------

// ListReviewsQuery is the course id from the path plus paging.
type ListReviewsQuery struct {
	IDParam
	PageQuery
}

// Validate implements validation.Validatable.
func (p *ListReviewsQuery) Validate() error {
	return validation.Struct(p)
}

// CreateReviewPayload is the body of POST /api/courses/:id/reviews.
type CreateReviewPayload struct {
	IDParam
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// Validate requires a rating from 1 to 5.
func (p *CreateReviewPayload) Validate() error {
	return validation.Struct(p)
}
