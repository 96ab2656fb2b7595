package model

import (
	"time"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Course levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Category is a row of the categories table. Categories are seeded by migrations
// and have no write endpoints.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// CategoryWithCount adds the number of published courses in the category.
type CategoryWithCount struct {
	Category
	CourseCount int `json:"courseCount" db:"course_count"`
}

// Course is a row of the courses table. EnrollmentCount, Rating and
// ReviewCount are denormalized and maintained by the service layer.
type Course struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Title            string          `json:"title" db:"title"`
	Slug             string          `json:"slug" db:"slug"`
	Description      string          `json:"description" db:"description"`
	ShortDescription *string         `json:"shortDescription" db:"short_description"`
	ThumbnailURL     *string         `json:"thumbnailUrl" db:"thumbnail_url"`
	InstructorID     uuid.UUID       `json:"instructorId" db:"instructor_id"`
	CategoryID       *uuid.UUID      `json:"categoryId" db:"category_id"`
	Level            string          `json:"level" db:"level"`
	Price            decimal.Decimal `json:"price" db:"price"`
	DurationMinutes  int             `json:"durationMinutes" db:"duration_minutes"`
	IsPublished      bool            `json:"isPublished" db:"is_published"`
	EnrollmentCount  int             `json:"enrollmentCount" db:"enrollment_count"`
	Rating           decimal.Decimal `json:"rating" db:"rating"`
	ReviewCount      int             `json:"reviewCount" db:"review_count"`
	Tags             []string        `json:"tags" db:"tags"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsFree reports whether the course costs nothing.
func (c *Course) IsFree() bool {
	return c.Price.IsZero()
}

// CourseSummary is a course with the joined fields shown in listings.
type CourseSummary struct {
	Course
	InstructorName string  `json:"instructorName" db:"instructor_name"`
	CategoryName   *string `json:"categoryName" db:"category_name"`
	CategorySlug   *string `json:"categorySlug" db:"category_slug"`
	LessonCount    int     `json:"lessonCount" db:"lesson_count"`
}

// CourseDetail is the single-course page: course, instructor and outline.
type CourseDetail struct {
	CourseSummary
	Instructor PublicUser      `json:"instructor"`
	Lessons    []LessonOutline `json:"lessons"`
}

// CourseFilter narrows the public course listing.
type CourseFilter struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	Level        string
	InstructorID *uuid.UUID
	Offset       int
	Limit        int
}

// ------------------------------------------------------------

// ListCoursesQuery is the query string of GET /api/courses. Category accepts
// either a category id or a slug.
type ListCoursesQuery struct {
	PageQuery
	Category     string `query:"category" validate:"omitempty,max=100"`
	Level        string `query:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	InstructorID string `query:"instructorId" validate:"omitempty,uuid"`
}

// Validate implements validation.Validatable.
func (p *ListCoursesQuery) Validate() error {
	return validation.Struct(p)
}

// Filter converts the query into a repository filter.
func (p *ListCoursesQuery) Filter() (CourseFilter, int, int) {
	page, limit := p.Normalized(DefaultCourseLimit, MaxCourseLimit)
	f := CourseFilter{
		Level:        p.Level,
		InstructorID: optionalUUID(&p.InstructorID),
		Offset:       (page - 1) * limit,
		Limit:        limit,
	}
	if id, err := uuid.Parse(p.Category); err == nil {
		f.CategoryID = &id
	} else {
		f.CategorySlug = p.Category
	}
	return f, page, limit
}

// CreateCoursePayload is the body of POST /api/courses. A nil Price means a free
// course and an empty Level defaults to beginner.
type CreateCoursePayload struct {
	Title            string           `json:"title" validate:"required,min=3,max=200"`
	Description      string           `json:"description" validate:"required,max=20000"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=300"`
	ThumbnailURL     *string          `json:"thumbnailUrl" validate:"omitempty,url,max=2048"`
	CategoryID       *string          `json:"categoryId" validate:"omitempty,uuid"`
	Level            string           `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price            *decimal.Decimal `json:"price"`
	DurationMinutes  int              `json:"durationMinutes" validate:"gte=0,lte=100000"`
	IsPublished      bool             `json:"isPublished"`
	Tags             []string         `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// Validate checks the struct tags, then the price range and scale, which tags
// cannot express for decimal.Decimal.
func (p *CreateCoursePayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return validatePrice(p.Price)
}

// CategoryUUID returns the parsed category id, if any.
func (p *CreateCoursePayload) CategoryUUID() *uuid.UUID {
	return optionalUUID(p.CategoryID)
}

// UpdateCoursePayload is the body of PUT /api/courses/:id. Only non-nil fields
// are applied; a non-nil Tags replaces the whole list.
type UpdateCoursePayload struct {
	IDParam
	Title            *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string          `json:"description" validate:"omitempty,max=20000"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=300"`
	ThumbnailURL     *string          `json:"thumbnailUrl" validate:"omitempty,url,max=2048"`
	CategoryID       *string          `json:"categoryId" validate:"omitempty,uuid"`
	Level            *string          `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price            *decimal.Decimal `json:"price"`
	DurationMinutes  *int             `json:"durationMinutes" validate:"omitempty,gte=0,lte=100000"`
	IsPublished      *bool            `json:"isPublished"`
	Tags             []string         `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// Validate works like CreateCoursePayload.Validate.
func (p *UpdateCoursePayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return validatePrice(p.Price)
}

// CategoryUUID returns the parsed category id, if any.
func (p *UpdateCoursePayload) CategoryUUID() *uuid.UUID {
	return optionalUUID(p.CategoryID)
}

func init() {
	// Prices and ratings go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var maxPrice = decimal.NewFromInt(100000)

func validatePrice(price *decimal.Decimal) error {
	if price == nil {
		return nil
	}
	switch {
	case price.IsNegative():
		return validation.CustomValidationErrors{{Field: "price", Message: "must not be negative"}}
	case price.GreaterThanOrEqual(maxPrice):
		return validation.CustomValidationErrors{{Field: "price", Message: "must be less than 100000"}}
	case !price.Equal(price.Round(2)):
		return validation.CustomValidationErrors{{Field: "price", Message: "must have at most 2 decimal places"}}
	}
	return nil
}
