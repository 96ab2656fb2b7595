package model

import (
	"strings"

	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
)

// Search sort orders.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// CourseSearch is the repository-level course search.
type CourseSearch struct {
	Query        string
	CategoryID   *uuid.UUID
	CategorySlug string
	Level        string
	MinRating    float64
	FreeOnly     *bool
	Sort         string
	Offset       int
	Limit        int
}

// LessonSearch is the repository-level lesson search.
type LessonSearch struct {
	Query    string
	CourseID *uuid.UUID
	Offset   int
	Limit    int
}

// LessonHit is a lesson search result.
type LessonHit struct {
	LessonOutline
	CourseTitle string `json:"courseTitle" db:"course_title"`
	CourseSlug  string `json:"courseSlug" db:"course_slug"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Text string    `json:"text" db:"text"`
	Type string    `json:"type" db:"type"`
	Rank int       `json:"-" db:"rank"`
}

// SearchResults is the response of GET /search.
type SearchResults struct {
	Query   string          `json:"query"`
	Courses []CourseSummary `json:"courses"`
	Lessons []LessonHit     `json:"lessons"`
}

// ------------------------------------------------------------

// SearchCoursesQuery is the query string of GET /api/search/courses. Free is a
// string so that "not given" differs from false.
type SearchCoursesQuery struct {
	PageQuery
	Q         string  `query:"q" validate:"max=200"`
	Category  string  `query:"category" validate:"omitempty,max=100"`
	Level     string  `query:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	MinRating float64 `query:"minRating" validate:"gte=0,lte=5"`
	Free      string  `query:"free" validate:"omitempty,oneof=true false"`
	Sort      string  `query:"sort" validate:"omitempty,oneof=relevance newest popular rating price_asc price_desc"`
}

// Validate implements validation.Validatable.
func (p *SearchCoursesQuery) Validate() error {
	return validation.Struct(p)
}

// Search converts the query into a repository search.
func (p *SearchCoursesQuery) Search() (CourseSearch, int, int) {
	page, limit := p.Normalized(DefaultCourseLimit, MaxCourseLimit)
	s := CourseSearch{
		Query:     strings.TrimSpace(p.Q),
		Level:     p.Level,
		MinRating: p.MinRating,
		Sort:      p.Sort,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}
	if s.Sort == "" {
		s.Sort = SortRelevance
	}
	if p.Free != "" {
		free := p.Free == "true"
		s.FreeOnly = &free
	}
	if id, err := uuid.Parse(p.Category); err == nil {
		s.CategoryID = &id
	} else {
		s.CategorySlug = p.Category
	}
	return s, page, limit
}

// SearchLessonsQuery is the query string of GET /api/search/lessons.
type SearchLessonsQuery struct {
	PageQuery
	Q        string `query:"q" validate:"max=200"`
	CourseID string `query:"courseId" validate:"omitempty,uuid"`
}

// Validate implements validation.Validatable.
func (p *SearchLessonsQuery) Validate() error {
	return validation.Struct(p)
}

// Search converts the query into a repository search, returning the normalized
// page and limit alongside.
func (p *SearchLessonsQuery) Search() (LessonSearch, int, int) {
	page, limit := p.Normalized(DefaultCourseLimit, MaxCourseLimit)
	return LessonSearch{
		Query:    strings.TrimSpace(p.Q),
		CourseID: optionalUUID(&p.CourseID),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}, page, limit
}

// GlobalSearchQuery is the query string of GET /api/search. Limit applies to
// courses and lessons separately.
type GlobalSearchQuery struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"gte=0"`
}

// Validate implements validation.Validatable.
func (p *GlobalSearchQuery) Validate() error {
	return validation.Struct(p)
}

// SuggestionsQuery is the query string of GET /api/search/suggestions.
type SuggestionsQuery struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"gte=0"`
}

// Validate implements validation.Validatable.
func (p *SuggestionsQuery) Validate() error {
	return validation.Struct(p)
}
