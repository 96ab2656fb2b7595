package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/deppfellow/learnhub/internal/lib/utils"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/pkg/errors"
)

// Global search returns this many hits per kind unless limit says otherwise.
const (
	defaultGlobalLimit = 5
	maxGlobalLimit     = 20
)

// SearchService searches published courses and lessons.
type SearchService struct {
	*base
}

// Courses returns one page of matching courses. Without an explicit sort, exact
// title matches rank first, then title prefixes, then other matches.
func (s *SearchService) Courses(ctx context.Context, q *model.SearchCoursesQuery) (*model.Page[model.CourseSummary], error) {
	search, page, limit := q.Search()
	items, total, err := s.store.Search().Courses(ctx, search)
	if err != nil {
		return nil, errors.Wrap(err, "search courses")
	}
	result := model.NewPage(items, total, page, limit)
	return &result, nil
}

// Lessons returns one page of matching lessons with their course title and slug.
func (s *SearchService) Lessons(ctx context.Context, q *model.SearchLessonsQuery) (*model.Page[model.LessonHit], error) {
	search, page, limit := q.Search()
	items, total, err := s.store.Search().Lessons(ctx, search)
	if err != nil {
		return nil, errors.Wrap(err, "search lessons")
	}
	result := model.NewPage(items, total, page, limit)
	return &result, nil
}

// Global returns the top course and lesson hits for q. An empty query has
// no hits.
func (s *SearchService) Global(ctx context.Context, q *model.GlobalSearchQuery) (*model.SearchResults, error) {
	query := strings.TrimSpace(q.Q)
	results := &model.SearchResults{
		Query:   query,
		Courses: []model.CourseSummary{},
		Lessons: []model.LessonHit{},
	}
	if query == "" {
		return results, nil
	}
	_, limit := utils.NormalizePage(1, q.Limit, defaultGlobalLimit, maxGlobalLimit)

	courses, _, err := s.store.Search().Courses(ctx, model.CourseSearch{Query: query, Sort: model.SortRelevance, Limit: limit})
	if err != nil {
		return nil, errors.Wrap(err, "search courses")
	}
	lessons, _, err := s.store.Search().Lessons(ctx, model.LessonSearch{Query: query, Limit: limit})
	if err != nil {
		return nil, errors.Wrap(err, "search lessons")
	}
	if courses != nil {
		results.Courses = courses
	}
	if lessons != nil {
		results.Lessons = lessons
	}
	return results, nil
}

// Suggestions autocompletes course and lesson titles. Queries shorter than
// two characters return nothing.
func (s *SearchService) Suggestions(ctx context.Context, q *model.SuggestionsQuery) ([]model.Suggestion, error) {
	query := strings.TrimSpace(q.Q)
	if utf8.RuneCountInString(query) < model.MinSuggestionQuery {
		return []model.Suggestion{}, nil
	}
	_, limit := utils.NormalizePage(1, q.Limit, model.DefaultSuggestionLimit, model.MaxSuggestionLimit)

	items, err := s.store.Search().Suggestions(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "suggestions")
	}
	if items == nil {
		items = []model.Suggestion{}
	}
	return items, nil
}
