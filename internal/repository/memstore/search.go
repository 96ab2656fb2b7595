package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/deppfellow/learnhub/internal/model"
)

type searchRepo struct{ s *Store }

// titleRank mirrors the SQL CASE: exact, prefix, substring, other.
func titleRank(title, q string) int {
	switch {
	case strings.EqualFold(title, q):
		return 0
	case hasPrefixFold(title, q):
		return 1
	case containsFold(title, q):
		return 2
	}
	return 3
}

func courseMatches(c model.Course, q string) bool {
	if q == "" {
		return true
	}
	if containsFold(c.Title, q) || containsFold(c.Description, q) {
		return true
	}
	if c.ShortDescription != nil && containsFold(*c.ShortDescription, q) {
		return true
	}
	for _, tag := range c.Tags {
		if containsFold(tag, q) {
			return true
		}
	}
	return false
}

func (r searchRepo) Courses(ctx context.Context, s model.CourseSearch) ([]model.CourseSummary, int, error) {
	unlock, err := r.s.lock(ctx, "search.courses")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var items []model.CourseSummary
	for _, c := range r.s.d.courses {
		if !c.IsPublished || !courseMatches(c, s.Query) || !r.s.d.inCategory(c, s.CategoryID, s.CategorySlug) {
			continue
		}
		if s.Level != "" && c.Level != s.Level {
			continue
		}
		if s.MinRating > 0 && c.Rating.InexactFloat64() < s.MinRating {
			continue
		}
		if s.FreeOnly != nil && c.IsFree() != *s.FreeOnly {
			continue
		}
		items = append(items, r.s.d.summary(c))
	}

	slices.SortFunc(items, func(a, b model.CourseSummary) int {
		var c int
		switch s.Sort {
		case model.SortNewest:
			c = b.CreatedAt.Compare(a.CreatedAt)
		case model.SortPopular:
			c = cmp.Or(cmp.Compare(b.EnrollmentCount, a.EnrollmentCount), b.CreatedAt.Compare(a.CreatedAt))
		case model.SortRating:
			c = cmp.Or(b.Rating.Cmp(a.Rating), cmp.Compare(b.ReviewCount, a.ReviewCount))
		case model.SortPriceAsc:
			c = a.Price.Cmp(b.Price)
		case model.SortPriceDesc:
			c = b.Price.Cmp(a.Price)
		default:
			if s.Query != "" {
				c = cmp.Compare(titleRank(a.Title, s.Query), titleRank(b.Title, s.Query))
			}
			c = cmp.Or(c, cmp.Compare(b.EnrollmentCount, a.EnrollmentCount), b.CreatedAt.Compare(a.CreatedAt))
		}
		return cmp.Or(c, compareIDs(a.ID, b.ID))
	})
	return page(items, s.Offset, s.Limit), len(items), nil
}

func (r searchRepo) Lessons(ctx context.Context, s model.LessonSearch) ([]model.LessonHit, int, error) {
	unlock, err := r.s.lock(ctx, "search.lessons")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	type hit struct {
		model.LessonHit
		popularity int
	}
	var hits []hit
	for _, l := range r.s.d.lessons {
		c, ok := r.s.d.courses[l.CourseID]
		if !ok || !c.IsPublished {
			continue
		}
		if s.CourseID != nil && l.CourseID != *s.CourseID {
			continue
		}
		if s.Query != "" {
			desc := ""
			if l.Description != nil {
				desc = *l.Description
			}
			if !containsFold(l.Title, s.Query) && !containsFold(desc, s.Query) && !containsFold(l.Content, s.Query) {
				continue
			}
		}
		hits = append(hits, hit{
			LessonHit:  model.LessonHit{LessonOutline: l.Outline(), CourseTitle: c.Title, CourseSlug: c.Slug},
			popularity: c.EnrollmentCount,
		})
	}

	slices.SortFunc(hits, func(a, b hit) int {
		c := 0
		if s.Query != "" {
			c = cmp.Compare(titleRank(a.Title, s.Query), titleRank(b.Title, s.Query))
		}
		return cmp.Or(c,
			cmp.Compare(b.popularity, a.popularity),
			compareIDs(a.CourseID, b.CourseID),
			cmp.Compare(a.Position, b.Position),
		)
	})

	items := make([]model.LessonHit, 0, len(hits))
	for _, h := range hits {
		items = append(items, h.LessonHit)
	}
	return page(items, s.Offset, s.Limit), len(items), nil
}

func (r searchRepo) Suggestions(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	unlock, err := r.s.lock(ctx, "search.suggestions")
	if err != nil {
		return nil, err
	}
	defer unlock()

	type candidate struct {
		model.Suggestion
		kind       int
		popularity int
	}
	rank := func(title string) int {
		if hasPrefixFold(title, query) {
			return 0
		}
		return 1
	}

	var all []candidate
	for _, c := range r.s.d.courses {
		if c.IsPublished && containsFold(c.Title, query) {
			all = append(all, candidate{
				Suggestion: model.Suggestion{ID: c.ID, Text: c.Title, Type: "course", Rank: rank(c.Title)},
				popularity: c.EnrollmentCount,
			})
		}
	}
	for _, l := range r.s.d.lessons {
		c, ok := r.s.d.courses[l.CourseID]
		if ok && c.IsPublished && containsFold(l.Title, query) {
			all = append(all, candidate{
				Suggestion: model.Suggestion{ID: l.ID, Text: l.Title, Type: "lesson", Rank: rank(l.Title)},
				kind:       1,
				popularity: c.EnrollmentCount,
			})
		}
	}

	slices.SortFunc(all, func(a, b candidate) int {
		return cmp.Or(
			cmp.Compare(a.Rank, b.Rank),
			cmp.Compare(a.kind, b.kind),
			cmp.Compare(b.popularity, a.popularity),
			strings.Compare(a.Text, b.Text),
		)
	})

	out := make([]model.Suggestion, 0, len(all))
	for _, c := range page(all, 0, limit) {
		out = append(out, c.Suggestion)
	}
	return out, nil
}
