package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/deppfellow/learnhub/internal/model"
)

// SearchRepo is the PostgreSQL SearchRepository. Queries are built with
// whereClause so user input only ever reaches SQL as a bind argument.
type SearchRepo struct {
	db DBTX
}

// whereClause accumulates AND-ed conditions and their positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// arg registers a value and returns its placeholder.
func (w *whereClause) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereClause) and(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func containsPattern(q string) string { return "%" + escapeLike(q) + "%" }
func prefixPattern(q string) string   { return escapeLike(q) + "%" }

// titleRank orders exact title matches first, then prefix, then substring,
// then rows that matched on another column only.
func titleRank(w *whereClause, column, q string) string {
	return "CASE WHEN lower(" + column + ") = lower(" + w.arg(q) + ") THEN 0" +
		" WHEN " + column + " ILIKE " + w.arg(prefixPattern(q)) + " THEN 1" +
		" WHEN " + column + " ILIKE " + w.arg(containsPattern(q)) + " THEN 2" +
		" ELSE 3 END"
}

func courseSearchWhere(s model.CourseSearch) *whereClause {
	w := &whereClause{}
	w.and("c.is_published")
	if s.Query != "" {
		p := w.arg(containsPattern(s.Query))
		w.and("(c.title ILIKE " + p +
			" OR c.description ILIKE " + p +
			" OR c.short_description ILIKE " + p +
			" OR EXISTS (SELECT 1 FROM unnest(c.tags) AS tag WHERE tag ILIKE " + p + "))")
	}
	applyCategory(w, s.CategoryID, s.CategorySlug)
	if s.Level != "" {
		w.and("c.level = " + w.arg(s.Level))
	}
	if s.MinRating > 0 {
		w.and("c.rating >= " + w.arg(s.MinRating))
	}
	if s.FreeOnly != nil {
		if *s.FreeOnly {
			w.and("c.price = 0")
		} else {
			w.and("c.price > 0")
		}
	}
	return w
}

// courseSearchOrder returns the ORDER BY list; relevance needs the query
// and therefore registers arguments on w.
func courseSearchOrder(w *whereClause, s model.CourseSearch) string {
	switch s.Sort {
	case model.SortNewest:
		return "c.created_at DESC, c.id"
	case model.SortPopular:
		return "c.enrollment_count DESC, c.created_at DESC, c.id"
	case model.SortRating:
		return "c.rating DESC, c.review_count DESC, c.id"
	case model.SortPriceAsc:
		return "c.price ASC, c.id"
	case model.SortPriceDesc:
		return "c.price DESC, c.id"
	}
	if s.Query == "" {
		return "c.enrollment_count DESC, c.created_at DESC, c.id"
	}
	return titleRank(w, "c.title", s.Query) + ", c.enrollment_count DESC, c.created_at DESC, c.id"
}

// Courses counts the matches first and skips the page query when there are none.
func (r *SearchRepo) Courses(ctx context.Context, s model.CourseSearch) ([]model.CourseSummary, int, error) {
	w := courseSearchWhere(s)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+courseSummaryFrom+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.CourseSummary{}, 0, nil
	}

	where := w.String()
	order := courseSearchOrder(w, s)
	sql := `SELECT ` + courseSummaryColumns + courseSummaryFrom + where +
		` ORDER BY ` + order +
		` LIMIT ` + w.arg(s.Limit) + ` OFFSET ` + w.arg(s.Offset)

	items, err := collect[model.CourseSummary](ctx, r.db, sql, w.args...)
	return items, total, err
}

const lessonHitColumns = `
	l.id, l.course_id, l.title, l.description, l.video_url, l.duration_minutes,
	l.position, l.is_free, l.created_at, l.updated_at,
	c.title AS course_title, c.slug AS course_slug`

func lessonSearchWhere(s model.LessonSearch) *whereClause {
	w := &whereClause{}
	w.and("c.is_published")
	if s.Query != "" {
		p := w.arg(containsPattern(s.Query))
		w.and("(l.title ILIKE " + p + " OR l.description ILIKE " + p + " OR l.content ILIKE " + p + ")")
	}
	if s.CourseID != nil {
		w.and("l.course_id = " + w.arg(*s.CourseID))
	}
	return w
}

// Lessons ranks title matches first, then lessons of popular courses, in
// course order.
func (r *SearchRepo) Lessons(ctx context.Context, s model.LessonSearch) ([]model.LessonHit, int, error) {
	w := lessonSearchWhere(s)
	from := ` FROM lessons l JOIN courses c ON c.id = l.course_id`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.LessonHit{}, 0, nil
	}

	where := w.String()
	order := "c.enrollment_count DESC, l.course_id, l.position"
	if s.Query != "" {
		order = titleRank(w, "l.title", s.Query) + ", " + order
	}
	sql := `SELECT ` + lessonHitColumns + from + where +
		` ORDER BY ` + order +
		` LIMIT ` + w.arg(s.Limit) + ` OFFSET ` + w.arg(s.Offset)

	items, err := collect[model.LessonHit](ctx, r.db, sql, w.args...)
	return items, total, err
}

// Suggestions returns course and lesson titles containing query, title
// prefix matches first, courses before lessons, popular courses first.
func (r *SearchRepo) Suggestions(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	return collect[model.Suggestion](ctx, r.db, `
		SELECT id, text, type, rank FROM (
			SELECT c.id, c.title AS text, 'course' AS type,
				CASE WHEN c.title ILIKE $2 THEN 0 ELSE 1 END AS rank,
				0 AS kind, c.enrollment_count AS popularity
			FROM courses c
			WHERE c.is_published AND c.title ILIKE $1
			UNION ALL
			SELECT l.id, l.title, 'lesson',
				CASE WHEN l.title ILIKE $2 THEN 0 ELSE 1 END,
				1, c.enrollment_count
			FROM lessons l
			JOIN courses c ON c.id = l.course_id
			WHERE c.is_published AND l.title ILIKE $1
		) s
		ORDER BY rank, kind, popularity DESC, text
		LIMIT $3`,
		containsPattern(query), prefixPattern(query), limit,
	)
}
