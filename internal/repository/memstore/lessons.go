package memstore

import (
	"context"
	"slices"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
)

type lessonRepo struct{ s *Store }

// byPosition orders lessons by position, then id.
func byPosition(a, b model.Lesson) int {
	if a.Position != b.Position {
		return a.Position - b.Position
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

func (d *data) courseLessons(courseID uuid.UUID) []model.Lesson {
	var out []model.Lesson
	for _, l := range d.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, byPosition)
	return out
}

func (r lessonRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.LessonOutline, error) {
	unlock, err := r.s.lock(ctx, "lessons.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []model.LessonOutline{}
	for _, l := range r.s.d.courseLessons(courseID) {
		out = append(out, l.Outline())
	}
	return out, nil
}

func (r lessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	unlock, err := r.s.lock(ctx, "lessons.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	l, ok := r.s.d.lessons[id]
	if !ok {
		return nil, repository.NotFound("lessons")
	}
	return &l, nil
}

func (r lessonRepo) Create(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	unlock, err := r.s.lock(ctx, "lessons.create")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, ok := r.s.d.courses[lesson.CourseID]; !ok {
		return nil, foreignKeyViolation("lessons", "course_id")
	}
	now := r.s.Now()
	l := *lesson
	l.ID = uuid.New()
	l.CreatedAt, l.UpdatedAt = now, now
	r.s.d.lessons[l.ID] = l
	return &l, nil
}

func (r lessonRepo) Update(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	unlock, err := r.s.lock(ctx, "lessons.update")
	if err != nil {
		return nil, err
	}
	defer unlock()

	l, ok := r.s.d.lessons[lesson.ID]
	if !ok {
		return nil, repository.NotFound("lessons")
	}
	l.Title, l.Description, l.Content = lesson.Title, lesson.Description, lesson.Content
	l.VideoURL, l.DurationMinutes = lesson.VideoURL, lesson.DurationMinutes
	l.Position, l.IsFree = lesson.Position, lesson.IsFree
	l.UpdatedAt = r.s.Now()
	r.s.d.lessons[l.ID] = l
	return &l, nil
}

// Delete removes the lesson and, like the ON DELETE CASCADE, its progress rows.
func (r lessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.lock(ctx, "lessons.delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.d.lessons[id]; !ok {
		return repository.NotFound("lessons")
	}
	delete(r.s.d.lessons, id)
	for pid, p := range r.s.d.progress {
		if p.LessonID == id {
			delete(r.s.d.progress, pid)
		}
	}
	return nil
}

func (r lessonRepo) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	unlock, err := r.s.lock(ctx, "lessons.count")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return r.s.d.lessonCount(courseID), nil
}

func (r lessonRepo) MaxPosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	unlock, err := r.s.lock(ctx, "lessons.max_position")
	if err != nil {
		return 0, err
	}
	defer unlock()

	n := 0
	for _, l := range r.s.d.lessons {
		if l.CourseID == courseID {
			n = max(n, l.Position)
		}
	}
	return n, nil
}

func (r lessonRepo) ShiftPositions(ctx context.Context, courseID uuid.UUID, from, to, delta int) error {
	unlock, err := r.s.lock(ctx, "lessons.shift")
	if err != nil {
		return err
	}
	defer unlock()

	for id, l := range r.s.d.lessons {
		if l.CourseID != courseID || l.Position < from || (to > 0 && l.Position > to) {
			continue
		}
		l.Position += delta
		r.s.d.lessons[id] = l
	}
	return nil
}
