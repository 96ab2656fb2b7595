package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
)

type enrollmentRepo struct{ s *Store }

func (d *data) findEnrollment(userID, courseID uuid.UUID) (model.Enrollment, bool) {
	for _, e := range d.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, true
		}
	}
	return model.Enrollment{}, false
}

func (d *data) completedLessons(enrollmentID uuid.UUID) int {
	n := 0
	for _, p := range d.progress {
		if p.EnrollmentID == enrollmentID && p.Completed {
			n++
		}
	}
	return n
}

func (r enrollmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	unlock, err := r.s.lock(ctx, "enrollments.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, ok := r.s.d.enrollments[id]
	if !ok {
		return nil, repository.NotFound("enrollments")
	}
	return &e, nil
}

func (r enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	unlock, err := r.s.lock(ctx, "enrollments.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, ok := r.s.d.findEnrollment(userID, courseID)
	if !ok {
		return nil, repository.NotFound("enrollments")
	}
	return &e, nil
}

func (r enrollmentRepo) Create(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, bool, error) {
	unlock, err := r.s.lock(ctx, "enrollments.create")
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	if _, ok := r.s.d.users[userID]; !ok {
		return nil, false, foreignKeyViolation("enrollments", "user_id")
	}
	if _, ok := r.s.d.courses[courseID]; !ok {
		return nil, false, foreignKeyViolation("enrollments", "course_id")
	}
	if e, ok := r.s.d.findEnrollment(userID, courseID); ok {
		return &e, false, nil
	}

	now := r.s.Now()
	e := model.Enrollment{
		ID:             uuid.New(),
		UserID:         userID,
		CourseID:       courseID,
		Status:         model.EnrollmentActive,
		EnrolledAt:     now,
		LastAccessedAt: ptr(now),
	}
	r.s.d.enrollments[e.ID] = e
	return &e, true, nil
}

func (r enrollmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.lock(ctx, "enrollments.delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.d.enrollments[id]; !ok {
		return repository.NotFound("enrollments")
	}
	delete(r.s.d.enrollments, id)
	for pid, p := range r.s.d.progress {
		if p.EnrollmentID == id {
			delete(r.s.d.progress, pid)
		}
	}
	return nil
}

func (r enrollmentRepo) Save(ctx context.Context, enrollment *model.Enrollment) (*model.Enrollment, error) {
	unlock, err := r.s.lock(ctx, "enrollments.save")
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, ok := r.s.d.enrollments[enrollment.ID]
	if !ok {
		return nil, repository.NotFound("enrollments")
	}
	e.Status, e.Progress = enrollment.Status, enrollment.Progress
	e.CompletedAt, e.LastAccessedAt = enrollment.CompletedAt, enrollment.LastAccessedAt
	r.s.d.enrollments[e.ID] = e
	return &e, nil
}

func (r enrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	unlock, err := r.s.lock(ctx, "enrollments.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []model.EnrollmentWithCourse{}
	for _, e := range r.s.d.enrollments {
		if e.UserID != userID {
			continue
		}
		c := r.s.d.courses[e.CourseID]
		item := model.EnrollmentWithCourse{
			Enrollment:         e,
			CourseTitle:        c.Title,
			CourseSlug:         c.Slug,
			CourseThumbnailURL: c.ThumbnailURL,
			CourseLevel:        c.Level,
			CourseRating:       c.Rating,
			InstructorName:     r.s.d.users[c.InstructorID].Name,
			TotalLessons:       r.s.d.lessonCount(c.ID),
			CompletedLessons:   r.s.d.completedLessons(e.ID),
		}
		out = append(out, item)
	}
	lastSeen := func(e model.Enrollment) time.Time {
		if e.LastAccessedAt != nil {
			return *e.LastAccessedAt
		}
		return e.EnrolledAt
	}
	slices.SortFunc(out, func(a, b model.EnrollmentWithCourse) int {
		if c := lastSeen(b.Enrollment).Compare(lastSeen(a.Enrollment)); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

func (r enrollmentRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	unlock, err := r.s.lock(ctx, "enrollments.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []model.Enrollment{}
	for _, e := range r.s.d.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b model.Enrollment) int {
		if c := a.EnrolledAt.Compare(b.EnrolledAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

// ------------------------------------------------------------

type progressRepo struct{ s *Store }

func (d *data) findProgress(enrollmentID, lessonID uuid.UUID) (model.LessonProgress, bool) {
	for _, p := range d.progress {
		if p.EnrollmentID == enrollmentID && p.LessonID == lessonID {
			return p, true
		}
	}
	return model.LessonProgress{}, false
}

func (r progressRepo) Get(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	unlock, err := r.s.lock(ctx, "progress.get")
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, ok := r.s.d.findProgress(enrollmentID, lessonID)
	if !ok {
		return nil, repository.NotFound("lesson_progress")
	}
	return &p, nil
}

func (r progressRepo) Complete(ctx context.Context, enrollmentID, lessonID, userID uuid.UUID, seconds int, at time.Time) (*model.LessonProgress, error) {
	unlock, err := r.s.lock(ctx, "progress.complete")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, ok := r.s.d.enrollments[enrollmentID]; !ok {
		return nil, foreignKeyViolation("lesson_progress", "enrollment_id")
	}
	if _, ok := r.s.d.lessons[lessonID]; !ok {
		return nil, foreignKeyViolation("lesson_progress", "lesson_id")
	}

	p, ok := r.s.d.findProgress(enrollmentID, lessonID)
	if !ok {
		p = model.LessonProgress{
			ID:           uuid.New(),
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
			UserID:       userID,
			CreatedAt:    at,
		}
	}
	p.Completed = true
	if p.CompletedAt == nil {
		p.CompletedAt = ptr(at)
	}
	p.TimeSpentSeconds += seconds
	p.UpdatedAt = at
	r.s.d.progress[p.ID] = p
	return &p, nil
}

func (r progressRepo) CountCompleted(ctx context.Context, enrollmentID uuid.UUID) (int, error) {
	unlock, err := r.s.lock(ctx, "progress.count")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return r.s.d.completedLessons(enrollmentID), nil
}

func (r progressRepo) ListForEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID) ([]model.LessonProgressItem, error) {
	unlock, err := r.s.lock(ctx, "progress.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []model.LessonProgressItem{}
	for _, l := range r.s.d.courseLessons(courseID) {
		item := model.LessonProgressItem{
			LessonID:        l.ID,
			Title:           l.Title,
			Position:        l.Position,
			DurationMinutes: l.DurationMinutes,
		}
		if p, ok := r.s.d.findProgress(enrollmentID, l.ID); ok {
			item.Completed = p.Completed
			item.CompletedAt = p.CompletedAt
			item.TimeSpentSeconds = p.TimeSpentSeconds
		}
		out = append(out, item)
	}
	return out, nil
}

// ActivityDays returns the distinct UTC days the user touched any progress
// row, newest first.
func (r progressRepo) ActivityDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	unlock, err := r.s.lock(ctx, "progress.activity")
	if err != nil {
		return nil, err
	}
	defer unlock()

	seen := map[time.Time]bool{}
	var days []time.Time
	for _, p := range r.s.d.progress {
		if p.UserID != userID {
			continue
		}
		u := p.UpdatedAt.UTC()
		day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	return days, nil
}

// TouchProgress moves a progress row's updated_at, to build activity histories.
func (s *Store) TouchProgress(enrollmentID, lessonID uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.d.findProgress(enrollmentID, lessonID); ok {
		p.UpdatedAt = at
		s.d.progress[p.ID] = p
	}
}

// ------------------------------------------------------------

type certificateRepo struct{ s *Store }

func (r certificateRepo) Issue(ctx context.Context, userID, courseID uuid.UUID, number string) (*model.Certificate, bool, error) {
	unlock, err := r.s.lock(ctx, "certificates.issue")
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	for _, c := range r.s.d.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			return &c, false, nil
		}
		if c.CertificateNumber == number {
			return nil, false, uniqueViolation("certificates", "unique_certificates_number")
		}
	}
	c := model.Certificate{
		ID:                uuid.New(),
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: number,
		IssuedAt:          r.s.Now(),
	}
	r.s.d.certificates[c.ID] = c
	return &c, true, nil
}

func (r certificateRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CertificateWithCourse, error) {
	unlock, err := r.s.lock(ctx, "certificates.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []model.CertificateWithCourse{}
	for _, c := range r.s.d.certificates {
		if c.UserID != userID {
			continue
		}
		course := r.s.d.courses[c.CourseID]
		out = append(out, model.CertificateWithCourse{
			Certificate:    c,
			CourseTitle:    course.Title,
			CourseSlug:     course.Slug,
			InstructorName: r.s.d.users[course.InstructorID].Name,
		})
	}
	slices.SortFunc(out, func(a, b model.CertificateWithCourse) int {
		if c := b.IssuedAt.Compare(a.IssuedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

// ------------------------------------------------------------

type reviewRepo struct{ s *Store }

func (r reviewRepo) Upsert(ctx context.Context, userID, courseID uuid.UUID, rating int, comment *string) (*model.Review, error) {
	unlock, err := r.s.lock(ctx, "reviews.upsert")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, ok := r.s.d.courses[courseID]; !ok {
		return nil, foreignKeyViolation("reviews", "course_id")
	}
	now := r.s.Now()
	for id, rv := range r.s.d.reviews {
		if rv.UserID == userID && rv.CourseID == courseID {
			rv.Rating, rv.Comment, rv.UpdatedAt = rating, comment, now
			r.s.d.reviews[id] = rv
			return &rv, nil
		}
	}
	rv := model.Review{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.d.reviews[rv.ID] = rv
	return &rv, nil
}

func (r reviewRepo) ListByCourse(ctx context.Context, courseID uuid.UUID, offset, limit int) ([]model.ReviewWithUser, int, error) {
	unlock, err := r.s.lock(ctx, "reviews.list")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var items []model.ReviewWithUser
	for _, rv := range r.s.d.reviews {
		if rv.CourseID != courseID {
			continue
		}
		u := r.s.d.users[rv.UserID]
		items = append(items, model.ReviewWithUser{Review: rv, UserName: u.Name, UserAvatarURL: u.AvatarURL})
	}
	slices.SortFunc(items, func(a, b model.ReviewWithUser) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return page(items, offset, limit), len(items), nil
}
