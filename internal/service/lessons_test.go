package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titlesInOrder(t *testing.T, f *fixture, courseID uuid.UUID) []string {
	t.Helper()
	outline, err := f.svc.Lessons.ListByCourse(context.Background(), courseID)
	require.NoError(t, err)
	titles := make([]string, 0, len(outline))
	for i, l := range outline {
		assert.Equal(t, i+1, l.Position, "positions stay contiguous")
		titles = append(titles, l.Title)
	}
	return titles
}

func completePayload(l *model.Lesson) *model.CompleteLessonPayload {
	return &model.CompleteLessonPayload{IDParam: model.IDParam{ID: l.ID.String()}}
}

func TestLessonService_CreatePositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	course := f.course(t, owner, "Algorithms", true)
	f.lessons(t, owner, course, "A", "B", "C")

	first := 1
	_, err := f.svc.Lessons.Create(ctx, owner, &model.CreateLessonPayload{CourseID: course.ID.String(), Title: "Intro", Position: &first})
	require.NoError(t, err)

	far := 99
	last, err := f.svc.Lessons.Create(ctx, owner, &model.CreateLessonPayload{CourseID: course.ID.String(), Title: "Outro", Position: &far})
	require.NoError(t, err)
	assert.Equal(t, 5, last.Position)

	assert.Equal(t, []string{"Intro", "A", "B", "C", "Outro"}, titlesInOrder(t, f, course.ID))
}

func TestLessonService_CreateForbidden(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, model.RoleInstructor)
	other := f.user(t, model.RoleInstructor)
	course := f.course(t, owner, "Graphs", true)

	_, err := f.svc.Lessons.Create(context.Background(), other, &model.CreateLessonPayload{CourseID: course.ID.String(), Title: "Hijack"})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.svc.Lessons.Create(context.Background(), owner, &model.CreateLessonPayload{CourseID: uuid.NewString(), Title: "Lost"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestLessonService_Move(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	course := f.course(t, owner, "Compilers", true)
	ls := f.lessons(t, owner, course, "A", "B", "C", "D")

	to := 1
	_, err := f.svc.Lessons.Update(ctx, owner, &model.UpdateLessonPayload{IDParam: model.IDParam{ID: ls[2].ID.String()}, Position: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B", "D"}, titlesInOrder(t, f, course.ID))

	to = 10
	title := "A (revised)"
	moved, err := f.svc.Lessons.Update(ctx, owner, &model.UpdateLessonPayload{IDParam: model.IDParam{ID: ls[0].ID.String()}, Position: &to, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 4, moved.Position)
	assert.Equal(t, []string{"C", "B", "D", "A (revised)"}, titlesInOrder(t, f, course.ID))
}

func TestLessonService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	course := f.course(t, owner, "Markdown", true)
	l, err := f.svc.Lessons.Create(ctx, owner, &model.CreateLessonPayload{
		CourseID: course.ID.String(),
		Title:    "Tables",
		Content:  "# Heading\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
	})
	require.NoError(t, err)

	detail, err := f.svc.Lessons.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Contains(t, detail.ContentHTML, "<h1")
	assert.Contains(t, detail.ContentHTML, "<table>")
	assert.Equal(t, "Markdown", detail.CourseTitle)
	assert.Equal(t, course.Slug, detail.CourseSlug)

	_, err = f.svc.Lessons.Get(ctx, uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}

func TestLessonService_Complete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Networking", true)
	ls := f.lessons(t, owner, course, "TCP", "UDP")

	_, err := f.svc.Lessons.Complete(ctx, student, completePayload(ls[0]))
	requireStatus(t, err, http.StatusNotFound)

	f.enroll(t, student, course)

	spent := 300
	res, err := f.svc.Lessons.Complete(ctx, student, &model.CompleteLessonPayload{IDParam: model.IDParam{ID: ls[0].ID.String()}, TimeSpent: &spent})
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.False(t, res.CourseCompleted)
	assert.Nil(t, res.Certificate)
	assert.Equal(t, 50, res.Enrollment.Progress)
	assert.Equal(t, 300, res.LessonProgress.TimeSpentSeconds)
	require.NotNil(t, res.Enrollment.LastAccessedAt)

	again, err := f.svc.Lessons.Complete(ctx, student, &model.CompleteLessonPayload{IDParam: model.IDParam{ID: ls[0].ID.String()}, TimeSpent: &spent})
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, res.LessonProgress.ID, again.LessonProgress.ID)
	assert.Equal(t, 300, again.LessonProgress.TimeSpentSeconds)
	assert.Equal(t, 50, again.Enrollment.Progress)

	done, err := f.svc.Lessons.Complete(ctx, student, completePayload(ls[1]))
	require.NoError(t, err)
	assert.True(t, done.CourseCompleted)
	assert.Equal(t, 100, done.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentCompleted, done.Enrollment.Status)
	require.NotNil(t, done.Enrollment.CompletedAt)
	require.NotNil(t, done.Certificate)
	assert.Regexp(t, regexp.MustCompile(`^LH-20260310-[0-9A-F]{8}$`), done.Certificate.CertificateNumber)

	assert.Equal(t, []string{"enrollment", "certificate"}, f.notifier.kinds())
}

func TestLessonService_CompleteRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Storage", true)
	ls := f.lessons(t, owner, course, "Disks")
	e := f.enroll(t, student, course)

	boom := errors.New("certificates down")
	f.store.FailOn["certificates.issue"] = boom
	_, err := f.svc.Lessons.Complete(ctx, student, completePayload(ls[0]))
	require.ErrorIs(t, err, boom)

	delete(f.store.FailOn, "certificates.issue")
	progress, err := f.svc.Enrollments.Progress(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Zero(t, progress.Progress)
	assert.Equal(t, model.EnrollmentActive, progress.Status)
	assert.False(t, progress.Lessons[0].Completed)
}

func TestLessonService_AddAndDeleteRecomputeProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Security", true)
	ls := f.lessons(t, owner, course, "Threats", "Crypto")
	e := f.enroll(t, student, course)

	_, err := f.svc.Lessons.Complete(ctx, student, completePayload(ls[0]))
	require.NoError(t, err)
	_, err = f.svc.Lessons.Complete(ctx, student, completePayload(ls[1]))
	require.NoError(t, err)

	extra := f.lessons(t, owner, course, "Auth")
	got, err := f.svc.Enrollments.Get(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, got.Progress)
	assert.Equal(t, model.EnrollmentActive, got.Status)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, f.svc.Lessons.Delete(ctx, owner, extra[0].ID))
	got, err = f.svc.Enrollments.Get(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)

	// The certificate from the first completion is kept, not reissued.
	certs, err := f.svc.Users.Certificates(ctx, student)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
	assert.Equal(t, []string{"enrollment", "certificate"}, f.notifier.kinds())
}

func TestLessonService_DeleteIssuesCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Observability", true)
	ls := f.lessons(t, owner, course, "Logs", "Metrics", "Traces")
	e := f.enroll(t, student, course)

	for _, l := range ls[:2] {
		_, err := f.svc.Lessons.Complete(ctx, student, completePayload(l))
		require.NoError(t, err)
	}

	requireStatus(t, f.svc.Lessons.Delete(ctx, student, ls[2].ID), http.StatusForbidden)
	require.NoError(t, f.svc.Lessons.Delete(ctx, owner, ls[1].ID))

	assert.Equal(t, []string{"Logs", "Traces"}, titlesInOrder(t, f, course.ID))
	got, err := f.svc.Enrollments.Get(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)

	require.NoError(t, f.svc.Lessons.Delete(ctx, owner, ls[2].ID))
	got, err = f.svc.Enrollments.Get(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)
	assert.Equal(t, []string{"enrollment", "certificate"}, f.notifier.kinds())
}
