package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentService_Enroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Docker", true)
	payload := &model.EnrollPayload{CourseID: course.ID.String()}

	first, err := f.svc.Enrollments.Enroll(ctx, student, payload)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, model.EnrollmentActive, first.Enrollment.Status)
	assert.Equal(t, 1, f.courseRow(t, course.ID).EnrollmentCount)

	second, err := f.svc.Enrollments.Enroll(ctx, student, payload)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)
	assert.Equal(t, 1, f.courseRow(t, course.ID).EnrollmentCount)

	assert.Equal(t, []string{"enrollment"}, f.notifier.kinds())
}

func TestEnrollmentService_EnrollOnBehalf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	other := f.user(t, model.RoleStudent)
	admin := f.user(t, model.RoleAdmin)
	course := f.course(t, owner, "Helm", true)
	target := other.ID.String()
	payload := &model.EnrollPayload{CourseID: course.ID.String(), UserID: &target}

	_, err := f.svc.Enrollments.Enroll(ctx, student, payload)
	requireStatus(t, err, http.StatusForbidden)

	res, err := f.svc.Enrollments.Enroll(ctx, admin, payload)
	require.NoError(t, err)
	assert.Equal(t, other.ID, res.Enrollment.UserID)
}

func TestEnrollmentService_EnrollMissingRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	admin := f.user(t, model.RoleAdmin)
	course := f.course(t, owner, "Ansible", true)

	_, err := f.svc.Enrollments.Enroll(ctx, admin, &model.EnrollPayload{CourseID: uuid.NewString()})
	requireStatus(t, err, http.StatusNotFound)

	ghost := uuid.NewString()
	_, err = f.svc.Enrollments.Enroll(ctx, admin, &model.EnrollPayload{CourseID: course.ID.String(), UserID: &ghost})
	requireStatus(t, err, http.StatusNotFound)

	assert.Zero(t, f.courseRow(t, course.ID).EnrollmentCount)
	assert.Empty(t, f.notifier.kinds())
}

func TestEnrollmentService_EnrollDraft(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	draft := f.course(t, owner, "Unreleased", false)

	_, err := f.svc.Enrollments.Enroll(context.Background(), student, &model.EnrollPayload{CourseID: draft.ID.String()})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestEnrollmentService_EnrollRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Nomad", true)

	boom := errors.New("counter unavailable")
	f.store.FailOn["courses.adjust_enrollment_count"] = boom

	_, err := f.svc.Enrollments.Enroll(ctx, student, &model.EnrollPayload{CourseID: course.ID.String()})
	require.ErrorIs(t, err, boom)

	_, err = f.store.Enrollments().GetByUserAndCourse(ctx, student.ID, course.ID)
	requireStatus(t, err, http.StatusNotFound)
	assert.Empty(t, f.notifier.kinds())
}

func TestEnrollmentService_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, model.RoleInstructor)
	owner := f.user(t, model.RoleStudent)
	stranger := f.user(t, model.RoleStudent)
	admin := f.user(t, model.RoleAdmin)
	course := f.course(t, author, "Vault", true)
	e := f.enroll(t, owner, course)

	got, err := f.svc.Enrollments.Get(ctx, owner, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = f.svc.Enrollments.Get(ctx, stranger, e.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.svc.Enrollments.Get(ctx, admin, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Enrollments.Get(ctx, owner, uuid.New())
	requireStatus(t, err, http.StatusNotFound)

	_, err = f.svc.Enrollments.ListByUser(ctx, stranger, owner.ID)
	requireStatus(t, err, http.StatusForbidden)

	items, err := f.svc.Enrollments.ListByUser(ctx, admin, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Vault", items[0].CourseTitle)
}

func TestEnrollmentService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Consul", true)
	lessons := f.lessons(t, owner, course, "Only")
	e := f.enroll(t, student, course)
	id := model.IDParam{ID: e.ID.String()}

	dropped, err := f.svc.Enrollments.UpdateStatus(ctx, student, &model.UpdateEnrollmentPayload{IDParam: id, Status: model.EnrollmentDropped})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentDropped, dropped.Status)

	// Completing a lesson reactivates the enrollment, here straight to completed.
	res, err := f.svc.Lessons.Complete(ctx, student, &model.CompleteLessonPayload{IDParam: model.IDParam{ID: lessons[0].ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, res.Enrollment.Status)

	_, err = f.svc.Enrollments.UpdateStatus(ctx, student, &model.UpdateEnrollmentPayload{IDParam: id, Status: model.EnrollmentDropped})
	requireStatus(t, err, http.StatusBadRequest)

	active, err := f.svc.Enrollments.UpdateStatus(ctx, student, &model.UpdateEnrollmentPayload{IDParam: id, Status: model.EnrollmentActive})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, active.Status)
}

func TestEnrollmentService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	a := f.user(t, model.RoleStudent)
	b := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Packer", true)
	ea := f.enroll(t, a, course)
	f.enroll(t, b, course)
	require.Equal(t, 2, f.courseRow(t, course.ID).EnrollmentCount)

	requireStatus(t, f.svc.Enrollments.Delete(ctx, b, ea.ID), http.StatusForbidden)

	require.NoError(t, f.svc.Enrollments.Delete(ctx, a, ea.ID))
	assert.Equal(t, 1, f.courseRow(t, course.ID).EnrollmentCount)

	requireStatus(t, f.svc.Enrollments.Delete(ctx, a, ea.ID), http.StatusNotFound)
	assert.Equal(t, 1, f.courseRow(t, course.ID).EnrollmentCount)
}

func TestEnrollmentService_DeleteNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Drift", true)
	e := f.enroll(t, student, course)
	f.store.SetEnrollmentCount(course.ID, 0)

	require.NoError(t, f.svc.Enrollments.Delete(ctx, student, e.ID))
	assert.Zero(t, f.courseRow(t, course.ID).EnrollmentCount)
}

func TestEnrollmentService_Progress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Linux", true)
	lessons := f.lessons(t, owner, course, "Shell", "Files", "Processes")
	e := f.enroll(t, student, course)

	_, err := f.svc.Lessons.Complete(ctx, student, &model.CompleteLessonPayload{IDParam: model.IDParam{ID: lessons[1].ID.String()}})
	require.NoError(t, err)

	progress, err := f.svc.Enrollments.Progress(ctx, student, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, progress.Progress)
	assert.Equal(t, 1, progress.CompletedLessons)
	assert.Equal(t, 3, progress.TotalLessons)
	require.Len(t, progress.Lessons, 3)
	assert.False(t, progress.Lessons[0].Completed)
	assert.True(t, progress.Lessons[1].Completed)
	assert.Equal(t, "Processes", progress.Lessons[2].Title)
}
