package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)

	first := f.course(t, owner, "Intro to Go", true)
	second := f.course(t, owner, "Intro to Go!", true)
	third := f.course(t, owner, "intro to go", false)

	assert.Equal(t, "intro-to-go", first.Slug)
	assert.Equal(t, "intro-to-go-2", second.Slug)
	assert.Equal(t, "intro-to-go-3", third.Slug)
	assert.Equal(t, model.LevelBeginner, first.Level)
	assert.True(t, first.IsFree())
	assert.Equal(t, owner.ID, first.InstructorID)

	student := f.user(t, model.RoleStudent)
	_, err := f.svc.Courses.Create(ctx, student, &model.CreateCoursePayload{Title: "Nope", Description: "x"})
	requireStatus(t, err, http.StatusForbidden)
}

func TestCourseService_CreateUnknownCategory(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, model.RoleInstructor)
	missing := "8f8c0d5e-7a43-4c1e-9b59-3f0a8b6f7d11"

	_, err := f.svc.Courses.Create(context.Background(), owner, &model.CreateCoursePayload{
		Title:       "Orphan",
		Description: "x",
		CategoryID:  &missing,
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCourseService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	other := f.user(t, model.RoleInstructor)
	admin := f.user(t, model.RoleAdmin)
	course := f.course(t, owner, "Rust for Gophers", false)

	title := "Rust for Gophers, 2nd edition"
	published := true
	price := decimalOf(t, "19.99")
	payload := &model.UpdateCoursePayload{
		IDParam:     model.IDParam{ID: course.ID.String()},
		Title:       &title,
		IsPublished: &published,
		Price:       &price,
	}

	_, err := f.svc.Courses.Update(ctx, other, payload)
	requireStatus(t, err, http.StatusForbidden)

	updated, err := f.svc.Courses.Update(ctx, owner, payload)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "rust-for-gophers", updated.Slug)
	assert.True(t, updated.IsPublished)
	assert.True(t, updated.Price.Equal(price))

	level := model.LevelAdvanced
	updated, err = f.svc.Courses.Update(ctx, admin, &model.UpdateCoursePayload{
		IDParam: model.IDParam{ID: course.ID.String()},
		Level:   &level,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LevelAdvanced, updated.Level)
	assert.Equal(t, title, updated.Title)
}

func TestCourseService_ListAndDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	programming := f.store.AddCategory("Programming", "programming")

	catID := programming.ID.String()
	_, err := f.svc.Courses.Create(ctx, owner, &model.CreateCoursePayload{
		Title: "Concurrency", Description: "x", CategoryID: &catID, IsPublished: true,
	})
	require.NoError(t, err)
	published := f.course(t, owner, "Testing", true)
	f.course(t, owner, "Draft", false)
	f.lessons(t, owner, published, "Table tests", "Fuzzing")

	page, err := f.svc.Courses.List(ctx, &model.ListCoursesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, model.DefaultCourseLimit, page.Limit)
	assert.Equal(t, 1, page.TotalPages)

	page, err = f.svc.Courses.List(ctx, &model.ListCoursesQuery{Category: "programming"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Concurrency", page.Items[0].Title)
	require.NotNil(t, page.Items[0].CategoryName)
	assert.Equal(t, "Programming", *page.Items[0].CategoryName)

	detail, err := f.svc.Courses.Detail(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Name, detail.Instructor.Name)
	assert.Equal(t, 2, detail.LessonCount)
	require.Len(t, detail.Lessons, 2)
	assert.Equal(t, "Table tests", detail.Lessons[0].Title)
	assert.Equal(t, 2, detail.Lessons[1].Position)

	categories, err := f.svc.Courses.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 1, categories[0].CourseCount)
}

func TestCourseService_DetailNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Courses.Detail(context.Background(), [16]byte{1})
	requireStatus(t, err, http.StatusNotFound)
}

func TestCourseService_Review(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	alice := f.user(t, model.RoleStudent)
	bob := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Kubernetes", true)
	id := model.IDParam{ID: course.ID.String()}

	_, err := f.svc.Courses.Review(ctx, alice, &model.CreateReviewPayload{IDParam: id, Rating: 5})
	requireStatus(t, err, http.StatusForbidden)

	f.enroll(t, alice, course)
	f.enroll(t, bob, course)

	_, err = f.svc.Courses.Review(ctx, alice, &model.CreateReviewPayload{IDParam: id, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Courses.Review(ctx, bob, &model.CreateReviewPayload{IDParam: id, Rating: 4})
	require.NoError(t, err)

	row := f.courseRow(t, course.ID)
	assert.Equal(t, 2, row.ReviewCount)
	assert.True(t, row.Rating.Equal(decimalOf(t, "4.5")), row.Rating.String())

	// Reviewing again replaces the previous review.
	_, err = f.svc.Courses.Review(ctx, bob, &model.CreateReviewPayload{IDParam: id, Rating: 2})
	require.NoError(t, err)
	row = f.courseRow(t, course.ID)
	assert.Equal(t, 2, row.ReviewCount)
	assert.True(t, row.Rating.Equal(decimalOf(t, "3.5")), row.Rating.String())

	page, err := f.svc.Courses.Reviews(ctx, &model.ListReviewsQuery{IDParam: id})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, model.DefaultReviewLimit, page.Limit)
}

func TestCourseService_ReviewRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, model.RoleInstructor)
	alice := f.user(t, model.RoleStudent)
	course := f.course(t, owner, "Terraform", true)
	f.enroll(t, alice, course)

	boom := errors.New("boom")
	f.store.FailOn["courses.refresh_rating"] = boom

	_, err := f.svc.Courses.Review(ctx, alice, &model.CreateReviewPayload{IDParam: model.IDParam{ID: course.ID.String()}, Rating: 3})
	require.ErrorIs(t, err, boom)

	delete(f.store.FailOn, "courses.refresh_rating")
	page, err := f.svc.Courses.Reviews(ctx, &model.ListReviewsQuery{IDParam: model.IDParam{ID: course.ID.String()}})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
