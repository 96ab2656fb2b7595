package repository_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/deppfellow/learnhub/internal/database"
	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/deppfellow/learnhub/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDatabaseURLEnv names the PostgreSQL database the tests below run
// against. Each test gets its own schema, dropped on cleanup.
const TestDatabaseURLEnv = "LEARNHUB_TEST_DATABASE_URL"

type pgEnv struct {
	pool  *pgxpool.Pool
	repos *repository.Repositories
	svc   *service.Services
}

func newPostgres(t *testing.T) *pgEnv {
	t.Helper()
	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", TestDatabaseURLEnv)
	}
	ctx := context.Background()
	log := zerolog.Nop()

	schema := "learnhub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	admin, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close(context.Background()) })

	_, err = admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
	})

	searchPath := fmt.Sprintf("%s, public", schema)

	connCfg, err := pgx.ParseConfig(url)
	require.NoError(t, err)
	connCfg.RuntimeParams["search_path"] = searchPath
	conn, err := pgx.ConnectConfig(ctx, connCfg)
	require.NoError(t, err)
	require.NoError(t, database.MigrateConn(ctx, conn, &log))
	require.NoError(t, conn.Close(ctx))

	poolCfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	poolCfg.ConnConfig.RuntimeParams["search_path"] = searchPath
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repos := repository.New(pool)
	return &pgEnv{pool: pool, repos: repos, svc: service.New(repos, nil, nil)}
}

func (e *pgEnv) user(t *testing.T, role string) *model.User {
	t.Helper()
	id := uuid.NewString()
	u, created, err := e.svc.Users.Create(context.Background(), "user_"+id, &model.CreateUserPayload{
		Email: id + "@example.com",
		Name:  "User " + id[:4],
		Role:  role,
	})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func (e *pgEnv) course(t *testing.T, owner *model.User, title, description string) *model.Course {
	t.Helper()
	c, err := e.svc.Courses.Create(context.Background(), owner, &model.CreateCoursePayload{
		Title:       title,
		Description: description,
		IsPublished: true,
	})
	require.NoError(t, err)
	return c
}

func (e *pgEnv) lessons(t *testing.T, owner *model.User, course *model.Course, n int) []*model.Lesson {
	t.Helper()
	out := make([]*model.Lesson, 0, n)
	for i := range n {
		l, err := e.svc.Lessons.Create(context.Background(), owner, &model.CreateLessonPayload{
			CourseID: course.ID.String(),
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Content:  "# Lesson",
		})
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func (e *pgEnv) enrollmentCount(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, e.pool.QueryRow(context.Background(),
		`SELECT enrollment_count FROM courses WHERE id = $1`, id).Scan(&n))
	return n
}

func (e *pgEnv) rows(t *testing.T, table string, courseID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, e.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM `+pgx.Identifier{table}.Sanitize()+` WHERE course_id = $1`, courseID).Scan(&n))
	return n
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, sqlerr.HandleError(err), &httpErr)
	assert.Equal(t, status, httpErr.Status, httpErr.Message)
}

func TestPostgres_EnrollIsIdempotent(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	student := env.user(t, model.RoleStudent)
	course := env.course(t, owner, "Postgres Internals", "MVCC and WAL")

	first, err := env.svc.Enrollments.Enroll(ctx, student, &model.EnrollPayload{CourseID: course.ID.String()})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, model.EnrollmentActive, first.Enrollment.Status)

	second, err := env.svc.Enrollments.Enroll(ctx, student, &model.EnrollPayload{CourseID: course.ID.String()})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)

	assert.Equal(t, 1, env.rows(t, "enrollments", course.ID))
	assert.Equal(t, 1, env.enrollmentCount(t, course.ID))
}

func TestPostgres_EnrollMissingCourse(t *testing.T) {
	env := newPostgres(t)
	student := env.user(t, model.RoleStudent)
	missing := uuid.New()

	_, err := env.svc.Enrollments.Enroll(context.Background(), student, &model.EnrollPayload{CourseID: missing.String()})
	requireHTTPStatus(t, err, http.StatusNotFound)

	var n int
	require.NoError(t, env.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM enrollments`).Scan(&n))
	assert.Zero(t, n)
}

func TestPostgres_DeleteDecrementsByOne(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	course := env.course(t, owner, "Indexing", "B-trees and GIN")

	var enrollments []*model.Enrollment
	for range 3 {
		res, err := env.svc.Enrollments.Enroll(ctx, env.user(t, model.RoleStudent), &model.EnrollPayload{CourseID: course.ID.String()})
		require.NoError(t, err)
		enrollments = append(enrollments, res.Enrollment)
	}
	require.Equal(t, 3, env.enrollmentCount(t, course.ID))

	admin := env.user(t, model.RoleStudent)
	_, err := env.pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)
	admin.Role = model.RoleAdmin

	require.NoError(t, env.svc.Enrollments.Delete(ctx, admin, enrollments[0].ID))
	assert.Equal(t, 2, env.enrollmentCount(t, course.ID))
	assert.Equal(t, 2, env.rows(t, "enrollments", course.ID))

	err = env.svc.Enrollments.Delete(ctx, admin, enrollments[0].ID)
	requireHTTPStatus(t, err, http.StatusNotFound)
	assert.Equal(t, 2, env.enrollmentCount(t, course.ID))
}

func TestPostgres_CompleteLessonIsIdempotent(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	student := env.user(t, model.RoleStudent)
	course := env.course(t, owner, "Query Planning", "EXPLAIN ANALYZE")
	lessons := env.lessons(t, owner, course, 2)

	_, err := env.svc.Enrollments.Enroll(ctx, student, &model.EnrollPayload{CourseID: course.ID.String()})
	require.NoError(t, err)

	spent := 120
	complete := func(l *model.Lesson) *model.CompleteLessonResult {
		t.Helper()
		res, err := env.svc.Lessons.Complete(ctx, student, &model.CompleteLessonPayload{
			IDParam:   model.IDParam{ID: l.ID.String()},
			TimeSpent: &spent,
		})
		require.NoError(t, err)
		return res
	}

	first := complete(lessons[0])
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 50, first.Enrollment.Progress)

	again := complete(lessons[0])
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, first.LessonProgress.ID, again.LessonProgress.ID)
	assert.Equal(t, 120, again.LessonProgress.TimeSpentSeconds)
	assert.Equal(t, 50, again.Enrollment.Progress)

	last := complete(lessons[1])
	assert.True(t, last.CourseCompleted)
	assert.Equal(t, 100, last.Enrollment.Progress)
	require.NotNil(t, last.Certificate)

	var progressRows, certs int
	require.NoError(t, env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lesson_progress WHERE user_id = $1`, student.ID).Scan(&progressRows))
	require.NoError(t, env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM certificates WHERE user_id = $1`, student.ID).Scan(&certs))
	assert.Equal(t, 2, progressRows)
	assert.Equal(t, 1, certs)

	stats, err := env.svc.Users.Stats(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedCourses)
	assert.Equal(t, 2, stats.LessonsCompleted)
	assert.Equal(t, 240, stats.TotalTimeSpentSeconds)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestPostgres_WithTxRollsBackWhenCounterUpdateFails(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	student := env.user(t, model.RoleStudent)
	course := env.course(t, owner, "Replication", "Streaming and logical")

	err := env.repos.WithTx(ctx, func(tx repository.Store) error {
		e, created, err := tx.Enrollments().Create(ctx, student.ID, course.ID)
		require.NoError(t, err)
		require.True(t, created)
		require.NotNil(t, e)
		return tx.Courses().AdjustEnrollmentCount(ctx, uuid.New(), 1)
	})
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))

	_, err = env.repos.Enrollments().GetByUserAndCourse(ctx, student.ID, course.ID)
	assert.True(t, repository.IsNotFound(err))
	assert.Zero(t, env.enrollmentCount(t, course.ID))
}

func TestPostgres_WithTxRollsBackOnCallerError(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	course := env.course(t, owner, "Vacuum", "Autovacuum tuning")
	boom := errors.New("boom")

	err := env.repos.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Courses().AdjustEnrollmentCount(ctx, course.ID, 5))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, env.enrollmentCount(t, course.ID))
}

func TestPostgres_EnrollmentCountNeverNegative(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	course := env.course(t, owner, "Partitioning", "Range and hash")

	require.NoError(t, env.repos.Courses().AdjustEnrollmentCount(ctx, course.ID, -1))
	assert.Zero(t, env.enrollmentCount(t, course.ID))
}

func TestPostgres_SearchRelevanceOrder(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)

	env.course(t, owner, "Rust Basics", "Ownership, compared with Go")
	env.course(t, owner, "Learning Go Fast", "A crash course")
	env.course(t, owner, "Go Concurrency", "Channels and select")
	env.course(t, owner, "Go", "The language")
	env.course(t, owner, "Haskell", "Types all the way down")

	page, err := env.svc.Search.Courses(ctx, &model.SearchCoursesQuery{Q: "go"})
	require.NoError(t, err)

	titles := make([]string, 0, len(page.Items))
	for _, c := range page.Items {
		titles = append(titles, c.Title)
		assert.Equal(t, owner.Name, c.InstructorName)
	}
	assert.Equal(t, []string{"Go", "Go Concurrency", "Learning Go Fast", "Rust Basics"}, titles)
	assert.Equal(t, 4, page.Total)
}

func TestPostgres_ReconcileCounters(t *testing.T) {
	env := newPostgres(t)
	ctx := context.Background()
	owner := env.user(t, model.RoleInstructor)
	student := env.user(t, model.RoleStudent)
	course := env.course(t, owner, "Logical Decoding", "wal2json")

	_, err := env.svc.Enrollments.Enroll(ctx, student, &model.EnrollPayload{CourseID: course.ID.String()})
	require.NoError(t, err)
	_, err = env.pool.Exec(ctx, `UPDATE courses SET enrollment_count = 7 WHERE id = $1`, course.ID)
	require.NoError(t, err)

	fixed, err := env.repos.Courses().ReconcileCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)
	assert.Equal(t, 1, env.enrollmentCount(t, course.ID))
}
