package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository/memstore"
	"github.com/deppfellow/learnhub/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind   string
	userID uuid.UUID
	detail string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) WelcomeUser(_ context.Context, user *model.User) error {
	n.add(event{kind: "welcome", userID: user.ID})
	return nil
}

func (n *recordingNotifier) EnrollmentConfirmed(_ context.Context, user *model.User, course *model.Course) error {
	n.add(event{kind: "enrollment", userID: user.ID, detail: course.Slug})
	return nil
}

func (n *recordingNotifier) CertificateIssued(_ context.Context, user *model.User, _ *model.Course, cert *model.Certificate) error {
	n.add(event{kind: "certificate", userID: user.ID, detail: cert.CertificateNumber})
	return nil
}

func (n *recordingNotifier) add(e event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.kind)
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	svc      *Services
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	f.store.Now = func() time.Time { return f.now }
	f.svc = New(f.store, f.notifier, func() time.Time { return f.now })
	return f
}

func (f *fixture) user(t *testing.T, role string) *model.User {
	t.Helper()
	id := uuid.NewString()
	u, err := f.store.Users().Create(context.Background(), &model.User{
		ExternalID: "user_" + id,
		Email:      id + "@example.com",
		Name:       "User " + id[:4],
		Role:       role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) course(t *testing.T, instructor *model.User, title string, published bool) *model.Course {
	t.Helper()
	c, err := f.svc.Courses.Create(context.Background(), instructor, &model.CreateCoursePayload{
		Title:       title,
		Description: "About " + title,
		IsPublished: published,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) lessons(t *testing.T, instructor *model.User, course *model.Course, titles ...string) []*model.Lesson {
	t.Helper()
	out := make([]*model.Lesson, 0, len(titles))
	for _, title := range titles {
		l, err := f.svc.Lessons.Create(context.Background(), instructor, &model.CreateLessonPayload{
			CourseID: course.ID.String(),
			Title:    title,
			Content:  "# " + title,
		})
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func (f *fixture) enroll(t *testing.T, user *model.User, course *model.Course) *model.Enrollment {
	t.Helper()
	res, err := f.svc.Enrollments.Enroll(context.Background(), user, &model.EnrollPayload{CourseID: course.ID.String()})
	require.NoError(t, err)
	return res.Enrollment
}

func (f *fixture) courseRow(t *testing.T, id uuid.UUID) *model.Course {
	t.Helper()
	c, err := f.store.Courses().GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

// requireStatus checks the HTTP status err maps to.
func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, sqlerr.HandleError(err), &httpErr)
	assert.Equal(t, status, httpErr.Status, httpErr.Message)
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestNew_DefaultsNotifier(t *testing.T) {
	svc := New(memstore.New(), nil, nil)
	require.NotNil(t, svc.Users)

	ctx := context.Background()
	user, created, err := svc.Users.Create(ctx, "user_1", &model.CreateUserPayload{Email: "a@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleStudent, user.Role)
}
