// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Services depend on the Store interface; *Repositories is the pgx-backed
// implementation and memstore provides an in-memory one for tests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups every repository and runs units of work.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Courses() CourseRepository
	Lessons() LessonRepository
	Enrollments() EnrollmentRepository
	Progress() ProgressRepository
	Certificates() CertificateRepository
	Reviews() ReviewRepository
	Search() SearchRepository

	// WithTx runs fn inside a transaction. The Store handed to fn is bound
	// to it; fn returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// UserRepository persists learner profiles. Users are keyed by their own id and
// looked up by the auth subject (external_id) on every authenticated request.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
	Stats(ctx context.Context, id uuid.UUID) (*model.UserStats, error)
}

// CategoryRepository reads course categories.
type CategoryRepository interface {
	ListWithCounts(ctx context.Context) ([]model.CategoryWithCount, error)
}

// CourseRepository persists courses and their denormalized counters
// (enrollment_count, rating, review_count).
type CourseRepository interface {
	List(ctx context.Context, filter model.CourseFilter) ([]model.CourseSummary, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*model.CourseSummary, error)
	// Lock reads the course with a row lock held until the transaction ends.
	Lock(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) (*model.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// AdjustEnrollmentCount adds delta, never going below zero.
	AdjustEnrollmentCount(ctx context.Context, id uuid.UUID, delta int) error
	// RefreshRating recomputes rating and review_count from reviews.
	RefreshRating(ctx context.Context, id uuid.UUID) (*model.Course, error)
	// ReconcileCounters recomputes every denormalized counter and returns
	// the number of courses that were out of date.
	ReconcileCounters(ctx context.Context) (int64, error)
}

// LessonRepository persists lessons. Positions within a course are kept
// contiguous from 1 by the service, using ShiftPositions inside a transaction.
type LessonRepository interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.LessonOutline, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
	Create(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error)
	MaxPosition(ctx context.Context, courseID uuid.UUID) (int, error)
	// ShiftPositions adds delta to the position of every lesson of the
	// course whose position is in [from, to]. to <= 0 means no upper bound.
	ShiftPositions(ctx context.Context, courseID uuid.UUID, from, to, delta int) error
}

// EnrollmentRepository persists enrollments. There is at most one per user and
// course, enforced by a unique index.
type EnrollmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	// Create inserts the enrollment unless one exists. created is false
	// when the existing row is returned.
	Create(ctx context.Context, userID, courseID uuid.UUID) (enrollment *model.Enrollment, created bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Save writes status, progress and the timestamps.
	Save(ctx context.Context, enrollment *model.Enrollment) (*model.Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error)
}

// ProgressRepository persists per-lesson progress of an enrollment.
type ProgressRepository interface {
	Get(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*model.LessonProgress, error)
	// Complete marks the lesson done, adding seconds to the time spent.
	Complete(ctx context.Context, enrollmentID, lessonID, userID uuid.UUID, seconds int, at time.Time) (*model.LessonProgress, error)
	CountCompleted(ctx context.Context, enrollmentID uuid.UUID) (int, error)
	ListForEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID) ([]model.LessonProgressItem, error)
	// ActivityDays returns the distinct UTC days with progress updates.
	ActivityDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

// CertificateRepository persists completion certificates, one per user and course.
type CertificateRepository interface {
	// Issue creates the certificate unless the user already holds one for
	// the course. issued is false when the existing one is returned.
	Issue(ctx context.Context, userID, courseID uuid.UUID, number string) (cert *model.Certificate, issued bool, err error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CertificateWithCourse, error)
}

// ReviewRepository persists course reviews, one per user and course.
type ReviewRepository interface {
	Upsert(ctx context.Context, userID, courseID uuid.UUID, rating int, comment *string) (*model.Review, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, offset, limit int) ([]model.ReviewWithUser, int, error)
}

// SearchRepository runs the case-insensitive substring searches. Only published
// courses, and lessons of published courses, are ever returned.
type SearchRepository interface {
	Courses(ctx context.Context, search model.CourseSearch) ([]model.CourseSummary, int, error)
	Lessons(ctx context.Context, search model.LessonSearch) ([]model.LessonHit, int, error)
	Suggestions(ctx context.Context, query string, limit int) ([]model.Suggestion, error)
}

// NotFound returns a no-rows error naming the table, which sqlerr turns
// into "<Entity> not found".
func NotFound(table string) error {
	return fmt.Errorf("table:%s: %w", table, pgx.ErrNoRows)
}

// IsNotFound reports whether err comes from a missing row, including errors
// built by NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// notFound wraps pgx.ErrNoRows with the table hint and passes other errors through.
func notFound(err error, table string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(table)
	}
	return err
}
