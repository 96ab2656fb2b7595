// Package memstore is an in-memory repository.Store for tests.
//
// It keeps the same contracts as the PostgreSQL store: not-found errors carry
// the table hint, unique and foreign key violations are reported as
// *pgconn.PgError with the constraint names of the schema, and WithTx rolls
// every change back when fn fails.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// data holds one map per table, keyed by primary key.
type data struct {
	users        map[uuid.UUID]model.User
	categories   map[uuid.UUID]model.Category
	courses      map[uuid.UUID]model.Course
	lessons      map[uuid.UUID]model.Lesson
	enrollments  map[uuid.UUID]model.Enrollment
	progress     map[uuid.UUID]model.LessonProgress
	certificates map[uuid.UUID]model.Certificate
	reviews      map[uuid.UUID]model.Review
}

func newData() *data {
	return &data{
		users:        map[uuid.UUID]model.User{},
		categories:   map[uuid.UUID]model.Category{},
		courses:      map[uuid.UUID]model.Course{},
		lessons:      map[uuid.UUID]model.Lesson{},
		enrollments:  map[uuid.UUID]model.Enrollment{},
		progress:     map[uuid.UUID]model.LessonProgress{},
		certificates: map[uuid.UUID]model.Certificate{},
		reviews:      map[uuid.UUID]model.Review{},
	}
}

// clone copies every table. Rows are values and slices inside them are
// replaced, never mutated, so a shallow map copy is a full snapshot.
func (d *data) clone() *data {
	return &data{
		users:        maps.Clone(d.users),
		categories:   maps.Clone(d.categories),
		courses:      maps.Clone(d.courses),
		lessons:      maps.Clone(d.lessons),
		enrollments:  maps.Clone(d.enrollments),
		progress:     maps.Clone(d.progress),
		certificates: maps.Clone(d.certificates),
		reviews:      maps.Clone(d.reviews),
	}
}

// Store is an in-memory repository.Store for service and HTTP tests. It
// follows the PostgreSQL repositories closely enough that both can run the
// same scenarios, including unique constraints and counter clamping.
type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	d    *data
	inTx bool

	// Now stamps created and updated rows.
	Now func() time.Time

	// FailOn makes the named operation ("enrollments.create", ...) return
	// an error, to exercise rollback paths.
	FailOn map[string]error
}

// New returns an empty Store stamping rows with the wall clock in UTC.
func New() *Store {
	return &Store{
		mu:     &sync.Mutex{},
		txMu:   &sync.Mutex{},
		d:      newData(),
		Now:    func() time.Time { return time.Now().UTC() },
		FailOn: map[string]error{},
	}
}

var _ repository.Store = (*Store)(nil)

// Users implements repository.Store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Categories implements repository.Store.
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }

// Courses implements repository.Store.
func (s *Store) Courses() repository.CourseRepository { return courseRepo{s} }

// Lessons implements repository.Store.
func (s *Store) Lessons() repository.LessonRepository { return lessonRepo{s} }

// Enrollments implements repository.Store.
func (s *Store) Enrollments() repository.EnrollmentRepository { return enrollmentRepo{s} }

// Progress implements repository.Store.
func (s *Store) Progress() repository.ProgressRepository { return progressRepo{s} }

// Certificates implements repository.Store.
func (s *Store) Certificates() repository.CertificateRepository { return certificateRepo{s} }

// Reviews implements repository.Store.
func (s *Store) Reviews() repository.ReviewRepository { return reviewRepo{s} }

// Search implements repository.Store.
func (s *Store) Search() repository.SearchRepository { return searchRepo{s} }

// WithTx snapshots the tables, runs fn and restores the snapshot if fn
// fails. Transactions are serialized; nested calls behave like savepoints.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	tx := *s
	tx.inTx = true
	if err := fn(&tx); err != nil {
		s.mu.Lock()
		*s.d = *snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// AddCategory inserts a category; categories are seeded by migration in PostgreSQL.
func (s *Store) AddCategory(name, slug string) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Category{ID: uuid.New(), Name: name, Slug: slug, CreatedAt: s.Now()}
	s.d.categories[c.ID] = c
	return c
}

// lock acquires the table lock and fails if op was configured to.
func (s *Store) lock(ctx context.Context, op string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.FailOn[op]; ok {
		return nil, err
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// uniqueViolation builds the error Postgres returns for a duplicate key,
// so sqlerr maps both stores the same way.
func uniqueViolation(table, constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
		TableName:      table,
		ConstraintName: constraint,
	}
}

// foreignKeyViolation names the constraint the way Postgres does by default.
func foreignKeyViolation(table, column string) error {
	constraint := fmt.Sprintf("%s_%s_fkey", table, column)
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23503",
		Message:        fmt.Sprintf("insert or update on table %q violates foreign key constraint %q", table, constraint),
		TableName:      table,
		ColumnName:     column,
		ConstraintName: constraint,
	}
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// page slices items like OFFSET/LIMIT. A zero limit returns the rest.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func ptr[T any](v T) *T {
	return &v
}
