package repository

import (
	"context"
	"strings"

	"github.com/deppfellow/learnhub/internal/server"
	"github.com/jackc/pgx/v5"
)

// Repositories is the PostgreSQL Store. Every repository shares db, which
// is the pool or, inside WithTx, the transaction.
type Repositories struct {
	db DBTX
}

// NewRepositories builds the Store on the server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return New(s.DB.Pool)
}

// New builds the Store on any DBTX. Tests pass a pool bound to a scratch
// schema; WithTx passes the transaction.
func New(db DBTX) *Repositories {
	return &Repositories{db: db}
}

// Users returns the user repository on the same connection.
func (r *Repositories) Users() UserRepository {
	return &UserRepo{db: r.db}
}

// Categories returns the category repository on the same connection.
func (r *Repositories) Categories() CategoryRepository {
	return &CategoryRepo{db: r.db}
}

// Courses returns the course repository on the same connection.
func (r *Repositories) Courses() CourseRepository {
	return &CourseRepo{db: r.db}
}

// Lessons returns the lesson repository on the same connection.
func (r *Repositories) Lessons() LessonRepository {
	return &LessonRepo{db: r.db}
}

// Enrollments returns the enrollment repository on the same connection.
func (r *Repositories) Enrollments() EnrollmentRepository {
	return &EnrollmentRepo{db: r.db}
}

// Progress returns the lesson progress repository on the same connection.
func (r *Repositories) Progress() ProgressRepository {
	return &ProgressRepo{db: r.db}
}

// Certificates returns the certificate repository on the same connection.
func (r *Repositories) Certificates() CertificateRepository {
	return &CertificateRepo{db: r.db}
}

// Reviews returns the review repository on the same connection.
func (r *Repositories) Reviews() ReviewRepository {
	return &ReviewRepo{db: r.db}
}

// Search returns the search repository on the same connection.
func (r *Repositories) Search() SearchRepository {
	return &SearchRepo{db: r.db}
}

// WithTx begins a transaction (a savepoint when already inside one) and
// commits it when fn returns nil.
func (r *Repositories) WithTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}

var _ Store = (*Repositories)(nil)

// collect runs a query and scans every row into T by column name.
func collect[T any](ctx context.Context, db DBTX, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// collectOne is collect for exactly one row; no rows yields pgx.ErrNoRows.
func collectOne[T any](ctx context.Context, db DBTX, sql string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
}

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, columns string) string {
	fields := strings.Split(columns, ",")
	for i, f := range fields {
		fields[i] = alias + "." + strings.TrimSpace(f)
	}
	return strings.Join(fields, ", ")
}
