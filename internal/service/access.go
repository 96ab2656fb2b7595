package service

import (
	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/google/uuid"
)

func code(c string) *string { return &c }

var (
	errProfileNotFound = errs.NewNotFoundError("User profile not found. Create it with POST /api/users", false, code("PROFILE_NOT_FOUND"))
	errNotEnrolled     = errs.NewNotFoundError("You are not enrolled in this course", false, code("NOT_ENROLLED"))
)

// canManageCourse reports whether u may edit the course and its lessons.
func canManageCourse(u *model.User, c *model.Course) bool {
	return u.IsAdmin() || (u != nil && c.InstructorID == u.ID)
}

// canAccessUser reports whether u may read or change data owned by userID.
func canAccessUser(u *model.User, userID uuid.UUID) bool {
	return u.IsAdmin() || (u != nil && u.ID == userID)
}
