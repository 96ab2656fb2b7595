// Package model holds the domain entities persisted by the repository layer
// and the request payloads accepted by the HTTP layer.
//
// Entities carry `db` tags matching column names (pgx RowToStructByName)
// and camelCase `json` tags for the API.
package model

import (
	"github.com/deppfellow/learnhub/internal/lib/utils"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/google/uuid"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage wraps items; a nil slice is returned as an empty JSON array.
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: utils.TotalPages(total, limit),
	}
}

// PageQuery is the page/limit pair shared by listing payloads.
type PageQuery struct {
	Page  int `query:"page" json:"-" validate:"gte=0"`
	Limit int `query:"limit" json:"-" validate:"gte=0"`
}

// Normalized applies defaults and the upper bound for limit.
func (q PageQuery) Normalized(defaultLimit, maxLimit int) (page, limit int) {
	return utils.NormalizePage(q.Page, q.Limit, defaultLimit, maxLimit)
}

// Listing limits.
const (
	DefaultCourseLimit     = 12
	MaxCourseLimit         = 50
	DefaultReviewLimit     = 10
	MaxReviewLimit         = 50
	DefaultSuggestionLimit = 8
	MaxSuggestionLimit     = 20
	MinSuggestionQuery     = 2
)

// IDParam is a payload carrying only a resource id from the path.
type IDParam struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

// Validate requires a well-formed UUID, so malformed ids are a 400, not a 404.
func (p *IDParam) Validate() error {
	return validation.Struct(p)
}

// UUID returns the parsed id. Call after Validate.
func (p *IDParam) UUID() uuid.UUID {
	id, _ := uuid.Parse(p.ID)
	return id
}

// EmptyPayload is used by endpoints without input.
type EmptyPayload struct{}

// Validate always succeeds.
func (p *EmptyPayload) Validate() error {
	return nil
}

// mustUUID parses an id that already passed the uuid rule.
func mustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := mustUUID(*s)
	return &id
}
