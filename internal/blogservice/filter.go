package blogservice

import (
	"fmt"
	"strings"

	"github.com/sushihentaime/blogapi/internal/common"
)

// Filter carries the listing parameters: exact state match, partial title
// match, free-text author search, tag overlap, sorting and pagination.
type Filter struct {
	State   string
	Title   string
	Author  string
	Tags    []string
	Page    int
	PerPage int
	// SortBy is a comma separated list of field names, each optionally
	// prefixed with '-' for descending order, e.g. "-read_count,title".
	SortBy string
}

type Metadata struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// sortColumns maps client-facing sort field names to the columns they order
// by. Anything not listed here is rejected.
var sortColumns = map[string]string{
	"created_at":   "b.created_at",
	"updated_at":   "b.updated_at",
	"read_count":   "b.read_count",
	"reading_time": "b.reading_time",
	"title":        "b.title",
}

func (f Filter) validate(v *common.Validator) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PerPage > 0, "per_page", "must be greater than zero")
	v.Check(f.PerPage <= 100, "per_page", "must be a maximum of 100")

	if f.State != "" {
		v.Check(common.PermittedValue(f.State, StateDraft, StatePublished), "state", "must be either draft or published")
	}

	for _, field := range f.sortFields() {
		name := strings.TrimPrefix(field, "-")
		if _, ok := sortColumns[name]; !ok {
			v.AddError("sort_by", fmt.Sprintf("unknown sort field %q", name))
		}
	}
}

func (f Filter) sortFields() []string {
	var fields []string
	for _, field := range strings.Split(f.SortBy, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// orderBy builds the ORDER BY clause from the validated sort fields. The
// default order is newest first; the row id is always appended as a
// tiebreaker so pagination stays deterministic.
func (f Filter) orderBy() string {
	var clauses []string
	for _, field := range f.sortFields() {
		direction := "ASC"
		name := field
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			name = field[1:]
		}
		clauses = append(clauses, sortColumns[name]+" "+direction)
	}

	if len(clauses) == 0 {
		clauses = append(clauses, "b.created_at DESC")
	}

	clauses = append(clauses, "b.id ASC")

	return strings.Join(clauses, ", ")
}

func (f Filter) limit() int {
	return f.PerPage
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.PerPage
}

// calculateMetadata derives the pagination metadata. An empty result keeps
// the requested page and page size but reports zero total pages.
func calculateMetadata(total, page, perPage int) Metadata {
	metadata := Metadata{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}

	if total > 0 {
		metadata.TotalPages = (total + perPage - 1) / perPage
	}

	return metadata
}
