package content

import "strings"

// Page size bounds used when a ListQuery is normalized without explicit limits
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// MaxPage is the highest page number accepted
const MaxPage = 100000

// ListQuery selects a page of records. Search and Category combine with AND.
type ListQuery struct {
	Page     int    `query:"page" json:"page" validate:"max=100000"`
	Limit    int    `query:"limit" json:"limit"`
	Search   string `query:"q" json:"q" validate:"max=200"`
	Category string `query:"category" json:"category" validate:"max=100"`
}

// Normalize clamps page and limit into range and trims the filters
func (q ListQuery) Normalize(defaultLimit, maxLimit int) ListQuery {
	switch {
	case q.Page < 1:
		q.Page = 1
	case q.Page > MaxPage:
		q.Page = MaxPage
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultLimit
	case q.Limit > maxLimit:
		q.Limit = maxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

// Offset is the number of records skipped before this page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Page is one page of list results
type Page[T any] struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}
