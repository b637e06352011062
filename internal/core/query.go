package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortOrder is the direction of the single active sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc"/"desc" in any case; anything else is asc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// SortSpec names the sort column (a field or system column) and direction.
type SortSpec struct {
	Column string    `json:"column"`
	Order  SortOrder `json:"order"`
}

// ColumnFilter is one resolved column filter.
type ColumnFilter struct {
	Column string     // column key as requested
	Field  string     // field or system column the value is read from
	Kind   FilterKind // text: substring, dropdown: equality
	Value  string
	Scale  int32 // fixed decimals of a number field, matched as displayed
}

// Matches reports whether rec satisfies the filter.
func (f ColumnFilter) Matches(rec Record) bool {
	text := rec.Text(f.Field)
	if f.Scale > 0 {
		if d, ok := rec.Values.Decimal(f.Field); ok {
			text = d.StringFixed(f.Scale)
		}
	}
	if f.Kind == FilterDropdown {
		return strings.EqualFold(text, f.Value)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(f.Value))
}

// Query is the paging, sorting and filtering contract every Repository
// implements. Page is 1-based and already clamped by the caller.
type Query struct {
	Page     int
	PageSize int
	Sort     SortSpec
	Filters  []ColumnFilter
}

// Offset returns the number of rows to skip.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Pagination is a clamped page window.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	Total      int64 `json:"total"`
}

// ClampPage bounds page to [1, totalPages]; totalPages is at least 1.
func ClampPage(page, pageSize int, total int64) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PageSize: pageSize, TotalPages: totalPages, Total: total}
}

// MatchesAll reports whether rec satisfies every filter.
func MatchesAll(rec Record, filters []ColumnFilter) bool {
	for _, f := range filters {
		if !f.Matches(rec) {
			return false
		}
	}
	return true
}

// CompareRecords orders a and b by the sort column, ties broken by id.
// Empty values sort first in ascending order.
func CompareRecords(a, b Record, sort SortSpec) int {
	c := compareValues(a.Value(sort.Column), b.Value(sort.Column))
	if sort.Order == SortDesc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareValues(a, b any) int {
	switch {
	case isEmpty(a) && isEmpty(b):
		return 0
	case isEmpty(a):
		return -1
	case isEmpty(b):
		return 1
	}

	switch x := a.(type) {
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(strings.ToLower(textOf(a)), strings.ToLower(textOf(b)))
}

// Value returns a field value or system column of the record.
func (r Record) Value(field string) any {
	switch field {
	case ColumnID:
		return r.ID
	case ColumnSerial:
		return r.Serial
	case ColumnCreatedAt:
		return r.CreatedAt
	case ColumnUpdatedAt:
		return r.UpdatedAt
	}
	return r.Values[field]
}

// Text returns the text form of Value, the form filters compare against.
func (r Record) Text(field string) string {
	switch v := r.Value(field).(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return textOf(v)
	}
}
