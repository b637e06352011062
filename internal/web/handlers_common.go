// This file contains shared request parsing used across handlers.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// MaxBodySize bounds JSON and form bodies (1MB).
const MaxBodySize = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseFilters extracts filter[column]=value pairs. Empty values are
// dropped; the service rejects columns that cannot be filtered.
func parseFilters(q url.Values) map[string]string {
	filters := make(map[string]string)
	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		if col == "" || len(values) == 0 {
			continue
		}
		if v := strings.TrimSpace(values[0]); v != "" {
			filters[col] = v
		}
	}
	return filters
}

// parseListParams reads page, limit, sortBy, sortOrder and filters. Page and
// limit are passed through as given; the service clamps them.
func parseListParams(r *http.Request) core.ListParams {
	q := r.URL.Query()
	return core.ListParams{
		Page:      parseIntParam(r, "page", 1),
		PageSize:  parseIntParam(r, "limit", 0),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Filters:   parseFilters(q),
		Role:      roleOf(r),
	}
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. endOfDay
// moves the time to the last second of that day.
func parseDateParam(r *http.Request, name string, endOfDay bool) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(core.DateLayout, v)
	if err != nil {
		return time.Time{}, core.ValidationError{Field: name, Value: v, Message: "invalid date, use YYYY-MM-DD"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// decodeJSON decodes a bounded JSON body. Numbers stay json.Number so
// decimals keep their exact text.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return core.ValidationError{Field: "body", Message: "request body is empty"}
		}
		return core.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// entityParam returns the {entity} path parameter.
func entityParam(r *http.Request) string {
	return chi.URLParam(r, "entity")
}

// isFormPost reports whether the body is form encoded, as HTMX sends it.
func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
