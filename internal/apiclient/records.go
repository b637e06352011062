package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// EntityInfo describes one entity.
type EntityInfo struct {
	Key        string `json:"key"`
	Group      string `json:"group"`
	Label      string `json:"label"`
	TitleField string `json:"titleField"`
	RefPrefix  string `json:"refPrefix,omitempty"`
}

// Column is one table column as the server presents it.
type Column struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Field      string `json:"field"`
	Filterable bool   `json:"filterable"`
	Sortable   bool   `json:"sortable"`
	Filter     string `json:"filter"`
}

// Pagination is the clamped page of a list.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Page is one page of rows.
type Page struct {
	Entity     string           `json:"entity"`
	Columns    []Column         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	Pagination Pagination       `json:"pagination"`
}

// Record is one stored record.
type Record struct {
	ID        string         `json:"id"`
	Serial    int64          `json:"serial"`
	Reference string         `json:"reference,omitempty"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// FormView is a previewed form sheet.
type FormView struct {
	Entity   string            `json:"entity"`
	Mode     string            `json:"mode"`
	RecordID string            `json:"recordId,omitempty"`
	Values   map[string]any    `json:"values"`
	Derived  []string          `json:"derived,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// PendingDelete is an issued delete confirmation.
type PendingDelete struct {
	Entity      string    `json:"entity"`
	RecordID    string    `json:"recordId"`
	Description string    `json:"description"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ListOptions select a page. Zero values use the server defaults.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.SortBy != "" {
		q.Set("sortBy", o.SortBy)
	}
	if o.SortOrder != "" {
		q.Set("sortOrder", o.SortOrder)
	}
	for col, v := range o.Filters {
		q.Set("filter["+col+"]", v)
	}
	return q
}

func recordsPath(entity string) string {
	return "/api/entities/" + url.PathEscape(entity) + "/records"
}

// Entities lists the registered entities.
func (c *Client) Entities(ctx context.Context) ([]EntityInfo, error) {
	var out struct {
		Entities []EntityInfo `json:"entities"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/entities", nil, nil, &out)
	return out.Entities, err
}

// List returns one page of an entity.
func (c *Client) List(ctx context.Context, entity string, opts ListOptions) (*Page, error) {
	var page Page
	if _, err := c.do(ctx, http.MethodGet, recordsPath(entity), opts.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one record.
func (c *Client) Get(ctx context.Context, entity, id string) (*Record, error) {
	var rec Record
	if _, err := c.do(ctx, http.MethodGet, recordsPath(entity)+"/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create submits a new record.
func (c *Client) Create(ctx context.Context, entity string, values map[string]any) (*Record, error) {
	var rec Record
	if _, err := c.do(ctx, http.MethodPost, recordsPath(entity), nil, values, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update changes the given fields of a record.
func (c *Client) Update(ctx context.Context, entity, id string, values map[string]any) (*Record, error) {
	var rec Record
	if _, err := c.do(ctx, http.MethodPut, recordsPath(entity)+"/"+url.PathEscape(id), nil, values, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PreviewForm applies changes to a create sheet (empty recordID) or an
// edit sheet and returns the recomputed view without saving.
func (c *Client) PreviewForm(ctx context.Context, entity, recordID string, changes map[string]any, validate bool) (*FormView, error) {
	body := map[string]any{"recordId": recordID, "values": changes, "validate": validate}
	var view FormView
	if _, err := c.do(ctx, http.MethodPost, "/api/entities/"+url.PathEscape(entity)+"/form", nil, body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// RequestDelete opens a delete confirmation.
func (c *Client) RequestDelete(ctx context.Context, entity, id string) (*PendingDelete, error) {
	var p PendingDelete
	if _, err := c.do(ctx, http.MethodPost, recordsPath(entity)+"/"+url.PathEscape(id)+"/delete-request", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ConfirmDelete deletes the record a token was issued for.
func (c *Client) ConfirmDelete(ctx context.Context, entity, id, token string) error {
	q := url.Values{"token": {token}}
	_, err := c.do(ctx, http.MethodDelete, recordsPath(entity)+"/"+url.PathEscape(id), q, nil, nil)
	return err
}

// Delete runs both delete steps.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	p, err := c.RequestDelete(ctx, entity, id)
	if err != nil {
		return err
	}
	return c.ConfirmDelete(ctx, entity, id, p.Token)
}

// Stats returns the dashboard figures for the filters, keyed as the server
// sends them.
func (c *Client) Stats(ctx context.Context, year, date, client, contractType string) (map[string]any, error) {
	q := url.Values{}
	for k, v := range map[string]string{"selectedYear": year, "date": date, "client": client, "contractType": contractType} {
		if v != "" {
			q.Set(k, v)
		}
	}
	var out struct {
		Stats map[string]any `json:"stats"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/stats", q, nil, &out)
	return out.Stats, err
}
