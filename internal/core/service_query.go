package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Schema is what a client needs to render an entity's table and form.
type Schema struct {
	Info        EntityInfo    `json:"info"`
	Fields      []FieldSpec   `json:"fields"`
	Columns     []ColumnSpec  `json:"columns"`
	Derived     []string      `json:"derived,omitempty"`
	Derivations [][]string    `json:"derivations,omitempty"` // target followed by its inputs
	Filters     []FilterParam `json:"filters,omitempty"`
}

// FilterParam documents one filter[<key>] list parameter. Dropdown filters
// match the option value exactly; labels are for display only.
type FilterParam struct {
	Param  string     `json:"param"`
	Input  FilterKind `json:"input"`
	Match  string     `json:"match"`
	Values []string   `json:"values,omitempty"` // accepted values of a dropdown filter
}

// ListParams are the raw paging, sorting and filtering request parameters.
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string            // column key; empty uses the entity default
	SortOrder string            // "asc" or "desc"
	Filters   map[string]string // column key -> filter value
	Role      string            // viewing role for column permissions
}

// ListResult is one page of presented rows.
type ListResult struct {
	Entity     string            `json:"entity"`
	Columns    []ColumnSpec      `json:"columns"`
	Rows       []Row             `json:"rows"`
	Pagination Pagination        `json:"pagination"`
	Sort       SortSpec          `json:"sort"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// RecordView is a single record with every field presented.
type RecordView struct {
	ID        string    `json:"id"`
	Serial    int64     `json:"serial"`
	Reference string    `json:"reference,omitempty"`
	Values    Row       `json:"values"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListEntities returns information about all registered entities.
func (s *Service) ListEntities() []EntityInfo {
	defs := s.registry.All()
	infos := make([]EntityInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListEntitiesByGroup returns entities organized by navigation group.
func (s *Service) ListEntitiesByGroup() map[string][]EntityInfo {
	result := make(map[string][]EntityInfo)
	for _, group := range s.registry.Groups() {
		for _, def := range s.registry.ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Schema returns the field and column declarations visible to role.
func (s *Service) Schema(key, role string) (Schema, error) {
	def, err := s.entity(key)
	if err != nil {
		return Schema{}, err
	}
	columns, err := s.columnsFor(def, role)
	if err != nil {
		return Schema{}, err
	}

	schema := Schema{Info: def.Info, Fields: def.Fields, Columns: columns}
	for _, d := range def.graph.order {
		schema.Derived = append(schema.Derived, d.Target)
		schema.Derivations = append(schema.Derivations, append([]string{d.Target}, d.Inputs...))
	}
	schema.Filters = filterParams(def, columns)
	return schema, nil
}

func filterParams(def *EntityDefinition, columns []ColumnSpec) []FilterParam {
	var params []FilterParam
	for _, c := range columns {
		input := c.FilterInput()
		if input == FilterNone {
			continue
		}
		p := FilterParam{Param: "filter[" + c.ColumnKey() + "]", Input: input, Match: "contains, case-insensitive"}
		f, hasField := def.Field(c.Field)
		if input == FilterDropdown {
			p.Match = "option value, case-insensitive"
			options := c.Options
			if len(options) == 0 && hasField {
				options = f.Options
			}
			for _, o := range options {
				p.Values = append(p.Values, o.Value)
			}
			if len(p.Values) == 0 && hasField && f.IsBool() {
				p.Values = []string{"true", "false"}
			}
		} else if hasField && f.Kind == KindNumber && f.Scale > 0 {
			p.Match = fmt.Sprintf("contains, against the value shown with %d decimals", f.Scale)
		}
		params = append(params, p)
	}
	return params
}

// columnsFor drops the columns whose permission role lacks. An empty role
// sees every column.
func (s *Service) columnsFor(def *EntityDefinition, role string) ([]ColumnSpec, error) {
	if role == "" || s.permissions == nil {
		return def.Columns, nil
	}
	if !s.permissions.KnownRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	columns := make([]ColumnSpec, 0, len(def.Columns))
	for _, c := range def.Columns {
		if c.Permission == "" || s.permissions.Allowed(role, c.Permission) {
			columns = append(columns, c)
		}
	}
	return columns, nil
}

// List returns one page of an entity. Filtering, sorting and paging are
// resolved here and applied by the repository; the page is clamped to the
// available range.
func (s *Service) List(ctx context.Context, key string, p ListParams) (*ListResult, error) {
	def, err := s.entity(key)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnsFor(def, p.Role)
	if err != nil {
		return nil, err
	}

	filters, applied, err := resolveFilters(def, columns, p.Filters)
	if err != nil {
		return nil, err
	}
	sortSpec, err := resolveSort(def, columns, p.SortBy, p.SortOrder)
	if err != nil {
		return nil, err
	}

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	total, err := s.records.Count(ctx, def, filters)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", key, err)
	}
	page := ClampPage(p.Page, pageSize, total)

	records, err := s.records.List(ctx, def, Query{
		Page:     page.Page,
		PageSize: page.PageSize,
		Sort:     sortSpec,
		Filters:  filters,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = def.Present(rec, columns)
	}

	reported := sortSpec
	if p.SortBy != "" {
		reported.Column = p.SortBy
	}
	return &ListResult{
		Entity:     key,
		Columns:    columns,
		Rows:       rows,
		Pagination: page,
		Sort:       reported,
		Filters:    applied,
	}, nil
}

func resolveFilters(def *EntityDefinition, columns []ColumnSpec, raw map[string]string) ([]ColumnFilter, map[string]string, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		filters []ColumnFilter
		applied = make(map[string]string)
		errs    ValidationErrors
	)
	for _, key := range keys {
		value := strings.TrimSpace(raw[key])
		if value == "" {
			continue
		}
		c, ok := findColumn(columns, key)
		if !ok || !c.Filterable {
			errs = append(errs, ValidationError{Field: "filter[" + key + "]", Value: value, Message: "cannot filter by " + key})
			continue
		}
		filter := ColumnFilter{Column: key, Field: c.Field, Kind: c.FilterInput(), Value: value}
		if f, ok := def.Field(c.Field); ok && f.Kind == KindNumber {
			filter.Scale = f.Scale
		}
		filters = append(filters, filter)
		applied[key] = value
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return filters, applied, nil
}

func resolveSort(def *EntityDefinition, columns []ColumnSpec, sortBy, order string) (SortSpec, error) {
	if sortBy == "" {
		spec := def.Info.DefaultSort
		if order != "" {
			spec.Order = ParseSortOrder(order)
		}
		return spec, nil
	}

	c, ok := findColumn(columns, sortBy)
	if !ok || !c.Sortable {
		return SortSpec{}, ValidationErrors{{Field: "sortBy", Value: sortBy, Message: "cannot sort by " + sortBy}}
	}
	field := c.Field
	if field == ColumnReference {
		field = ColumnSerial
	}
	return SortSpec{Column: field, Order: ParseSortOrder(order)}, nil
}

func findColumn(columns []ColumnSpec, key string) (ColumnSpec, bool) {
	for _, c := range columns {
		if c.ColumnKey() == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Get returns one record with all of its fields presented.
func (s *Service) Get(ctx context.Context, key, id string) (*RecordView, error) {
	def, err := s.entity(key)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, def, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", key, id, err)
	}
	return s.view(def, rec), nil
}

func (s *Service) view(def *EntityDefinition, rec Record) *RecordView {
	values := make(Row, len(rec.Values))
	for _, f := range def.Fields {
		if _, ok := rec.Values[f.Name]; ok {
			values[f.Name] = def.display(rec, f.Name)
		}
	}
	return &RecordView{
		ID:        rec.ID,
		Serial:    rec.Serial,
		Reference: def.Reference(rec.Serial),
		Values:    values,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
