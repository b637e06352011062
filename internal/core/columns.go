package core

// FilterKind is the filter input rendered above a column.
type FilterKind string

const (
	FilterNone     FilterKind = ""
	FilterText     FilterKind = "text"     // case-insensitive substring
	FilterDropdown FilterKind = "dropdown" // equality against an option
)

// System columns every record carries besides its field values.
const (
	ColumnID        = "id"
	ColumnSerial    = "serial"
	ColumnReference = "reference"
	ColumnCreatedAt = "createdAt"
	ColumnUpdatedAt = "updatedAt"
)

// ColumnSpec declares one table column.
type ColumnSpec struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Field      string     `json:"field"`
	Filterable bool       `json:"filterable,omitempty"`
	Sortable   bool       `json:"sortable,omitempty"`
	Filter     FilterKind `json:"filter,omitempty"`
	Options    []Option   `json:"options,omitempty"`
	Permission string     `json:"permission,omitempty"` // hidden from roles lacking it
}

// ColumnKey returns the key rows use for the column.
func (c ColumnSpec) ColumnKey() string {
	if c.Key != "" {
		return c.Key
	}
	return c.Field
}

// FilterInput returns the column's filter input, text by default.
func (c ColumnSpec) FilterInput() FilterKind {
	if !c.Filterable {
		return FilterNone
	}
	if c.Filter == "" {
		return FilterText
	}
	return c.Filter
}

// isSystemColumn reports whether field is stored on the record itself.
func isSystemColumn(field string) bool {
	switch field {
	case ColumnID, ColumnSerial, ColumnReference, ColumnCreatedAt, ColumnUpdatedAt:
		return true
	}
	return false
}

// Row is one presented record: column key to display value.
type Row map[string]any
