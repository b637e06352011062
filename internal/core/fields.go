package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind is the input control a field is edited with.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindTextarea    FieldKind = "textarea"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindCheckbox    FieldKind = "checkbox"
	KindEmail       FieldKind = "email"
	KindNumber      FieldKind = "number"
	KindDate        FieldKind = "date"
	KindFile        FieldKind = "file"
	KindDropdown    FieldKind = "dropdown"
)

// Valid reports whether k is one of the declared kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindTextarea, KindSelect, KindMultiSelect, KindCheckbox,
		KindEmail, KindNumber, KindDate, KindFile, KindDropdown:
		return true
	}
	return false
}

// HasOptions reports whether the kind picks from a fixed option list.
func (k FieldKind) HasOptions() bool {
	return k == KindSelect || k == KindMultiSelect || k == KindDropdown
}

// Stamp is a default taken from the clock when a sheet opens.
type Stamp string

const (
	StampNone  Stamp = ""
	StampToday Stamp = "today" // YYYY-MM-DD
	StampNow   Stamp = "now"   // HH:MM
)

// DateLayout is the canonical representation of date values.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical representation of stamped times.
const TimeLayout = "15:04"

// Option is one choice of a select, multiselect or dropdown.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rules are the per-field validation rules surfaced as inline errors.
type Rules struct {
	Required  bool             `json:"required,omitempty"`
	MinLength int              `json:"minLength,omitempty"`
	Min       *decimal.Decimal `json:"min,omitempty"`
	Max       *decimal.Decimal `json:"max,omitempty"`
	Format    string           `json:"format,omitempty"` // validator tag, e.g. "email" or "url"
}

// Condition makes a field visible only while another field matches.
type Condition struct {
	Field    string   `json:"field"`
	Equals   []string `json:"equals,omitempty"`
	NotEmpty bool     `json:"notEmpty,omitempty"`
}

// Holds evaluates the condition against the current form values.
func (c Condition) Holds(values Values) bool {
	text := values.Text(c.Field)
	if c.NotEmpty {
		return text != ""
	}
	for _, want := range c.Equals {
		if text == want {
			return true
		}
	}
	return false
}

// FieldSpec declares one form input.
type FieldSpec struct {
	Name         string     `json:"name"`
	Label        string     `json:"label"`
	Kind         FieldKind  `json:"kind"`
	DBColumn     string     `json:"-"`
	Placeholder  string     `json:"placeholder,omitempty"`
	Options      []Option   `json:"options,omitempty"`
	Multiple     bool       `json:"multiple,omitempty"`
	Accept       string     `json:"accept,omitempty"`
	Disabled     bool       `json:"disabled,omitempty"`
	Boolean      bool       `json:"boolean,omitempty"` // dropdown whose options are "true"/"false"
	Scale        int32      `json:"scale,omitempty"`   // fixed decimals when presenting numbers
	Default      any        `json:"default,omitempty"`
	Stamp        Stamp      `json:"stamp,omitempty"`
	StampOnEdit  bool       `json:"stampOnEdit,omitempty"`
	LockOnCreate bool       `json:"lockOnCreate,omitempty"`
	Rules        Rules      `json:"rules"`
	ShowWhen     *Condition `json:"showWhen,omitempty"`
}

// Column returns the storage column name for the field.
func (f FieldSpec) Column() string {
	if f.DBColumn != "" {
		return f.DBColumn
	}
	return toSnakeCase(f.Name)
}

// IsList reports whether the field holds a list of strings.
func (f FieldSpec) IsList() bool {
	return f.Kind == KindMultiSelect || f.Kind == KindFile
}

// IsBool reports whether the field holds a boolean.
func (f FieldSpec) IsBool() bool {
	return f.Kind == KindCheckbox || (f.Kind == KindDropdown && f.Boolean)
}

// HasOption reports whether v is one of the declared option values.
func (f FieldSpec) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Values holds normalised field values keyed by field name.
// Text kinds hold string, numbers decimal.Decimal, booleans bool,
// multiselect and file fields []string.
type Values map[string]any

// Clone returns a shallow copy with list values duplicated.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if list, ok := val.([]string); ok {
			val = append([]string(nil), list...)
		}
		out[k] = val
	}
	return out
}

// Text returns the value's text form, the representation filters and
// conditions compare against.
func (v Values) Text(name string) string {
	return textOf(v[name])
}

// Decimal returns a numeric value, false when empty or not numeric.
func (v Values) Decimal(name string) (decimal.Decimal, bool) {
	switch x := v[name].(type) {
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	}
	return decimal.Zero, false
}

func textOf(val any) string {
	switch x := val.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case []string:
		return strings.Join(x, ", ")
	case time.Time:
		return x.Format(DateLayout)
	default:
		return fmt.Sprint(x)
	}
}

// isEmpty reports whether a normalised value counts as "not filled in".
func isEmpty(val any) bool {
	switch x := val.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	}
	return false
}

var dateLayouts = []string{DateLayout, time.RFC3339, "02/01/2006", "2006/01/02"}

// Normalize converts a raw form or JSON value into the field's canonical
// type. Empty input normalises to nil.
func Normalize(f FieldSpec, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch {
	case f.IsBool():
		return normalizeBool(f, raw)
	case f.IsList():
		return normalizeList(f, raw)
	case f.Kind == KindNumber:
		return normalizeNumber(f, raw)
	case f.Kind == KindDate:
		return normalizeDate(f, raw)
	default:
		s, err := scalarText(raw)
		if err != nil {
			return nil, ValidationError{Field: f.Name, Message: "must be a text value"}
		}
		if s == "" {
			return nil, nil
		}
		return s, nil
	}
}

func scalarText(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	case decimal.Decimal:
		return x.String(), nil
	}
	return "", fmt.Errorf("unsupported value type %T", raw)
}

func normalizeBool(f FieldSpec, raw any) (any, error) {
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	s, err := scalarText(raw)
	if err != nil {
		return nil, ValidationError{Field: f.Name, Message: "invalid boolean"}
	}
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "true", "t", "yes", "y", "1", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off":
		return false, nil
	}
	return nil, ValidationError{Field: f.Name, Value: s, Message: "invalid boolean"}
}

func normalizeNumber(f FieldSpec, raw any) (any, error) {
	switch x := raw.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	}
	s, err := scalarText(raw)
	if err != nil {
		return nil, ValidationError{Field: f.Name, Message: "invalid number"}
	}
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, ValidationError{Field: f.Name, Value: s, Message: "invalid number"}
	}
	return d, nil
}

func normalizeDate(f FieldSpec, raw any) (any, error) {
	if t, ok := raw.(time.Time); ok {
		return t.Format(DateLayout), nil
	}
	s, err := scalarText(raw)
	if err != nil {
		return nil, ValidationError{Field: f.Name, Message: "invalid date"}
	}
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return nil, ValidationError{Field: f.Name, Value: s, Message: "invalid date, use YYYY-MM-DD"}
}

func normalizeList(f FieldSpec, raw any) (any, error) {
	var items []string
	switch x := raw.(type) {
	case []string:
		items = x
	case []any:
		for _, item := range x {
			s, err := scalarText(item)
			if err != nil {
				return nil, ValidationError{Field: f.Name, Message: "list entries must be text"}
			}
			items = append(items, s)
		}
	default:
		s, err := scalarText(raw)
		if err != nil {
			return nil, ValidationError{Field: f.Name, Message: "must be a list of values"}
		}
		items = []string{s}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if f.Kind == KindFile {
			item = baseName(item)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// baseName reduces a client-side file path to its filename.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// toSnakeCase converts camelCase field names to snake_case column names.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
