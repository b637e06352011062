package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// EntityInfo contains display and storage information about an entity.
type EntityInfo struct {
	Key        string `json:"key"`
	Group      string `json:"group"`
	Label      string `json:"label"`
	Table      string `json:"-"`
	TitleField string `json:"titleField"`

	// References render as RefPrefix-{RefBase+serial}, e.g. MAT-2024001.
	RefPrefix string `json:"refPrefix,omitempty"`
	RefBase   int64  `json:"-"`

	DefaultSort SortSpec `json:"defaultSort"`
}

// EntityDefinition is everything the generic machinery needs for one entity.
type EntityDefinition struct {
	Info        EntityInfo
	Fields      []FieldSpec
	Columns     []ColumnSpec
	Derivations []Derivation
	Seed        []Values // static rows for the memory store and the seed command

	graph    *DerivationGraph
	fieldIdx map[string]int
}

// Compile validates the declarations and builds the derivation graph.
// Register calls it; tests may call it directly.
func (d *EntityDefinition) Compile() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if d.Info.Key == "" {
		fail("entity key is required")
	}
	if d.Info.Table == "" {
		d.Info.Table = d.Info.Key
	}

	d.fieldIdx = make(map[string]int, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Name == "" {
			fail("field %d has no name", i)
			continue
		}
		if _, dup := d.fieldIdx[f.Name]; dup {
			fail("duplicate field %q", f.Name)
		}
		d.fieldIdx[f.Name] = i

		if !f.Kind.Valid() {
			fail("field %q has unknown kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindDropdown && f.Boolean && len(f.Options) == 0 {
			f.Options = []Option{{Label: "True", Value: "true"}, {Label: "False", Value: "false"}}
		}
		if f.Kind.HasOptions() && len(f.Options) == 0 {
			fail("field %q needs options", f.Name)
		}
		if f.Label == "" {
			f.Label = f.Name
		}
	}

	for _, f := range d.Fields {
		if f.ShowWhen == nil {
			continue
		}
		if f.ShowWhen.Field == f.Name {
			fail("field %q depends on itself", f.Name)
		} else if _, ok := d.fieldIdx[f.ShowWhen.Field]; !ok {
			fail("field %q depends on unknown field %q", f.Name, f.ShowWhen.Field)
		}
	}

	keys := make(map[string]bool, len(d.Columns))
	for i := range d.Columns {
		c := &d.Columns[i]
		field, known := d.Field(c.Field)
		if !known && !isSystemColumn(c.Field) {
			fail("column %q references unknown field %q", c.ColumnKey(), c.Field)
			continue
		}
		key := c.ColumnKey()
		if keys[key] {
			fail("duplicate column %q", key)
		}
		keys[key] = true

		if c.Field == ColumnReference && c.Filterable {
			fail("column %q cannot be filtered", key)
		}
		if c.FilterInput() == FilterDropdown && len(c.Options) == 0 {
			if known && len(field.Options) > 0 {
				c.Options = field.Options
			} else {
				fail("dropdown filter on column %q needs options", key)
			}
		}
	}

	if d.Info.DefaultSort.Column == "" {
		d.Info.DefaultSort = SortSpec{Column: ColumnSerial, Order: SortAsc}
	}
	if d.Info.DefaultSort.Order == "" {
		d.Info.DefaultSort.Order = SortAsc
	}
	if _, ok := d.fieldIdx[d.Info.DefaultSort.Column]; !ok && !isSystemColumn(d.Info.DefaultSort.Column) {
		fail("default sort on unknown field %q", d.Info.DefaultSort.Column)
	}
	if d.Info.TitleField != "" {
		if _, ok := d.fieldIdx[d.Info.TitleField]; !ok {
			fail("title field %q is not a field", d.Info.TitleField)
		}
	}

	graph, err := NewDerivationGraph(d.Fields, d.Derivations)
	if err != nil {
		errs = append(errs, err)
	}
	d.graph = graph

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("entity %s: %w", d.Info.Key, err)
	}
	return nil
}

// Prepare normalises raw values against the field specs and computes the
// derived fields. Unknown fields are rejected.
func (d *EntityDefinition) Prepare(raw map[string]any) (Values, error) {
	values := make(Values, len(raw))
	var errs ValidationErrors
	for name, v := range raw {
		f, ok := d.Field(name)
		if !ok {
			errs = append(errs, ValidationError{Field: name, Message: "unknown field"})
			continue
		}
		nv, err := Normalize(f, v)
		if err != nil {
			var ve ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, ve)
				continue
			}
			return nil, err
		}
		if nv != nil {
			values[name] = nv
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return nil, errs
	}
	d.Derive(values)
	return values, nil
}

// Field returns the spec of a named field.
func (d *EntityDefinition) Field(name string) (FieldSpec, bool) {
	i, ok := d.fieldIdx[name]
	if !ok {
		return FieldSpec{}, false
	}
	return d.Fields[i], true
}

// Column returns the column declared under key.
func (d *EntityDefinition) Column(key string) (ColumnSpec, bool) {
	for _, c := range d.Columns {
		if c.ColumnKey() == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// IsDerived reports whether a field is written by a derivation.
func (d *EntityDefinition) IsDerived(name string) bool {
	return d.graph.IsTarget(name)
}

// Derive recomputes derived fields; see DerivationGraph.Apply.
func (d *EntityDefinition) Derive(values Values, changed ...string) []string {
	return d.graph.Apply(values, changed...)
}

// Visible returns the fields whose ShowWhen holds for values, in order.
func (d *EntityDefinition) Visible(values Values) []FieldSpec {
	out := make([]FieldSpec, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.ShowWhen == nil || f.ShowWhen.Holds(values) {
			out = append(out, f)
		}
	}
	return out
}

// Reference returns the display reference for a serial, "" when the entity
// has no prefix.
func (d *EntityDefinition) Reference(serial int64) string {
	if d.Info.RefPrefix == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", d.Info.RefPrefix, d.Info.RefBase+serial)
}

// Present renders a record for the given columns. The id is always included.
func (d *EntityDefinition) Present(rec Record, columns []ColumnSpec) Row {
	row := Row{ColumnID: rec.ID}
	for _, c := range columns {
		row[c.ColumnKey()] = d.display(rec, c.Field)
	}
	return row
}

func (d *EntityDefinition) display(rec Record, field string) any {
	switch field {
	case ColumnReference:
		return d.Reference(rec.Serial)
	case ColumnID, ColumnSerial, ColumnCreatedAt, ColumnUpdatedAt:
		return rec.Value(field)
	}

	val := rec.Values[field]
	if dec, ok := val.(decimal.Decimal); ok {
		if f, ok := d.Field(field); ok && f.Scale > 0 {
			return dec.StringFixed(f.Scale)
		}
		return dec.String()
	}
	return val
}

// Describe names a record for confirmation prompts.
func (d *EntityDefinition) Describe(rec Record) string {
	title := ""
	if d.Info.TitleField != "" {
		title = rec.Values.Text(d.Info.TitleField)
	}
	ref := d.Reference(rec.Serial)
	switch {
	case title != "" && ref != "":
		return fmt.Sprintf("%s %s (%s)", d.Info.Label, title, ref)
	case title != "":
		return fmt.Sprintf("%s %s", d.Info.Label, title)
	case ref != "":
		return fmt.Sprintf("%s %s", d.Info.Label, ref)
	}
	return fmt.Sprintf("%s %s", d.Info.Label, rec.ID)
}

// Registry holds compiled entity definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*EntityDefinition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EntityDefinition)}
}

// Register compiles def and adds it.
func (r *Registry) Register(def EntityDefinition) error {
	if err := def.Compile(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Info.Key]; exists {
		return fmt.Errorf("entity already registered: %s", def.Info.Key)
	}
	r.defs[def.Info.Key] = &def
	return nil
}

// Get returns an entity definition by key.
// Returns false if not found.
func (r *Registry) Get(key string) (*EntityDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[key]
	return def, ok
}

// All returns all registered definitions.
// Sorted by group then by key for consistent ordering.
func (r *Registry) All() []*EntityDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*EntityDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// ByGroup returns the definitions of one group, sorted by key.
func (r *Registry) ByGroup(group string) []*EntityDefinition {
	var result []*EntityDefinition
	for _, def := range r.All() {
		if strings.EqualFold(def.Info.Group, group) {
			result = append(result, def)
		}
	}
	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range r.defs {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

var defaultRegistry = NewRegistry()

// Default returns the registry entities add themselves to at init.
func Default() *Registry { return defaultRegistry }

// Register adds an entity definition to the default registry.
// Panics if the definition is invalid or the key is already registered.
func Register(def EntityDefinition) {
	if err := defaultRegistry.Register(def); err != nil {
		panic(err)
	}
}

// Get returns an entity definition from the default registry.
func Get(key string) (*EntityDefinition, bool) {
	return defaultRegistry.Get(key)
}

// All returns the default registry's definitions.
func All() []*EntityDefinition {
	return defaultRegistry.All()
}
