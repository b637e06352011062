package core

// form.go implements the create/edit form sheet.
//
// State machine:
//
//	closed --OpenCreate/OpenEdit--> open --Submit--> submitting --ok--> closed
//	                                 ^                   |
//	                                 +------error--------+
//
// Validation runs before the submit func and a failure keeps the sheet open
// with per-field errors. A failed submit returns the sheet to open with the
// error kept; nothing is retried. The sheet performs no persistence itself.

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// SheetState is the lifecycle state of a FormSheet.
type SheetState string

const (
	SheetClosed     SheetState = "closed"
	SheetOpen       SheetState = "open"
	SheetSubmitting SheetState = "submitting"
)

// SheetMode distinguishes a create sheet from an edit sheet.
type SheetMode string

const (
	ModeCreate SheetMode = "create"
	ModeEdit   SheetMode = "edit"
)

// SubmitFunc receives the validated, visible values of a sheet.
type SubmitFunc func(ctx context.Context, values Values) (Record, error)

// FormView is a snapshot of a sheet for rendering.
type FormView struct {
	Entity   string            `json:"entity"`
	State    SheetState        `json:"state"`
	Mode     SheetMode         `json:"mode,omitempty"`
	RecordID string            `json:"recordId,omitempty"`
	Fields   []FieldSpec       `json:"fields"`
	Values   Values            `json:"values"`
	Derived  []string          `json:"derived,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// FormSheet holds the state of one create or edit form.
type FormSheet struct {
	def *EntityDefinition
	now func() time.Time

	mu       sync.Mutex
	state    SheetState
	mode     SheetMode
	recordID string
	values   Values
	errors   map[string]string
	lastErr  error
}

// NewFormSheet returns a closed sheet for def. now defaults to time.Now.
func NewFormSheet(def *EntityDefinition, now func() time.Time) *FormSheet {
	if now == nil {
		now = time.Now
	}
	return &FormSheet{def: def, now: now, state: SheetClosed}
}

// State returns the current state.
func (s *FormSheet) State() SheetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OpenCreate opens the sheet with declared defaults and clock stamps.
func (s *FormSheet) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SheetClosed {
		return fmt.Errorf("open create sheet while %s: %w", s.state, ErrInvalidTransition)
	}

	now := s.now()
	values := make(Values, len(s.def.Fields))
	for _, f := range s.def.Fields {
		if v := stampValue(f.Stamp, now); v != "" {
			values[f.Name] = v
			continue
		}
		if f.Default == nil {
			continue
		}
		v, err := Normalize(f, f.Default)
		if err != nil {
			return fmt.Errorf("default for %s: %w", f.Name, err)
		}
		if v != nil {
			values[f.Name] = v
		}
	}
	s.def.Derive(values)

	s.reset(SheetOpen, ModeCreate, "", values)
	return nil
}

// OpenEdit opens the sheet prefilled from rec. Fields flagged StampOnEdit
// are re-stamped from the clock.
func (s *FormSheet) OpenEdit(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SheetClosed {
		return fmt.Errorf("open edit sheet while %s: %w", s.state, ErrInvalidTransition)
	}

	values := rec.Values.Clone()
	now := s.now()
	for _, f := range s.def.Fields {
		if f.StampOnEdit {
			if v := stampValue(f.Stamp, now); v != "" {
				values[f.Name] = v
			}
		}
	}
	s.def.Derive(values)

	s.reset(SheetOpen, ModeEdit, rec.ID, values)
	return nil
}

func stampValue(stamp Stamp, now time.Time) string {
	switch stamp {
	case StampToday:
		return now.Format(DateLayout)
	case StampNow:
		return now.Format(TimeLayout)
	}
	return ""
}

func (s *FormSheet) reset(state SheetState, mode SheetMode, id string, values Values) {
	s.state = state
	s.mode = mode
	s.recordID = id
	s.values = values
	s.errors = make(map[string]string)
	s.lastErr = nil
}

// Set changes one field and recomputes the fields derived from it.
// Returns the derived fields that were recomputed.
func (s *FormSheet) Set(field string, raw any) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SheetOpen {
		return nil, fmt.Errorf("set %s while %s: %w", field, s.state, ErrInvalidTransition)
	}
	return s.set(field, raw)
}

func (s *FormSheet) set(field string, raw any) ([]string, error) {
	f, ok := s.def.Field(field)
	if !ok {
		return nil, ValidationError{Field: field, Message: "unknown field"}
	}
	if !s.editable(f) {
		return nil, ValidationError{Field: field, Message: "field is read-only"}
	}

	v, err := Normalize(f, raw)
	if err != nil {
		s.errors[field] = messageOf(err)
		return nil, err
	}
	if v == nil {
		delete(s.values, field)
	} else {
		s.values[field] = v
	}
	delete(s.errors, field)

	return s.def.Derive(s.values, field), nil
}

func (s *FormSheet) editable(f FieldSpec) bool {
	if f.Disabled || s.def.IsDerived(f.Name) {
		return false
	}
	return !(f.LockOnCreate && s.mode == ModeCreate)
}

// SetAll applies several changes at once. Keys not present keep their
// current values. Read-only fields are ignored so a client may send a whole
// record back; unknown fields are rejected.
func (s *FormSheet) SetAll(raw map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SheetOpen {
		return fmt.Errorf("update sheet while %s: %w", s.state, ErrInvalidTransition)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs ValidationErrors
	for _, name := range names {
		f, ok := s.def.Field(name)
		if ok && !s.editable(f) {
			continue
		}
		if _, err := s.set(name, raw[name]); err != nil {
			if ve, ok := err.(ValidationError); ok {
				errs = append(errs, ve)
				continue
			}
			return err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Visible returns the fields currently shown.
func (s *FormSheet) Visible() []FieldSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.Visible(s.values)
}

// View returns a snapshot for rendering.
func (s *FormSheet) View() FormView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := FormView{
		Entity:   s.def.Info.Key,
		State:    s.state,
		Mode:     s.mode,
		RecordID: s.recordID,
		Fields:   s.def.Visible(s.values),
		Values:   s.values.Clone(),
		Errors:   make(map[string]string, len(s.errors)),
	}
	for _, f := range s.def.Fields {
		if s.def.IsDerived(f.Name) {
			view.Derived = append(view.Derived, f.Name)
		}
	}
	for k, v := range s.errors {
		view.Errors[k] = v
	}
	if s.lastErr != nil {
		view.Error = s.lastErr.Error()
	}
	return view
}

// Check validates the current values and records the inline errors.
func (s *FormSheet) Check() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check()
}

func (s *FormSheet) check() ValidationErrors {
	errs := ValidateValues(s.def, s.values)
	s.errors = errs.Fields()
	return errs
}

// Submit validates and hands the visible values to fn. Hidden fields are
// not part of the payload. On success the sheet closes.
func (s *FormSheet) Submit(ctx context.Context, fn SubmitFunc) (Record, error) {
	s.mu.Lock()
	if s.state != SheetOpen {
		state := s.state
		s.mu.Unlock()
		return Record{}, fmt.Errorf("submit while %s: %w", state, ErrInvalidTransition)
	}
	if errs := s.check(); len(errs) > 0 {
		s.mu.Unlock()
		return Record{}, errs
	}

	payload := make(Values, len(s.values))
	for _, f := range s.def.Visible(s.values) {
		if v, ok := s.values[f.Name]; ok {
			payload[f.Name] = v
		}
	}
	s.state = SheetSubmitting
	s.lastErr = nil
	s.mu.Unlock()

	rec, err := fn(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = SheetOpen
		s.lastErr = err
		return Record{}, err
	}
	s.reset(SheetClosed, "", "", nil)
	return rec, nil
}

// LastError returns the error of the last failed submit, if any.
func (s *FormSheet) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close discards the sheet. Closing a closed sheet is a no-op; a sheet
// cannot be closed while its submit is in flight.
func (s *FormSheet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SheetSubmitting:
		return fmt.Errorf("close while submitting: %w", ErrInvalidTransition)
	case SheetOpen:
		s.reset(SheetClosed, "", "", nil)
	}
	return nil
}

func messageOf(err error) string {
	if ve, ok := err.(ValidationError); ok {
		return ve.Message
	}
	return err.Error()
}
