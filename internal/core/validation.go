package core

// validation.go checks form values against their field specs before any
// submit handler runs.
//
// Only visible fields are validated: a field whose ShowWhen condition does
// not hold is skipped, as are disabled and derived fields, which the user
// cannot edit. Every failure is collected so the form can show all inline
// errors at once.

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every field error of one form.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields maps each failing field to its first message.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, ve := range e {
		if _, seen := out[ve.Field]; !seen {
			out[ve.Field] = ve.Message
		}
	}
	return out
}

// ValidateValues validates the visible, user-editable fields of def.
// Returns nil when the values are valid.
func ValidateValues(def *EntityDefinition, values Values) ValidationErrors {
	var errs ValidationErrors

	for _, f := range def.Fields {
		if f.Disabled || def.IsDerived(f.Name) {
			continue
		}
		if f.ShowWhen != nil && !f.ShowWhen.Holds(values) {
			continue
		}
		errs = append(errs, ValidateField(f, values[f.Name])...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateField checks a single normalised value against its spec.
func ValidateField(f FieldSpec, val any) []ValidationError {
	if isEmpty(val) {
		if f.Rules.Required {
			return []ValidationError{{Field: f.Name, Message: "required field"}}
		}
		return nil
	}

	fail := func(format string, args ...any) []ValidationError {
		return []ValidationError{{Field: f.Name, Value: textOf(val), Message: fmt.Sprintf(format, args...)}}
	}

	switch {
	case f.IsBool():
		if _, ok := val.(bool); !ok {
			return fail("invalid boolean")
		}

	case f.Kind == KindNumber:
		d, ok := val.(decimal.Decimal)
		if !ok {
			return fail("invalid number")
		}
		if f.Rules.Min != nil && d.LessThan(*f.Rules.Min) {
			return fail("must be at least %s", f.Rules.Min.String())
		}
		if f.Rules.Max != nil && d.GreaterThan(*f.Rules.Max) {
			return fail("must be at most %s", f.Rules.Max.String())
		}

	case f.Kind == KindFile:
		names, _ := val.([]string)
		if !f.Multiple && len(names) > 1 {
			return fail("accepts a single file")
		}
		for _, name := range names {
			if !acceptsFile(f.Accept, name) {
				return fail("file type not accepted: %s", name)
			}
		}

	case f.Kind == KindMultiSelect:
		items, _ := val.([]string)
		for _, item := range items {
			if len(f.Options) > 0 && !f.HasOption(item) {
				return fail("invalid option %q", item)
			}
		}

	default:
		s, ok := val.(string)
		if !ok {
			return fail("must be a text value")
		}
		if f.Kind.HasOptions() && len(f.Options) > 0 && !f.HasOption(s) {
			return fail("invalid option %q", s)
		}
		if f.Rules.MinLength > 0 && utf8.RuneCountInString(s) < f.Rules.MinLength {
			return fail("must be at least %d characters", f.Rules.MinLength)
		}
		if msg := checkFormat(f, s); msg != "" {
			return fail("%s", msg)
		}
	}

	return nil
}

// checkFormat runs the field's validator tag; email fields always carry one.
func checkFormat(f FieldSpec, s string) string {
	tag := f.Rules.Format
	if tag == "" && f.Kind == KindEmail {
		tag = "email"
	}
	if tag == "" {
		return ""
	}
	if err := validate.Var(s, tag); err != nil {
		switch tag {
		case "email":
			return "must be a valid email address"
		case "url", "http_url":
			return "must be a valid URL"
		case "numeric", "number":
			return "invalid number"
		default:
			return fmt.Sprintf("does not match format %q", tag)
		}
	}
	return ""
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true, ".heic": true,
}

// acceptsFile mirrors the HTML accept attribute: ".pdf,.doc,image/*".
func acceptsFile(accept, name string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	for _, pattern := range strings.Split(accept, ",") {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
		case pattern == "image/*":
			if imageExtensions[ext] {
				return true
			}
		case strings.HasPrefix(pattern, "."):
			if ext == pattern {
				return true
			}
		}
	}
	return false
}
