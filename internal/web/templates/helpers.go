// Package templates renders the HTML fragments swapped in by HTMX clients:
// the live create/edit form and error alerts.
package templates

import (
	"slices"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// FormAction is the endpoint a form fragment posts its changes to.
func FormAction(entity string) string {
	return "/api/entities/" + entity + "/form"
}

// RecordsAction is the collection endpoint a create sheet saves to.
func RecordsAction(entity string) string {
	return "/api/entities/" + entity + "/records"
}

// RecordAction is the endpoint an edit sheet saves to.
func RecordAction(entity, id string) string {
	return RecordsAction(entity) + "/" + id
}

// readOnly reports whether f is shown but not editable in this sheet.
// Disabled inputs are not posted, so read-only values never come back.
func readOnly(view core.FormView, f core.FieldSpec) bool {
	return f.Disabled || slices.Contains(view.Derived, f.Name) ||
		(f.LockOnCreate && view.Mode == core.ModeCreate)
}

// hasFileField reports whether the form needs a multipart encoding.
func hasFileField(view core.FormView) bool {
	return slices.ContainsFunc(view.Fields, func(f core.FieldSpec) bool {
		return f.Kind == core.KindFile && !readOnly(view, f)
	})
}

func valueText(f core.FieldSpec, val any) string {
	return core.Values{f.Name: val}.Text(f.Name)
}

func inputID(f core.FieldSpec) string {
	return "f-" + f.Name
}

func isTrue(val any) bool {
	b, _ := val.(bool)
	return b
}

// chosen lists the selected options of a multiselect value.
func chosen(val any) []string {
	switch x := val.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func inputType(k core.FieldKind) string {
	switch k {
	case core.KindEmail:
		return "email"
	case core.KindNumber:
		return "number"
	case core.KindDate:
		return "date"
	}
	return "text"
}
