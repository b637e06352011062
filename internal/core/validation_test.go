package core

import (
	"strings"
	"testing"
)

func TestValidateField(t *testing.T) {
	floor := dec("0")
	ceiling := dec("100")

	tests := []struct {
		name    string
		field   FieldSpec
		value   any
		wantMsg string // empty means valid
	}{
		{name: "required empty", field: FieldSpec{Name: "name", Kind: KindText, Rules: Rules{Required: true}}, value: nil, wantMsg: "required field"},
		{name: "required empty list", field: FieldSpec{Name: "photo", Kind: KindFile, Rules: Rules{Required: true}}, value: []string{}, wantMsg: "required field"},
		{name: "optional empty", field: FieldSpec{Name: "email", Kind: KindEmail}, value: nil},
		{name: "min length", field: FieldSpec{Name: "mobile", Kind: KindText, Rules: Rules{MinLength: 10}}, value: "12345", wantMsg: "at least 10 characters"},
		{name: "min length ok", field: FieldSpec{Name: "mobile", Kind: KindText, Rules: Rules{MinLength: 10}}, value: "9876543210"},
		{name: "email", field: FieldSpec{Name: "email", Kind: KindEmail}, value: "john@", wantMsg: "valid email"},
		{name: "email ok", field: FieldSpec{Name: "email", Kind: KindEmail}, value: "john.smith@example.com"},
		{name: "url", field: FieldSpec{Name: "website", Kind: KindText, Rules: Rules{Format: "url"}}, value: "not a url", wantMsg: "valid URL"},
		{name: "url ok", field: FieldSpec{Name: "website", Kind: KindText, Rules: Rules{Format: "url"}}, value: "https://example.com"},
		{name: "below min", field: FieldSpec{Name: "cost", Kind: KindNumber, Rules: Rules{Min: &floor}}, value: dec("-0.01"), wantMsg: "at least 0"},
		{name: "above max", field: FieldSpec{Name: "pct", Kind: KindNumber, Rules: Rules{Max: &ceiling}}, value: dec("101"), wantMsg: "at most 100"},
		{name: "number ok", field: FieldSpec{Name: "cost", Kind: KindNumber, Rules: Rules{Min: &floor}}, value: dec("0")},
		{name: "select option", field: FieldSpec{Name: "roleId", Kind: KindSelect, Options: []Option{{Label: "Admin", Value: "1"}}}, value: "9", wantMsg: "invalid option"},
		{name: "select ok", field: FieldSpec{Name: "roleId", Kind: KindSelect, Options: []Option{{Label: "Admin", Value: "1"}}}, value: "1"},
		{name: "file type", field: FieldSpec{Name: "file", Kind: KindFile, Accept: ".pdf,.xls"}, value: []string{"drawing.dwg"}, wantMsg: "not accepted"},
		{name: "image wildcard", field: FieldSpec{Name: "photo", Kind: KindFile, Accept: "image/*"}, value: []string{"front.JPG"}},
		{name: "single file", field: FieldSpec{Name: "photo", Kind: KindFile}, value: []string{"a.png", "b.png"}, wantMsg: "single file"},
		{name: "multiple files", field: FieldSpec{Name: "photos", Kind: KindFile, Multiple: true}, value: []string{"a.png", "b.png"}},
		{name: "boolean type", field: FieldSpec{Name: "isActive", Kind: KindCheckbox}, value: "yes", wantMsg: "invalid boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateField(tt.field, tt.value)
			if tt.wantMsg == "" {
				if len(errs) != 0 {
					t.Errorf("want valid, got %v", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("want one error, got %v", errs)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", errs[0].Message, tt.wantMsg)
			}
			if errs[0].Field != tt.field.Name {
				t.Errorf("field = %q, want %q", errs[0].Field, tt.field.Name)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		field FieldSpec
		raw   any
		want  string // text form; "<nil>" for nil
	}{
		{name: "trim text", field: FieldSpec{Kind: KindText}, raw: "  plate ", want: "plate"},
		{name: "blank text is nil", field: FieldSpec{Kind: KindText}, raw: "   ", want: "<nil>"},
		{name: "number with separators", field: FieldSpec{Kind: KindNumber}, raw: "1,250.5", want: "1250.5"},
		{name: "float number", field: FieldSpec{Kind: KindNumber}, raw: 12.25, want: "12.25"},
		{name: "yes is true", field: FieldSpec{Kind: KindCheckbox}, raw: "Yes", want: "true"},
		{name: "boolean dropdown", field: FieldSpec{Kind: KindDropdown, Boolean: true}, raw: "false", want: "false"},
		{name: "iso date", field: FieldSpec{Kind: KindDate}, raw: "2024-03-05", want: "2024-03-05"},
		{name: "day first date", field: FieldSpec{Kind: KindDate}, raw: "05/03/2024", want: "2024-03-05"},
		{name: "file path reduced", field: FieldSpec{Kind: KindFile}, raw: `C:\fakepath\invoice.pdf`, want: "invoice.pdf"},
		{name: "multiselect list", field: FieldSpec{Kind: KindMultiSelect}, raw: []any{"a", " b "}, want: "a, b"},
		{name: "multiselect empty marker clears", field: FieldSpec{Kind: KindMultiSelect}, raw: "", want: "<nil>"},
		{name: "multiselect marker with picks", field: FieldSpec{Kind: KindMultiSelect}, raw: []string{"", "laser"}, want: "laser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.field, tt.raw)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			text := textOf(got)
			if got == nil {
				text = "<nil>"
			}
			if text != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.raw, text, tt.want)
			}
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		field FieldSpec
		raw   any
	}{
		{name: "number", field: FieldSpec{Name: "cost", Kind: KindNumber}, raw: "twelve"},
		{name: "boolean", field: FieldSpec{Name: "isActive", Kind: KindCheckbox}, raw: "maybe"},
		{name: "date", field: FieldSpec{Name: "date", Kind: KindDate}, raw: "March 5th"},
		{name: "object as text", field: FieldSpec{Name: "name", Kind: KindText}, raw: map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.field, tt.raw); err == nil {
				t.Error("expected error")
			}
		})
	}
}
