package entities

import (
	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/shopspring/decimal"
)

var statusOptions = []core.Option{
	{Label: "Active", Value: "true"},
	{Label: "Inactive", Value: "false"},
}

var yesNoOptions = []core.Option{
	{Label: "Yes", Value: "true"},
	{Label: "No", Value: "false"},
}

// CustomerNames lists the steel mills offered on the inward material form.
var CustomerNames = []string{
	"Tata Steel Ltd",
	"Jindal Steel & Power",
	"SAIL (Steel Authority of India)",
	"Essar Steel India",
	"Bhushan Steel Limited",
	"JSW Steel Limited",
	"Vizag Steel Plant",
	"Mukand Steel Limited",
	"Sunflag Iron & Steel",
	"Kalyani Steels Ltd",
	"Other (Enter manually)",
}

// Grades lists the material grades offered on the inward material form.
var Grades = []string{"SS", "MS", "SS304", "SS316", "MS-C45", "EN8", "EN24", "IS2062"}

func optionsOf(values []string) []core.Option {
	out := make([]core.Option, len(values))
	for i, v := range values {
		out[i] = core.Option{Label: v, Value: v}
	}
	return out
}

func atLeast(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// decimals returns the named inputs, false when any of them is empty.
func decimals(in core.Values, names ...string) ([]decimal.Decimal, bool) {
	out := make([]decimal.Decimal, len(names))
	for i, name := range names {
		d, ok := in.Decimal(name)
		if !ok {
			return nil, false
		}
		out[i] = d
	}
	return out, true
}

func textColumn(field, label string) core.ColumnSpec {
	return core.ColumnSpec{Field: field, Label: label, Filterable: true, Sortable: true, Filter: core.FilterText}
}

func dropdownColumn(field, label string, options []core.Option) core.ColumnSpec {
	return core.ColumnSpec{Field: field, Label: label, Filterable: true, Sortable: true, Filter: core.FilterDropdown, Options: options}
}
