package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func zero() *decimal.Decimal {
	d := decimal.Zero
	return &d
}

func product(in Values) (any, bool) {
	out := decimal.NewFromInt(1)
	for _, name := range []string{"length", "width"} {
		d, ok := in.Decimal(name)
		if !ok {
			return nil, false
		}
		out = out.Mul(d)
	}
	return out.Round(2), true
}

func cost(in Values) (any, bool) {
	area, ok := in.Decimal("area")
	if !ok {
		return nil, false
	}
	rate, ok := in.Decimal("rate")
	if !ok {
		return nil, false
	}
	return area.Mul(rate).Round(2), true
}

// plateDefinition is a small entity exercising stamps, locks, a two-step
// derivation chain and conditional visibility.
func plateDefinition() EntityDefinition {
	return EntityDefinition{
		Info: EntityInfo{Key: "plates", Label: "Plate", TitleField: "name", RefPrefix: "PL", RefBase: 100},
		Fields: []FieldSpec{
			{Name: "date", Kind: KindDate, Stamp: StampToday, LockOnCreate: true},
			{Name: "name", Kind: KindText, Rules: Rules{Required: true}},
			{Name: "email", Kind: KindEmail},
			{Name: "length", Kind: KindNumber, Rules: Rules{Min: zero()}},
			{Name: "width", Kind: KindNumber},
			{Name: "area", Kind: KindNumber, Disabled: true, Scale: 2},
			{Name: "rate", Kind: KindNumber},
			{Name: "cost", Kind: KindNumber, Disabled: true, Scale: 2},
			{Name: "scrapTaken", Kind: KindDropdown, Boolean: true, Default: false},
			{Name: "scrapQty", Kind: KindNumber, Rules: Rules{Required: true}, ShowWhen: &Condition{Field: "scrapTaken", Equals: []string{"true"}}},
			{Name: "time", Kind: KindText, Stamp: StampNow, StampOnEdit: true, Disabled: true},
		},
		Columns: []ColumnSpec{
			{Key: "ref", Label: "Ref", Field: ColumnReference, Sortable: true},
			{Field: "name", Filterable: true, Sortable: true},
			{Field: "scrapTaken", Filterable: true, Filter: FilterDropdown},
			{Field: "cost", Sortable: true},
		},
		Derivations: []Derivation{
			{Target: "area", Inputs: []string{"length", "width"}, Compute: product},
			{Target: "cost", Inputs: []string{"area", "rate"}, Compute: cost},
		},
	}
}

func compiledPlate(t *testing.T) *EntityDefinition {
	t.Helper()
	def := plateDefinition()
	if err := def.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return &def
}
