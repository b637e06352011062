package core

import (
	"testing"
	"time"
)

func TestClampPage(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		total          int64
		wantPage       int
		wantTotalPages int
	}{
		{name: "first page", page: 1, pageSize: 10, total: 25, wantPage: 1, wantTotalPages: 3},
		{name: "last page", page: 3, pageSize: 10, total: 25, wantPage: 3, wantTotalPages: 3},
		{name: "past the end", page: 9, pageSize: 10, total: 25, wantPage: 3, wantTotalPages: 3},
		{name: "zero page", page: 0, pageSize: 10, total: 25, wantPage: 1, wantTotalPages: 3},
		{name: "negative page", page: -4, pageSize: 10, total: 25, wantPage: 1, wantTotalPages: 3},
		{name: "empty table", page: 2, pageSize: 10, total: 0, wantPage: 1, wantTotalPages: 1},
		{name: "exact fit", page: 2, pageSize: 5, total: 10, wantPage: 2, wantTotalPages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampPage(tt.page, tt.pageSize, tt.total)
			if got.Page != tt.wantPage || got.TotalPages != tt.wantTotalPages {
				t.Errorf("ClampPage(%d, %d, %d) = page %d of %d, want page %d of %d",
					tt.page, tt.pageSize, tt.total, got.Page, got.TotalPages, tt.wantPage, tt.wantTotalPages)
			}
			if got.Total != tt.total {
				t.Errorf("Total = %d, want %d", got.Total, tt.total)
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"asc":    SortAsc,
		"DESC":   SortDesc,
		" desc ": SortDesc,
		"":       SortAsc,
		"up":     SortAsc,
	}
	for in, want := range tests {
		if got := ParseSortOrder(in); got != want {
			t.Errorf("ParseSortOrder(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestColumnFilter_Matches(t *testing.T) {
	rec := Record{
		ID:     "r1",
		Serial: 12,
		Values: Values{"customer": "Jindal Steel", "paymentReceived": true, "cost": dec("1500.50")},
	}

	tests := []struct {
		name   string
		filter ColumnFilter
		want   bool
	}{
		{name: "substring any case", filter: ColumnFilter{Field: "customer", Kind: FilterText, Value: "STEEL"}, want: true},
		{name: "substring miss", filter: ColumnFilter{Field: "customer", Kind: FilterText, Value: "tata"}, want: false},
		{name: "dropdown equality", filter: ColumnFilter{Field: "paymentReceived", Kind: FilterDropdown, Value: "true"}, want: true},
		{name: "dropdown is not substring", filter: ColumnFilter{Field: "customer", Kind: FilterDropdown, Value: "Jindal"}, want: false},
		{name: "number text form", filter: ColumnFilter{Field: "cost", Kind: FilterText, Value: "1500.5"}, want: true},
		{name: "scaled number as displayed", filter: ColumnFilter{Field: "cost", Kind: FilterText, Value: "1500.50", Scale: 2}, want: true},
		{name: "scaled number exact", filter: ColumnFilter{Field: "cost", Kind: FilterDropdown, Value: "1500.50", Scale: 2}, want: true},
		{name: "unscaled misses fixed text", filter: ColumnFilter{Field: "cost", Kind: FilterText, Value: "1500.50"}, want: false},
		{name: "serial", filter: ColumnFilter{Field: ColumnSerial, Kind: FilterText, Value: "12"}, want: true},
		{name: "missing value", filter: ColumnFilter{Field: "grade", Kind: FilterText, Value: "ms"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(rec); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompareRecords(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Record{ID: "a", Serial: 2, Values: Values{"cost": dec("9"), "name": "beta"}, CreatedAt: older}
	b := Record{ID: "b", Serial: 10, Values: Values{"cost": dec("100"), "name": "Alpha"}, CreatedAt: older.Add(time.Hour)}
	empty := Record{ID: "c", Serial: 3, Values: Values{}}

	tests := []struct {
		name string
		x, y Record
		sort SortSpec
		want int
	}{
		{name: "numeric not lexical", x: a, y: b, sort: SortSpec{Column: "cost"}, want: -1},
		{name: "descending", x: a, y: b, sort: SortSpec{Column: "cost", Order: SortDesc}, want: 1},
		{name: "text ignores case", x: a, y: b, sort: SortSpec{Column: "name"}, want: 1},
		{name: "serial", x: b, y: a, sort: SortSpec{Column: ColumnSerial}, want: 1},
		{name: "created at", x: a, y: b, sort: SortSpec{Column: ColumnCreatedAt}, want: -1},
		{name: "empty first ascending", x: empty, y: a, sort: SortSpec{Column: "cost"}, want: -1},
		{name: "empty last descending", x: empty, y: a, sort: SortSpec{Column: "cost", Order: SortDesc}, want: 1},
		{name: "tie broken by id", x: b, y: a, sort: SortSpec{Column: "missing"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareRecords(tt.x, tt.y, tt.sort); sign(got) != tt.want {
				t.Errorf("CompareRecords = %d, want sign %d", got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestQueryOffset(t *testing.T) {
	if got := (Query{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Errorf("Offset = %d, want 20", got)
	}
	if got := (Query{Page: 0, PageSize: 10}).Offset(); got != 0 {
		t.Errorf("Offset for page 0 = %d, want 0", got)
	}
}
