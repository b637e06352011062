package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

func mustGet(t *testing.T, key string) *core.EntityDefinition {
	t.Helper()
	def, ok := core.Get(key)
	require.True(t, ok, "entity %s not registered", key)
	return def
}

func TestAllEntitiesRegistered(t *testing.T) {
	for _, key := range []string{"customers", "users", "products", "materials", "companies", "material_stock"} {
		mustGet(t, key)
	}
}

func TestSeedRowsAreValid(t *testing.T) {
	for _, def := range core.All() {
		require.NotEmpty(t, def.Seed, def.Info.Key)
		for i, raw := range def.Seed {
			values, err := def.Prepare(raw)
			require.NoError(t, err, "%s seed %d", def.Info.Key, i)
			assert.Empty(t, core.ValidateValues(def, values), "%s seed %d", def.Info.Key, i)
		}
	}
}

func openMaterialSheet(t *testing.T) *core.FormSheet {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	sheet := core.NewFormSheet(mustGet(t, "materials"), clock)
	require.NoError(t, sheet.OpenCreate())
	return sheet
}

func TestMaterialWeight(t *testing.T) {
	sheet := openMaterialSheet(t)
	for field, v := range map[string]string{"length": "1000", "width": "1000", "thickness": "10", "quantityNos": "5"} {
		_, err := sheet.Set(field, v)
		require.NoError(t, err)
	}

	kg, ok := sheet.View().Values.Decimal("quantityKg")
	require.True(t, ok)
	assert.Equal(t, "400.00", kg.StringFixed(2))
}

func TestMaterialWeight_TruncatesPieceCount(t *testing.T) {
	got, ok := MaterialWeight(core.Values{
		"length":      decimal.NewFromInt(1000),
		"width":       decimal.NewFromInt(1000),
		"thickness":   decimal.NewFromInt(10),
		"quantityNos": decimal.RequireFromString("5.9"),
	})
	require.True(t, ok)
	assert.Equal(t, "400", got.(decimal.Decimal).String())
}

func TestCuttingCost(t *testing.T) {
	sheet := openMaterialSheet(t)
	for field, v := range map[string]string{"cuttingLength": "10", "thickness": "5", "cuttingRate": "2"} {
		_, err := sheet.Set(field, v)
		require.NoError(t, err)
	}

	cost, ok := sheet.View().Values.Decimal("totalCost")
	require.True(t, ok)
	assert.Equal(t, "100.00", cost.StringFixed(2))
}

func TestMaterialDerivationsClearOnMissingInput(t *testing.T) {
	sheet := openMaterialSheet(t)
	for field, v := range map[string]string{"cuttingLength": "10", "thickness": "5", "cuttingRate": "2"} {
		_, err := sheet.Set(field, v)
		require.NoError(t, err)
	}

	recomputed, err := sheet.Set("thickness", "")
	require.NoError(t, err)
	assert.Contains(t, recomputed, "totalCost")
	_, ok := sheet.View().Values["totalCost"]
	assert.False(t, ok)
}

func TestMaterialStamps(t *testing.T) {
	sheet := openMaterialSheet(t)
	view := sheet.View()
	assert.Equal(t, "2024-03-05", view.Values["date"])
	assert.Equal(t, "14:30", view.Values["time"])

	_, err := sheet.Set("date", "2024-01-01")
	require.Error(t, err, "date is locked while creating")
}

func TestScrapQtyShownOnlyWhenScrapTaken(t *testing.T) {
	sheet := openMaterialSheet(t)

	visible := func() []string {
		var names []string
		for _, f := range sheet.Visible() {
			names = append(names, f.Name)
		}
		return names
	}

	assert.NotContains(t, visible(), "scrapQty")

	_, err := sheet.Set("scrapTaken", "true")
	require.NoError(t, err)
	assert.Contains(t, visible(), "scrapQty")

	_, err = sheet.Set("scrapTaken", false)
	require.NoError(t, err)
	assert.NotContains(t, visible(), "scrapQty")
}

func TestMaterialReference(t *testing.T) {
	def := mustGet(t, "materials")
	assert.Equal(t, "MAT-2024001", def.Reference(1))
	assert.Equal(t, core.SortDesc, def.Info.DefaultSort.Order)
}

func TestRoleNameLookup(t *testing.T) {
	tests := []struct {
		roleID string
		want   any
		ok     bool
	}{
		{"1", "Admin", true},
		{"2", "Manager", true},
		{"3", "User", true},
		{"9", UnknownRole, true},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := roleName(core.Values{"roleId": tt.roleID})
		assert.Equal(t, tt.ok, ok, tt.roleID)
		assert.Equal(t, tt.want, got, tt.roleID)
	}
}

func TestCustomerMobileMinLength(t *testing.T) {
	def := mustGet(t, "customers")
	values, err := def.Prepare(map[string]any{"name": "Asha Rao", "mobile": "98765"})
	require.NoError(t, err)

	errs := core.ValidateValues(def, values)
	require.Len(t, errs, 1)
	assert.Equal(t, "mobile", errs[0].Field)
}
