package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWithoutFiltersIsBaseline(t *testing.T) {
	got, err := Apply(Baseline(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, Baseline(), got)
}

func TestApplyYear(t *testing.T) {
	got, err := Apply(Baseline(), Filters{Year: "2024"})
	require.NoError(t, err)

	assert.Equal(t, int64(9995), got.Appointments)
	assert.Equal(t, int64(8536), got.TotalCompleted)
	assert.Equal(t, int64(58), got.TotalVendors, "vendor total is not scaled")
	assert.True(t, got.PreviousRevenue.Equal(decimal.RequireFromString("501641.73")))
}

func TestApplyRoundsHalfUpAfterEachStep(t *testing.T) {
	// 9995 * 0.3 = 2998.5 rounds to 2999.
	got, err := Apply(Baseline(), Filters{Year: "2024", Client: "Tata Steel"})
	require.NoError(t, err)
	assert.Equal(t, int64(2999), got.Appointments)

	// 1009 * 0.5 = 504.5 rounds to 505.
	got, err = Apply(Baseline(), Filters{Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(505), got.ChargedCancellations)
	assert.Equal(t, int64(730), got.TotalCancelled)
}

func TestApplyContractTypes(t *testing.T) {
	tests := []struct {
		contract string
		want     int64
	}{
		{"fixed", 4000},
		{"hourly", 3000},
		{"retainer", 2000},
		{"milestone", 1000},
		{"Fixed", 4000},
		{"barter", 10000},
	}
	for _, tt := range tests {
		t.Run(tt.contract, func(t *testing.T) {
			got, err := Apply(Baseline(), Filters{ContractType: tt.contract})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Appointments)
		})
	}
}

func TestApplyAllFilters(t *testing.T) {
	got, err := Apply(Baseline(), Filters{Year: "2025", Client: "x", ContractType: "fixed", Date: "2025-01-01"})
	require.NoError(t, err)

	// 10000 -> 10000 -> 3000 -> 1200 -> 600
	assert.Equal(t, int64(600), got.Appointments)
	// 662243 -> 662243 -> 198673 -> 79469 -> 39735 (39734.5 rounds up)
	assert.True(t, got.Revenue.Equal(decimal.NewFromInt(39735)), got.Revenue.String())
}

func TestApplyRejectsBadYear(t *testing.T) {
	_, err := Apply(Baseline(), Filters{Year: "last year"})
	assert.Error(t, err)
}
