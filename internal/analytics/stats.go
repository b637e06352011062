// Package analytics computes the dashboard figures shown next to the
// record tables. The figures are a fixed baseline scaled by the active
// dashboard filters.
package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseYear is the year the baseline figures describe.
const BaseYear = 2025

// Stats is one set of dashboard figures.
type Stats struct {
	Appointments         int64           `json:"appointments"`
	TotalCompleted       int64           `json:"totalCompleted"`
	TotalCancelled       int64           `json:"totalCancelled"`
	ChargedCancellations int64           `json:"chargedCancellations"`
	TotalVendors         int64           `json:"totalVendors"`
	TotalClients         int64           `json:"totalClients"`
	TotalExpenditure     decimal.Decimal `json:"totalExpenditure"`
	Revenue              decimal.Decimal `json:"revenue"`
	PreviousRevenue      decimal.Decimal `json:"previousRevenue"`
	RevenueChange        string          `json:"revenueChange"`
}

// Baseline returns the unfiltered figures.
func Baseline() Stats {
	return Stats{
		Appointments:         10000,
		TotalCompleted:       8540,
		TotalCancelled:       1460,
		ChargedCancellations: 1009,
		TotalVendors:         58,
		TotalClients:         200,
		TotalExpenditure:     decimal.NewFromInt(468456),
		Revenue:              decimal.NewFromInt(662243),
		PreviousRevenue:      decimal.RequireFromString("501641.73"),
		RevenueChange:        "+2.8%",
	}
}

// Filters are the dashboard filter selections. Empty fields are not
// applied.
type Filters struct {
	Year         string `json:"selectedYear,omitempty"`
	Date         string `json:"date,omitempty"`
	Client       string `json:"client,omitempty"`
	ContractType string `json:"contractType,omitempty"`
}

// IsZero reports whether no filter is selected.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

var (
	clientShare = decimal.RequireFromString("0.3")
	dateShare   = decimal.RequireFromString("0.5")

	contractShares = map[string]decimal.Decimal{
		"fixed":     decimal.RequireFromString("0.4"),
		"hourly":    decimal.RequireFromString("0.3"),
		"retainer":  decimal.RequireFromString("0.2"),
		"milestone": decimal.RequireFromString("0.1"),
	}
)

// ContractShare returns the multiplier for a contract type. Unknown types
// leave the figures unchanged.
func ContractShare(contractType string) decimal.Decimal {
	if m, ok := contractShares[strings.ToLower(contractType)]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Apply scales base by each selected filter in turn: year, client,
// contract type, then date. Figures are rounded half up to whole numbers
// after every step. Vendor and client totals and the previous revenue are
// not scaled.
func Apply(base Stats, f Filters) (Stats, error) {
	out := base

	if y := strings.TrimSpace(f.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year <= 0 {
			return Stats{}, fmt.Errorf("invalid year %q", f.Year)
		}
		out = out.scale(decimal.NewFromInt(int64(year)).Div(decimal.NewFromInt(BaseYear)))
	}
	if strings.TrimSpace(f.Client) != "" {
		out = out.scale(clientShare)
	}
	if c := strings.TrimSpace(f.ContractType); c != "" {
		out = out.scale(ContractShare(c))
	}
	if strings.TrimSpace(f.Date) != "" {
		out = out.scale(dateShare)
	}
	return out, nil
}

func (s Stats) scale(m decimal.Decimal) Stats {
	count := func(n int64) int64 {
		return decimal.NewFromInt(n).Mul(m).Round(0).IntPart()
	}
	s.Appointments = count(s.Appointments)
	s.TotalCompleted = count(s.TotalCompleted)
	s.TotalCancelled = count(s.TotalCancelled)
	s.ChargedCancellations = count(s.ChargedCancellations)
	s.Revenue = s.Revenue.Mul(m).Round(0)
	s.TotalExpenditure = s.TotalExpenditure.Mul(m).Round(0)
	return s
}
