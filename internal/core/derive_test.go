package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDerivationGraph_Rejects(t *testing.T) {
	fields := []FieldSpec{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	noop := func(Values) (any, bool) { return nil, false }

	tests := []struct {
		name        string
		derivations []Derivation
		wantCycle   bool
	}{
		{
			name:        "self reference",
			derivations: []Derivation{{Target: "a", Inputs: []string{"a"}, Compute: noop}},
			wantCycle:   true,
		},
		{
			name: "two field cycle",
			derivations: []Derivation{
				{Target: "a", Inputs: []string{"b"}, Compute: noop},
				{Target: "b", Inputs: []string{"a"}, Compute: noop},
			},
			wantCycle: true,
		},
		{
			name: "three field cycle",
			derivations: []Derivation{
				{Target: "a", Inputs: []string{"c"}, Compute: noop},
				{Target: "b", Inputs: []string{"a"}, Compute: noop},
				{Target: "c", Inputs: []string{"b"}, Compute: noop},
			},
			wantCycle: true,
		},
		{
			name:        "unknown target",
			derivations: []Derivation{{Target: "z", Inputs: []string{"a"}, Compute: noop}},
		},
		{
			name:        "unknown input",
			derivations: []Derivation{{Target: "a", Inputs: []string{"z"}, Compute: noop}},
		},
		{
			name: "target derived twice",
			derivations: []Derivation{
				{Target: "a", Inputs: []string{"b"}, Compute: noop},
				{Target: "a", Inputs: []string{"c"}, Compute: noop},
			},
		},
		{
			name:        "missing compute",
			derivations: []Derivation{{Target: "a", Inputs: []string{"b"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDerivationGraph(fields, tt.derivations)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrDerivationCycle); got != tt.wantCycle {
				t.Errorf("errors.Is(err, ErrDerivationCycle) = %v, want %v (err: %v)", got, tt.wantCycle, err)
			}
		})
	}
}

func TestDerivationGraph_ApplyRecomputesDependentsOnce(t *testing.T) {
	def := compiledPlate(t)

	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{name: "input of first step", changed: []string{"length"}, want: []string{"area", "cost"}},
		{name: "input of second step", changed: []string{"rate"}, want: []string{"cost"}},
		{name: "both steps changed", changed: []string{"rate", "width"}, want: []string{"area", "cost"}},
		{name: "unrelated field", changed: []string{"name"}, want: nil},
		{name: "everything", changed: nil, want: []string{"area", "cost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := Values{"length": dec("2"), "width": dec("3"), "rate": dec("1.5")}
			got := def.Derive(values, tt.changed...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Derive(%v) = %v, want %v", tt.changed, got, tt.want)
			}
		})
	}
}

func TestDerivationGraph_ChainValues(t *testing.T) {
	def := compiledPlate(t)
	values := Values{"length": dec("2.5"), "width": dec("4"), "rate": dec("3")}
	def.Derive(values)

	if got := values.Text("area"); got != "10" {
		t.Errorf("area = %s, want 10", got)
	}
	if got := values.Text("cost"); got != "30" {
		t.Errorf("cost = %s, want 30", got)
	}
}

func TestDerivationGraph_IncompleteInputsClearTarget(t *testing.T) {
	def := compiledPlate(t)
	values := Values{"length": dec("2"), "width": dec("3"), "rate": dec("1")}
	def.Derive(values)
	if _, ok := values["cost"]; !ok {
		t.Fatal("cost should be derived")
	}

	delete(values, "width")
	def.Derive(values, "width")

	if _, ok := values["area"]; ok {
		t.Error("area should be cleared without width")
	}
	if _, ok := values["cost"]; ok {
		t.Error("cost should be cleared once area is cleared")
	}
}

func TestDerivationGraph_NilIsEmpty(t *testing.T) {
	var g *DerivationGraph
	if g.Len() != 0 || g.IsTarget("a") {
		t.Error("nil graph should be empty")
	}
	if got := g.Apply(Values{}); got != nil {
		t.Errorf("nil graph Apply = %v, want nil", got)
	}
}
