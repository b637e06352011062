package core

// derive.go models auto-calculated fields as an explicit dependency graph.
//
// A Derivation writes one target field from a set of input fields. The graph
// is checked once, when an entity is registered: unknown fields, duplicate
// targets and cycles (including a target listed as its own input) are
// rejected. Apply then recomputes the transitive dependents of the changed
// fields in topological order, each at most once, so evaluation always
// terminates.

import (
	"fmt"
	"sort"
	"strings"
)

// ComputeFunc derives a value from the current form values. It returns
// false when its inputs are incomplete, which clears the target.
type ComputeFunc func(in Values) (any, bool)

// Derivation declares one auto-calculated field.
type Derivation struct {
	Target  string
	Inputs  []string
	Compute ComputeFunc
}

// DerivationGraph is the validated, ordered set of an entity's derivations.
type DerivationGraph struct {
	order      []Derivation     // topological order
	dependents map[string][]int // input field -> indexes into order
	targets    map[string]bool
}

// NewDerivationGraph validates derivations against fields and orders them.
func NewDerivationGraph(fields []FieldSpec, derivations []Derivation) (*DerivationGraph, error) {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}

	byTarget := make(map[string]Derivation, len(derivations))
	for _, d := range derivations {
		if !known[d.Target] {
			return nil, fmt.Errorf("derivation target %q is not a field", d.Target)
		}
		if d.Compute == nil {
			return nil, fmt.Errorf("derivation %q has no compute func", d.Target)
		}
		if _, dup := byTarget[d.Target]; dup {
			return nil, fmt.Errorf("field %q is derived more than once", d.Target)
		}
		for _, in := range d.Inputs {
			if !known[in] {
				return nil, fmt.Errorf("derivation %q reads unknown field %q", d.Target, in)
			}
			if in == d.Target {
				return nil, fmt.Errorf("%w: %s reads itself", ErrDerivationCycle, d.Target)
			}
		}
		byTarget[d.Target] = d
	}

	// Kahn's algorithm over derivations: d1 -> d2 when d1.Target feeds d2.
	indegree := make(map[string]int, len(byTarget))
	feeds := make(map[string][]string)
	for target, d := range byTarget {
		indegree[target] += 0
		for _, in := range d.Inputs {
			if _, derived := byTarget[in]; derived {
				indegree[target]++
				feeds[in] = append(feeds[in], target)
			}
		}
	}

	var ready []string
	for target, n := range indegree {
		if n == 0 {
			ready = append(ready, target)
		}
	}
	sort.Strings(ready)

	g := &DerivationGraph{
		dependents: make(map[string][]int),
		targets:    make(map[string]bool, len(byTarget)),
	}
	for len(ready) > 0 {
		target := ready[0]
		ready = ready[1:]
		g.order = append(g.order, byTarget[target])
		g.targets[target] = true

		next := feeds[target]
		sort.Strings(next)
		for _, t := range next {
			indegree[t]--
			if indegree[t] == 0 {
				ready = append(ready, t)
			}
		}
	}

	if len(g.order) != len(byTarget) {
		var stuck []string
		for target := range byTarget {
			if !g.targets[target] {
				stuck = append(stuck, target)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w between %s", ErrDerivationCycle, strings.Join(stuck, ", "))
	}

	for i, d := range g.order {
		for _, in := range d.Inputs {
			g.dependents[in] = append(g.dependents[in], i)
		}
	}

	return g, nil
}

// IsTarget reports whether field is written by a derivation.
func (g *DerivationGraph) IsTarget(field string) bool {
	return g != nil && g.targets[field]
}

// Len returns the number of derivations.
func (g *DerivationGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Apply recomputes derived fields in place. With no changed fields every
// derivation runs; otherwise only the transitive dependents of changed do.
// Returns the targets that were recomputed, in evaluation order.
func (g *DerivationGraph) Apply(values Values, changed ...string) []string {
	if g == nil || len(g.order) == 0 {
		return nil
	}

	run := make([]bool, len(g.order))
	if len(changed) == 0 {
		for i := range run {
			run[i] = true
		}
	} else {
		queue := append([]string(nil), changed...)
		for len(queue) > 0 {
			field := queue[0]
			queue = queue[1:]
			for _, i := range g.dependents[field] {
				if !run[i] {
					run[i] = true
					queue = append(queue, g.order[i].Target)
				}
			}
		}
	}

	var updated []string
	for i, d := range g.order {
		if !run[i] {
			continue
		}
		if v, ok := d.Compute(values); ok {
			values[d.Target] = v
		} else {
			delete(values, d.Target)
		}
		updated = append(updated, d.Target)
	}
	return updated
}
