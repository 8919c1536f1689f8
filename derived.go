package apcemm

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// DerivedDiagnostic is a user-named expression combining species and ring
// diagnostic variables into a single derived output, e.g. a custom NOy
// subset or an emission-index ratio.
type DerivedDiagnostic struct {
	Name       string
	expression *govaluate.EvaluableExpression
}

// NewDerivedDiagnostic compiles expr (e.g. "NO + NO2 + 2*N2O5") into a
// reusable diagnostic evaluator.
func NewDerivedDiagnostic(name, expr string) (*DerivedDiagnostic, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("apcemm: derived diagnostic %q: %w", name, err)
	}
	return &DerivedDiagnostic{Name: name, expression: e}, nil
}

// Evaluate computes the diagnostic's value given a variable binding, e.g.
// species concentrations by name.
func (d *DerivedDiagnostic) Evaluate(vars map[string]interface{}) (float64, error) {
	result, err := d.expression.Evaluate(vars)
	if err != nil {
		return 0, fmt.Errorf("apcemm: evaluating %q: %w", d.Name, err)
	}
	v, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("apcemm: %q did not evaluate to a number", d.Name)
	}
	return v, nil
}

// EvaluateAtCell evaluates d using sim's variable species concentrations at
// cell (j,i) as the variable bindings, keyed by species name.
func (d *DerivedDiagnostic) EvaluateAtCell(sim *Simulation, j, i int) (float64, error) {
	vars := make(map[string]interface{}, len(sim.Species))
	for idx, f := range sim.Species {
		name := fmt.Sprintf("species_%02d", idx)
		if sim.Mech != nil {
			if n, ok := speciesNameFromIndex(sim.Mech, idx); ok {
				name = n
			}
		}
		vars[name] = f.At(j, i)
	}
	return d.Evaluate(vars)
}
