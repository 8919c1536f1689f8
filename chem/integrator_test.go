/*
Copyright © 2024 the APCEMM authors.
This file is part of APCEMM.

APCEMM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

APCEMM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with APCEMM.  If not, see <http://www.gnu.org/licenses/>.
*/

package chem

import (
	"math"
	"testing"
)

func TestRosenbrockMatchesExponentialDecay(t *testing.T) {
	const k = 0.05
	f := func(y []float64) []float64 {
		return []float64{-k * y[0]}
	}
	r := NewRosenbrock(1e-8, 1e-12, 1e-6)
	y, _, err := r.Integrate(f, []float64{100}, 60)
	if err != nil {
		t.Fatal(err)
	}
	want := 100 * math.Exp(-k*60)
	if math.Abs(y[0]-want)/want > 1e-4 {
		t.Errorf("Integrate() = %g, want %g (analytic exp decay)", y[0], want)
	}
}

func TestRosenbrockStaysNonNegative(t *testing.T) {
	// A stiff sink that would drive y negative under an explicit step is
	// exactly the regime the solver must floor at zero.
	f := func(y []float64) []float64 {
		return []float64{-1e4 * y[0]}
	}
	r := NewRosenbrock(1e-6, 1e-9, 1e-8)
	y, _, err := r.Integrate(f, []float64{1.0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if y[0] < 0 {
		t.Errorf("Integrate() = %g, want >= 0", y[0])
	}
}

func TestRosenbrockCoupledSystemConservesTotal(t *testing.T) {
	// A <-> B with no other sink: A+B must be conserved regardless of the
	// chosen step.
	const kf, kb = 0.02, 0.01
	f := func(y []float64) []float64 {
		r := kf*y[0] - kb*y[1]
		return []float64{-r, r}
	}
	r := NewRosenbrock(1e-8, 1e-12, 1e-6)
	y0 := []float64{10, 0}
	total0 := y0[0] + y0[1]
	y, _, err := r.Integrate(f, y0, 120)
	if err != nil {
		t.Fatal(err)
	}
	total1 := y[0] + y[1]
	if math.Abs(total1-total0)/total0 > 1e-6 {
		t.Errorf("A+B not conserved: %g -> %g", total0, total1)
	}
}

func TestRosenbrockFailsAtMaxSubstepsOnUnsolvableSystem(t *testing.T) {
	// An RHS that keeps growing without bound keeps the embedded error
	// estimate over tolerance, so the step shrinks to the MinStep floor,
	// where substeps are accepted until MaxSubsteps is exceeded.
	f := func(y []float64) []float64 {
		return []float64{1e12 * (y[0]*y[0] + 1)}
	}
	r := NewRosenbrock(1e-10, 1e-14, 1e-3)
	r.MaxSubsteps = 5
	if _, _, err := r.Integrate(f, []float64{1}, 1); err == nil {
		t.Error("expected an error for a system the integrator cannot resolve within MaxSubsteps")
	}
}
