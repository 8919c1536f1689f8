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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RHS evaluates the chemical production/loss derivative dy/dt for the
// variable-species state y, given the fixed background concentrations.
type RHS func(y []float64) []float64

// Rosenbrock is a linearly implicit Rosenbrock-Wanner integrator (a
// two-stage ROS2 scheme) with embedded error control, suited to the stiff
// gas-phase system: each step estimates its error from the difference
// between the second-order solution and a first-order solution built from
// the first stage, and both stages solve against one matrix built from a
// numerically estimated Jacobian rather than iterating a fully implicit
// method to convergence.
type Rosenbrock struct {
	RelTol, AbsTol float64
	MinStep        float64
	MaxSubsteps    int
}

// NewRosenbrock returns an integrator with the given tolerances.
func NewRosenbrock(relTol, absTol, minStep float64) *Rosenbrock {
	return &Rosenbrock{RelTol: relTol, AbsTol: absTol, MinStep: minStep, MaxSubsteps: 500}
}

// Integrate advances y0 by dt under f, returning the new state and the
// number of accepted substeps. A rejected substep shrinks, but never below
// MinStep; a substep of MinStep or less is accepted even when it does not
// meet the error tolerance, so step size alone never causes a failure.
// Integrate fails when more than MaxSubsteps substeps have been accepted,
// or when a linear solve meets a singular matrix.
func (r *Rosenbrock) Integrate(f RHS, y0 []float64, dt float64) ([]float64, int, error) {
	const gamma = 1.0 + 1.0/math.Sqrt2 // ROS2 diagonal coefficient

	n := len(y0)
	y := append([]float64(nil), y0...)
	tRemaining := dt
	h := dt
	accepted := 0

	for tRemaining > 0 {
		if h > tRemaining {
			h = tRemaining
		}
		yNext, yLow, err := rosenbrockStep(f, y, h, gamma)
		if err != nil {
			return nil, accepted, err
		}

		errNorm := 0.0
		for i := 0; i < n; i++ {
			scale := r.AbsTol + r.RelTol*math.Max(math.Abs(yNext[i]), math.Abs(yLow[i]))
			d := (yNext[i] - yLow[i]) / scale
			errNorm += d * d
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm <= 1 || h <= r.MinStep {
			y = yNext
			tRemaining -= h
			accepted++
			if accepted > r.MaxSubsteps {
				return nil, accepted, fmt.Errorf("chem: exceeded %d substeps integrating over dt=%g", r.MaxSubsteps, dt)
			}
			// Grow the step modestly on a comfortable accept.
			if errNorm < 0.5 {
				h *= 1.5
			}
			continue
		}

		// Reject: shrink and retry, unless already at the floor.
		hNew := h * math.Max(0.2, 0.9/math.Sqrt(errNorm))
		if hNew < r.MinStep {
			if h <= r.MinStep {
				return nil, accepted, fmt.Errorf("chem: step size below minimum %g integrating over dt=%g", r.MinStep, dt)
			}
			hNew = r.MinStep
		}
		h = hNew
	}
	return y, accepted, nil
}

// rosenbrockStep computes one ROS2 step of size h, returning the 2nd-order
// solution yNext and a 1st-order embedded estimate yLow for error control.
func rosenbrockStep(f RHS, y []float64, h, gamma float64) (yNext, yLow []float64, err error) {
	n := len(y)
	J := numericalJacobian(f, y)

	// (I - h*gamma*J) k1 = f(y)
	A := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -h * gamma * J.At(i, j)
			if i == j {
				v += 1
			}
			A.Set(i, j, v)
		}
	}

	f0 := f(y)
	k1, err := solveLinear(A, f0)
	if err != nil {
		return nil, nil, fmt.Errorf("chem: stage 1 solve: %w", err)
	}

	y1 := make([]float64, n)
	for i := range y1 {
		y1[i] = y[i] + h*k1[i]
	}
	f1 := f(y1)

	rhs2 := make([]float64, n)
	for i := range rhs2 {
		var Jk1 float64
		for j := 0; j < n; j++ {
			Jk1 += J.At(i, j) * k1[j]
		}
		rhs2[i] = f1[i] - 2*h*gamma*Jk1
	}
	k2, err := solveLinear(A, rhs2)
	if err != nil {
		return nil, nil, fmt.Errorf("chem: stage 2 solve: %w", err)
	}

	yNext = make([]float64, n)
	yLow = make([]float64, n)
	for i := 0; i < n; i++ {
		yNext[i] = y[i] + h*(1.5*k1[i]+0.5*k2[i])
		yLow[i] = y[i] + h*k1[i]
		if yNext[i] < 0 {
			yNext[i] = 0
		}
		if yLow[i] < 0 {
			yLow[i] = 0
		}
	}
	return yNext, yLow, nil
}

// numericalJacobian estimates df_i/dy_j by forward differences.
func numericalJacobian(f RHS, y []float64) *mat.Dense {
	n := len(y)
	f0 := f(y)
	J := mat.NewDense(n, n, nil)
	yPert := append([]float64(nil), y...)
	for j := 0; j < n; j++ {
		eps := 1e-6 * math.Max(1, math.Abs(y[j]))
		yPert[j] += eps
		fPert := f(yPert)
		yPert[j] = y[j]
		for i := 0; i < n; i++ {
			J.Set(i, j, (fPert[i]-f0[i])/eps)
		}
	}
	return J
}

// solveLinear solves A x = b via Gaussian elimination with partial
// pivoting, operating directly on a copy of A through the stable
// At/Set accessors rather than a higher-level decomposition routine.
func solveLinear(A *mat.Dense, b []float64) ([]float64, error) {
	n := len(b)
	M := mat.NewDense(n, n, nil)
	M.Copy(A)
	x := append([]float64(nil), b...)

	for col := 0; col < n; col++ {
		pivot := col
		pivotVal := math.Abs(M.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(M.At(r, col)); v > pivotVal {
				pivot, pivotVal = r, v
			}
		}
		if pivotVal < 1e-300 {
			return nil, fmt.Errorf("chem: singular Jacobian system at column %d", col)
		}
		if pivot != col {
			for c := 0; c < n; c++ {
				a, b := M.At(col, c), M.At(pivot, c)
				M.Set(col, c, b)
				M.Set(pivot, c, a)
			}
			x[col], x[pivot] = x[pivot], x[col]
		}
		pv := M.At(col, col)
		for r := col + 1; r < n; r++ {
			factor := M.At(r, col) / pv
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				M.Set(r, c, M.At(r, c)-factor*M.At(col, c))
			}
			x[r] -= factor * x[col]
		}
	}

	for row := n - 1; row >= 0; row-- {
		sum := x[row]
		for c := row + 1; c < n; c++ {
			sum -= M.At(row, c) * x[c]
		}
		x[row] = sum / M.At(row, row)
	}
	return x, nil
}
