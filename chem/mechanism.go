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

	"github.com/fritzt/APCEMM"
)

// Mechanism is the stiff-chemistry implementation of apcemm.Mechanism: it
// owns a species Table, evaluates reaction rates from a Table and the
// ambient/aerosol conditions in an apcemm.ChemInput, and integrates with a
// Rosenbrock step.
type Mechanism struct {
	Table      *Table
	Integrator *Rosenbrock
}

// NewMechanism returns a Mechanism using the default species table and a
// Rosenbrock integrator with the given tolerances.
func NewMechanism(relTol, absTol, minStep float64) *Mechanism {
	return &Mechanism{
		Table:      DefaultTable(),
		Integrator: NewRosenbrock(relTol, absTol, minStep),
	}
}

// NumVariable implements apcemm.Mechanism.
func (m *Mechanism) NumVariable() int { return m.Table.NumVariable() }

// NumFixed implements apcemm.Mechanism.
func (m *Mechanism) NumFixed() int { return m.Table.NumFixed() }

// SpeciesIndex implements apcemm.Mechanism.
func (m *Mechanism) SpeciesIndex(name string) (int, bool) { return m.Table.Index(name) }

// SpeciesName returns the name of the variable species at idx, used by the
// output writer to label NetCDF variables.
func (m *Mechanism) SpeciesName(idx int) (string, bool) {
	if idx < 0 || idx >= m.Table.NumVariable() {
		return "", false
	}
	return m.Table.Name(idx), true
}

// Step implements apcemm.Mechanism by integrating the reaction-rate
// derivative over dt with the Rosenbrock solver.
func (m *Mechanism) Step(in apcemm.ChemInput, dt float64) (apcemm.ChemResult, error) {
	deriv := func(y []float64) []float64 {
		return m.derivative(y, in)
	}
	yNext, accepted, err := m.Integrator.Integrate(deriv, in.Variable, dt)
	if err != nil {
		return apcemm.ChemResult{}, fmt.Errorf("chem: %w", err)
	}
	return apcemm.ChemResult{Variable: yNext, Accepted: accepted}, nil
}

// derivative evaluates d[species]/dt for the core NOy/Ox/HOx/sulfur
// reaction set, given the current variable-species state y and the
// ambient/aerosol/fixed-species context in in.
func (m *Mechanism) derivative(y []float64, in apcemm.ChemInput) []float64 {
	idx := func(name string) int {
		i, _ := m.Table.Index(name)
		return i
	}
	d := make([]float64, len(y))

	iO3, iNO, iNO2, iNO3, iN2O5 := idx("O3"), idx("NO"), idx("NO2"), idx("NO3"), idx("N2O5")
	iOH, iHO2, iSO2, iSO4 := idx("OH"), idx("HO2"), idx("SO2"), idx("SO4")

	T := in.Temperature
	M := in.Fixed[0]

	// NO + O3 -> NO2 + O2
	kNOO3 := Arrhenius(3.0e-12, -1500, T)
	r1 := kNOO3 * y[iNO] * y[iO3]

	// NO2 + O3 -> NO3 + O2
	kNO2O3 := Arrhenius(1.2e-13, 2450, T)
	r2 := kNO2O3 * y[iNO2] * y[iO3]

	// NO2 + NO3 <-> N2O5 (Troe falloff forward, simple reverse)
	kForm := Troe(2.0e-30, 1.4e-12, M, 0.45)
	kDecomp := Arrhenius(9.7e14, 11080, T)
	rForm := kForm * y[iNO2] * y[iNO3]
	rDecomp := kDecomp * y[iN2O5]

	// OH + NO2 -> HNO3 (Troe falloff), approximated as pure loss of NO2.
	kOHNO2 := Troe(1.8e-30, 2.8e-11, M, 0.6)
	r3 := kOHNO2 * y[iOH] * y[iNO2]

	// OH + SO2 -> HO2 + SO3 (-> SO4), the dominant gas-phase sulfate path.
	kOHSO2 := Troe(3.0e-31, 1.5e-12, M, 0.6)
	r4 := kOHSO2 * y[iOH] * y[iSO2]

	// Heterogeneous N2O5 hydrolysis across all four aerosol categories,
	// each with its own uptake coefficient (DeMore et al.; Hanson &
	// Ravishankara): liquid droplets are efficient sinks, ice/NAT and soot
	// less so.
	cBarN2O5 := MeanThermalSpeed(m.Table.MolarMass(iN2O5), T)
	const DgN2O5 = 0.1 // cm^2/s, typical gas-phase diffusivity
	gammaN2O5 := [apcemm.NumAerosolCategories]float64{
		apcemm.AerosolIceOrNAT:            0.02,
		apcemm.AerosolStratosphericLiquid: 0.1,
		apcemm.AerosolTroposphericSulfate: 0.1,
		apcemm.AerosolSoot:                0.003,
	}
	var rHet float64
	for c := apcemm.AerosolCategory(0); c < apcemm.NumAerosolCategories; c++ {
		rHet += HetUptakeRate(in.AerosolSurfaceArea[c], in.AerosolRadius[c]*1e2, gammaN2O5[c], cBarN2O5, DgN2O5)
	}
	rHet *= y[iN2O5]

	// NO2 + hv -> NO + O(3P), with O(3P) reforming O3 within microseconds;
	// net effect is direct NO2 -> NO + O3 conversion. Prefers a tabulated
	// J-value when the driver supplied one, falling back to a clear-sky
	// power law in CosSZA otherwise.
	jNO2 := in.JNO2
	if jNO2 == 0 {
		const jNO2ClearSky = 8.0e-3 // 1/s, overhead-sun reference J-value
		jNO2 = PhotolysisRate(jNO2ClearSky, in.CosSZA, 1)
	}
	rPhot := jNO2 * y[iNO2]

	d[iO3] -= r1 + r2
	d[iO3] += rPhot
	d[iNO] -= r1
	d[iNO] += rPhot
	d[iNO2] += r1 - r2 - rForm + rDecomp - r3 - rPhot
	d[iNO3] += r2 - rForm + rDecomp
	d[iN2O5] += rForm - rDecomp - rHet
	d[iOH] -= r3 + r4
	d[iHO2] += r4
	d[iSO2] -= r4
	d[iSO4] += r4 + 2*rHet

	return d
}
