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

package apcemm

// AerosolCategory indexes the four aerosol classes a chemistry step's
// heterogeneous rates are evaluated against. The same physical particle
// population contributes to exactly one category at a time (see
// aerosolCategoryState); the split exists because NAT/ice uptake
// coefficients differ from liquid-droplet ones even when both conditions
// are sampled from the same sectional population.
type AerosolCategory int

const (
	AerosolIceOrNAT            AerosolCategory = iota // water ice or nitric acid trihydrate
	AerosolStratosphericLiquid                        // ternary-solution liquid (H2SO4/HNO3/H2O)
	AerosolTroposphericSulfate                        // binary H2SO4/H2O droplet
	AerosolSoot                                       // soot/black-carbon core

	NumAerosolCategories
)

// ChemInput is the per-cell (or per-ring) input to one chemistry step: the
// variable-species concentrations, the fixed (held-constant) species, and
// the ambient conditions the rate constants depend on.
type ChemInput struct {
	Variable []float64 // molecules/cm^3, indexed per Mechanism.SpeciesIndex
	Fixed    []float64 // molecules/cm^3, background species not integrated

	Temperature float64 // K
	Pressure    float64 // Pa
	CosSZA      float64 // cosine solar zenith angle, <=0 means night
	Water       float64 // water vapor concentration, molecules/cm^3

	// PSC reports whether the cell is in a polar-stratospheric-cloud state;
	// mechanisms use it to gate PSC-specific heterogeneous pathways that
	// only apply below the NAT/ice formation threshold.
	PSC bool

	// IWC is the ice water content, the mass of ice per unit volume of air
	// [kg/m^3], as tracked by the solid aerosol population.
	IWC float64

	// AerosolSurfaceArea and AerosolRadius give, per AerosolCategory, the
	// aerosol surface-area density [cm^2/cm^3] and effective radius [m] a
	// mechanism may use to evaluate heterogeneous reaction rates.
	AerosolSurfaceArea [NumAerosolCategories]float64
	AerosolRadius      [NumAerosolCategories]float64

	// JNO2 is a tabulated NO2 photolysis rate [1/s] from a photol.Table
	// lookup at the current CosSZA, or zero if no table was loaded, in
	// which case a mechanism falls back to its own clear-sky formula.
	JNO2 float64
}

// ChemResult is the outcome of one chemistry step.
type ChemResult struct {
	Variable []float64 // updated molecules/cm^3
	Accepted int       // number of internal integrator substeps taken
}

// Mechanism is the interface a chemical mechanism implementation must
// satisfy to be driven by the time stepper. A mechanism owns its own
// species table and rate-constant logic; the driver only ever sees
// indices and raw concentration slices, which keeps species bookkeeping
// out of the core grid/transport/aerosol code and avoids an import cycle
// between the mechanism package and this one.
type Mechanism interface {
	// Step integrates the mechanism's variable species forward by dt
	// given in, returning the updated state. Implementations are free to
	// subdivide dt internally (e.g. an adaptive Rosenbrock scheme);
	// Accepted reports how many internal steps were used.
	Step(in ChemInput, dt float64) (ChemResult, error)

	// NumVariable returns the number of integrated (variable) species.
	NumVariable() int

	// NumFixed returns the number of held-constant background species
	// the mechanism expects in ChemInput.Fixed.
	NumFixed() int

	// SpeciesIndex returns the index of the named species within
	// Variable, or ok=false if the mechanism does not carry that species.
	SpeciesIndex(name string) (idx int, ok bool)
}
