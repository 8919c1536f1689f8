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

import "math"

// Arrhenius returns k = A * exp(-Ea_over_R / T), the standard two-
// parameter rate-constant form used throughout the mechanism.
func Arrhenius(A, eaOverR, T float64) float64 {
	return A * math.Exp(-eaOverR/T)
}

// Troe returns a pressure-dependent termolecular rate constant using the
// standard Troe falloff form, given the low- and high-pressure limiting
// rates k0, kInf [consistent units], the total number density M
// [molecules/cm^3], and the falloff broadening factor Fc.
func Troe(k0, kInf, M, Fc float64) float64 {
	kr := k0 * M / kInf
	logKr := math.Log10(kr)
	n := 0.75 - 1.27*math.Log10(Fc)
	f := math.Pow(Fc, 1/(1+(logKr/n)*(logKr/n)))
	return (k0 * M / (1 + kr)) * f
}

// HetUptakeRate returns the first-order heterogeneous loss rate [1/s] of a
// gas onto an aerosol population with surface-area density A [cm^2/cm^3],
// effective radius r [cm], and uptake coefficient gamma, following the
// standard gas-kinetic resistance formula (e.g. Jacob, 2000) with mean
// thermal speed cBar [cm/s] and gas-phase diffusivity Dg [cm^2/s].
func HetUptakeRate(A, r, gamma, cBar, Dg float64) float64 {
	if A <= 0 || r <= 0 || gamma <= 0 {
		return 0
	}
	// Resistance in series: gas-phase diffusion to the particle surface,
	// then surface reaction/uptake.
	resistance := r/Dg + 4/(cBar*gamma)
	return A / resistance
}

// MeanThermalSpeed returns the Maxwell-Boltzmann mean molecular speed
// [cm/s] of a gas of molar mass M [g/mol] at temperature T [K].
func MeanThermalSpeed(molarMass, T float64) float64 {
	const Rgas = 8.314462618 // J/(mol K)
	return 100 * math.Sqrt(8*Rgas*T/(math.Pi*molarMass/1000))
}

// PhotolysisRate returns J = J0 * cosSZA^power for cosSZA > 0, the simple
// power-law solar-zenith-angle dependence used when a tabulated photolysis
// rate is unavailable; J is zero at night (cosSZA <= 0).
func PhotolysisRate(J0, cosSZA, power float64) float64 {
	if cosSZA <= 0 {
		return 0
	}
	return J0 * math.Pow(cosSZA, power)
}
