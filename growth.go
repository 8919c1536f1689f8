package apcemm

import "math"

// waterVaporDiffusivity returns water vapor's diffusivity in air [m^2/s] at
// temperature T [K] and pressure P [Pa], scaled from the standard
// reference value by the usual T^1.94/P dependence (Pruppacher & Klett).
func waterVaporDiffusivity(T, P float64) float64 {
	const (
		D0 = 2.11e-5 // m^2/s at 273.15 K, 101325 Pa
		T0 = 273.15
		P0 = 101325.0
	)
	return D0 * math.Pow(T/T0, 1.94) * (P0 / P)
}

// waterVaporDensity returns the mass density [kg/m^3] of water vapor at
// partial pressure p [Pa] and temperature T [K], from the ideal gas law.
func waterVaporDensity(p, T float64) float64 {
	const Rv = 461.5 // J/(kg K), water vapor specific gas constant
	return p / (Rv * T)
}

// growthStep applies condensational growth or evaporation to both aerosol
// populations over dt: every bin's radius advances at the vapor-
// diffusional growth rate implied by the ambient supersaturation (over
// liquid water for LA, over ice for PA), with Population.Grow
// redistributing each cell's sectional PDF across bin edges accordingly.
// Conditions are evaluated once at the plume centerline (y=0), the same
// simplification transportStep already makes for aerosol advection.
func (sim *Simulation) growthStep(dt float64) error {
	T, P := sim.Met.Temperature(0), sim.Met.Pressure(0)
	Dv := waterVaporDiffusivity(T, P)

	if sim.LA != nil {
		satRho := waterVaporDensity(SaturationVaporPressureWater(T), T)
		excess := sim.Met.RHw - 1
		sim.LA.Grow(func(r float64) float64 {
			if r <= 0 {
				return 0
			}
			return Dv * excess * satRho / (LiquidAerosolDensity * r)
		}, dt)
	}
	if sim.PA != nil {
		rhi := RHIceFromRHWater(sim.Met.RHw, T)
		satRho := waterVaporDensity(SaturationVaporPressureIce(T), T)
		excess := rhi - 1
		sim.PA.Grow(func(r float64) float64 {
			if r <= 0 {
				return 0
			}
			return Dv * excess * satRho / (SolidAerosolDensity * r)
		}, dt)
	}
	return nil
}
