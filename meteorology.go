package apcemm

import "math"

// Meteorology holds the vertical temperature and water-vapour environment
// imposed on the plume. It is evaluated as a function of y (altitude
// offset from the plume centre in metres); the ambient background is
// otherwise unperturbed by the plume (Meteorology holds no reference to
// plume state).
type Meteorology struct {
	// T0 and P0 are the ambient temperature [K] and pressure [Pa] at the
	// plume centreline (y=0).
	T0, P0 float64

	// LapseRate is the environmental temperature lapse rate [K/m]; ambient
	// temperature at height y is T0 - LapseRate*y.
	LapseRate float64

	// RHw is the ambient relative humidity with respect to liquid water at
	// the centreline, as a fraction (e.g. 0.6 for 60%).
	RHw float64
}

// NewMeteorology constructs a Meteorology with a standard tropopause-region
// lapse rate.
func NewMeteorology(t0, p0, rhw float64) *Meteorology {
	return &Meteorology{T0: t0, P0: p0, LapseRate: -0.002, RHw: rhw}
}

// Temperature returns the ambient temperature [K] at height offset y [m].
func (m *Meteorology) Temperature(y float64) float64 {
	return m.T0 - m.LapseRate*y
}

// Pressure returns the ambient pressure [Pa] at height offset y [m] using
// the barometric formula with the local scale height.
func (m *Meteorology) Pressure(y float64) float64 {
	const (
		g  = 9.80665 // m/s^2
		Rd = 287.05  // J/(kg K), dry air gas constant
	)
	T := m.Temperature(y)
	H := Rd * T / g
	return m.P0 * math.Exp(-y/H)
}

// SaturationVaporPressureWater returns the saturation vapor pressure of
// water [Pa] at temperature T [K] using the Sonntag formula used
// throughout upper-troposphere/lower-stratosphere plume models.
func SaturationVaporPressureWater(T float64) float64 {
	// Sonntag (1994), valid -45 to 60 C over liquid water.
	const (
		a = -6096.9385
		b = 16.635794
		c = -2.711193e-2
		d = 1.673952e-5
		e = 2.433502
	)
	lnP := a/T + b + c*T + d*T*T + e*math.Log(T)
	return math.Exp(lnP) * 100 // hPa -> Pa
}

// SaturationVaporPressureIce returns the saturation vapor pressure of water
// over ice [Pa] at temperature T [K] (Sonntag 1990).
func SaturationVaporPressureIce(T float64) float64 {
	const (
		a = -6024.5282
		b = 24.7219
		c = 1.0613868e-2
		d = -1.3198825e-5
		e = -0.49382577
	)
	lnP := a/T + b + c*T + d*T*T + e*math.Log(T)
	return math.Exp(lnP) * 100
}

// RHIceFromRHWater converts relative humidity with respect to liquid water
// into relative humidity with respect to ice at temperature T [K].
func RHIceFromRHWater(rhw, T float64) float64 {
	return rhw * SaturationVaporPressureWater(T) / SaturationVaporPressureIce(T)
}

// AirNumberDensity returns the number density of air [molecules/cm^3] from
// pressure [Pa] and temperature [K] via the ideal gas law.
func AirNumberDensity(P, T float64) float64 {
	const kB = 1.380649e-23 // J/K
	// P = n*kB*T, n in molecules/m^3; convert to molecules/cm^3.
	return P / (kB * T) * 1e-6
}
