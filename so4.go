package apcemm

import "math"

// H2SO4GasFraction returns the gaseous mass fraction f(T, [SO4]_total) of
// total sulfate at temperature T [K] as a logistic function of T (0.5 at
// 360 K, transition width 8 K): f saturates to 1 well below typical
// combustor exit temperatures and falls toward 0 at ambient plume
// temperatures where H2SO4 condenses onto aerosol. It is not a vapour-
// pressure calculation, and totalSO4 only matters when it is <= 0, in
// which case f is 1.
func H2SO4GasFraction(T, totalSO4 float64) float64 {
	if totalSO4 <= 0 {
		return 1
	}
	const (
		refT = 360.0 // K, reference temperature where f=0.5
		span = 8.0   // K, width of the transition
	)
	f := 1 / (1 + math.Exp((refT-T)/span))
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return f
}

// PartitionSO4 applies §4.7: for every cell, split total into gaseous and
// liquid sulfate fields using the temperature-dependent gas fraction.
// Post-condition: gas[j][i] + liquid[j][i] == total[j][i] to floating-point
// precision for every cell.
func PartitionSO4(total *Field, temperature func(j, i int) float64) (gas, liquid *Field) {
	g := total.Grid()
	gas = NewField(g)
	liquid = NewField(g)
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			tot := total.At(j, i)
			f := H2SO4GasFraction(temperature(j, i), tot)
			gasVal := f * tot
			gas.Set(j, i, gasVal)
			liquid.Set(j, i, tot-gasVal)
		}
	}
	return gas, liquid
}
