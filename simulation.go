package apcemm

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/fritzt/APCEMM/photol"
)

// Simulation bundles the grid, transport operator, aerosol populations,
// chemical mechanism, and ring map that together define one run, plus the
// bookkeeping (cadence, output directory, logger) the time driver needs.
type Simulation struct {
	Grid *Grid
	Met  *Meteorology
	Ring *RingCluster

	LA *Population // liquid (sulfate) aerosol
	PA *Population // solid (soot/ice) aerosol

	Sands       *SANDS
	Velocity    Velocity
	Diffusivity Diffusivity

	Mech         Mechanism
	FixedSpecies []float64

	// Species holds one concentration field per variable species, indexed
	// the same way as Mech.SpeciesIndex.
	Species  []*Field
	SO4Total *Field
	SO4Gas   *Field
	SO4Liq   *Field

	Cadence Cadence
	PerRing bool // chemistry mode: per-ring mean vs per-cell

	Fill FillMode

	// Solar anchors the solar-zenith-angle clock that gates photolysis;
	// Photol is an optional tabulated photolysis rate lookup, consulted in
	// preference to a mechanism's own clear-sky formula when non-nil.
	Solar  SolarClock
	Photol *photol.Table

	// cosSZA and jNO2 cache the current solar state, recomputed once per
	// Step by updateSolar and read by every chemistry call within that
	// step.
	cosSZA float64
	jNO2   float64

	OutDir string
	Log    *logrus.Logger

	Diagnostics MassDiagnostics
}

func (sim *Simulation) logger() *logrus.Entry {
	if sim.Log == nil {
		sim.Log = logrus.New()
	}
	return sim.Log.WithField("component", "apcemm")
}

// transportStep advects and diffuses every species field and both aerosol
// populations by dt.
func (sim *Simulation) transportStep(dt float64) error {
	for idx, f := range sim.Species {
		if err := sim.Sands.Solve(f, sim.Velocity, sim.Diffusivity, dt, sim.Fill); err != nil {
			return fmt.Errorf("species %d transport: %w", idx, err)
		}
	}
	if sim.SO4Total != nil {
		if err := sim.Sands.Solve(sim.SO4Total, sim.Velocity, sim.Diffusivity, dt, sim.Fill); err != nil {
			return fmt.Errorf("SO4 transport: %w", err)
		}
	}

	T, P := sim.Met.Temperature(0), sim.Met.Pressure(0)
	if err := sim.LA.Transport(sim.Sands, sim.Velocity, sim.Diffusivity, dt, T, P, false, sim.Fill); err != nil {
		return fmt.Errorf("liquid aerosol transport: %w", err)
	}
	if err := sim.PA.Transport(sim.Sands, sim.Velocity, sim.Diffusivity, dt, T, P, false, sim.Fill); err != nil {
		return fmt.Errorf("solid aerosol transport: %w", err)
	}
	return nil
}

// partitionSO4 recomputes the gas/liquid sulfate split from the updated
// total field, using the cell's local temperature.
func (sim *Simulation) partitionSO4() {
	if sim.SO4Total == nil {
		return
	}
	temp := func(j, i int) float64 { return sim.Met.Temperature(sim.Grid.Y(j)) }
	gas, liq := PartitionSO4(sim.SO4Total, temp)
	sim.SO4Gas, sim.SO4Liq = gas, liq
}

// chemistryStep advances every variable species by dt using sim.Mech,
// either per grid cell or per ring mean, per sim.PerRing.
func (sim *Simulation) chemistryStep(dt, tNow float64) error {
	if sim.Mech == nil {
		return nil
	}
	if sim.PerRing && sim.Ring != nil {
		return sim.chemistryStepPerRing(dt)
	}
	return sim.chemistryStepPerCell(dt)
}

func (sim *Simulation) chemistryStepPerCell(dt float64) error {
	g := sim.Grid
	return ParallelCells(g.Ny, g.Nx, dt, func(j, i int, dt float64) error {
		T := sim.Met.Temperature(g.Y(j))
		in := ChemInput{
			Variable:    make([]float64, len(sim.Species)),
			Fixed:       sim.FixedSpecies,
			Temperature: T,
			Pressure:    sim.Met.Pressure(g.Y(j)),
			CosSZA:      sim.cosSZA,
			JNO2:        sim.jNO2,
			Water:       sim.waterConcentration(T),
		}
		cell := [2]int{j, i}
		var laM2, laM3, paM2, paM3 float64
		if sim.LA != nil {
			laM2, laM3 = sim.LA.Moment(2, &cell), sim.LA.Moment(3, &cell)
		}
		if sim.PA != nil {
			paM2, paM3 = sim.PA.Moment(2, &cell), sim.PA.Moment(3, &cell)
		}
		in.AerosolSurfaceArea, in.AerosolRadius, in.PSC, in.IWC = aerosolCategoryState(laM2, laM3, paM2, paM3, T)
		for k, f := range sim.Species {
			in.Variable[k] = f.At(j, i)
		}
		res, err := sim.Mech.Step(in, dt)
		if err != nil {
			return fmt.Errorf("cell (%d,%d): %w", j, i, err)
		}
		for k, f := range sim.Species {
			f.Set(j, i, res.Variable[k])
		}
		return nil
	})
}

// aerosolCategoryState converts LA/PA second and third radius moments
// (units m^2/cm^3, m^3/cm^3) into the four-category aerosol surface-area
// density and effective radius a Mechanism expects, deciding the liquid/
// solid category split from an approximate NAT/ice formation threshold.
// The same sectional population never contributes to two categories at
// once: LA maps to tropospheric sulfate (or stratospheric liquid under a
// PSC), PA to soot (or ice/NAT under a PSC).
func aerosolCategoryState(laM2, laM3, paM2, paM3, T float64) (area, radius [NumAerosolCategories]float64, psc bool, iwc float64) {
	const pscThreshold = 195 // K, approximate NAT condensation point in the LMS
	psc = T < pscThreshold

	liquidCat, solidCat := AerosolTroposphericSulfate, AerosolSoot
	if psc {
		liquidCat, solidCat = AerosolStratosphericLiquid, AerosolIceOrNAT
	}

	if laM2 > 0 {
		area[liquidCat] = 4 * math.Pi * laM2 * 1e4 // m^2/cm^3 -> cm^2/cm^3
		radius[liquidCat] = laM3 / laM2            // m
	}
	if paM2 > 0 {
		area[solidCat] = 4 * math.Pi * paM2 * 1e4
		radius[solidCat] = paM3 / paM2
		iwc = SolidAerosolDensity * (4. / 3. * math.Pi * paM3) * 1e6 // kg/m^3
	}
	return
}

// waterConcentration returns the water-vapor number density
// [molecules/cm^3] implied by the ambient relative humidity at
// temperature T [K].
func (sim *Simulation) waterConcentration(T float64) float64 {
	if sim.Met == nil {
		return 0
	}
	const kB = 1.380649e-23 // J/K
	pH2O := sim.Met.RHw * SaturationVaporPressureWater(T)
	return pH2O / (kB * T) * 1e-6
}

// chemistryStepPerRing visits rings inner to outer in deterministic order,
// applying the mechanism to the ring-mean concentration and distributing
// the resulting fractional change back to every member cell.
func (sim *Simulation) chemistryStepPerRing(dt float64) error {
	g := sim.Grid
	for r := 0; r < sim.Ring.N; r++ {
		y := sim.Ring.MeanY(g, r)
		T := sim.Met.Temperature(y)
		in := ChemInput{
			Variable:    make([]float64, len(sim.Species)),
			Fixed:       sim.FixedSpecies,
			Temperature: T,
			Pressure:    sim.Met.Pressure(y),
			CosSZA:      sim.cosSZA,
			JNO2:        sim.jNO2,
			Water:       sim.waterConcentration(T),
		}
		var laM2, laM3, paM2, paM3 float64
		if sim.LA != nil {
			laM2 = sim.Ring.AreaWeightedMean(sim.LA.MomentField(2), r)
			laM3 = sim.Ring.AreaWeightedMean(sim.LA.MomentField(3), r)
		}
		if sim.PA != nil {
			paM2 = sim.Ring.AreaWeightedMean(sim.PA.MomentField(2), r)
			paM3 = sim.Ring.AreaWeightedMean(sim.PA.MomentField(3), r)
		}
		in.AerosolSurfaceArea, in.AerosolRadius, in.PSC, in.IWC = aerosolCategoryState(laM2, laM3, paM2, paM3, T)

		pre := make([]float64, len(sim.Species))
		for k, f := range sim.Species {
			mean := sim.Ring.AreaWeightedMean(f, r)
			in.Variable[k] = mean
			pre[k] = mean
		}
		res, err := sim.Mech.Step(in, dt)
		if err != nil {
			return fmt.Errorf("ring %d: %w", r, err)
		}
		for k, f := range sim.Species {
			sim.Ring.ApplyRingDelta(f, r, pre[k], res.Variable[k])
		}
	}
	return nil
}

// updateDiagnostics recomputes the mass-check diagnostics for the current
// state at simulated time tNow.
func (sim *Simulation) updateDiagnostics(tNow float64) {
	sim.Diagnostics = sim.computeMassDiagnostics(tNow)
}
