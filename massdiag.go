package apcemm

// MassDiagnostics holds the mass-conservation and mass-check quantities
// recomputed each time updateDiagnostics fires.
type MassDiagnostics struct {
	Time float64

	// NOy is the domain-total reactive-nitrogen mass, with N2O and N2O5
	// weighted by a factor of 2 (two N atoms per molecule).
	NOy float64
	// CO2 is the domain-total CO2 mass.
	CO2 float64

	// EmittedMass and RingMass are the total emitted tracer mass over the
	// full mesh and over the ring-clustered subset, respectively; their
	// ratio is a diagnostic for how much mass has left the ring domain.
	EmittedMass float64
	RingMass    float64

	LiquidAerosolVolume float64
	SolidAerosolVolume  float64
	LiquidAerosolNumber float64
	SolidAerosolNumber  float64
}

// noySpecies lists the species names that contribute to NOy, with their
// per-molecule nitrogen-atom weight.
var noySpecies = map[string]float64{
	"NO": 1, "NO2": 1, "NO3": 1, "HNO3": 1, "HNO4": 1,
	"PAN": 1, "N2O": 2, "N2O5": 2, "ClONO2": 1, "BrONO2": 1,
}

// computeMassDiagnostics returns the mass diagnostics of sim's current
// state at simulated time tNow; updateDiagnostics stores them.
func (sim *Simulation) computeMassDiagnostics(tNow float64) MassDiagnostics {
	var d MassDiagnostics
	d.Time = tNow

	for name, weight := range noySpecies {
		idx, ok := sim.Mech.SpeciesIndex(name)
		if !ok {
			continue
		}
		d.NOy += weight * sim.Species[idx].Mass()
	}
	if idx, ok := sim.Mech.SpeciesIndex("CO2"); ok {
		d.CO2 = sim.Species[idx].Mass()
	}

	if idx, ok := sim.Mech.SpeciesIndex("CO2"); ok {
		full := sim.Species[idx].Mass()
		d.EmittedMass = full
		if sim.Ring != nil {
			var ring float64
			g := sim.Grid
			for j := 0; j < g.Ny; j++ {
				for i := 0; i < g.Nx; i++ {
					if sim.Ring.RingOf(j, i) < sim.Ring.N-1 {
						ring += sim.Species[idx].At(j, i) * g.Area(j, i)
					}
				}
			}
			d.RingMass = ring
		}
	}

	d.LiquidAerosolVolume = sim.LA.TotalVolume()
	d.SolidAerosolVolume = sim.PA.TotalVolume()
	d.LiquidAerosolNumber = sim.LA.TotalNumber()
	d.SolidAerosolNumber = sim.PA.TotalNumber()

	return d
}
