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

import "testing"

// noyTestMechanism maps a handful of named species to fixed indices, so
// computeMassDiagnostics can be exercised without the full reaction set.
type noyTestMechanism struct{ names []string }

func (m noyTestMechanism) Step(in ChemInput, dt float64) (ChemResult, error) {
	return ChemResult{Variable: in.Variable}, nil
}
func (m noyTestMechanism) NumVariable() int { return len(m.names) }
func (m noyTestMechanism) NumFixed() int    { return 0 }
func (m noyTestMechanism) SpeciesIndex(name string) (int, bool) {
	for i, n := range m.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func newMassDiagSimulation(t *testing.T) *Simulation {
	t.Helper()
	g, err := NewGrid(4, 4, 100, 100, false, false)
	if err != nil {
		t.Fatal(err)
	}
	mech := noyTestMechanism{names: []string{"NO", "NO2", "N2O5", "CO2"}}
	species := make([]*Field, mech.NumVariable())
	for i := range species {
		species[i] = NewField(g)
	}
	bins, _ := NewBinSet(3, 1e-9, 1e-6)
	species[0].Fill(1.0) // NO
	species[1].Fill(2.0) // NO2
	species[2].Fill(3.0) // N2O5
	species[3].Fill(5.0) // CO2
	return &Simulation{
		Grid:    g,
		Mech:    mech,
		Species: species,
		LA:      NewPopulation(bins, g, true),
		PA:      NewPopulation(bins, g, false),
	}
}

func TestComputeMassDiagnosticsWeightsN2O5Double(t *testing.T) {
	sim := newMassDiagSimulation(t)
	d := sim.computeMassDiagnostics(0)

	area := sim.Grid.Area(0, 0) * float64(sim.Grid.Nx*sim.Grid.Ny)
	want := (1.0 + 2.0 + 2*3.0) * area
	if diff := d.NOy - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("NOy = %g, want %g (N2O5 weighted by 2)", d.NOy, want)
	}
}

func TestComputeMassDiagnosticsCO2Mass(t *testing.T) {
	sim := newMassDiagSimulation(t)
	d := sim.computeMassDiagnostics(0)
	want := sim.Species[3].Mass()
	if d.CO2 != want {
		t.Errorf("CO2 = %g, want %g", d.CO2, want)
	}
}

func TestComputeMassDiagnosticsRingMassWithoutRing(t *testing.T) {
	sim := newMassDiagSimulation(t)
	sim.Ring = nil
	d := sim.computeMassDiagnostics(0)
	if d.RingMass != 0 {
		t.Errorf("RingMass = %g, want 0 when no ring cluster is configured", d.RingMass)
	}
	if d.EmittedMass != sim.Species[3].Mass() {
		t.Errorf("EmittedMass = %g, want full CO2 mass %g", d.EmittedMass, sim.Species[3].Mass())
	}
}

func TestComputeMassDiagnosticsRingMassBoundedByTotal(t *testing.T) {
	sim := newMassDiagSimulation(t)
	rc, err := NewRingCluster(sim.Grid, 2, 150, 150, false)
	if err != nil {
		t.Fatal(err)
	}
	sim.Ring = rc
	d := sim.computeMassDiagnostics(0)
	if d.RingMass > d.EmittedMass+1e-9 {
		t.Errorf("RingMass %g exceeds EmittedMass %g", d.RingMass, d.EmittedMass)
	}
}
