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

import (
	"math"
	"testing"
)

func monodisperseCell(bins *BinSet, g *Grid, binIdx int, n0 float64) *Population {
	p := NewPopulation(bins, g, true)
	p.Fields[binIdx].Set(g.Ny/2, g.Nx/2, n0)
	return p
}

// TestCoagulationVolumeConservation verifies invariant 3 and scenario S5:
// with settling off, third-moment (volume) is conserved across any number
// of coagulation calls, and total number is non-increasing (invariant 4).
func TestCoagulationVolumeConservation(t *testing.T) {
	bins, err := NewBinSet(15, 1e-8, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := NewGrid(4, 4, 100, 100, false, false)
	p := monodisperseCell(bins, g, bins.Len()/2, 1e4)
	p.ComputeKernel(220, 25000, true)

	initialVolume := p.TotalVolume()
	initialNumber := p.TotalNumber()
	if initialVolume <= 0 {
		t.Fatal("expected nonzero initial volume")
	}

	lastNumber := initialNumber
	for step := 0; step < 60; step++ {
		if err := p.Coagulate(60, SymNone); err != nil {
			t.Fatalf("step %d: Coagulate: %v", step, err)
		}
		vol := p.TotalVolume()
		rel := math.Abs(vol-initialVolume) / initialVolume
		if rel > 1e-6 {
			t.Fatalf("step %d: relative volume change = %g, want < 1e-6", step, rel)
		}
		number := p.TotalNumber()
		if number > lastNumber+1e-6*lastNumber {
			t.Fatalf("step %d: total number increased: %g -> %g", step, lastNumber, number)
		}
		lastNumber = number
	}
	if lastNumber >= initialNumber {
		t.Error("coagulation over 1h should have reduced total particle number")
	}
}

// TestCoagulationPositivity verifies the update never drives a bin
// negative, even for an extreme timestep.
func TestCoagulationPositivity(t *testing.T) {
	bins, _ := NewBinSet(10, 1e-8, 1e-6)
	g, _ := NewGrid(2, 2, 50, 50, false, false)
	p := NewPopulation(bins, g, true)
	for bi := range p.Fields {
		p.Fields[bi].Fill(1e5)
	}
	p.ComputeKernel(220, 25000, true)
	if err := p.Coagulate(1e7, SymNone); err != nil {
		t.Fatal(err)
	}
	for bi, f := range p.Fields {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				if f.At(j, i) < 0 {
					t.Errorf("bin %d cell (%d,%d) went negative: %g", bi, j, i, f.At(j, i))
				}
			}
		}
	}
}

// TestCoagulateWithoutKernelFails ensures the documented precondition is
// enforced.
func TestCoagulateWithoutKernelFails(t *testing.T) {
	bins, _ := NewBinSet(5, 1e-8, 1e-6)
	g, _ := NewGrid(2, 2, 10, 10, false, false)
	p := NewPopulation(bins, g, true)
	if err := p.Coagulate(60, SymNone); err == nil {
		t.Error("expected an error coagulating before ComputeKernel")
	}
}

func TestTerminalVelocityIncreasesWithRadius(t *testing.T) {
	small := TerminalVelocity(1e-7, SolidAerosolDensity, 220, 25000)
	large := TerminalVelocity(1e-5, SolidAerosolDensity, 220, 25000)
	if large <= small {
		t.Errorf("terminal velocity should increase with radius: r=1e-7 -> %g, r=1e-5 -> %g", small, large)
	}
}
