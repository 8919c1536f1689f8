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
	"testing"
)

// TestBuildTimeGridProperties verifies invariant 7: the grid is strictly
// increasing, begins at 0, ends at tFinal, every step is <= transportDt,
// and every breakpoint is an exact grid point.
func TestBuildTimeGridProperties(t *testing.T) {
	tFinal := 24 * 3600.0
	dt := 300.0
	sunrise, sunset := 6*3600.0, 18*3600.0
	grid, err := BuildTimeGrid(tFinal, dt, sunrise, sunset)
	if err != nil {
		t.Fatal(err)
	}
	if grid[0] != 0 {
		t.Errorf("first grid point = %g, want 0", grid[0])
	}
	if grid[len(grid)-1] != tFinal {
		t.Errorf("last grid point = %g, want %g", grid[len(grid)-1], tFinal)
	}
	for k := 1; k < len(grid); k++ {
		if grid[k] <= grid[k-1] {
			t.Fatalf("grid not strictly increasing at index %d: %g <= %g", k, grid[k], grid[k-1])
		}
		if grid[k]-grid[k-1] > dt+1e-6 {
			t.Errorf("step %d exceeds transportDt: %g > %g", k, grid[k]-grid[k-1], dt)
		}
	}
	foundSunrise, foundSunset := false, false
	for _, tp := range grid {
		if tp == sunrise {
			foundSunrise = true
		}
		if tp == sunset {
			foundSunset = true
		}
	}
	if !foundSunrise {
		t.Error("time grid does not contain sunrise exactly")
	}
	if !foundSunset {
		t.Error("time grid does not contain sunset exactly")
	}
}

// TestBuildTimeGridSunriseSunset is scenario S6: tInit=4h is folded into
// the grid implicitly by only emitting points after 0 (the driver always
// starts at 0 in this design; the breakpoints still land exactly at
// 6h and 18h within [0, 20h]).
func TestBuildTimeGridSunriseSunset(t *testing.T) {
	grid, err := BuildTimeGrid(20*3600, 600, 6*3600, 18*3600)
	if err != nil {
		t.Fatal(err)
	}
	want := map[float64]bool{6 * 3600: false, 18 * 3600: false}
	for _, tp := range grid {
		if _, ok := want[tp]; ok {
			want[tp] = true
		}
	}
	for tp, found := range want {
		if !found {
			t.Errorf("time grid missing expected breakpoint %g", tp)
		}
	}
}

func TestBuildTimeGridRejectsBadInputs(t *testing.T) {
	if _, err := BuildTimeGrid(0, 10); err == nil {
		t.Error("expected error for non-positive tFinal")
	}
	if _, err := BuildTimeGrid(100, 0); err == nil {
		t.Error("expected error for non-positive transportDt")
	}
}

func TestParallelCellsVisitsEveryCell(t *testing.T) {
	ny, nx := 7, 5
	visited := make([][]bool, ny)
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	for j := range visited {
		visited[j] = make([]bool, nx)
	}
	err := ParallelCells(ny, nx, 1.0, func(j, i int, dt float64) error {
		<-mu
		visited[j][i] = true
		mu <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if !visited[j][i] {
				t.Errorf("cell (%d,%d) was never visited", j, i)
			}
		}
	}
}

func TestStatusExitCodes(t *testing.T) {
	cases := map[Status]int{
		StatusOK:       0,
		StatusGeneric:  1,
		StatusKPPFail:  2,
		StatusSaveFail: 3,
	}
	for status, want := range cases {
		if got := status.ExitCode(); got != want {
			t.Errorf("%v.ExitCode() = %d, want %d", status, got, want)
		}
	}
}
