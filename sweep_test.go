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

func TestExpandSweepCartesianProduct(t *testing.T) {
	axes := []SweepAxis{
		{Name: "T", Values: []float64{210, 220}},
		{Name: "RH", Values: []float64{0.5, 0.8, 1.1}},
	}
	cases, err := ExpandSweep(axes)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 6 {
		t.Fatalf("len(cases) = %d, want 6", len(cases))
	}
	seen := map[[2]float64]bool{}
	for i, c := range cases {
		if c.Index != i {
			t.Errorf("case %d has Index=%d", i, c.Index)
		}
		key := [2]float64{c.Values["T"], c.Values["RH"]}
		if seen[key] {
			t.Errorf("duplicate case %v", key)
		}
		seen[key] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct combinations, got %d", len(seen))
	}
}

func TestExpandSweepRejectsEmptyAxis(t *testing.T) {
	axes := []SweepAxis{{Name: "T", Values: nil}}
	if _, err := ExpandSweep(axes); err == nil {
		t.Error("expected an error for an axis with no values")
	}
}

func TestRunSweepStopsAtFirstFailure(t *testing.T) {
	axes := []SweepAxis{{Name: "T", Values: []float64{1, 2, 3, 4}}}
	var ran []float64
	run := func(c SweepCase) (Status, error) {
		ran = append(ran, c.Values["T"])
		if c.Values["T"] == 3 {
			return StatusGeneric, nil
		}
		return StatusOK, nil
	}
	statuses, err := RunSweep(axes, run)
	if err != nil {
		t.Fatal(err)
	}
	if len(ran) != 3 {
		t.Fatalf("expected the sweep to stop after the 3rd case, ran %d", len(ran))
	}
	if statuses[len(statuses)-1] != StatusGeneric {
		t.Errorf("last status = %v, want StatusGeneric", statuses[len(statuses)-1])
	}
}

func TestRunSweepPropagatesError(t *testing.T) {
	axes := []SweepAxis{{Name: "T", Values: []float64{1, 2}}}
	sawErr := false
	run := func(c SweepCase) (Status, error) {
		if c.Values["T"] == 2 {
			return StatusGeneric, errTest
		}
		return StatusOK, nil
	}
	_, err := RunSweep(axes, run)
	if err != nil {
		sawErr = true
	}
	if !sawErr {
		t.Error("expected RunSweep to propagate the run error")
	}
}

var errTest = &sweepTestError{}

type sweepTestError struct{}

func (*sweepTestError) Error() string { return "sweep test failure" }
