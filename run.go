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
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// Status is the terminal outcome of a simulation run, matching the
// command-line exit codes.
type Status int

const (
	StatusOK Status = iota
	StatusGeneric
	StatusKPPFail
	StatusSaveFail
)

// ExitCode returns the process exit code corresponding to s.
func (s Status) ExitCode() int { return int(s) }

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusKPPFail:
		return "chemistry solver failure"
	case StatusSaveFail:
		return "snapshot write failure"
	default:
		return "generic failure"
	}
}

// Cadence tracks the last time an optional subsystem fired, so the driver
// can decide whether it is due again on the current step.
type Cadence struct {
	LiqCoagStep   float64
	IceCoagStep   float64
	SaveSpeciesDt float64
	SaveAerosolDt float64

	lastLiqCoag  float64
	lastIceCoag  float64
	lastSaveSpec float64
	lastSaveAero float64
}

func (c *Cadence) due(last, step, now float64, final bool) bool {
	if step <= 0 {
		return false
	}
	return final || now-last >= step
}

// BuildTimeGrid constructs the strictly increasing simulation time grid
// from 0 to tFinal (inclusive), with steps no larger than transportDt and
// additional breakpoints inserted at sunrise/sunset so that the sharp
// photolysis transition always falls exactly on a grid point.
func BuildTimeGrid(tFinal, transportDt float64, breakpoints ...float64) ([]float64, error) {
	if tFinal <= 0 {
		return nil, fmt.Errorf("apcemm: tFinal must be positive")
	}
	if transportDt <= 0 {
		return nil, fmt.Errorf("apcemm: transportDt must be positive")
	}

	marks := map[float64]bool{0: true, tFinal: true}
	for _, b := range breakpoints {
		if b > 0 && b < tFinal {
			marks[b] = true
		}
	}
	sorted := make([]float64, 0, len(marks))
	for t := range marks {
		sorted = append(sorted, t)
	}
	sortFloat64s(sorted)

	grid := []float64{0}
	for k := 1; k < len(sorted); k++ {
		segStart, segEnd := sorted[k-1], sorted[k]
		n := int((segEnd-segStart)/transportDt + 0.999999)
		if n < 1 {
			n = 1
		}
		dt := (segEnd - segStart) / float64(n)
		t := segStart
		for s := 0; s < n; s++ {
			t += dt
			grid = append(grid, t)
		}
	}
	return grid, nil
}

func sortFloat64s(a []float64) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// CellFunc operates on a single grid cell, given its indices and the
// timestep size.
type CellFunc func(j, i int, dt float64) error

// ParallelCells runs fn over every cell of an Ny x Nx grid concurrently,
// sharded across GOMAXPROCS goroutines, mirroring the worker-pool split
// used for per-cell chemistry.
func ParallelCells(ny, nx int, dt float64, fn CellFunc) error {
	nprocs := runtime.GOMAXPROCS(0)
	total := ny * nx
	if nprocs > total {
		nprocs = total
	}
	if nprocs < 1 {
		nprocs = 1
	}

	var wg sync.WaitGroup
	errs := make([]error, nprocs)
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for idx := pp; idx < total; idx += nprocs {
				j, i := idx/nx, idx%nx
				if err := fn(j, i, dt); err != nil {
					errs[pp] = err
					return
				}
			}
		}(pp)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Step advances a Simulation by one entry of its time grid, applying the
// fixed operator-split order: transport, SO4 partitioning, chemistry,
// coagulation, microphysical growth, diagnostics, snapshot. Coagulation
// and snapshot writes are subject to their own cadence and may be skipped
// on steps where they are not due, except on the final step when every
// deferred subsystem is forced to fire so no pending output is lost.
func (sim *Simulation) Step(dt, tNow float64, final bool) (Status, error) {
	log := sim.logger().WithFields(logrus.Fields{"t": tNow, "dt": dt})

	if err := sim.transportStep(dt); err != nil {
		log.WithError(err).Error("transport step failed")
		return StatusGeneric, fmt.Errorf("apcemm: transport at t=%g: %w", tNow, err)
	}

	sim.partitionSO4()

	sim.updateSolar(tNow)

	if err := sim.chemistryStep(dt, tNow); err != nil {
		log.WithError(err).Error("chemistry step failed")
		return StatusKPPFail, fmt.Errorf("apcemm: chemistry at t=%g: %w", tNow, err)
	}

	if sim.Cadence.due(sim.Cadence.lastLiqCoag, sim.Cadence.LiqCoagStep, tNow, final) {
		if err := sim.LA.Coagulate(tNow-sim.Cadence.lastLiqCoag, sim.sym()); err != nil {
			return StatusGeneric, fmt.Errorf("apcemm: liquid coagulation at t=%g: %w", tNow, err)
		}
		sim.Cadence.lastLiqCoag = tNow
	}
	if sim.Cadence.due(sim.Cadence.lastIceCoag, sim.Cadence.IceCoagStep, tNow, final) {
		if err := sim.PA.Coagulate(tNow-sim.Cadence.lastIceCoag, sim.sym()); err != nil {
			return StatusGeneric, fmt.Errorf("apcemm: ice coagulation at t=%g: %w", tNow, err)
		}
		sim.Cadence.lastIceCoag = tNow
	}

	if err := sim.growthStep(dt); err != nil {
		log.WithError(err).Error("growth step failed")
		return StatusGeneric, fmt.Errorf("apcemm: growth at t=%g: %w", tNow, err)
	}

	sim.updateDiagnostics(tNow)

	if sim.Cadence.due(sim.Cadence.lastSaveSpec, sim.Cadence.SaveSpeciesDt, tNow, final) ||
		sim.Cadence.due(sim.Cadence.lastSaveAero, sim.Cadence.SaveAerosolDt, tNow, final) {
		if err := sim.writeSnapshotRetry(tNow); err != nil {
			log.WithError(err).Error("snapshot write failed")
			return StatusSaveFail, fmt.Errorf("apcemm: snapshot at t=%g: %w", tNow, err)
		}
		sim.Cadence.lastSaveSpec = tNow
		sim.Cadence.lastSaveAero = tNow
	}

	return StatusOK, nil
}

// writeSnapshotRetry wraps the snapshot writer with exponential backoff,
// since the snapshot store may be a networked filesystem subject to
// transient failures.
func (sim *Simulation) writeSnapshotRetry(tNow float64) error {
	op := func() error { return sim.WriteSnapshot(tNow) }
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(op, bo)
}

func (sim *Simulation) sym() Sym {
	symBoth := sim.Grid.SymX && sim.Grid.SymY
	symOne := sim.Grid.SymX || sim.Grid.SymY
	switch {
	case symBoth:
		return SymBothAxes
	case symOne:
		return SymOneAxis
	default:
		return SymNone
	}
}

// Log writes one progress line per call to w, mirroring the teacher's
// walltime/timestep status line.
func Log(w io.Writer) func(iteration int, tSim, dt float64) {
	start := time.Now()
	last := time.Now()
	return func(iteration int, tSim, dt float64) {
		fmt.Fprintf(w, "step %-5d  walltime=%6.3gh  Δwalltime=%4.2gs  dt=%6.2fs  t=%8.1fs\n",
			iteration, time.Since(start).Hours(), time.Since(last).Seconds(), dt, tSim)
		last = time.Now()
	}
}
