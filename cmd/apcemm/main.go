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

// Command apcemm runs a near-field aircraft plume simulation from a
// run-directory menu file.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/fritzt/APCEMM"
	"github.com/fritzt/APCEMM/ambient"
	"github.com/fritzt/APCEMM/chem"
	"github.com/fritzt/APCEMM/config"
	"github.com/fritzt/APCEMM/photol"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runDir string

var rootCmd = &cobra.Command{
	Use:   "apcemm [run directory]",
	Short: "Run a near-field aircraft plume simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDir = args[0]
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(apcemm.StatusGeneric.ExitCode())
	}
	status, err := run(runDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(status.ExitCode())
}

func run(runDir string) (apcemm.Status, error) {
	menuPath := runDir + "/input.apcemm"
	menu, err := config.Load(menuPath)
	if err != nil {
		return apcemm.StatusGeneric, err
	}

	nx, err := menu.Int(config.SectionTransport, "NX")
	if err != nil {
		nx = 201
	}
	ny, err := menu.Int(config.SectionTransport, "NY")
	if err != nil {
		ny = 201
	}
	dx, err := menu.Float64(config.SectionTransport, "DX")
	if err != nil {
		dx = 20
	}
	dy, err := menu.Float64(config.SectionTransport, "DY")
	if err != nil {
		dy = 10
	}
	tFinal, err := menu.Float64(config.SectionSimulation, "MAX_TRAVEL_TIME")
	if err != nil {
		tFinal = 24 * 3600
	}
	transportDt, err := menu.Float64(config.SectionTransport, "TRANSPORT_TIMESTEP")
	if err != nil {
		transportDt = 10
	}

	grid, err := apcemm.NewGrid(nx, ny, dx, dy, true, false)
	if err != nil {
		return apcemm.StatusGeneric, fmt.Errorf("building grid: %w", err)
	}

	latDeg, err := menu.Float64(config.SectionMeteorology, "LATITUDE")
	if err != nil {
		latDeg = 45
	}
	dayOfYear, err := menu.Int(config.SectionMeteorology, "DAY_OF_YEAR")
	if err != nil {
		dayOfYear = 172
	}
	startUTC, err := menu.Float64(config.SectionMeteorology, "START_UTC")
	if err != nil {
		startUTC = 8
	}

	// The solar clock reads startUTC at t=0, so sunrise/sunset hours are
	// shifted onto simulation time, for this day and the next.
	var breakpoints []float64
	if sunrise, sunset, ok := apcemm.SunriseSunsetHours(latDeg, dayOfYear); ok {
		for _, h := range []float64{sunrise, sunset} {
			tb := math.Mod(h-startUTC+24, 24) * 3600
			breakpoints = append(breakpoints, tb, tb+24*3600)
		}
	}
	timeGrid, err := apcemm.BuildTimeGrid(tFinal, transportDt, breakpoints...)
	if err != nil {
		return apcemm.StatusGeneric, fmt.Errorf("building time grid: %w", err)
	}

	laBins, err := apcemm.NewBinSet(20, 1e-9, 1e-6)
	if err != nil {
		return apcemm.StatusGeneric, err
	}
	paBins, err := apcemm.NewBinSet(20, 1e-8, 1e-5)
	if err != nil {
		return apcemm.StatusGeneric, err
	}

	metT0, err := menu.Float64(config.SectionMeteorology, "TEMPERATURE")
	if err != nil {
		metT0 = 220
	}
	metP0, err := menu.Float64(config.SectionMeteorology, "PRESSURE")
	if err != nil {
		metP0 = 25000
	}
	metRHw, err := menu.Float64(config.SectionMeteorology, "RHW")
	if err != nil {
		metRHw = 0.6
	}
	met := apcemm.NewMeteorology(metT0, metP0, metRHw)
	airDensity := apcemm.AirNumberDensity(met.Pressure(0), met.Temperature(0))

	var ambientProfile *ambient.Profile
	if path, err := menu.String(config.SectionMeteorology, "AMBIENT_FILE"); err == nil && path != "" {
		ambientProfile, err = ambient.Load(path)
		if err != nil {
			return apcemm.StatusGeneric, fmt.Errorf("loading ambient profile: %w", err)
		}
	}

	var photolTable *photol.Table
	if path, err := menu.String(config.SectionMeteorology, "PHOTOLYSIS_FILE"); err == nil && path != "" {
		photolTable, err = photol.Load(path)
		if err != nil {
			return apcemm.StatusGeneric, fmt.Errorf("loading photolysis table: %w", err)
		}
	}

	mech := chem.NewMechanism(1e-3, 1e-6, 1e-3)
	species := make([]*apcemm.Field, mech.NumVariable())
	for i := range species {
		species[i] = apcemm.NewField(grid)
		if ambientProfile == nil {
			continue
		}
		if name, ok := mech.SpeciesName(i); ok {
			if v, err := ambientProfile.ValueAt(name, met.Pressure(0)); err == nil {
				species[i].Fill(v)
			}
		}
	}

	sim := &apcemm.Simulation{
		Grid:         grid,
		Met:          met,
		LA:           apcemm.NewPopulation(laBins, grid, true),
		PA:           apcemm.NewPopulation(paBins, grid, false),
		Sands:        apcemm.NewSANDS("", true),
		Mech:         mech,
		FixedSpecies: []float64{airDensity},
		Species:      species,
		Solar: apcemm.SolarClock{
			LatDeg:    latDeg,
			DayOfYear: dayOfYear,
			StartUTC:  startUTC,
		},
		Photol: photolTable,
		OutDir: runDir + "/out",
		Log:    logrus.New(),
		Cadence: apcemm.Cadence{
			LiqCoagStep:   60,
			IceCoagStep:   60,
			SaveSpeciesDt: 600,
			SaveAerosolDt: 600,
		},
	}
	sim.LA.ComputeKernel(met.Temperature(0), met.Pressure(0), true)
	sim.PA.ComputeKernel(met.Temperature(0), met.Pressure(0), false)

	logStep := apcemm.Log(os.Stdout)
	var tPrev float64
	for i, t := range timeGrid {
		if i == 0 {
			continue
		}
		dt := t - tPrev
		final := i == len(timeGrid)-1
		status, err := sim.Step(dt, t, final)
		logStep(i, t, dt)
		if err != nil {
			return status, err
		}
		tPrev = t
	}
	return apcemm.StatusOK, nil
}
