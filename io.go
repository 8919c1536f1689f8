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
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
)

// WriteSnapshot writes the current species, aerosol, ring, and diagnostic
// state to a NetCDF file under sim.OutDir, following the ts_*.nc /
// ts_aerosol_*.nc naming convention: one species/diagnostics file and one
// aerosol-sectional file per call.
func (sim *Simulation) WriteSnapshot(tNow float64) error {
	if sim.OutDir == "" {
		return fmt.Errorf("apcemm: no output directory configured")
	}
	if err := os.MkdirAll(sim.OutDir, 0o755); err != nil {
		return fmt.Errorf("apcemm: creating output directory: %w", err)
	}

	speciesPath := filepath.Join(sim.OutDir, fmt.Sprintf("ts_%08.1f.nc", tNow))
	if err := sim.writeSpeciesFile(speciesPath, tNow); err != nil {
		return err
	}

	aerosolPath := filepath.Join(sim.OutDir, fmt.Sprintf("ts_aerosol_%08.1f.nc", tNow))
	return sim.writeAerosolFile(aerosolPath, tNow)
}

func (sim *Simulation) writeSpeciesFile(path string, tNow float64) error {
	g := sim.Grid
	h := cdf.NewHeader(
		[]string{"y", "x"},
		[]int{g.Ny, g.Nx},
	)
	h.AddAttribute("", "time", []float64{tNow})
	h.AddAttribute("", "NOy", []float64{sim.Diagnostics.NOy})
	h.AddAttribute("", "CO2", []float64{sim.Diagnostics.CO2})
	h.AddAttribute("", "emittedMass", []float64{sim.Diagnostics.EmittedMass})
	h.AddAttribute("", "ringMass", []float64{sim.Diagnostics.RingMass})

	names := make([]string, 0, len(sim.Species))
	for idx := range sim.Species {
		name := fmt.Sprintf("species_%02d", idx)
		if sim.Mech != nil {
			if n, ok := speciesNameFromIndex(sim.Mech, idx); ok {
				name = n
			}
		}
		names = append(names, name)
		h.AddVariable(name, []string{"y", "x"}, []float32{0})
	}
	if sim.SO4Gas != nil {
		h.AddVariable("SO4_gas", []string{"y", "x"}, []float32{0})
		h.AddVariable("SO4_liquid", []string{"y", "x"}, []float32{0})
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("apcemm: creating %s: %w", path, err)
	}
	defer f.Close()

	w, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("apcemm: writing header for %s: %w", path, err)
	}
	for idx, name := range names {
		if err := writeField(w, name, sim.Species[idx]); err != nil {
			return err
		}
	}
	if sim.SO4Gas != nil {
		if err := writeField(w, "SO4_gas", sim.SO4Gas); err != nil {
			return err
		}
		if err := writeField(w, "SO4_liquid", sim.SO4Liq); err != nil {
			return err
		}
	}
	return nil
}

func (sim *Simulation) writeAerosolFile(path string, tNow float64) error {
	g := sim.Grid
	h := cdf.NewHeader([]string{"y", "x"}, []int{g.Ny, g.Nx})
	h.AddAttribute("", "time", []float64{tNow})
	h.AddAttribute("", "liquidVolume", []float64{sim.Diagnostics.LiquidAerosolVolume})
	h.AddAttribute("", "solidVolume", []float64{sim.Diagnostics.SolidAerosolVolume})
	h.AddAttribute("", "liquidNumber", []float64{sim.Diagnostics.LiquidAerosolNumber})
	h.AddAttribute("", "solidNumber", []float64{sim.Diagnostics.SolidAerosolNumber})

	for bi := range sim.LA.Fields {
		h.AddVariable(fmt.Sprintf("LA_bin%02d", bi), []string{"y", "x"}, []float32{0})
	}
	for bi := range sim.PA.Fields {
		h.AddVariable(fmt.Sprintf("PA_bin%02d", bi), []string{"y", "x"}, []float32{0})
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("apcemm: creating %s: %w", path, err)
	}
	defer f.Close()

	w, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("apcemm: writing header for %s: %w", path, err)
	}
	for bi, fld := range sim.LA.Fields {
		if err := writeField(w, fmt.Sprintf("LA_bin%02d", bi), fld); err != nil {
			return err
		}
	}
	for bi, fld := range sim.PA.Fields {
		if err := writeField(w, fmt.Sprintf("PA_bin%02d", bi), fld); err != nil {
			return err
		}
	}
	return nil
}

func writeField(w *cdf.File, name string, f *Field) error {
	g := f.Grid()
	raw := f.Raw()
	writer := w.Writer(name, []int{0, 0}, []int{g.Ny, g.Nx})
	data := make([]float32, len(raw.Elements))
	for i, v := range raw.Elements {
		data[i] = float32(v)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("apcemm: writing %s: %w", name, err)
	}
	return nil
}

// speciesNameFromIndex returns the name of variable species idx when m
// also implements an optional SpeciesName method; Mechanism itself has no
// reverse lookup, so ok is false otherwise and callers fall back to a
// generated "species_NN" name.
func speciesNameFromIndex(m Mechanism, idx int) (string, bool) {
	type namer interface {
		SpeciesName(idx int) (string, bool)
	}
	if n, ok := m.(namer); ok {
		return n.SpeciesName(idx)
	}
	return "", false
}
