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

// Package ambient reads tabulated ambient vertical profiles: per-species
// background concentration, and bulk aerosol number density/effective
// radius/surface area density, keyed by pressure.
package ambient

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Profile is one parsed ambient vertical profile: sorted, ascending by
// pressure, with per-column value slices of the same length as Pressure.
type Profile struct {
	Pressure []float64 // Pa
	Columns  map[string][]float64
}

// ValueAt linearly interpolates column's value at pressure p, clamping to
// the profile's end values outside its range.
func (p *Profile) ValueAt(column string, pressure float64) (float64, error) {
	col, ok := p.Columns[column]
	if !ok {
		return 0, fmt.Errorf("ambient: no such column %q", column)
	}
	n := len(p.Pressure)
	if n == 0 {
		return 0, fmt.Errorf("ambient: empty profile")
	}
	if pressure <= p.Pressure[0] {
		return col[0], nil
	}
	if pressure >= p.Pressure[n-1] {
		return col[n-1], nil
	}
	i := sort.SearchFloat64s(p.Pressure, pressure)
	if i == 0 {
		return col[0], nil
	}
	p0, p1 := p.Pressure[i-1], p.Pressure[i]
	v0, v1 := col[i-1], col[i]
	frac := (pressure - p0) / (p1 - p0)
	return v0 + frac*(v1-v0), nil
}

// Load parses a whitespace-delimited ambient profile table from path. The
// first line is a header of column names; the first column must be
// "Pressure". Every subsequent line holds one value per column.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ambient: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a profile table from r, as described by Load.
func Parse(r io.Reader) (*Profile, error) {
	scanner := bufio.NewScanner(r)
	var header []string
	prof := &Profile{Columns: map[string][]float64{}}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if header == nil {
			header = fields
			if len(header) == 0 || !strings.EqualFold(header[0], "Pressure") {
				return nil, fmt.Errorf("ambient: line %d: first column must be Pressure", lineNo)
			}
			for _, h := range header[1:] {
				prof.Columns[h] = nil
			}
			continue
		}
		if len(fields) != len(header) {
			return nil, fmt.Errorf("ambient: line %d: expected %d columns, got %d", lineNo, len(header), len(fields))
		}
		vals := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("ambient: line %d: column %s: %w", lineNo, header[i], err)
			}
			vals[i] = v
		}
		prof.Pressure = append(prof.Pressure, vals[0])
		for i, h := range header[1:] {
			prof.Columns[h] = append(prof.Columns[h], vals[i+1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ambient: scanning: %w", err)
	}
	if !sort.Float64sAreSorted(prof.Pressure) {
		return nil, fmt.Errorf("ambient: pressure column must be sorted ascending")
	}
	return prof, nil
}
