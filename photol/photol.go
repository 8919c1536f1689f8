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

// Package photol reads a tabulated photolysis-rate lookup: J-values for
// every photolyzing species as a function of cosine(solar zenith angle).
package photol

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Table is a cosSZA-indexed table of photolysis rates, one column per
// photolyzing reaction.
type Table struct {
	CosSZA  []float64
	Columns map[string][]float64
	Names   []string
}

// Rates returns the full J-value vector at cosSZA, linearly interpolated
// between table entries, in the fixed column order Names. cosSZA <= 0
// (night) returns an all-zero vector without consulting the table.
func (t *Table) Rates(cosSZA float64) []float64 {
	out := make([]float64, len(t.Names))
	if cosSZA <= 0 {
		return out
	}
	n := len(t.CosSZA)
	if n == 0 {
		return out
	}
	clamped := cosSZA
	if clamped > t.CosSZA[n-1] {
		clamped = t.CosSZA[n-1]
	}
	if clamped < t.CosSZA[0] {
		clamped = t.CosSZA[0]
	}
	i := sort.SearchFloat64s(t.CosSZA, clamped)
	if i == 0 {
		i = 1
	}
	if i >= n {
		i = n - 1
	}
	x0, x1 := t.CosSZA[i-1], t.CosSZA[i]
	frac := 0.0
	if x1 != x0 {
		frac = (clamped - x0) / (x1 - x0)
	}
	for k, name := range t.Names {
		col := t.Columns[name]
		out[k] = col[i-1] + frac*(col[i]-col[i-1])
	}
	return out
}

// Rate returns a single reaction's rate at cosSZA by name.
func (t *Table) Rate(name string, cosSZA float64) (float64, error) {
	if _, ok := t.Columns[name]; !ok {
		return 0, fmt.Errorf("photol: no such reaction %q", name)
	}
	if cosSZA <= 0 {
		return 0, nil
	}
	full := t.Rates(cosSZA)
	for i, n := range t.Names {
		if n == name {
			return full[i], nil
		}
	}
	return 0, fmt.Errorf("photol: no such reaction %q", name)
}

// Load parses a whitespace-delimited photolysis table from path, with
// header "cosSZA <reaction1> <reaction2> ...".
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("photol: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a photolysis table from r, as described by Load.
func Parse(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	t := &Table{Columns: map[string][]float64{}}
	var header []string
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
			if len(header) == 0 || !strings.EqualFold(header[0], "cosSZA") {
				return nil, fmt.Errorf("photol: line %d: first column must be cosSZA", lineNo)
			}
			t.Names = append([]string(nil), header[1:]...)
			for _, h := range t.Names {
				t.Columns[h] = nil
			}
			continue
		}
		if len(fields) != len(header) {
			return nil, fmt.Errorf("photol: line %d: expected %d columns, got %d", lineNo, len(header), len(fields))
		}
		cos, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("photol: line %d: cosSZA: %w", lineNo, err)
		}
		t.CosSZA = append(t.CosSZA, cos)
		for i, h := range t.Names {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("photol: line %d: column %s: %w", lineNo, h, err)
			}
			t.Columns[h] = append(t.Columns[h], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("photol: scanning: %w", err)
	}
	if !sort.Float64sAreSorted(t.CosSZA) {
		return nil, fmt.Errorf("photol: cosSZA column must be sorted ascending")
	}
	return t, nil
}
