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

// Package chem implements the stiff gas-phase chemical mechanism driven by
// the apcemm time stepper: a species table, Arrhenius and heterogeneous
// rate constants, and a Rosenbrock integrator.
package chem

// Designation classifies how a species is carried through a simulation.
type Designation int

const (
	Fixed Designation = iota
	Variable
	AerosolBulk
)

// Species describes one chemical species in the mechanism's table.
type Species struct {
	Name        string
	MolarMass   float64 // g/mol
	Designation Designation
}

// Table is an ordered, name-indexed species list.
type Table struct {
	species []Species
	byName  map[string]int
}

// NewTable builds a Table from species, in the given order. Variable
// species occupy indices [0, NumVariable), fixed species occupy
// [NumVariable, NumVariable+NumFixed).
func NewTable(species []Species) *Table {
	t := &Table{byName: map[string]int{}}
	var variable, fixed []Species
	for _, s := range species {
		if s.Designation == Fixed {
			fixed = append(fixed, s)
		} else {
			variable = append(variable, s)
		}
	}
	t.species = append(variable, fixed...)
	for i, s := range t.species {
		t.byName[s.Name] = i
	}
	return t
}

// Index returns the table index of name, or ok=false if absent.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// NumVariable returns the number of variable (integrated) species.
func (t *Table) NumVariable() int {
	n := 0
	for _, s := range t.species {
		if s.Designation != Fixed {
			n++
		}
	}
	return n
}

// NumFixed returns the number of fixed (background) species.
func (t *Table) NumFixed() int {
	return len(t.species) - t.NumVariable()
}

// MolarMass returns the molar mass of the species at index i.
func (t *Table) MolarMass(i int) float64 { return t.species[i].MolarMass }

// Name returns the name of the species at index i.
func (t *Table) Name(i int) string { return t.species[i].Name }

// DefaultTable returns the standard APCEMM tropospheric/lower-stratospheric
// mechanism's species table: the core NOy/HOx/Ox/sulfur/halogen family
// used by the near-field plume model.
func DefaultTable() *Table {
	return NewTable([]Species{
		{"O3", 48.00, Variable},
		{"NO", 30.01, Variable},
		{"NO2", 46.01, Variable},
		{"NO3", 62.00, Variable},
		{"N2O5", 108.01, Variable},
		{"HNO3", 63.01, Variable},
		{"HNO4", 79.01, Variable},
		{"OH", 17.01, Variable},
		{"HO2", 33.01, Variable},
		{"H2O2", 34.01, Variable},
		{"CO", 28.01, Variable},
		{"CO2", 44.01, Variable},
		{"SO2", 64.06, Variable},
		{"SO4", 96.06, Variable},
		{"CH4", 16.04, Variable},
		{"HCHO", 30.03, Variable},
		{"ClONO2", 97.46, Variable},
		{"BrONO2", 141.91, Variable},
		{"Cl", 35.45, Variable},
		{"ClO", 51.45, Variable},
		{"H2O", 18.02, Fixed},
		{"M", 28.96, Fixed},
		{"O2", 32.00, Fixed},
		{"N2", 28.01, Fixed},
	})
}
