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

// Package apcemm simulates the near-field evolution of an aircraft exhaust
// plume on a fixed 2-D cross-stream grid: spectral transport, sectional
// aerosol microphysics, and stiff chemical kinetics, coupled by a
// fixed-order time driver.
package apcemm

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Grid is a rectangular cross-stream mesh with fixed extents and
// cell-centered coordinates. The plume centre is at (0,0); x is
// cross-wind horizontal, y is vertical.
type Grid struct {
	Nx, Ny int
	Dx, Dy float64 // m

	// SymX and SymY record whether fields on this grid are expected to be
	// mirror-symmetric across the respective axis. They are a convention
	// used by coagulation and by the symmetry-preservation test; nothing
	// in Grid enforces them.
	SymX, SymY bool

	area *sparse.DenseArray // [Ny][Nx], m^2, fixed at construction
	xc   []float64          // cell-center x coordinates
	yc   []float64          // cell-center y coordinates
}

// NewGrid builds an Nx x Ny mesh of uniform Dx x Dy cells centered on the
// origin.
func NewGrid(nx, ny int, dx, dy float64, symX, symY bool) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("apcemm: grid dimensions must be positive, got %d x %d", nx, ny)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("apcemm: grid spacing must be positive, got %g x %g", dx, dy)
	}
	g := &Grid{
		Nx: nx, Ny: ny,
		Dx: dx, Dy: dy,
		SymX: symX, SymY: symY,
		area: sparse.ZerosDense(ny, nx),
		xc:   make([]float64, nx),
		yc:   make([]float64, ny),
	}
	x0 := -float64(nx-1) * dx / 2
	y0 := -float64(ny-1) * dy / 2
	for i := 0; i < nx; i++ {
		g.xc[i] = x0 + float64(i)*dx
	}
	for j := 0; j < ny; j++ {
		g.yc[j] = y0 + float64(j)*dy
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			g.area.Set(dx*dy, j, i)
		}
	}
	return g, nil
}

// X returns the cell-center x coordinate of column i.
func (g *Grid) X(i int) float64 { return g.xc[i] }

// Y returns the cell-center y coordinate of row j.
func (g *Grid) Y(j int) float64 { return g.yc[j] }

// Area returns the area of cell (j,i) in m^2.
func (g *Grid) Area(j, i int) float64 { return g.area.Get(j, i) }

// Field is a 2-D array of non-negative reals on a Grid: concentrations in
// molecules*cm^-3 or number densities in particles*cm^-3. After every
// operation that may produce negative values, either all values are >= 0,
// or Refill has been applied.
type Field struct {
	g    *Grid
	data *sparse.DenseArray // [Ny][Nx]
}

// NewField allocates a zeroed field on g.
func NewField(g *Grid) *Field {
	return &Field{g: g, data: sparse.ZerosDense(g.Ny, g.Nx)}
}

// Grid returns the grid the field is defined on.
func (f *Field) Grid() *Grid { return f.g }

// At returns the value at row j, column i.
func (f *Field) At(j, i int) float64 { return f.data.Get(j, i) }

// Set assigns the value at row j, column i.
func (f *Field) Set(j, i int, v float64) { f.data.Set(v, j, i) }

// Add increments the value at row j, column i.
func (f *Field) Add(j, i int, v float64) { f.data.AddVal(v, j, i) }

// Clone returns an independent copy of f.
func (f *Field) Clone() *Field {
	return &Field{g: f.g, data: f.data.Copy()}
}

// Fill sets every cell of f to v.
func (f *Field) Fill(v float64) {
	for i := range f.data.Elements {
		f.data.Elements[i] = v
	}
}

// Mass returns sum(c[j][i] * area[j][i]), the total column-integrated mass
// represented by the field (up to the unit convention of the caller).
func (f *Field) Mass() float64 {
	var sum float64
	for j := 0; j < f.g.Ny; j++ {
		for i := 0; i < f.g.Nx; i++ {
			sum += f.data.Get(j, i) * f.g.Area(j, i)
		}
	}
	return sum
}

// Sum returns the unweighted sum of all cell values.
func (f *Field) Sum() float64 { return f.data.Sum() }

// Refill replaces every negative value with floor. It reports how many
// cells were refilled, for debug-level logging by the caller.
func (f *Field) Refill(floor float64) (nRefilled int) {
	for i, v := range f.data.Elements {
		if v < 0 {
			f.data.Elements[i] = floor
			nRefilled++
		}
	}
	return nRefilled
}

// HasNegative reports whether any cell of f is negative.
func (f *Field) HasNegative() bool {
	for _, v := range f.data.Elements {
		if v < 0 {
			return true
		}
	}
	return false
}

// IsEvenX reports whether f is mirror-symmetric across the x axis (i.e.
// even in x) to within tol.
func (f *Field) IsEvenX(tol float64) bool {
	nx := f.g.Nx
	for j := 0; j < f.g.Ny; j++ {
		for i := 0; i < nx; i++ {
			mirror := nx - 1 - i
			if math.Abs(f.data.Get(j, i)-f.data.Get(j, mirror)) > tol {
				return false
			}
		}
	}
	return true
}

// IsEvenY reports whether f is mirror-symmetric across the y axis to
// within tol.
func (f *Field) IsEvenY(tol float64) bool {
	ny := f.g.Ny
	for j := 0; j < ny; j++ {
		mirror := ny - 1 - j
		for i := 0; i < f.g.Nx; i++ {
			if math.Abs(f.data.Get(j, i)-f.data.Get(mirror, i)) > tol {
				return false
			}
		}
	}
	return true
}

// Raw exposes the underlying dense array for subsystems (transport,
// coagulation) that need direct element access for performance. Callers
// must preserve the [Ny][Nx] shape.
func (f *Field) Raw() *sparse.DenseArray { return f.data }
