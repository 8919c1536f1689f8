package apcemm

import "fmt"

// RingCluster partitions a Grid into N nested, concentric, co-centred
// ellipses of identical aspect ratio. Ring 0 is innermost; the last ring
// is the residual ambient within the mesh. A cell belongs to the
// innermost ring whose ellipse contains its centre.
type RingCluster struct {
	N      int
	Ax, Ay float64 // semi-axes of the innermost ring, m
	grow   float64 // geometric growth factor between successive ring semi-axes

	// cellRing[j][i] gives the ring index of grid cell (j,i).
	cellRing [][]int
	// members[r] lists the (j,i) pairs belonging to ring r.
	members [][][2]int
	// areas[r] is the physical area of ring r (sum of member cell areas).
	areas []float64
}

// NewRingCluster builds a cluster with nRing rings, centred at (0,0), with
// the innermost ring sized ax x ay. isContrail selects the geometric
// growth factor between successive rings (1.15 for a contrail, 1.4
// otherwise), so contrail rings stay closer together; it does not change
// the innermost ring's size, which is ax x ay in both cases.
func NewRingCluster(g *Grid, nRing int, ax, ay float64, isContrail bool) (*RingCluster, error) {
	if nRing < 1 {
		return nil, fmt.Errorf("apcemm: ring cluster needs at least 1 ring, got %d", nRing)
	}
	if ax <= 0 || ay <= 0 {
		return nil, fmt.Errorf("apcemm: ring semi-axes must be positive")
	}
	grow := 1.4
	if isContrail {
		grow = 1.15
	}
	rc := &RingCluster{N: nRing, Ax: ax, Ay: ay, grow: grow}
	rc.build(g)
	return rc, nil
}

// semiAxes returns the semi-axes of ring index r (0-based).
func (rc *RingCluster) semiAxes(r int) (ax, ay float64) {
	scale := 1.0
	for k := 0; k < r; k++ {
		scale *= rc.grow
	}
	return rc.Ax * scale, rc.Ay * scale
}

func (rc *RingCluster) build(g *Grid) {
	rc.cellRing = make([][]int, g.Ny)
	rc.members = make([][][2]int, rc.N)
	rc.areas = make([]float64, rc.N)
	for j := 0; j < g.Ny; j++ {
		rc.cellRing[j] = make([]int, g.Nx)
		y := g.Y(j)
		for i := 0; i < g.Nx; i++ {
			x := g.X(i)
			ring := rc.N - 1 // default: outermost/residual
			for r := 0; r < rc.N; r++ {
				ax, ay := rc.semiAxes(r)
				if (x*x)/(ax*ax)+(y*y)/(ay*ay) <= 1 {
					ring = r
					break
				}
			}
			rc.cellRing[j][i] = ring
			rc.members[ring] = append(rc.members[ring], [2]int{j, i})
			rc.areas[ring] += g.Area(j, i)
		}
	}
}

// RingOf returns the ring index containing cell (j,i).
func (rc *RingCluster) RingOf(j, i int) int { return rc.cellRing[j][i] }

// Members returns the (j,i) cell indices belonging to ring r.
func (rc *RingCluster) Members(r int) [][2]int { return rc.members[r] }

// Area returns the physical area of ring r.
func (rc *RingCluster) Area(r int) float64 { return rc.areas[r] }

// NeedsRebuild reports whether the cluster should be recomputed given new
// plume semi-axes (ax, ay), using a relative-change threshold. Ring maps
// are fixed otherwise, per §3.
func (rc *RingCluster) NeedsRebuild(ax, ay, threshold float64) bool {
	dax := (ax - rc.Ax) / rc.Ax
	day := (ay - rc.Ay) / rc.Ay
	return dax*dax+day*day > threshold*threshold
}

// MeanY returns the area-weighted mean grid-y coordinate of ring r's
// member cells, for chemistry steps that need a single representative
// altitude/location for the whole ring.
func (rc *RingCluster) MeanY(g *Grid, r int) float64 {
	members := rc.members[r]
	if len(members) == 0 {
		return 0
	}
	var sum, area float64
	for _, m := range members {
		a := g.Area(m[0], m[1])
		sum += g.Y(m[0]) * a
		area += a
	}
	if area == 0 {
		return 0
	}
	return sum / area
}

// AreaWeightedMean computes the area-weighted mean of f over the cells in
// ring r, for use by the per-ring chemistry mode (§4.6).
func (rc *RingCluster) AreaWeightedMean(f *Field, r int) float64 {
	members := rc.members[r]
	if len(members) == 0 {
		return 0
	}
	var sum, area float64
	g := f.Grid()
	for _, m := range members {
		a := g.Area(m[0], m[1])
		sum += f.At(m[0], m[1]) * a
		area += a
	}
	if area == 0 {
		return 0
	}
	return sum / area
}

// ApplyRingDelta applies a fractional change observed on the ring-mean
// value to every member cell: newValue = oldValue * (1 + (post-pre)/pre)
// when pre != 0, or oldValue + (post-pre) otherwise. This is the
// multiplicative-scaling resolution of the applyRing Open Question in
// spec.md §9(c) — see DESIGN.md for the rationale.
func (rc *RingCluster) ApplyRingDelta(f *Field, r int, pre, post float64) {
	members := rc.members[r]
	if pre == 0 {
		delta := post - pre
		for _, m := range members {
			f.Add(m[0], m[1], delta)
		}
		return
	}
	frac := (post - pre) / pre
	for _, m := range members {
		v := f.At(m[0], m[1])
		f.Set(m[0], m[1], v*(1+frac))
	}
}
