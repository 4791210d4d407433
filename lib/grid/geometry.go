package grid

import (
	"math"

	"github.com/phil-mansfield/eclio/lib/ecl"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// loadGeometry reads COORD and ZCORN if they haven't been read yet.
func (g *Grid) loadGeometry() error {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if g.coord != nil { return nil }

	coord, err := g.floats("COORD", (g.nx + 1)*(g.ny + 1)*6)
	if err != nil { return err }
	zcorn, err := g.floats("ZCORN", 8*g.Cells())
	if err != nil { return err }

	g.coord, g.zcorn = coord, zcorn
	return nil
}

// floats reads the first array called name as float64s and checks its
// length.
func (g *Grid) floats(name string, n int) ([]float64, error) {
	x, err := g.file.GetNamed(name)
	if err != nil { return nil, err }

	var out []float64
	switch x := x.(type) {
	case []float32:
		out = make([]float64, len(x))
		for i := range x { out[i] = float64(x[i]) }
	case []float64:
		out = x
	default:
		t, _, _ := ecl.TypeOf(x)
		return nil, ecl.Errorf(ecl.ErrType, g.Path(), "%s must be REAL or " +
			"DOUB, not %s.", name, t).WithKey(name)
	}

	if len(out) != n {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, g.Path(), "%s has %d " +
			"elements, but the grid needs %d.", name, len(out), n).WithKey(name)
	} else if floats.HasNaN(out) {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, g.Path(), "%s contains " +
			"NaN values.", name).WithKey(name)
	}
	return out, nil
}

// CellCorners returns the corners of the cell with the given global index.
// Corners 0 to 3 are the top face at (i, j), (i+1, j), (i, j+1) and
// (i+1, j+1). Corners 4 to 7 are the bottom face in the same order.
func (g *Grid) CellCorners(idx int) ([8][3]float64, error) {
	out := [8][3]float64{ }
	i, j, k, err := g.IJKFromGlobal(idx)
	if err != nil { return out, err }
	if err := g.loadGeometry(); err != nil { return out, err }

	p := j*(g.nx + 1)*6 + i*6
	row := (g.nx + 1)*6
	pillars := [4]int{ p, p + 6, p + row, p + row + 6 }

	z := k*g.nx*g.ny*8 + j*g.nx*4 + i*2
	tops := [4]int{ z, z + 1, z + 2*g.nx, z + 2*g.nx + 1 }
	layer := g.nx*g.ny*4

	for c := 0; c < 8; c++ {
		pc := g.coord[pillars[c % 4]: pillars[c % 4] + 6]
		depth := g.zcorn[tops[c % 4] + (c / 4)*layer]
		out[c] = pillarPoint(pc, depth)
	}
	return out, nil
}

// pillarPoint returns the point at the given depth on the line through the
// two points of a pillar, [xt, yt, zt, xb, yb, zb].
func pillarPoint(p []float64, depth float64) [3]float64 {
	xt, yt, zt := p[0], p[1], p[2]
	xb, yb, zb := p[3], p[4], p[5]
	if zt == zb { return [3]float64{ xt, yt, depth } }

	f := (zt - depth) / (zt - zb)
	return [3]float64{ xt + (xb - xt)*f, yt + (yb - yt)*f, depth }
}

// gauss is the two-point Gauss-Legendre rule on [0, 1].
var gauss = [2]float64{ 0.5 - 0.5/math.Sqrt(3), 0.5 + 0.5/math.Sqrt(3) }

// CellVolume returns the volume of the cell with the given global index. The
// cell is treated as a trilinear hexahedron, so warped faces are handled
// exactly.
func (g *Grid) CellVolume(idx int) (float64, error) {
	c, err := g.CellCorners(idx)
	if err != nil { return 0, err }

	x := [8]r3.Vec{ }
	for i := range c { x[i] = r3.Vec{ X: c[i][0], Y: c[i][1], Z: c[i][2] } }

	vol := 0.0
	for _, u := range gauss {
		for _, v := range gauss {
			for _, w := range gauss {
				vol += math.Abs(jacobian(&x, u, v, w)) / 8
			}
		}
	}
	return vol, nil
}

// jacobian returns the determinant of the derivative of the trilinear map
// from the unit cube onto the hexahedron x at (u, v, w). Corner c sits at
// (c&1, c>>1&1, c>>2&1) in the unit cube.
func jacobian(x *[8]r3.Vec, u, v, w float64) float64 {
	du, dv, dw := r3.Vec{ }, r3.Vec{ }, r3.Vec{ }
	for c := 0; c < 8; c++ {
		fu, su := weight(c & 1, u)
		fv, sv := weight(c >> 1 & 1, v)
		fw, sw := weight(c >> 2 & 1, w)

		du = r3.Add(du, r3.Scale(su*fv*fw, x[c]))
		dv = r3.Add(dv, r3.Scale(fu*sv*fw, x[c]))
		dw = r3.Add(dw, r3.Scale(fu*fv*sw, x[c]))
	}
	return r3.Dot(r3.Cross(du, dv), dw)
}

// weight returns the linear shape function of a corner along one axis and
// its derivative.
func weight(bit int, t float64) (f, df float64) {
	if bit == 1 { return t, 1 }
	return 1 - t, -1
}

// CellCenter returns the mean of the corners of a cell.
func (g *Grid) CellCenter(idx int) ([3]float64, error) {
	c, err := g.CellCorners(idx)
	if err != nil { return [3]float64{ }, err }

	sum := r3.Vec{ }
	for i := range c {
		sum = r3.Add(sum, r3.Vec{ X: c[i][0], Y: c[i][1], Z: c[i][2] })
	}
	mean := r3.Scale(1.0/8, sum)
	return [3]float64{ mean.X, mean.Y, mean.Z }, nil
}
