/*package grid reads corner-point grids from EGRID files.

A grid has nx * ny * nz cells. Cell (i, j, k) has the global index
i + nx*(j + ny*k), and the active cells are numbered in the same order,
skipping cells whose ACTNUM is zero. Every index in this package is 0-based.

Cells are hexahedra hung between vertical-ish lines called pillars (COORD),
with the depths of the eight corners given by ZCORN.
*/
package grid

import (
	"sync"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
)

// Grid is an opened grid file. Geometry is read on the first call which
// needs it.
type Grid struct {
	file *eclfile.File
	nx, ny, nz int

	activeIndex []int
	globalIndex []int

	mtx sync.Mutex
	coord, zcorn []float64
}

// Open reads the dimensions and ACTNUM of the global grid in an EGRID or
// FEGRID file. Local grid refinements are ignored.
func Open(path string) (*Grid, error) {
	f, err := eclfile.Open(path)
	if err != nil { return nil, err }

	g, err := newGrid(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return g, nil
}

func newGrid(f *eclfile.File) (*Grid, error) {
	g := &Grid{ file: f }

	var dims []int32
	if head, err := f.IntsNamed("GRIDHEAD"); err == nil {
		if len(head) < 4 {
			return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "GRIDHEAD " +
				"has %d elements instead of at least 4.", len(head))
		}
		dims = head[1:4]
	} else if spec, err := f.IntsNamed("SPECGRID"); err == nil {
		if len(spec) < 3 {
			return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "SPECGRID " +
				"has %d elements instead of at least 3.", len(spec))
		}
		dims = spec[0:3]
	} else {
		return nil, ecl.Errorf(ecl.ErrNotFound, f.Path(), "The file has " +
			"neither a GRIDHEAD nor a SPECGRID array.").WithKey("GRIDHEAD")
	}

	g.nx, g.ny, g.nz = int(dims[0]), int(dims[1]), int(dims[2])
	if g.nx <= 0 || g.ny <= 0 || g.nz <= 0 {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "The grid " +
			"has dimensions (%d, %d, %d).", g.nx, g.ny, g.nz)
	}
	n := g.Cells()

	g.activeIndex = make([]int, n)
	if !f.Has("ACTNUM") {
		g.globalIndex = make([]int, n)
		for i := range g.activeIndex {
			g.activeIndex[i], g.globalIndex[i] = i, i
		}
		return g, nil
	}

	actnum, err := f.IntsNamed("ACTNUM")
	if err != nil { return nil, err }
	if len(actnum) != n {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "ACTNUM has " +
			"%d elements, but the grid has %d cells.", len(actnum), n).
			WithKey("ACTNUM")
	}
	for i := range actnum {
		if actnum[i] > 0 {
			g.activeIndex[i] = len(g.globalIndex)
			g.globalIndex = append(g.globalIndex, i)
		} else {
			g.activeIndex[i] = -1
		}
	}

	return g, nil
}

// Close closes the underlying file.
func (g *Grid) Close() error { return g.file.Close() }

// Path returns the path of the grid file.
func (g *Grid) Path() string { return g.file.Path() }

// Dimension returns the number of cells along each axis.
func (g *Grid) Dimension() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

// Cells returns nx * ny * nz.
func (g *Grid) Cells() int { return g.nx*g.ny*g.nz }

// ActiveCells returns the number of active cells.
func (g *Grid) ActiveCells() int { return len(g.globalIndex) }

func (g *Grid) errIJK(i, j, k int) error {
	return ecl.Errorf(ecl.ErrIndexOutOfRange, g.Path(), "Cell (%d, %d, %d) " +
		"is outside the (%d, %d, %d) grid.", i, j, k, g.nx, g.ny, g.nz)
}

func (g *Grid) checkGlobal(idx int) error {
	if idx < 0 || idx >= g.Cells() {
		return ecl.Errorf(ecl.ErrIndexOutOfRange, g.Path(), "Global index " +
			"%d is outside the range [0, %d).", idx, g.Cells()).WithIndex(idx)
	}
	return nil
}

// GlobalIndex returns the global index of cell (i, j, k).
func (g *Grid) GlobalIndex(i, j, k int) (int, error) {
	if i < 0 || i >= g.nx || j < 0 || j >= g.ny || k < 0 || k >= g.nz {
		return -1, g.errIJK(i, j, k)
	}
	return i + g.nx*(j + g.ny*k), nil
}

// IJKFromGlobal is the inverse of GlobalIndex.
func (g *Grid) IJKFromGlobal(idx int) (i, j, k int, err error) {
	if err := g.checkGlobal(idx); err != nil { return -1, -1, -1, err }
	i = idx % g.nx
	j = (idx / g.nx) % g.ny
	k = idx / (g.nx*g.ny)
	return i, j, k, nil
}

// IsActive returns true if the cell with the given global index is active.
// Indices outside the grid are never active.
func (g *Grid) IsActive(idx int) bool {
	return idx >= 0 && idx < len(g.activeIndex) && g.activeIndex[idx] >= 0
}

// ActiveFromGlobal converts a global index into an active index.
func (g *Grid) ActiveFromGlobal(idx int) (int, error) {
	if err := g.checkGlobal(idx); err != nil { return -1, err }
	if g.activeIndex[idx] < 0 {
		i, j, k, _ := g.IJKFromGlobal(idx)
		return -1, ecl.Errorf(ecl.ErrNotActive, g.Path(), "Cell (%d, %d, %d) " +
			"is not active.", i, j, k).WithIndex(idx)
	}
	return g.activeIndex[idx], nil
}

// GlobalFromActive converts an active index into a global index.
func (g *Grid) GlobalFromActive(a int) (int, error) {
	if a < 0 || a >= len(g.globalIndex) {
		return -1, ecl.Errorf(ecl.ErrIndexOutOfRange, g.Path(), "Active " +
			"index %d is outside the range [0, %d).", a, len(g.globalIndex)).
			WithIndex(a)
	}
	return g.globalIndex[a], nil
}

// ActiveIndex returns the active index of cell (i, j, k).
func (g *Grid) ActiveIndex(i, j, k int) (int, error) {
	idx, err := g.GlobalIndex(i, j, k)
	if err != nil { return -1, err }
	return g.ActiveFromGlobal(idx)
}

// IJKFromActive is the inverse of ActiveIndex.
func (g *Grid) IJKFromActive(a int) (i, j, k int, err error) {
	idx, err := g.GlobalFromActive(a)
	if err != nil { return -1, -1, -1, err }
	return g.IJKFromGlobal(idx)
}
