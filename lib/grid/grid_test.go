package grid

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/eq"
)

// zcornIndex returns the position in ZCORN of corner (di, dj, dk) of cell
// (i, j, k).
func zcornIndex(nx, ny, i, j, k, di, dj, dk int) int {
	return (2*i + di) + (2*j + dj)*2*nx + (2*k + dk)*4*nx*ny
}

// boxRecords returns an EGRID of nx * ny * nz cells of size dx * dy * dz
// hung on vertical pillars, with the cells at i < 4 and j < 8 inactive.
func boxRecords(nx, ny, nz int, dx, dy, dz float32) []eclfile.Record {
	coord := []float32{ }
	for pj := 0; pj <= ny; pj++ {
		for pi := 0; pi <= nx; pi++ {
			x, y := float32(pi)*dx, float32(pj)*dy
			coord = append(coord, x, y, 1000, x, y, 1000 + float32(nz)*dz)
		}
	}

	zcorn := make([]float32, 8*nx*ny*nz)
	actnum := make([]int32, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for c := 0; c < 8; c++ {
					di, dj, dk := c & 1, c >> 1 & 1, c >> 2 & 1
					zcorn[zcornIndex(nx, ny, i, j, k, di, dj, dk)] =
						1000 + float32(k + dk)*dz
				}
				if i >= 4 || j >= 8 { actnum[i + nx*(j + ny*k)] = 1 }
			}
		}
	}

	return []eclfile.Record{
		{ Name: "FILEHEAD", Values: make([]int32, 100) },
		{ Name: "GRIDHEAD", Values: []int32{ 1, int32(nx), int32(ny), int32(nz), 0 } },
		{ Name: "COORD", Values: coord },
		{ Name: "ZCORN", Values: zcorn },
		{ Name: "ACTNUM", Values: actnum },
		{ Name: "ENDGRID", Values: nil },
	}
}

func writeGrid(t *testing.T, name string, recs []eclfile.Record) string {
	path := filepath.Join(t.TempDir(), name)
	if err := eclfile.Write(path, recs); err != nil {
		t.Fatalf("Expected valid write, got %s.", err.Error())
	}
	return path
}

func TestDimensions(t *testing.T) {
	for _, name := range []string{ "9_EDITNNC.EGRID", "9_EDITNNC.FEGRID" } {
		g, err := Open(writeGrid(t, name, boxRecords(13, 22, 11, 10, 20, 5)))
		if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
		defer g.Close()

		if nx, ny, nz := g.Dimension(); nx != 13 || ny != 22 || nz != 11 {
			t.Errorf("%s) Expected (13, 22, 11), got (%d, %d, %d).",
				name, nx, ny, nz)
		}
		if g.Cells() != 3146 || g.ActiveCells() != 2794 {
			t.Errorf("%s) Expected 3146 cells and 2794 active cells, got %d " +
				"and %d.", name, g.Cells(), g.ActiveCells())
		}
	}
}

func TestIndexBijections(t *testing.T) {
	g, err := Open(writeGrid(t, "BOX.EGRID", boxRecords(13, 22, 11, 10, 20, 5)))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer g.Close()

	for idx := 0; idx < g.Cells(); idx++ {
		i, j, k, err := g.IJKFromGlobal(idx)
		if err != nil { t.Fatalf("%d) Unexpected error %s.", idx, err.Error()) }
		if idx2, _ := g.GlobalIndex(i, j, k); idx2 != idx {
			t.Fatalf("%d) GlobalIndex(IJKFromGlobal) = %d.", idx, idx2)
		}

		a, err := g.ActiveIndex(i, j, k)
		if active := i >= 4 || j >= 8; active != g.IsActive(idx) {
			t.Fatalf("%d) Expected IsActive = %v.", idx, active)
		} else if !active {
			if !errors.Is(err, ecl.ErrNotActive) {
				t.Fatalf("%d) Expected ErrNotActive, got %v.", idx, err)
			}
			continue
		}

		i2, j2, k2, err := g.IJKFromActive(a)
		if err != nil || i2 != i || j2 != j || k2 != k {
			t.Fatalf("%d) IJKFromActive(%d) = (%d, %d, %d), expected " +
				"(%d, %d, %d).", idx, a, i2, j2, k2, i, j, k)
		}
	}

	if a, _ := g.ActiveIndex(4, 0, 0); a != 0 {
		t.Errorf("Expected (4, 0, 0) to be the first active cell, got %d.", a)
	}
	if a, _ := g.ActiveIndex(12, 21, 10); a != 2793 {
		t.Errorf("Expected (12, 21, 10) to be the last active cell, got %d.", a)
	}

	errTests := []struct{
		err error
		kind error
	} {
		{ second(g.GlobalIndex(13, 0, 0)), ecl.ErrIndexOutOfRange },
		{ second(g.GlobalIndex(0, -1, 0)), ecl.ErrIndexOutOfRange },
		{ second(g.ActiveIndex(0, 0, 11)), ecl.ErrIndexOutOfRange },
		{ second(g.ActiveIndex(0, 0, 0)), ecl.ErrNotActive },
		{ second(g.GlobalFromActive(2794)), ecl.ErrIndexOutOfRange },
		{ second(g.ActiveFromGlobal(3146)), ecl.ErrIndexOutOfRange },
		{ second(g.CellVolume(-1)), ecl.ErrIndexOutOfRange },
	}
	for i := range errTests {
		if !errors.Is(errTests[i].err, errTests[i].kind) {
			t.Errorf("%d) Expected %v, got %v.", i, errTests[i].kind, errTests[i].err)
		}
	}
}

func second(_ interface{}, err error) error { return err }

func TestBoxGeometry(t *testing.T) {
	g, err := Open(writeGrid(t, "BOX.EGRID", boxRecords(13, 22, 11, 10, 20, 5)))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer g.Close()

	idx, _ := g.GlobalIndex(2, 3, 4)
	c, err := g.CellCorners(idx)
	if err != nil { t.Fatalf("Expected valid corners, got %s.", err.Error()) }
	exp := [8][3]float64{
		{ 20, 60, 1020 }, { 30, 60, 1020 }, { 20, 80, 1020 }, { 30, 80, 1020 },
		{ 20, 60, 1025 }, { 30, 60, 1025 }, { 20, 80, 1025 }, { 30, 80, 1025 },
	}
	if !eq.Generic(c, exp) {
		t.Errorf("Expected corners %v, got %v.", exp, c)
	}

	for _, idx := range []int{ 0, 1000, 3145 } {
		vol, err := g.CellVolume(idx)
		if err != nil || math.Abs(vol - 1000) > 1e-9 {
			t.Errorf("%d) Expected volume 1000, got %g (%v).", idx, vol, err)
		}
	}

	center, _ := g.CellCenter(idx)
	if !eq.Float64sEps(center[:], []float64{ 25, 70, 1022.5 }, 1e-9) {
		t.Errorf("Expected center (25, 70, 1022.5), got %v.", center)
	}
}

func TestSlopedGeometry(t *testing.T) {
	// One cell on pillars which move 10 in x for every 100 in depth.
	coord := []float32{ }
	for pj := 0; pj <= 1; pj++ {
		for pi := 0; pi <= 1; pi++ {
			x, y := float32(pi)*10, float32(pj)*10
			coord = append(coord, x, y, 0, x + 10, y, 100)
		}
	}
	zcorn := []float32{ 20, 20, 20, 20, 60, 60, 60, 60 }
	g, err := Open(writeGrid(t, "SLOPE.EGRID", []eclfile.Record{
		{ Name: "GRIDHEAD", Values: []int32{ 1, 1, 1, 1 } },
		{ Name: "COORD", Values: coord },
		{ Name: "ZCORN", Values: zcorn },
	}))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer g.Close()

	if g.ActiveCells() != 1 {
		t.Errorf("Expected a grid without ACTNUM to be all active.")
	}

	c, _ := g.CellCorners(0)
	if !eq.Float64sEps(c[0][:], []float64{ 2, 0, 20 }, 1e-6) ||
		!eq.Float64sEps(c[7][:], []float64{ 16, 10, 60 }, 1e-6) {
		t.Errorf("Expected corners 0 and 7 at (2, 0, 20) and (16, 10, 60), " +
			"got %v and %v.", c[0], c[7])
	}

	vol, _ := g.CellVolume(0)
	if math.Abs(vol - 4000) > 1e-6 {
		t.Errorf("Expected the sheared cell to have volume 4000, got %g.", vol)
	}

	center, _ := g.CellCenter(0)
	if !eq.Float64sEps(center[:], []float64{ 9, 5, 40 }, 1e-6) {
		t.Errorf("Expected center (9, 5, 40), got %v.", center)
	}
}

func TestWarpedVolume(t *testing.T) {
	coord := []float32{
		0, 0, 0, 0, 0, 100,
		1, 0, 0, 1, 0, 100,
		0, 1, 0, 0, 1, 100,
		1, 1, 0, 1, 1, 100,
	}
	zcorn := []float32{ 0, 0, 0, 0, 10, 10, 10, 20 }
	g, err := Open(writeGrid(t, "WARP.EGRID", []eclfile.Record{
		{ Name: "GRIDHEAD", Values: []int32{ 1, 1, 1, 1 } },
		{ Name: "COORD", Values: coord },
		{ Name: "ZCORN", Values: zcorn },
	}))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer g.Close()

	vol, _ := g.CellVolume(0)
	if math.Abs(vol - 12.5) > 1e-9 {
		t.Errorf("Expected the warped cell to have volume 12.5, got %g.", vol)
	}
}

func TestBadGrids(t *testing.T) {
	recs := boxRecords(2, 2, 2, 1, 1, 1)
	recs[4].Values = []int32{ 1, 1, 1 }
	_, err := Open(writeGrid(t, "BADACT.EGRID", recs))
	if !errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected ErrCorruptFormat for a short ACTNUM, got %v.", err)
	}

	_, err = Open(writeGrid(t, "NOHEAD.EGRID", []eclfile.Record{
		{ Name: "COORD", Values: []float32{ 1 } },
	}))
	if !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound without GRIDHEAD, got %v.", err)
	}

	recs = boxRecords(2, 2, 2, 1, 1, 1)
	recs[3].Values = []float32{ 1, 2, 3 }
	g, err := Open(writeGrid(t, "SHORTZ.EGRID", recs))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer g.Close()
	if _, err := g.CellCorners(0); !errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected ErrCorruptFormat for a short ZCORN, got %v.", err)
	}

	spec, err := Open(writeGrid(t, "SPEC.EGRID", []eclfile.Record{
		{ Name: "SPECGRID", Values: []int32{ 3, 4, 5, 1 } },
	}))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer spec.Close()
	if nx, ny, nz := spec.Dimension(); nx != 3 || ny != 4 || nz != 5 {
		t.Errorf("Expected SPECGRID dimensions (3, 4, 5), got (%d, %d, %d).",
			nx, ny, nz)
	}
}
