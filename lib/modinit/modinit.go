/*package modinit gives a columnar view of the active cells of a model. The
columns are the cell coordinates, PORV, every INIT array with one value per
active cell, and optionally cell volumes from the grid and solution arrays
from a restart file. Rows can be selected with filters, which are ANDed
together.
*/
package modinit

import (
	"sync"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/grid"
	"github.com/phil-mansfield/eclio/lib/rst"

	"gonum.org/v1/gonum/floats"
)

const (
	CellVolume = "CELLVOL"
	HCZone = "HCZONE"
)

var aliases = map[string]string{ "ROW": "I", "COLUMN": "J", "LAYER": "K" }

// Model is an opened INIT file.
type Model struct {
	file *eclfile.File
	nx, ny, nz int
	global []int

	mtx sync.Mutex
	derived map[string]interface{}
	initIndex map[string]int
	order []string
	restartCols []string

	mask []bool
	active int
}

// Open reads the cell layout of an INIT file. Active cells are the cells
// with a positive pore volume.
func Open(initPath string) (*Model, error) {
	f, err := eclfile.Open(initPath)
	if err != nil { return nil, err }

	m, err := newModel(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

func newModel(f *eclfile.File) (*Model, error) {
	head, err := f.IntsNamed("INTEHEAD")
	if err != nil { return nil, err }
	if len(head) < 12 {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "INTEHEAD has " +
			"%d elements instead of at least 12.", len(head)).WithKey("INTEHEAD")
	}

	m := &Model{
		file: f,
		nx: int(head[8]), ny: int(head[9]), nz: int(head[10]),
		derived: map[string]interface{}{ },
		initIndex: map[string]int{ },
	}
	nactive := int(head[11])

	porv, err := f.RealsNamed("PORV")
	if err != nil { return nil, err }
	if len(porv) != m.nx*m.ny*m.nz {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "PORV has %d " +
			"elements, but the grid has %d cells.", len(porv), m.nx*m.ny*m.nz).
			WithKey("PORV")
	}

	is, js, ks := []int32{ }, []int32{ }, []int32{ }
	activePorv := []float32{ }
	for g := range porv {
		if porv[g] <= 0 { continue }
		m.global = append(m.global, g)
		is = append(is, int32(g % m.nx + 1))
		js = append(js, int32((g / m.nx) % m.ny + 1))
		ks = append(ks, int32(g / (m.nx*m.ny) + 1))
		activePorv = append(activePorv, porv[g])
	}
	if len(m.global) != nactive {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(), "INTEHEAD " +
			"lists %d active cells, but %d cells have a positive PORV.",
			nactive, len(m.global)).WithKey("PORV")
	}

	m.addDerived("I", is)
	m.addDerived("J", js)
	m.addDerived("K", ks)
	m.addDerived("PORV", activePorv)

	for i, e := range f.List() {
		if e.Count != nactive || !numeric(e.Type) { continue }
		if _, ok := m.initIndex[e.Name]; ok { continue }
		if _, ok := m.derived[e.Name]; ok { continue }
		m.initIndex[e.Name] = i
		m.order = append(m.order, e.Name)
	}

	m.resetFilter()
	return m, nil
}

func numeric(t ecl.Type) bool {
	return t == ecl.INTE || t == ecl.REAL || t == ecl.DOUB
}

// addDerived adds or replaces a computed column. The caller holds the lock
// or owns m.
func (m *Model) addDerived(name string, values interface{}) {
	if _, ok := m.derived[name]; !ok { m.order = append(m.order, name) }
	m.derived[name] = values
}

func (m *Model) removeDerived(name string) {
	delete(m.derived, name)
	for i := range m.order {
		if m.order[i] == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

// Close closes the INIT file.
func (m *Model) Close() error { return m.file.Close() }

// Path returns the path of the INIT file.
func (m *Model) Path() string { return m.file.Path() }

// Dimension returns the grid size given in INTEHEAD.
func (m *Model) Dimension() (nx, ny, nz int) { return m.nx, m.ny, m.nz }

// Columns returns the names of every column, in the order they were added.
// ROW, COLUMN and LAYER are also accepted as names of I, J and K.
func (m *Model) Columns() []string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// column returns every value of a column. The caller holds the lock.
func (m *Model) column(name string) (interface{}, error) {
	if alias, ok := aliases[name]; ok { name = alias }
	if x, ok := m.derived[name]; ok { return x, nil }
	if i, ok := m.initIndex[name]; ok { return m.file.Get(i) }
	return nil, ecl.Errorf(ecl.ErrValue, m.Path(), "There is no column with " +
		"this name. The columns are %v.", m.order).WithKey(name)
}

// AttachGrid adds the CELLVOL column, with volumes computed from the grid.
func (m *Model) AttachGrid(g *grid.Grid) error {
	if nx, ny, nz := g.Dimension(); nx != m.nx || ny != m.ny || nz != m.nz {
		return ecl.Errorf(ecl.ErrInconsistentArchive, g.Path(), "The grid " +
			"is (%d, %d, %d), but the INIT file %s is (%d, %d, %d).",
			nx, ny, nz, m.Path(), m.nx, m.ny, m.nz)
	}

	vol := make([]float64, len(m.global))
	for a, idx := range m.global {
		var err error
		if vol[a], err = g.CellVolume(idx); err != nil { return err }
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.addDerived(CellVolume, vol)
	return nil
}

// AttachRestart replaces the solution columns with the solution arrays of a
// report step. Only arrays with one value per active cell are used. The
// filter is reset.
func (m *Model) AttachRestart(a *rst.Archive, step int) error {
	sol, err := a.Solution(step)
	if err != nil { return err }

	cols := map[string]interface{}{ }
	names := []string{ }
	for _, e := range sol {
		if e.Count != len(m.global) || !numeric(e.Type) { continue }
		if _, ok := cols[e.Name]; ok { continue }
		x, err := a.Get(e.Name, step, 0)
		if err != nil { return err }
		cols[e.Name] = x
		names = append(names, e.Name)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, name := range m.restartCols { m.removeDerived(name) }
	for _, name := range names { m.addDerived(name, cols[name]) }
	m.restartCols = names
	m.resetFilter()
	return nil
}

// Get returns the values of a column at the cells that pass the filter, in
// cell order.
func (m *Model) Get(column string) (interface{}, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	x, err := m.column(column)
	if err != nil { return nil, err }
	return m.filtered(x), nil
}

func (m *Model) filtered(x interface{}) interface{} {
	switch x := x.(type) {
	case []int32:
		out := make([]int32, 0, m.active)
		for a := range x { if m.mask[a] { out = append(out, x[a]) } }
		return out
	case []float32:
		out := make([]float32, 0, m.active)
		for a := range x { if m.mask[a] { out = append(out, x[a]) } }
		return out
	case []float64:
		out := make([]float64, 0, m.active)
		for a := range x { if m.mask[a] { out = append(out, x[a]) } }
		return out
	}
	panic("Impossible column type.")
}

func (m *Model) typeError(column string, x interface{}, want ecl.Type) error {
	t, _, _ := ecl.TypeOf(x)
	return ecl.Errorf(ecl.ErrType, m.Path(), "The column is %s, not %s.",
		t, want).WithKey(column)
}

// Ints returns an INTE column at the cells that pass the filter.
func (m *Model) Ints(column string) ([]int32, error) {
	x, err := m.Get(column)
	if err != nil { return nil, err }
	out, ok := x.([]int32)
	if !ok { return nil, m.typeError(column, x, ecl.INTE) }
	return out, nil
}

// Reals returns a REAL column at the cells that pass the filter.
func (m *Model) Reals(column string) ([]float32, error) {
	x, err := m.Get(column)
	if err != nil { return nil, err }
	out, ok := x.([]float32)
	if !ok { return nil, m.typeError(column, x, ecl.REAL) }
	return out, nil
}

// Doubs returns a DOUB column at the cells that pass the filter.
func (m *Model) Doubs(column string) ([]float64, error) {
	x, err := m.Get(column)
	if err != nil { return nil, err }
	out, ok := x.([]float64)
	if !ok { return nil, m.typeError(column, x, ecl.DOUB) }
	return out, nil
}

// Sum returns the sum of a column over the cells that pass the filter.
func (m *Model) Sum(column string) (float64, error) {
	x, err := m.Get(column)
	if err != nil { return 0, err }
	return floats.Sum(toFloat64s(x)), nil
}

func toFloat64s(x interface{}) []float64 {
	switch x := x.(type) {
	case []int32:
		out := make([]float64, len(x))
		for i := range x { out[i] = float64(x[i]) }
		return out
	case []float32:
		out := make([]float64, len(x))
		for i := range x { out[i] = float64(x[i]) }
		return out
	case []float64:
		return x
	}
	panic("Impossible column type.")
}
