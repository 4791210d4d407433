package modinit

import (
	"fmt"
	"strings"

	"github.com/phil-mansfield/eclio/lib/ecl"
)

// Op is a filter comparison. Every comparison is strict.
type Op int

const (
	// Eq keeps cells equal to the operand.
	Eq Op = iota
	// Lt keeps cells less than the operand.
	Lt
	// Gt keeps cells greater than the operand.
	Gt
	// Between keeps cells strictly between two operands.
	Between
)

var opNames = map[string]Op{
	"eq": Eq, "lt": Lt, "gt": Gt, "between": Between, "in": Between,
}

// ParseOp parses an operator name. "in" is another name for "between".
func ParseOp(s string) (Op, error) {
	op, ok := opNames[strings.ToLower(s)]
	if !ok {
		return 0, ecl.Errorf(ecl.ErrValue, "", "'%s' is not a filter " +
			"operator. The operators are eq, lt, gt, between and in.", s)
	}
	return op, nil
}

func (op Op) String() string {
	switch op {
	case Eq: return "eq"
	case Lt: return "lt"
	case Gt: return "gt"
	case Between: return "between"
	}
	panic(fmt.Sprintf("Impossible Op value %d.", int(op)))
}

// operands returns the number of operands op needs.
func (op Op) operands() int {
	if op == Between { return 2 }
	return 1
}

// AddFilter removes the cells whose value in column doesn't satisfy op.
// INTE columns take int or int32 operands and REAL and DOUB columns take
// float32 or float64 operands, or plain ints.
func (m *Model) AddFilter(column string, op Op, v ...interface{}) error {
	if op < Eq || op > Between {
		return ecl.Errorf(ecl.ErrValue, m.Path(), "Unknown filter operator " +
			"%d.", int(op)).WithKey(column)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	x, err := m.column(column)
	if err != nil { return err }

	if len(v) != op.operands() {
		return ecl.Errorf(ecl.ErrType, m.Path(), "The %s operator takes %d " +
			"operands, but %d were given.", op, op.operands(), len(v)).
			WithKey(column)
	}

	t, _, _ := ecl.TypeOf(x)
	lim := make([]float64, len(v))
	for i := range v {
		if lim[i], err = operand(t, v[i]); err != nil {
			return ecl.Errorf(ecl.ErrType, m.Path(), "%s", err.Error()).
				WithKey(column)
		}
	}

	vals := toFloat64s(x)
	for a := range vals {
		if m.mask[a] && !test(op, vals[a], lim) {
			m.mask[a] = false
			m.active--
		}
	}
	return nil
}

// operand converts a filter operand to the precision of a column of type t.
func operand(t ecl.Type, v interface{}) (float64, error) {
	switch t {
	case ecl.INTE:
		switch v := v.(type) {
		case int: return float64(v), nil
		case int32: return float64(v), nil
		}
	case ecl.REAL:
		switch v := v.(type) {
		case int: return float64(float32(v)), nil
		case float32: return float64(v), nil
		case float64: return float64(float32(v)), nil
		}
	case ecl.DOUB:
		switch v := v.(type) {
		case int: return float64(v), nil
		case float32: return float64(v), nil
		case float64: return v, nil
		}
	}
	return 0, fmt.Errorf("The operand %v is a %T, which can't be compared " +
		"with a %s column.", v, v, t)
}

func test(op Op, x float64, lim []float64) bool {
	switch op {
	case Eq: return x == lim[0]
	case Lt: return x < lim[0]
	case Gt: return x > lim[0]
	case Between: return x > lim[0] && x < lim[1]
	}
	panic(fmt.Sprintf("Impossible Op value %d.", int(op)))
}

// ResetFilter removes every filter.
func (m *Model) ResetFilter() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.resetFilter()
}

func (m *Model) resetFilter() {
	m.mask = make([]bool, len(m.global))
	for i := range m.mask { m.mask[i] = true }
	m.active = len(m.global)
}

// HasFilter returns true if any cell has been filtered out.
func (m *Model) HasFilter() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.active != len(m.global)
}

// ActiveCells returns the number of cells that pass the filter.
func (m *Model) ActiveCells() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.active
}

// AddHCFilter keeps the cells above the free water level of their
// equilibration region, where fwl[i] is the level of EQLNUM region i+1. It
// adds the HCZONE column, which is 1 above the free water level and 0
// below, and then filters on HCZONE eq 1.
func (m *Model) AddHCFilter(fwl []float64) error {
	eqlnum, depth, err := m.hcColumns()
	if err != nil { return err }

	hc := make([]int32, len(eqlnum))
	for a := range eqlnum {
		r := int(eqlnum[a])
		if r < 1 || r > len(fwl) {
			return ecl.Errorf(ecl.ErrValue, m.Path(), "EQLNUM region %d has " +
				"no free water level; %d levels were given.", r, len(fwl)).
				WithKey("EQLNUM").WithIndex(a)
		}
		if depth[a] <= fwl[r-1] { hc[a] = 1 }
	}

	m.mtx.Lock()
	m.addDerived(HCZone, hc)
	m.mtx.Unlock()

	return m.AddFilter(HCZone, Eq, 1)
}

func (m *Model) hcColumns() (eqlnum []int32, depth []float64, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	x, err := m.column("EQLNUM")
	if err != nil { return nil, nil, err }
	eqlnum, ok := x.([]int32)
	if !ok { return nil, nil, m.typeError("EQLNUM", x, ecl.INTE) }

	x, err = m.column("DEPTH")
	if err != nil { return nil, nil, err }
	if _, ok := x.([]int32); ok {
		return nil, nil, m.typeError("DEPTH", x, ecl.REAL)
	}
	return eqlnum, toFloat64s(x), nil
}
