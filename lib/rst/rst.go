/*package rst reads unified restart files (UNRST, FUNRST). A restart file is a
sequence of report steps, each one starting with a SEQNUM record that holds
the step number:

   SEQNUM INTEHEAD ... STARTSOL PRESSURE SWAT ... ENDSOL SEQNUM ...

Arrays are addressed by (name, step, occurrence), where occurrence counts
same-named arrays within one step.
*/
package rst

import (
	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
)

const (
	seqnum = "SEQNUM"
	startSol = "STARTSOL"
	endSol = "ENDSOL"
)

// segment is the range of record indices belonging to one report step. The
// SEQNUM record itself is at start.
type segment struct {
	step int
	start, end int
	index map[string][]int
}

// Archive is an opened restart file. The embedded File gives access to every
// record by absolute index.
type Archive struct {
	*eclfile.File
	segments []segment
	steps []int
}

// Open opens a restart file and splits it into report steps. Only SEQNUM
// records are decoded. Records before the first SEQNUM belong to no step and
// can only be reached by absolute index.
func Open(path string) (*Archive, error) {
	f, err := eclfile.Open(path)
	if err != nil { return nil, err }

	a, err := newArchive(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func newArchive(f *eclfile.File) (*Archive, error) {
	a := &Archive{ File: f }
	list := f.List()

	for i, e := range list {
		if e.Name == seqnum {
			if e.Type != ecl.INTE || e.Count != 1 {
				return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(),
					"SEQNUM records must hold one INTE value, but this one " +
					"is %s[%d].", e.Type, e.Count).WithKey(seqnum).WithIndex(i)
			}
			x, err := f.Ints(i)
			if err != nil { return nil, err }

			if n := len(a.segments); n > 0 { a.segments[n-1].end = i }
			a.segments = append(a.segments, segment{
				step: int(x[0]), start: i, end: len(list),
				index: map[string][]int{ seqnum: { i } },
			})
			a.steps = append(a.steps, int(x[0]))
			continue
		}

		if n := len(a.segments); n > 0 {
			seg := &a.segments[n-1]
			seg.index[e.Name] = append(seg.index[e.Name], i)
		}
	}

	return a, nil
}

// Steps returns the report steps in file order. Repeated steps are kept.
func (a *Archive) Steps() []int {
	out := make([]int, len(a.steps))
	copy(out, a.steps)
	return out
}

// HasStep returns true if the file contains report step n.
func (a *Archive) HasStep(n int) bool { return a.segment(n) != nil }

// segment returns the first segment for report step n, or nil.
func (a *Archive) segment(n int) *segment {
	for i := range a.segments {
		if a.segments[i].step == n { return &a.segments[i] }
	}
	return nil
}

func (a *Archive) findSegment(n int) (*segment, error) {
	seg := a.segment(n)
	if seg == nil {
		return nil, ecl.Errorf(ecl.ErrNotFound, a.Path(), "The report step " +
			"was never written. The file holds the steps %v.", a.steps).
			WithStep(n)
	}
	return seg, nil
}

// LoadStep decodes every array of report step n.
func (a *Archive) LoadStep(n int) error {
	seg, err := a.findSegment(n)
	if err != nil { return err }
	for i := seg.start; i < seg.end; i++ {
		if _, err := a.File.Get(i); err != nil { return err }
	}
	return nil
}

// Arrays returns the directory of report step n in on-disk order, SEQNUM
// included.
func (a *Archive) Arrays(n int) ([]eclfile.Entry, error) {
	seg, err := a.findSegment(n)
	if err != nil { return nil, err }
	return a.List()[seg.start: seg.end], nil
}

// Solution returns the arrays between STARTSOL and ENDSOL in report step n.
// It is empty if the step has no solution section.
func (a *Archive) Solution(n int) ([]eclfile.Entry, error) {
	seg, err := a.findSegment(n)
	if err != nil { return nil, err }

	out := []eclfile.Entry{ }
	for _, i := range a.solutionIndices(seg) {
		e, _ := a.Entry(i)
		out = append(out, e)
	}
	return out, nil
}

func (a *Archive) solutionIndices(seg *segment) []int {
	start, ok := seg.index[startSol]
	if !ok { return nil }
	stop := seg.end
	if end, ok := seg.index[endSol]; ok { stop = end[0] }

	out := []int{ }
	for i := start[0] + 1; i < stop; i++ { out = append(out, i) }
	return out
}

// Count returns the number of arrays named name in report step n. It is zero
// if either is absent.
func (a *Archive) Count(name string, n int) int {
	seg := a.segment(n)
	if seg == nil { return 0 }
	return len(seg.index[name])
}

// Index returns the absolute index of the occurrence-th array named name in
// report step n.
func (a *Archive) Index(name string, n, occurrence int) (int, error) {
	seg, err := a.findSegment(n)
	if err != nil { return -1, err }

	idx, ok := seg.index[name]
	if !ok {
		return -1, ecl.Errorf(ecl.ErrNotFound, a.Path(), "The report step " +
			"has no array with this name.").WithKey(name).WithStep(n)
	} else if occurrence < 0 || occurrence >= len(idx) {
		return -1, ecl.Errorf(ecl.ErrIndexOutOfRange, a.Path(), "Occurrence " +
			"%d was requested, but the array occurs %d times in this step.",
			occurrence, len(idx)).WithKey(name).WithStep(n).WithIndex(occurrence)
	}
	return idx[occurrence], nil
}

// Get returns the occurrence-th array named name in report step n.
func (a *Archive) Get(name string, n, occurrence int) (interface{}, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Get(i)
}

// Ints returns an INTE array of report step n.
func (a *Archive) Ints(name string, n, occurrence int) ([]int32, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Ints(i)
}

// Reals returns a REAL array of report step n.
func (a *Archive) Reals(name string, n, occurrence int) ([]float32, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Reals(i)
}

// Doubs returns a DOUB array of report step n.
func (a *Archive) Doubs(name string, n, occurrence int) ([]float64, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Doubs(i)
}

// Logis returns a LOGI array of report step n.
func (a *Archive) Logis(name string, n, occurrence int) ([]bool, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Logis(i)
}

// Chars returns a CHAR array of report step n.
func (a *Archive) Chars(name string, n, occurrence int) ([]string, error) {
	i, err := a.Index(name, n, occurrence)
	if err != nil { return nil, err }
	return a.File.Chars(i)
}
