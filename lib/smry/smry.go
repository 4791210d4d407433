/*package smry reads summary results: the SMSPEC file which lists the vectors
of a run and the UNSMRY file (or S0001, S0002, ... files) which holds one
PARAMS array per time step.

Vectors are addressed by key strings like "FOPT", "WOPR:PROD" or "BPR:1,2,3".
A Summary is loaded completely when it is opened and can be queried
concurrently afterwards.
*/
package smry

import (
	"math"
	"time"

	"github.com/phil-mansfield/eclio/lib/ecl"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// TimeKey is the key of the vector holding simulation time in days.
const TimeKey = "TIME"

// Summary holds every vector of one run, or of a restart chain of runs.
type Summary struct {
	path string

	keys []string
	nodes []node
	units []string
	index map[string]int
	vectors [][]float32

	rstep []int
	start time.Time
	dims [3]int

	restart string
	restartStep int
}

// newSummary creates an empty Summary with the given vectors. Empty keys are
// dropped. A repeated key keeps the position of its first occurrence but
// takes the units and data of its last one. src[i] is the position of the
// i-th kept vector in nodes.
func newSummary(
	path string, nodes []node, units []string, dims [3]int,
) (s *Summary, src []int) {
	s = &Summary{
		path: path, dims: dims,
		index: map[string]int{ },
	}
	for i := range nodes {
		key := keyString(nodes[i], dims[0], dims[1])
		if key == "" { continue }
		if j, ok := s.index[key]; ok {
			s.nodes[j], s.units[j], src[j] = nodes[i], units[i], i
			continue
		}

		s.index[key] = len(s.keys)
		s.keys = append(s.keys, key)
		s.nodes = append(s.nodes, nodes[i])
		s.units = append(s.units, units[i])
		src = append(src, i)
	}
	s.vectors = make([][]float32, len(s.keys))
	return s, src
}

// Path returns the path that the Summary was opened from.
func (s *Summary) Path() string { return s.path }

// Keys returns the keys matching pattern in the order they were specified.
// '?' matches one character and '*' any number of them. An empty pattern
// matches every key.
func (s *Summary) Keys(pattern string) []string {
	out := []string{ }
	for _, key := range s.keys {
		if pattern == "" || Match(pattern, key) {
			out = append(out, key)
		}
	}
	return out
}

// Has returns true if key names a vector.
func (s *Summary) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *Summary) lookup(key string) (int, error) {
	i, ok := s.index[key]
	if !ok {
		return -1, ecl.Errorf(ecl.ErrNotFound, s.path, "The summary has no " +
			"vector with this key.").WithKey(key)
	}
	return i, nil
}

// Units returns the unit string of a vector.
func (s *Summary) Units(key string) (string, error) {
	i, err := s.lookup(key)
	if err != nil { return "", err }
	return s.units[i], nil
}

// Get returns a copy of a vector. If reportStepOnly is true, only the
// samples which end a report step are returned.
func (s *Summary) Get(key string, reportStepOnly bool) ([]float32, error) {
	i, err := s.lookup(key)
	if err != nil { return nil, err }

	v := s.vectors[i]
	if !reportStepOnly {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}

	out := make([]float32, len(s.rstep))
	for j, k := range s.rstep { out[j] = v[k] }
	return out, nil
}

// Len returns the number of samples in every vector.
func (s *Summary) Len() int {
	if len(s.vectors) == 0 { return 0 }
	return len(s.vectors[0])
}

// ReportSteps returns the sample indices that end a report step.
func (s *Summary) ReportSteps() []int {
	out := make([]int, len(s.rstep))
	copy(out, s.rstep)
	return out
}

// Dimensions returns the grid size of the run.
func (s *Summary) Dimensions() (nx, ny, nz int) {
	return s.dims[0], s.dims[1], s.dims[2]
}

// StartDate returns the date at which TIME is zero.
func (s *Summary) StartDate() time.Time { return s.start }

// Restart returns the root name of the run that this one restarts from and
// the report step it restarts at. root is empty for runs which aren't
// restarts.
func (s *Summary) Restart() (root string, step int) {
	return s.restart, s.restartStep
}

// Times returns the TIME vector in days.
func (s *Summary) Times() ([]float64, error) {
	i, err := s.lookup(TimeKey)
	if err != nil { return nil, err }

	out := make([]float64, len(s.vectors[i]))
	for j := range out { out[j] = float64(s.vectors[i][j]) }
	return out, nil
}

// Dates returns the date of every sample.
func (s *Summary) Dates() ([]time.Time, error) {
	t, err := s.Times()
	if err != nil { return nil, err }

	out := make([]time.Time, len(t))
	for i := range t { out[i] = addDays(s.start, t[i]) }
	return out, nil
}

// addDays adds a number of days to t, rounded to the millisecond.
func addDays(t time.Time, days float64) time.Time {
	ms := math.Round(days * 24 * 60 * 60 * 1e3)
	return t.Add(time.Duration(ms) * time.Millisecond)
}

// Interpolate evaluates a vector at the given times, in days, with linear
// interpolation between samples. Times outside the sampled range take the
// value of the nearest sample.
func (s *Summary) Interpolate(key string, times []float64) ([]float64, error) {
	i, err := s.lookup(key)
	if err != nil { return nil, err }
	t, err := s.Times()
	if err != nil { return nil, err }

	if floats.HasNaN(times) {
		return nil, ecl.Errorf(ecl.ErrValue, s.path, "Cannot interpolate at " +
			"NaN times.").WithKey(key)
	}

	xs, ys := increasing(t, s.vectors[i])
	out := make([]float64, len(times))
	switch len(xs) {
	case 0:
		return nil, ecl.Errorf(ecl.ErrValue, s.path, "The summary has no " +
			"samples to interpolate between.").WithKey(key)
	case 1:
		for j := range out { out[j] = ys[0] }
		return out, nil
	}

	pl := &interp.PiecewiseLinear{ }
	if err := pl.Fit(xs, ys); err != nil {
		return nil, ecl.Errorf(ecl.ErrValue, s.path, "Could not fit the " +
			"vector: %s", err.Error()).WithKey(key)
	}

	lo, hi := xs[0], xs[len(xs) - 1]
	for j, x := range times {
		switch {
		case x <= lo: out[j] = ys[0]
		case x >= hi: out[j] = ys[len(ys) - 1]
		default: out[j] = pl.Predict(x)
		}
	}
	return out, nil
}

// increasing returns the samples whose time is larger than every earlier
// time.
func increasing(t []float64, v []float32) (xs, ys []float64) {
	for i := range t {
		if len(xs) > 0 && t[i] <= xs[len(xs) - 1] { continue }
		xs = append(xs, t[i])
		ys = append(ys, float64(v[i]))
	}
	return xs, ys
}
