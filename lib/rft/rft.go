/*package rft reads RFT files (RFT, FRFT), which hold the well logs written
by a simulation: pressures and saturations along the connections of one well
at one date. A file is a sequence of reports, each one starting with a TIME
record:

   TIME DATE WELLETC CONIPOS CONJPOS CONKPOS ... PRESSURE SWAT SGAS TIME ...

DATE holds (day, month, year) and the second element of WELLETC is the well
name. Arrays are addressed by (name, well, date).
*/
package rft

import (
	"fmt"
	"sort"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
)

const (
	timeName = "TIME"
	dateName = "DATE"
	wellName = "WELLETC"
)

// Date is a calendar date as it is stored in DATE records.
type Date struct {
	Year, Month, Day int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before returns true if d comes before e.
func (d Date) Before(e Date) bool {
	if d.Year != e.Year { return d.Year < e.Year }
	if d.Month != e.Month { return d.Month < e.Month }
	return d.Day < e.Day
}

// Report identifies one RFT report.
type Report struct {
	Well string
	Date Date
	// Time is the simulation time of the report in days.
	Time float32
}

type reportKey struct {
	well string
	date Date
}

// segment is the range of record indices belonging to one report. The TIME
// record is at start.
type segment struct {
	Report
	start, end int
	index map[string]int
}

// Archive is an opened RFT file. The embedded File gives access to every
// record by absolute index.
type Archive struct {
	*eclfile.File
	segments []segment
	lookup map[reportKey]int
}

// Open opens an RFT file and splits it into reports. Only the TIME, DATE and
// WELLETC records are decoded.
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
	a := &Archive{ File: f, lookup: map[reportKey]int{ } }
	list := f.List()

	for i, e := range list {
		if e.Name == timeName {
			if e.Type != ecl.REAL || e.Count < 1 {
				return nil, ecl.Errorf(ecl.ErrCorruptFormat, f.Path(),
					"TIME records must hold a REAL value, but this one is " +
					"%s[%d].", e.Type, e.Count).WithKey(timeName).WithIndex(i)
			}
			t, err := f.Reals(i)
			if err != nil { return nil, err }

			if n := len(a.segments); n > 0 { a.segments[n-1].end = i }
			a.segments = append(a.segments, segment{
				Report: Report{ Time: t[0] }, start: i, end: len(list),
				index: map[string]int{ timeName: i },
			})
			continue
		}

		n := len(a.segments)
		if n == 0 { continue }
		seg := &a.segments[n-1]
		if _, ok := seg.index[e.Name]; !ok { seg.index[e.Name] = i }
	}

	for i := range a.segments {
		seg := &a.segments[i]
		if err := a.readHeader(seg); err != nil { return nil, err }
		// Later reports for the same well and date replace earlier ones.
		a.lookup[reportKey{ seg.Well, seg.Date }] = i
	}

	return a, nil
}

// readHeader reads the well and date of a report.
func (a *Archive) readHeader(seg *segment) error {
	di, ok := seg.index[dateName]
	if !ok { return a.missing(seg, dateName) }
	wi, ok := seg.index[wellName]
	if !ok { return a.missing(seg, wellName) }

	date, err := a.File.Ints(di)
	if err != nil { return err }
	if len(date) < 3 {
		return ecl.Errorf(ecl.ErrCorruptFormat, a.Path(), "DATE records " +
			"must hold (day, month, year), but this one has %d values.",
			len(date)).WithKey(dateName).WithIndex(di)
	}
	well, err := a.File.Chars(wi)
	if err != nil { return err }
	if len(well) < 2 {
		return ecl.Errorf(ecl.ErrCorruptFormat, a.Path(), "WELLETC records " +
			"hold the well name as their second value, but this one has %d " +
			"values.", len(well)).WithKey(wellName).WithIndex(wi)
	}

	seg.Date = Date{ int(date[2]), int(date[1]), int(date[0]) }
	seg.Well = well[1]
	return nil
}

func (a *Archive) missing(seg *segment, name string) error {
	return ecl.Errorf(ecl.ErrCorruptFormat, a.Path(), "The report starting " +
		"at record %d has no %s record.", seg.start, name).
		WithKey(name).WithIndex(seg.start)
}

// Reports returns every report in file order.
func (a *Archive) Reports() []Report {
	out := make([]Report, len(a.segments))
	for i := range a.segments { out[i] = a.segments[i].Report }
	return out
}

// Wells returns the names of the wells with reports, sorted.
func (a *Archive) Wells() []string {
	seen := map[string]bool{ }
	out := []string{ }
	for i := range a.segments {
		w := a.segments[i].Well
		if !seen[w] { out = append(out, w) }
		seen[w] = true
	}
	sort.Strings(out)
	return out
}

// Dates returns the dates with reports, in order.
func (a *Archive) Dates() []Date {
	seen := map[Date]bool{ }
	out := []Date{ }
	for i := range a.segments {
		d := a.segments[i].Date
		if !seen[d] { out = append(out, d) }
		seen[d] = true
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Has returns true if the file has a report for well at date.
func (a *Archive) Has(well string, date Date) bool {
	_, ok := a.lookup[reportKey{ well, date }]
	return ok
}

func (a *Archive) findSegment(well string, date Date) (*segment, error) {
	i, ok := a.lookup[reportKey{ well, date }]
	if !ok {
		return nil, ecl.Errorf(ecl.ErrNotFound, a.Path(), "There is no " +
			"report for well '%s' on %s.", well, date)
	}
	return &a.segments[i], nil
}

// HasArray returns true if the report for well at date contains an array
// called name. It is false if there is no such report.
func (a *Archive) HasArray(name, well string, date Date) bool {
	seg, err := a.findSegment(well, date)
	if err != nil { return false }
	_, ok := seg.index[name]
	return ok
}

// Arrays returns the directory of the report for well at date in on-disk
// order, TIME included.
func (a *Archive) Arrays(well string, date Date) ([]eclfile.Entry, error) {
	seg, err := a.findSegment(well, date)
	if err != nil { return nil, err }
	return a.List()[seg.start: seg.end], nil
}

// Index returns the absolute index of the array called name in the report
// for well at date.
func (a *Archive) Index(name, well string, date Date) (int, error) {
	seg, err := a.findSegment(well, date)
	if err != nil { return -1, err }

	i, ok := seg.index[name]
	if !ok {
		return -1, ecl.Errorf(ecl.ErrNotFound, a.Path(), "The report for " +
			"well '%s' on %s has no array with this name.", well, date).
			WithKey(name)
	}
	return i, nil
}

// Get returns the array called name in the report for well at date.
func (a *Archive) Get(name, well string, date Date) (interface{}, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Get(i)
}

// Ints returns an INTE array of a report.
func (a *Archive) Ints(name, well string, date Date) ([]int32, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Ints(i)
}

// Reals returns a REAL array of a report.
func (a *Archive) Reals(name, well string, date Date) ([]float32, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Reals(i)
}

// Doubs returns a DOUB array of a report.
func (a *Archive) Doubs(name, well string, date Date) ([]float64, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Doubs(i)
}

// Logis returns a LOGI array of a report.
func (a *Archive) Logis(name, well string, date Date) ([]bool, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Logis(i)
}

// Chars returns a CHAR array of a report.
func (a *Archive) Chars(name, well string, date Date) ([]string, error) {
	i, err := a.Index(name, well, date)
	if err != nil { return nil, err }
	return a.File.Chars(i)
}
