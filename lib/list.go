package lib

/* list.go contains eclio's "list" and "print" modes. */

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/format"
	"github.com/phil-mansfield/eclio/lib/logger"
	"github.com/phil-mansfield/eclio/lib/rft"
	"github.com/phil-mansfield/eclio/lib/rst"

	"go.uber.org/zap"
)

// List runs eclio's "list" mode. It writes the directory of the input file to
// w. Restart files are listed one report step at a time, limited to Steps if
// it is set, and RFT files one well report at a time.
func List(w io.Writer, args *Args) error {
	switch KindOf(args.Input) {
	case RestartFile:
		return listRestart(w, args)
	case RFTFile:
		return listRFT(w, args)
	}

	f, err := eclfile.Open(args.Input)
	if err != nil { return err }
	defer f.Close()

	tw := newTable(w)
	fmt.Fprintln(tw, "INDEX\tNAME\tTYPE\tCOUNT")
	for i, e := range f.List() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, e.Name, e.Type, e.Count)
	}
	return tw.Flush()
}

func listRestart(w io.Writer, args *Args) error {
	a, err := rst.Open(args.Input)
	if err != nil { return err }
	defer a.Close()

	steps, err := selectSteps(a, args.Steps)
	if err != nil { return err }

	tw := newTable(w)
	fmt.Fprintln(tw, "STEP\tNAME\tTYPE\tCOUNT")
	for _, n := range steps {
		list, err := a.Arrays(n)
		if err != nil { return err }
		for _, e := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", n, e.Name, e.Type, e.Count)
		}
	}
	return tw.Flush()
}

func listRFT(w io.Writer, args *Args) error {
	a, err := rft.Open(args.Input)
	if err != nil { return err }
	defer a.Close()

	tw := newTable(w)
	fmt.Fprintln(tw, "WELL\tDATE\tNAME\tTYPE\tCOUNT")
	listed := map[string]bool{ }
	for _, r := range a.Reports() {
		key := r.Well + " " + r.Date.String()
		if listed[key] { continue }
		listed[key] = true
		list, err := a.Arrays(r.Well, r.Date)
		if err != nil { return err }
		for _, e := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
				r.Well, r.Date, e.Name, e.Type, e.Count)
		}
	}
	return tw.Flush()
}

// selectSteps returns the steps of a which are in want, or every step if want
// is nil. Repeated steps are only returned once.
func selectSteps(a *rst.Archive, want []int) ([]int, error) {
	if want == nil {
		out, seen := []int{ }, map[int]bool{ }
		for _, n := range a.Steps() {
			if !seen[n] { out = append(out, n) }
			seen[n] = true
		}
		return out, nil
	}

	for _, n := range want {
		if !a.HasStep(n) {
			return nil, ecl.Errorf(ecl.ErrNotFound, a.Path(), "Steps " +
				"includes report step %d, which isn't in the file.",
				n).WithStep(n)
		}
	}
	return want, nil
}

// Print runs eclio's "print" mode. It writes the values of the named arrays
// to w, or to Output if it is set. Restart files are printed one report step
// at a time, and a {step} variable in Output gives each step its own file.
func Print(w io.Writer, args *Args) error {
	var ff *format.FileFormat
	if args.Output != "" {
		var err error
		if ff, err = format.ParseFileFormat(args.Output); err != nil {
			return err
		}
	}

	if KindOf(args.Input) != RestartFile {
		return printFile(w, ff, args)
	}

	a, err := rst.Open(args.Input)
	if err != nil { return err }
	defer a.Close()

	steps, err := selectSteps(a, args.Steps)
	if err != nil { return err }

	// Without a {step} variable every step goes to the same place.
	if ff == nil || !ff.HasVariables() {
		out, done, err := openOutput(w, ff, 0)
		if err != nil { return err }
		for _, n := range steps {
			if err = printStep(out, a, n, args.Arrays); err != nil { break }
		}
		if derr := done(); err == nil { err = derr }
		return err
	}

	log := logger.Get()
	for _, n := range steps {
		out, done, err := openOutput(w, ff, n)
		if err != nil { return err }
		err = printStep(out, a, n, args.Arrays)
		if derr := done(); err == nil { err = derr }
		if err != nil { return err }
		log.Debug("Wrote report step.", zap.Int("step", n),
			zap.String("path", ff.Expand(n)))
	}
	return nil
}

func printFile(w io.Writer, ff *format.FileFormat, args *Args) error {
	f, err := eclfile.Open(args.Input)
	if err != nil { return err }
	defer f.Close()

	out, done, err := openOutput(w, ff, 0)
	if err != nil { return err }

	list := f.List()
	for i := range list {
		if !selected(list[i].Name, args.Arrays) { continue }
		x, err := f.Get(i)
		if err == nil { err = writeArray(out, list[i], x) }
		if err != nil {
			done()
			return err
		}
	}
	return done()
}

func printStep(w io.Writer, a *rst.Archive, n int, arrays []string) error {
	list, err := a.Arrays(n)
	if err != nil { return err }

	if _, err := fmt.Fprintf(w, "# Report step %d\n", n); err != nil {
		return err
	}

	occurrence := map[string]int{ }
	for _, e := range list {
		k := occurrence[e.Name]
		occurrence[e.Name]++
		if !selected(e.Name, arrays) { continue }

		x, err := a.Get(e.Name, n, k)
		if err != nil { return err }
		if err := writeArray(w, e, x); err != nil { return err }
	}
	return nil
}

func selected(name string, arrays []string) bool {
	if len(arrays) == 0 { return true }
	for _, a := range arrays {
		if a == name { return true }
	}
	return false
}

// writeArray writes an array's header line and then its values, one per line.
func writeArray(w io.Writer, e eclfile.Entry, x interface{}) error {
	if _, err := fmt.Fprintf(w, "%s\n", e); err != nil { return err }

	var err error
	switch v := x.(type) {
	case []int32:
		for i := range v {
			if _, err = fmt.Fprintln(w, v[i]); err != nil { break }
		}
	case []float32:
		for i := range v {
			s := strconv.FormatFloat(float64(v[i]), 'g', -1, 32)
			if _, err = fmt.Fprintln(w, s); err != nil { break }
		}
	case []float64:
		for i := range v {
			s := strconv.FormatFloat(v[i], 'g', -1, 64)
			if _, err = fmt.Fprintln(w, s); err != nil { break }
		}
	case []string:
		for i := range v {
			if _, err = fmt.Fprintf(w, "'%s'\n", v[i]); err != nil { break }
		}
	case []bool:
		for i := range v {
			if _, err = fmt.Fprintln(w, v[i]); err != nil { break }
		}
	}
	return err
}

// openOutput returns the writer for report step n: w if ff is nil, and the
// file named by ff otherwise. done must be called once writing is finished.
func openOutput(
	w io.Writer, ff *format.FileFormat, n int,
) (out io.Writer, done func() error, err error) {
	if ff == nil { return w, func() error { return nil }, nil }

	path := ff.Expand(n)
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("The output file '%s' cannot be " +
			"created. The system error is: \"%s\"", path, err.Error())
	}
	return f, f.Close, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

func sortedNames(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for name := range m { out = append(out, name) }
	sort.Strings(out)
	return out
}
