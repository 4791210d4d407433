package lib

/* summary.go contains eclio's "summary" and "esmry" modes. */

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/phil-mansfield/eclio/lib/catio"
	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/format"
	"github.com/phil-mansfield/eclio/lib/logger"
	"github.com/phil-mansfield/eclio/lib/smry"

	"go.uber.org/zap"
)

// Summary runs eclio's "summary" mode. It writes a table of the vectors
// matched by Keys to w, or to Output if it is set. If Times or TimesFile is
// set the vectors are interpolated to those times, with TimesFile giving them
// in its first column. Otherwise every stored sample is written along with
// its date.
func Summary(w io.Writer, args *Args) error {
	s, err := smry.Open(args.Input, args.LoadBaseRun)
	if err != nil { return err }

	keys, err := matchKeys(s, args.Keys)
	if err != nil { return err }

	logger.Get().Debug("Opened summary.", zap.String("path", s.Path()),
		zap.Int("samples", s.Len()), zap.Int("vectors", len(keys)))

	var ff *format.FileFormat
	if args.Output != "" {
		if ff, err = format.ParseFileFormat(args.Output); err != nil {
			return err
		}
	}
	out, done, err := openOutput(w, ff, 0)
	if err != nil { return err }

	times := args.Times
	if args.TimesFile != "" {
		cols, err := catio.TextFile(args.TimesFile, []int{ 0 })
		if err != nil {
			done()
			return err
		}
		times = cols[0]
	}

	if len(times) > 0 {
		err = interpolatedTable(out, s, keys, times)
	} else {
		err = sampleTable(out, s, keys)
	}
	if derr := done(); err == nil { err = derr }
	return err
}

// matchKeys expands the key patterns in the order given. A pattern which
// matches nothing is an error.
func matchKeys(s *smry.Summary, patterns []string) ([]string, error) {
	out, seen := []string{ }, map[string]bool{ }
	for _, p := range patterns {
		keys := s.Keys(p)
		if len(keys) == 0 {
			return nil, ecl.Errorf(ecl.ErrNotFound, s.Path(), "The key " +
				"pattern '%s' doesn't match any vector.", p).WithKey(p)
		}
		for _, k := range keys {
			if !seen[k] { out = append(out, k) }
			seen[k] = true
		}
	}
	return out, nil
}

func unitsRow(s *smry.Summary, keys []string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		u, err := s.Units(k)
		if err != nil { return nil, err }
		out[i] = u
	}
	return out, nil
}

func sampleTable(w io.Writer, s *smry.Summary, keys []string) error {
	dates, err := s.Dates()
	if err != nil { return err }
	units, err := unitsRow(s, keys)
	if err != nil { return err }

	cols := make([][]float32, len(keys))
	for i := range keys {
		if cols[i], err = s.Get(keys[i], false); err != nil { return err }
	}

	tw := newTable(w)
	writeRow(tw, "DATE", keys, func(i int) string { return keys[i] })
	writeRow(tw, "", keys, func(i int) string { return units[i] })
	for j := range dates {
		writeRow(tw, dates[j].Format("2006-01-02T15:04:05.000"), keys,
			func(i int) string { return formatReal(cols[i][j]) })
	}
	return tw.Flush()
}

func interpolatedTable(
	w io.Writer, s *smry.Summary, keys []string, times []float64,
) error {
	units, err := unitsRow(s, keys)
	if err != nil { return err }

	cols := make([][]float64, len(keys))
	for i := range keys {
		if cols[i], err = s.Interpolate(keys[i], times); err != nil {
			return err
		}
	}

	tw := newTable(w)
	writeRow(tw, smry.TimeKey, keys, func(i int) string { return keys[i] })
	writeRow(tw, "DAYS", keys, func(i int) string { return units[i] })
	for j := range times {
		writeRow(tw, strconv.FormatFloat(times[j], 'g', -1, 64), keys,
			func(i int) string {
				return strconv.FormatFloat(cols[i][j], 'g', -1, 64)
			})
	}
	return tw.Flush()
}

func writeRow(w io.Writer, first string, keys []string, col func(int) string) {
	fmt.Fprint(w, first)
	for i := range keys { fmt.Fprintf(w, "\t%s", col(i)) }
	fmt.Fprintln(w)
}

func formatReal(x float32) string {
	return strconv.FormatFloat(float64(x), 'g', -1, 32)
}

// ESMRY runs eclio's "esmry" mode, which writes the cached ESMRY form of a
// summary next to its SMSPEC file. An up to date ESMRY file is left alone.
func ESMRY(w io.Writer, args *Args) error {
	path, err := smry.MakeESMRY(args.Input)
	if errors.Is(err, ecl.ErrExists) {
		logger.Get().Info("The ESMRY file is already up to date.",
			zap.String("path", path))
		return nil
	} else if err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s.\n", path)
	return nil
}
