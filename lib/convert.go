package lib

/* convert.go contains eclio's "convert" mode. */

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/logger"

	"go.uber.org/zap"
)

// Convert runs eclio's "convert" mode. It rewrites Input to Output, switching
// between the binary and formatted layouts according to Output's name and
// compressing with Compress. If Arrays is set only those arrays are kept.
func Convert(w io.Writer, args *Args) error {
	f, err := eclfile.Open(args.Input)
	if err != nil { return err }
	defer f.Close()

	recs := []eclfile.Record{ }
	for i, e := range f.List() {
		if !selected(e.Name, args.Arrays) { continue }
		x, err := f.Get(i)
		if err != nil { return err }
		recs = append(recs, eclfile.Record{ Name: e.Name, Values: x })
	}
	if len(recs) == 0 && len(args.Arrays) > 0 {
		return ecl.Errorf(ecl.ErrNotFound, args.Input, "None of the Arrays " +
			"%v are in the file.", args.Arrays)
	}

	err = eclfile.WriteCompressed(args.Output, recs, args.Compress)
	if err != nil { return err }

	logger.Get().Debug("Converted file.", zap.String("input", args.Input),
		zap.String("output", args.Output), zap.Int("arrays", len(recs)),
		zap.Stringer("compression", args.Compress))
	fmt.Fprintf(w, "Wrote %d arrays to %s.\n", len(recs), args.Output)
	return nil
}
