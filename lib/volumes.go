package lib

/* volumes.go contains eclio's "grid" and "volumes" modes. */

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/eclio/lib/format"
	"github.com/phil-mansfield/eclio/lib/grid"
	"github.com/phil-mansfield/eclio/lib/logger"
	"github.com/phil-mansfield/eclio/lib/modinit"
	"github.com/phil-mansfield/eclio/lib/rst"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// gridChunk is the number of cells a single goroutine works through at a
// time in grid mode.
const gridChunk = 1<<12

// GridStats are totals over the active cells of a grid.
type GridStats struct {
	Volume float64
	// Top and Bottom are the smallest and largest cell center depths.
	Top, Bottom float64
}

// ActiveGridStats computes GridStats with up to threads goroutines.
func ActiveGridStats(
	ctx context.Context, g *grid.Grid, threads int,
) (GridStats, error) {
	n := g.ActiveCells()
	chunks := (n + gridChunk - 1) / gridChunk
	partial := make([]GridStats, chunks)

	eg, ctx := errgroup.WithContext(ctx)
	if threads > 0 { eg.SetLimit(threads) }

	for c := 0; c < chunks; c++ {
		c := c
		eg.Go(func() error {
			if err := ctx.Err(); err != nil { return err }

			st := GridStats{ Top: math.Inf(+1), Bottom: math.Inf(-1) }
			end := (c + 1)*gridChunk
			if end > n { end = n }
			for a := c*gridChunk; a < end; a++ {
				idx, err := g.GlobalFromActive(a)
				if err != nil { return err }
				vol, err := g.CellVolume(idx)
				if err != nil { return err }
				center, err := g.CellCenter(idx)
				if err != nil { return err }

				st.Volume += vol
				st.Top = math.Min(st.Top, center[2])
				st.Bottom = math.Max(st.Bottom, center[2])
			}
			partial[c] = st
			return nil
		})
	}
	if err := eg.Wait(); err != nil { return GridStats{ }, err }

	out := GridStats{ Top: math.Inf(+1), Bottom: math.Inf(-1) }
	for _, st := range partial {
		out.Volume += st.Volume
		out.Top = math.Min(out.Top, st.Top)
		out.Bottom = math.Max(out.Bottom, st.Bottom)
	}
	return out, nil
}

// Grid runs eclio's "grid" mode, which describes the grid in the input file.
func Grid(w io.Writer, args *Args) error {
	g, err := grid.Open(args.Input)
	if err != nil { return err }
	defer g.Close()

	nx, ny, nz := g.Dimension()
	tw := newTable(w)
	fmt.Fprintf(tw, "Dimensions\t%d x %d x %d\n", nx, ny, nz)
	fmt.Fprintf(tw, "Cells\t%d\n", g.Cells())
	fmt.Fprintf(tw, "Active cells\t%d\n", g.ActiveCells())

	if g.ActiveCells() > 0 {
		st, err := ActiveGridStats(context.Background(), g, Threads())
		if err != nil { return err }
		fmt.Fprintf(tw, "Bulk volume\t%g\n", st.Volume)
		fmt.Fprintf(tw, "Depth range\t%g - %g\n", st.Top, st.Bottom)
	}
	return tw.Flush()
}

// Volumes runs eclio's "volumes" mode. It applies Filter and
// FreeWaterLevels to the active cells of an INIT file and writes the number
// of cells which pass along with the sums of the Arrays columns. PORV is
// summed if Arrays isn't set, and so is CELLVOL if a Grid is given.
func Volumes(w io.Writer, args *Args) error {
	m, err := modinit.Open(args.Input)
	if err != nil { return err }
	defer m.Close()

	log := logger.Get()
	columns := args.Arrays
	if len(columns) == 0 { columns = []string{ "PORV" } }

	if args.Grid != "" {
		g, err := grid.Open(args.Grid)
		if err != nil { return err }
		err = m.AttachGrid(g)
		g.Close()
		if err != nil { return err }
		if len(args.Arrays) == 0 {
			columns = append(columns, modinit.CellVolume)
		}
		log.Debug("Attached grid.", zap.String("path", args.Grid))
	}

	if args.Restart != "" {
		a, err := rst.Open(args.Restart)
		if err != nil { return err }
		err = m.AttachRestart(a, args.ReportStep)
		a.Close()
		if err != nil { return err }
		log.Debug("Attached restart.", zap.String("path", args.Restart),
			zap.Int("step", args.ReportStep))
	}

	if err := applyFilters(m, args); err != nil { return err }

	var ff *format.FileFormat
	if args.Output != "" {
		if ff, err = format.ParseFileFormat(args.Output); err != nil {
			return err
		}
	}
	out, done, err := openOutput(w, ff, 0)
	if err != nil { return err }

	tw := newTable(out)
	fmt.Fprintf(tw, "Cells\t%d\n", m.ActiveCells())
	for _, col := range columns {
		sum, err := m.Sum(col)
		if err != nil {
			done()
			return err
		}
		fmt.Fprintf(tw, "%s\t%g\n", col, sum)
	}
	err = tw.Flush()
	if derr := done(); err == nil { err = derr }
	return err
}

func applyFilters(m *modinit.Model, args *Args) error {
	for _, f := range args.Filters {
		if err := m.AddFilter(f.Column, f.Op, f.Values...); err != nil {
			return err
		}
	}
	if len(args.FreeWaterLevels) > 0 {
		if err := m.AddHCFilter(args.FreeWaterLevels); err != nil {
			return err
		}
	}
	logger.Get().Debug("Applied filters.",
		zap.Int("filters", len(args.Filters)),
		zap.Int("cells", m.ActiveCells()))
	return nil
}
