/*package catio reads columns of numbers from text files, such as a list of
times written out by another program:

    # days    weight
    0         1.0
    365.25    0.5

Comments run from the Comment character to the end of the line, and blank
lines are skipped.
*/
package catio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// TextConfig contains information needed to parse a text file.
type TextConfig struct {
	Comment byte // Character used to start comments.
	SkipLines int // Number of lines to skip at the start of file.
	MaxLineSize int // Largest possible line size.
}

// DefaultConfig reads '#'-commented files without a header.
var DefaultConfig = TextConfig{
	Comment: '#',
	SkipLines: 0,
	MaxLineSize: 1<<20,
}

// TextFile reads the given columns of the text file fname as float64s. Column
// indices start at 0. An optional config may be provided, otherwise
// DefaultConfig is used.
func TextFile(
	fname string, columns []int, config ...TextConfig,
) ([][]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("The text file '%s' could not be opened. The " +
			"system error is: \"%s\"", fname, err.Error())
	}
	defer f.Close()

	out, err := Text(f, columns, config...)
	if err != nil { return nil, fmt.Errorf("In '%s': %s", fname, err.Error()) }
	return out, nil
}

// Text reads the given columns of the text in rd as float64s.
func Text(
	rd io.Reader, columns []int, config ...TextConfig,
) ([][]float64, error) {
	cfg := DefaultConfig
	if len(config) > 0 { cfg = config[0] }

	maxCol := -1
	for _, c := range columns {
		if c < 0 {
			return nil, fmt.Errorf("Column %d was requested, but columns " +
				"start at 0.", c)
		}
		if c > maxCol { maxCol = c }
	}

	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 4096), cfg.MaxLineSize)

	out := make([][]float64, len(columns))
	for i := range out { out[i] = []float64{ } }

	for line := 1; sc.Scan(); line++ {
		if line <= cfg.SkipLines { continue }

		text := sc.Bytes()
		if i := bytes.IndexByte(text, cfg.Comment); i >= 0 { text = text[:i] }
		tok := bytes.Fields(text)
		if len(tok) == 0 { continue }

		if len(tok) <= maxCol {
			return nil, fmt.Errorf("Line %d has %d columns, but column %d " +
				"was requested.", line, len(tok), maxCol)
		}
		for i, c := range columns {
			x, err := strconv.ParseFloat(string(tok[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("Column %d of line %d, '%s', is not a " +
					"number.", c, line, tok[c])
			}
			out[i] = append(out[i], x)
		}
	}

	if err := sc.Err(); err != nil { return nil, err }
	return out, nil
}
