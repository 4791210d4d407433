package smry

import (
	"fmt"
	"os"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
)

// MakeESMRY reads the summary of specPath and writes it to an ESMRY file
// next to it, returning the new file's path. ESMRY files store every vector
// contiguously and are much faster to open than UNSMRY files.
//
// If an ESMRY file which is at least as new as the SMSPEC and data files
// already exists, nothing is written and the error is ErrExists. Older ESMRY
// files are rebuilt.
func MakeESMRY(specPath string) (string, error) {
	if isESMRY(specPath) {
		return "", ecl.Errorf(ecl.ErrValue, specPath, "MakeESMRY needs an " +
			"SMSPEC or FSMSPEC file.")
	}
	out := withExt(rootName(specPath), ".ESMRY", specPath)

	files, err := dataFiles(specPath)
	if err != nil {
		if _, serr := os.Stat(specPath); serr != nil {
			return "", ecl.Errorf(ecl.ErrNotFound, specPath, "The " +
				"specification file does not exist.")
		}
		return "", err
	}
	if fresh(out, append(files, specPath)) {
		return out, ecl.Errorf(ecl.ErrExists, out, "An ESMRY file newer " +
			"than its SMSPEC and data files already exists.")
	}

	s, err := Open(specPath, false)
	if err != nil { return "", err }
	if err := eclfile.Write(out, s.esmryRecords()); err != nil {
		return "", err
	}
	return out, nil
}

// fresh returns true if path exists and is at least as new as every input.
func fresh(path string, inputs []string) bool {
	info, err := os.Stat(path)
	if err != nil { return false }
	for _, in := range inputs {
		inInfo, err := os.Stat(in)
		if err != nil || inInfo.ModTime().After(info.ModTime()) {
			return false
		}
	}
	return true
}

// esmryRecords lays s out as the arrays of an ESMRY file: DIMENS, START,
// RESTART, KEYWORDS, WGNAMES, NUMS, UNITS, RSTEP, TSTEP and then one REAL
// array V<i> for the i-th vector.
func (s *Summary) esmryRecords() []eclfile.Record {
	n := len(s.keys)
	keywords, wgnames := make([]string, n), make([]string, n)
	nums := make([]int32, n)
	for i, nd := range s.nodes {
		keywords[i], wgnames[i], nums[i] = nd.keyword, nd.wgname, nd.num
	}

	rstep, tstep := make([]int32, s.Len()), make([]int32, s.Len())
	for i := range tstep { tstep[i] = int32(i) }
	for _, k := range s.rstep { rstep[k] = 1 }

	recs := []eclfile.Record{
		{ Name: "DIMENS", Values: []int32{ int32(n), int32(s.dims[0]), int32(s.dims[1]),
			int32(s.dims[2]), 0, int32(s.restartStep) } },
		{ Name: "START", Values: startDat(s.start) },
		{ Name: "RESTART", Values: splitPieces(s.restart) },
		{ Name: "KEYWORDS", Values: keywords },
		{ Name: "WGNAMES", Values: wgnames },
		{ Name: "NUMS", Values: nums },
		{ Name: "UNITS", Values: s.units },
		{ Name: "RSTEP", Values: rstep },
		{ Name: "TSTEP", Values: tstep },
	}
	for i := range s.vectors {
		recs = append(recs, eclfile.Record{ Name: fmt.Sprintf("V%d", i), Values: s.vectors[i] })
	}
	return recs
}

// splitPieces splits a string into the 8 character pieces of a CHAR array.
func splitPieces(str string) []string {
	out := []string{ }
	for len(str) > ecl.CharWidth {
		out = append(out, str[:ecl.CharWidth])
		str = str[ecl.CharWidth:]
	}
	return append(out, str)
}

func esmryError(path, format string, a ...interface{}) *ecl.Error {
	return ecl.Errorf(ecl.ErrValue, path, "Malformed ESMRY file: " + format, a...)
}

// readESMRY reads a file written by MakeESMRY.
func readESMRY(path string) (*Summary, error) {
	f, err := eclfile.Open(path)
	if err != nil { return nil, err }
	defer f.Close()

	ints := map[string][]int32{ }
	for _, name := range []string{ "DIMENS", "START", "NUMS", "RSTEP" } {
		if ints[name], err = f.IntsNamed(name); err != nil {
			return nil, esmryError(path, "%s could not be read: %s",
				name, err.Error())
		}
	}
	chars := map[string][]string{ }
	for _, name := range []string{ "RESTART", "KEYWORDS", "WGNAMES", "UNITS" } {
		if chars[name], err = f.CharsNamed(name); err != nil {
			return nil, esmryError(path, "%s could not be read: %s",
				name, err.Error())
		}
	}

	dimens, keywords := ints["DIMENS"], chars["KEYWORDS"]
	n := len(keywords)
	if len(dimens) < 6 {
		return nil, esmryError(path, "DIMENS has %d elements instead of 6.",
			len(dimens))
	} else if len(chars["WGNAMES"]) != n || len(ints["NUMS"]) != n ||
		len(chars["UNITS"]) != n {
		return nil, esmryError(path, "KEYWORDS, WGNAMES, NUMS and UNITS have " +
			"different lengths.")
	}

	nodes := make([]node, n)
	for i := range nodes {
		nodes[i] = node{ keywords[i], chars["WGNAMES"][i], ints["NUMS"][i] }
	}
	dims := [3]int{ int(dimens[1]), int(dimens[2]), int(dimens[3]) }

	s, src := newSummary(path, nodes, chars["UNITS"], dims)
	if len(src) != n {
		return nil, esmryError(path, "Some vectors have empty or repeated keys.")
	}
	if s.start, err = startDate(ints["START"]); err != nil {
		return nil, esmryError(path, "%s", err.Error())
	}
	s.restart = trimPieces(chars["RESTART"])
	s.restartStep = int(dimens[5])

	rstep := ints["RSTEP"]
	for k := range rstep {
		if rstep[k] != 0 { s.rstep = append(s.rstep, k) }
	}

	for i := range s.vectors {
		v, err := f.RealsNamed(fmt.Sprintf("V%d", i))
		if err != nil {
			return nil, esmryError(path, "vector %d could not be read: %s",
				i, err.Error()).WithKey(s.keys[i])
		} else if len(v) != len(rstep) {
			return nil, esmryError(path, "vector %d has %d samples, but RSTEP " +
				"has %d.", i, len(v), len(rstep)).WithKey(s.keys[i])
		}
		s.vectors[i] = v
	}

	return s, nil
}
