package smry

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
)

const (
	seqhdr = "SEQHDR"
	ministep = "MINISTEP"
	params = "PARAMS"
)

// Open reads a summary. path names an SMSPEC, FSMSPEC or ESMRY file. If
// loadBaseRun is true and the run is a restart, the runs it restarts from are
// read too and spliced in front of it.
func Open(path string, loadBaseRun bool) (*Summary, error) {
	return open(path, loadBaseRun, map[string]bool{ })
}

func open(path string, loadBaseRun bool, seen map[string]bool) (*Summary, error) {
	abs, err := filepath.Abs(path)
	if err != nil { abs = path }
	if seen[abs] {
		return nil, ecl.Errorf(ecl.ErrInconsistentArchive, path, "The " +
			"chain of restarts loops back onto this run.")
	}
	seen[abs] = true

	var s *Summary
	if isESMRY(path) {
		s, err = readESMRY(path)
	} else {
		s, err = readRun(path)
	}
	if err != nil { return nil, err }

	if !loadBaseRun || s.restart == "" { return s, nil }

	basePath, err := s.baseRunPath()
	if err != nil { return nil, err }
	base, err := open(basePath, true, seen)
	if err != nil { return nil, err }
	return splice(base, s)
}

func isESMRY(path string) bool {
	return strings.ToUpper(filepath.Ext(path)) == ".ESMRY"
}

// rootName strips the extension from path.
func rootName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// withExt gives root an extension in the same case as the extension of ref.
func withExt(root, ext, ref string) string {
	refExt := filepath.Ext(ref)
	if refExt != "" && refExt == strings.ToLower(refExt) {
		ext = strings.ToLower(ext)
	}
	return root + ext
}

// baseRunPath finds the summary of the run that s restarts from. The root
// name is relative to the directory of s.
func (s *Summary) baseRunPath() (string, error) {
	root := s.restart
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(s.path), root)
	}

	for _, ext := range []string{ ".SMSPEC", ".FSMSPEC", ".ESMRY" } {
		for _, path := range []string{ root + ext, root + strings.ToLower(ext) } {
			if _, err := os.Stat(path); err == nil { return path, nil }
		}
	}
	return "", ecl.Errorf(ecl.ErrNotFound, s.path, "The run restarts from " +
		"'%s', but no SMSPEC, FSMSPEC or ESMRY file exists for it.", root)
}

// spec is the content of an SMSPEC file.
type spec struct {
	nodes []node
	units []string
	dims [3]int
	start time.Time
	restart string
	restartStep int
}

func specError(path, format string, a ...interface{}) error {
	return ecl.Errorf(ecl.ErrValue, path, "Malformed specification file: " +
		format, a...)
}

func readSpec(path string) (*spec, error) {
	f, err := eclfile.Open(path)
	if err != nil { return nil, err }
	defer f.Close()

	sp := &spec{ }
	dimens, err := f.IntsNamed("DIMENS")
	if err != nil {
		return nil, specError(path, "DIMENS could not be read: %s", err.Error())
	} else if len(dimens) < 4 {
		return nil, specError(path, "DIMENS has %d elements instead of at " +
			"least 4.", len(dimens))
	}
	sp.dims = [3]int{ int(dimens[1]), int(dimens[2]), int(dimens[3]) }
	if len(dimens) > 5 { sp.restartStep = int(dimens[5]) }

	keywords, err := f.CharsNamed("KEYWORDS")
	if err != nil {
		return nil, specError(path, "KEYWORDS could not be read: %s", err.Error())
	}
	n := len(keywords)

	wgnames, err := f.CharsNamed("WGNAMES")
	if errors.Is(err, ecl.ErrNotFound) { wgnames, err = f.CharsNamed("NAMES") }
	if err != nil {
		return nil, specError(path, "WGNAMES could not be read: %s", err.Error())
	}

	var nums []int32
	if f.Has("NUMS") {
		if nums, err = f.IntsNamed("NUMS"); err != nil {
			return nil, specError(path, "NUMS could not be read: %s", err.Error())
		}
	} else {
		nums = make([]int32, n)
	}

	sp.units, err = f.CharsNamed("UNITS")
	if err != nil {
		return nil, specError(path, "UNITS could not be read: %s", err.Error())
	}

	if len(wgnames) != n || len(nums) != n || len(sp.units) != n {
		return nil, specError(path, "KEYWORDS, WGNAMES, NUMS and UNITS have " +
			"lengths %d, %d, %d and %d.", n, len(wgnames), len(nums),
			len(sp.units))
	}

	sp.nodes = make([]node, n)
	for i := range sp.nodes {
		sp.nodes[i] = node{ keywords[i], wgnames[i], nums[i] }
	}

	startdat, err := f.IntsNamed("STARTDAT")
	if err != nil {
		return nil, specError(path, "STARTDAT could not be read: %s", err.Error())
	}
	if sp.start, err = startDate(startdat); err != nil {
		return nil, specError(path, "%s", err.Error())
	}

	if f.Has("RESTART") {
		pieces, err := f.CharsNamed("RESTART")
		if err != nil {
			return nil, specError(path, "RESTART could not be read: %s",
				err.Error())
		}
		sp.restart = trimPieces(pieces)
	}

	return sp, nil
}

// startDate converts STARTDAT, [day month year (hour minute microsecond)],
// into a time.
func startDate(x []int32) (time.Time, error) {
	if len(x) < 3 {
		return time.Time{ }, errors.New("STARTDAT has fewer than 3 elements.")
	}
	var hour, minute, usec int32
	if len(x) >= 6 { hour, minute, usec = x[3], x[4], x[5] }
	t := time.Date(int(x[2]), time.Month(x[1]), int(x[0]),
		int(hour), int(minute), 0, 0, time.UTC)
	return t.Add(time.Duration(usec) * time.Microsecond), nil
}

// startDat is the inverse of startDate.
func startDat(t time.Time) []int32 {
	usec := t.Second()*1000000 + t.Nanosecond()/1000
	return []int32{
		int32(t.Day()), int32(t.Month()), int32(t.Year()),
		int32(t.Hour()), int32(t.Minute()), int32(usec),
	}
}

// dataFiles returns the data files belonging to an SMSPEC: the unified
// UNSMRY file, or the numbered S0001, S0002, ... files if those are newer or
// the only ones present.
func dataFiles(specPath string) ([]string, error) {
	root := rootName(specPath)
	formatted := ecl.IsFormattedName(specPath)

	unifiedExt, multiPrefix := ".UNSMRY", ".S"
	if formatted { unifiedExt, multiPrefix = ".FUNSMRY", ".A" }
	unified := withExt(root, unifiedExt, specPath)
	multiPattern := withExt(root, multiPrefix, specPath) +
		"[0-9][0-9][0-9][0-9]"

	multi, _ := filepath.Glob(multiPattern)
	sort.Strings(multi)

	uInfo, uErr := os.Stat(unified)
	switch {
	case uErr != nil && len(multi) == 0:
		return nil, ecl.Errorf(ecl.ErrValue, specPath, "No summary data file " +
			"exists: neither %s nor %s.", unified, multiPattern)
	case uErr != nil:
		return multi, nil
	case len(multi) == 0:
		return []string{ unified }, nil
	}

	mInfo, err := os.Stat(multi[len(multi) - 1])
	if err == nil && mInfo.ModTime().After(uInfo.ModTime()) {
		return multi, nil
	}
	return []string{ unified }, nil
}

// readRun reads an SMSPEC file and its data.
func readRun(path string) (*Summary, error) {
	sp, err := readSpec(path)
	if err != nil { return nil, err }
	files, err := dataFiles(path)
	if err != nil { return nil, err }

	s, src := newSummary(path, sp.nodes, sp.units, sp.dims)
	s.start = sp.start
	s.restart, s.restartStep = sp.restart, sp.restartStep

	timeParam := 0
	if i, ok := s.index[TimeKey]; ok { timeParam = src[i] }

	if err := s.readData(files, len(sp.nodes), src, timeParam); err != nil {
		return nil, err
	}
	return s, nil
}

// dataRef is one array in the concatenated data files.
type dataRef struct {
	f *eclfile.File
	i int
	name string
}

// readData reads the PARAMS arrays from files. The stream is an optional
// SEQHDR followed by MINISTEP, PARAMS pairs, with a SEQHDR in front of each
// new report step.
func (s *Summary) readData(
	files []string, nParams int, src []int, timeParam int,
) error {
	refs := []dataRef{ }
	for _, path := range files {
		f, err := eclfile.Open(path)
		if err != nil { return err }
		defer f.Close()

		for i, e := range f.List() {
			refs = append(refs, dataRef{ f, i, e.Name })
		}
	}

	step := 0
	i := 0
	if len(refs) > 0 && refs[0].name == seqhdr { i++ }
	for i < len(refs) {
		if refs[i].name != ministep || i+1 >= len(refs) ||
			refs[i+1].name != params {
			return ecl.Errorf(ecl.ErrCorruptFormat, refs[i].f.Path(),
				"Expected a MINISTEP array followed by a PARAMS array, but " +
				"found %s.", refs[i].name).WithIndex(refs[i].i)
		}

		p, err := refs[i+1].f.Reals(refs[i+1].i)
		if err != nil { return err }
		if len(p) < nParams {
			return ecl.Errorf(ecl.ErrCorruptFormat, refs[i+1].f.Path(),
				"PARAMS has %d values, but the specification lists %d " +
				"vectors.", len(p), nParams).WithIndex(refs[i+1].i)
		}
		for j := range s.vectors {
			s.vectors[j] = append(s.vectors[j], p[src[j]])
		}

		i += 2
		switch {
		case i >= len(refs):
			s.addReportStep(step)
		case refs[i].name == seqhdr:
			s.addReportStep(step)
			i++
		case p[timeParam] == 0:
			s.addReportStep(step)
		}
		step++
	}

	return nil
}

func (s *Summary) addReportStep(step int) {
	if n := len(s.rstep); n > 0 && s.rstep[n-1] == step { return }
	s.rstep = append(s.rstep, step)
}

// splice puts the samples of base which come before the first sample of rst
// in front of rst.
func splice(base, rst *Summary) (*Summary, error) {
	bt, err := base.Times()
	if err != nil {
		return nil, ecl.Errorf(ecl.ErrInconsistentArchive, base.path, "The " +
			"base run of %s has no TIME vector.", rst.path).WithKey(TimeKey)
	}

	for i, key := range rst.keys {
		j, ok := base.index[key]
		if !ok {
			return nil, ecl.Errorf(ecl.ErrInconsistentArchive, base.path,
				"The restart run %s has a vector which its base run doesn't.",
				rst.path).WithKey(key)
		} else if base.units[j] != rst.units[i] {
			return nil, ecl.Errorf(ecl.ErrInconsistentArchive, base.path,
				"The base run has units '%s', but the restart run %s has " +
				"units '%s'.", base.units[j], rst.path, rst.units[i]).
				WithKey(key)
		}
	}

	cut := len(bt)
	if rt, err := rst.Times(); err == nil && len(rt) > 0 {
		cut = 0
		for cut < len(bt) && bt[cut] < rt[0] { cut++ }
	}

	out := &Summary{
		path: rst.path,
		keys: rst.keys, nodes: rst.nodes, units: rst.units, index: rst.index,
		vectors: make([][]float32, len(rst.keys)),
		start: base.start, dims: rst.dims,
		restart: rst.restart, restartStep: rst.restartStep,
	}
	for i, key := range rst.keys {
		v := make([]float32, 0, cut + len(rst.vectors[i]))
		v = append(v, base.vectors[base.index[key]][:cut]...)
		out.vectors[i] = append(v, rst.vectors[i]...)
	}

	for _, k := range base.rstep {
		if k < cut { out.rstep = append(out.rstep, k) }
	}
	for _, k := range rst.rstep { out.rstep = append(out.rstep, k + cut) }

	return out, nil
}
