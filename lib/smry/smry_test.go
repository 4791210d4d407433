package smry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/eq"
)

type vec struct {
	kw, wg string
	num int32
	unit string
}

// runVecs is shaped like the vectors of 9_EDITNNC.SMSPEC, including one
// well vector with no well, a repeated key and an empty keyword. The later
// FOPT is the one a Summary keeps.
var runVecs = []vec{
	{ "TIME", defaultWGName, 0, "DAYS" },
	{ "YEARS", defaultWGName, 0, "YEARS" },
	{ "FOPT", defaultWGName, 0, "STB" },
	{ "FOPR", defaultWGName, 0, "SM3/DAY" },
	{ "WOPR", "PROD", 0, "SM3/DAY" },
	{ "WOPR", "INJ", 0, "SM3/DAY" },
	{ "WOPR", defaultWGName, 0, "SM3/DAY" },
	{ "BPR", defaultWGName, 1186, "BARSA" },
	{ "RWFT", defaultWGName, 1 + 12*32768, "SM3" },
	{ "FOPT", defaultWGName, 0, "SM3" },
	{ "", "", 0, "" },
}

var runKeys = []string{
	"TIME", "YEARS", "FOPT", "FOPR", "WOPR:PROD", "WOPR:INJ",
	"BPR:3,4,5", "RWFT:1-2",
}

func param(v vec, t, offset float32) float32 {
	switch v.kw {
	case "TIME": return t
	case "YEARS": return t / 365.25
	case "FOPT":
		if v.unit != "SM3" { return -99 }
		return 100*t + offset
	case "FOPR": return 100
	case "WOPR": return 60
	case "BPR": return 250 - t/10
	case "RWFT": return 2*t
	}
	return 0
}

func samples(vecs []vec, times []float32, offset float32) [][]float32 {
	out := make([][]float32, len(times))
	for i, t := range times {
		out[i] = make([]float32, len(vecs))
		for j := range vecs { out[i][j] = param(vecs[j], t, offset) }
	}
	return out
}

func specRecords(vecs []vec, restart string) []eclfile.Record {
	n := len(vecs)
	keywords, wgnames, units := make([]string, n), make([]string, n),
		make([]string, n)
	nums := make([]int32, n)
	for i, v := range vecs {
		keywords[i], wgnames[i], nums[i], units[i] = v.kw, v.wg, v.num, v.unit
	}
	return []eclfile.Record{
		{ Name: "INTEHEAD", Values: []int32{ 1, 100 } },
		{ Name: "RESTART", Values: splitPieces(restart) },
		{ Name: "DIMENS", Values: []int32{ int32(n), 13, 22, 11, 0, 0 } },
		{ Name: "KEYWORDS", Values: keywords },
		{ Name: "WGNAMES", Values: wgnames },
		{ Name: "NUMS", Values: nums },
		{ Name: "UNITS", Values: units },
		{ Name: "STARTDAT", Values: []int32{ 1, 1, 2000, 0, 0, 0 } },
	}
}

// dataRecords lays out PARAMS arrays with a SEQHDR in front of each sample
// index in breaks.
func dataRecords(params [][]float32, breaks []int) []eclfile.Record {
	recs := []eclfile.Record{ }
	for i := range params {
		for _, b := range breaks {
			if b == i { recs = append(recs, eclfile.Record{ Name: "SEQHDR", Values: []int32{ 0 } }) }
		}
		recs = append(recs,
			eclfile.Record{ Name: "MINISTEP", Values: []int32{ int32(i) } },
			eclfile.Record{ Name: "PARAMS", Values: params[i] },
		)
	}
	return recs
}

func write(t *testing.T, path string, recs []eclfile.Record) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Could not create directory for %s.", path)
	}
	if err := eclfile.Write(path, recs); err != nil {
		t.Fatalf("Expected valid write of %s, got %s.", path, err.Error())
	}
}

var (
	baseTimes = []float32{ 0, 10, 20, 30, 40, 50, 60, 70, 80, 90 }
	baseBreaks = []int{ 0, 3, 6 }
)

// writeRun writes a run with the given root and returns its SMSPEC path.
func writeRun(
	t *testing.T, root string, formatted bool, vecs []vec, restart string,
	times []float32, offset float32, breaks []int,
) string {
	specExt, dataExt := ".SMSPEC", ".UNSMRY"
	if formatted { specExt, dataExt = ".FSMSPEC", ".FUNSMRY" }
	write(t, root + specExt, specRecords(vecs, restart))
	write(t, root + dataExt, dataRecords(samples(vecs, times, offset), breaks))
	return root + specExt
}

func checkBaseRun(t *testing.T, name string, s *Summary) {
	if keys := s.Keys(""); !eq.Strings(keys, runKeys) {
		t.Errorf("%s) Expected keys %v, got %v.", name, runKeys, keys)
	}
	if s.Len() != 10 {
		t.Errorf("%s) Expected 10 samples, got %d.", name, s.Len())
	}
	if rs := s.ReportSteps(); !eq.Ints(rs, []int{ 0, 2, 5, 9 }) {
		t.Errorf("%s) Expected report steps [0 2 5 9], got %v.", name, rs)
	}

	times, err := s.Times()
	if err != nil || times[0] != 0 {
		t.Errorf("%s) Expected TIME[0] = 0, got %v (%v).", name, times, err)
	}
	fopt, _ := s.Get("FOPT", false)
	if len(fopt) != 10 || fopt[9] != 9000 {
		t.Errorf("%s) Expected the final FOPT to be 9000, got %v.", name, fopt)
	}
	fopt, _ = s.Get("FOPT", true)
	if !eq.Float32s(fopt, []float32{ 0, 2000, 5000, 9000 }) {
		t.Errorf("%s) Expected FOPT at report steps [0 2000 5000 9000], " +
			"got %v.", name, fopt)
	}

	if u, err := s.Units("FOPR"); err != nil || u != "SM3/DAY" {
		t.Errorf("%s) Expected FOPR in SM3/DAY, got '%s' (%v).", name, u, err)
	}
	if u, err := s.Units("FOPT"); err != nil || u != "SM3" {
		t.Errorf("%s) Expected the repeated FOPT to keep the units of its " +
			"last vector, SM3, got '%s' (%v).", name, u, err)
	}
	if nx, ny, nz := s.Dimensions(); nx != 13 || ny != 22 || nz != 11 {
		t.Errorf("%s) Expected dimensions (13, 22, 11), got (%d, %d, %d).",
			name, nx, ny, nz)
	}

	dates, _ := s.Dates()
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !s.StartDate().Equal(start) || len(dates) != 10 ||
		!dates[1].Equal(start.AddDate(0, 0, 10)) {
		t.Errorf("%s) Expected dates starting at %v every 10 days, got %v.",
			name, start, dates)
	}
}

func TestOpenRun(t *testing.T) {
	for _, formatted := range []bool{ false, true } {
		root := filepath.Join(t.TempDir(), "9_EDITNNC")
		path := writeRun(t, root, formatted, runVecs, "",
			baseTimes, 0, baseBreaks)

		s, err := Open(path, false)
		if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
		checkBaseRun(t, filepath.Base(path), s)
	}
}

func TestEditNNCVectors(t *testing.T) {
	vecs := append([]vec{ }, runVecs...)
	for num := int32(1); num <= 104; num++ {
		vecs = append(vecs, vec{ "BPR", defaultWGName, num, "BARSA" })
	}

	root := filepath.Join(t.TempDir(), "9_EDITNNC")
	path := writeRun(t, root, false, vecs, "", baseTimes, 5639039.5,
		baseBreaks)
	s, err := Open(path, false)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }

	if keys := s.Keys(""); len(keys) != 112 {
		t.Errorf("Expected 112 vectors, got %d.", len(keys))
	}
	times, err := s.Times()
	if err != nil || len(times) == 0 || times[0] != 0.0 {
		t.Errorf("Expected TIME[0] = 0, got %v (%v).", times, err)
	}
	fopt, err := s.Get("FOPT", false)
	if err != nil || len(fopt) == 0 || fopt[len(fopt) - 1] != 5648039.5 {
		t.Errorf("Expected the final FOPT to be 5648039.5, got %v (%v).",
			fopt, err)
	}
}

func TestMultipleDataFiles(t *testing.T) {
	for _, formatted := range []bool{ false, true } {
		root := filepath.Join(t.TempDir(), "9_EDITNNC")
		specExt, prefix := ".SMSPEC", ".S"
		if formatted { specExt, prefix = ".FSMSPEC", ".A" }

		write(t, root + specExt, specRecords(runVecs, ""))
		params := samples(runVecs, baseTimes, 0)
		ranges := [][2]int{ { 0, 3 }, { 3, 6 }, { 6, 10 } }
		for i, r := range ranges {
			write(t, fmt.Sprintf("%s%s%04d", root, prefix, i + 1),
				dataRecords(params[r[0]: r[1]], []int{ 0 }))
		}

		s, err := Open(root + specExt, false)
		if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
		checkBaseRun(t, "multiple " + specExt, s)
	}
}

func TestKeyPatterns(t *testing.T) {
	root := filepath.Join(t.TempDir(), "9_EDITNNC")
	s, err := Open(writeRun(t, root, false, runVecs, "", baseTimes, 0,
		baseBreaks), false)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }

	tests := []struct{
		pattern string
		keys []string
	} {
		{ "WOPR:*", []string{ "WOPR:PROD", "WOPR:INJ" } },
		{ "?OP?", []string{ "FOPT", "FOPR" } },
		{ "F*", []string{ "FOPT", "FOPR" } },
		{ "*:*", []string{ "WOPR:PROD", "WOPR:INJ", "BPR:3,4,5", "RWFT:1-2" } },
		{ "GOPR*", []string{ } },
	}
	for i := range tests {
		if keys := s.Keys(tests[i].pattern); !eq.Strings(keys, tests[i].keys) {
			t.Errorf("%d) Expected Keys(%s) = %v, got %v.",
				i, tests[i].pattern, tests[i].keys, keys)
		}
	}

	if s.Has("WOPR:+:+:+:+") || s.Has("WOPR") || !s.Has("WOPR:INJ") {
		t.Errorf("Well vectors without a well should not have keys.")
	}
	if _, err := s.Units("FWCT"); !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing key, got %v.", err)
	}
	if _, err := s.Get("FWCT", false); !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing key, got %v.", err)
	}
}

func TestInterpolate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "9_EDITNNC")
	s, err := Open(writeRun(t, root, false, runVecs, "", baseTimes, 0,
		baseBreaks), false)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }

	times := []float64{ -5, 0, 15, 42, 90, 200 }
	exp := []float64{ 0, 0, 1500, 4200, 9000, 9000 }
	x, err := s.Interpolate("FOPT", times)
	if err != nil {
		t.Fatalf("Expected valid interpolation, got %s.", err.Error())
	}
	if !eq.Float64sEps(x, exp, 1e-6) {
		t.Errorf("Expected FOPT(%v) = %v, got %v.", times, exp, x)
	}

	if _, err := s.Interpolate("FWCT", times); !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing key, got %v.", err)
	}
}

func TestRestartSplice(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, filepath.Join(dir, "base", "BASE"), false, runVecs, "",
		baseTimes, 0, baseBreaks)
	rstTimes := []float32{ 50, 60, 70, 80, 90, 100, 110, 120 }
	rstPath := writeRun(t, filepath.Join(dir, "RST"), false, runVecs,
		"base/BASE", rstTimes, 1, []int{ 0 })

	s, err := Open(rstPath, false)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	if root, _ := s.Restart(); s.Len() != 8 || root != "base/BASE" {
		t.Errorf("Expected 8 samples restarting from base/BASE, got %d " +
			"from '%s'.", s.Len(), root)
	}

	s, err = Open(rstPath, true)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }

	times, _ := s.Times()
	exp := []float64{ 0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120 }
	if !eq.Float64s(times, exp) {
		t.Errorf("Expected spliced times %v, got %v.", exp, times)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Errorf("TIME is not strictly increasing at %d: %v.", i, times)
		}
	}

	fopt, _ := s.Get("FOPT", false)
	if fopt[4] != 4000 || fopt[5] != 5001 {
		t.Errorf("Expected FOPT to switch to the restart run at 50 days, " +
			"got %v.", fopt)
	}
	if rs := s.ReportSteps(); !eq.Ints(rs, []int{ 0, 2, 12 }) {
		t.Errorf("Expected report steps [0 2 12], got %v.", rs)
	}

	// A restart of the restart.
	rst2Path := writeRun(t, filepath.Join(dir, "RST2"), false, runVecs,
		"RST", []float32{ 100, 110, 120, 130, 140, 150 }, 2, []int{ 0 })
	s, err = Open(rst2Path, true)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	if times, _ := s.Times(); len(times) != 16 || times[15] != 150 ||
		times[9] != 90 || times[10] != 100 {
		t.Errorf("Expected the nested restart to give 16 samples, got %v.",
			times)
	}
	if fopt, _ := s.Get("FOPT", false); fopt[9] != 9001 || fopt[10] != 10002 {
		t.Errorf("Expected FOPT from every run of the chain, got %v.", fopt)
	}
}

func TestInconsistentRestart(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, filepath.Join(dir, "BASE"), false, runVecs, "",
		baseTimes, 0, baseBreaks)

	extra := append(append([]vec{ }, runVecs...),
		vec{ "FWPT", defaultWGName, 0, "SM3" })
	badUnits := append([]vec{ }, runVecs...)
	badUnits[3] = vec{ "FOPR", defaultWGName, 0, "STB/DAY" }

	for i, vecs := range [][]vec{ extra, badUnits } {
		path := writeRun(t, filepath.Join(dir, fmt.Sprintf("RST%d", i)),
			false, vecs, "BASE", []float32{ 50, 60 }, 0, []int{ 0 })
		_, err := Open(path, true)
		if !errors.Is(err, ecl.ErrInconsistentArchive) {
			t.Errorf("%d) Expected ErrInconsistentArchive, got %v.", i, err)
		}
	}

	path := writeRun(t, filepath.Join(dir, "ORPHAN"), false, runVecs,
		"MISSING", []float32{ 50 }, 0, []int{ 0 })
	if _, err := Open(path, true); !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing base run, got %v.", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "MISSING.SMSPEC"), false)
	if !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing SMSPEC, got %v.", err)
	}

	noData := filepath.Join(dir, "NODATA.SMSPEC")
	write(t, noData, specRecords(runVecs, ""))
	if _, err = Open(noData, false); !errors.Is(err, ecl.ErrValue) {
		t.Errorf("Expected ErrValue for a run with no data, got %v.", err)
	}

	noKeywords := filepath.Join(dir, "NOKW.SMSPEC")
	recs := specRecords(runVecs, "")
	write(t, noKeywords, append(recs[:3], recs[4:]...))
	write(t, filepath.Join(dir, "NOKW.UNSMRY"),
		dataRecords(samples(runVecs, baseTimes, 0), baseBreaks))
	if _, err = Open(noKeywords, false); !errors.Is(err, ecl.ErrValue) {
		t.Errorf("Expected ErrValue for an SMSPEC without KEYWORDS, got %v.", err)
	}

	disordered := filepath.Join(dir, "DIS.SMSPEC")
	write(t, disordered, specRecords(runVecs, ""))
	write(t, filepath.Join(dir, "DIS.UNSMRY"), []eclfile.Record{
		{ Name: "SEQHDR", Values: []int32{ 0 } },
		{ Name: "PARAMS", Values: samples(runVecs, baseTimes, 0)[0] },
		{ Name: "MINISTEP", Values: []int32{ 0 } },
	})
	if _, err = Open(disordered, false); !errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected ErrCorruptFormat for PARAMS before MINISTEP, " +
			"got %v.", err)
	}
}

func TestESMRY(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, filepath.Join(dir, "base", "BASE"), false, runVecs, "",
		baseTimes, 0, baseBreaks)
	specPath := writeRun(t, filepath.Join(dir, "9_EDITNNC"), false, runVecs,
		"", baseTimes, 0, baseBreaks)

	out, err := MakeESMRY(specPath)
	if err != nil { t.Fatalf("Expected valid MakeESMRY, got %s.", err.Error()) }
	if out != filepath.Join(dir, "9_EDITNNC.ESMRY") {
		t.Errorf("Expected the ESMRY next to the SMSPEC, got %s.", out)
	}

	s, err := Open(out, false)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	checkBaseRun(t, "ESMRY", s)
	if u, _ := s.Units("BPR:3,4,5"); u != "BARSA" {
		t.Errorf("Expected BPR:3,4,5 in BARSA, got '%s'.", u)
	}

	if _, err := MakeESMRY(specPath); !errors.Is(err, ecl.ErrExists) {
		t.Errorf("Expected ErrExists for an up to date ESMRY, got %v.", err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(out, old, old); err != nil {
		t.Fatalf("Could not change the time of %s.", out)
	}
	if _, err := MakeESMRY(specPath); err != nil {
		t.Errorf("Expected a stale ESMRY to be rebuilt, got %s.", err.Error())
	}
	if info, err := os.Stat(out); err != nil || !info.ModTime().After(old) {
		t.Errorf("Expected the rebuilt ESMRY to be newer than %v.", old)
	}

	rstPath := writeRun(t, filepath.Join(dir, "RST"), false, runVecs,
		"base/BASE", []float32{ 50, 60, 70 }, 1, []int{ 0 })
	rstOut, err := MakeESMRY(rstPath)
	if err != nil { t.Fatalf("Expected valid MakeESMRY, got %s.", err.Error()) }
	s, err = Open(rstOut, true)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	if s.Len() != 8 {
		t.Errorf("Expected the ESMRY of a restart to splice onto its base " +
			"run, got %d samples.", s.Len())
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct{
		nd node
		key string
	} {
		{ node{ "FOPT", defaultWGName, 0 }, "FOPT" },
		{ node{ "AAQP", defaultWGName, 3 }, "AAQP:3" },
		{ node{ "BPR", defaultWGName, 1 }, "BPR:1,1,1" },
		{ node{ "BPR", defaultWGName, 1186 }, "BPR:3,4,5" },
		{ node{ "CWIR", "INJ", 1186 }, "CWIR:INJ:3,4,5" },
		{ node{ "CWIR", "INJ", 0 }, "" },
		{ node{ "GOPR", "FIELD", 0 }, "GOPR:FIELD" },
		{ node{ "WBHP", defaultWGName, 0 }, "" },
		{ node{ "RPR", defaultWGName, 2 }, "RPR:2" },
		{ node{ "ROFT", defaultWGName, 3 + 14*32768 }, "ROFT:3-4" },
		{ node{ "SOFR", "PROD", 7 }, "SOFR:PROD:7" },
		{ node{ "STEPTYPE", defaultWGName, 0 }, "STEPTYPE" },
		{ node{ "", defaultWGName, 0 }, "" },
	}
	for i := range tests {
		if key := keyString(tests[i].nd, 13, 22); key != tests[i].key {
			t.Errorf("%d) Expected '%s', got '%s'.", i, tests[i].key, key)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct{
		pattern, key string
		match bool
	} {
		{ "", "", true },
		{ "", "FOPT", false },
		{ "*", "", true },
		{ "FOPT", "FOPT", true },
		{ "FOP?", "FOPT", true },
		{ "FOP?", "FOP", false },
		{ "W*:PROD", "WOPR:PROD", true },
		{ "W*:PROD", "WOPR:PROD2", false },
		{ "*T", "FOPTT", true },
		{ "*OP*R*", "WOPR:INJ", true },
		{ "?*?", "A", false },
	}
	for i := range tests {
		if m := Match(tests[i].pattern, tests[i].key); m != tests[i].match {
			t.Errorf("%d) Expected Match(%s, %s) = %v, got %v.", i,
				tests[i].pattern, tests[i].key, tests[i].match, m)
		}
	}
}
