package eclfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/eq"
)

// initRecords returns the 24 arrays of a small INIT file shaped like
// SPE9.INIT: a 24 x 25 x 15 grid with every cell active.
func initRecords() []Record {
	n := 9000
	porv := make([]float32, n)
	depth := make([]float32, n)
	for i := range porv {
		porv[i] = 100 + float32(i % 17)
		depth[i] = 2500 + float32(i / 600)*10
	}
	tabdims := make([]int32, 100)
	tabdims[0] = 885

	recs := []Record{
		{ "INTEHEAD", make([]int32, 411) },
		{ "LOGIHEAD", make([]bool, 121) },
		{ "DOUBHEAD", make([]float64, 229) },
		{ "PORV", porv },
		{ "DEPTH", depth },
		{ "DX", make([]float32, n) },
		{ "DY", make([]float32, n) },
		{ "DZ", make([]float32, n) },
		{ "PERMX", make([]float32, n) },
		{ "PERMY", make([]float32, n) },
		{ "PERMZ", make([]float32, n) },
		{ "MULTX", make([]float32, n) },
		{ "MULTY", make([]float32, n) },
		{ "MULTZ", make([]float32, n) },
		{ "PORO", make([]float32, n) },
		{ "NTG", make([]float32, n) },
		{ "TOPS", make([]float32, n) },
		{ "PVTNUM", make([]int32, n) },
		{ "SATNUM", make([]int32, n) },
		{ "EQLNUM", make([]int32, n) },
		{ "FIPNUM", make([]int32, n) },
		{ "TABDIMS", tabdims },
		{ "TAB", make([]float64, 885) },
		{ "ENDINIT", nil },
	}
	return recs
}

func writeTestFile(t *testing.T, name string, recs []Record) string {
	path := filepath.Join(t.TempDir(), name)
	if err := Write(path, recs); err != nil {
		t.Fatalf("Expected valid write of %s, got %s.", name, err.Error())
	}
	return path
}

func TestOpenInit(t *testing.T) {
	for _, name := range []string{ "SPE9.INIT", "SPE9.FINIT" } {
		recs := initRecords()
		f, err := Open(writeTestFile(t, name, recs))
		if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
		defer f.Close()

		if f.Formatted() != (name == "SPE9.FINIT") {
			t.Errorf("%s) Formatted() = %v.", name, f.Formatted())
		}
		if f.Len() != 24 {
			t.Errorf("%s) Expected 24 arrays, got %d.", name, f.Len())
		}

		list := f.List()
		for i := range list {
			if list[i].Name != recs[i].Name {
				t.Errorf("%s) Expected array %d to be %s, got %s.",
					name, i, recs[i].Name, list[i].Name)
			}
			x, err := f.Get(i)
			if err != nil {
				t.Errorf("%s) Expected valid read of %d, got %s.",
					name, i, err.Error())
				continue
			}
			typ, n, _ := ecl.TypeOf(x)
			if typ != list[i].Type || n != list[i].Count {
				t.Errorf("%s) Entry %d says %s[%d] but holds %s[%d].",
					name, i, list[i].Type, list[i].Count, typ, n)
			}
		}

		porv, err := f.RealsNamed("PORV")
		if err != nil || len(porv) != 9000 {
			t.Errorf("%s) Expected 9000 PORV values, got %d (%v).",
				name, len(porv), err)
		}
		tabdims, err := f.IntsNamed("TABDIMS")
		if err != nil || tabdims[0] != 885 {
			t.Errorf("%s) Expected TABDIMS[0] = 885, got %v (%v).",
				name, tabdims, err)
		}
		if x, err := f.GetNamed("ENDINIT"); err != nil || x != nil {
			t.Errorf("%s) Expected ENDINIT to be an empty MESS record.", name)
		}
	}
}

func TestLookupErrors(t *testing.T) {
	f, err := Open(writeTestFile(t, "DUP.INIT", []Record{
		{ "A", []int32{ 1 } },
		{ "B", []float32{ 2 } },
		{ "A", []int32{ 3, 4 } },
	}))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer f.Close()

	if !f.Has("A") || f.Has("a") || f.Has("C") {
		t.Errorf("Has() is not exact and case sensitive.")
	}
	if f.Count("A") != 2 || f.Count("C") != 0 {
		t.Errorf("Expected Count(A) = 2, Count(C) = 0, got %d, %d.",
			f.Count("A"), f.Count("C"))
	}

	if i, err := f.Index("A", 1); err != nil || i != 2 {
		t.Errorf("Expected second A at index 2, got %d (%v).", i, err)
	}
	if x, _ := f.GetNamed("A"); !eq.Generic(x, []int32{ 1 }) {
		t.Errorf("Expected GetNamed to return the first occurrence, got %v.", x)
	}

	tests := []struct{
		err error
		kind error
	} {
		{ second(f.Index("C", 0)), ecl.ErrNotFound },
		{ second(f.Index("A", 2)), ecl.ErrIndexOutOfRange },
		{ second(f.Get(3)), ecl.ErrIndexOutOfRange },
		{ second(f.Get(-1)), ecl.ErrIndexOutOfRange },
		{ second(f.GetNamed("C")), ecl.ErrNotFound },
		{ second(f.Reals(0)), ecl.ErrType },
		{ second(f.Ints(1)), ecl.ErrType },
		{ second(f.Entry(5)), ecl.ErrIndexOutOfRange },
	}
	for i := range tests {
		if !errors.Is(tests[i].err, tests[i].kind) {
			t.Errorf("%d) Expected %v, got %v.", i, tests[i].kind, tests[i].err)
		}
	}

	_, err = f.Index("C", 0)
	if msg := err.Error(); !bytes.Contains([]byte(msg), []byte("DUP.INIT")) ||
		!bytes.Contains([]byte(msg), []byte("'C'")) {
		t.Errorf("Expected error to name the file and key, got '%s'.", msg)
	}
}

func second(_ interface{}, err error) error { return err }

func TestConcurrentDecode(t *testing.T) {
	f, err := Open(writeTestFile(t, "SPE9.INIT", initRecords()))
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer f.Close()

	ref := initRecords()
	wg := &sync.WaitGroup{ }
	errs := make([]error, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < f.Len(); i++ {
				x, err := f.Get((i + g) % f.Len())
				if err != nil { errs[g] = err; return }
				if !eq.Generic(x, ref[(i + g) % f.Len()].Values) {
					errs[g] = fmt.Errorf("array %d differs", (i + g) % f.Len())
					return
				}
			}
		}(g)
	}
	wg.Wait()

	for g := range errs {
		if errs[g] != nil {
			t.Errorf("Goroutine %d: %s", g, errs[g].Error())
		}
	}
}

func TestRewriteIdentical(t *testing.T) {
	for _, name := range []string{ "SPE9.INIT", "SPE9.FINIT" } {
		path := writeTestFile(t, name, initRecords())
		orig, err := os.ReadFile(path)
		if err != nil { t.Fatalf("Could not read %s.", path) }

		f, err := Open(path)
		if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }

		buf := &bytes.Buffer{ }
		wr := ecl.NewWriter(buf, f.Formatted())
		if err := f.CopyTo(wr); err != nil {
			t.Fatalf("Expected valid copy, got %s.", err.Error())
		}
		wr.Flush()
		f.Close()

		if !bytes.Equal(orig, buf.Bytes()) {
			t.Errorf("%s) Rewriting the file changed its contents.", name)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "MISSING.INIT"))
	if !errors.Is(err, ecl.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing file, got %v.", err)
	}

	garbage := filepath.Join(dir, "GARBAGE.INIT")
	os.WriteFile(garbage, []byte("\x00\x00\x00\x10not a real header at all"), 0644)
	_, err = Open(garbage)
	if !errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected ErrCorruptFormat for garbage, got %v.", err)
	}

	empty := filepath.Join(dir, "EMPTY.INIT")
	os.WriteFile(empty, nil, 0644)
	_, err = Open(empty)
	if !errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected ErrCorruptFormat for an empty file, got %v.", err)
	}

	path := writeTestFile(t, "CUT.INIT", initRecords())
	data, _ := os.ReadFile(path)
	os.WriteFile(path, data[:len(data) - 3], 0644)
	_, err = Open(path)
	if !errors.Is(err, ecl.ErrTruncatedFile) {
		t.Errorf("Expected ErrTruncatedFile for a cut file, got %v.", err)
	}
}

func TestCompressedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SPE9.INIT")
	if err := WriteCompressed(path, initRecords(), ecl.Zstd); err != nil {
		t.Fatalf("Expected valid write, got %s.", err.Error())
	}

	f, err := Open(path)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	defer f.Close()

	if f.Len() != 24 {
		t.Errorf("Expected 24 arrays, got %d.", f.Len())
	}
	if tabdims, _ := f.IntsNamed("TABDIMS"); len(tabdims) == 0 || tabdims[0] != 885 {
		t.Errorf("Expected TABDIMS[0] = 885 in the compressed file.")
	}
}

func TestGetAfterClose(t *testing.T) {
	path := writeTestFile(t, "SPE9.INIT", initRecords())
	f, err := Open(path)
	if err != nil { t.Fatalf("Expected valid open, got %s.", err.Error()) }
	f.Close()

	_, err = f.GetNamed("PORV")
	if !errors.Is(err, os.ErrClosed) || !errors.Is(err, ecl.ErrValue) {
		t.Errorf("Expected ErrValue wrapping os.ErrClosed, got %v.", err)
	}
	if errors.Is(err, ecl.ErrCorruptFormat) {
		t.Errorf("Expected a closed file not to be reported as corrupt.")
	}
}
