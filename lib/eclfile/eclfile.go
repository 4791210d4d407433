/*package eclfile indexes the records of a result file and decodes them on
demand. Opening a file only reads record headers; a record's payload is
decoded the first time it is requested and cached afterwards.
*/
package eclfile

import (
	"fmt"
	"io"
	"sync"

	"github.com/phil-mansfield/eclio/lib/ecl"
)

// Entry is one record in a file's directory.
type Entry struct {
	Name string
	Type ecl.Type
	Count int
	offset int64
}

// File is an opened result file. Lookups which only use the directory can be
// made from any number of goroutines, and so can decodes: the first decode of
// a record is serialized by a per-file lock.
type File struct {
	src *ecl.Source
	entries []Entry
	index map[string][]int

	mtx sync.Mutex
	cache map[int]interface{}
}

// Open opens the result file at path and builds its directory. It fails with
// ecl.ErrNotFound if there is no such file and with ecl.ErrCorruptFormat or
// ecl.ErrTruncatedFile if the headers can't be read. The file is closed again
// if Open fails.
func Open(path string) (*File, error) {
	src, err := ecl.Open(path)
	if err != nil { return nil, err }

	f, err := newFile(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return f, nil
}

func newFile(src *ecl.Source) (*File, error) {
	f := &File{
		src: src, index: map[string][]int{ }, cache: map[int]interface{}{ },
	}

	rd := src.NewReader(0)
	for {
		offset := rd.Offset()
		hd, err := rd.ReadHeader()
		if err == io.EOF { break }
		if err != nil {
			return nil, f.errorAt(err, len(f.entries))
		}

		f.entries = append(f.entries, Entry{
			Name: hd.Name, Type: hd.Type, Count: hd.Count,
		})

		if err = rd.SkipPayload(hd); err != nil {
			return nil, f.errorAt(err, len(f.entries) - 1)
		}
		f.entries[len(f.entries) - 1].offset = offset
		f.index[hd.Name] = append(f.index[hd.Name], len(f.entries) - 1)
	}

	if len(f.entries) == 0 {
		return nil, ecl.Errorf(ecl.ErrCorruptFormat, src.Path(),
			"The file contains no records.")
	}

	return f, nil
}

func (f *File) errorAt(err error, i int) error {
	if e, ok := err.(*ecl.Error); ok && e.Index == ecl.NoIndex {
		e.WithIndex(i)
	}
	return ecl.WithPath(err, f.src.Path())
}

// Close closes the underlying file. Arrays that have already been decoded
// stay valid.
func (f *File) Close() error { return f.src.Close() }

// Path returns the name the file was opened with.
func (f *File) Path() string { return f.src.Path() }

// Formatted returns true if the file holds formatted records.
func (f *File) Formatted() bool { return f.src.Formatted() }

// Len returns the number of records in the file.
func (f *File) Len() int { return len(f.entries) }

// List returns the directory in on-disk order.
func (f *File) List() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Entry returns the directory entry of record i.
func (f *File) Entry(i int) (Entry, error) {
	if err := f.checkIndex(i); err != nil { return Entry{ }, err }
	return f.entries[i], nil
}

// Has returns true if any record has the given name. Names are matched
// exactly.
func (f *File) Has(name string) bool { return len(f.index[name]) > 0 }

// Count returns the number of records with the given name.
func (f *File) Count(name string) int { return len(f.index[name]) }

// Index returns the index of the occurrence-th record named name.
func (f *File) Index(name string, occurrence int) (int, error) {
	idx, ok := f.index[name]
	if !ok {
		return -1, ecl.Errorf(ecl.ErrNotFound, f.Path(), "There is no " +
			"array with this name.").WithKey(name)
	} else if occurrence < 0 || occurrence >= len(idx) {
		return -1, ecl.Errorf(ecl.ErrIndexOutOfRange, f.Path(), "Occurrence " +
			"%d was requested, but the array occurs %d times.",
			occurrence, len(idx)).WithKey(name).WithIndex(occurrence)
	}
	return idx[occurrence], nil
}

func (f *File) checkIndex(i int) error {
	if i < 0 || i >= len(f.entries) {
		return ecl.Errorf(ecl.ErrIndexOutOfRange, f.Path(), "The file has " +
			"%d arrays.", len(f.entries)).WithIndex(i)
	}
	return nil
}

// Get returns the values of record i as a []int32, []float32, []float64,
// []string or []bool, or nil for MESS records.
func (f *File) Get(i int) (interface{}, error) {
	if err := f.checkIndex(i); err != nil { return nil, err }

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if x, ok := f.cache[i]; ok { return x, nil }

	e := f.entries[i]
	hd := ecl.Header{ Name: e.Name, Type: e.Type, Count: e.Count }
	rd := f.src.NewReader(e.offset)
	if _, err := rd.ReadHeader(); err != nil { return nil, f.errorAt(err, i) }
	x, err := rd.ReadPayload(hd)
	if err != nil { return nil, f.errorAt(err, i) }

	f.cache[i] = x
	return x, nil
}

// GetNamed returns the values of the first record named name.
func (f *File) GetNamed(name string) (interface{}, error) {
	i, err := f.Index(name, 0)
	if err != nil { return nil, err }
	return f.Get(i)
}

// Load decodes the given records, or every record if none are given.
func (f *File) Load(indices ...int) error {
	if len(indices) == 0 {
		for i := range f.entries {
			if _, err := f.Get(i); err != nil { return err }
		}
		return nil
	}
	for _, i := range indices {
		if _, err := f.Get(i); err != nil { return err }
	}
	return nil
}

func (f *File) typeError(i int, want ecl.Type) error {
	e := f.entries[i]
	return ecl.Errorf(ecl.ErrType, f.Path(), "The array has type %s, not %s.",
		e.Type, want).WithKey(e.Name).WithIndex(i)
}

// Ints returns record i, which must be INTE.
func (f *File) Ints(i int) ([]int32, error) {
	x, err := f.Get(i)
	if err != nil { return nil, err }
	out, ok := x.([]int32)
	if !ok { return nil, f.typeError(i, ecl.INTE) }
	return out, nil
}

// Reals returns record i, which must be REAL.
func (f *File) Reals(i int) ([]float32, error) {
	x, err := f.Get(i)
	if err != nil { return nil, err }
	out, ok := x.([]float32)
	if !ok { return nil, f.typeError(i, ecl.REAL) }
	return out, nil
}

// Doubs returns record i, which must be DOUB.
func (f *File) Doubs(i int) ([]float64, error) {
	x, err := f.Get(i)
	if err != nil { return nil, err }
	out, ok := x.([]float64)
	if !ok { return nil, f.typeError(i, ecl.DOUB) }
	return out, nil
}

// Logis returns record i, which must be LOGI.
func (f *File) Logis(i int) ([]bool, error) {
	x, err := f.Get(i)
	if err != nil { return nil, err }
	out, ok := x.([]bool)
	if !ok { return nil, f.typeError(i, ecl.LOGI) }
	return out, nil
}

// Chars returns record i, which must be CHAR.
func (f *File) Chars(i int) ([]string, error) {
	x, err := f.Get(i)
	if err != nil { return nil, err }
	out, ok := x.([]string)
	if !ok { return nil, f.typeError(i, ecl.CHAR) }
	return out, nil
}

// IntsNamed returns the first INTE record named name.
func (f *File) IntsNamed(name string) ([]int32, error) {
	i, err := f.Index(name, 0)
	if err != nil { return nil, err }
	return f.Ints(i)
}

// RealsNamed returns the first REAL record named name.
func (f *File) RealsNamed(name string) ([]float32, error) {
	i, err := f.Index(name, 0)
	if err != nil { return nil, err }
	return f.Reals(i)
}

// DoubsNamed returns the first DOUB record named name.
func (f *File) DoubsNamed(name string) ([]float64, error) {
	i, err := f.Index(name, 0)
	if err != nil { return nil, err }
	return f.Doubs(i)
}

// CharsNamed returns the first CHAR record named name.
func (f *File) CharsNamed(name string) ([]string, error) {
	i, err := f.Index(name, 0)
	if err != nil { return nil, err }
	return f.Chars(i)
}

// String returns a short description of entry e, e.g. "PORV REAL[9000]".
func (e Entry) String() string {
	return fmt.Sprintf("%-8s %s[%d]", e.Name, e.Type, e.Count)
}
