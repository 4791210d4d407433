package eclfile

import (
	"os"

	"github.com/phil-mansfield/eclio/lib/ecl"
)

// Record is a named array to be written to a file. Values must be one of the
// slice types accepted by ecl.Writer.Write, or nil for a MESS record.
type Record struct {
	Name string
	Values interface{}
}

// Write writes records to a new file at path, which is formatted if path
// follows the formatted naming convention (see ecl.IsFormattedName). An
// existing file is overwritten.
func Write(path string, records []Record) error {
	return WriteCompressed(path, records, ecl.NoCompression)
}

// WriteCompressed is Write with the output compressed by c.
func WriteCompressed(path string, records []Record, c ecl.Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return ecl.Errorf(ecl.ErrValue, path, "The file cannot be created. " +
			"The system error is: \"%s\"", err.Error())
	}

	cw, err := ecl.Compress(f, c)
	if err != nil {
		f.Close()
		return ecl.WithPath(err, path)
	}

	wr := ecl.NewWriter(cw, ecl.IsFormattedName(path))
	for _, rec := range records {
		if rec.Values == nil {
			err = wr.WriteMess(rec.Name)
		} else {
			err = wr.Write(rec.Name, rec.Values)
		}
		if err != nil { break }
	}

	if err == nil { err = wr.Flush() }
	if cerr := cw.Close(); err == nil { err = cerr }
	if cerr := f.Close(); err == nil { err = cerr }
	if err != nil { return ecl.WithPath(err, path) }
	return nil
}

// CopyTo writes every record of f to wr in order. Empty arrays keep their
// type.
func (f *File) CopyTo(wr *ecl.Writer) error {
	for i, e := range f.entries {
		x, err := f.Get(i)
		if err != nil { return err }
		hd := ecl.Header{ Name: e.Name, Type: e.Type, Count: e.Count }
		if err := wr.WriteRecord(hd, x); err != nil {
			return ecl.WithPath(err, f.Path())
		}
	}
	return nil
}
