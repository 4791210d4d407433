package ecl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const (
	// DefaultChunkSize is the number of elements a Writer encodes at a time.
	DefaultChunkSize = 1024
)

// Writer writes array records to a stream. A Writer owns its stream until
// Flush is called and must not be shared between goroutines.
type Writer struct {
	w *bufio.Writer
	formatted bool
	chunkSize int
	scratch []byte
}

// NewWriter creates a Writer which writes formatted (text) or unformatted
// (binary) records to w.
func NewWriter(w io.Writer, formatted bool) *Writer {
	return &Writer{
		w: bufio.NewWriterSize(w, 1<<16), formatted: formatted,
		chunkSize: DefaultChunkSize,
	}
}

// SetChunkSize sets the number of elements encoded at a time. This bounds
// the Writer's scratch memory and has no effect on the bytes written.
func (wr *Writer) SetChunkSize(n int) {
	if n < 1 {
		panic(fmt.Sprintf("Internal error: chunk size set to %d.", n))
	}
	wr.chunkSize = n
}

// Formatted returns true if the Writer writes formatted records.
func (wr *Writer) Formatted() bool { return wr.formatted }

// Write writes one record. values must be a []int32, []float32, []float64,
// []string or []bool, and its type and length become the record's type and
// element count. Names longer than NameWidth are truncated. CHAR elements
// longer than CharWidth are an error, as are CHAR elements containing quotes
// or line breaks in formatted files.
func (wr *Writer) Write(name string, values interface{}) error {
	t, n, err := TypeOf(values)
	if err != nil { return err.(*Error).WithKey(name) }
	if t == MESS { return wr.WriteMess(name) }

	if x, ok := values.([]string); ok {
		for i := range x {
			if len(x[i]) > CharWidth {
				return Errorf(ErrValue, "", "CHAR element %d, '%s', has %d " +
					"bytes, but CHAR elements can't be longer than %d bytes.",
					i, x[i], len(x[i]), CharWidth).WithKey(name).WithIndex(i)
			}
			if wr.formatted && strings.ContainsAny(x[i], "'\n\r") {
				return Errorf(ErrValue, "", "CHAR element %d, %q, contains a " +
					"quote or a line break, which formatted files can't hold.",
					i, x[i]).WithKey(name).WithIndex(i)
			}
		}
	}

	hd := Header{ Name: name, Type: t, Count: n }
	if wr.formatted {
		if err := wr.writeFormattedHeader(hd); err != nil { return err }
		return wr.writeFormattedPayload(hd, values)
	}
	if err := wr.writeBinaryHeader(hd); err != nil { return err }
	return wr.writeBinaryPayload(hd, values)
}

// WriteMess writes a MESS record, which has no data.
func (wr *Writer) WriteMess(name string) error {
	hd := Header{ Name: name, Type: MESS, Count: 0 }
	if wr.formatted { return wr.writeFormattedHeader(hd) }
	return wr.writeBinaryHeader(hd)
}

// WriteRecord writes a record that was read with a Reader, so hd.Type is
// kept even for empty arrays.
func (wr *Writer) WriteRecord(hd Header, values interface{}) error {
	if hd.Type == MESS { return wr.WriteMess(hd.Name) }
	if values == nil { values = emptyValues(hd.Type) }
	return wr.Write(hd.Name, values)
}

// Flush writes any buffered data to the underlying stream.
func (wr *Writer) Flush() error { return wr.w.Flush() }

func emptyValues(t Type) interface{} {
	switch t {
	case INTE: return []int32{ }
	case REAL: return []float32{ }
	case DOUB: return []float64{ }
	case CHAR: return []string{ }
	case LOGI: return []bool{ }
	case MESS: return nil
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

func (wr *Writer) writeBinaryHeader(hd Header) error {
	buf := make([]byte, 0, headerSize + 2*markerSize)
	buf = binary.BigEndian.AppendUint32(buf, headerSize)
	buf = append(buf, PadName(hd.Name)...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(hd.Count)))
	buf = append(buf, hd.Type.String()...)
	buf = binary.BigEndian.AppendUint32(buf, headerSize)
	_, err := wr.w.Write(buf)
	return err
}

func (wr *Writer) writeBinaryPayload(hd Header, values interface{}) error {
	block := hd.Type.blockElements()
	size := hd.Type.ElementSize()

	var marker [markerSize]byte
	for start := 0; start < hd.Count; start += block {
		end := start + block
		if end > hd.Count { end = hd.Count }

		binary.BigEndian.PutUint32(marker[:], uint32((end - start)*size))
		if _, err := wr.w.Write(marker[:]); err != nil { return err }

		for c := start; c < end; c += wr.chunkSize {
			cEnd := c + wr.chunkSize
			if cEnd > end { cEnd = end }
			wr.scratch = appendBinary(wr.scratch[:0], values, c, cEnd)
			if _, err := wr.w.Write(wr.scratch); err != nil { return err }
		}

		if _, err := wr.w.Write(marker[:]); err != nil { return err }
	}
	return nil
}

func (wr *Writer) writeFormattedHeader(hd Header) error {
	_, err := fmt.Fprintf(wr.w, " '%s' %11d '%s'\n",
		PadName(hd.Name), hd.Count, hd.Type)
	return err
}

func (wr *Writer) writeFormattedPayload(hd Header, values interface{}) error {
	perLine, width := hd.Type.columns()
	block := hd.Type.blockElements()

	wr.scratch = wr.scratch[:0]
	inLine, inBlock, inChunk := 0, 0, 0
	for i := 0; i < hd.Count; i++ {
		wr.scratch = appendFormatted(wr.scratch, values, i, width)
		inLine++
		inBlock++
		inChunk++

		if inLine == perLine || inBlock == block || i == hd.Count - 1 {
			wr.scratch = append(wr.scratch, '\n')
			inLine = 0
		}
		if inBlock == block { inBlock = 0 }

		if inChunk == wr.chunkSize {
			if _, err := wr.w.Write(wr.scratch); err != nil { return err }
			wr.scratch, inChunk = wr.scratch[:0], 0
		}
	}

	_, err := wr.w.Write(wr.scratch)
	return err
}
