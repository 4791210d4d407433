package ecl

import (
	"fmt"
	"io"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
)

// Compression is a method for compressing written result files. Open reads
// every method transparently.
type Compression int

const (
	NoCompression Compression = iota
	Zstd
	Gzip
)

// ParseCompression converts "none", "zstd" or "gzip" into a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none": return NoCompression, nil
	case "zstd": return Zstd, nil
	case "gzip": return Gzip, nil
	}
	return 0, fmt.Errorf("The compression method '%s' is not recognized. " +
		"The valid methods are 'none', 'zstd' and 'gzip'.", s)
}

func (c Compression) String() string {
	switch c {
	case NoCompression: return "none"
	case Zstd: return "zstd"
	case Gzip: return "gzip"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

type nopCloser struct { io.Writer }

func (nopCloser) Close() error { return nil }

// Compress wraps w so that everything written to the returned WriteCloser is
// compressed with c. Closing it finishes the compressed stream but does not
// close w.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case NoCompression:
		return nopCloser{ w }, nil
	case Zstd:
		return zstd.NewWriterLevel(w, zstd.DefaultCompression), nil
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	}
	panic(fmt.Sprintf("Internal error: unrecognized compression %d.", int(c)))
}
