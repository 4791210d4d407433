/*package ecl reads and writes the array records which make up ECLIPSE-style
simulation result files (INIT, UNRST, EGRID, SMSPEC, UNSMRY, ...).

A result file is a sequence of records. Each record has an 8-character name,
an element count, a 4-character type tag and a payload. Unformatted files are
big-endian Fortran sequential files: the header is a 16-byte record and the
payload is split into blocks of at most 1000 elements (105 for CHAR), each
block surrounded by its byte length:

   [16][NAME    ][count][TYPE][16]
   [nbytes][ ... up to 1000 elements ... ][nbytes]
   [nbytes][ ... ][nbytes]

Formatted files hold the same records as text, one header line followed by
fixed-width columns of values.
*/
package ecl

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Type is the type tag of an array record.
type Type int

const (
	INTE Type = iota
	REAL
	DOUB
	CHAR
	LOGI
	MESS
)

const (
	// NameWidth is the number of bytes in a record name. Longer names are
	// truncated when written.
	NameWidth = 8
	// CharWidth is the number of bytes in a single CHAR element.
	CharWidth = 8

	headerSize = 16
	markerSize = 4
)

// Types lists every Type in tag order.
var Types = []Type{ INTE, REAL, DOUB, CHAR, LOGI, MESS }

// String returns the four-character tag used on disk.
func (t Type) String() string {
	switch t {
	case INTE: return "INTE"
	case REAL: return "REAL"
	case DOUB: return "DOUB"
	case CHAR: return "CHAR"
	case LOGI: return "LOGI"
	case MESS: return "MESS"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a four-character tag into a Type.
func ParseType(tag string) (Type, error) {
	for _, t := range Types {
		if t.String() == tag { return t, nil }
	}
	return 0, fmt.Errorf("'%s' is not a recognized array type. The valid " +
		"types are INTE, REAL, DOUB, CHAR, LOGI and MESS.", tag)
}

// ElementSize returns the number of bytes used by one element in an
// unformatted payload.
func (t Type) ElementSize() int {
	switch t {
	case INTE, REAL, LOGI: return 4
	case DOUB, CHAR: return 8
	case MESS: return 0
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

// blockElements returns the maximum number of elements stored in a single
// payload block.
func (t Type) blockElements() int {
	switch t {
	case INTE, REAL, DOUB, LOGI: return 1000
	case CHAR: return 105
	case MESS: return 0
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

// columns returns the number of values per line and the column width of
// formatted payloads.
func (t Type) columns() (perLine, width int) {
	switch t {
	case INTE: return 6, 12
	case REAL: return 4, 17
	case DOUB: return 3, 23
	case LOGI: return 25, 3
	case CHAR: return 7, 11
	case MESS: return 0, 0
	}
	panic(fmt.Sprintf("Internal error: unrecognized array type %d.", int(t)))
}

// Header is the part of a record that comes before its payload.
type Header struct {
	Name string
	Type Type
	Count int
}

// PayloadSize returns the number of bytes the payload described by hd takes
// up in an unformatted file, block markers included.
func PayloadSize(hd Header) int64 {
	if hd.Count == 0 || hd.Type == MESS { return 0 }
	blocks := int64((hd.Count - 1) / hd.Type.blockElements() + 1)
	return int64(hd.Count)*int64(hd.Type.ElementSize()) + 2*markerSize*blocks
}

// FormattedLines returns the number of text lines the payload described by hd
// takes up in a formatted file.
func FormattedLines(hd Header) int {
	if hd.Count == 0 || hd.Type == MESS { return 0 }
	perLine, _ := hd.Type.columns()
	block := hd.Type.blockElements()

	full := hd.Count / block
	lines := full * ((block - 1)/perLine + 1)
	if rest := hd.Count % block; rest > 0 {
		lines += (rest - 1)/perLine + 1
	}
	return lines
}

// PadName returns name truncated or space-padded to NameWidth bytes.
func PadName(name string) string {
	if len(name) >= NameWidth { return name[:NameWidth] }
	return name + strings.Repeat(" ", NameWidth - len(name))
}

// IsFormattedName returns true if the file name follows the ECLIPSE naming
// convention for formatted files: the extension starts with 'F' (FUNRST,
// FEGRID, FSMSPEC, ...) or 'A' (A0001, ...).
func IsFormattedName(fileName string) bool {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if len(ext) < 2 { return false }
	switch ext[0] {
	case 'F', 'A':
		return true
	}
	return false
}
