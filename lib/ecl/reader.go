package ecl

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

// Reader reads array records from a stream one at a time. A record is read
// by calling ReadHeader and then either ReadPayload or SkipPayload with the
// returned Header. ReadHeader returns io.EOF when the stream ends cleanly
// between records.
type Reader interface {
	ReadHeader() (Header, error)
	ReadPayload(hd Header) (interface{}, error)
	SkipPayload(hd Header) error
	// Offset is the number of bytes consumed from the start of the stream.
	Offset() int64
}

// NewReader returns a Reader for an unformatted (binary) or formatted (text)
// stream.
func NewReader(r io.Reader, formatted bool) Reader {
	if formatted {
		return &formattedReader{ rd: bufio.NewReaderSize(r, 1<<16) }
	}
	return &binaryReader{ r: r }
}

///////////////////////
// Unformatted files //
///////////////////////

type binaryReader struct {
	r io.Reader
	offset int64
	marker [markerSize]byte
}

func (br *binaryReader) Offset() int64 { return br.offset }

func (br *binaryReader) ReadHeader() (Header, error) {
	buf := make([]byte, headerSize + 2*markerSize)
	n, err := io.ReadFull(br.r, buf)
	br.offset += int64(n)
	if err == io.EOF {
		return Header{ }, io.EOF
	} else if err == io.ErrUnexpectedEOF {
		return Header{ }, Errorf(ErrTruncatedFile, "", "The stream ends " +
			"%d bytes into a %d-byte record header.", n, len(buf))
	} else if err != nil {
		return Header{ }, err
	}
	return parseBinaryHeader(buf)
}

func parseBinaryHeader(buf []byte) (Header, error) {
	head := int32(binary.BigEndian.Uint32(buf[0:4]))
	tail := int32(binary.BigEndian.Uint32(buf[20:24]))
	if head != headerSize {
		return Header{ }, Errorf(ErrCorruptFormat, "", "A record header " +
			"starts with the length marker %d instead of %d. Either this is " +
			"not an unformatted result file or an earlier record is corrupt.",
			head, headerSize)
	} else if tail != head {
		return Header{ }, Errorf(ErrCorruptFormat, "", "A record header " +
			"has the leading length marker %d, but the trailing marker %d.",
			head, tail)
	}

	name := strings.TrimRight(string(buf[4:12]), " ")
	count := int(int32(binary.BigEndian.Uint32(buf[12:16])))
	typ, err := ParseType(string(buf[16:20]))
	if err != nil {
		return Header{ }, Errorf(ErrCorruptFormat, "", "%s", err.Error()).
			WithKey(name)
	}

	hd := Header{ Name: name, Type: typ, Count: count }
	return hd, checkHeader(hd)
}

func checkHeader(hd Header) error {
	if hd.Count < 0 {
		return Errorf(ErrCorruptFormat, "", "The record declares a " +
			"negative element count, %d.", hd.Count).WithKey(hd.Name)
	} else if hd.Type == MESS && hd.Count != 0 {
		return Errorf(ErrCorruptFormat, "", "MESS records can't hold data, " +
			"but this one declares %d elements.", hd.Count).WithKey(hd.Name)
	}
	return nil
}

type sizer interface { Size() int64 }

func (br *binaryReader) SkipPayload(hd Header) error {
	n := PayloadSize(hd)
	if n == 0 { return nil }

	if s, ok := br.r.(io.Seeker); ok {
		if sz, ok := br.r.(sizer); ok && br.offset + n > sz.Size() {
			return Errorf(ErrTruncatedFile, "", "The record declares %d " +
				"elements of type %s, which need %d bytes, but only %d " +
				"bytes remain.", hd.Count, hd.Type, n, sz.Size() - br.offset).
				WithKey(hd.Name)
		}
		_, err := s.Seek(n, io.SeekCurrent)
		if err != nil { return err }
		br.offset += n
		return nil
	}

	m, err := io.CopyN(io.Discard, br.r, n)
	br.offset += m
	if err == io.EOF {
		return Errorf(ErrTruncatedFile, "", "The record declares %d " +
			"elements of type %s, which need %d bytes, but only %d bytes " +
			"remain.", hd.Count, hd.Type, n, m).WithKey(hd.Name)
	}
	return err
}

func (br *binaryReader) ReadPayload(hd Header) (interface{}, error) {
	if hd.Type == MESS { return nil, nil }

	size := hd.Type.ElementSize()
	block := hd.Type.blockElements()
	raw := make([]byte, hd.Count*size)

	for start := 0; start < hd.Count; start += block {
		end := start + block
		if end > hd.Count { end = hd.Count }
		nBytes := (end - start)*size

		if err := br.readMarker(hd, start, nBytes); err != nil {
			return nil, err
		}
		n, err := io.ReadFull(br.r, raw[start*size: end*size])
		br.offset += int64(n)
		if err != nil { return nil, br.truncated(err, hd, start) }
		if err := br.readMarker(hd, start, nBytes); err != nil {
			return nil, err
		}
	}

	return decodeBinary(hd.Type, raw, hd.Count), nil
}

// readMarker reads a block length marker and checks that it is nBytes.
func (br *binaryReader) readMarker(hd Header, start, nBytes int) error {
	n, err := io.ReadFull(br.r, br.marker[:])
	br.offset += int64(n)
	if err != nil { return br.truncated(err, hd, start) }

	marker := int(int32(binary.BigEndian.Uint32(br.marker[:])))
	if marker != nBytes {
		return Errorf(ErrCorruptFormat, "", "The data block starting at " +
			"element %d should be %d bytes long, but its length marker is " +
			"%d. The %s record declares %d elements, so either the header " +
			"or the data is damaged.", start, nBytes, marker, hd.Type,
			hd.Count).WithKey(hd.Name).WithIndex(start)
	}
	return nil
}

func (br *binaryReader) truncated(err error, hd Header, start int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return Errorf(ErrTruncatedFile, "", "The stream ends inside the " +
			"data block starting at element %d of %d.", start, hd.Count).
			WithKey(hd.Name).WithIndex(start)
	}
	return err
}

/////////////////////
// Formatted files //
/////////////////////

type formattedReader struct {
	rd *bufio.Reader
	offset int64
}

func (fr *formattedReader) Offset() int64 { return fr.offset }

// readLine returns the next line without its line ending. io.EOF is only
// returned when no bytes remain.
func (fr *formattedReader) readLine() (string, error) {
	line, err := fr.rd.ReadString('\n')
	fr.offset += int64(len(line))
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (fr *formattedReader) ReadHeader() (Header, error) {
	for {
		line, err := fr.readLine()
		if err != nil { return Header{ }, err }
		if strings.TrimSpace(line) == "" { continue }
		return parseFormattedHeader(line)
	}
}

func parseFormattedHeader(line string) (Header, error) {
	quotes := []int{ }
	for i := range line {
		if line[i] == '\'' { quotes = append(quotes, i) }
	}
	if len(quotes) != 4 {
		return Header{ }, Errorf(ErrCorruptFormat, "", "The line \"%s\" " +
			"should be a record header of the form 'NAME' count 'TYPE', " +
			"but has %d quote marks instead of 4.", line, len(quotes))
	}

	name := strings.TrimRight(line[quotes[0]+1: quotes[1]], " ")
	countStr := strings.TrimSpace(line[quotes[1]+1: quotes[2]])
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return Header{ }, Errorf(ErrCorruptFormat, "", "The element count " +
			"'%s' in the record header \"%s\" is not an integer.",
			countStr, line).WithKey(name)
	}
	typ, err := ParseType(line[quotes[2]+1: quotes[3]])
	if err != nil {
		return Header{ }, Errorf(ErrCorruptFormat, "", "%s", err.Error()).
			WithKey(name)
	}

	hd := Header{ Name: name, Type: typ, Count: count }
	return hd, checkHeader(hd)
}

func (fr *formattedReader) SkipPayload(hd Header) error {
	lines := FormattedLines(hd)
	for i := 0; i < lines; i++ {
		if _, err := fr.readLine(); err != nil {
			return fr.truncated(err, hd, i, lines)
		}
	}
	return nil
}

func (fr *formattedReader) ReadPayload(hd Header) (interface{}, error) {
	if hd.Type == MESS { return nil, nil }

	lines := FormattedLines(hd)
	tok := make([]string, 0, hd.Count)
	for i := 0; i < lines; i++ {
		line, err := fr.readLine()
		if err != nil { return nil, fr.truncated(err, hd, i, lines) }

		if hd.Type == CHAR {
			tok, err = appendQuoted(tok, line)
			if err != nil { return nil, err.(*Error).WithKey(hd.Name) }
		} else {
			tok = append(tok, strings.Fields(line)...)
		}
	}

	if len(tok) != hd.Count {
		return nil, Errorf(ErrCorruptFormat, "", "The record declares %d " +
			"elements, but its %d lines hold %d values.",
			hd.Count, lines, len(tok)).WithKey(hd.Name)
	}

	out, err := parseFormatted(hd.Type, tok)
	if err != nil { return nil, err.(*Error).WithKey(hd.Name) }
	return out, nil
}

func (fr *formattedReader) truncated(err error, hd Header, line, lines int) error {
	if err == io.EOF {
		return Errorf(ErrTruncatedFile, "", "The stream ends after %d of " +
			"the %d lines needed for %d elements of type %s.",
			line, lines, hd.Count, hd.Type).WithKey(hd.Name)
	}
	return err
}

// appendQuoted appends every quoted string in line to tok.
func appendQuoted(tok []string, line string) ([]string, error) {
	for {
		start := strings.IndexByte(line, '\'')
		if start == -1 {
			if strings.TrimSpace(line) != "" {
				return nil, errUnquoted(line)
			}
			return tok, nil
		}
		if strings.TrimSpace(line[:start]) != "" {
			return nil, errUnquoted(line)
		}

		end := strings.IndexByte(line[start+1:], '\'')
		if end == -1 {
			return nil, Errorf(ErrCorruptFormat, "", "The line \"%s\" has " +
				"an unterminated quoted string.", line)
		}
		tok = append(tok, strings.TrimRight(line[start+1: start+1+end], " "))
		line = line[start+end+2:]
	}
}

func errUnquoted(line string) error {
	return Errorf(ErrCorruptFormat, "", "The line \"%s\" contains text " +
		"outside of quotes in a CHAR record.", line)
}
