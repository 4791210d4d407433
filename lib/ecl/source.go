package ecl

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
)

var (
	zstdMagic = []byte{ 0x28, 0xb5, 0x2f, 0xfd }
	gzipMagic = []byte{ 0x1f, 0x8b }
	binaryMagic = []byte{ 0, 0, 0, headerSize }
)

// Source is an opened result file. Records are read from it at arbitrary
// offsets, so a Source can be shared by goroutines.
type Source struct {
	io.ReaderAt
	path string
	size int64
	formatted bool
	compressed bool
	closer io.Closer
}

// Open opens a result file for reading. zstd- and gzip-compressed files are
// decompressed into memory; everything else is read in place. Whether the
// file is formatted is decided from its first bytes.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Errorf(ErrNotFound, path, "The file does not exist.")
	} else if err != nil {
		return nil, Errorf(ErrValue, path, "The file cannot be opened. " +
			"The system error is: \"%s\"", err.Error())
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Errorf(ErrValue, path, "The file cannot be opened. " +
			"The system error is: \"%s\"", err.Error())
	} else if info.IsDir() {
		f.Close()
		return nil, Errorf(ErrValue, path, "This is a directory, not a " +
			"result file.")
	}

	head := make([]byte, 4)
	n, _ := f.ReadAt(head, 0)
	head = head[:n]

	src := &Source{
		ReaderAt: f, path: path, size: info.Size(), closer: f,
	}

	var data []byte
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		data, err = readZstd(f)
	case bytes.HasPrefix(head, gzipMagic):
		data, err = readGzip(f)
	}
	if err != nil {
		f.Close()
		return nil, Errorf(ErrCorruptFormat, path, "The file looks " +
			"compressed, but cannot be decompressed: %s", err.Error())
	}
	if data != nil {
		f.Close()
		src.ReaderAt, src.size, src.closer = bytes.NewReader(data),
			int64(len(data)), nil
		src.compressed = true
		head = data
		if len(head) > 4 { head = head[:4] }
	}

	src.formatted = Sniff(head, path)
	return src, nil
}

func readZstd(f *os.File) ([]byte, error) {
	rd := zstd.NewReader(f)
	defer rd.Close()
	return io.ReadAll(rd)
}

func readGzip(f *os.File) ([]byte, error) {
	rd, err := gzip.NewReader(f)
	if err != nil { return nil, err }
	defer rd.Close()
	return io.ReadAll(rd)
}

// Sniff returns true if a file starting with head is formatted. Unformatted
// files always start with the header length marker; for empty files the
// naming convention decides.
func Sniff(head []byte, path string) bool {
	if len(head) == 0 { return IsFormattedName(path) }
	return !bytes.HasPrefix(head, binaryMagic)
}

// Path returns the file name the Source was opened with.
func (src *Source) Path() string { return src.path }

// Size returns the number of bytes in the (decompressed) file.
func (src *Source) Size() int64 { return src.size }

// Formatted returns true if the file holds formatted records.
func (src *Source) Formatted() bool { return src.formatted }

// Compressed returns true if the file was decompressed on open.
func (src *Source) Compressed() bool { return src.compressed }

// NewReader returns a Reader starting at the given byte offset.
func (src *Source) NewReader(offset int64) Reader {
	return NewReader(io.NewSectionReader(src, offset, src.size - offset),
		src.formatted)
}

// Close releases the underlying file handle.
func (src *Source) Close() error {
	if src.closer == nil { return nil }
	err := src.closer.Close()
	src.closer = nil
	return err
}
