package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// File is a Reader over an opened file. Files starting with the zstd frame
// magic are decompressed on the fly.
type File struct {
	*Reader

	name string
	f    *os.File
	dec  *zstd.Decoder
}

// OpenFile opens name for reading as a byte source.
func OpenFile(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewind %s: %w", name, err)
	}

	file := &File{name: name, f: f}
	if n == len(magic) && bytes.Equal(magic[:], zstdMagic) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", name, err)
		}
		file.dec = dec
		file.Reader = NewReader(dec)
		return file, nil
	}

	file.Reader = NewReader(f)
	return file, nil
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Compressed reports whether the file is zstd-compressed.
func (f *File) Compressed() bool {
	return f.dec != nil
}

// Close releases the decompressor, if any, and closes the file.
func (f *File) Close() error {
	if f.dec != nil {
		f.dec.Close()
	}
	return f.f.Close()
}
