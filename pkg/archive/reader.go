package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"qstore/pkg/codec"
)

// Reader gives random access to the entries of a finalized container.
type Reader struct {
	r      io.ReaderAt
	codec  codec.Codec
	index  []Entry
	byPath map[string]int
}

// ReadCloser is a Reader that owns its underlying file.
type ReadCloser struct {
	*Reader
	f *os.File
}

// OpenFile opens the container stored at name.
func OpenFile(name string) (*ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat container: %w", err)
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &ReadCloser{Reader: r, f: f}, nil
}

// Close closes the container file.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// NewReader parses the header, trailer and index of the container of the
// given size read from r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	if size < int64(headerSize+trailerSize+4) {
		return nil, corruptf("%d bytes is too short", size)
	}

	header := make([]byte, headerSize)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	if string(header[:len(Magic)]) != Magic {
		return nil, corruptf("invalid magic number %q", header[:len(Magic)])
	}
	if v := header[len(Magic)]; v != Version {
		return nil, corruptf("unsupported version %d", v)
	}
	c, err := codec.ByID(header[len(Magic)+1])
	if err != nil {
		return nil, corruptf("%v", err)
	}

	trailer := make([]byte, trailerSize)
	if _, err := r.ReadAt(trailer, size-int64(trailerSize)); err != nil {
		return nil, fmt.Errorf("%w: read trailer: %w", ErrCorrupt, err)
	}
	if string(trailer[16:]) != TrailerMagic {
		return nil, corruptf("missing trailer, container was not finalized")
	}
	indexOffset := binary.BigEndian.Uint64(trailer[:8])
	indexSum := binary.BigEndian.Uint64(trailer[8:16])
	indexEnd := uint64(size) - uint64(trailerSize)
	if indexOffset < uint64(headerSize) || indexOffset > indexEnd || indexEnd-indexOffset < 4 {
		return nil, corruptf("index offset %d out of range", indexOffset)
	}

	index := make([]byte, indexEnd-indexOffset)
	if _, err := r.ReadAt(index, int64(indexOffset)); err != nil {
		return nil, fmt.Errorf("%w: read index: %w", ErrCorrupt, err)
	}
	if xxhash.Sum64(index) != indexSum {
		return nil, corruptf("index checksum mismatch")
	}

	entries, err := decodeIndex(index, indexOffset)
	if err != nil {
		return nil, err
	}

	ar := &Reader{
		r:      r,
		codec:  c,
		index:  entries,
		byPath: make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, ok := ar.byPath[e.Path]; ok {
			return nil, corruptf("duplicate entry %s", e.Path)
		}
		ar.byPath[e.Path] = i
	}
	return ar, nil
}

func decodeIndex(index []byte, dataEnd uint64) ([]Entry, error) {
	br := bytes.NewReader(index)

	var count uint32
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return nil, corruptf("read entry count: %v", err)
	}
	if uint64(count)*minEntrySize > uint64(br.Len()) {
		return nil, corruptf("entry count %d exceeds index size", count)
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		var pathLen uint16
		if err := binary.Read(br, binary.BigEndian, &pathLen); err != nil {
			return nil, corruptf("read path length %d: %v", i, err)
		}
		p := make([]byte, pathLen)
		if _, err := io.ReadFull(br, p); err != nil {
			return nil, corruptf("read path %d: %v", i, err)
		}

		var fields [4]uint64
		if err := binary.Read(br, binary.BigEndian, &fields); err != nil {
			return nil, corruptf("read entry %d: %v", i, err)
		}
		e := Entry{
			Path:       string(p),
			Size:       fields[0],
			Offset:     fields[1],
			StoredSize: fields[2],
			Checksum:   fields[3],
		}

		if !ValidPath(e.Path) {
			return nil, corruptf("invalid path %q", e.Path)
		}
		if e.Offset < uint64(headerSize) || e.Offset > dataEnd || e.StoredSize > dataEnd-e.Offset {
			return nil, corruptf("entry %s out of range", e.Path)
		}
		if (e.Size == 0) != (e.StoredSize == 0) {
			return nil, corruptf("entry %s has inconsistent sizes", e.Path)
		}
		entries = append(entries, e)
	}
	if br.Len() != 0 {
		return nil, corruptf("%d trailing index bytes", br.Len())
	}
	return entries, nil
}

// List returns the stored archive paths in the order they were added.
func (r *Reader) List() []string {
	paths := make([]string, len(r.index))
	for i, e := range r.index {
		paths[i] = e.Path
	}
	return paths
}

// Entries returns the index of the container.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.index))
	copy(out, r.index)
	return out
}

// Stat returns the index entry for path.
func (r *Reader) Stat(path string) (Entry, error) {
	i, ok := r.byPath[path]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return r.index[i], nil
}

// Open returns a reader streaming the original bytes of path. The reader
// fails with ErrCorrupt when the content does not match the recorded size or
// checksum.
func (r *Reader) Open(path string) (io.ReadCloser, error) {
	e, err := r.Stat(path)
	if err != nil {
		return nil, err
	}

	er := &entryReader{entry: e, h: xxhash.New()}
	if e.Size == 0 {
		er.zr = io.NopCloser(bytes.NewReader(nil))
		return er, nil
	}

	sr := io.NewSectionReader(r.r, int64(e.Offset), int64(e.StoredSize))
	zr, err := r.codec.NewReader(sr)
	if err != nil {
		return nil, corruptf("open %s: %v", path, err)
	}
	er.zr = zr
	return er, nil
}

type entryReader struct {
	entry Entry
	zr    io.ReadCloser
	h     hash.Hash64
	read  uint64
	err   error
}

func (er *entryReader) Read(p []byte) (int, error) {
	if er.err != nil {
		return 0, er.err
	}

	n, err := er.zr.Read(p)
	er.read += uint64(n)
	if er.read > er.entry.Size {
		er.err = corruptf("%s is longer than %d bytes", er.entry.Path, er.entry.Size)
		return 0, er.err
	}
	er.h.Write(p[:n])

	switch {
	case errors.Is(err, io.EOF):
		if er.read != er.entry.Size {
			er.err = corruptf("%s: expected %d bytes, got %d", er.entry.Path, er.entry.Size, er.read)
			return n, er.err
		}
		if er.h.Sum64() != er.entry.Checksum {
			er.err = corruptf("%s: checksum mismatch", er.entry.Path)
			return n, er.err
		}
		er.err = io.EOF
		return n, io.EOF
	case err != nil:
		er.err = fmt.Errorf("%w: read %s: %w", ErrCorrupt, er.entry.Path, err)
		return n, er.err
	}
	return n, nil
}

func (er *entryReader) Close() error {
	return er.zr.Close()
}
