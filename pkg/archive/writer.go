package archive

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// countingWriter tracks the current offset in the container
type countingWriter struct {
	w   io.Writer
	off uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.off += uint64(n)
	return n, err
}

// Writer builds a container on an io.Writer. It is not safe for concurrent
// use. Finalize must be called exactly once after the last entry.
type Writer struct {
	bw  *bufio.Writer
	cw  *countingWriter
	cfg Config

	entries   []Entry
	seen      map[string]struct{}
	finalized bool
	err       error
}

// NewWriter writes the container header to w and returns a Writer.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	if cfg.Codec == nil {
		cfg = DefaultConfig()
	}

	bw := bufio.NewWriter(w)
	aw := &Writer{
		bw:   bw,
		cw:   &countingWriter{w: bw},
		cfg:  cfg,
		seen: make(map[string]struct{}),
	}

	header := make([]byte, 0, headerSize)
	header = append(header, Magic...)
	header = append(header, Version, cfg.Codec.ID())
	if _, err := aw.cw.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return aw, nil
}

// AddEntry stores length bytes read from r under path. r must yield exactly
// length bytes. A failure after content was written leaves the Writer
// unusable.
func (w *Writer) AddEntry(path string, length uint64, r io.Reader) error {
	if w.finalized {
		return ErrFinalized
	}
	if w.err != nil {
		return w.err
	}
	if !ValidPath(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if _, ok := w.seen[path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, path)
	}

	e := Entry{Path: path, Size: length, Offset: w.cw.off}
	h := xxhash.New()
	src := io.TeeReader(io.LimitReader(r, int64(length)), h)

	if length > 0 {
		zw, err := w.cfg.Codec.NewWriter(w.cw)
		if err != nil {
			return w.fail(fmt.Errorf("create %s writer for %s: %w", w.cfg.Codec.Name(), path, err))
		}
		n, err := io.Copy(zw, src)
		if err != nil {
			zw.Close()
			return w.fail(fmt.Errorf("store %s: %w", path, err))
		}
		if err := zw.Close(); err != nil {
			return w.fail(fmt.Errorf("close %s writer for %s: %w", w.cfg.Codec.Name(), path, err))
		}
		if uint64(n) != length {
			return w.fail(fmt.Errorf("%w: %s: expected %d bytes, got %d", ErrLengthMismatch, path, length, n))
		}
	}

	// The source must be exhausted at the declared length
	var probe [1]byte
	if n, _ := io.ReadFull(r, probe[:]); n > 0 {
		return w.fail(fmt.Errorf("%w: %s: more than %d bytes", ErrLengthMismatch, path, length))
	}

	e.StoredSize = w.cw.off - e.Offset
	e.Checksum = h.Sum64()
	w.entries = append(w.entries, e)
	w.seen[path] = struct{}{}
	return nil
}

// Entries returns the entries added so far, in insertion order.
func (w *Writer) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Finalize writes the index and the trailer. No entry may be added
// afterwards.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	if w.err != nil {
		return w.err
	}
	w.finalized = true

	indexOffset := w.cw.off
	index, err := encodeIndex(w.entries)
	if err != nil {
		return err
	}
	if _, err := w.cw.Write(index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	trailer := make([]byte, 0, trailerSize)
	trailer = binary.BigEndian.AppendUint64(trailer, indexOffset)
	trailer = binary.BigEndian.AppendUint64(trailer, xxhash.Sum64(index))
	trailer = append(trailer, TrailerMagic...)
	if _, err := w.cw.Write(trailer); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush container: %w", err)
	}
	return nil
}

func (w *Writer) fail(err error) error {
	w.err = err
	return err
}

func encodeIndex(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if uint64(len(entries)) > uint64(^uint32(0)) {
		return nil, errors.New("too many entries")
	}

	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(len(entries))))
	for _, e := range entries {
		var rec []byte
		rec = binary.BigEndian.AppendUint16(rec, uint16(len(e.Path)))
		rec = append(rec, e.Path...)
		rec = binary.BigEndian.AppendUint64(rec, e.Size)
		rec = binary.BigEndian.AppendUint64(rec, e.Offset)
		rec = binary.BigEndian.AppendUint64(rec, e.StoredSize)
		rec = binary.BigEndian.AppendUint64(rec, e.Checksum)
		buf.Write(rec)
	}
	return buf.Bytes(), nil
}
