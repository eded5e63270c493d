// Package codec implements the byte compressors used for single files and for
// the entries of a tree container. Every codec writes at its maximal level
// and is recognized on read by the magic bytes of its stream.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	// ErrUnknownCodec is returned when a codec name or id is not registered.
	ErrUnknownCodec = errors.New("unknown codec")
	// ErrUnknownFormat is returned when a stream starts with no known magic.
	ErrUnknownFormat = errors.New("unknown compressed format")
)

// Codec is a streaming byte compressor.
type Codec interface {
	// Name returns the name used on the command line.
	Name() string
	// ID returns the identifier stored in container headers.
	ID() byte
	// Magic returns the leading bytes of every stream the codec writes.
	Magic() []byte
	// NewWriter wraps w with a compressing writer. Close must be called to
	// flush the final frame; it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader wraps r with a decompressing reader.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Codec identifiers, stable across releases
const (
	IDLZ4   byte = 1
	IDZstd  byte = 2
	IDXZ    byte = 3
	IDBzip2 byte = 4
)

var registry = []Codec{lz4Codec{}, zstdCodec{}, xzCodec{}, bzip2Codec{}}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	for _, c := range registry {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// ByID returns the codec with the given identifier.
func ByID(id byte) (Codec, error) {
	for _, c := range registry {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownCodec, id)
}

// Names returns the sorted names of all codecs.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, c := range registry {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

const maxMagicLen = 6

// Detect peeks at the start of br and returns the codec that wrote it.
// Nothing is consumed from br.
func Detect(br *bufio.Reader) (Codec, error) {
	head, err := br.Peek(maxMagicLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("peek magic: %w", err)
	}
	for _, c := range registry {
		if bytes.HasPrefix(head, c.Magic()) {
			return c, nil
		}
	}
	return nil, ErrUnknownFormat
}

// Compress streams r through c into w.
func Compress(r io.Reader, w io.Writer, c Codec) error {
	zw, err := c.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create %s writer: %w", c.Name(), err)
	}
	if _, err := io.Copy(zw, r); err != nil {
		zw.Close()
		return fmt.Errorf("compress %s: %w", c.Name(), err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close %s writer: %w", c.Name(), err)
	}
	return nil
}

// Decompress detects the codec of r and streams the decoded bytes into w.
func Decompress(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		// empty input decodes to empty output
		return nil
	}
	c, err := Detect(br)
	if err != nil {
		return err
	}

	zr, err := c.NewReader(br)
	if err != nil {
		return fmt.Errorf("create %s reader: %w", c.Name(), err)
	}
	defer zr.Close()

	if _, err := io.Copy(w, zr); err != nil {
		return fmt.Errorf("decompress %s: %w", c.Name(), err)
	}
	return nil
}
