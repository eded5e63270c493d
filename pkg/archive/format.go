// Package archive implements the sealed tree container.
//
// A container is laid out as
//
//	header  | magic "QSTC" | version u8 | codec id u8 |
//	entries | one independently compressed frame per entry |
//	index   | count u32 | count * (path len u16 | path | size u64 | offset u64 | stored u64 | xxhash64 u64) |
//	trailer | index offset u64 | xxhash64(index) u64 | magic "QSTE" |
//
// with every integer big-endian. The index goes last so that a Writer can
// stream entries without seeking; a Reader needs random access.
package archive

import (
	"errors"
	"io/fs"
	"math"

	"qstore/pkg/codec"
)

// Constants for the container format
const (
	Magic        = "QSTC" // Leading magic
	TrailerMagic = "QSTE" // Trailing magic
	Version      = 1      // Container format version

	headerSize     = len(Magic) + 2
	trailerSize    = 8 + 8 + len(TrailerMagic)
	minEntrySize   = 2 + 4*8
	maxArchivePath = math.MaxUint16
)

var (
	// ErrCorrupt is returned when a container cannot be parsed or an entry
	// does not match its recorded size or checksum.
	ErrCorrupt = errors.New("corrupt container")
	// ErrNotFound is returned by Reader.Open for a path that is not stored.
	ErrNotFound = errors.New("entry not found")
	// ErrDuplicateEntry is returned when a path is added twice.
	ErrDuplicateEntry = errors.New("duplicate archive path")
	// ErrFinalized is returned on writes after Finalize.
	ErrFinalized = errors.New("container already finalized")
	// ErrLengthMismatch is returned when entry content differs from the
	// declared length.
	ErrLengthMismatch = errors.New("entry length mismatch")
	// ErrInvalidPath is returned for a path that is not a relative
	// slash-separated archive path.
	ErrInvalidPath = errors.New("invalid archive path")
)

// Entry describes one stored file.
type Entry struct {
	Path       string // Slash-separated relative path
	Size       uint64 // Original size
	Offset     uint64 // Offset of the compressed frame
	StoredSize uint64 // Size of the compressed frame
	Checksum   uint64 // xxhash64 of the original bytes
}

// Config selects how entries are stored.
type Config struct {
	Codec codec.Codec
}

// DefaultConfig stores entries with zstd at its best compression.
func DefaultConfig() Config {
	c, _ := codec.Lookup("zstd")
	return Config{Codec: c}
}

// ValidPath reports whether p can be used as an archive path: not empty,
// relative, slash-separated, without "." or ".." elements.
func ValidPath(p string) bool {
	return p != "." && len(p) <= maxArchivePath && fs.ValidPath(p)
}
