package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic contains first 4 bytes of any zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type zstdCodec struct{}

func (zstdCodec) Name() string  { return "zstd" }
func (zstdCodec) ID() byte      { return IDZstd }
func (zstdCodec) Magic() []byte { return zstdMagic }

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
	)
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
