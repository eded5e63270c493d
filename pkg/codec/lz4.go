package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4 frame magic 0x184D2204, little endian
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

type lz4Codec struct{}

func (lz4Codec) Name() string  { return "lz4" }
func (lz4Codec) ID() byte      { return IDLZ4 }
func (lz4Codec) Magic() []byte { return lz4Magic }

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, err
	}
	return zw, nil
}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
