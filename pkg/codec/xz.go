package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// xzDictCap is the dictionary size used when writing.
const xzDictCap = 16 << 20

type xzCodec struct{}

func (xzCodec) Name() string  { return "xz" }
func (xzCodec) ID() byte      { return IDXZ }
func (xzCodec) Magic() []byte { return xzMagic }

func (xzCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return xz.WriterConfig{DictCap: xzDictCap}.NewWriter(w)
}

func (xzCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}
