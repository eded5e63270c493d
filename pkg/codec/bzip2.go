package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

var bzip2Magic = []byte{'B', 'Z', 'h'}

const bzip2Level = 9

type bzip2Codec struct{}

func (bzip2Codec) Name() string  { return "bzip2" }
func (bzip2Codec) ID() byte      { return IDBzip2 }
func (bzip2Codec) Magic() []byte { return bzip2Magic }

func (bzip2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2Level})
}

func (bzip2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}
