package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cheggaaa/pb"
	"go.uber.org/zap"

	"qstore/pkg/codec"
	"qstore/pkg/progress"
)

// CompressFile writes name compressed with opts.Codec to name plus the
// single-file suffix and returns the output path.
func CompressFile(name string, opts Options) (string, error) {
	opts = opts.withDefaults()
	output := name + "." + opts.Suffixes.File

	err := transform(name, output, opts, func(r io.Reader, w io.Writer) error {
		return codec.Compress(r, w, opts.Codec)
	})
	if err != nil {
		return "", err
	}
	opts.Log.Debug("compressed file",
		zap.String("input", name),
		zap.String("output", output),
		zap.String("codec", opts.Codec.Name()))
	return output, nil
}

// DecompressFile restores name, which must end with the single-file suffix,
// next to it and returns the output path. The codec is detected from the
// content.
func DecompressFile(name string, opts Options) (string, error) {
	opts = opts.withDefaults()

	output, err := DecompressedPath(name, opts.Suffixes.File)
	if err != nil {
		return "", err
	}

	err = transform(name, output, opts, codec.Decompress)
	if err != nil {
		return "", err
	}
	opts.Log.Debug("decompressed file",
		zap.String("input", name),
		zap.String("output", output))
	return output, nil
}

// DecompressedPath strips the single-file suffix from name.
func DecompressedPath(name, suffix string) (string, error) {
	output, ok := strings.CutSuffix(name, "."+suffix)
	if !ok || output == "" || os.IsPathSeparator(output[len(output)-1]) {
		return "", fmt.Errorf("%w: %s does not name a compressed file", ErrInvalidInput, name)
	}
	return output, nil
}

// transform streams input through fn into output opened under the
// overwrite policy.
func transform(input, output string, opts Options, fn func(io.Reader, io.Writer) error) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	out, err := OpenForWrite(output, opts.Force)
	if err != nil {
		return err
	}
	defer out.Close()

	tracker := progress.NewTracker(opts.Log, uint64(info.Size()))
	tracker.Start()
	defer tracker.Stop()

	var src io.Reader = tracker.Reader(bufio.NewReader(in))
	if opts.Progress {
		bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
		bar.Output = opts.Out
		bar.Start()
		defer bar.Finish()
		src = bar.NewProxyReader(src)
	}

	bw := bufio.NewWriter(out)
	if err := fn(src, bw); err != nil {
		return fmt.Errorf("%s -> %s: %w", input, output, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
