// Package core maps between files, directory trees and their compressed
// forms: it classifies inputs, applies the overwrite policy, packs and
// extracts tree containers and runs the single-file pipeline.
package core

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"qstore/pkg/archive"
	"qstore/pkg/codec"
	"qstore/pkg/config"
)

// Options is shared by every operation of the package.
type Options struct {
	Force    bool
	Suffixes config.Suffixes
	Codec    codec.Codec    // Single-file compressor
	Archive  archive.Config // Tree container settings
	Progress bool           // Byte progress bar for single files
	Log      *zap.Logger
	Out      io.Writer // Listings and progress bar
}

// NewOptions derives Options from the invocation config.
func NewOptions(cfg config.Config, log *zap.Logger) (Options, error) {
	name := cfg.Codec
	if name == "" {
		name = config.DefaultCodec
	}
	c, err := codec.Lookup(name)
	if err != nil {
		return Options{}, fmt.Errorf("%w (available: %v)", err, codec.Names())
	}

	opts := Options{
		Force:    cfg.Force,
		Suffixes: cfg.Suffixes,
		Codec:    c,
		Archive:  archive.DefaultConfig(),
		Progress: cfg.Progress,
		Log:      log,
		Out:      os.Stdout,
	}
	return opts.withDefaults(), nil
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Suffixes.File == "" || o.Suffixes.Dir == "" {
		o.Suffixes = config.DefaultSuffixes()
	}
	if o.Codec == nil {
		o.Codec, _ = codec.Lookup(config.DefaultCodec)
	}
	if o.Archive.Codec == nil {
		o.Archive = archive.DefaultConfig()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}
