// Package lib is the embedding API of qstore.
// This package re-exports the functionality from the core package.
package lib

import (
	"go.uber.org/zap"

	"qstore/pkg/config"
	"qstore/pkg/core"
)

// Recognized suffixes re-exported from config
const (
	FileSuffix = config.FileSuffix
	DirSuffix  = config.DirSuffix
)

// Config re-exported from config
type Config = config.Config

// Options re-exported from core
type Options = core.Options

// Action re-exported from core
type Action = core.Action

// Re-export actions
const (
	ActionInvalid        = core.ActionInvalid
	ActionCompressFile   = core.ActionCompressFile
	ActionDecompressFile = core.ActionDecompressFile
	ActionPackTree       = core.ActionPackTree
	ActionExtractTree    = core.ActionExtractTree
)

// Re-export errors
var (
	ErrInvalidInput     = core.ErrInvalidInput
	ErrAlreadyExists    = core.ErrAlreadyExists
	ErrCorruptContainer = core.ErrCorruptContainer
	ErrEntryNotFound    = core.ErrEntryNotFound
)

// DefaultConfig returns a Config for the given inputs.
func DefaultConfig(inputs ...string) Config {
	cfg := config.Default()
	cfg.Inputs = inputs
	return cfg
}

// Run is a wrapper around core.Run
func Run(cfg Config, log *zap.Logger) error {
	return core.Run(cfg, log)
}

// Classify is a wrapper around core.Classify with the default suffixes
func Classify(path string) (Action, error) {
	return core.Classify(path, config.DefaultSuffixes())
}

// Pack is a wrapper around core.Pack
func Pack(roots []string, opts Options) (string, error) {
	return core.Pack(roots, opts)
}

// Extract is a wrapper around core.Extract
func Extract(container string, opts Options) error {
	return core.Extract(container, opts)
}

// Compress is a wrapper around core.CompressFile
func Compress(path string, opts Options) (string, error) {
	return core.CompressFile(path, opts)
}

// Decompress is a wrapper around core.DecompressFile
func Decompress(path string, opts Options) (string, error) {
	return core.DecompressFile(path, opts)
}
