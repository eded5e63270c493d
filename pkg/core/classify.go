package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"qstore/pkg/config"
)

// Action is what is done with one input path.
type Action int

const (
	ActionInvalid        Action = iota // Neither a regular file nor a directory
	ActionCompressFile                 // Ordinary file
	ActionDecompressFile               // File with the single-file suffix
	ActionPackTree                     // Directory
	ActionExtractTree                  // File with the tree suffix
)

func (a Action) String() string {
	switch a {
	case ActionCompressFile:
		return "compress-file"
	case ActionDecompressFile:
		return "decompress-file"
	case ActionPackTree:
		return "pack-tree"
	case ActionExtractTree:
		return "extract-tree"
	default:
		return "invalid"
	}
}

// Unpacks reports whether a restores content from a previous run.
func (a Action) Unpacks() bool {
	return a == ActionDecompressFile || a == ActionExtractTree
}

// Classify stats name and decides what to do with it.
func Classify(name string, sfx config.Suffixes) (Action, error) {
	info, err := os.Stat(name)
	if err != nil {
		return ActionInvalid, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return ClassifyMode(name, info.Mode(), sfx)
}

// ClassifyMode decides the action from the kind of entry and the final
// extension of name. Extensions are compared byte for byte; a leading dot
// does not start one, so ".csfile" is an ordinary file.
func ClassifyMode(name string, mode fs.FileMode, sfx config.Suffixes) (Action, error) {
	switch {
	case mode.IsDir():
		return ActionPackTree, nil
	case !mode.IsRegular():
		return ActionInvalid, fmt.Errorf("%w: %s is not a file nor a directory", ErrInvalidInput, name)
	}

	ext := extension(name)
	switch {
	case ext == "":
		return ActionCompressFile, nil
	case ext == sfx.Dir:
		return ActionExtractTree, nil
	case ext == sfx.File:
		return ActionDecompressFile, nil
	default:
		return ActionCompressFile, nil
	}
}

// extension returns the text after the last dot of the base name, or ""
// when the only dot is the first byte.
func extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}
