package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"qstore/pkg/config"
)

func TestClassifyMode(t *testing.T) {
	sfx := config.DefaultSuffixes()

	cases := []struct {
		name   string
		mode   fs.FileMode
		action Action
	}{
		{"dir", fs.ModeDir, ActionPackTree},
		{"dir.csdir", fs.ModeDir, ActionPackTree},
		{"root.csdir", 0, ActionExtractTree},
		{"notes.txt.csfile", 0, ActionDecompressFile},
		{"notes.txt", 0, ActionCompressFile},
		{"Makefile", 0, ActionCompressFile},
		{"ROOT.CSDIR", 0, ActionCompressFile},
		{"root.csdir.bak", 0, ActionCompressFile},
		{"csdir", 0, ActionCompressFile},
		{".csfile", 0, ActionCompressFile},
		{".csdir", 0, ActionCompressFile},
		{"hidden/.csdir", 0, ActionCompressFile},
		{".notes.csfile", 0, ActionDecompressFile},
		{"dir.d/notes", 0, ActionCompressFile},
	}

	for _, tc := range cases {
		a, err := ClassifyMode(tc.name, tc.mode, sfx)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.action, a, tc.name)

		// same input, same answer
		again, err := ClassifyMode(tc.name, tc.mode, sfx)
		require.NoError(t, err)
		require.Equal(t, a, again)
	}
}

func TestClassifyModeInvalid(t *testing.T) {
	for _, mode := range []fs.FileMode{fs.ModeDevice, fs.ModeNamedPipe, fs.ModeSocket, fs.ModeSymlink} {
		a, err := ClassifyMode("x", mode, config.DefaultSuffixes())
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Equal(t, ActionInvalid, a)
	}
}

func TestClassifyCustomSuffixes(t *testing.T) {
	sfx := config.Suffixes{File: "one", Dir: "many"}

	a, err := ClassifyMode("x.many", 0, sfx)
	require.NoError(t, err)
	require.Equal(t, ActionExtractTree, a)

	a, err = ClassifyMode("x.csdir", 0, sfx)
	require.NoError(t, err)
	require.Equal(t, ActionCompressFile, a)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"plain.txt":         "x",
		"tree.csdir":        "x",
		"single.txt.csfile": "x",
	})
	sfx := config.DefaultSuffixes()

	for name, want := range map[string]Action{
		".":                 ActionPackTree,
		"plain.txt":         ActionCompressFile,
		"tree.csdir":        ActionExtractTree,
		"single.txt.csfile": ActionDecompressFile,
	} {
		a, err := Classify(filepath.Join(dir, name), sfx)
		require.NoError(t, err, name)
		require.Equal(t, want, a, name)
	}

	a, err := Classify(filepath.Join(dir, "missing"), sfx)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, ActionInvalid, a)
}

func TestActionString(t *testing.T) {
	require.Equal(t, "pack-tree", ActionPackTree.String())
	require.Equal(t, "extract-tree", ActionExtractTree.String())
	require.Equal(t, "compress-file", ActionCompressFile.String())
	require.Equal(t, "decompress-file", ActionDecompressFile.String())
	require.Equal(t, "invalid", ActionInvalid.String())

	require.True(t, ActionExtractTree.Unpacks())
	require.True(t, ActionDecompressFile.Unpacks())
	require.False(t, ActionPackTree.Unpacks())
	require.False(t, ActionCompressFile.Unpacks())
}
