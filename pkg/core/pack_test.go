package core

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"qstore/pkg/archive"
)

func containerPaths(t *testing.T, name string) []string {
	t.Helper()
	rc, err := archive.OpenFile(name)
	require.NoError(t, err)
	defer rc.Close()

	paths := rc.List()
	sort.Strings(paths)
	return paths
}

func TestPackExtractScenario(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeTree(t, root, map[string]string{
		"a.txt":     "hi",
		"sub/b.txt": "bye",
	})
	opts := testOptions(t)

	output, err := Pack([]string{root}, opts)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "root.csdir"), output)

	fresh := filepath.Join(dir, "fresh")
	require.NoError(t, os.Mkdir(fresh, 0o755))
	moved := filepath.Join(fresh, "root.csdir")
	require.NoError(t, os.Rename(output, moved))

	require.NoError(t, Extract(moved, opts))
	require.Equal(t, "hi", readFile(t, filepath.Join(fresh, "a.txt")))
	require.Equal(t, "bye", readFile(t, filepath.Join(fresh, "sub", "b.txt")))
}

func TestPackExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "tree")
	files := map[string]string{
		"top.txt":                  "top",
		"empty":                    "",
		"x/inner/f.txt":            "deep in x",
		"x/g.txt":                  "in x",
		"y/g.txt":                  "in y",
		"y/z/w/v/leaf.bin":         string(bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 50000)),
		"same/same/same/same.same": "nested names",
	}
	writeTree(t, root, files)
	opts := testOptions(t)

	output, err := Pack([]string{root}, opts)
	require.NoError(t, err)

	paths := containerPaths(t, output)
	want := make([]string, 0, len(files))
	for p := range files {
		want = append(want, p)
	}
	sort.Strings(want)
	require.Equal(t, want, paths)

	dst := filepath.Join(dir, "restore")
	require.NoError(t, os.Mkdir(dst, 0o755))
	moved := filepath.Join(dst, filepath.Base(output))
	require.NoError(t, os.Rename(output, moved))

	require.NoError(t, Extract(moved, opts))
	require.NoError(t, os.Remove(moved))
	require.Equal(t, files, readTree(t, dst))
}

func TestPackSiblingPrefixesDoNotLeak(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeTree(t, root, map[string]string{
		"a/one/file": "1",
		"a/two":      "2",
		"b/three":    "3",
		"c":          "4",
	})

	output, err := Pack([]string{root}, testOptions(t))
	require.NoError(t, err)
	require.Equal(t, []string{"a/one/file", "a/two", "b/three", "c"}, containerPaths(t, output))
}

func TestPackEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "only", "dirs"), 0o755))

	output, err := Pack([]string{root}, testOptions(t))
	require.NoError(t, err)
	require.Empty(t, containerPaths(t, output))
}

func TestPackMultipleRoots(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"r1/a.txt":     "a",
		"r1/sub/c.txt": "c",
		"r2/b.txt":     "b",
		"loose.txt":    "loose",
	})

	roots := []string{
		filepath.Join(dir, "r1"),
		filepath.Join(dir, "r2"),
		filepath.Join(dir, "loose.txt"),
	}
	output, err := Pack(roots, testOptions(t))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "r1.csdir"), output)
	require.Equal(t, []string{"a.txt", "b.txt", "loose.txt", "sub/c.txt"}, containerPaths(t, output))
}

func TestPackFileRoot(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"notes.txt": "n"})

	output, err := Pack([]string{filepath.Join(dir, "notes.txt")}, testOptions(t))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "notes.txt.csdir"), output)
	require.Equal(t, []string{"notes.txt"}, containerPaths(t, output))
}

func TestPackDuplicateAcrossRoots(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"r1/a.txt": "first",
		"r2/a.txt": "second",
	})

	_, err := Pack([]string{filepath.Join(dir, "r1"), filepath.Join(dir, "r2")}, testOptions(t))
	require.ErrorIs(t, err, archive.ErrDuplicateEntry)
}

func TestPackRefusesExistingContainer(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeTree(t, root, map[string]string{"a.txt": "v1"})
	opts := testOptions(t)

	output, err := Pack([]string{root}, opts)
	require.NoError(t, err)
	before, err := os.ReadFile(output)
	require.NoError(t, err)

	writeTree(t, root, map[string]string{"b.txt": "v2"})
	_, err = Pack([]string{root}, opts)
	require.ErrorIs(t, err, ErrAlreadyExists)

	after, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, before, after)

	opts.Force = true
	_, err = Pack([]string{root}, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, containerPaths(t, output))
}

func TestPackSkipsOwnContainer(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"outer/inner/a.txt": "a",
		"outer/b.txt":       "b",
	})

	// the container of the first root lands inside the second one
	roots := []string{filepath.Join(dir, "outer", "inner"), filepath.Join(dir, "outer")}
	output, err := Pack(roots, testOptions(t))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "outer", "inner.csdir"), output)
	require.Equal(t, []string{"a.txt", "b.txt", "inner/a.txt"}, containerPaths(t, output))
}

func TestPackSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	writeTree(t, root, map[string]string{"real.txt": "r"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	output, err := Pack([]string{root}, testOptions(t))
	require.NoError(t, err)
	require.Equal(t, []string{"real.txt"}, containerPaths(t, output))
}

func TestPackMissingRoot(t *testing.T) {
	_, err := Pack([]string{filepath.Join(t.TempDir(), "missing")}, testOptions(t))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Pack(nil, testOptions(t))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestContainerPath(t *testing.T) {
	p, err := ContainerPath("data/", "csdir")
	require.NoError(t, err)
	require.Equal(t, "data.csdir", p)

	p, err = ContainerPath(".", "csdir")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, wd+".csdir", p)
}
