package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"qstore/pkg/archive"
	"qstore/pkg/progress"
)

// Extract writes every entry of the container back to disk, relative to the
// directory holding the container. The first failing entry aborts the whole
// extraction.
func Extract(containerPath string, opts Options) error {
	opts = opts.withDefaults()

	absContainer, err := filepath.Abs(containerPath)
	if err != nil {
		return fmt.Errorf("resolve container: %w", err)
	}

	rc, err := archive.OpenFile(containerPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", containerPath, err)
	}
	defer rc.Close()

	var total uint64
	for _, e := range rc.Entries() {
		total += e.Size
	}

	rep := progress.NewReporter(opts.Log)
	tracker := progress.NewTracker(opts.Log, total)
	tracker.Start()
	defer tracker.Stop()

	baseDir := filepath.Dir(containerPath)
	paths := rc.List()
	opts.Log.Debug("extracting",
		zap.String("container", containerPath),
		zap.String("destination", baseDir),
		zap.Int("entries", len(paths)))

	for i, p := range paths {
		dst, err := Destination(baseDir, p)
		if err != nil {
			return err
		}
		absDst, err := filepath.Abs(dst)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dst, err)
		}
		if absDst == absContainer {
			return fmt.Errorf("%w: entry %q overwrites the container", ErrCorruptContainer, p)
		}
		rep.Extracted(p, dst, i+1, len(paths))

		if err := extractEntry(rc.Reader, p, dst, opts.Force, tracker); err != nil {
			return err
		}
	}
	return nil
}

// Destination maps an archive path to a host path below baseDir.
func Destination(baseDir, archivePath string) (string, error) {
	rel := filepath.FromSlash(archivePath)
	if !archive.ValidPath(archivePath) || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: unsafe archive path %q", ErrCorruptContainer, archivePath)
	}
	return filepath.Join(baseDir, rel), nil
}

func extractEntry(r *archive.Reader, archivePath, dst string, force bool, tracker *progress.Tracker) error {
	src, err := r.Open(archivePath)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return fmt.Errorf("enumerated entry vanished: %w", err)
		}
		return err
	}
	defer src.Close()

	if err := EnsureParent(dst); err != nil {
		return err
	}
	f, err := OpenForWrite(dst, force)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := io.Copy(tracker.Writer(bw), src); err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
