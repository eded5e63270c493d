package core

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"qstore/pkg/archive"
	"qstore/pkg/progress"
)

// ContainerPath returns the tree container written for root.
func ContainerPath(root, suffix string) (string, error) {
	p := filepath.Clean(root)
	if b := filepath.Base(p); b == "." || b == string(filepath.Separator) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", root, err)
		}
		p = abs
	}
	return p + "." + suffix, nil
}

type packer struct {
	w        *archive.Writer
	rep      *progress.Reporter
	tracker  *progress.Tracker
	log      *zap.Logger
	skipPath string
}

// Pack stores every file below roots in one container named after the first
// root and returns the container path. Files are stored under their path
// relative to the root they were found in; a root that is a file is stored
// under its base name. A failure leaves the partial container on disk.
func Pack(roots []string, opts Options) (string, error) {
	if len(roots) == 0 {
		return "", fmt.Errorf("%w: nothing to pack", ErrInvalidInput)
	}
	opts = opts.withDefaults()

	output, err := ContainerPath(roots[0], opts.Suffixes.Dir)
	if err != nil {
		return "", err
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolve output: %w", err)
	}

	f, err := OpenForWrite(output, opts.Force)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w, err := archive.NewWriter(f, opts.Archive)
	if err != nil {
		return "", err
	}

	p := &packer{
		w:        w,
		rep:      progress.NewReporter(opts.Log),
		tracker:  progress.NewTracker(opts.Log, 0),
		log:      opts.Log,
		skipPath: absOutput,
	}
	p.tracker.Start()
	defer p.tracker.Stop()

	opts.Log.Debug("packing", zap.Strings("roots", roots), zap.String("container", output))

	for i, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return "", fmt.Errorf("stat root: %w", err)
		}

		switch {
		case info.IsDir():
			abs, err := filepath.Abs(root)
			if err != nil {
				return "", fmt.Errorf("resolve %s: %w", root, err)
			}
			if err := p.packDir(abs, ""); err != nil {
				return "", err
			}
		case info.Mode().IsRegular():
			if err := p.storeFile(root, filepath.Base(root), i+1, len(roots)); err != nil {
				return "", err
			}
		default:
			return "", fmt.Errorf("%w: %s is not a file nor a directory", ErrInvalidInput, root)
		}
	}

	if err := w.Finalize(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", output, err)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", output, err)
	}
	return output, nil
}

// packDir stores the content of dir. prefix is the archive path of dir
// itself, empty for a root.
func (p *packer) packDir(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for i, de := range entries {
		full := filepath.Join(dir, de.Name())
		archivePath := path.Join(prefix, de.Name())

		switch {
		case de.IsDir():
			if err := p.packDir(full, archivePath); err != nil {
				return err
			}
		case de.Type().IsRegular():
			if full == p.skipPath {
				continue
			}
			if err := p.storeFile(full, archivePath, i+1, len(entries)); err != nil {
				return err
			}
		default:
			p.log.Warn("skipping entry that is not a regular file",
				zap.String("path", full),
				zap.Stringer("mode", de.Type()))
		}
	}
	return nil
}

func (p *packer) storeFile(name, archivePath string, index, total int) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	p.rep.Stored(name, archivePath, index, total)

	src := p.tracker.Reader(bufio.NewReader(f))
	if err := p.w.AddEntry(archivePath, uint64(info.Size()), src); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}
