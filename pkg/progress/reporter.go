// Package progress reports what an operation is doing: per-entry records for
// tree operations and byte counters for streams.
package progress

import (
	"go.uber.org/zap"
)

// Reporter logs one record per stored or extracted container entry.
type Reporter struct {
	log *zap.Logger
}

// NewReporter returns a Reporter writing to log.
func NewReporter(log *zap.Logger) *Reporter {
	return &Reporter{log: log}
}

// Stored reports a file added to a container. index is 1-based; total is the
// number of entries in the directory level the file was found in.
func (r *Reporter) Stored(src, dst string, index, total int) {
	r.log.Info("stored file",
		zap.String("source", src),
		zap.String("archive_path", dst),
		zap.Int("index", index),
		zap.Int("dir_total", total))
}

// Extracted reports an entry written back to disk. index is 1-based; total is
// the number of entries in the container.
func (r *Reporter) Extracted(src, dst string, index, total int) {
	r.log.Info("extracted file",
		zap.String("archive_path", src),
		zap.String("destination", dst),
		zap.Int("index", index),
		zap.Int("total", total))
}

// Decision logs how an input path is going to be handled.
func (r *Reporter) Decision(path, action string) {
	r.log.Debug("input classified",
		zap.String("path", path),
		zap.String("action", action))
}
