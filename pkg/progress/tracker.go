package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const tickInterval = 250 * time.Millisecond

// Tracker counts processed bytes of one operation and periodically logs the
// rate at debug level.
type Tracker struct {
	log   *zap.Logger
	total uint64

	processed atomic.Uint64

	mu      sync.Mutex
	running bool
	done    chan struct{}
	exited  chan struct{}
}

// NewTracker returns a stopped tracker. total may be zero when the size is
// not known up front.
func NewTracker(log *zap.Logger, total uint64) *Tracker {
	return &Tracker{log: log, total: total}
}

// Start launches the periodic logger. Calling Start on a running tracker
// does nothing.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.done = make(chan struct{})
	t.exited = make(chan struct{})
	t.running = true
	go t.logger()
}

// Stop stops the periodic logger and waits for its final record.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	close(t.done)
	t.running = false
	exited := t.exited
	t.mu.Unlock()

	<-exited
}

// Add adds processed bytes to the counter
func (t *Tracker) Add(n uint64) {
	if n > 0 {
		t.processed.Add(n)
	}
}

// Processed returns the number of bytes counted so far.
func (t *Tracker) Processed() uint64 {
	return t.processed.Load()
}

// Writer wraps w so that every written byte is counted.
func (t *Tracker) Writer(w io.Writer) io.Writer {
	return &Writer{W: w, t: t}
}

// Reader wraps r so that every read byte is counted.
func (t *Tracker) Reader(r io.Reader) io.Reader {
	return &Reader{R: r, t: t}
}

// formatSize returns a human-readable size string
func formatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatRate returns a human-readable rate string
func formatRate(bytesPerSec uint64) string {
	return formatSize(bytesPerSec) + "/s"
}

// logger logs processing progress periodically
func (t *Tracker) logger() {
	defer close(t.exited)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var prevBytes uint64
	var prevPercentage float64
	startTime := time.Now()
	lastOutputTime := startTime

	for {
		select {
		case <-ticker.C:
			currentBytes := t.processed.Load()
			rate := uint64(float64(currentBytes-prevBytes) / tickInterval.Seconds())
			prevBytes = currentBytes

			var currentPercentage float64
			if t.total > 0 {
				currentPercentage = float64(currentBytes) / float64(t.total) * 100
			}

			// Only every second or on a 10% step
			if time.Since(lastOutputTime) < time.Second && currentPercentage-prevPercentage < 10 {
				continue
			}
			lastOutputTime = time.Now()
			prevPercentage = currentPercentage

			fields := []zap.Field{
				zap.String("processed", formatSize(currentBytes)),
				zap.String("rate", formatRate(rate)),
			}
			if t.total > 0 {
				fields = append(fields,
					zap.String("total", formatSize(t.total)),
					zap.String("percent", fmt.Sprintf("%.1f%%", currentPercentage)))
			}
			t.log.Debug("progress", fields...)
		case <-t.done:
			totalTime := time.Since(startTime).Seconds()
			if totalTime < 0.001 {
				totalTime = 0.001
			}
			processed := t.processed.Load()
			t.log.Debug("completed processing",
				zap.String("size", formatSize(processed)),
				zap.String("elapsed", fmt.Sprintf("%.1fs", totalTime)),
				zap.String("avg_rate", formatRate(uint64(float64(processed)/totalTime))))
			return
		}
	}
}

// Writer is a writer that tracks bytes written for progress reporting
type Writer struct {
	W io.Writer
	t *Tracker
}

// Write implements io.Writer and tracks bytes written
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if n > 0 {
		pw.t.Add(uint64(n))
	}
	return
}

// Reader is a reader that tracks bytes read for progress reporting
type Reader struct {
	R io.Reader
	t *Tracker
}

// Read implements io.Reader and tracks bytes read
func (pr *Reader) Read(p []byte) (n int, err error) {
	n, err = pr.R.Read(p)
	if n > 0 {
		pr.t.Add(uint64(n))
	}
	return
}
