package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0 B", formatSize(0))
	require.Equal(t, "1023 B", formatSize(1023))
	require.Equal(t, "1.0 KiB", formatSize(1024))
	require.Equal(t, "1.5 MiB", formatSize(3*1024*1024/2))
	require.Equal(t, "2.0 GiB/s", formatRate(2<<30))
}

func TestTrackerWriter(t *testing.T) {
	tr := NewTracker(zap.NewNop(), 10)
	var buf bytes.Buffer

	w := tr.Writer(&buf)
	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)

	require.Equal(t, uint64(10), tr.Processed())
	require.Equal(t, "helloworld", buf.String())
}

func TestTrackerStartStop(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := NewTracker(zap.New(core), 100)

	tr.Start()
	tr.Start()
	tr.Add(100)
	time.Sleep(2 * tickInterval)
	tr.Stop()
	tr.Stop()

	require.Equal(t, 1, logs.FilterMessage("completed processing").Len())
}

func TestReporter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewReporter(zap.New(core))

	r.Stored("/tmp/root/a.txt", "a.txt", 1, 2)
	r.Extracted("a.txt", "/tmp/a.txt", 1, 1)
	r.Decision("/tmp/root", "pack-tree")

	require.Equal(t, 3, logs.Len())
	stored := logs.FilterMessage("stored file").All()
	require.Len(t, stored, 1)
	require.Equal(t, "a.txt", stored[0].ContextMap()["archive_path"])
}

func TestTrackerReader(t *testing.T) {
	tr := NewTracker(zap.NewNop(), 0)

	b, err := io.ReadAll(tr.Reader(strings.NewReader("some bytes")))
	require.NoError(t, err)
	require.Equal(t, "some bytes", string(b))
	require.Equal(t, uint64(10), tr.Processed())
}
