package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestFromContextFallsBackToNoOp(t *testing.T) {
	collector := FromContext(context.Background())
	timer := collector.Start("anything")
	timer.Child("nested").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	assert.Equal(t, "", buf.String())
}

func TestWithCollectorRoundTrip(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	assert.Equal[Collector](t, collector, FromContext(ctx))
}

func TestTimingCollectorReport(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("tokenize")
	child := root.Child("scan")
	time.Sleep(time.Millisecond)
	child.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	out := buf.String()

	assert.True(t, strings.Contains(out, "Telemetry:"))
	assert.True(t, strings.Contains(out, "tokenize"))
	assert.True(t, strings.Contains(out, "scan"))

	// The child is indented one level deeper than the root.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "  tokenize"))
	assert.True(t, strings.HasPrefix(lines[2], "    scan"))
}

func TestEmptyCollectorReportsNothing(t *testing.T) {
	collector := NewTimingCollector()
	var buf bytes.Buffer
	collector.Report(&buf)
	assert.Equal(t, "", buf.String())
}

func TestNestedStartsBecomeChildren(t *testing.T) {
	collector := NewTimingCollector()
	outer := collector.Start("outer")
	inner := collector.Start("inner")
	inner.End()
	outer.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[2], "    inner"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "500ns"},
		{1500 * time.Nanosecond, "1.5µs"},
		{2500 * time.Microsecond, "2.5ms"},
		{1500 * time.Millisecond, "1.50s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
