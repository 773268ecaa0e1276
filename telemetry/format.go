package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// formatTimingTree writes the timer tree as an indented report. Durations
// render in the unit that keeps them readable.
func formatTimingTree(w io.Writer, root *timerNode) {
	_, _ = fmt.Fprintln(w, "Telemetry:")
	writeNode(w, root, 0)
}

func writeNode(w io.Writer, node *timerNode, depth int) {
	indent := strings.Repeat("  ", depth+1)
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", indent, node.name, formatDuration(node.duration()))
	for _, child := range node.children {
		writeNode(w, child, depth+1)
	}
}

func (n *timerNode) duration() time.Duration {
	end := n.end
	if end.IsZero() {
		// Still running when the report was requested.
		end = time.Now()
	}
	return end.Sub(n.start)
}

// formatDuration renders a duration with a stable, compact precision.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
