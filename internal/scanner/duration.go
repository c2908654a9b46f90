package scanner

import (
	"fmt"
	"strings"
	"time"
)

// EstimateDuration walks every file leaf of the tree and returns the span from
// the earliest creation time to the latest modification time. Negative spans
// (ctime newer than every mtime) clamp to zero.
func EstimateDuration(root *FileNode) (time.Duration, error) {
	var earliest, latest time.Time

	var walk func(n *FileNode)
	walk = func(n *FileNode) {
		if n == nil {
			return
		}
		if n.Kind == KindFile {
			if n.Created != nil && !n.Created.IsZero() && (earliest.IsZero() || n.Created.Before(earliest)) {
				earliest = n.Created.Time
			}
			if n.Modified != nil && !n.Modified.IsZero() && (latest.IsZero() || n.Modified.After(latest)) {
				latest = n.Modified.Time
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	switch {
	case earliest.IsZero() && latest.IsZero():
		return 0, ErrEmptyProject
	case earliest.IsZero():
		earliest = latest
	case latest.IsZero():
		latest = earliest
	}

	d := latest.Sub(earliest)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// FormatDuration renders d as an ISO 8601 duration, e.g. "P3DT4H5M6S".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	d = d.Round(time.Second)
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)

	var b strings.Builder
	b.WriteString("P")
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours == 0 && minutes == 0 && seconds == 0 {
		if days == 0 {
			return "PT0S"
		}
		return b.String()
	}
	b.WriteString("T")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 {
		fmt.Fprintf(&b, "%dS", seconds)
	}
	return b.String()
}
