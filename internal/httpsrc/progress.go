package httpsrc

import "fmt"

// Progress tracks download progress.
type Progress struct {
	BytesDownloaded int64
	BytesTotal      int64
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	pct := float64(0)
	if p.BytesTotal > 0 {
		pct = float64(p.BytesDownloaded) / float64(p.BytesTotal) * 100
	}
	fmt.Printf("\r[Download] %s / %s (%.1f%%)",
		FormatBytes(p.BytesDownloaded), FormatBytes(p.BytesTotal), pct)
}
