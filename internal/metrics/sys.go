package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var processStart = time.Now()

// SysHealth is a snapshot of process health and report storage use.
type SysHealth struct {
	AllocMB        uint64
	SysMB          uint64
	NumGC          uint32
	Goroutines     int
	Uptime         time.Duration
	ReportFiles    int
	ReportDiskSize string
}

// GetSysHealth collects health data. reportDir may be empty or missing.
func GetSysHealth(reportDir string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	files, size := dirUsage(reportDir)
	return SysHealth{
		AllocMB:        m.Alloc / 1024 / 1024,
		SysMB:          m.Sys / 1024 / 1024,
		NumGC:          m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
		Uptime:         time.Since(processStart).Truncate(time.Second),
		ReportFiles:    files,
		ReportDiskSize: formatBytes(size),
	}
}

func dirUsage(path string) (int, int64) {
	if path == "" {
		return 0, 0
	}
	var files int
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files++
			size += info.Size()
		}
		return nil
	})
	return files, size
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
