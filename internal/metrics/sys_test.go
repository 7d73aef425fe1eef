package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	h := GetSysHealth(dir)
	if h.ReportFiles != 2 {
		t.Errorf("Expected 2 report files, got %d", h.ReportFiles)
	}
	if h.ReportDiskSize != "2.0 KB" {
		t.Errorf("Expected 2.0 KB, got %s", h.ReportDiskSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}

	t.Run("MissingDir", func(t *testing.T) {
		h := GetSysHealth(filepath.Join(dir, "missing"))
		if h.ReportFiles != 0 || h.ReportDiskSize != "0 B" {
			t.Errorf("Expected empty usage, got %d files, %s", h.ReportFiles, h.ReportDiskSize)
		}
	})
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for size, want := range tests {
		if got := formatBytes(size); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", size, got, want)
		}
	}
}
