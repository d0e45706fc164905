// backend/scraper/download_watcher.go
package scraper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoNewFile is returned when the bounded poll runs out before a finished
// spreadsheet shows up in the download directory.
var ErrNoNewFile = errors.New("no new spreadsheet file found before timeout")

// Extensions the extranet's excel export produces.
var spreadsheetExts = map[string]struct{}{
	".xls":  {},
	".xlsx": {},
}

// Browser temp-download markers; a file wearing one of these is still being
// written.
var tempDownloadSuffixes = []string{".crdownload", ".tmp", ".part"}

// SnapshotDir captures the current file names in dir, taken just before the
// automation clicks the export button so WaitForNewFile can tell old
// downloads from the new one.
func SnapshotDir(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read download directory %s: %w", dir, err)
	}
	files := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		files[e.Name()] = struct{}{}
	}
	return files, nil
}

// WaitForNewFile polls dir until a completed spreadsheet not present in
// initial appears, or timeout elapses (ErrNoNewFile - it never blocks
// forever). The browser drops a temp marker file while downloading; those
// are ignored until renamed.
func WaitForNewFile(dir string, initial map[string]struct{}, timeout, pollInterval time.Duration) (string, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("failed to read download directory %s: %w", dir, err)
		}
		for _, e := range entries {
			name := e.Name()
			if _, existed := initial[name]; existed {
				continue
			}
			if isTempDownload(name) {
				continue
			}
			if _, ok := spreadsheetExts[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
			// Give the browser a moment to finish flushing the file.
			time.Sleep(pollInterval)
			return filepath.Join(dir, name), nil
		}
		time.Sleep(pollInterval)
	}
	return "", ErrNoNewFile
}

func isTempDownload(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range tempDownloadSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
