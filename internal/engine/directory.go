package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// openActiveLog picks (or creates) the directory's active .log file.
//
// If more than one .log file is present — the signature of a compaction that
// was interrupted after the new file was written but before the old one was
// removed — it logs a warning and deterministically picks the
// lexicographically smallest name, rather than failing recovery outright.
func openActiveLog(dir string, log *zap.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("engine: create directory %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("engine: read directory %s: %w", dir, err)
	}
	var logs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".log") {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) == 0 {
		return filepath.Join(dir, uuid.New().String()+".log"), nil
	}
	sort.Strings(logs)
	if len(logs) > 1 && log != nil {
		log.Warn("directory holds multiple .log files; this is a recovery hazard from an interrupted compaction",
			zap.String("dir", dir),
			zap.Strings("candidates", logs),
			zap.String("chosen", logs[0]))
	}
	return filepath.Join(dir, logs[0]), nil
}

// newCompactionPath returns a fresh, unused .log path in dir.
func newCompactionPath(dir string) string {
	return filepath.Join(dir, uuid.New().String()+".log")
}
