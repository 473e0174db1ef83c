package engine

import (
	"bufio"
	"fmt"
	"os"
)

// logFile is an append-only writer plus random-access reader over one
// regular file. The writer's cursor (pos) always equals the file length: all
// appends go through O_APPEND, so a concurrent readAt (pread) never disturbs
// it — the same guarantee a hand-maintained pair of seekable handles would
// give, with fewer moving parts.
type logFile struct {
	path string
	file *os.File
	w    *bufio.Writer
	pos  int64
}

func openLogFile(path string) (*logFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("engine: open log file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("engine: stat log file %s: %w", path, err)
	}
	return &logFile{
		path: path,
		file: f,
		w:    bufio.NewWriter(f),
		pos:  info.Size(),
	}, nil
}

// append writes b to the end of the file and flushes it before returning, so
// the caller may immediately record the returned offset in the index.
// It returns the offset of the first byte of b.
func (lf *logFile) append(b []byte) (offset int64, err error) {
	offset = lf.pos
	n, err := lf.w.Write(b)
	lf.pos += int64(n)
	if err != nil {
		return offset, fmt.Errorf("engine: append to %s: %w", lf.path, err)
	}
	if err := lf.w.Flush(); err != nil {
		return offset, fmt.Errorf("engine: flush %s: %w", lf.path, err)
	}
	return offset, nil
}

// readAt returns exactly n bytes starting at offset. It errors if the
// request would read past the write cursor.
func (lf *logFile) readAt(offset, n int64) ([]byte, error) {
	if offset+n > lf.pos {
		return nil, fmt.Errorf("%w: read [%d,%d) exceeds log length %d", ErrCorruption, offset, offset+n, lf.pos)
	}
	buf := make([]byte, n)
	if _, err := lf.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("engine: read %s at %d: %w", lf.path, offset, err)
	}
	return buf, nil
}

// replace swaps the underlying file to path, resetting pos to path's length.
func (lf *logFile) replace(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("engine: open replacement log file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("engine: stat replacement log file %s: %w", path, err)
	}
	old := lf.file
	lf.file = f
	lf.w = bufio.NewWriter(f)
	lf.pos = info.Size()
	lf.path = path
	return old.Close()
}

func (lf *logFile) close() error {
	return lf.file.Close()
}
